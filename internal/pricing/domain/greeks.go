package domain

import "math"

// Greeks 期权敏感度，符号随头寸方向（买入为正，卖出为负）
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
}

// Add 逐项相加，返回新值
func (g Greeks) Add(o Greeks) Greeks {
	return Greeks{
		Delta: g.Delta + o.Delta,
		Gamma: g.Gamma + o.Gamma,
		Vega:  g.Vega + o.Vega,
		Theta: g.Theta + o.Theta,
	}
}

// Sub 逐项相减
func (g Greeks) Sub(o Greeks) Greeks {
	return g.Add(o.Neg())
}

func (g Greeks) Neg() Greeks {
	return g.Scale(-1)
}

func (g Greeks) Scale(k float64) Greeks {
	return Greeks{
		Delta: g.Delta * k,
		Gamma: g.Gamma * k,
		Vega:  g.Vega * k,
		Theta: g.Theta * k,
	}
}

// IsZero 四项全为 0
func (g Greeks) IsZero() bool {
	return g == Greeks{}
}

// HasZero 任意一项为 0 或 NaN
func (g Greeks) HasZero() bool {
	for _, v := range [...]float64{g.Delta, g.Gamma, g.Vega, g.Theta} {
		if v == 0 || math.IsNaN(v) {
			return true
		}
	}
	return false
}
