package domain

import (
	"math"
)

const (
	secondsPerDay  = 86400
	daysPerYear    = 365
	secondsPerYear = secondsPerDay * daysPerYear
)

// GreeksInput 单腿 Greeks 计算输入（基于期货价格的 Black-Scholes）
type GreeksInput struct {
	Size              float64 // 数量（绝对值）
	UnderlyingFutures float64 // 标的期货价格
	StrikePrice       float64 // 行权价
	IV                float64 // 隐含波动率
	Expiry            int64   // 到期时间 unix 秒
	Now               int64   // 计算时刻 unix 秒
	IsCall            bool
	IsBuy             bool
	RiskFreeRate      float64 // 无风险利率，默认 0
}

// MarkPriceInput 标记价格计算输入
type MarkPriceInput struct {
	UnderlyingFutures float64
	StrikePrice       float64
	IV                float64
	FromTime          int64 // unix 秒
	Expiry            int64 // unix 秒
	IsCall            bool
	RiskFreeRate      float64
}

// DaysToExpiry 距到期天数，已过期为负
func DaysToExpiry(expiry, now int64) float64 {
	return float64(expiry-now) / secondsPerDay
}

// YearsToExpiry 距到期年数，保留 6 位小数
func YearsToExpiry(expiry, now int64) float64 {
	return math.Round(DaysToExpiry(expiry, now)/daysPerYear*1e6) / 1e6
}

// YearsBetween 两个时间点之间的年数（取绝对值）
func YearsBetween(from, to int64) float64 {
	d := to - from
	if d < 0 {
		d = -d
	}
	return float64(d) / secondsPerYear
}

// CalculateGreeks 计算单腿 Greeks。
// 数量为 0、价格/行权价/波动率非正或已到期时返回全零，属于合法的退化状态。
func CalculateGreeks(in GreeksInput) Greeks {
	t := YearsToExpiry(in.Expiry, in.Now)
	if in.Size == 0 || in.UnderlyingFutures <= 0 || in.StrikePrice <= 0 || in.IV <= 0 || t <= 0 {
		return Greeks{}
	}

	size := in.Size
	if !in.IsBuy {
		size = -size
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(in.UnderlyingFutures/in.StrikePrice) + (in.RiskFreeRate+in.IV*in.IV/2)*t) / (in.IV * sqrtT)
	pdf := NormPDF(d1)

	delta := NormCDF(d1)
	if !in.IsCall {
		delta -= 1
	}

	theta := -size * (in.UnderlyingFutures * pdf * in.IV / (2 * sqrtT)) / daysPerYear
	if theta == 0 {
		// 消除 -0
		theta = 0
	}

	return Greeks{
		Delta: size * delta,
		Gamma: size * pdf / (in.UnderlyingFutures * in.IV * sqrtT),
		Vega:  size * in.UnderlyingFutures * sqrtT * pdf / 100,
		Theta: theta,
	}
}

// Moneyness 单位数量下 delta 的绝对值
func Moneyness(in GreeksInput) float64 {
	in.Size = 1
	return math.Abs(CalculateGreeks(in).Delta)
}

// CalculateMarkPrice 计算 Black-Scholes 标记价格，退化输入返回 0
func CalculateMarkPrice(in MarkPriceInput) float64 {
	t := YearsBetween(in.FromTime, in.Expiry)
	if in.UnderlyingFutures <= 0 || in.StrikePrice <= 0 || in.IV <= 0 || t <= 0 {
		return 0
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(in.UnderlyingFutures/in.StrikePrice) + 0.5*in.IV*in.IV*t) / (in.IV * sqrtT)
	d2 := d1 - in.IV*sqrtT
	discount := math.Exp(-in.RiskFreeRate * t)

	if in.IsCall {
		return in.UnderlyingFutures*NormCDF(d1) - in.StrikePrice*discount*NormCDF(d2)
	}
	return in.StrikePrice*discount*NormCDF(-d2) - in.UnderlyingFutures*NormCDF(-d1)
}

// LegQuote 参与定价的期权腿行情
type LegQuote struct {
	StrikePrice float64 `json:"strike_price"`
	MarkIV      float64 `json:"mark_iv"`
	MarkPrice   float64 `json:"mark_price"`
}

// TradeInput 交易级 Greeks 输入，价差的配对腿按相反方向计入
type TradeInput struct {
	Size              float64
	UnderlyingFutures float64
	Expiry            int64
	Now               int64
	IsCall            bool
	IsBuy             bool
	Main              LegQuote
	Paired            *LegQuote
}

// TradeGreeks 交易整体 Greeks 与主腿 moneyness
func TradeGreeks(in TradeInput) (Greeks, float64) {
	main := GreeksInput{
		Size:              in.Size,
		UnderlyingFutures: in.UnderlyingFutures,
		StrikePrice:       in.Main.StrikePrice,
		IV:                in.Main.MarkIV,
		Expiry:            in.Expiry,
		Now:               in.Now,
		IsCall:            in.IsCall,
		IsBuy:             in.IsBuy,
	}
	total := CalculateGreeks(main)
	moneyness := Moneyness(main)

	if in.Paired != nil {
		paired := main
		paired.StrikePrice = in.Paired.StrikePrice
		paired.IV = in.Paired.MarkIV
		paired.IsBuy = !in.IsBuy
		total = total.Add(CalculateGreeks(paired))
	}
	return total, moneyness
}

// TradeMarkPrice 单腿为该腿价格，价差为两腿价格差的绝对值
func TradeMarkPrice(main LegQuote, paired *LegQuote) float64 {
	if paired == nil {
		return main.MarkPrice
	}
	return math.Abs(main.MarkPrice - paired.MarkPrice)
}
