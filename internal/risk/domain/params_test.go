package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestURMultiplierFloorProperty(t *testing.T) {
	params := DefaultRiskPremiumParams()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	parameters.Rng.Seed(time.Now().UnixNano())
	properties := gopter.NewProperties(parameters)

	properties.Property("UR1 below threshold yields the initial multiplier", prop.ForAll(
		func(ur0, ur1 float64) bool {
			return params.URMultiplier(ur0, ur1) == 0.5
		},
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 0.4).SuchThat(func(v float64) bool { return v < 0.4 }),
	))

	properties.Property("multiplier is bounded once above threshold", prop.ForAll(
		func(ur0, ur1 float64) bool {
			base := (ur1-0.4)*(ur1+1) + 0.5
			got := params.URMultiplier(ur0, ur1)
			return got >= base && got <= 2*base
		},
		gen.Float64Range(0, 1),
		gen.Float64Range(0.4, 1),
	))

	properties.TestingRun(t)
}

func TestURMultiplierCases(t *testing.T) {
	p := DefaultRiskPremiumParams()
	tests := []struct {
		name     string
		ur0, ur1 float64
		want     float64
	}{
		{"below threshold", 0.9, 0.39, 0.5},
		{"at threshold", 0.4, 0.4, 0.5},
		{"from empty pool", 0, 0.5, (0.1*1.5 + 0.5) * 2},
		{"ratio clamped low", 0.8, 0.6, 0.2*1.6 + 0.5},
		{"ratio clamped high", 0.2, 0.9, (0.5*1.9 + 0.5) * 2},
		{"ratio in range", 0.5, 0.6, (0.2*1.6 + 0.5) * 1.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.URMultiplier(tt.ur0, tt.ur1); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("URMultiplier(%v, %v) = %v, want %v", tt.ur0, tt.ur1, got, tt.want)
			}
		})
	}
}

func TestRPMultiplierTiers(t *testing.T) {
	p := DefaultRiskPremiumParams()
	tests := []struct {
		moneyness, dte, want float64
	}{
		{0.5, 1, 1},         // 12*(0)^2+1
		{1, 2, 12*0.25 + 1}, // 短期档
		{1, 5, 8*0.25 + 1},  // 中间档
		{1, 30, 4*0.25 + 1}, // 长期档
		{0, 30, 4*0.25 + 1}, // 对称
		{1.5, 1, 8},         // 12*1+1 封顶 8
		{1.5, 30, 4},        // 4*1+1 封顶 4
	}
	for _, tt := range tests {
		if got := p.RPMultiplier(tt.moneyness, tt.dte); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("RPMultiplier(%v, %v) = %v, want %v", tt.moneyness, tt.dte, got, tt.want)
		}
	}
}

func TestScalingFactor(t *testing.T) {
	p := DefaultRiskPremiumParams()
	tests := []struct {
		deposited, want float64
	}{
		{5e4, 2},         // 1e5 / 5e4
		{1e4, 10},        // 封顶
		{1e5, 10},        // 下一档 1e6 / 1e5
		{4e5, 2.5},       // 1e6 / 4e5
		{9e8, 1e9 / 9e8}, // 1e9 / 9e8
		{2e9, 1},         // 超过所有档位
		{0, 1},           // 空池
	}
	for _, tt := range tests {
		if got := p.ScalingFactor(tt.deposited); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ScalingFactor(%v) = %v, want %v", tt.deposited, got, tt.want)
		}
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultRiskPremiumParams().Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}
	mutations := map[string]func(*RiskPremiumParams){
		"sell cap":       func(p *RiskPremiumParams) { p.MaxSellRate = 0 },
		"unit pct":       func(p *RiskPremiumParams) { p.UnitPercentageMax = 0.5 },
		"terms":          func(p *RiskPremiumParams) { p.MidTermDays = 1 },
		"vol divisor":    func(p *RiskPremiumParams) { p.VolatilityScoreDivisor = 0 },
		"mul ratio":      func(p *RiskPremiumParams) { p.MulRatio = 0 },
		"sizes":          func(p *RiskPremiumParams) { p.StandardSizes = []float64{10, 5} },
		"no sizes":       func(p *RiskPremiumParams) { p.StandardSizes = nil },
		"decimal places": func(p *RiskPremiumParams) { p.DecimalPlaces = -1 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			p := DefaultRiskPremiumParams()
			mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("err = %v, want ErrInvalidParams", err)
			}
		})
	}
}
