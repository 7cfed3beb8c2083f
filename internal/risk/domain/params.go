package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	pricing "github.com/wyfcoding/optionpool/internal/pricing/domain"
)

var (
	ErrUnsupportedAsset     = errors.New("asset has no risk premium weights")
	ErrUnsupportedDirection = errors.New("option direction has no ratio")
	ErrCollateralForBuy     = errors.New("collateral is not required for buy strategies")
	ErrInvalidParams        = errors.New("invalid risk premium params")
)

// 风险轴顺序
const (
	axisDelta = iota
	axisVega
	axisTheta
	axisCount
)

// TermWeights 单个期限桶上 delta, vega, theta 的权重
type TermWeights [axisCount]float64

// AssetWeights 标的在短、中、长期限桶上的权重
type AssetWeights struct {
	Short TermWeights
	Mid   TermWeights
	Long  TermWeights
}

// MultiplierTier rpMultiplier 档位：min(A/MulRatio*(moneyness+B)^2+C, Cap)
type MultiplierTier struct {
	MaxDays float64 // 末档忽略
	A       float64
	B       float64
	C       float64
	Cap     float64
}

// RiskPremiumParams 风险溢价模型参数
type RiskPremiumParams struct {
	TotalRatio             float64
	MaxSellRate            float64 // 卖方费率上限
	ReducingRiskFactor     float64 // 降低敞口时的折扣
	VolatilityScoreDivisor float64
	UnitPercentageMin      float64
	UnitPercentageMax      float64
	StandardSizes          []float64 // 资金池规模分档，升序
	ScalingFactorMin       float64
	ScalingFactorMax       float64
	ShortTermDays          float64
	MidTermDays            float64
	Weights                map[string]AssetWeights
	AssetRatios            map[string]float64
	DirectionRatios        map[pricing.OptionType]float64
	MulRatio               float64
	MultiplierTiers        [3]MultiplierTier
	URThreshold            float64
	URInitialMultiplier    float64
	URMaxValue             float64
	// 资金池金额除法的小数位
	DecimalPlaces int32
}

// DefaultRiskPremiumParams 默认参数
func DefaultRiskPremiumParams() RiskPremiumParams {
	return RiskPremiumParams{
		TotalRatio:             1,
		MaxSellRate:            0.8,
		ReducingRiskFactor:     0.1,
		VolatilityScoreDivisor: 100,
		UnitPercentageMin:      1,
		UnitPercentageMax:      2,
		StandardSizes:          []float64{1e5, 1e6, 1e7, 1e8, 1e9},
		ScalingFactorMin:       1,
		ScalingFactorMax:       10,
		ShortTermDays:          2,
		MidTermDays:            90,
		Weights: map[string]AssetWeights{
			"BTC": {
				Short: TermWeights{0.0004, 0.0030, 0.0030},
				Mid:   TermWeights{0.0003, 0.0020, 0.0020},
				Long:  TermWeights{0.0002, 0.0015, 0.0015},
			},
			"ETH": {
				Short: TermWeights{0.0006, 0.0040, 0.0040},
				Mid:   TermWeights{0.0004, 0.0030, 0.0030},
				Long:  TermWeights{0.0003, 0.0020, 0.0020},
			},
		},
		AssetRatios: map[string]float64{"BTC": 1, "ETH": 1.1},
		DirectionRatios: map[pricing.OptionType]float64{
			pricing.OptionTypeCall: 1,
			pricing.OptionTypePut:  1,
		},
		MulRatio: 1,
		MultiplierTiers: [3]MultiplierTier{
			{MaxDays: 2, A: 12, B: -0.5, C: 1, Cap: 8},
			{MaxDays: 7, A: 8, B: -0.5, C: 1, Cap: 8},
			{A: 4, B: -0.5, C: 1, Cap: 4},
		},
		URThreshold:         0.4,
		URInitialMultiplier: 0.5,
		URMaxValue:          1,
		DecimalPlaces:       18,
	}
}

// Validate 校验参数
func (p RiskPremiumParams) Validate() error {
	switch {
	case p.MaxSellRate <= 0:
		return fmt.Errorf("%w: max sell rate %v", ErrInvalidParams, p.MaxSellRate)
	case p.UnitPercentageMin <= 0 || p.UnitPercentageMax < p.UnitPercentageMin:
		return fmt.Errorf("%w: unit percentage [%v, %v]", ErrInvalidParams, p.UnitPercentageMin, p.UnitPercentageMax)
	case p.ScalingFactorMin <= 0 || p.ScalingFactorMax < p.ScalingFactorMin:
		return fmt.Errorf("%w: scaling factor [%v, %v]", ErrInvalidParams, p.ScalingFactorMin, p.ScalingFactorMax)
	case p.ShortTermDays <= 0 || p.MidTermDays <= p.ShortTermDays:
		return fmt.Errorf("%w: term buckets %v/%v", ErrInvalidParams, p.ShortTermDays, p.MidTermDays)
	case p.VolatilityScoreDivisor <= 0:
		return fmt.Errorf("%w: volatility score divisor %v", ErrInvalidParams, p.VolatilityScoreDivisor)
	case p.MulRatio == 0:
		return fmt.Errorf("%w: mul ratio is zero", ErrInvalidParams)
	case p.MultiplierTiers[1].MaxDays < p.MultiplierTiers[0].MaxDays:
		return fmt.Errorf("%w: multiplier tiers out of order", ErrInvalidParams)
	case p.URMaxValue <= 0:
		return fmt.Errorf("%w: ur max value %v", ErrInvalidParams, p.URMaxValue)
	case p.DecimalPlaces < 0:
		return fmt.Errorf("%w: decimal places %d", ErrInvalidParams, p.DecimalPlaces)
	case len(p.StandardSizes) == 0:
		return fmt.Errorf("%w: no standard sizes", ErrInvalidParams)
	}
	for i := 1; i < len(p.StandardSizes); i++ {
		if p.StandardSizes[i] <= p.StandardSizes[i-1] {
			return fmt.Errorf("%w: standard sizes not ascending", ErrInvalidParams)
		}
	}
	return nil
}

// URMultiplier 资金利用率乘数。UR1 低于阈值时固定为初始值，与 UR0 无关
func (p RiskPremiumParams) URMultiplier(ur0, ur1 float64) float64 {
	if ur1 < p.URThreshold {
		return p.URInitialMultiplier
	}
	base := (ur1-p.URThreshold)*(ur1+1) + p.URInitialMultiplier
	if ur0 == 0 {
		return base * 2
	}
	return base * clamp(ur1/ur0, 1, 2)
}

// RPMultiplier 按 moneyness 与剩余天数分档的二次曲线乘数
func (p RiskPremiumParams) RPMultiplier(moneyness, dte float64) float64 {
	tier := p.MultiplierTiers[2]
	switch {
	case dte <= p.MultiplierTiers[0].MaxDays:
		tier = p.MultiplierTiers[0]
	case dte <= p.MultiplierTiers[1].MaxDays:
		tier = p.MultiplierTiers[1]
	}
	m := moneyness + tier.B
	return math.Min(tier.A/p.MulRatio*m*m+tier.C, tier.Cap)
}

// ScalingFactor 资金池规模系数：取第一个高于存款额的规模档与存款额之比，限制在 [min, max]
func (p RiskPremiumParams) ScalingFactor(depositedUsd float64) float64 {
	scal := 1.0
	if depositedUsd > 0 {
		for _, size := range p.StandardSizes {
			if depositedUsd < size {
				scal = size / depositedUsd
				break
			}
		}
	}
	return clamp(scal, p.ScalingFactorMin, p.ScalingFactorMax)
}

// weights 按剩余天数选择期限桶
func (p RiskPremiumParams) weights(asset string, dte float64) (TermWeights, error) {
	w, ok := p.Weights[strings.ToUpper(asset)]
	if !ok {
		return TermWeights{}, fmt.Errorf("%w: %s", ErrUnsupportedAsset, asset)
	}
	switch {
	case dte <= p.ShortTermDays:
		return w.Short, nil
	case dte <= p.MidTermDays:
		return w.Mid, nil
	}
	return w.Long, nil
}

func (p RiskPremiumParams) ratios(asset string, typ pricing.OptionType) (float64, float64, error) {
	assetRatio, ok := p.AssetRatios[strings.ToUpper(asset)]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s has no asset ratio", ErrUnsupportedAsset, asset)
	}
	dirRatio, ok := p.DirectionRatios[typ]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnsupportedDirection, typ)
	}
	return assetRatio, dirRatio, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
