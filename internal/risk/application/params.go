package application

import (
	"fmt"
	"strings"

	derivatives "github.com/wyfcoding/optionpool/internal/derivatives/domain"
	pricing "github.com/wyfcoding/optionpool/internal/pricing/domain"
	"github.com/wyfcoding/optionpool/internal/risk/domain"
	"github.com/wyfcoding/optionpool/pkg/config"
)

// ParamsFromConfig 将配置映射为模型参数。
// viper 会把 map 键转成小写，标的名称在这里统一回大写。
func ParamsFromConfig(rp config.RiskPremiumConfig, decimalPlaces int32) (domain.RiskPremiumParams, error) {
	params := domain.RiskPremiumParams{
		TotalRatio:             rp.TotalRatio,
		MaxSellRate:            rp.MaxSellRate,
		ReducingRiskFactor:     rp.ReducingRiskFactor,
		VolatilityScoreDivisor: rp.VolatilityScoreDivisor,
		UnitPercentageMin:      rp.UnitPercentageMin,
		UnitPercentageMax:      rp.UnitPercentageMax,
		StandardSizes:          append([]float64(nil), rp.StandardSizes...),
		ScalingFactorMin:       rp.ScalingFactorMin,
		ScalingFactorMax:       rp.ScalingFactorMax,
		ShortTermDays:          rp.ShortTermDays,
		MidTermDays:            rp.MidTermDays,
		Weights:                make(map[string]domain.AssetWeights, len(rp.Weights)),
		AssetRatios:            make(map[string]float64, len(rp.AssetRatios)),
		DirectionRatios:        make(map[pricing.OptionType]float64, len(rp.DirectionRatios)),
		MulRatio:               rp.MulRatio,
		URThreshold:            rp.URThreshold,
		URInitialMultiplier:    rp.URInitialMultiplier,
		URMaxValue:             rp.URMaxValue,
		DecimalPlaces:          decimalPlaces,
	}

	for asset, w := range rp.Weights {
		short, err := termWeights(asset, "short", w.Short)
		if err != nil {
			return domain.RiskPremiumParams{}, err
		}
		mid, err := termWeights(asset, "mid", w.Mid)
		if err != nil {
			return domain.RiskPremiumParams{}, err
		}
		long, err := termWeights(asset, "long", w.Long)
		if err != nil {
			return domain.RiskPremiumParams{}, err
		}
		params.Weights[strings.ToUpper(asset)] = domain.AssetWeights{Short: short, Mid: mid, Long: long}
	}
	for asset, ratio := range rp.AssetRatios {
		params.AssetRatios[strings.ToUpper(asset)] = ratio
	}
	for dir, ratio := range rp.DirectionRatios {
		typ := pricing.OptionType(strings.ToUpper(dir))
		if !typ.Valid() {
			return domain.RiskPremiumParams{}, fmt.Errorf("%w: direction %q", domain.ErrInvalidParams, dir)
		}
		params.DirectionRatios[typ] = ratio
	}

	if len(rp.MultiplierTiers) != len(params.MultiplierTiers) {
		return domain.RiskPremiumParams{}, fmt.Errorf("%w: %d multiplier tiers", domain.ErrInvalidParams, len(rp.MultiplierTiers))
	}
	for i, tier := range rp.MultiplierTiers {
		params.MultiplierTiers[i] = domain.MultiplierTier{
			MaxDays: tier.MaxDays,
			A:       tier.A,
			B:       tier.B,
			C:       tier.C,
			Cap:     tier.Cap,
		}
	}

	if err := params.Validate(); err != nil {
		return domain.RiskPremiumParams{}, err
	}
	return params, nil
}

func termWeights(asset, term string, values []float64) (domain.TermWeights, error) {
	var w domain.TermWeights
	if len(values) != len(w) {
		return w, fmt.Errorf("%w: %s %s weights need %d values, got %d", domain.ErrInvalidParams, asset, term, len(w), len(values))
	}
	copy(w[:], values)
	return w, nil
}

// TrancheThresholdsFromConfig 资金池分层阈值
func TrancheThresholdsFromConfig(engine config.EngineConfig) domain.TrancheThresholds {
	return domain.TrancheThresholds{ShortDays: engine.TrancheShortDays, MidDays: engine.TrancheMidDays}
}

// AssetsFromConfig 标的索引表，未配置时使用默认 BTC/ETH
func AssetsFromConfig(assets map[string]uint16) (*derivatives.AssetRegistry, error) {
	if len(assets) == 0 {
		return derivatives.DefaultAssets(), nil
	}
	return derivatives.NewAssetRegistry(assets)
}
