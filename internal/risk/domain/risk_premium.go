package domain

import (
	"fmt"
	"math"

	derivatives "github.com/wyfcoding/optionpool/internal/derivatives/domain"
	pricing "github.com/wyfcoding/optionpool/internal/pricing/domain"
)

// RiskPremiumInput 风险溢价计算输入。池子状态为调用方持有的快照，引擎只读
type RiskPremiumInput struct {
	Asset             string
	Expiry            int64 // unix 秒
	Now               int64 // unix 秒
	IsOpen            bool
	IsBuy             bool // 交易者是否为买方
	Type              pricing.OptionType
	Main              pricing.LegQuote
	Paired            *pricing.LegQuote // 价差的配对腿，单腿为 nil
	Size              float64
	UnderlyingFutures float64
	SpotIndex         float64
	VolatilityScore   float64
	Tranche           derivatives.Tranche
	PoolGreeks        pricing.Greeks
	PoolUtilization   PoolUtilization
}

// RiskPremiumResult 计算结果及中间量
type RiskPremiumResult struct {
	Rate     float64 `json:"rate"`
	RateBuy  float64 `json:"rate_buy"`
	RateSell float64 `json:"rate_sell"`

	TradeGreeks              pricing.Greeks  `json:"trade_greeks"`
	Moneyness                float64         `json:"moneyness"`
	PoolGreeks               pricing.Greeks  `json:"pool_greeks"`
	ProjectedPoolGreeks      pricing.Greeks  `json:"projected_pool_greeks"`
	ProjectedPoolUtilization PoolUtilization `json:"projected_pool_utilization"`

	UnitDelta    float64 `json:"unit_delta"`
	UnitVega     float64 `json:"unit_vega"`
	UnitTheta    float64 `json:"unit_theta"`
	BaseRp       float64 `json:"base_rp"`
	RPMultiplier float64 `json:"rp_multiplier"`
	UR0          float64 `json:"ur0"`
	UR1          float64 `json:"ur1"`
	URMultiplier float64 `json:"ur_multiplier"`
}

// CalculateRiskPremium 计算交易对资金池风险与资金占用的溢价费率。
// 存款为 0 或期货价格非正时返回零费率，池子状态原样回显；已到期时返回零费率。
func CalculateRiskPremium(in RiskPremiumInput, params RiskPremiumParams) (*RiskPremiumResult, error) {
	tradeGreeks, moneyness := pricing.TradeGreeks(pricing.TradeInput{
		Size:              in.Size,
		UnderlyingFutures: in.UnderlyingFutures,
		Expiry:            in.Expiry,
		Now:               in.Now,
		IsCall:            in.Type.IsCall(),
		IsBuy:             in.IsBuy,
		Main:              in.Main,
		Paired:            in.Paired,
	})

	res := &RiskPremiumResult{
		TradeGreeks:              tradeGreeks,
		Moneyness:                moneyness,
		PoolGreeks:               in.PoolGreeks,
		ProjectedPoolGreeks:      in.PoolGreeks,
		ProjectedPoolUtilization: in.PoolUtilization,
	}

	deposited := in.PoolUtilization.DepositedUsd.InexactFloat64()
	if deposited == 0 || in.UnderlyingFutures <= 0 {
		return res, nil
	}

	// 开仓时池子承担反向头寸，平仓时归还
	g0 := in.PoolGreeks
	g1 := g0.Add(tradeGreeks)
	if in.IsOpen {
		g1 = g0.Sub(tradeGreeks)
	}
	res.ProjectedPoolGreeks = g1

	next, err := ProjectUtilization(UtilizationInput{
		IsOpen:    in.IsOpen,
		IsBuy:     in.IsBuy,
		Type:      in.Type,
		Main:      in.Main,
		Paired:    in.Paired,
		Size:      in.Size,
		SpotIndex: in.SpotIndex,
		Current:   in.PoolUtilization,
	})
	if err != nil {
		return nil, fmt.Errorf("project utilization: %w", err)
	}
	res.ProjectedPoolUtilization = next

	before := axes(g0)
	after := axes(g1)
	scal := params.ScalingFactor(deposited)
	futuresUnit := in.UnderlyingFutures * 0.01

	var unit [axisCount]float64
	for i := range unit {
		up := params.UnitPercentageMax
		if before[i] != 0 {
			up = clamp(math.Abs(after[i]/before[i]), params.UnitPercentageMin, params.UnitPercentageMax)
		}
		if i == axisDelta {
			unit[i] = math.Sqrt(futuresUnit*math.Abs(after[i])*scal) * up
		} else {
			unit[i] = math.Sqrt(math.Abs(after[i]*scal)/futuresUnit) * up
		}
	}
	res.UnitDelta, res.UnitVega, res.UnitTheta = unit[axisDelta], unit[axisVega], unit[axisTheta]

	dte := pricing.DaysToExpiry(in.Expiry, in.Now)
	if dte <= 0 {
		return res, nil
	}

	weights, err := params.weights(in.Asset, dte)
	if err != nil {
		return nil, err
	}
	assetRatio, dirRatio, err := params.ratios(in.Asset, in.Type)
	if err != nil {
		return nil, err
	}

	var baseRp float64
	for i := range unit {
		rp := math.Abs(unit[i]) * weights[i]
		if reducing(before[i], after[i]) {
			rp *= params.ReducingRiskFactor
		}
		baseRp += rp
	}

	places := params.DecimalPlaces
	ur0 := math.Min(in.PoolUtilization.Ratio(places).InexactFloat64(), params.URMaxValue)
	ur1 := math.Min(next.Ratio(places).InexactFloat64(), params.URMaxValue)

	res.BaseRp = baseRp
	res.RPMultiplier = params.RPMultiplier(moneyness, dte)
	res.UR0, res.UR1 = ur0, ur1
	res.URMultiplier = params.URMultiplier(ur0, ur1)

	res.RateBuy = params.TotalRatio * baseRp * res.RPMultiplier * res.URMultiplier * assetRatio * dirRatio
	res.RateSell = math.Min(res.RateBuy, params.MaxSellRate)

	res.Rate = res.RateSell
	if in.IsBuy {
		res.Rate = res.RateBuy
	}
	// delta 敞口绝对值变大，或虽变小但方向翻转
	if !reducing(before[axisDelta], after[axisDelta]) {
		res.Rate += in.VolatilityScore / params.VolatilityScoreDivisor
	}
	return res, nil
}

// reducing 同号且绝对值不增，视为降低敞口
func reducing(g0, g1 float64) bool {
	return g0*g1 >= 0 && math.Abs(g0) >= math.Abs(g1)
}

func axes(g pricing.Greeks) [axisCount]float64 {
	return [axisCount]float64{g.Delta, g.Vega, g.Theta}
}
