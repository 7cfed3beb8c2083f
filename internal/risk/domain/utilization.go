package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	derivatives "github.com/wyfcoding/optionpool/internal/derivatives/domain"
	pricing "github.com/wyfcoding/optionpool/internal/pricing/domain"
)

// PoolUtilization 资金池分层的资金占用，金额单位 USD
type PoolUtilization struct {
	UtilizedUsd  decimal.Decimal `json:"utilized_usd"`
	DepositedUsd decimal.Decimal `json:"deposited_usd"`
}

// NewPoolUtilization 由浮点金额构造
func NewPoolUtilization(utilizedUsd, depositedUsd float64) PoolUtilization {
	return PoolUtilization{
		UtilizedUsd:  decimal.NewFromFloat(utilizedUsd),
		DepositedUsd: decimal.NewFromFloat(depositedUsd),
	}
}

// Ratio 利用率 utilized / deposited，限制在 [0, 1]；存款非正时为 0。
// places 为除法保留的小数位
func (u PoolUtilization) Ratio(places int32) decimal.Decimal {
	if !u.DepositedUsd.IsPositive() {
		return decimal.Zero
	}
	r := u.UtilizedUsd.DivRound(u.DepositedUsd, places)
	if r.IsNegative() {
		return decimal.Zero
	}
	if r.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return r
}

// UtilizationInput 利用率推演输入
type UtilizationInput struct {
	IsOpen    bool
	IsBuy     bool
	Type      pricing.OptionType
	Main      pricing.LegQuote
	Paired    *pricing.LegQuote
	Size      float64
	SpotIndex float64 // 标的现货指数
	Current   PoolUtilization
}

// ProjectUtilization 推演交易后的资金占用，不修改入参。
//   - 开仓卖出或平仓买入：deposited -= premium
//   - 开仓买入或平仓卖出：utilized += collateral, deposited += premium
//
// 抵押品按资金池承担的卖方策略计算：开仓取交易策略的反向，平仓取交易策略本身。
func ProjectUtilization(in UtilizationInput) (PoolUtilization, error) {
	next := in.Current
	size := decimal.NewFromFloat(in.Size)
	premium := decimal.NewFromFloat(pricing.TradeMarkPrice(in.Main, in.Paired)).Mul(size)

	if in.IsOpen != in.IsBuy {
		next.DepositedUsd = next.DepositedUsd.Sub(premium)
		return next, nil
	}

	strategy := derivatives.StrategyFor(in.IsBuy, in.Type.IsCall(), in.Paired == nil)
	target := strategy
	if in.IsOpen {
		target = strategy.Opposite()
	}

	unit, err := UnitCollateralUsd(target, strikes(in.Main, in.Paired), in.SpotIndex)
	if err != nil {
		return PoolUtilization{}, err
	}

	next.UtilizedUsd = next.UtilizedUsd.Add(unit.Mul(size))
	next.DepositedUsd = next.DepositedUsd.Add(premium)
	return next, nil
}

// UnitCollateralUsd 卖方策略单位数量的抵押品价值：
// 裸卖看涨为现货价格，裸卖看跌为行权价，价差为行权价宽度
func UnitCollateralUsd(s derivatives.Strategy, strikes [2]float64, spotIndex float64) (decimal.Decimal, error) {
	switch s {
	case derivatives.StrategySellCall:
		return decimal.NewFromFloat(spotIndex), nil
	case derivatives.StrategySellPut:
		return decimal.NewFromFloat(strikes[0]), nil
	case derivatives.StrategySellCallSpread, derivatives.StrategySellPutSpread:
		return decimal.NewFromFloat(strikes[1]).Sub(decimal.NewFromFloat(strikes[0])), nil
	}
	if s.IsBuy() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrCollateralForBuy, s)
	}
	return decimal.Zero, fmt.Errorf("%w: %s", derivatives.ErrInvalidStrategy, s)
}

// strikes 升序的行权价，单腿时只有第一个有效
func strikes(main pricing.LegQuote, paired *pricing.LegQuote) [2]float64 {
	if paired == nil {
		return [2]float64{main.StrikePrice, 0}
	}
	return [2]float64{
		math.Min(main.StrikePrice, paired.StrikePrice),
		math.Max(main.StrikePrice, paired.StrikePrice),
	}
}
