package domain

import "errors"

var (
	ErrInvalidStrategy      = errors.New("invalid option strategy")
	ErrNotSupportedStrategy = errors.New("option strategy not supported")
	ErrLegCountMismatch     = errors.New("option leg count mismatch")
	ErrTooManyLegs          = errors.New("too many option legs")
	ErrFieldOverflow        = errors.New("option id field overflow")
	ErrInvalidOptionID      = errors.New("invalid option id")
	ErrUnknownAsset         = errors.New("unknown underlying asset")
)

// Strategy 期权组合策略，数值即期权 ID 中 4 位 strategy 字段的取值
type Strategy uint8

const (
	StrategyNotSupported Strategy = iota
	StrategyBuyCall
	StrategySellCall
	StrategyBuyPut
	StrategySellPut
	StrategyBuyCallSpread
	StrategySellCallSpread
	StrategyBuyPutSpread
	StrategySellPutSpread
)

// Strategies 全部有效策略，按编码值升序
var Strategies = []Strategy{
	StrategyBuyCall,
	StrategySellCall,
	StrategyBuyPut,
	StrategySellPut,
	StrategyBuyCallSpread,
	StrategySellCallSpread,
	StrategyBuyPutSpread,
	StrategySellPutSpread,
}

func (s Strategy) String() string {
	switch s {
	case StrategyBuyCall:
		return "BuyCall"
	case StrategySellCall:
		return "SellCall"
	case StrategyBuyPut:
		return "BuyPut"
	case StrategySellPut:
		return "SellPut"
	case StrategyBuyCallSpread:
		return "BuyCallSpread"
	case StrategySellCallSpread:
		return "SellCallSpread"
	case StrategyBuyPutSpread:
		return "BuyPutSpread"
	case StrategySellPutSpread:
		return "SellPutSpread"
	}
	return "NotSupported"
}

// Valid 是否为八种有效策略之一
func (s Strategy) Valid() bool {
	return s >= StrategyBuyCall && s <= StrategySellPutSpread
}

func (s Strategy) IsBuy() bool {
	switch s {
	case StrategyBuyCall, StrategyBuyPut, StrategyBuyCallSpread, StrategyBuyPutSpread:
		return true
	}
	return false
}

func (s Strategy) IsSell() bool {
	switch s {
	case StrategySellCall, StrategySellPut, StrategySellCallSpread, StrategySellPutSpread:
		return true
	}
	return false
}

func (s Strategy) IsCall() bool {
	switch s {
	case StrategyBuyCall, StrategySellCall, StrategyBuyCallSpread, StrategySellCallSpread:
		return true
	}
	return false
}

func (s Strategy) IsPut() bool {
	switch s {
	case StrategyBuyPut, StrategySellPut, StrategyBuyPutSpread, StrategySellPutSpread:
		return true
	}
	return false
}

// IsVanilla 单腿策略
func (s Strategy) IsVanilla() bool {
	return s.Valid() && s <= StrategySellPut
}

func (s Strategy) IsCallSpread() bool {
	return s == StrategyBuyCallSpread || s == StrategySellCallSpread
}

func (s Strategy) IsPutSpread() bool {
	return s == StrategyBuyPutSpread || s == StrategySellPutSpread
}

func (s Strategy) IsSpread() bool {
	return s.IsCallSpread() || s.IsPutSpread()
}

// LegCount 策略对应的腿数，无效策略返回 0
func (s Strategy) LegCount() int {
	switch {
	case s.IsVanilla():
		return 1
	case s.IsSpread():
		return 2
	}
	return 0
}

// Opposite 对手方策略（资金池视角）
func (s Strategy) Opposite() Strategy {
	switch s {
	case StrategyBuyCall:
		return StrategySellCall
	case StrategySellCall:
		return StrategyBuyCall
	case StrategyBuyPut:
		return StrategySellPut
	case StrategySellPut:
		return StrategyBuyPut
	case StrategyBuyCallSpread:
		return StrategySellCallSpread
	case StrategySellCallSpread:
		return StrategyBuyCallSpread
	case StrategyBuyPutSpread:
		return StrategySellPutSpread
	case StrategySellPutSpread:
		return StrategyBuyPutSpread
	}
	return StrategyNotSupported
}

// StrategyFor 由交易方向、期权类型与是否单腿得到策略
func StrategyFor(isBuy, isCall, isVanilla bool) Strategy {
	switch {
	case isBuy && isCall && isVanilla:
		return StrategyBuyCall
	case isBuy && isCall:
		return StrategyBuyCallSpread
	case isBuy && isVanilla:
		return StrategyBuyPut
	case isBuy:
		return StrategyBuyPutSpread
	case isCall && isVanilla:
		return StrategySellCall
	case isCall:
		return StrategySellCallSpread
	case isVanilla:
		return StrategySellPut
	default:
		return StrategySellPutSpread
	}
}

// legPattern 单腿的 (isBuy, isCall) 组合
type legPattern struct {
	isBuy  bool
	isCall bool
}

func patternOf(l OptionLeg) legPattern { return legPattern{isBuy: l.IsBuy, isCall: l.IsCall} }

var (
	vanillaPatterns = map[legPattern]Strategy{
		{isBuy: true, isCall: true}:   StrategyBuyCall,
		{isBuy: false, isCall: true}:  StrategySellCall,
		{isBuy: true, isCall: false}:  StrategyBuyPut,
		{isBuy: false, isCall: false}: StrategySellPut,
	}
	// 价差按行权价升序后的 [低腿, 高腿]
	spreadPatterns = map[[2]legPattern]Strategy{
		{{isBuy: true, isCall: true}, {isBuy: false, isCall: true}}:   StrategyBuyCallSpread,
		{{isBuy: false, isCall: true}, {isBuy: true, isCall: true}}:   StrategySellCallSpread,
		{{isBuy: false, isCall: false}, {isBuy: true, isCall: false}}: StrategyBuyPutSpread,
		{{isBuy: true, isCall: false}, {isBuy: false, isCall: false}}: StrategySellPutSpread,
	}
)

// ClassifyStrategy 对已排序的腿进行策略分类。
// 未匹配的组合返回 StrategyNotSupported 与 ErrInvalidStrategy，不做任何回退。
func ClassifyStrategy(legs []OptionLeg) (Strategy, error) {
	var (
		s  Strategy
		ok bool
	)
	switch len(legs) {
	case 1:
		s, ok = vanillaPatterns[patternOf(legs[0])]
	case 2:
		s, ok = spreadPatterns[[2]legPattern{patternOf(legs[0]), patternOf(legs[1])}]
	}
	if !ok {
		return StrategyNotSupported, ErrInvalidStrategy
	}
	return s, nil
}
