// 包 期权定价的领域模型：正态分布、基于期货价格的 Black-Scholes Greeks 与标记价格、标记 IV 估算
package domain

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "CALL" // 看涨期权
	OptionTypePut  OptionType = "PUT"  // 看跌期权
)

// OptionTypeOf 由 isCall 得到期权类型
func OptionTypeOf(isCall bool) OptionType {
	if isCall {
		return OptionTypeCall
	}
	return OptionTypePut
}

func (t OptionType) IsCall() bool { return t == OptionTypeCall }

// Valid 是否为 CALL 或 PUT
func (t OptionType) Valid() bool {
	return t == OptionTypeCall || t == OptionTypePut
}

// suffix 合约名称中的方向后缀
func (t OptionType) suffix() string {
	if t.IsCall() {
		return "C"
	}
	return "P"
}
