package application

import (
	"github.com/wyfcoding/optionpool/internal/pricing/domain"
)

// EstimateMarkQuery 标记 IV 查询，Instrument 与 OptionID 二选一
type EstimateMarkQuery struct {
	// 合约名称，如 BTC-8MAR24-65000-C
	Instrument string
	// 十进制或 0x 十六进制的期权 ID
	OptionID string
	Quotes   domain.MarkQuotes
	// 到期日的标的期货价格
	UnderlyingFutures float64
	Now               int64
}

// CalculateGreeksCommand 单腿 Greeks 计算命令
type CalculateGreeksCommand struct {
	domain.GreeksInput
}

// GreeksResult Greeks 与单位 moneyness
type GreeksResult struct {
	Greeks    domain.Greeks `json:"greeks"`
	Moneyness float64       `json:"moneyness"`
}

// UnderlyingFuturesQuery 标的期货价格查询
type UnderlyingFuturesQuery struct {
	FuturesIndex float64
	Expiry       int64
	Now          int64
	Curve        domain.RiskFreeRateCurve
}
