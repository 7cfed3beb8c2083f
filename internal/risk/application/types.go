package application

import (
	"github.com/shopspring/decimal"

	derivatives "github.com/wyfcoding/optionpool/internal/derivatives/domain"
	pricing "github.com/wyfcoding/optionpool/internal/pricing/domain"
	"github.com/wyfcoding/optionpool/internal/risk/domain"
)

// PriceRiskPremiumCommand 单笔交易的风险溢价计算命令
type PriceRiskPremiumCommand struct {
	domain.RiskPremiumInput
}

// PoolState 资金池各分层的敞口与资金占用快照，调用方持有
type PoolState struct {
	Exposure    domain.PoolExposure
	Utilization map[derivatives.Tranche]domain.PoolUtilization
}

// QuoteBoardCommand 报价看板命令
type QuoteBoardCommand struct {
	// 合约名称，如 BTC-8MAR24-65000-C
	Instruments []string
	// 报价基准数量
	Size   float64
	Market domain.MarketSnapshot
	// 标的现货指数
	SpotIndex map[string]float64
	// 标的波动率分
	VolatilityScore map[string]float64
	Pool            PoolState
}

// InstrumentQuote 单个合约的双边报价，金额按模型小数位取整
type InstrumentQuote struct {
	Instrument string              `json:"instrument"`
	Tranche    derivatives.Tranche `json:"tranche"`
	MarkIV     float64             `json:"mark_iv"`
	MarkPrice  decimal.Decimal     `json:"mark_price"`
	RateBuy    float64             `json:"rate_buy"`
	RateSell   float64             `json:"rate_sell"`
	Bid        decimal.Decimal     `json:"bid"`
	Ask        decimal.Decimal     `json:"ask"`
	Greeks     pricing.Greeks      `json:"greeks"`
}

// ProjectPoolCommand 推演交易后的资金池状态
type ProjectPoolCommand struct {
	// 池子快照字段由 Pool 覆盖
	Trade domain.RiskPremiumInput
	Pool  PoolState
}

// ProjectPoolResult 推演结果，Pool 可直接作为下一笔交易的输入
type ProjectPoolResult struct {
	Premium *domain.RiskPremiumResult
	Pool    PoolState
}

// AggregateGreeksCommand 汇总资金池持仓 Greeks 的命令
type AggregateGreeksCommand struct {
	Positions []domain.StoredPosition
	Market    domain.MarketSnapshot
}

// AggregateGreeksResult 汇总结果
type AggregateGreeksResult struct {
	Exposure domain.PoolExposure
	// 计入汇总的持仓数
	Counted int
	// 因 Greeks 含 0 被跳过的持仓数
	Skipped int
}
