package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	derivatives "github.com/wyfcoding/optionpool/internal/derivatives/domain"
	pricing "github.com/wyfcoding/optionpool/internal/pricing/domain"
	"github.com/wyfcoding/optionpool/internal/risk/domain"
	"github.com/wyfcoding/optionpool/pkg/logger"
	"github.com/wyfcoding/optionpool/pkg/metrics"
)

const defaultQuoteConcurrency = 8

// ErrNonFiniteQuote 报价金额为 NaN 或无穷
var ErrNonFiniteQuote = errors.New("quote amount is not finite")

// RiskPremiumService 风险溢价应用服务。只读取调用方传入的池子快照，不持有状态
type RiskPremiumService struct {
	params      domain.RiskPremiumParams
	tranches    domain.TrancheThresholds
	concurrency int
	metrics     metrics.MetricsCollector
	logger      *slog.Logger
}

// Option RiskPremiumService 可选项
type Option func(*RiskPremiumService)

// WithTrancheThresholds 设置资金池分层阈值
func WithTrancheThresholds(th domain.TrancheThresholds) Option {
	return func(s *RiskPremiumService) { s.tranches = th }
}

// WithQuoteConcurrency 设置报价看板并发度
func WithQuoteConcurrency(n int) Option {
	return func(s *RiskPremiumService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewRiskPremiumService 创建服务，参数非法时返回错误
func NewRiskPremiumService(params domain.RiskPremiumParams, collector metrics.MetricsCollector, l *slog.Logger, opts ...Option) (*RiskPremiumService, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	if l == nil {
		l = logger.Get()
	}
	s := &RiskPremiumService{
		params:      params,
		tranches:    domain.DefaultTrancheThresholds(),
		concurrency: defaultQuoteConcurrency,
		metrics:     collector,
		logger:      l.With("component", "risk_premium"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Params 当前模型参数
func (s *RiskPremiumService) Params() domain.RiskPremiumParams { return s.params }

// PriceRiskPremium 计算单笔交易的风险溢价
func (s *RiskPremiumService) PriceRiskPremium(ctx context.Context, cmd PriceRiskPremiumCommand) (*domain.RiskPremiumResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := domain.CalculateRiskPremium(cmd.RiskPremiumInput, s.params)
	if err != nil {
		logger.Enrich(ctx, s.logger).WarnContext(ctx, "risk premium failed",
			"asset", cmd.Asset, "expiry", cmd.Expiry, "error", err)
		return nil, err
	}

	s.metrics.RecordRiskPremium(cmd.Asset, side(cmd.IsBuy), res.Rate)
	logger.Enrich(ctx, s.logger).DebugContext(ctx, "risk premium priced",
		"asset", cmd.Asset,
		"expiry", cmd.Expiry,
		"side", side(cmd.IsBuy),
		"is_open", cmd.IsOpen,
		"rate", res.Rate,
		"base_rp", res.BaseRp,
		"rp_multiplier", res.RPMultiplier,
		"ur0", res.UR0,
		"ur1", res.UR1,
	)
	return res, nil
}

// ProjectPool 计算风险溢价并推演交易后的资金池状态，返回新的快照，入参不变。
// 交易的池子快照一律取自 cmd.Pool 中对应分层与标的，Trade 上的 PoolGreeks/PoolUtilization 被忽略
func (s *RiskPremiumService) ProjectPool(ctx context.Context, cmd ProjectPoolCommand) (*ProjectPoolResult, error) {
	trade := cmd.Trade
	trade.PoolGreeks = cmd.Pool.Exposure.Get(trade.Tranche, trade.Asset)
	trade.PoolUtilization = cmd.Pool.Utilization[trade.Tranche]

	res, err := s.PriceRiskPremium(ctx, PriceRiskPremiumCommand{RiskPremiumInput: trade})
	if err != nil {
		return nil, err
	}

	delta := res.ProjectedPoolGreeks.Sub(res.PoolGreeks)
	next := PoolState{
		Exposure:    cmd.Pool.Exposure.Add(trade.Tranche, trade.Asset, delta),
		Utilization: make(map[derivatives.Tranche]domain.PoolUtilization, len(cmd.Pool.Utilization)+1),
	}
	for t, u := range cmd.Pool.Utilization {
		next.Utilization[t] = u
	}
	next.Utilization[trade.Tranche] = res.ProjectedPoolUtilization

	return &ProjectPoolResult{Premium: res, Pool: next}, nil
}

// QuoteBoard 并发为每个合约计算买卖双边报价。任一合约失败时取消其余计算并返回错误
func (s *RiskPremiumService) QuoteBoard(ctx context.Context, cmd QuoteBoardCommand) ([]InstrumentQuote, error) {
	defer logger.LogDuration(ctx, s.logger, "quote board done", "instruments", len(cmd.Instruments))()
	start := time.Now()

	quotes := make([]InstrumentQuote, len(cmd.Instruments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, name := range cmd.Instruments {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			q, err := s.quoteInstrument(gctx, name, cmd)
			if err != nil {
				return fmt.Errorf("quote %s: %w", name, err)
			}
			quotes[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Enrich(ctx, s.logger).WarnContext(ctx, "quote board failed", "error", err)
		return nil, err
	}

	s.metrics.ObserveQuoteBoard(time.Since(start).Seconds())
	return quotes, nil
}

func (s *RiskPremiumService) quoteInstrument(ctx context.Context, name string, cmd QuoteBoardCommand) (InstrumentQuote, error) {
	inst, err := pricing.ParseInstrument(name)
	if err != nil {
		return InstrumentQuote{}, err
	}
	index, ok := cmd.Market.FuturesIndex[inst.Asset]
	if !ok {
		return InstrumentQuote{}, fmt.Errorf("%w: no futures index for %s", domain.ErrUnsupportedAsset, inst.Asset)
	}

	now := cmd.Market.Now
	futures := pricing.UnderlyingFutures(index, inst.Expiry, now, cmd.Market.RiskFreeRates[inst.Asset])
	mark, err := pricing.EstimateMarkIV(name, cmd.Market.Quotes, futures, now)
	if err != nil {
		return InstrumentQuote{}, err
	}

	tranche := domain.TrancheForExpiry(inst.Expiry, now, s.tranches)
	in := domain.RiskPremiumInput{
		Asset:             inst.Asset,
		Expiry:            inst.Expiry,
		Now:               now,
		IsOpen:            true,
		Type:              inst.Type,
		Main:              pricing.LegQuote{StrikePrice: float64(inst.StrikePrice), MarkIV: mark.IV, MarkPrice: mark.Price},
		Size:              cmd.Size,
		UnderlyingFutures: futures,
		SpotIndex:         cmd.SpotIndex[inst.Asset],
		VolatilityScore:   cmd.VolatilityScore[inst.Asset],
		Tranche:           tranche,
		PoolGreeks:        cmd.Pool.Exposure.Get(tranche, inst.Asset),
		PoolUtilization:   cmd.Pool.Utilization[tranche],
	}

	in.IsBuy = true
	buy, err := s.PriceRiskPremium(ctx, PriceRiskPremiumCommand{RiskPremiumInput: in})
	if err != nil {
		return InstrumentQuote{}, err
	}
	in.IsBuy = false
	sell, err := s.PriceRiskPremium(ctx, PriceRiskPremiumCommand{RiskPremiumInput: in})
	if err != nil {
		return InstrumentQuote{}, err
	}

	bid, ask := domain.BidAsk(mark.Price, buy.Rate, sell.Rate)
	amounts, err := s.amounts(mark.Price, bid, ask)
	if err != nil {
		return InstrumentQuote{}, err
	}
	return InstrumentQuote{
		Instrument: name,
		Tranche:    tranche,
		MarkIV:     mark.IV,
		MarkPrice:  amounts[0],
		RateBuy:    buy.Rate,
		RateSell:   sell.Rate,
		Bid:        amounts[1],
		Ask:        amounts[2],
		Greeks:     buy.TradeGreeks,
	}, nil
}

// amounts 转为 decimal 并按模型小数位取整
func (s *RiskPremiumService) amounts(vs ...float64) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(vs))
	for i, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %v", ErrNonFiniteQuote, v)
		}
		out[i] = decimal.NewFromFloat(v).Round(s.params.DecimalPlaces)
	}
	return out, nil
}

func side(isBuy bool) string {
	if isBuy {
		return "buy"
	}
	return "sell"
}
