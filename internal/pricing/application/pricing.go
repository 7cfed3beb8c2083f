package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	derivatives "github.com/wyfcoding/optionpool/internal/derivatives/domain"
	"github.com/wyfcoding/optionpool/internal/pricing/domain"
	"github.com/wyfcoding/optionpool/pkg/logger"
	"github.com/wyfcoding/optionpool/pkg/metrics"
)

// ErrEmptyQuery 查询未指定合约或期权 ID
var ErrEmptyQuery = errors.New("instrument or option id is required")

// PricingService 定价应用服务：标记 IV 估算、Greeks 与标的期货价格
type PricingService struct {
	assets  *derivatives.AssetRegistry
	metrics metrics.MetricsCollector
	logger  *slog.Logger
}

// NewPricingService 构造函数。
func NewPricingService(assets *derivatives.AssetRegistry, collector metrics.MetricsCollector, l *slog.Logger) *PricingService {
	if assets == nil {
		assets = derivatives.DefaultAssets()
	}
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	if l == nil {
		l = logger.Get()
	}
	return &PricingService{
		assets:  assets,
		metrics: collector,
		logger:  l.With("component", "pricing"),
	}
}

// EstimateMark 估算单个合约或期权 ID 对应头寸的标记 IV 与价格
func (s *PricingService) EstimateMark(ctx context.Context, q EstimateMarkQuery) (domain.MarkIV, error) {
	if err := ctx.Err(); err != nil {
		return domain.MarkIV{}, err
	}

	switch {
	case q.Instrument != "":
		mark, err := domain.EstimateMarkIV(q.Instrument, q.Quotes, q.UnderlyingFutures, q.Now)
		if err != nil {
			return domain.MarkIV{}, err
		}
		logger.Enrich(ctx, s.logger).DebugContext(ctx, "mark estimated",
			"instrument", q.Instrument, "mark_iv", mark.IV, "mark_price", mark.Price)
		return mark, nil

	case q.OptionID != "":
		id, err := derivatives.ParseOptionID(q.OptionID)
		if err != nil {
			s.metrics.RecordCodecError("parse")
			return domain.MarkIV{}, err
		}
		p, err := derivatives.DecodeOptionID(id)
		if err != nil {
			s.metrics.RecordCodecError("decode")
			return domain.MarkIV{}, err
		}
		asset, err := s.assets.Name(p.UnderlyingAssetIndex)
		if err != nil {
			return domain.MarkIV{}, err
		}
		mark, err := domain.MarkIVForPosition(asset, p, q.Quotes, q.UnderlyingFutures, q.Now)
		if err != nil {
			return domain.MarkIV{}, fmt.Errorf("option %s: %w", id.Hex(), err)
		}
		logger.Enrich(ctx, s.logger).DebugContext(ctx, "position mark estimated",
			"option_id", id.Hex(), "strategy", p.Strategy.String(), "mark_iv", mark.IV, "mark_price", mark.Price)
		return mark, nil
	}
	return domain.MarkIV{}, ErrEmptyQuery
}

// CalculateGreeks 单腿 Greeks，退化输入返回零值
func (s *PricingService) CalculateGreeks(ctx context.Context, cmd CalculateGreeksCommand) (*GreeksResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := &GreeksResult{
		Greeks:    domain.CalculateGreeks(cmd.GreeksInput),
		Moneyness: domain.Moneyness(cmd.GreeksInput),
	}
	logger.Enrich(ctx, s.logger).DebugContext(ctx, "greeks calculated",
		"strike", cmd.StrikePrice, "expiry", cmd.Expiry, "delta", res.Greeks.Delta, "moneyness", res.Moneyness)
	return res, nil
}

// UnderlyingFutures 由期货指数与利率曲线推算到期日的期货价格
func (s *PricingService) UnderlyingFutures(ctx context.Context, q UnderlyingFuturesQuery) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return domain.UnderlyingFutures(q.FuturesIndex, q.Expiry, q.Now, q.Curve), nil
}
