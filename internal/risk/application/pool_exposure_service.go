package application

import (
	"context"
	"errors"
	"log/slog"

	derivatives "github.com/wyfcoding/optionpool/internal/derivatives/domain"
	"github.com/wyfcoding/optionpool/internal/risk/domain"
	"github.com/wyfcoding/optionpool/pkg/logger"
	"github.com/wyfcoding/optionpool/pkg/metrics"
)

// PoolExposureService 资金池持仓 Greeks 汇总
type PoolExposureService struct {
	assets  *derivatives.AssetRegistry
	metrics metrics.MetricsCollector
	logger  *slog.Logger
}

// NewPoolExposureService 创建服务，assets 为 nil 时使用默认标的
func NewPoolExposureService(assets *derivatives.AssetRegistry, collector metrics.MetricsCollector, l *slog.Logger) *PoolExposureService {
	if assets == nil {
		assets = derivatives.DefaultAssets()
	}
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	if l == nil {
		l = logger.Get()
	}
	return &PoolExposureService{
		assets:  assets,
		metrics: collector,
		logger:  l.With("component", "pool_exposure"),
	}
}

// AggregateGreeks 解码持仓并按分层、标的汇总 Greeks。解码失败直接返回错误
func (s *PoolExposureService) AggregateGreeks(ctx context.Context, cmd AggregateGreeksCommand) (*AggregateGreeksResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer logger.LogDuration(ctx, s.logger, "pool greeks aggregated", "positions", len(cmd.Positions))()

	exposure, counted, err := domain.AggregatePositionGreeks(cmd.Positions, s.assets, cmd.Market)
	if err != nil {
		if errors.Is(err, derivatives.ErrNotSupportedStrategy) || errors.Is(err, derivatives.ErrLegCountMismatch) {
			s.metrics.RecordCodecError("decode")
		}
		logger.Enrich(ctx, s.logger).ErrorContext(ctx, "aggregate pool greeks failed", "error", err)
		return nil, err
	}

	s.metrics.RecordAggregatedPositions(counted)
	return &AggregateGreeksResult{
		Exposure: exposure,
		Counted:  counted,
		Skipped:  len(cmd.Positions) - counted,
	}, nil
}
