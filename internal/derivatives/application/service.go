package application

import (
	"context"
	"log/slog"

	"github.com/wyfcoding/optionpool/internal/derivatives/domain"
	pricing "github.com/wyfcoding/optionpool/internal/pricing/domain"
	"github.com/wyfcoding/optionpool/pkg/logger"
	"github.com/wyfcoding/optionpool/pkg/metrics"
)

// EncodeCommand 期权 ID 编码命令，腿的顺序任意
type EncodeCommand struct {
	Asset   string
	Expiry  int64
	Legs    []domain.OptionLeg
	Tranche domain.Tranche
}

// DecodedOption 解码后的头寸及其合约名称
type DecodedOption struct {
	ID          domain.OptionID  `json:"id"`
	Asset       string           `json:"asset"`
	Position    *domain.Position `json:"position"`
	Instruments []string         `json:"instruments"`
}

// OptionIDService 期权 ID 编解码服务
type OptionIDService struct {
	assets  *domain.AssetRegistry
	metrics metrics.MetricsCollector
	logger  *slog.Logger
}

func NewOptionIDService(assets *domain.AssetRegistry, collector metrics.MetricsCollector, l *slog.Logger) *OptionIDService {
	if assets == nil {
		assets = domain.DefaultAssets()
	}
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	if l == nil {
		l = logger.Get()
	}
	return &OptionIDService{
		assets:  assets,
		metrics: collector,
		logger:  l.With("component", "option_id"),
	}
}

// Encode 按标的名称编码期权 ID
func (s *OptionIDService) Encode(ctx context.Context, cmd EncodeCommand) (domain.OptionID, error) {
	idx, err := s.assets.Index(cmd.Asset)
	if err != nil {
		s.metrics.RecordCodecError("encode")
		return domain.OptionID{}, err
	}
	id, err := domain.EncodeOptionID(idx, cmd.Expiry, cmd.Legs, cmd.Tranche)
	if err != nil {
		s.metrics.RecordCodecError("encode")
		logger.Enrich(ctx, s.logger).WarnContext(ctx, "encode option id failed",
			"asset", cmd.Asset, "expiry", cmd.Expiry, "legs", len(cmd.Legs), "error", err)
		return domain.OptionID{}, err
	}
	return id, nil
}

// Decode 解析十进制或十六进制的期权 ID
func (s *OptionIDService) Decode(ctx context.Context, raw string) (*DecodedOption, error) {
	id, err := domain.ParseOptionID(raw)
	if err != nil {
		s.metrics.RecordCodecError("parse")
		return nil, err
	}
	p, err := domain.DecodeOptionID(id)
	if err != nil {
		s.metrics.RecordCodecError("decode")
		logger.Enrich(ctx, s.logger).WarnContext(ctx, "decode option id failed", "option_id", id.Hex(), "error", err)
		return nil, err
	}
	asset, err := s.assets.Name(p.UnderlyingAssetIndex)
	if err != nil {
		return nil, err
	}
	return &DecodedOption{
		ID:          id,
		Asset:       asset,
		Position:    p,
		Instruments: pricing.InstrumentNames(asset, p),
	}, nil
}
