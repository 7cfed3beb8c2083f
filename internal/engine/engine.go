// Package engine 按配置组装定价引擎：日志、指标与各应用服务
package engine

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	derivativesapp "github.com/wyfcoding/optionpool/internal/derivatives/application"
	pricingapp "github.com/wyfcoding/optionpool/internal/pricing/application"
	riskapp "github.com/wyfcoding/optionpool/internal/risk/application"
	"github.com/wyfcoding/optionpool/pkg/config"
	"github.com/wyfcoding/optionpool/pkg/logger"
	"github.com/wyfcoding/optionpool/pkg/metrics"
)

// Engine 组装完成的服务集合
type Engine struct {
	Config      *config.Config
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	OptionIDs   *derivativesapp.OptionIDService
	Pricing     *pricingapp.PricingService
	RiskPremium *riskapp.RiskPremiumService
	Exposure    *riskapp.PoolExposureService
}

// New 按配置构建引擎并安装全局 logger，reg 为 nil 时使用默认 Registerer。返回的 cleanup 关闭日志输出
func New(cfg *config.Config, reg prometheus.Registerer) (*Engine, func(), error) {
	closer, err := logger.Init(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	l := logger.Get().With("service", cfg.ServiceName, "env", cfg.Environment)
	cleanup := func() { closeQuietly(closer) }

	var (
		m         *metrics.Metrics
		collector metrics.MetricsCollector = metrics.NopCollector{}
	)
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace, "engine")
		if err := m.Register(reg); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("register metrics: %w", err)
		}
		collector = metrics.NewDefaultMetricsCollector(m)
	}

	assets, err := riskapp.AssetsFromConfig(cfg.Engine.Assets)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("asset registry: %w", err)
	}
	params, err := riskapp.ParamsFromConfig(cfg.RiskPremium, cfg.Engine.DecimalPlaces)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("risk premium params: %w", err)
	}
	riskPremium, err := riskapp.NewRiskPremiumService(params, collector, l,
		riskapp.WithTrancheThresholds(riskapp.TrancheThresholdsFromConfig(cfg.Engine)),
		riskapp.WithQuoteConcurrency(cfg.Engine.QuoteConcurrency),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	l.Info("pricing engine initialized",
		"metrics", cfg.Metrics.Enabled,
		"decimal_places", cfg.Engine.DecimalPlaces,
		"quote_concurrency", cfg.Engine.QuoteConcurrency,
	)
	return &Engine{
		Config:      cfg,
		Logger:      l,
		Metrics:     m,
		OptionIDs:   derivativesapp.NewOptionIDService(assets, collector, l),
		Pricing:     pricingapp.NewPricingService(assets, collector, l),
		RiskPremium: riskPremium,
		Exposure:    riskapp.NewPoolExposureService(assets, collector, l),
	}, cleanup, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
