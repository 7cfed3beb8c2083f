// Package metrics 提供定价引擎的 Prometheus 指标模板与采集器
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标集合
type Metrics struct {
	// 风险溢价计算次数，按标的与买卖方向
	RiskPremiumTotal *prometheus.CounterVec
	// 风险溢价费率分布
	RiskPremiumRate *prometheus.HistogramVec
	// 期权 ID 编解码失败次数，按操作
	CodecErrorsTotal *prometheus.CounterVec
	// 报价看板耗时
	QuoteBoardDuration prometheus.Histogram
	// 资金池 Greeks 聚合的持仓数
	AggregatedPositionsTotal prometheus.Counter
}

// New 创建指标实例
func New(namespace, serviceName string) *Metrics {
	if namespace == "" {
		namespace = "optionpool"
	}
	return &Metrics{
		RiskPremiumTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "risk_premium_total",
			Help:      "Total risk premium calculations",
		}, []string{"asset", "side"}),
		RiskPremiumRate: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "risk_premium_rate",
			Help:      "Distribution of risk premium rates",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.4, 0.8, 1.6},
		}, []string{"side"}),
		CodecErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "option_id_errors_total",
			Help:      "Total option id encode/decode failures",
		}, []string{"op"}),
		QuoteBoardDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "quote_board_duration_seconds",
			Help:      "Quote board pricing duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		AggregatedPositionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "aggregated_positions_total",
			Help:      "Total positions folded into pool exposure",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		m.RiskPremiumTotal,
		m.RiskPremiumRate,
		m.CodecErrorsTotal,
		m.QuoteBoardDuration,
		m.AggregatedPositionsTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler 返回指定 Gatherer 的 /metrics 处理器，供调用方挂载
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// MetricsCollector 指标收集器接口
type MetricsCollector interface {
	// 记录风险溢价计算
	RecordRiskPremium(asset, side string, rate float64)
	// 记录编解码失败
	RecordCodecError(op string)
	// 记录报价看板耗时
	ObserveQuoteBoard(seconds float64)
	// 记录聚合的持仓数
	RecordAggregatedPositions(n int)
}

// DefaultMetricsCollector 默认指标收集器实现
type DefaultMetricsCollector struct {
	metrics *Metrics
}

// NewDefaultMetricsCollector 创建默认指标收集器
func NewDefaultMetricsCollector(metrics *Metrics) *DefaultMetricsCollector {
	return &DefaultMetricsCollector{metrics: metrics}
}

// RecordRiskPremium 记录风险溢价计算
func (c *DefaultMetricsCollector) RecordRiskPremium(asset, side string, rate float64) {
	c.metrics.RiskPremiumTotal.WithLabelValues(asset, side).Inc()
	c.metrics.RiskPremiumRate.WithLabelValues(side).Observe(rate)
}

// RecordCodecError 记录编解码失败
func (c *DefaultMetricsCollector) RecordCodecError(op string) {
	c.metrics.CodecErrorsTotal.WithLabelValues(op).Inc()
}

// ObserveQuoteBoard 记录报价看板耗时
func (c *DefaultMetricsCollector) ObserveQuoteBoard(seconds float64) {
	c.metrics.QuoteBoardDuration.Observe(seconds)
}

// RecordAggregatedPositions 记录聚合的持仓数
func (c *DefaultMetricsCollector) RecordAggregatedPositions(n int) {
	c.metrics.AggregatedPositionsTotal.Add(float64(n))
}

// NopCollector 不做任何记录，用于关闭指标的场景
type NopCollector struct{}

func (NopCollector) RecordRiskPremium(string, string, float64) {}
func (NopCollector) RecordCodecError(string)                   {}
func (NopCollector) ObserveQuoteBoard(float64)                 {}
func (NopCollector) RecordAggregatedPositions(int)             {}
