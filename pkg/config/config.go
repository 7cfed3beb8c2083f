// Package config 提供 TOML 配置加载、环境变量覆盖与 schema 校验
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/wyfcoding/optionpool/pkg/logger"
)

// Config 基础配置结构
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// 日志配置
	Logger logger.Config `mapstructure:"logger"`
	// 指标配置
	Metrics MetricsConfig `mapstructure:"metrics"`
	// 定价引擎配置
	Engine EngineConfig `mapstructure:"engine"`
	// 风险溢价模型参数
	RiskPremium RiskPremiumConfig `mapstructure:"risk_premium"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `mapstructure:"enabled"`
	// 指标命名空间
	Namespace string `mapstructure:"namespace"`
}

// EngineConfig 定价引擎运行参数
type EngineConfig struct {
	// 资金池金额运算的小数位（显式精度，不依赖全局设置）
	DecimalPlaces int32 `mapstructure:"decimal_places"`
	// 报价看板并发度
	QuoteConcurrency int `mapstructure:"quote_concurrency"`
	// 短期池上限（天）
	TrancheShortDays float64 `mapstructure:"tranche_short_days"`
	// 中期池上限（天）
	TrancheMidDays float64 `mapstructure:"tranche_mid_days"`
	// 标的名称到期权 ID 中 asset 索引的映射
	Assets map[string]uint16 `mapstructure:"assets"`
}

// AssetWeightsConfig 单个标的在三个期限桶上的权重，每个桶依次为 delta, vega, theta
type AssetWeightsConfig struct {
	Short []float64 `mapstructure:"short"`
	Mid   []float64 `mapstructure:"mid"`
	Long  []float64 `mapstructure:"long"`
}

// MultiplierTierConfig rpMultiplier 的二次曲线档位 a*(m+b)^2+c，上限 cap
type MultiplierTierConfig struct {
	MaxDays float64 `mapstructure:"max_days"`
	A       float64 `mapstructure:"a"`
	B       float64 `mapstructure:"b"`
	C       float64 `mapstructure:"c"`
	Cap     float64 `mapstructure:"cap"`
}

// RiskPremiumConfig 风险溢价模型参数
type RiskPremiumConfig struct {
	TotalRatio             float64                       `mapstructure:"total_ratio"`
	MaxSellRate            float64                       `mapstructure:"max_sell_rate"`
	ReducingRiskFactor     float64                       `mapstructure:"reducing_risk_factor"`
	VolatilityScoreDivisor float64                       `mapstructure:"volatility_score_divisor"`
	UnitPercentageMin      float64                       `mapstructure:"unit_percentage_min"`
	UnitPercentageMax      float64                       `mapstructure:"unit_percentage_max"`
	StandardSizes          []float64                     `mapstructure:"standard_sizes"`
	ScalingFactorMin       float64                       `mapstructure:"scaling_factor_min"`
	ScalingFactorMax       float64                       `mapstructure:"scaling_factor_max"`
	ShortTermDays          float64                       `mapstructure:"short_term_days"`
	MidTermDays            float64                       `mapstructure:"mid_term_days"`
	Weights                map[string]AssetWeightsConfig `mapstructure:"weights"`
	AssetRatios            map[string]float64            `mapstructure:"asset_ratios"`
	DirectionRatios        map[string]float64            `mapstructure:"direction_ratios"`
	MulRatio               float64                       `mapstructure:"mul_ratio"`
	MultiplierTiers        []MultiplierTierConfig        `mapstructure:"multiplier_tiers"`
	URThreshold            float64                       `mapstructure:"ur_threshold"`
	URInitialMultiplier    float64                       `mapstructure:"ur_initial_multiplier"`
	URMaxValue             float64                       `mapstructure:"ur_max_value"`
}

// Load 从 TOML 文件加载配置，支持环境变量覆盖
func Load(configPath string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return decode(v)
}

// LoadWithDefaults 从 TOML 文件加载配置，文件不存在时仅使用默认值
func LoadWithDefaults(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("toml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	// 设置环境变量前缀，APP_ENGINE_DECIMAL_PLACES 覆盖 engine.decimal_places
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.Engine.DecimalPlaces < 0 || c.Engine.DecimalPlaces > 36 {
		return fmt.Errorf("invalid engine.decimal_places: %d", c.Engine.DecimalPlaces)
	}
	if c.Engine.QuoteConcurrency <= 0 {
		return fmt.Errorf("invalid engine.quote_concurrency: %d", c.Engine.QuoteConcurrency)
	}
	if c.Engine.TrancheShortDays <= 0 || c.Engine.TrancheMidDays <= c.Engine.TrancheShortDays {
		return fmt.Errorf("invalid tranche thresholds: short=%v mid=%v", c.Engine.TrancheShortDays, c.Engine.TrancheMidDays)
	}

	rp := c.RiskPremium
	if rp.MaxSellRate <= 0 {
		return fmt.Errorf("invalid risk_premium.max_sell_rate: %v", rp.MaxSellRate)
	}
	if len(rp.StandardSizes) == 0 {
		return fmt.Errorf("risk_premium.standard_sizes is required")
	}
	for i := 1; i < len(rp.StandardSizes); i++ {
		if rp.StandardSizes[i] <= rp.StandardSizes[i-1] {
			return fmt.Errorf("risk_premium.standard_sizes must be strictly ascending")
		}
	}
	if len(rp.MultiplierTiers) != 3 {
		return fmt.Errorf("risk_premium.multiplier_tiers must have 3 entries, got %d", len(rp.MultiplierTiers))
	}
	for asset, w := range rp.Weights {
		if len(w.Short) != 3 || len(w.Mid) != 3 || len(w.Long) != 3 {
			return fmt.Errorf("risk_premium.weights.%s must have 3 values per term", asset)
		}
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "optionpool")
	v.SetDefault("environment", "dev")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/optionpool.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "optionpool")

	v.SetDefault("engine.decimal_places", 18)
	v.SetDefault("engine.quote_concurrency", 8)
	v.SetDefault("engine.tranche_short_days", 2)
	v.SetDefault("engine.tranche_mid_days", 90)
	v.SetDefault("engine.assets", map[string]any{"BTC": 1, "ETH": 2})

	v.SetDefault("risk_premium.total_ratio", 1.0)
	v.SetDefault("risk_premium.max_sell_rate", 0.8)
	v.SetDefault("risk_premium.reducing_risk_factor", 0.1)
	v.SetDefault("risk_premium.volatility_score_divisor", 100.0)
	v.SetDefault("risk_premium.unit_percentage_min", 1.0)
	v.SetDefault("risk_premium.unit_percentage_max", 2.0)
	v.SetDefault("risk_premium.standard_sizes", []float64{1e5, 1e6, 1e7, 1e8, 1e9})
	v.SetDefault("risk_premium.scaling_factor_min", 1.0)
	v.SetDefault("risk_premium.scaling_factor_max", 10.0)
	v.SetDefault("risk_premium.short_term_days", 2.0)
	v.SetDefault("risk_premium.mid_term_days", 90.0)
	v.SetDefault("risk_premium.weights", map[string]any{
		"BTC": map[string]any{
			"short": []float64{0.0004, 0.0030, 0.0030},
			"mid":   []float64{0.0003, 0.0020, 0.0020},
			"long":  []float64{0.0002, 0.0015, 0.0015},
		},
		"ETH": map[string]any{
			"short": []float64{0.0006, 0.0040, 0.0040},
			"mid":   []float64{0.0004, 0.0030, 0.0030},
			"long":  []float64{0.0003, 0.0020, 0.0020},
		},
	})
	v.SetDefault("risk_premium.asset_ratios", map[string]any{"BTC": 1.0, "ETH": 1.1})
	v.SetDefault("risk_premium.direction_ratios", map[string]any{"call": 1.0, "put": 1.0})
	v.SetDefault("risk_premium.mul_ratio", 1.0)
	v.SetDefault("risk_premium.multiplier_tiers", []map[string]any{
		{"max_days": 2.0, "a": 12.0, "b": -0.5, "c": 1.0, "cap": 8.0},
		{"max_days": 7.0, "a": 8.0, "b": -0.5, "c": 1.0, "cap": 8.0},
		{"max_days": 0.0, "a": 4.0, "b": -0.5, "c": 1.0, "cap": 4.0},
	})
	v.SetDefault("risk_premium.ur_threshold", 0.4)
	v.SetDefault("risk_premium.ur_initial_multiplier", 0.5)
	v.SetDefault("risk_premium.ur_max_value", 1.0)
}
