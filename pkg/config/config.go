// Package config 提供 TOML 配置加载、环境变量覆盖与校验
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 基础配置结构
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 服务版本
	Version string `mapstructure:"version"`
	// 环境：dev, staging, prod
	Environment string           `mapstructure:"environment"`
	HTTP        HTTPConfig       `mapstructure:"http"`
	Logger      LoggerConfig     `mapstructure:"logger"`
	Metrics     MetricsConfig    `mapstructure:"metrics"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Pricing     PricingConfig    `mapstructure:"pricing"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// 读超时（秒）
	ReadTimeout int `mapstructure:"read_timeout"`
	// 写超时（秒），蒙特卡洛扫描可能较慢
	WriteTimeout int `mapstructure:"write_timeout"`
}

// Addr 监听地址
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	WithCaller bool   `mapstructure:"with_caller"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// RateLimitConfig HTTP 限流配置（令牌桶）
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	QPS     float64 `mapstructure:"qps"`
	Burst   int     `mapstructure:"burst"`
}

// PricingConfig 定价引擎默认参数
type PricingConfig struct {
	// 默认定价方法：black_scholes, binomial, monte_carlo
	DefaultMethod string `mapstructure:"default_method"`
	// 二叉树默认步数
	Steps int `mapstructure:"steps"`
	// 二叉树步数上限
	MaxSteps int `mapstructure:"max_steps"`
	// 蒙特卡洛默认抽样次数
	Paths int `mapstructure:"paths"`
	// 蒙特卡洛抽样上限，限制单次请求耗时
	MaxPaths int `mapstructure:"max_paths"`
	// 现价扫描时蒙特卡洛的抽样次数
	SweepPaths int `mapstructure:"sweep_paths"`
	// 现价扫描点数
	SweepPoints int `mapstructure:"sweep_points"`
	// 扫描区间下限/上限（现价倍数）
	SweepLow  float64 `mapstructure:"sweep_low"`
	SweepHigh float64 `mapstructure:"sweep_high"`
	// 扫描并发数，0 表示 GOMAXPROCS
	SweepWorkers int `mapstructure:"sweep_workers"`
	// 默认无风险利率与波动率
	DefaultRate       float64 `mapstructure:"default_rate"`
	DefaultVolatility float64 `mapstructure:"default_volatility"`
}

// MarketDataConfig 行情源配置
type MarketDataConfig struct {
	// 行情源：polygon, static, none
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	// 回看天数，取最近一根日线收盘价
	LookbackDays int `mapstructure:"lookback_days"`
	// 请求失败后的重试次数
	Retries int `mapstructure:"retries"`
	// static 行情源的固定报价
	Static map[string]float64 `mapstructure:"static"`
}

// Load 从 TOML 文件加载配置，path 为空时只使用默认值与环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// 环境变量覆盖，例如 APP_PRICING_PATHS=20000
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	p := c.Pricing
	if p.Steps < 2 || p.Steps > p.MaxSteps {
		return fmt.Errorf("pricing.steps must be in [2, %d], got %d", p.MaxSteps, p.Steps)
	}
	if p.Paths < 2 || p.Paths > p.MaxPaths {
		return fmt.Errorf("pricing.paths must be in [2, %d], got %d", p.MaxPaths, p.Paths)
	}
	if p.SweepPaths < 2 || p.SweepPaths > p.MaxPaths {
		return fmt.Errorf("pricing.sweep_paths must be in [2, %d], got %d", p.MaxPaths, p.SweepPaths)
	}
	if p.SweepPoints < 2 {
		return fmt.Errorf("pricing.sweep_points must be at least 2, got %d", p.SweepPoints)
	}
	if !(p.SweepLow > 0) || !(p.SweepHigh > p.SweepLow) {
		return fmt.Errorf("invalid sweep range [%v, %v]", p.SweepLow, p.SweepHigh)
	}
	if p.SweepWorkers < 0 {
		return fmt.Errorf("pricing.sweep_workers must not be negative")
	}
	if c.MarketData.Retries < 0 {
		return fmt.Errorf("market_data.retries must not be negative")
	}
	switch c.MarketData.Provider {
	case "", "none", "static":
	case "polygon":
		if c.MarketData.APIKey == "" {
			return fmt.Errorf("market_data.api_key is required for polygon provider")
		}
	default:
		return fmt.Errorf("unknown market_data.provider %q", c.MarketData.Provider)
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "pricing")
	v.SetDefault("version", "dev")
	v.SetDefault("environment", "dev")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 120)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/pricing.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.qps", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("pricing.default_method", "black_scholes")
	v.SetDefault("pricing.steps", 100)
	v.SetDefault("pricing.max_steps", 5000)
	v.SetDefault("pricing.paths", 100000)
	v.SetDefault("pricing.max_paths", 2000000)
	v.SetDefault("pricing.sweep_paths", 3000)
	v.SetDefault("pricing.sweep_points", 50)
	v.SetDefault("pricing.sweep_low", 0.5)
	v.SetDefault("pricing.sweep_high", 1.5)
	v.SetDefault("pricing.sweep_workers", 0)
	v.SetDefault("pricing.default_rate", 0.05)
	v.SetDefault("pricing.default_volatility", 0.2)

	v.SetDefault("market_data.provider", "none")
	v.SetDefault("market_data.lookback_days", 10)
	v.SetDefault("market_data.retries", 2)
}
