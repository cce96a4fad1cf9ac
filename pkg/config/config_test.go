package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "pricing", cfg.ServiceName)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 100, cfg.Pricing.Steps)
	assert.Equal(t, 100000, cfg.Pricing.Paths)
	assert.Equal(t, 3000, cfg.Pricing.SweepPaths)
	assert.Equal(t, 50, cfg.Pricing.SweepPoints)
	assert.Equal(t, 0.5, cfg.Pricing.SweepLow)
	assert.Equal(t, 1.5, cfg.Pricing.SweepHigh)
	assert.Equal(t, 0.05, cfg.Pricing.DefaultRate)
	assert.Equal(t, 0.2, cfg.Pricing.DefaultVolatility)
	assert.Equal(t, "none", cfg.MarketData.Provider)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.toml")
	content := `
service_name = "pricing-test"

[http]
port = 9090

[pricing]
default_method = "binomial"
steps = 250

[market_data]
provider = "static"

[market_data.static]
AAPL = 187.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("APP_PRICING_PATHS", "20000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pricing-test", cfg.ServiceName)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, "binomial", cfg.Pricing.DefaultMethod)
	assert.Equal(t, 250, cfg.Pricing.Steps)
	assert.Equal(t, 20000, cfg.Pricing.Paths)
	assert.Equal(t, "static", cfg.MarketData.Provider)
	assert.InDelta(t, 187.5, cfg.MarketData.Static["aapl"], 1e-9)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "pricing", cfg.ServiceName)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cases := map[string]func(*Config){
		"bad port":          func(c *Config) { c.HTTP.Port = 0 },
		"one step":          func(c *Config) { c.Pricing.Steps = 1 },
		"paths above limit": func(c *Config) { c.Pricing.Paths = c.Pricing.MaxPaths + 1 },
		"one sweep point":   func(c *Config) { c.Pricing.SweepPoints = 1 },
		"inverted range":    func(c *Config) { c.Pricing.SweepLow, c.Pricing.SweepHigh = 1.5, 0.5 },
		"polygon no key":    func(c *Config) { c.MarketData.Provider = "polygon" },
		"unknown provider":  func(c *Config) { c.MarketData.Provider = "bloomberg" },
	}
	for name, mod := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mod(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
