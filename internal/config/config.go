// Package config loads and validates the immutable run configuration:
// component weights, normalization bounds, provider endpoints, and the
// optional cache/history/monitor settings. The loaded struct is passed into
// the pipeline explicitly; there is no module-level state.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ddellaringa6/btis/internal/domain/score"
)

// Config is the full BTIS configuration.
type Config struct {
	Symbol    string             `yaml:"symbol"`
	Output    Output             `yaml:"output"`
	Weights   map[string]float64 `yaml:"weights"`
	Metrics   Metrics            `yaml:"metrics"`
	Providers Providers          `yaml:"providers"`
	Cache     Cache              `yaml:"cache"`
	History   History            `yaml:"history"`
	Monitor   Monitor            `yaml:"monitor"`
}

// Output controls where the score document is written.
type Output struct {
	Path string `yaml:"path"`
}

// Bounds is a [lo, hi] normalization range for a linear metric scale.
type Bounds struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

// Metrics holds the indicator parameters and normalization bounds. The
// funding bounds are a tunable heuristic, not a domain law.
type Metrics struct {
	RSIPeriod     int    `yaml:"rsi_period"`
	RSIWindow     int    `yaml:"rsi_window"`
	HistoryDays   int    `yaml:"history_days"`
	RSIBounds     Bounds `yaml:"rsi_bounds"`
	MVRVBounds    Bounds `yaml:"mvrv_bounds"`
	FundingBounds Bounds `yaml:"funding_bounds"`
}

// Provider configures one upstream HTTP data source.
type Provider struct {
	BaseURL      string  `yaml:"base_url"`
	TimeoutSecs  int     `yaml:"timeout_secs"`
	RateLimitRPS float64 `yaml:"rate_limit_rps"`
}

// GetTimeout returns the request timeout as a time.Duration.
func (p *Provider) GetTimeout() time.Duration {
	return time.Duration(p.TimeoutSecs) * time.Second
}

// Glassnode adds the credential gate: when the named environment variable is
// empty the MVRV metric is disabled entirely.
type Glassnode struct {
	Provider  `yaml:",inline"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// Providers configures all upstream data sources.
type Providers struct {
	CoinGecko Provider  `yaml:"coingecko"`
	FearGreed Provider  `yaml:"feargreed"`
	Binance   Provider  `yaml:"binance"`
	Glassnode Glassnode `yaml:"glassnode"`
}

// Cache configures the optional Redis-backed response cache for the price
// history fetch.
type Cache struct {
	Enabled   bool   `yaml:"enabled"`
	RedisAddr string `yaml:"redis_addr"`
	TTLSecs   int    `yaml:"ttl_secs"`
}

// GetTTL returns the cache TTL as a time.Duration.
func (c *Cache) GetTTL() time.Duration {
	return time.Duration(c.TTLSecs) * time.Second
}

// History configures the optional Postgres score history store.
type History struct {
	Enabled     bool   `yaml:"enabled"`
	DSN         string `yaml:"dsn"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GetTimeout returns the per-query timeout as a time.Duration.
func (h *History) GetTimeout() time.Duration {
	return time.Duration(h.TimeoutSecs) * time.Second
}

// Monitor configures the HTTP monitor server.
type Monitor struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// Default returns the built-in configuration matching the published BTIS
// weighting: RSI 20%, MVRV 25%, Fear & Greed 20%, price-vs-log-range 20%,
// funding 15%.
func Default() *Config {
	return &Config{
		Symbol: "BTC",
		Output: Output{Path: "data/btis.json"},
		Weights: map[string]float64{
			score.MetricRSI:           0.20,
			score.MetricMVRV:          0.25,
			score.MetricFearGreed:     0.20,
			score.MetricPriceLogRange: 0.20,
			score.MetricFunding:       0.15,
		},
		Metrics: Metrics{
			RSIPeriod:     14,
			RSIWindow:     250,
			HistoryDays:   4000,
			RSIBounds:     Bounds{Lo: 30, Hi: 80},
			MVRVBounds:    Bounds{Lo: 0, Hi: 9},
			FundingBounds: Bounds{Lo: 0.0, Hi: 0.10},
		},
		Providers: Providers{
			CoinGecko: Provider{
				BaseURL:      "https://api.coingecko.com/api/v3",
				TimeoutSecs:  30,
				RateLimitRPS: 0.5,
			},
			FearGreed: Provider{
				BaseURL:      "https://api.alternative.me",
				TimeoutSecs:  15,
				RateLimitRPS: 1.0,
			},
			Binance: Provider{
				BaseURL:      "https://fapi.binance.com",
				TimeoutSecs:  15,
				RateLimitRPS: 5.0,
			},
			Glassnode: Glassnode{
				Provider: Provider{
					BaseURL:      "https://api.glassnode.com",
					TimeoutSecs:  30,
					RateLimitRPS: 1.0,
				},
				APIKeyEnv: "GLASSNODE_API_KEY",
			},
		},
		Cache: Cache{
			Enabled:   false,
			RedisAddr: "localhost:6379",
			TTLSecs:   21600,
		},
		History: History{
			Enabled:     false,
			TimeoutSecs: 10,
		},
		Monitor: Monitor{Host: "0.0.0.0", Port: "8080"},
	}
}

// Load reads the YAML config at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// WeightTable converts the configured weights into the score domain type.
func (c *Config) WeightTable() score.WeightTable {
	wt := make(score.WeightTable, len(c.Weights))
	for name, w := range c.Weights {
		wt[name] = w
	}
	return wt
}

// ScaleFor returns the normalization scale for a metric. Fear & Greed and the
// price percentile arrive already on the 0-100 scale and map through the
// identity.
func (c *Config) ScaleFor(metric string) (score.Scale, error) {
	switch metric {
	case score.MetricRSI:
		return score.Scale{Lo: c.Metrics.RSIBounds.Lo, Hi: c.Metrics.RSIBounds.Hi}, nil
	case score.MetricMVRV:
		return score.Scale{Lo: c.Metrics.MVRVBounds.Lo, Hi: c.Metrics.MVRVBounds.Hi}, nil
	case score.MetricFunding:
		return score.Scale{Lo: c.Metrics.FundingBounds.Lo, Hi: c.Metrics.FundingBounds.Hi}, nil
	case score.MetricFearGreed, score.MetricPriceLogRange:
		return score.Scale{Lo: 0, Hi: 100}, nil
	default:
		return score.Scale{}, fmt.Errorf("unknown metric: %s", metric)
	}
}

// GlassnodeAPIKey resolves the credential for the gated provider. Empty means
// the MVRV metric is disabled for this run.
func (c *Config) GlassnodeAPIKey() string {
	if c.Providers.Glassnode.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Providers.Glassnode.APIKeyEnv)
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.Output.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := c.WeightTable().Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	for _, name := range score.MetricNames() {
		if _, ok := c.Weights[name]; !ok {
			return fmt.Errorf("missing weight for metric: %s", name)
		}
		scale, err := c.ScaleFor(name)
		if err != nil {
			return err
		}
		if err := scale.Validate(); err != nil {
			return fmt.Errorf("bounds for %s: %w", name, err)
		}
	}
	if c.Metrics.RSIPeriod <= 0 {
		return fmt.Errorf("rsi_period must be positive, got %d", c.Metrics.RSIPeriod)
	}
	if c.Metrics.RSIWindow <= c.Metrics.RSIPeriod {
		return fmt.Errorf("rsi_window (%d) must exceed rsi_period (%d)",
			c.Metrics.RSIWindow, c.Metrics.RSIPeriod)
	}
	if c.Metrics.HistoryDays <= 0 {
		return fmt.Errorf("history_days must be positive, got %d", c.Metrics.HistoryDays)
	}
	if c.Cache.Enabled && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache enabled without redis_addr")
	}
	if c.History.Enabled && c.History.DSN == "" {
		return fmt.Errorf("history enabled without dsn")
	}
	return nil
}
