package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderExchangeRate = "exchangerate"
	ProviderCBR          = "cbr"
)

// Config holds application configuration
type Config struct {
	Port                string        `mapstructure:"port"`
	LogLevel            string        `mapstructure:"log_level"`
	RateProvider        string        `mapstructure:"rate_provider"`
	ExchangeRateAPIKey  string        `mapstructure:"exchangerate_api_key"`
	ExchangeRateURL     string        `mapstructure:"exchangerate_url"`
	CBRURL              string        `mapstructure:"cbr_url"`
	RateFetchTimeout    time.Duration `mapstructure:"rate_fetch_timeout"`
	DefaultBaseCurrency string        `mapstructure:"default_base_currency"`
	RedisAddr           string        `mapstructure:"redis_addr"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	SessionIdleTimeout  time.Duration `mapstructure:"session_idle_timeout"`
	SessionSweepSpec    string        `mapstructure:"session_sweep_spec"`
	RateLimitCapacity   int           `mapstructure:"rate_limit_capacity"`
	RateLimitWindow     time.Duration `mapstructure:"rate_limit_window"`
}

var defaults = map[string]any{
	"port":                  "8080",
	"log_level":             "info",
	"rate_provider":         ProviderExchangeRate,
	"exchangerate_api_key":  "",
	"exchangerate_url":      "https://v6.exchangerate-api.com",
	"cbr_url":               "https://www.cbr.ru/scripts/XML_daily.asp",
	"rate_fetch_timeout":    "10s",
	"default_base_currency": "USD",
	"redis_addr":            "",
	"cache_ttl":             "1h",
	"session_idle_timeout":  "30m",
	"session_sweep_spec":    "@every 5m",
	"rate_limit_capacity":   60,
	"rate_limit_window":     "1m",
}

// Load reads envFiles (missing files are ignored) and then the environment.
// Keys are the upper-case form of the mapstructure tags, e.g. REDIS_ADDR.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.RateProvider = strings.ToLower(cfg.RateProvider)
	cfg.DefaultBaseCurrency = strings.ToUpper(cfg.DefaultBaseCurrency)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("PORT is required")
	case c.RateProvider != ProviderExchangeRate && c.RateProvider != ProviderCBR:
		return fmt.Errorf("RATE_PROVIDER must be %q or %q, got %q", ProviderExchangeRate, ProviderCBR, c.RateProvider)
	case c.DefaultBaseCurrency == "":
		return fmt.Errorf("DEFAULT_BASE_CURRENCY is required")
	case c.RateFetchTimeout <= 0:
		return fmt.Errorf("RATE_FETCH_TIMEOUT must be positive")
	case c.SessionIdleTimeout <= 0:
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	case c.RateLimitCapacity <= 0:
		return fmt.Errorf("RATE_LIMIT_CAPACITY must be positive")
	case c.RateLimitWindow <= 0:
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}
