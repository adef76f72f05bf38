// Package config loads service settings from a YAML file, a .env file and
// DCF_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"fcf_valuation/pkg/core/assumption"
	"fcf_valuation/pkg/core/valuation"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "config/dcf.yaml"

type Server struct {
	Addr string `yaml:"addr"`
}

type MarketData struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	RateLimit  int           `yaml:"rate_limit"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
	PriceTTL   time.Duration `yaml:"price_ttl"`
	Statements string        `yaml:"statements"` // offline JSON file; replaces the live source
}

type Cache struct {
	Dir         string `yaml:"dir"`
	DatabaseURL string `yaml:"database_url"`
}

type Log struct {
	Level  string `yaml:"level"` // empty: info for the API, warn for the CLI
	Pretty bool   `yaml:"pretty"`
}

type Batch struct {
	Concurrency int    `yaml:"concurrency"`
	Suffix      string `yaml:"suffix"`
}

// Config is the full settings tree.
type Config struct {
	Server     Server                  `yaml:"server"`
	MarketData MarketData              `yaml:"market_data"`
	Cache      Cache                   `yaml:"cache"`
	Defaults   assumption.Set          `yaml:"defaults"`
	Capital    valuation.CapitalMarket `yaml:"capital"`
	Batch      Batch                   `yaml:"batch"`
	Log        Log                     `yaml:"log"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080"},
		MarketData: MarketData{
			BaseURL:   "https://query2.finance.yahoo.com",
			Timeout:   10 * time.Second,
			RateLimit: 4,
			CacheTTL:  24 * time.Hour,
			PriceTTL:  time.Minute,
		},
		Cache:    Cache{Dir: ".cache/statements"},
		Defaults: assumption.Defaults(),
		Batch:    Batch{Concurrency: 4},
	}
}

// Load reads path (DefaultPath when empty) over the defaults, then applies
// .env and environment overrides. A missing file is not an error; the
// assembled defaults must still validate.
func Load(path string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Defaults.Validate(); err != nil {
		return cfg, fmt.Errorf("config defaults: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Addr, "DCF_ADDR")
	setString(&cfg.MarketData.BaseURL, "DCF_MARKET_DATA_URL")
	setString(&cfg.MarketData.Statements, "DCF_STATEMENTS")
	setString(&cfg.Cache.Dir, "DCF_CACHE_DIR")
	setString(&cfg.Cache.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Log.Level, "DCF_LOG_LEVEL")
	setString(&cfg.Batch.Suffix, "DCF_TICKER_SUFFIX")

	if err := setInt(&cfg.MarketData.RateLimit, "DCF_RATE_LIMIT"); err != nil {
		return err
	}
	if err := setInt(&cfg.Batch.Concurrency, "DCF_CONCURRENCY"); err != nil {
		return err
	}
	if err := setDuration(&cfg.MarketData.Timeout, "DCF_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&cfg.MarketData.CacheTTL, "DCF_CACHE_TTL"); err != nil {
		return err
	}
	if err := setFloat(&cfg.Defaults.DiscountRate, "DCF_DISCOUNT_RATE"); err != nil {
		return err
	}
	if err := setFloat(&cfg.Defaults.TerminalGrowth, "DCF_TERMINAL_GROWTH"); err != nil {
		return err
	}
	if err := setFloat(&cfg.Capital.RiskFreeRate, "DCF_RISK_FREE_RATE"); err != nil {
		return err
	}
	if err := setFloat(&cfg.Capital.MarketRiskPremium, "DCF_MARKET_RISK_PREMIUM"); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("DCF_LOG_PRETTY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DCF_LOG_PRETTY: %w", err)
		}
		cfg.Log.Pretty = b
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
