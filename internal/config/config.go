// Package config defines the top-level configuration for predictbot and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by PREDICTBOT_* environment
// variables.
type Config struct {
	Exchange  ExchangeConfig  `toml:"exchange"`
	Order     OrderConfig     `toml:"order"`
	Copy      CopyConfig      `toml:"copy"`
	Arbitrage ArbitrageConfig `toml:"arbitrage"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	Archive   ArchiveConfig   `toml:"archive"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
	LogFile   string          `toml:"log_file"`
}

// ExchangeConfig holds the market API endpoints and credentials.
type ExchangeConfig struct {
	BaseURL string `toml:"base_url"`
	WSURL   string `toml:"ws_url"`
	// APIKey and SigningKey authenticate REST requests (HMAC headers). They
	// are not used to sign orders.
	APIKey     string `toml:"api_key"`
	SigningKey string `toml:"signing_key"`
	// Address is the trading account address. Required for every mode that
	// reads positions or places orders.
	Address string `toml:"address"`
}

// OrderConfig holds the static bounds applied by the order gate. Sizes and
// prices are decimal strings so comparisons stay exact.
type OrderConfig struct {
	MinSize         string `toml:"min_size"`
	MaxSize         string `toml:"max_size"`
	DefaultSlippage string `toml:"default_slippage"`
	// MaxPositions caps the number of concurrently open (market, outcome)
	// positions across both strategies.
	MaxPositions int `toml:"max_positions"`
}

// CopyConfig holds the copy-trading strategy parameters.
type CopyConfig struct {
	Enabled         bool     `toml:"enabled"`
	Addresses       []string `toml:"addresses"`
	ConfidenceFloor float64  `toml:"confidence_floor"`
	MaxOrderSize    string   `toml:"max_order_size"`
	ScanMarkets     int      `toml:"scan_markets"`
	TradeLimit      int      `toml:"trade_limit"`
	PollInterval    duration `toml:"poll_interval"`
}

// ArbitrageConfig holds the arbitrage strategy parameters.
type ArbitrageConfig struct {
	Enabled         bool     `toml:"enabled"`
	MinProfitMargin string   `toml:"min_profit_margin"`
	MaxPositionSize string   `toml:"max_position_size"`
	ScanMarkets     int      `toml:"scan_markets"`
	RefreshChance   float64  `toml:"refresh_chance"`
	PollInterval    duration `toml:"poll_interval"`
}

// PostgresConfig holds connection parameters for the optional audit store.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds connection parameters for the optional event bus.
type RedisConfig struct {
	Enabled      bool   `toml:"enabled"`
	Addr         string `toml:"addr"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"pool_size"`
	StreamMaxLen int    `toml:"stream_max_len"`
}

// S3Config holds parameters for the optional S3-compatible archive target.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ArchiveConfig controls the periodic order-history archiver.
type ArchiveConfig struct {
	Interval duration `toml:"interval"`
	Prefix   string   `toml:"prefix"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Exchange: ExchangeConfig{
			BaseURL: "https://api.predictmarket.example",
			WSURL:   "wss://stream.predictmarket.example/ws",
		},
		Order: OrderConfig{
			MinSize:         "1",
			MaxSize:         "100",
			DefaultSlippage: "0.01",
			MaxPositions:    10,
		},
		Copy: CopyConfig{
			Enabled:         false,
			ConfidenceFloor: 0.6,
			MaxOrderSize:    "20",
			ScanMarkets:     20,
			TradeLimit:      50,
			PollInterval:    duration{30 * time.Second},
		},
		Arbitrage: ArbitrageConfig{
			Enabled:         false,
			MinProfitMargin: "0.02",
			MaxPositionSize: "50",
			ScanMarkets:     10,
			RefreshChance:   0.1,
			PollInterval:    duration{10 * time.Second},
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "predictbot",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:      false,
			Addr:         "localhost:6379",
			PoolSize:     20,
			StreamMaxLen: 10000,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "predictbot-data",
			ForcePathStyle: true,
		},
		Archive: ArchiveConfig{
			Interval: duration{1 * time.Hour},
			Prefix:   "archive",
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"copy":    true,
	"arb":     true,
	"monitor": true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: copy, arb, monitor, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Exchange — the account address is required; its absence is fatal.
	if c.Exchange.BaseURL == "" {
		errs = append(errs, "exchange: base_url must not be empty")
	}
	if c.Exchange.Address == "" {
		errs = append(errs, "exchange: address is required")
	} else if !common.IsHexAddress(c.Exchange.Address) {
		errs = append(errs, fmt.Sprintf("exchange: address %q is not a valid hex address", c.Exchange.Address))
	}
	if c.Exchange.APIKey != "" && c.Exchange.SigningKey == "" {
		errs = append(errs, "exchange: signing_key is required when api_key is set")
	}

	// Order bounds — decimal strings, min <= max, slippage within [0,1).
	minSize, err := decimal.NewFromString(c.Order.MinSize)
	if err != nil {
		errs = append(errs, fmt.Sprintf("order: min_size %q is not a decimal", c.Order.MinSize))
	}
	maxSize, err := decimal.NewFromString(c.Order.MaxSize)
	if err != nil {
		errs = append(errs, fmt.Sprintf("order: max_size %q is not a decimal", c.Order.MaxSize))
	} else if minSize.GreaterThan(maxSize) {
		errs = append(errs, "order: min_size must not exceed max_size")
	}
	if slip, err := decimal.NewFromString(c.Order.DefaultSlippage); err != nil {
		errs = append(errs, fmt.Sprintf("order: default_slippage %q is not a decimal", c.Order.DefaultSlippage))
	} else if slip.IsNegative() || slip.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		errs = append(errs, "order: default_slippage must be in [0, 1)")
	}
	if c.Order.MaxPositions < 1 {
		errs = append(errs, "order: max_positions must be >= 1")
	}

	// Copy-trading
	if c.Copy.Enabled {
		if len(c.Copy.Addresses) == 0 {
			errs = append(errs, "copy: at least one followed address is required when enabled")
		}
		for _, a := range c.Copy.Addresses {
			if !common.IsHexAddress(a) {
				errs = append(errs, fmt.Sprintf("copy: address %q is not a valid hex address", a))
			}
		}
		if c.Copy.ConfidenceFloor < 0 || c.Copy.ConfidenceFloor > 1 {
			errs = append(errs, "copy: confidence_floor must be in [0, 1]")
		}
		if _, err := decimal.NewFromString(c.Copy.MaxOrderSize); err != nil {
			errs = append(errs, fmt.Sprintf("copy: max_order_size %q is not a decimal", c.Copy.MaxOrderSize))
		}
		if c.Copy.ScanMarkets < 1 {
			errs = append(errs, "copy: scan_markets must be >= 1")
		}
		if c.Copy.PollInterval.Duration <= 0 {
			errs = append(errs, "copy: poll_interval must be positive")
		}
	}

	// Arbitrage
	if c.Arbitrage.Enabled {
		if m, err := decimal.NewFromString(c.Arbitrage.MinProfitMargin); err != nil {
			errs = append(errs, fmt.Sprintf("arbitrage: min_profit_margin %q is not a decimal", c.Arbitrage.MinProfitMargin))
		} else if m.IsNegative() {
			errs = append(errs, "arbitrage: min_profit_margin must be >= 0")
		}
		if _, err := decimal.NewFromString(c.Arbitrage.MaxPositionSize); err != nil {
			errs = append(errs, fmt.Sprintf("arbitrage: max_position_size %q is not a decimal", c.Arbitrage.MaxPositionSize))
		}
		if c.Arbitrage.ScanMarkets < 1 {
			errs = append(errs, "arbitrage: scan_markets must be >= 1")
		}
		if c.Arbitrage.RefreshChance < 0 || c.Arbitrage.RefreshChance > 1 {
			errs = append(errs, "arbitrage: refresh_chance must be in [0, 1]")
		}
		if c.Arbitrage.PollInterval.Duration <= 0 {
			errs = append(errs, "arbitrage: poll_interval must be positive")
		}
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 || c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must be between 0 and pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// S3 — archiving needs the audit store as its source.
	if c.S3.Enabled {
		if !c.Postgres.Enabled {
			errs = append(errs, "s3: archiving requires postgres to be enabled")
		}
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.Archive.Interval.Duration <= 0 {
			errs = append(errs, "archive: interval must be positive")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// MinOrderSize returns the parsed minimum order size. Validate must have
// passed for the result to be meaningful.
func (c *Config) MinOrderSize() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Order.MinSize)
	return d
}

// MaxOrderSize returns the parsed maximum order size.
func (c *Config) MaxOrderSize() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Order.MaxSize)
	return d
}

// Slippage returns the parsed default slippage allowance.
func (c *Config) Slippage() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Order.DefaultSlippage)
	return d
}

// CopyMaxOrderSize returns the parsed copy-trading size cap.
func (c *Config) CopyMaxOrderSize() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Copy.MaxOrderSize)
	return d
}

// ArbMinMargin returns the parsed arbitrage margin floor.
func (c *Config) ArbMinMargin() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Arbitrage.MinProfitMargin)
	return d
}

// ArbMaxPositionSize returns the parsed arbitrage size cap.
func (c *Config) ArbMaxPositionSize() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Arbitrage.MaxPositionSize)
	return d
}
