package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PREDICTBOT_* environment variable overrides, and
// returns the final Config. A missing file is not an error; the defaults plus
// environment are used instead. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PREDICTBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Exchange ──
	setStr(&cfg.Exchange.BaseURL, "PREDICTBOT_EXCHANGE_BASE_URL")
	setStr(&cfg.Exchange.WSURL, "PREDICTBOT_EXCHANGE_WS_URL")
	setStr(&cfg.Exchange.APIKey, "PREDICTBOT_EXCHANGE_API_KEY")
	setStr(&cfg.Exchange.SigningKey, "PREDICTBOT_EXCHANGE_SIGNING_KEY")
	setStr(&cfg.Exchange.Address, "PREDICTBOT_EXCHANGE_ADDRESS")

	// ── Order gate ──
	setStr(&cfg.Order.MinSize, "PREDICTBOT_ORDER_MIN_SIZE")
	setStr(&cfg.Order.MaxSize, "PREDICTBOT_ORDER_MAX_SIZE")
	setStr(&cfg.Order.DefaultSlippage, "PREDICTBOT_ORDER_DEFAULT_SLIPPAGE")
	setInt(&cfg.Order.MaxPositions, "PREDICTBOT_ORDER_MAX_POSITIONS")

	// ── Copy-trading ──
	setBool(&cfg.Copy.Enabled, "PREDICTBOT_COPY_ENABLED")
	setStringSlice(&cfg.Copy.Addresses, "PREDICTBOT_COPY_ADDRESSES")
	setFloat64(&cfg.Copy.ConfidenceFloor, "PREDICTBOT_COPY_CONFIDENCE_FLOOR")
	setStr(&cfg.Copy.MaxOrderSize, "PREDICTBOT_COPY_MAX_ORDER_SIZE")
	setInt(&cfg.Copy.ScanMarkets, "PREDICTBOT_COPY_SCAN_MARKETS")
	setInt(&cfg.Copy.TradeLimit, "PREDICTBOT_COPY_TRADE_LIMIT")
	setDuration(&cfg.Copy.PollInterval, "PREDICTBOT_COPY_POLL_INTERVAL")

	// ── Arbitrage ──
	setBool(&cfg.Arbitrage.Enabled, "PREDICTBOT_ARB_ENABLED")
	setStr(&cfg.Arbitrage.MinProfitMargin, "PREDICTBOT_ARB_MIN_PROFIT_MARGIN")
	setStr(&cfg.Arbitrage.MaxPositionSize, "PREDICTBOT_ARB_MAX_POSITION_SIZE")
	setInt(&cfg.Arbitrage.ScanMarkets, "PREDICTBOT_ARB_SCAN_MARKETS")
	setFloat64(&cfg.Arbitrage.RefreshChance, "PREDICTBOT_ARB_REFRESH_CHANCE")
	setDuration(&cfg.Arbitrage.PollInterval, "PREDICTBOT_ARB_POLL_INTERVAL")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "PREDICTBOT_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "PREDICTBOT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "PREDICTBOT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "PREDICTBOT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "PREDICTBOT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "PREDICTBOT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "PREDICTBOT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "PREDICTBOT_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "PREDICTBOT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "PREDICTBOT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "PREDICTBOT_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "PREDICTBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "PREDICTBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PREDICTBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PREDICTBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PREDICTBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.StreamMaxLen, "PREDICTBOT_REDIS_STREAM_MAX_LEN")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "PREDICTBOT_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "PREDICTBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PREDICTBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "PREDICTBOT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "PREDICTBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PREDICTBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PREDICTBOT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PREDICTBOT_S3_FORCE_PATH_STYLE")

	// ── Archive ──
	setDuration(&cfg.Archive.Interval, "PREDICTBOT_ARCHIVE_INTERVAL")
	setStr(&cfg.Archive.Prefix, "PREDICTBOT_ARCHIVE_PREFIX")

	// ── Top-level ──
	setStr(&cfg.Mode, "PREDICTBOT_MODE")
	setStr(&cfg.LogLevel, "PREDICTBOT_LOG_LEVEL")
	setStr(&cfg.LogFile, "PREDICTBOT_LOG_FILE")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
