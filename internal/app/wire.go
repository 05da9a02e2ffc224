package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/predictlabs/predictbot/internal/blob/s3"
	"github.com/predictlabs/predictbot/internal/cache/redis"
	"github.com/predictlabs/predictbot/internal/config"
	"github.com/predictlabs/predictbot/internal/crypto"
	"github.com/predictlabs/predictbot/internal/domain"
	"github.com/predictlabs/predictbot/internal/ethutil"
	"github.com/predictlabs/predictbot/internal/executor"
	"github.com/predictlabs/predictbot/internal/ledger"
	"github.com/predictlabs/predictbot/internal/platform/exchange"
	"github.com/predictlabs/predictbot/internal/store/postgres"
	"github.com/predictlabs/predictbot/internal/strategy"
)

// Dependencies bundles everything the application modes need. Optional
// members are nil when their config section is disabled.
type Dependencies struct {
	Exchange *exchange.Client
	Push     *exchange.PushClient
	Ledger   *ledger.Ledger
	Gate     *executor.Gate
	Trader   *executor.Trader

	Copy *strategy.CopyTrade
	Arb  *strategy.Arbitrage

	OrderStore       domain.OrderStore
	OpportunityStore domain.OpportunityStore
	EventBus         domain.EventBus
	Archiver         *s3blob.Archiver
}

// Wire constructs all concrete dependencies from the configuration and
// returns them with a cleanup function releasing resources in reverse order.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	var auth *crypto.HMACAuth
	if cfg.Exchange.APIKey != "" {
		auth = &crypto.HMACAuth{Key: cfg.Exchange.APIKey, Secret: cfg.Exchange.SigningKey}
	}
	deps.Exchange = exchange.NewClient(cfg.Exchange.BaseURL, auth)
	deps.Push = exchange.NewPushClient(cfg.Exchange.WSURL)

	deps.Ledger = ledger.New(deps.Exchange, cfg.Exchange.Address, logger)
	if err := deps.Ledger.Refresh(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: initial ledger sync: %w", err)
	}

	deps.Gate = executor.NewGate(deps.Exchange, deps.Ledger,
		cfg.MinOrderSize(), cfg.MaxOrderSize(), logger)
	deps.Trader = executor.NewTrader(deps.Gate, deps.Ledger)

	// --- PostgreSQL audit store (optional) ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.OrderStore = postgres.NewOrderStore(pool)
		deps.OpportunityStore = postgres.NewOpportunityStore(pool)
	}

	// --- Redis event bus (optional) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.EventBus = redis.NewEventBus(redisClient, "predictbot:events", int64(cfg.Redis.StreamMaxLen))
	}

	deps.Gate.SetAuditSinks(deps.OrderStore, deps.EventBus)

	// --- S3 archiver (optional, feeds off the audit store) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		writer := s3blob.NewWriter(s3Client)
		deps.Archiver = s3blob.NewArchiver(writer, deps.OrderStore, deps.OpportunityStore,
			cfg.Archive.Prefix, logger)
	}

	// --- Strategies ---
	if cfg.Copy.Enabled {
		addrs, err := ethutil.ParseAddressList(cfg.Copy.Addresses)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: copy addresses: %w", err)
		}
		deps.Copy = strategy.NewCopyTrade(deps.Exchange, deps.Trader, strategy.CopyTradeConfig{
			Addresses:       addrs,
			ConfidenceFloor: cfg.Copy.ConfidenceFloor,
			MaxOrderSize:    cfg.CopyMaxOrderSize(),
			Slippage:        cfg.Slippage(),
			ScanMarkets:     cfg.Copy.ScanMarkets,
			TradeLimit:      cfg.Copy.TradeLimit,
			MaxPositions:    cfg.Order.MaxPositions,
			PollInterval:    cfg.Copy.PollInterval.Duration,
		}, logger)
	}

	if cfg.Arbitrage.Enabled {
		deps.Arb = strategy.NewArbitrage(deps.Exchange, deps.Trader, strategy.ArbitrageConfig{
			MinProfitMargin: cfg.ArbMinMargin(),
			MaxPositionSize: cfg.ArbMaxPositionSize(),
			ScanMarkets:     cfg.Arbitrage.ScanMarkets,
			RefreshChance:   cfg.Arbitrage.RefreshChance,
			MaxPositions:    cfg.Order.MaxPositions,
			PollInterval:    cfg.Arbitrage.PollInterval.Duration,
		}, logger)
		if deps.OpportunityStore != nil {
			deps.Arb.SetOpportunityStore(deps.OpportunityStore)
		}
		if deps.EventBus != nil {
			deps.Arb.SetEventBus(deps.EventBus)
		}
	}

	return deps, cleanup, nil
}
