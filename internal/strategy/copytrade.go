package strategy

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/predictlabs/predictbot/internal/domain"
	"github.com/predictlabs/predictbot/internal/ethutil"
	"github.com/predictlabs/predictbot/internal/executor"
)

// MarketScanner is the slice of the exchange client the copy loop reads from.
type MarketScanner interface {
	GetMarkets(ctx context.Context, limit int) ([]domain.Market, error)
	GetTrades(ctx context.Context, marketID string, limit int) ([]domain.Trade, error)
}

// CopyTradeConfig tunes the copy-trading loop.
type CopyTradeConfig struct {
	Addresses       []common.Address
	ConfidenceFloor float64
	MaxOrderSize    decimal.Decimal
	Slippage        decimal.Decimal
	ScanMarkets     int
	TradeLimit      int
	MaxPositions    int
	PollInterval    time.Duration
}

// CopyTrade mirrors taker-side trades of a set of followed accounts. Each
// poll processes the followed addresses sequentially; per-trader state lives
// only in memory and resets on restart.
type CopyTrade struct {
	scanner MarketScanner
	trader  *executor.Trader
	cfg     CopyTradeConfig
	logger  *slog.Logger

	traders map[string]*domain.TraderActivity
	now     func() time.Time
}

// NewCopyTrade creates the loop. It records nothing about trades made before
// the loop starts: each followed address begins with last-seen set to the
// start time, so only trades observed after startup are mirrored.
func NewCopyTrade(scanner MarketScanner, trader *executor.Trader, cfg CopyTradeConfig, logger *slog.Logger) *CopyTrade {
	c := &CopyTrade{
		scanner: scanner,
		trader:  trader,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "copytrade")),
		traders: make(map[string]*domain.TraderActivity),
		now:     time.Now,
	}
	start := time.Now().UTC()
	for _, addr := range cfg.Addresses {
		key := ethutil.Normalize(addr.Hex())
		c.traders[key] = &domain.TraderActivity{Address: key, LastSeen: start}
	}
	return c
}

// Name implements Strategy.
func (c *CopyTrade) Name() string { return "copytrade" }

// Run polls followed traders until the context is cancelled. Ticks never
// overlap: a slow poll simply delays the next one.
func (c *CopyTrade) Run(ctx context.Context) error {
	c.logger.Info("copy-trading started",
		slog.Int("addresses", len(c.cfg.Addresses)),
		slog.Duration("interval", c.cfg.PollInterval),
	)
	defer c.logger.Info("copy-trading stopped")

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *CopyTrade) tick(ctx context.Context) {
	markets, err := c.scanner.GetMarkets(ctx, c.cfg.ScanMarkets)
	if err != nil {
		c.logger.Warn("market scan failed", slog.String("error", err.Error()))
		return
	}

	for _, addr := range c.cfg.Addresses {
		if ctx.Err() != nil {
			return
		}
		c.pollTrader(ctx, markets, c.traders[ethutil.Normalize(addr.Hex())])
	}
}

// pollTrader re-derives one trader's recent trades from the scanned markets
// and mirrors any new taker-side trades.
func (c *CopyTrade) pollTrader(ctx context.Context, markets []domain.Market, activity *domain.TraderActivity) {
	log := c.logger.With(slog.String("trader", activity.Address))

	var recent []domain.Trade
	for _, m := range markets {
		if !m.Active {
			continue
		}
		trades, err := c.scanner.GetTrades(ctx, m.ID, c.cfg.TradeLimit)
		if err != nil {
			log.Warn("trade history fetch failed",
				slog.String("market", m.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		for _, tr := range trades {
			if ethutil.Equal(tr.Maker, activity.Address) || ethutil.Equal(tr.Taker, activity.Address) {
				recent = append(recent, tr)
			}
		}
	}

	activity.RecentTrades = recent
	activity.WinRate = WinRate(recent, c.now().UTC())

	maxSeen := activity.LastSeen
	for _, tr := range recent {
		if !tr.Timestamp.After(activity.LastSeen) {
			continue
		}
		if tr.Timestamp.After(maxSeen) {
			maxSeen = tr.Timestamp
		}
		// Maker-side fills are passive; only mirror trades the followed
		// account initiated.
		if !ethutil.Equal(tr.Taker, activity.Address) {
			continue
		}
		if activity.WinRate < c.cfg.ConfidenceFloor {
			log.Debug("win rate below confidence floor, skipping",
				slog.Float64("win_rate", activity.WinRate),
			)
			continue
		}
		if c.trader.OpenPositions() >= c.cfg.MaxPositions {
			log.Debug("position cap reached, skipping")
			continue
		}

		req := MirrorOrder(tr, c.cfg.Slippage, c.cfg.MaxOrderSize)
		if _, err := c.trader.PlaceOrder(ctx, c.Name(), req); err != nil {
			log.Warn("mirrored order failed",
				slog.String("market", tr.MarketID),
				slog.String("error", err.Error()),
			)
		}
	}
	activity.LastSeen = maxSeen
}

// MirrorOrder builds the order that copies a followed trader's trade: same
// market, outcome, and direction, size capped at maxSize, and the price
// nudged by slippage toward the side that helps the order fill (up for a
// buy, down for a sell).
func MirrorOrder(tr domain.Trade, slippage, maxSize decimal.Decimal) domain.OrderRequest {
	price := tr.Price
	if tr.Side == domain.OrderSideBuy {
		price = price.Add(slippage)
	} else {
		price = price.Sub(slippage)
	}
	size := tr.Size
	if size.GreaterThan(maxSize) {
		size = maxSize
	}
	return domain.OrderRequest{
		MarketID: tr.MarketID,
		Outcome:  tr.Outcome,
		Side:     tr.Side,
		Price:    price,
		Size:     size,
	}
}
