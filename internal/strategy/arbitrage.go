package strategy

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/predictlabs/predictbot/internal/domain"
	"github.com/predictlabs/predictbot/internal/executor"
)

// BookScanner is the slice of the exchange client the arbitrage loop reads
// from.
type BookScanner interface {
	GetMarkets(ctx context.Context, limit int) ([]domain.Market, error)
	GetOrderBook(ctx context.Context, marketID, outcome string) (domain.OrderBook, error)
}

// ArbitrageConfig tunes the arbitrage loop.
type ArbitrageConfig struct {
	MinProfitMargin decimal.Decimal
	MaxPositionSize decimal.Decimal
	ScanMarkets     int
	// RefreshChance is the per-tick probability of re-fetching the cached
	// market list.
	RefreshChance float64
	MaxPositions  int
	PollInterval  time.Duration
}

// Arbitrage scans order books for crossed markets and executes both legs of
// any spread clearing the margin floor. Legs are submitted sequentially with
// no rollback: if the sell fails after the buy filled, the position stays on
// the book and shows up in the ledger.
type Arbitrage struct {
	scanner BookScanner
	trader  *executor.Trader
	active  *executor.ActiveSet
	cfg     ArbitrageConfig
	logger  *slog.Logger

	markets []domain.Market
	rand    func() float64
	opps    domain.OpportunityStore
	bus     domain.EventBus
}

// NewArbitrage creates the loop with an empty market cache; the first tick
// populates it.
func NewArbitrage(scanner BookScanner, trader *executor.Trader, cfg ArbitrageConfig, logger *slog.Logger) *Arbitrage {
	return &Arbitrage{
		scanner: scanner,
		trader:  trader,
		active:  executor.NewActiveSet(),
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "arbitrage")),
		rand:    rand.Float64,
	}
}

// SetOpportunityStore attaches the optional audit sink for detected
// opportunities.
func (a *Arbitrage) SetOpportunityStore(store domain.OpportunityStore) {
	a.opps = store
}

// SetEventBus attaches the optional event bus; detected opportunities are
// published best-effort.
func (a *Arbitrage) SetEventBus(bus domain.EventBus) {
	a.bus = bus
}

// Name implements Strategy.
func (a *Arbitrage) Name() string { return "arbitrage" }

// Run scans for crossed books until the context is cancelled.
func (a *Arbitrage) Run(ctx context.Context) error {
	a.logger.Info("arbitrage started",
		slog.String("min_margin", a.cfg.MinProfitMargin.String()),
		slog.Duration("interval", a.cfg.PollInterval),
	)
	defer a.logger.Info("arbitrage stopped")

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *Arbitrage) tick(ctx context.Context) {
	if len(a.markets) == 0 || a.rand() < a.cfg.RefreshChance {
		markets, err := a.scanner.GetMarkets(ctx, a.cfg.ScanMarkets)
		if err != nil {
			a.logger.Warn("market list refresh failed", slog.String("error", err.Error()))
		} else {
			a.markets = markets
		}
	}

	for _, m := range a.markets {
		if ctx.Err() != nil {
			return
		}
		if !m.Active {
			continue
		}
		for _, outcome := range m.Outcomes {
			book, err := a.scanner.GetOrderBook(ctx, m.ID, outcome)
			if err != nil {
				a.logger.Warn("order book fetch failed",
					slog.String("market", m.ID),
					slog.String("outcome", outcome),
					slog.String("error", err.Error()),
				)
				continue
			}
			opp, ok := DetectOpportunity(book, a.cfg.MinProfitMargin, a.cfg.MaxPositionSize)
			if !ok {
				continue
			}
			a.execute(ctx, opp)
		}
	}
}

// execute runs both legs of an opportunity. The (market, outcome) key is
// held in the active set from acquisition until both legs have been
// attempted, so a re-detection of the same crossed book mid-execution is
// dropped rather than queued.
func (a *Arbitrage) execute(ctx context.Context, opp domain.Opportunity) {
	key := opp.Key()
	if !a.active.TryAcquire(key) {
		a.logger.Debug("opportunity already executing, dropping",
			slog.String("market", opp.MarketID),
			slog.String("outcome", opp.Outcome),
		)
		return
	}
	defer a.active.Release(key)

	log := a.logger.With(
		slog.String("market", opp.MarketID),
		slog.String("outcome", opp.Outcome),
		slog.String("buy_price", opp.BuyPrice.String()),
		slog.String("sell_price", opp.SellPrice.String()),
		slog.String("size", opp.Size.String()),
		slog.String("margin", opp.Margin.String()),
	)

	if a.trader.OpenPositions() >= a.cfg.MaxPositions {
		log.Debug("position cap reached, skipping opportunity")
		return
	}

	log.Info("executing opportunity")
	if a.opps != nil {
		if err := a.opps.Record(ctx, opp); err != nil {
			log.Warn("opportunity record failed", slog.String("error", err.Error()))
		}
	}
	if a.bus != nil {
		payload, err := json.Marshal(map[string]string{
			"id":         opp.ID,
			"market":     opp.MarketID,
			"outcome":    opp.Outcome,
			"buy_price":  opp.BuyPrice.String(),
			"sell_price": opp.SellPrice.String(),
			"size":       opp.Size.String(),
			"margin":     opp.Margin.String(),
		})
		if err == nil {
			if err := a.bus.Publish(ctx, "opportunity.detected", payload); err != nil {
				log.Warn("opportunity event publish failed", slog.String("error", err.Error()))
			}
		}
	}

	buy := domain.OrderRequest{
		MarketID: opp.MarketID,
		Outcome:  opp.Outcome,
		Side:     domain.OrderSideBuy,
		Price:    opp.BuyPrice,
		Size:     opp.Size,
	}
	sell := domain.OrderRequest{
		MarketID: opp.MarketID,
		Outcome:  opp.Outcome,
		Side:     domain.OrderSideSell,
		Price:    opp.SellPrice,
		Size:     opp.Size,
	}

	// Both legs are always attempted. A failed buy does not stop the sell
	// and a failed sell is not rolled back; the ledger refresh after each
	// submission exposes whatever one-sided exposure remains.
	if _, err := a.trader.PlaceOrder(ctx, a.Name(), buy); err != nil {
		log.Warn("buy leg failed", slog.String("error", err.Error()))
	}
	if _, err := a.trader.PlaceOrder(ctx, a.Name(), sell); err != nil {
		log.Warn("sell leg failed", slog.String("error", err.Error()))
	}

	if a.opps != nil {
		if err := a.opps.MarkExecuted(ctx, opp.ID); err != nil {
			log.Warn("opportunity mark-executed failed", slog.String("error", err.Error()))
		}
	}
}

// DetectOpportunity reports whether the book is crossed with enough margin.
// A book is crossed when the best bid exceeds the best ask; the margin is
// (bid - ask) / ask and must clear minMargin. The opportunity is sized to
// the smaller of the two levels, capped at maxSize.
func DetectOpportunity(book domain.OrderBook, minMargin, maxSize decimal.Decimal) (domain.Opportunity, bool) {
	bid, ok := book.BestBid()
	if !ok {
		return domain.Opportunity{}, false
	}
	ask, ok := book.BestAsk()
	if !ok {
		return domain.Opportunity{}, false
	}
	if !bid.Price.GreaterThan(ask.Price) {
		return domain.Opportunity{}, false
	}
	if ask.Price.IsZero() {
		return domain.Opportunity{}, false
	}

	margin := bid.Price.Sub(ask.Price).Div(ask.Price)
	if margin.LessThan(minMargin) {
		return domain.Opportunity{}, false
	}

	size := decimal.Min(bid.Size, ask.Size, maxSize)
	if !size.IsPositive() {
		return domain.Opportunity{}, false
	}

	return domain.Opportunity{
		ID:         uuid.New().String(),
		MarketID:   book.MarketID,
		Outcome:    book.Outcome,
		BuyPrice:   ask.Price,
		SellPrice:  bid.Price,
		Size:       size,
		Margin:     margin,
		DetectedAt: time.Now().UTC(),
	}, true
}
