// Package executor validates and submits orders on behalf of the strategy
// loops. Every order, regardless of which strategy produced it, passes
// through the same gate.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/predictlabs/predictbot/internal/domain"
)

// OrderSubmitter is the slice of the exchange client the gate submits through.
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error)
}

// LedgerRefresher re-syncs local position state from the exchange.
type LedgerRefresher interface {
	Refresh(ctx context.Context) error
}

var (
	priceFloor = decimal.Zero
	priceCeil  = decimal.NewFromInt(1)
)

// Gate applies static bounds to every candidate order before it touches the
// network, forwards accepted orders to the exchange, and refreshes the
// ledger after every submission attempt. It carries no per-strategy state.
type Gate struct {
	submitter OrderSubmitter
	ledger    LedgerRefresher
	minSize   decimal.Decimal
	maxSize   decimal.Decimal
	logger    *slog.Logger

	// store and bus are optional audit sinks. Failures there never fail
	// the order.
	store domain.OrderStore
	bus   domain.EventBus
}

// NewGate creates a gate enforcing minSize <= size <= maxSize and
// 0 <= price <= 1 on every order.
func NewGate(submitter OrderSubmitter, ledger LedgerRefresher, minSize, maxSize decimal.Decimal, logger *slog.Logger) *Gate {
	return &Gate{
		submitter: submitter,
		ledger:    ledger,
		minSize:   minSize,
		maxSize:   maxSize,
		logger:    logger.With(slog.String("component", "executor")),
	}
}

// SetAuditSinks attaches optional persistence for accepted orders. Both may
// be nil.
func (g *Gate) SetAuditSinks(store domain.OrderStore, bus domain.EventBus) {
	g.store = store
	g.bus = bus
}

// validate checks the static bounds. It returns a wrapped
// domain.ErrInvalidOrder describing the first violated bound.
func (g *Gate) validate(req domain.OrderRequest) error {
	if req.Size.LessThan(g.minSize) {
		return fmt.Errorf("executor: size %s below minimum %s: %w", req.Size, g.minSize, domain.ErrInvalidOrder)
	}
	if req.Size.GreaterThan(g.maxSize) {
		return fmt.Errorf("executor: size %s above maximum %s: %w", req.Size, g.maxSize, domain.ErrInvalidOrder)
	}
	if req.Price.LessThan(priceFloor) || req.Price.GreaterThan(priceCeil) {
		return fmt.Errorf("executor: price %s outside [0, 1]: %w", req.Price, domain.ErrInvalidOrder)
	}
	return nil
}

// PlaceOrder validates req, submits it to the exchange, and refreshes the
// ledger. The ledger refresh happens after every submission attempt, even a
// failed one: the exchange may have partially acted before the error, and
// re-syncing is the only way to find out. Rejected orders never reach the
// network and never trigger a refresh.
func (g *Gate) PlaceOrder(ctx context.Context, strategy string, req domain.OrderRequest) (domain.Order, error) {
	log := g.logger.With(
		slog.String("strategy", strategy),
		slog.String("market", req.MarketID),
		slog.String("outcome", req.Outcome),
		slog.String("side", string(req.Side)),
		slog.String("price", req.Price.String()),
		slog.String("size", req.Size.String()),
	)

	if err := g.validate(req); err != nil {
		log.Warn("order rejected", slog.String("error", err.Error()))
		return domain.Order{}, err
	}

	order, submitErr := g.submitter.CreateOrder(ctx, req)

	if err := g.ledger.Refresh(ctx); err != nil {
		log.Warn("ledger refresh after order failed", slog.String("error", err.Error()))
	}

	if submitErr != nil {
		log.Error("order submission failed", slog.String("error", submitErr.Error()))
		return domain.Order{}, fmt.Errorf("executor: submit order: %w", submitErr)
	}

	log.Info("order placed",
		slog.String("order_id", order.ID),
		slog.String("status", string(order.Status)),
	)
	g.audit(ctx, strategy, order, log)
	return order, nil
}

// audit records the accepted order in the optional sinks. Log-and-continue
// on failure.
func (g *Gate) audit(ctx context.Context, strategy string, order domain.Order, log *slog.Logger) {
	if g.store != nil {
		rec := domain.OrderRecord{Order: order, Strategy: strategy, RecordedAt: time.Now().UTC()}
		if err := g.store.Record(ctx, rec); err != nil {
			log.Warn("order audit record failed", slog.String("error", err.Error()))
		}
	}
	if g.bus != nil {
		payload, err := json.Marshal(map[string]string{
			"order_id": order.ID,
			"strategy": strategy,
			"market":   order.MarketID,
			"outcome":  order.Outcome,
			"side":     string(order.Side),
			"price":    order.Price.String(),
			"size":     order.Size.String(),
			"status":   string(order.Status),
		})
		if err == nil {
			if err := g.bus.Publish(ctx, "order.placed", payload); err != nil {
				log.Warn("order event publish failed", slog.String("error", err.Error()))
			}
		}
	}
}
