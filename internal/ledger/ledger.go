// Package ledger tracks the bot's open positions and collateral balance as the
// exchange reports them. The ledger never computes positions locally; every
// refresh replaces the whole view with what the exchange returns.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/predictlabs/predictbot/internal/domain"
)

// AccountFetcher is the slice of the exchange client the ledger needs.
type AccountFetcher interface {
	GetAccount(ctx context.Context, address string) (domain.Account, error)
	GetPositions(ctx context.Context, address string) ([]domain.Position, error)
}

// Ledger holds the last snapshot of positions and balance fetched from the
// exchange for a single account. It is safe for concurrent use.
type Ledger struct {
	fetcher AccountFetcher
	address string
	logger  *slog.Logger

	mu        sync.RWMutex
	positions map[domain.PositionKey]domain.Position
	balance   decimal.Decimal
}

// New creates an empty ledger for the given account address. Call Refresh to
// populate it.
func New(fetcher AccountFetcher, address string, logger *slog.Logger) *Ledger {
	return &Ledger{
		fetcher:   fetcher,
		address:   address,
		logger:    logger.With(slog.String("component", "ledger")),
		positions: make(map[domain.PositionKey]domain.Position),
	}
}

// Refresh fetches the account balance and full position list from the
// exchange and replaces the ledger's view wholesale. Positions absent from
// the response are dropped; there is no merging.
func (l *Ledger) Refresh(ctx context.Context) error {
	account, err := l.fetcher.GetAccount(ctx, l.address)
	if err != nil {
		return fmt.Errorf("ledger: fetch account: %w", err)
	}
	positions, err := l.fetcher.GetPositions(ctx, l.address)
	if err != nil {
		return fmt.Errorf("ledger: fetch positions: %w", err)
	}

	next := make(map[domain.PositionKey]domain.Position, len(positions))
	for _, p := range positions {
		next[p.Key()] = p
	}

	l.mu.Lock()
	l.positions = next
	l.balance = account.Balance
	l.mu.Unlock()

	l.logger.Debug("ledger refreshed",
		slog.Int("positions", len(next)),
		slog.String("balance", account.Balance.String()),
	)
	return nil
}

// Position returns the position for a (market, outcome) pair and whether the
// ledger holds one.
func (l *Ledger) Position(marketID, outcome string) (domain.Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.positions[domain.PositionKey{MarketID: marketID, Outcome: outcome}]
	return p, ok
}

// Positions returns a copy of all tracked positions.
func (l *Ledger) Positions() []domain.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, p)
	}
	return out
}

// Balance returns the collateral balance from the last refresh.
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance
}

// Count returns the number of open positions in the current snapshot.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.positions)
}

// Address returns the account address this ledger tracks.
func (l *Ledger) Address() string {
	return l.address
}
