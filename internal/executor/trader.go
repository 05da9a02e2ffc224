package executor

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/predictlabs/predictbot/internal/domain"
	"github.com/predictlabs/predictbot/internal/ledger"
)

// Trader bundles the order gate with the position ledger into the single
// trading surface the strategy loops program against.
type Trader struct {
	gate   *Gate
	ledger *ledger.Ledger
}

// NewTrader composes a gate and a ledger.
func NewTrader(gate *Gate, l *ledger.Ledger) *Trader {
	return &Trader{gate: gate, ledger: l}
}

// PlaceOrder submits an order through the gate on behalf of the named
// strategy.
func (t *Trader) PlaceOrder(ctx context.Context, strategy string, req domain.OrderRequest) (domain.Order, error) {
	return t.gate.PlaceOrder(ctx, strategy, req)
}

// Position returns the ledger's view of a (market, outcome) pair.
func (t *Trader) Position(marketID, outcome string) (domain.Position, bool) {
	return t.ledger.Position(marketID, outcome)
}

// OpenPositions returns the number of open positions in the ledger.
func (t *Trader) OpenPositions() int {
	return t.ledger.Count()
}

// Balance returns the last-known collateral balance.
func (t *Trader) Balance() decimal.Decimal {
	return t.ledger.Balance()
}

// SyncLedger forces a ledger refresh outside the post-order path.
func (t *Trader) SyncLedger(ctx context.Context) error {
	return t.ledger.Refresh(ctx)
}
