package strategy

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/predictlabs/predictbot/internal/domain"
	"github.com/predictlabs/predictbot/internal/executor"
	"github.com/predictlabs/predictbot/internal/ledger"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

// recordingSubmitter captures every order that clears the gate.
type recordingSubmitter struct {
	mu     sync.Mutex
	orders []domain.OrderRequest
}

func (r *recordingSubmitter) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, req)
	return domain.Order{ID: "o1", MarketID: req.MarketID, Status: domain.OrderStatusOpen}, nil
}

func (r *recordingSubmitter) submitted() []domain.OrderRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.OrderRequest(nil), r.orders...)
}

type emptyAccount struct{}

func (emptyAccount) GetAccount(ctx context.Context, address string) (domain.Account, error) {
	return domain.Account{Address: address}, nil
}

func (emptyAccount) GetPositions(ctx context.Context, address string) ([]domain.Position, error) {
	return nil, nil
}

// newTestTrader wires a real gate and ledger around the recording submitter
// with wide-open order bounds.
func newTestTrader(t *testing.T, sub *recordingSubmitter) *executor.Trader {
	t.Helper()
	l := ledger.New(emptyAccount{}, "0xbot", discard())
	gate := executor.NewGate(sub, l, dec(t, "0.000001"), dec(t, "100000"), discard())
	return executor.NewTrader(gate, l)
}
