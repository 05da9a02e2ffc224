package executor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/predictlabs/predictbot/internal/domain"
)

type stubSubmitter struct {
	calls []domain.OrderRequest
	order domain.Order
	err   error
}

func (s *stubSubmitter) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	s.calls = append(s.calls, req)
	return s.order, s.err
}

type stubRefresher struct {
	refreshes int
	err       error
}

func (s *stubRefresher) Refresh(ctx context.Context) error {
	s.refreshes++
	return s.err
}

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

func newGate(t *testing.T, sub *stubSubmitter, ref *stubRefresher) *Gate {
	t.Helper()
	return NewGate(sub, ref, dec(t, "1"), dec(t, "100"), discard())
}

func req(t *testing.T, price, size string) domain.OrderRequest {
	return domain.OrderRequest{
		MarketID: "m1",
		Outcome:  "YES",
		Side:     domain.OrderSideBuy,
		Price:    dec(t, price),
		Size:     dec(t, size),
	}
}

func TestPlaceOrderRejectsOutOfBounds(t *testing.T) {
	tests := []struct {
		name  string
		price string
		size  string
	}{
		{"size below minimum", "0.5", "0.5"},
		{"size above maximum", "0.5", "100.01"},
		{"price negative", "-0.01", "10"},
		{"price above one", "1.01", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &stubSubmitter{}
			ref := &stubRefresher{}
			g := newGate(t, sub, ref)

			_, err := g.PlaceOrder(context.Background(), "copytrade", req(t, tt.price, tt.size))
			if !errors.Is(err, domain.ErrInvalidOrder) {
				t.Fatalf("err = %v, want ErrInvalidOrder", err)
			}
			if len(sub.calls) != 0 {
				t.Fatal("rejected order reached the exchange")
			}
			if ref.refreshes != 0 {
				t.Fatal("rejected order triggered a ledger refresh")
			}
		})
	}
}

func TestPlaceOrderAcceptsBoundaryValues(t *testing.T) {
	tests := []struct {
		name  string
		price string
		size  string
	}{
		{"min size, zero price", "0", "1"},
		{"max size, price one", "1", "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &stubSubmitter{order: domain.Order{ID: "o1", Status: domain.OrderStatusOpen}}
			ref := &stubRefresher{}
			g := newGate(t, sub, ref)

			order, err := g.PlaceOrder(context.Background(), "copytrade", req(t, tt.price, tt.size))
			if err != nil {
				t.Fatalf("place: %v", err)
			}
			if order.ID != "o1" {
				t.Fatalf("order id = %q", order.ID)
			}
			if len(sub.calls) != 1 {
				t.Fatalf("submitter calls = %d, want 1", len(sub.calls))
			}
		})
	}
}

func TestPlaceOrderRefreshesLedgerAfterSubmit(t *testing.T) {
	sub := &stubSubmitter{order: domain.Order{ID: "o1"}}
	ref := &stubRefresher{}
	g := newGate(t, sub, ref)

	if _, err := g.PlaceOrder(context.Background(), "arbitrage", req(t, "0.4", "10")); err != nil {
		t.Fatalf("place: %v", err)
	}
	if ref.refreshes != 1 {
		t.Fatalf("refreshes = %d, want 1", ref.refreshes)
	}
}

func TestPlaceOrderRefreshesLedgerEvenOnSubmitError(t *testing.T) {
	sub := &stubSubmitter{err: errors.New("exchange down")}
	ref := &stubRefresher{}
	g := newGate(t, sub, ref)

	_, err := g.PlaceOrder(context.Background(), "arbitrage", req(t, "0.4", "10"))
	if err == nil {
		t.Fatal("expected submit error")
	}
	if ref.refreshes != 1 {
		t.Fatalf("refreshes = %d, want 1 even when the submit failed", ref.refreshes)
	}
}

func TestPlaceOrderSurvivesRefreshError(t *testing.T) {
	sub := &stubSubmitter{order: domain.Order{ID: "o1"}}
	ref := &stubRefresher{err: errors.New("positions endpoint 500")}
	g := newGate(t, sub, ref)

	order, err := g.PlaceOrder(context.Background(), "copytrade", req(t, "0.4", "10"))
	if err != nil {
		t.Fatalf("a failed refresh must not fail the order: %v", err)
	}
	if order.ID != "o1" {
		t.Fatalf("order id = %q", order.ID)
	}
}

type recordingStore struct {
	records []domain.OrderRecord
}

func (r *recordingStore) Record(ctx context.Context, rec domain.OrderRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *recordingStore) ListSince(ctx context.Context, since time.Time, limit int) ([]domain.OrderRecord, error) {
	return r.records, nil
}

func TestPlaceOrderRecordsAcceptedOrders(t *testing.T) {
	sub := &stubSubmitter{order: domain.Order{ID: "o1", MarketID: "m1"}}
	g := newGate(t, sub, &stubRefresher{})
	store := &recordingStore{}
	g.SetAuditSinks(store, nil)

	if _, err := g.PlaceOrder(context.Background(), "copytrade", req(t, "0.4", "10")); err != nil {
		t.Fatalf("place: %v", err)
	}
	if len(store.records) != 1 {
		t.Fatalf("records = %d, want 1", len(store.records))
	}
	if store.records[0].Strategy != "copytrade" {
		t.Fatalf("strategy = %q", store.records[0].Strategy)
	}
}
