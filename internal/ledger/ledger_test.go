package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/predictlabs/predictbot/internal/domain"
)

type stubFetcher struct {
	account   domain.Account
	positions []domain.Position
	accErr    error
	posErr    error
}

func (s *stubFetcher) GetAccount(ctx context.Context, address string) (domain.Account, error) {
	return s.account, s.accErr
}

func (s *stubFetcher) GetPositions(ctx context.Context, address string) ([]domain.Position, error) {
	return s.positions, s.posErr
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pos(market, outcome, size string) domain.Position {
	return domain.Position{
		MarketID: market,
		Outcome:  outcome,
		Size:     decimal.RequireFromString(size),
	}
}

func TestRefreshReplacesWholesale(t *testing.T) {
	fetcher := &stubFetcher{
		account:   domain.Account{Address: "0xabc", Balance: decimal.RequireFromString("100.5")},
		positions: []domain.Position{pos("m1", "YES", "10"), pos("m2", "NO", "4")},
	}
	l := New(fetcher, "0xabc", discard())

	if err := l.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if l.Count() != 2 {
		t.Fatalf("count = %d, want 2", l.Count())
	}
	if got := l.Balance(); !got.Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("balance = %s, want 100.5", got)
	}

	// The next snapshot drops m1 entirely; the ledger must not keep it.
	fetcher.positions = []domain.Position{pos("m2", "NO", "7")}
	if err := l.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if l.Count() != 1 {
		t.Fatalf("count after replace = %d, want 1", l.Count())
	}
	if _, ok := l.Position("m1", "YES"); ok {
		t.Fatal("stale position m1/YES survived a refresh")
	}
	p, ok := l.Position("m2", "NO")
	if !ok {
		t.Fatal("position m2/NO missing")
	}
	if !p.Size.Equal(decimal.RequireFromString("7")) {
		t.Fatalf("size = %s, want 7", p.Size)
	}
}

func TestRefreshKeyedByMarketAndOutcome(t *testing.T) {
	fetcher := &stubFetcher{
		positions: []domain.Position{pos("m1", "YES", "3"), pos("m1", "NO", "5")},
	}
	l := New(fetcher, "0xabc", discard())
	if err := l.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if l.Count() != 2 {
		t.Fatalf("count = %d, want 2 (distinct outcomes of same market)", l.Count())
	}
}

func TestRefreshErrorKeepsOldView(t *testing.T) {
	fetcher := &stubFetcher{
		account:   domain.Account{Balance: decimal.RequireFromString("50")},
		positions: []domain.Position{pos("m1", "YES", "10")},
	}
	l := New(fetcher, "0xabc", discard())
	if err := l.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	fetcher.posErr = errors.New("boom")
	if err := l.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if l.Count() != 1 {
		t.Fatalf("count = %d, want previous snapshot intact", l.Count())
	}
}
