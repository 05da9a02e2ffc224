package strategy

import (
	"testing"
	"time"

	"github.com/predictlabs/predictbot/internal/domain"
)

func tradeAt(ts time.Time) domain.Trade {
	return domain.Trade{Timestamp: ts}
}

func TestWinRate(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	stale := now.Add(-8 * 24 * time.Hour)
	fresh := now.Add(-time.Hour)

	tests := []struct {
		name   string
		trades []domain.Trade
		want   float64
	}{
		{"no trades", nil, 0},
		{"only stale trades", []domain.Trade{tradeAt(stale), tradeAt(stale)}, 0.5},
		{"one recent trade", []domain.Trade{tradeAt(fresh)}, 0.51},
		{"mixed stale and recent", []domain.Trade{tradeAt(stale), tradeAt(fresh), tradeAt(fresh)}, 0.52},
		{"boundary just outside window", []domain.Trade{tradeAt(now.Add(-recentWindow))}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WinRate(tt.trades, now); got != tt.want {
				t.Fatalf("WinRate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWinRateMonotonicAndCapped(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-time.Hour)

	prev := 0.0
	for n := 1; n <= 60; n++ {
		trades := make([]domain.Trade, n)
		for i := range trades {
			trades[i] = tradeAt(fresh)
		}
		got := WinRate(trades, now)
		if got < prev {
			t.Fatalf("win rate decreased at n=%d: %v < %v", n, got, prev)
		}
		if got > 0.95 {
			t.Fatalf("win rate exceeded ceiling at n=%d: %v", n, got)
		}
		prev = got
	}
	if prev != 0.95 {
		t.Fatalf("win rate at 60 recent trades = %v, want the 0.95 ceiling", prev)
	}
}
