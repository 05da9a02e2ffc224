package strategy

import (
	"time"

	"github.com/predictlabs/predictbot/internal/domain"
)

const recentWindow = 7 * 24 * time.Hour

// WinRate derives a confidence score for a trader from their recent trades.
// It is a recency proxy, not realized P&L: a trader with no trades at all
// scores 0, a trader with only stale trades scores 0.5, and an active trader
// scores 0.5 plus one percent per trade in the last seven days, capped at
// 0.95.
func WinRate(trades []domain.Trade, now time.Time) float64 {
	if len(trades) == 0 {
		return 0
	}
	cutoff := now.Add(-recentWindow)
	recent := 0
	for _, tr := range trades {
		if tr.Timestamp.After(cutoff) {
			recent++
		}
	}
	if recent == 0 {
		return 0.5
	}
	rate := 0.5 + float64(recent)/100
	if rate > 0.95 {
		return 0.95
	}
	return rate
}
