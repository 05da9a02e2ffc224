package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is a read-only execution record from a market's trade history. It is
// used only for diffing "have I seen this trade" against a last-seen
// timestamp; nothing here is mutated.
type Trade struct {
	ID        string
	MarketID  string
	Outcome   string
	Side      OrderSide
	Price     decimal.Decimal
	Size      decimal.Decimal
	Timestamp time.Time
	Maker     string
	Taker     string
}

// TraderActivity is the per-followed-trader rolling state kept by the
// copy-trading loop. It lives only for the lifetime of the process.
type TraderActivity struct {
	Address      string
	LastSeen     time.Time
	RecentTrades []Trade
	WinRate      float64
}
