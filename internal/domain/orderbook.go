package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceLevel is a single resting price+size entry in an orderbook. Price and
// size are exact decimals parsed from the wire strings, never floats.
type PriceLevel struct {
	Price     decimal.Decimal
	Size      decimal.Decimal
	Maker     string
	Timestamp time.Time
}

// OrderBook is a full snapshot of bids and asks for one market outcome. It is
// re-fetched whole on every check and never merged incrementally.
type OrderBook struct {
	MarketID  string
	Outcome   string
	Bids      []PriceLevel
	Asks      []PriceLevel
	Timestamp time.Time
}

// BestBid returns the bid level with the highest price. The second return is
// false when the bid side is empty.
func (b OrderBook) BestBid() (PriceLevel, bool) {
	return bestLevel(b.Bids, func(cand, best decimal.Decimal) bool {
		return cand.GreaterThan(best)
	})
}

// BestAsk returns the ask level with the lowest price. The second return is
// false when the ask side is empty.
func (b OrderBook) BestAsk() (PriceLevel, bool) {
	return bestLevel(b.Asks, func(cand, best decimal.Decimal) bool {
		return cand.LessThan(best)
	})
}

func bestLevel(levels []PriceLevel, better func(cand, best decimal.Decimal) bool) (PriceLevel, bool) {
	if len(levels) == 0 {
		return PriceLevel{}, false
	}
	best := levels[0]
	for _, lvl := range levels[1:] {
		if better(lvl.Price, best.Price) {
			best = lvl
		}
	}
	return best, true
}
