package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Opportunity is an ephemeral crossed-book arbitrage candidate pairing a buy
// leg at the best ask with a sell leg at the best bid. It exists for one
// detection-to-execution attempt and is discarded afterwards regardless of
// outcome.
type Opportunity struct {
	ID         string
	MarketID   string
	Outcome    string
	BuyPrice   decimal.Decimal // best ask
	SellPrice  decimal.Decimal // best bid
	Size       decimal.Decimal
	Margin     decimal.Decimal // (bid - ask) / ask
	DetectedAt time.Time
}

// Key returns the (market, outcome) key used for execution de-duplication.
func (o Opportunity) Key() PositionKey {
	return PositionKey{MarketID: o.MarketID, Outcome: o.Outcome}
}
