package domain

import "github.com/shopspring/decimal"

// PositionKey uniquely identifies a position. Positions are always keyed by
// (market, outcome).
type PositionKey struct {
	MarketID string
	Outcome  string
}

// Position is the last-known holding for one (market, outcome) pair, as
// reported by the account-positions endpoint. The ledger replaces these
// wholesale on every refresh; they are never merged.
type Position struct {
	MarketID      string
	Outcome       string
	Side          OrderSide
	Size          decimal.Decimal
	AvgPrice      decimal.Decimal
	UnrealizedPnL decimal.Decimal
	RealizedPnL   decimal.Decimal
}

// Key returns the (market, outcome) key for this position.
func (p Position) Key() PositionKey {
	return PositionKey{MarketID: p.MarketID, Outcome: p.Outcome}
}

// Account is a wallet-level snapshot from the exchange.
type Account struct {
	Address string
	Balance decimal.Decimal
}
