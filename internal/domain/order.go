package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide indicates whether this is a buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatus tracks the order lifecycle as reported by the exchange.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusMatched   OrderStatus = "matched"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusFailed    OrderStatus = "failed"
)

// OrderRequest is a candidate order before validation and submission. Price
// and size travel as exact decimals; they are serialized to decimal strings
// on the wire.
type OrderRequest struct {
	MarketID string
	Outcome  string
	Side     OrderSide
	Price    decimal.Decimal
	Size     decimal.Decimal
}

// Order is an order as acknowledged by the exchange.
type Order struct {
	ID        string
	MarketID  string
	Outcome   string
	Side      OrderSide
	Price     decimal.Decimal
	Size      decimal.Decimal
	Status    OrderStatus
	CreatedAt time.Time
}
