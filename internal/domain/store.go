package domain

import (
	"context"
	"time"
)

// OrderRecord is an audit row for a gate-accepted order. Strategy names the
// loop that produced the order ("copytrade" or "arbitrage").
type OrderRecord struct {
	Order
	Strategy   string
	RecordedAt time.Time
}

// OrderStore persists gate-accepted orders for audit and archival. Trading
// never depends on it; callers treat failures as log-and-continue.
type OrderStore interface {
	Record(ctx context.Context, rec OrderRecord) error
	ListSince(ctx context.Context, since time.Time, limit int) ([]OrderRecord, error)
}

// OpportunityStore persists detected arbitrage opportunities.
type OpportunityStore interface {
	Record(ctx context.Context, opp Opportunity) error
	MarkExecuted(ctx context.Context, id string) error
	ListSince(ctx context.Context, since time.Time, limit int) ([]Opportunity, error)
}

// EventBus publishes best-effort trading events for external consumers.
type EventBus interface {
	Publish(ctx context.Context, event string, payload []byte) error
}

// BlobWriter uploads an object to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}
