package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/predictlabs/predictbot/internal/domain"
)

const defaultStreamMaxLen int64 = 10000

// EventBus implements domain.EventBus on a single Redis stream. Each event
// is appended with XADD under an approximate MAXLEN so the stream trims
// itself.
type EventBus struct {
	rdb    *redis.Client
	stream string
	maxLen int64
}

// NewEventBus creates an EventBus writing to the named stream. maxLen <= 0
// falls back to the default of 10,000 entries.
func NewEventBus(c *Client, stream string, maxLen int64) *EventBus {
	if maxLen <= 0 {
		maxLen = defaultStreamMaxLen
	}
	return &EventBus{rdb: c.Underlying(), stream: stream, maxLen: maxLen}
}

// Publish appends an event to the stream.
func (b *EventBus) Publish(ctx context.Context, event string, payload []byte) error {
	args := &redis.XAddArgs{
		Stream: b.stream,
		MaxLen: b.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"event":   event,
			"payload": payload,
			"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
	if err := b.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", event, err)
	}
	return nil
}

var _ domain.EventBus = (*EventBus)(nil)
