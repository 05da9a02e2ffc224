package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/predictlabs/predictbot/internal/domain"
)

const archiveListLimit = 10000

// Archiver periodically snapshots recent order and opportunity history from
// the audit stores into JSONL objects. It only reads; nothing is deleted
// from the primary store.
type Archiver struct {
	writer domain.BlobWriter
	orders domain.OrderStore
	opps   domain.OpportunityStore
	prefix string
	logger *slog.Logger

	lastRun time.Time
}

// NewArchiver creates an Archiver writing under the given key prefix. The
// opportunity store may be nil when only the copy strategy runs.
func NewArchiver(writer domain.BlobWriter, orders domain.OrderStore, opps domain.OpportunityStore, prefix string, logger *slog.Logger) *Archiver {
	return &Archiver{
		writer: writer,
		orders: orders,
		opps:   opps,
		prefix: prefix,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// Run uploads a snapshot on every interval tick until the context is
// cancelled.
func (a *Archiver) Run(ctx context.Context, interval time.Duration) error {
	a.logger.Info("archiver started", slog.Duration("interval", interval))
	defer a.logger.Info("archiver stopped")

	a.lastRun = time.Now().UTC()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.ArchiveOnce(ctx); err != nil {
				a.logger.Warn("archive cycle failed", slog.String("error", err.Error()))
			}
		}
	}
}

// ArchiveOnce uploads everything recorded since the previous cycle. The
// since cursor only advances when the cycle fully succeeds, so a failed
// upload is retried with the same window next tick.
func (a *Archiver) ArchiveOnce(ctx context.Context) error {
	since := a.lastRun
	now := time.Now().UTC()

	n, err := a.archiveOrders(ctx, since, now)
	if err != nil {
		return err
	}
	m, err := a.archiveOpportunities(ctx, since, now)
	if err != nil {
		return err
	}

	a.lastRun = now
	if n > 0 || m > 0 {
		a.logger.Info("archive uploaded",
			slog.Int("orders", n),
			slog.Int("opportunities", m),
		)
	}
	return nil
}

func (a *Archiver) archiveOrders(ctx context.Context, since, now time.Time) (int, error) {
	recs, err := a.orders.ListSince(ctx, since, archiveListLimit)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive orders query: %w", err)
	}
	if len(recs) == 0 {
		return 0, nil
	}

	rows := make([]any, len(recs))
	for i, rec := range recs {
		rows[i] = map[string]any{
			"id":          rec.ID,
			"market_id":   rec.MarketID,
			"outcome":     rec.Outcome,
			"side":        string(rec.Side),
			"price":       rec.Price.String(),
			"size":        rec.Size.String(),
			"status":      string(rec.Status),
			"strategy":    rec.Strategy,
			"created_at":  rec.CreatedAt,
			"recorded_at": rec.RecordedAt,
		}
	}

	buf, err := marshalJSONL(rows)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive orders marshal: %w", err)
	}
	key := a.archiveKey("orders", now)
	if err := a.writer.Put(ctx, key, buf, "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive orders upload: %w", err)
	}
	return len(recs), nil
}

func (a *Archiver) archiveOpportunities(ctx context.Context, since, now time.Time) (int, error) {
	if a.opps == nil {
		return 0, nil
	}
	opps, err := a.opps.ListSince(ctx, since, archiveListLimit)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive opportunities query: %w", err)
	}
	if len(opps) == 0 {
		return 0, nil
	}

	rows := make([]any, len(opps))
	for i, opp := range opps {
		rows[i] = map[string]any{
			"id":          opp.ID,
			"market_id":   opp.MarketID,
			"outcome":     opp.Outcome,
			"buy_price":   opp.BuyPrice.String(),
			"sell_price":  opp.SellPrice.String(),
			"size":        opp.Size.String(),
			"margin":      opp.Margin.String(),
			"detected_at": opp.DetectedAt,
		}
	}

	buf, err := marshalJSONL(rows)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive opportunities marshal: %w", err)
	}
	key := a.archiveKey("opportunities", now)
	if err := a.writer.Put(ctx, key, buf, "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive opportunities upload: %w", err)
	}
	return len(opps), nil
}

func (a *Archiver) archiveKey(kind string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s.jsonl", a.prefix, kind, now.Format("2006-01-02T15-04-05Z"))
}

// marshalJSONL serializes rows as newline-delimited JSON.
func marshalJSONL(rows []any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
