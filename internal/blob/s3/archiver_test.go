package s3blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/predictlabs/predictbot/internal/domain"
)

type memWriter struct {
	puts map[string][]byte
	err  error
}

func (m *memWriter) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if m.err != nil {
		return m.err
	}
	if m.puts == nil {
		m.puts = make(map[string][]byte)
	}
	m.puts[key] = data
	return nil
}

type memOrderStore struct {
	recs []domain.OrderRecord
}

func (m *memOrderStore) Record(ctx context.Context, rec domain.OrderRecord) error {
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memOrderStore) ListSince(ctx context.Context, since time.Time, limit int) ([]domain.OrderRecord, error) {
	var out []domain.OrderRecord
	for _, rec := range m.recs {
		if !rec.RecordedAt.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func record(ts time.Time) domain.OrderRecord {
	return domain.OrderRecord{
		Order: domain.Order{
			ID:       "o1",
			MarketID: "m1",
			Outcome:  "YES",
			Side:     domain.OrderSideBuy,
			Price:    decimal.RequireFromString("0.41"),
			Size:     decimal.RequireFromString("20"),
			Status:   domain.OrderStatusOpen,
		},
		Strategy:   "copytrade",
		RecordedAt: ts,
	}
}

func TestArchiveOnceUploadsJSONL(t *testing.T) {
	writer := &memWriter{}
	orders := &memOrderStore{recs: []domain.OrderRecord{record(time.Now().UTC())}}
	a := NewArchiver(writer, orders, nil, "archive", discard())
	a.lastRun = time.Now().UTC().Add(-time.Hour)

	if err := a.ArchiveOnce(context.Background()); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if len(writer.puts) != 1 {
		t.Fatalf("uploads = %d, want 1", len(writer.puts))
	}
	for key, data := range writer.puts {
		if !bytes.Contains(data, []byte(`"price":"0.41"`)) {
			t.Fatalf("object %s missing exact decimal price: %s", key, data)
		}
		if !bytes.HasSuffix(data, []byte("\n")) {
			t.Fatal("JSONL object not newline-terminated")
		}
	}
}

func TestArchiveOnceSkipsEmptyWindow(t *testing.T) {
	writer := &memWriter{}
	a := NewArchiver(writer, &memOrderStore{}, nil, "archive", discard())
	a.lastRun = time.Now().UTC()

	if err := a.ArchiveOnce(context.Background()); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if len(writer.puts) != 0 {
		t.Fatalf("uploads = %d, want 0 for empty window", len(writer.puts))
	}
}

func TestArchiveOnceRetainsCursorOnFailure(t *testing.T) {
	writer := &memWriter{err: errors.New("bucket gone")}
	orders := &memOrderStore{recs: []domain.OrderRecord{record(time.Now().UTC())}}
	a := NewArchiver(writer, orders, nil, "archive", discard())
	cursor := time.Now().UTC().Add(-time.Hour)
	a.lastRun = cursor

	if err := a.ArchiveOnce(context.Background()); err == nil {
		t.Fatal("expected upload error")
	}
	if !a.lastRun.Equal(cursor) {
		t.Fatal("cursor advanced despite failed upload")
	}
}
