package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/predictlabs/predictbot/internal/domain"
)

// OrderStore implements domain.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore creates an OrderStore backed by the given connection pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Record inserts an accepted order. Prices and sizes are stored as NUMERIC
// from their exact decimal string form.
func (s *OrderStore) Record(ctx context.Context, rec domain.OrderRecord) error {
	const query = `
		INSERT INTO orders (
			id, market_id, outcome, side, price, size, status, strategy,
			created_at, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.MarketID, rec.Outcome, string(rec.Side),
		rec.Price.String(), rec.Size.String(),
		string(rec.Status), rec.Strategy,
		rec.CreatedAt, rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: record order %s: %w", rec.ID, err)
	}
	return nil
}

// ListSince returns orders recorded at or after since, oldest first.
func (s *OrderStore) ListSince(ctx context.Context, since time.Time, limit int) ([]domain.OrderRecord, error) {
	const query = `
		SELECT id, market_id, outcome, side, price::text, size::text, status, strategy,
		       created_at, recorded_at
		FROM orders
		WHERE recorded_at >= $1
		ORDER BY recorded_at ASC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list orders: %w", err)
	}
	defer rows.Close()

	var recs []domain.OrderRecord
	for rows.Next() {
		var rec domain.OrderRecord
		var side, status, price, size string
		if err := rows.Scan(
			&rec.ID, &rec.MarketID, &rec.Outcome, &side, &price, &size,
			&status, &rec.Strategy, &rec.CreatedAt, &rec.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan order: %w", err)
		}
		rec.Side = domain.OrderSide(side)
		rec.Status = domain.OrderStatus(status)
		if rec.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("postgres: order %s price: %w", rec.ID, err)
		}
		if rec.Size, err = decimal.NewFromString(size); err != nil {
			return nil, fmt.Errorf("postgres: order %s size: %w", rec.ID, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
