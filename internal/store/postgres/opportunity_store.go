package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/predictlabs/predictbot/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates an OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

// Record inserts a detected opportunity.
func (s *OpportunityStore) Record(ctx context.Context, opp domain.Opportunity) error {
	const query = `
		INSERT INTO opportunities (
			id, market_id, outcome, buy_price, sell_price, size, margin,
			detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		opp.ID, opp.MarketID, opp.Outcome,
		opp.BuyPrice.String(), opp.SellPrice.String(),
		opp.Size.String(), opp.Margin.String(),
		opp.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: record opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// MarkExecuted stamps the opportunity as having had both legs attempted.
func (s *OpportunityStore) MarkExecuted(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE opportunities SET executed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: mark opportunity %s executed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListSince returns opportunities detected at or after since, oldest first.
func (s *OpportunityStore) ListSince(ctx context.Context, since time.Time, limit int) ([]domain.Opportunity, error) {
	const query = `
		SELECT id, market_id, outcome, buy_price::text, sell_price::text,
		       size::text, margin::text, detected_at
		FROM opportunities
		WHERE detected_at >= $1
		ORDER BY detected_at ASC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		var opp domain.Opportunity
		var buy, sell, size, margin string
		if err := rows.Scan(
			&opp.ID, &opp.MarketID, &opp.Outcome, &buy, &sell, &size, &margin,
			&opp.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		if opp.BuyPrice, err = decimal.NewFromString(buy); err != nil {
			return nil, fmt.Errorf("postgres: opportunity %s buy price: %w", opp.ID, err)
		}
		if opp.SellPrice, err = decimal.NewFromString(sell); err != nil {
			return nil, fmt.Errorf("postgres: opportunity %s sell price: %w", opp.ID, err)
		}
		if opp.Size, err = decimal.NewFromString(size); err != nil {
			return nil, fmt.Errorf("postgres: opportunity %s size: %w", opp.ID, err)
		}
		if opp.Margin, err = decimal.NewFromString(margin); err != nil {
			return nil, fmt.Errorf("postgres: opportunity %s margin: %w", opp.ID, err)
		}
		opps = append(opps, opp)
	}
	return opps, rows.Err()
}
