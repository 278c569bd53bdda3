package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SweepRepository selects tickets eligible for expiry. The sweep itself goes
// through the ticket service's guarded invalidate transition, so this query
// only has to be a best-effort snapshot.
type SweepRepository struct {
	pool *pgxpool.Pool
}

func NewSweepRepository(pool *pgxpool.Pool) *SweepRepository {
	return &SweepRepository{pool: pool}
}

func (r *SweepRepository) ListExpiredUnconfirmed(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	const query = `
SELECT t.id
FROM tickets t
JOIN tiers tr ON tr.id = t.tier_id
JOIN events e ON e.id = tr.event_id
WHERE t.status = 'valid'
  AND t.confirmed_at IS NULL
  AND e.confirmation_requested_at IS NOT NULL
  AND e.confirmation_requested_at < $1
ORDER BY t.created_at
LIMIT $2`

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired unconfirmed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired ticket id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expired unconfirmed: %w", err)
	}
	return ids, nil
}
