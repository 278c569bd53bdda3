package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

// LoyaltyRepository is the points ledger collaborator. The balance update
// and the entry record commit atomically; callers treat the whole award as
// best-effort, but a half-applied award is never visible.
type LoyaltyRepository struct {
	pool *pgxpool.Pool
}

func NewLoyaltyRepository(pool *pgxpool.Pool) *LoyaltyRepository {
	return &LoyaltyRepository{pool: pool}
}

func (r *LoyaltyRepository) AwardPoints(ctx context.Context, userID string, points int, reason string, ticketID string) error {
	return withTx(ctx, r.pool, func(txCtx context.Context) error {
		tx := txFromContext(txCtx)

		const upsert = `
INSERT INTO loyalty_accounts (user_id, balance)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET balance = loyalty_accounts.balance + EXCLUDED.balance`

		if _, err := tx.Exec(txCtx, upsert, userID, points); err != nil {
			if _, ok := isForeignKeyViolation(err); ok {
				return domain.ErrUserNotFound
			}
			if isInvalidUUID(err) {
				return domain.ErrInvalidID
			}
			return fmt.Errorf("update loyalty balance: %w", err)
		}

		const insert = `
INSERT INTO loyalty_entries (id, user_id, points, reason, ticket_id, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())`

		if _, err := tx.Exec(txCtx, insert, uuid.NewString(), userID, points, reason, ticketID); err != nil {
			return fmt.Errorf("record loyalty entry: %w", err)
		}
		return nil
	})
}

// Balance reads a user's current points balance; users with no account yet
// have a balance of zero.
func (r *LoyaltyRepository) Balance(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COALESCE((SELECT balance FROM loyalty_accounts WHERE user_id = $1), 0)`

	var balance int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&balance); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("get loyalty balance: %w", err)
	}
	return balance, nil
}
