package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leaatimberini/sucht-backend-sub000/internal/app"
	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

// RedemptionRepository backs door-side admission: the ticket row lock that
// serializes redemption, and the joined display data for door staff.
type RedemptionRepository struct {
	pool *pgxpool.Pool
}

func NewRedemptionRepository(pool *pgxpool.Pool) *RedemptionRepository {
	return &RedemptionRepository{pool: pool}
}

func (r *RedemptionRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *RedemptionRepository) GetTicketForUpdate(ctx context.Context, ticketID string) (domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1 FOR UPDATE`

	t, err := scanTicket(r.queryRow(ctx, query, ticketID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Ticket{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

func (r *RedemptionRepository) GetDoorInfo(ctx context.Context, ticketID string) (app.DoorInfo, error) {
	const query = `
SELECT u.name, tr.name, e.ends_at
FROM tickets t
JOIN users u ON u.id = t.user_id
JOIN tiers tr ON tr.id = t.tier_id
JOIN events e ON e.id = tr.event_id
WHERE t.id = $1`

	var info app.DoorInfo
	err := r.queryRow(ctx, query, ticketID).Scan(&info.HolderName, &info.TierName, &info.EventEndsAt)
	if err != nil {
		if isInvalidUUID(err) {
			return app.DoorInfo{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return app.DoorInfo{}, domain.ErrTicketNotFound
		}
		return app.DoorInfo{}, fmt.Errorf("get door info: %w", err)
	}
	return info, nil
}

func (r *RedemptionRepository) UpdateRedemption(ctx context.Context, ticketID string, redeemed int, status domain.TicketStatus, validatedAt time.Time) error {
	const stmt = `UPDATE tickets SET redeemed_count = $2, status = $3, validated_at = $4 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, ticketID, redeemed, status, validatedAt)
	if err != nil {
		return fmt.Errorf("update redemption: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *RedemptionRepository) SetConfirmedAt(ctx context.Context, ticketID string, at time.Time) error {
	const stmt = `UPDATE tickets SET confirmed_at = $2 WHERE id = $1 AND confirmed_at IS NULL`

	if _, err := r.exec(ctx, stmt, ticketID, at); err != nil {
		return fmt.Errorf("set confirmed at: %w", err)
	}
	return nil
}

func (r *RedemptionRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *RedemptionRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
