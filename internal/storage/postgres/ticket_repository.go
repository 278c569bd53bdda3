package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

// TicketRepository backs the settlement reconciler: tier capacity under row
// locks, ticket creation guarded by the unique payment_ref index, and the
// invalidate transition.
type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *TicketRepository) GetUser(ctx context.Context, userID string) (domain.User, error) {
	const query = `SELECT id, name, email, created_at FROM users WHERE id = $1`

	var u domain.User
	err := r.queryRow(ctx, query, userID).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.User{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

const tierColumns = `id, event_id, name, remaining, unit_price, partial_price, is_free`

func (r *TicketRepository) GetTier(ctx context.Context, tierID string) (domain.Tier, error) {
	query := `SELECT ` + tierColumns + ` FROM tiers WHERE id = $1`
	return r.scanTier(r.queryRow(ctx, query, tierID))
}

func (r *TicketRepository) GetTierForUpdate(ctx context.Context, tierID string) (domain.Tier, error) {
	query := `SELECT ` + tierColumns + ` FROM tiers WHERE id = $1 FOR UPDATE`
	return r.scanTier(r.queryRow(ctx, query, tierID))
}

func (r *TicketRepository) scanTier(row pgx.Row) (domain.Tier, error) {
	var t domain.Tier
	err := row.Scan(&t.ID, &t.EventID, &t.Name, &t.Remaining, &t.UnitPrice, &t.PartialPrice, &t.IsFree)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Tier{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Tier{}, domain.ErrTierNotFound
		}
		return domain.Tier{}, fmt.Errorf("get tier: %w", err)
	}
	return t, nil
}

func (r *TicketRepository) UpdateTierRemaining(ctx context.Context, tierID string, remaining int) error {
	const stmt = `UPDATE tiers SET remaining = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, tierID, remaining)
	if err != nil {
		return fmt.Errorf("update tier remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTierNotFound
	}
	return nil
}

const ticketColumns = `id, user_id, tier_id, quantity, amount_paid, payment_ref, redeemed_count,
status, capacity_exempt, promoter_id, note, confirmed_at, validated_at, created_at`

func (r *TicketRepository) FindTicketByPaymentRef(ctx context.Context, ref string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE payment_ref = $1`

	t, err := scanTicket(r.queryRow(ctx, query, ref))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find ticket by payment ref: %w", err)
	}
	return &t, nil
}

func (r *TicketRepository) CreateTicket(ctx context.Context, ticket domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, user_id, tier_id, quantity, amount_paid, payment_ref, redeemed_count,
	status, capacity_exempt, promoter_id, note, confirmed_at, validated_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.exec(ctx, stmt,
		ticket.ID,
		ticket.UserID,
		ticket.TierID,
		ticket.Quantity,
		ticket.AmountPaid,
		ticket.PaymentRef,
		ticket.RedeemedCount,
		ticket.Status,
		ticket.CapacityExempt,
		ticket.PromoterID,
		ticket.Note,
		ticket.ConfirmedAt,
		ticket.ValidatedAt,
		ticket.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSettlement
		}
		if constraint, ok := isForeignKeyViolation(err); ok {
			if strings.Contains(constraint, "user") {
				return domain.ErrUserNotFound
			}
			return domain.ErrTierNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetTicketForUpdate(ctx context.Context, ticketID string) (domain.Ticket, error) {
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

func (r *TicketRepository) UpdateTicketStatus(ctx context.Context, ticketID string, status domain.TicketStatus) error {
	const stmt = `UPDATE tickets SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, ticketID, status)
	if err != nil {
		return fmt.Errorf("update ticket status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	var status string
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.TierID,
		&t.Quantity,
		&t.AmountPaid,
		&t.PaymentRef,
		&t.RedeemedCount,
		&status,
		&t.CapacityExempt,
		&t.PromoterID,
		&t.Note,
		&t.ConfirmedAt,
		&t.ValidatedAt,
		&t.CreatedAt,
	)
	if err != nil {
		return domain.Ticket{}, err
	}
	t.Status = domain.TicketStatus(status)
	return t, nil
}

func (r *TicketRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *TicketRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
