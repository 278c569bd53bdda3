package postgres

import (
	"context"
	"testing"

	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
	"github.com/leaatimberini/sucht-backend-sub000/internal/testutil"
)

func TestLoyaltyRepository_AwardPoints(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewLoyaltyRepository(pool)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	userID := testutil.InsertUser(t, ctx, pool, "buyer@example.com")
	_, tierID := testutil.InsertEventAndTier(t, ctx, pool, "Concert", 100, 3000)
	ticketID := testutil.InsertTicket(t, ctx, pool, domain.Ticket{
		UserID: userID, TierID: tierID, Quantity: 1, Status: domain.TicketStatusValid,
	})

	t.Run("awards accumulate in the balance", func(t *testing.T) {
		if err := repo.AwardPoints(ctx, userID, 10, domain.LoyaltyReasonPurchase, ticketID); err != nil {
			t.Fatalf("first award: %v", err)
		}
		if err := repo.AwardPoints(ctx, userID, 25, domain.LoyaltyReasonAttendance, ticketID); err != nil {
			t.Fatalf("second award: %v", err)
		}

		balance, err := repo.Balance(ctx, userID)
		if err != nil {
			t.Fatalf("balance: %v", err)
		}
		if balance != 35 {
			t.Fatalf("expected balance 35, got %d", balance)
		}

		var entries int
		if err := pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM loyalty_entries WHERE user_id = $1`, userID,
		).Scan(&entries); err != nil {
			t.Fatalf("count entries: %v", err)
		}
		if entries != 2 {
			t.Fatalf("expected 2 ledger entries, got %d", entries)
		}
	})

	t.Run("unknown user is rejected", func(t *testing.T) {
		missingID := "00000000-0000-0000-0000-000000000001"
		if err := repo.AwardPoints(ctx, missingID, 10, domain.LoyaltyReasonPurchase, ticketID); err != domain.ErrUserNotFound {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("fresh user has zero balance", func(t *testing.T) {
		otherID := testutil.InsertUser(t, ctx, pool, "fresh@example.com")
		balance, err := repo.Balance(ctx, otherID)
		if err != nil {
			t.Fatalf("balance: %v", err)
		}
		if balance != 0 {
			t.Fatalf("expected 0, got %d", balance)
		}
	})
}
