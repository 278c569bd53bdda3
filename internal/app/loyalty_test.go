package app

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

func TestLoyaltyDispatcher(t *testing.T) {
	t.Parallel()

	t.Run("purchase award uses configured points", func(t *testing.T) {
		ledger := &fakeLedger{}
		d := NewLoyaltyDispatcher(ledger, zerolog.Nop(), WithPurchasePoints(42))

		d.PurchaseAward(context.Background(), domain.Ticket{ID: "ticket-1", UserID: "user-1"})

		if len(ledger.awards) != 1 {
			t.Fatalf("expected one award, got %d", len(ledger.awards))
		}
		award := ledger.awards[0]
		if award.userID != "user-1" || award.points != 42 || award.reason != domain.LoyaltyReasonPurchase {
			t.Fatalf("unexpected award: %+v", award)
		}
	})

	t.Run("attendance award includes the referring promoter", func(t *testing.T) {
		promoter := "promo-1"
		ledger := &fakeLedger{}
		d := NewLoyaltyDispatcher(ledger, zerolog.Nop())

		d.AttendanceAward(context.Background(), domain.Ticket{
			ID: "ticket-1", UserID: "user-1", PromoterID: &promoter,
		})

		if len(ledger.awards) != 2 {
			t.Fatalf("expected two awards, got %+v", ledger.awards)
		}
		if ledger.awards[0].points != defaultAttendancePoints {
			t.Fatalf("expected %d attendance points, got %d", defaultAttendancePoints, ledger.awards[0].points)
		}
		if ledger.awards[1].userID != "promo-1" || ledger.awards[1].points != defaultReferralPoints {
			t.Fatalf("unexpected referral award: %+v", ledger.awards[1])
		}
	})

	t.Run("ledger failure is swallowed", func(t *testing.T) {
		ledger := &fakeLedger{err: errors.New("ledger down")}
		d := NewLoyaltyDispatcher(ledger, zerolog.Nop())

		d.PurchaseAward(context.Background(), domain.Ticket{ID: "ticket-1", UserID: "user-1"})
		d.AttendanceAward(context.Background(), domain.Ticket{ID: "ticket-1", UserID: "user-1"})
	})

	t.Run("zero points skip the ledger entirely", func(t *testing.T) {
		ledger := &fakeLedger{}
		d := NewLoyaltyDispatcher(ledger, zerolog.Nop(), WithPurchasePoints(0))

		d.PurchaseAward(context.Background(), domain.Ticket{ID: "ticket-1", UserID: "user-1"})

		if len(ledger.awards) != 0 {
			t.Fatalf("expected no awards, got %+v", ledger.awards)
		}
	})
}
