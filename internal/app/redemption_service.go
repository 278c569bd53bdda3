package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/leaatimberini/sucht-backend-sub000/internal/clock"
	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

type RedemptionRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetTicketForUpdate(ctx context.Context, ticketID string) (domain.Ticket, error)
	GetDoorInfo(ctx context.Context, ticketID string) (DoorInfo, error)
	UpdateRedemption(ctx context.Context, ticketID string, redeemed int, status domain.TicketStatus, validatedAt time.Time) error
	SetConfirmedAt(ctx context.Context, ticketID string, at time.Time) error
}

// DoorInfo is what door staff see next to the admit/deny outcome.
type DoorInfo struct {
	HolderName  string
	TierName    string
	EventEndsAt time.Time
}

// RedemptionService applies door-side admission against a ticket: partial
// admission of a multi-person ticket, the event time window, and the
// first-admission loyalty trigger.
type RedemptionService struct {
	repo     RedemptionRepository
	loyalty  *LoyaltyDispatcher
	notifier Notifier
	clock    clock.Clock
	log      zerolog.Logger
}

func NewRedemptionService(
	repo RedemptionRepository,
	loyalty *LoyaltyDispatcher,
	notifier Notifier,
	clk clock.Clock,
	log zerolog.Logger,
) *RedemptionService {
	return &RedemptionService{
		repo:     repo,
		loyalty:  loyalty,
		notifier: notifier,
		clock:    clk,
		log:      log.With().Str("component", "redemption").Logger(),
	}
}

type RedeemInput struct {
	TicketID string
	Units    int
}

type RedeemResult struct {
	TicketID      string
	Admitted      int
	RedeemedCount int
	Remaining     int
	Status        domain.TicketStatus
	HolderName    string
	TierName      string
	Note          string
}

// Redeem admits units against a ticket. The read-modify-write runs under a
// row lock on the ticket, which also serializes the first-admission check:
// two concurrent redemptions cannot both observe a redeemed count of zero.
func (s *RedemptionService) Redeem(ctx context.Context, in RedeemInput) (RedeemResult, error) {
	if in.Units <= 0 {
		return RedeemResult{}, domain.ErrInvalidQuantity
	}

	now := s.clock.Now()
	var result RedeemResult
	var ticket domain.Ticket
	firstAdmission := false

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		t, err := s.repo.GetTicketForUpdate(txCtx, in.TicketID)
		if err != nil {
			return err
		}
		info, err := s.repo.GetDoorInfo(txCtx, in.TicketID)
		if err != nil {
			return err
		}

		if !now.Before(info.EventEndsAt) {
			return domain.ErrEventEnded
		}
		if t.Status == domain.TicketStatusInvalidated {
			return domain.ErrTicketInvalidated
		}
		if t.RedeemedCount >= t.Quantity {
			return domain.ErrFullyRedeemed
		}
		if remaining := t.UnitsRemaining(); in.Units > remaining {
			return &domain.ExceedsRemainingError{Remaining: remaining}
		}

		newCount := t.RedeemedCount + in.Units
		status := t.StatusForRedemption(newCount)
		if err := s.repo.UpdateRedemption(txCtx, t.ID, newCount, status, now); err != nil {
			return err
		}

		firstAdmission = t.RedeemedCount == 0
		t.RedeemedCount = newCount
		t.Status = status
		t.ValidatedAt = &now
		ticket = t

		result = RedeemResult{
			TicketID:      t.ID,
			Admitted:      in.Units,
			RedeemedCount: newCount,
			Remaining:     t.Quantity - newCount,
			Status:        status,
			HolderName:    info.HolderName,
			TierName:      info.TierName,
			Note:          t.Note,
		}
		return nil
	})
	if err != nil {
		return RedeemResult{}, err
	}

	s.log.Info().
		Str("ticket_id", ticket.ID).
		Int("admitted", in.Units).
		Int("redeemed_count", ticket.RedeemedCount).
		Str("status", string(ticket.Status)).
		Msg("ticket redeemed")

	if firstAdmission && s.loyalty != nil {
		s.loyalty.AttendanceAward(ctx, ticket)
	}
	if s.notifier != nil {
		if err := s.notifier.TicketValidated(ctx, ticket); err != nil {
			s.log.Warn().Err(err).Str("ticket_id", ticket.ID).Msg("ticket validated notification failed")
		}
	}
	return result, nil
}

// ConfirmAttendance records the buyer's pre-event confirmation, which keeps
// the ticket out of the expiry sweep. Confirming twice is a no-op.
func (s *RedemptionService) ConfirmAttendance(ctx context.Context, ticketID string) error {
	now := s.clock.Now()
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		t, err := s.repo.GetTicketForUpdate(txCtx, ticketID)
		if err != nil {
			return err
		}
		if t.Status == domain.TicketStatusInvalidated {
			return domain.ErrTicketInvalidated
		}
		if t.ConfirmedAt != nil {
			return nil
		}
		return s.repo.SetConfirmedAt(txCtx, t.ID, now)
	})
}
