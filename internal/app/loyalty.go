package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

// LoyaltyLedger is the external points collaborator. Implementations must
// apply the balance update and the transaction record atomically; callers
// here treat every award as best-effort.
type LoyaltyLedger interface {
	AwardPoints(ctx context.Context, userID string, points int, reason string, ticketID string) error
}

// Default award sizes. Tunable via options so operators can run promotions
// without a code change.
const (
	defaultPurchasePoints   = 10
	defaultAttendancePoints = 25
	defaultReferralPoints   = 5
)

// LoyaltyDispatcher fires points awards triggered by settlement completion
// and by first redemption. Awards never fail their caller: errors are
// logged and swallowed, because the primary state change (payment settled,
// admission recorded) must not be lost to a side effect.
type LoyaltyDispatcher struct {
	ledger           LoyaltyLedger
	log              zerolog.Logger
	purchasePoints   int
	attendancePoints int
	referralPoints   int
}

func NewLoyaltyDispatcher(ledger LoyaltyLedger, log zerolog.Logger, opts ...LoyaltyOption) *LoyaltyDispatcher {
	d := &LoyaltyDispatcher{
		ledger:           ledger,
		log:              log.With().Str("component", "loyalty").Logger(),
		purchasePoints:   defaultPurchasePoints,
		attendancePoints: defaultAttendancePoints,
		referralPoints:   defaultReferralPoints,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type LoyaltyOption func(*LoyaltyDispatcher)

func WithPurchasePoints(n int) LoyaltyOption {
	return func(d *LoyaltyDispatcher) {
		if n >= 0 {
			d.purchasePoints = n
		}
	}
}

func WithAttendancePoints(n int) LoyaltyOption {
	return func(d *LoyaltyDispatcher) {
		if n >= 0 {
			d.attendancePoints = n
		}
	}
}

func WithReferralPoints(n int) LoyaltyOption {
	return func(d *LoyaltyDispatcher) {
		if n >= 0 {
			d.referralPoints = n
		}
	}
}

// PurchaseAward credits the buyer for a settled purchase.
func (d *LoyaltyDispatcher) PurchaseAward(ctx context.Context, ticket domain.Ticket) {
	d.award(ctx, ticket.UserID, d.purchasePoints, domain.LoyaltyReasonPurchase, ticket.ID)
}

// AttendanceAward credits the holder on the first admission of a ticket and,
// when the ticket carries a referring promoter, credits the promoter too.
// The two awards are independent.
func (d *LoyaltyDispatcher) AttendanceAward(ctx context.Context, ticket domain.Ticket) {
	d.award(ctx, ticket.UserID, d.attendancePoints, domain.LoyaltyReasonAttendance, ticket.ID)
	if ticket.PromoterID != nil {
		d.award(ctx, *ticket.PromoterID, d.referralPoints, domain.LoyaltyReasonReferral, ticket.ID)
	}
}

func (d *LoyaltyDispatcher) award(ctx context.Context, userID string, points int, reason, ticketID string) {
	if points == 0 {
		return
	}
	if err := d.ledger.AwardPoints(ctx, userID, points, reason, ticketID); err != nil {
		d.log.Error().
			Err(err).
			Str("user_id", userID).
			Str("ticket_id", ticketID).
			Str("reason", reason).
			Int("points", points).
			Msg("loyalty award failed")
		return
	}
	d.log.Info().
		Str("user_id", userID).
		Str("ticket_id", ticketID).
		Str("reason", reason).
		Int("points", points).
		Msg("loyalty points awarded")
}
