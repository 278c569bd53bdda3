package domain

import "time"

type TicketStatus string

const (
	TicketStatusValid         TicketStatus = "valid"
	TicketStatusPartiallyPaid TicketStatus = "partially_paid"
	TicketStatusPartiallyUsed TicketStatus = "partially_used"
	TicketStatusRedeemed      TicketStatus = "redeemed"
	TicketStatusInvalidated   TicketStatus = "invalidated"
)

// Ticket is a persisted claim against a tier's capacity, tracked through
// payment and redemption. PaymentRef is the external payment reference and,
// when present, is unique system-wide: it is the sole idempotency guard
// against duplicate settlement delivery.
type Ticket struct {
	ID             string
	UserID         string
	TierID         string
	Quantity       int
	AmountPaid     int64
	PaymentRef     *string
	RedeemedCount  int
	Status         TicketStatus
	CapacityExempt bool
	PromoterID     *string
	Note           string
	ConfirmedAt    *time.Time
	ValidatedAt    *time.Time
	CreatedAt      time.Time
}

// UnitsRemaining is how many units are still admissible.
func (t Ticket) UnitsRemaining() int {
	return t.Quantity - t.RedeemedCount
}

// StatusForRedemption derives the status implied by a redeemed count,
// keeping the payment-derived status while nothing has been admitted.
func (t Ticket) StatusForRedemption(redeemed int) TicketStatus {
	switch {
	case redeemed >= t.Quantity:
		return TicketStatusRedeemed
	case redeemed > 0:
		return TicketStatusPartiallyUsed
	default:
		return t.Status
	}
}
