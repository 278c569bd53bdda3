package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTierNotFound         = errors.New("tier not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidID            = errors.New("invalid id")
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrPartialNotEnabled    = errors.New("partial payment not enabled for tier")
	ErrDuplicateSettlement  = errors.New("payment reference already settled")
	ErrMalformedIntentRef   = errors.New("malformed intent reference")
	ErrInvalidPurchaseKind  = errors.New("invalid purchase kind")
	ErrPaymentIDRequired    = errors.New("payment id required")
	ErrEventEnded           = errors.New("event has ended")
	ErrFullyRedeemed        = errors.New("ticket fully redeemed")
	ErrTicketInvalidated    = errors.New("ticket invalidated")
	ErrTicketNotCancellable = errors.New("ticket already redeemed, cannot cancel")
	ErrEventNameRequired    = errors.New("event name required")
	ErrTierNameRequired     = errors.New("tier name required")
	ErrInvalidCapacity      = errors.New("invalid capacity")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrTierAlreadyExists    = errors.New("tier already exists")
	ErrEmailRequired        = errors.New("email required")
	ErrEmailAlreadyExists   = errors.New("email already registered")
)

// ExceedsRemainingError is returned when a redemption asks for more units
// than the ticket has left. Door staff act on the message directly, so it
// carries the actual remaining count.
type ExceedsRemainingError struct {
	Remaining int
}

func (e *ExceedsRemainingError) Error() string {
	return fmt.Sprintf("only %d unit(s) remaining on ticket", e.Remaining)
}
