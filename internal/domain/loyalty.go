package domain

import "time"

// LoyaltyEntry is one points movement in a user's loyalty account.
type LoyaltyEntry struct {
	ID        string
	UserID    string
	Points    int
	Reason    string
	TicketID  string
	CreatedAt time.Time
}

// Loyalty award reasons.
const (
	LoyaltyReasonPurchase   = "purchase"
	LoyaltyReasonAttendance = "attendance"
	LoyaltyReasonReferral   = "referral"
)
