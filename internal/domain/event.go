package domain

import "time"

// Event is a dated occasion that tiers hang off. EndsAt bounds door-side
// redemption; ConfirmationRequestedAt starts the grace clock after which
// unconfirmed tickets are swept back into the pool.
type Event struct {
	ID                      string
	Name                    string
	StartsAt                time.Time
	EndsAt                  time.Time
	ConfirmationRequestedAt *time.Time
}
