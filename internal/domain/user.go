package domain

import "time"

// User is the minimal buyer record the core needs: settlement re-validates
// the buyer still exists, notifications need an address.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}
