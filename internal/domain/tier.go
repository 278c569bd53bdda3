package domain

// Tier is a sellable, finite-capacity category of admission for an event.
// Prices are integer cents. Remaining is the capacity pool: it never goes
// negative and is only mutated under a row lock.
type Tier struct {
	ID           string
	EventID      string
	Name         string
	Remaining    int
	UnitPrice    int64
	PartialPrice *int64
	IsFree       bool
}

// FullAmount is the full price for qty units of this tier.
func (t Tier) FullAmount(qty int) int64 {
	return t.UnitPrice * int64(qty)
}

// PartialAmount is the partial-payment price for qty units, or false when
// the tier does not allow partial payment.
func (t Tier) PartialAmount(qty int) (int64, bool) {
	if t.PartialPrice == nil {
		return 0, false
	}
	return *t.PartialPrice * int64(qty), true
}
