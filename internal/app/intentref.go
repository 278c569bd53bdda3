package app

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

// The intent reference is the only channel carrying purchase data across the
// asynchronous round trip through the payment processor: no database row
// exists until the settlement event comes back. The encoding is versioned so
// a payload written by one release can be rejected cleanly instead of
// misparsed by another.
const intentRefPrefix = "tik1."

type PurchaseKind string

const (
	PurchaseFull    PurchaseKind = "full"
	PurchasePartial PurchaseKind = "partial"
)

type intentPayload struct {
	Kind       PurchaseKind `json:"kind"`
	UserID     string       `json:"user_id"`
	TierID     string       `json:"tier_id"`
	Quantity   int          `json:"quantity"`
	Amount     int64        `json:"amount"`
	PromoterID string       `json:"promoter_id,omitempty"`
}

func encodeIntentRef(p intentPayload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode intent ref: %w", err)
	}
	return intentRefPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeIntentRef(ref string) (intentPayload, error) {
	encoded, ok := strings.CutPrefix(ref, intentRefPrefix)
	if !ok {
		return intentPayload{}, fmt.Errorf("%w: unknown version", domain.ErrMalformedIntentRef)
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return intentPayload{}, fmt.Errorf("%w: %v", domain.ErrMalformedIntentRef, err)
	}
	var p intentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return intentPayload{}, fmt.Errorf("%w: %v", domain.ErrMalformedIntentRef, err)
	}
	if p.Kind != PurchaseFull && p.Kind != PurchasePartial {
		return intentPayload{}, fmt.Errorf("%w: unknown kind %q", domain.ErrMalformedIntentRef, p.Kind)
	}
	if p.UserID == "" || p.TierID == "" || p.Quantity <= 0 || p.Amount < 0 {
		return intentPayload{}, fmt.Errorf("%w: incomplete payload", domain.ErrMalformedIntentRef)
	}
	return p, nil
}
