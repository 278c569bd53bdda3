// Package payment adapts the external payment processor behind the
// app.PaymentProcessor interface; this is the only package that speaks the
// gateway's wire format.
package payment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	stripe "github.com/stripe/stripe-go"
	"github.com/stripe/stripe-go/paymentintent"

	"github.com/leaatimberini/sucht-backend-sub000/internal/app"
)

// referenceMetadataKey is where the intent reference travels through the
// processor and comes back on the settlement event.
const referenceMetadataKey = "intent_ref"

type StripeProcessor struct {
	log zerolog.Logger
}

// NewStripeProcessor configures the global Stripe client with the secret key
// and returns the adapter.
func NewStripeProcessor(secretKey string, log zerolog.Logger) *StripeProcessor {
	stripe.Key = secretKey
	return &StripeProcessor{
		log: log.With().Str("component", "stripe").Logger(),
	}
}

func (p *StripeProcessor) CreatePaymentRequest(_ context.Context, req app.PaymentRequest) (app.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
	}
	params.AddMetadata(referenceMetadataKey, req.Reference)
	// Reuse the intent reference as the gateway idempotency key so a retried
	// create call cannot open two payment intents for one purchase.
	params.SetIdempotencyKey(req.Reference)

	pi, err := paymentintent.New(params)
	if err != nil {
		return app.PaymentIntent{}, fmt.Errorf("create payment intent: %w", err)
	}

	p.log.Info().
		Str("payment_id", pi.ID).
		Int64("amount", req.Amount).
		Str("currency", req.Currency).
		Msg("payment intent opened")

	redirect := req.SuccessURL
	if pi.NextAction != nil && pi.NextAction.RedirectToURL != nil {
		redirect = pi.NextAction.RedirectToURL.URL
	}

	return app.PaymentIntent{
		PaymentID:   pi.ID,
		RedirectURL: redirect,
	}, nil
}
