package app

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/leaatimberini/sucht-backend-sub000/internal/clock"
	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

type TicketRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetUser(ctx context.Context, userID string) (domain.User, error)
	GetTier(ctx context.Context, tierID string) (domain.Tier, error)
	GetTierForUpdate(ctx context.Context, tierID string) (domain.Tier, error)
	UpdateTierRemaining(ctx context.Context, tierID string, remaining int) error
	FindTicketByPaymentRef(ctx context.Context, ref string) (*domain.Ticket, error)
	CreateTicket(ctx context.Context, ticket domain.Ticket) error
	GetTicketForUpdate(ctx context.Context, ticketID string) (domain.Ticket, error)
	UpdateTicketStatus(ctx context.Context, ticketID string, status domain.TicketStatus) error
}

// PaymentProcessor is the external gateway. It is called outside any
// transaction: before the ticket exists (intent creation) or not at all.
type PaymentProcessor interface {
	CreatePaymentRequest(ctx context.Context, req PaymentRequest) (PaymentIntent, error)
}

type PaymentRequest struct {
	Amount     int64
	Currency   string
	Reference  string
	SuccessURL string
	CancelURL  string
}

type PaymentIntent struct {
	PaymentID   string
	RedirectURL string
}

// Notifier delivers buyer-facing notifications. Every call is best-effort:
// a confirmed payment is never un-sold because a message failed to send.
type Notifier interface {
	TicketIssued(ctx context.Context, ticket domain.Ticket) error
	TicketValidated(ctx context.Context, ticket domain.Ticket) error
	TicketInvalidated(ctx context.Context, ticket domain.Ticket) error
}

// PolicySource exposes runtime-tunable payment policy. Injected rather than
// read from ambient globals so behavior under a given snapshot is
// deterministic and testable.
type PolicySource interface {
	PaymentsEnabled() bool
	Currency() string
}

// TicketService is the settlement reconciler: it creates payment intents,
// maps inbound settlement events idempotently onto tickets, and owns the
// guarded invalidate transition shared by the expiry sweeper and
// administrative cancellation.
type TicketService struct {
	repo       TicketRepository
	processor  PaymentProcessor
	notifier   Notifier
	loyalty    *LoyaltyDispatcher
	policy     PolicySource
	clock      clock.Clock
	log        zerolog.Logger
	successURL string
	cancelURL  string
}

func NewTicketService(
	repo TicketRepository,
	processor PaymentProcessor,
	notifier Notifier,
	loyalty *LoyaltyDispatcher,
	policy PolicySource,
	clk clock.Clock,
	log zerolog.Logger,
	opts ...TicketServiceOption,
) *TicketService {
	svc := &TicketService{
		repo:      repo,
		processor: processor,
		notifier:  notifier,
		loyalty:   loyalty,
		policy:    policy,
		clock:     clk,
		log:       log.With().Str("component", "tickets").Logger(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type TicketServiceOption func(*TicketService)

// WithReturnURLs sets the redirect targets handed to the payment processor.
func WithReturnURLs(success, cancel string) TicketServiceOption {
	return func(s *TicketService) {
		s.successURL = success
		s.cancelURL = cancel
	}
}

type CreateIntentInput struct {
	UserID     string
	TierID     string
	Quantity   int
	Kind       PurchaseKind
	PromoterID *string
}

// IntentResult carries either an immediately issued ticket (free tier or
// payments disabled) or the handle the buyer needs to complete payment.
type IntentResult struct {
	Ticket      *domain.Ticket
	PaymentID   string
	RedirectURL string
}

// CreateIntent validates a purchase and opens a payment intent with the
// processor. Capacity is checked here so a sold-out tier is refused before
// any money moves; the permanent decrement happens at settlement.
func (s *TicketService) CreateIntent(ctx context.Context, in CreateIntentInput) (IntentResult, error) {
	if in.Quantity <= 0 {
		return IntentResult{}, domain.ErrInvalidQuantity
	}
	if in.Kind != PurchaseFull && in.Kind != PurchasePartial {
		return IntentResult{}, domain.ErrInvalidPurchaseKind
	}

	user, err := s.repo.GetUser(ctx, in.UserID)
	if err != nil {
		return IntentResult{}, err
	}
	tier, err := s.repo.GetTier(ctx, in.TierID)
	if err != nil {
		return IntentResult{}, err
	}

	var amount int64
	switch {
	case tier.IsFree:
		amount = 0
	case in.Kind == PurchasePartial:
		partial, ok := tier.PartialAmount(in.Quantity)
		if !ok {
			return IntentResult{}, domain.ErrPartialNotEnabled
		}
		amount = partial
	default:
		amount = tier.FullAmount(in.Quantity)
	}

	if tier.IsFree || !s.policy.PaymentsEnabled() || amount == 0 {
		ticket, _, err := s.commit(ctx, commitInput{
			User:       user,
			TierID:     tier.ID,
			Quantity:   in.Quantity,
			AmountPaid: 0,
			Kind:       in.Kind,
			PromoterID: in.PromoterID,
		})
		if err != nil {
			return IntentResult{}, err
		}
		return IntentResult{Ticket: &ticket}, nil
	}

	// Pre-payment refusal: safe to reject outright while no money has moved.
	if tier.Remaining < in.Quantity {
		return IntentResult{}, domain.ErrInsufficientCapacity
	}

	ref, err := encodeIntentRef(intentPayload{
		Kind:       in.Kind,
		UserID:     user.ID,
		TierID:     tier.ID,
		Quantity:   in.Quantity,
		Amount:     amount,
		PromoterID: deref(in.PromoterID),
	})
	if err != nil {
		return IntentResult{}, err
	}

	intent, err := s.processor.CreatePaymentRequest(ctx, PaymentRequest{
		Amount:     amount,
		Currency:   s.policy.Currency(),
		Reference:  ref,
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
	})
	if err != nil {
		return IntentResult{}, err
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("tier_id", tier.ID).
		Int("quantity", in.Quantity).
		Int64("amount", amount).
		Str("payment_id", intent.PaymentID).
		Msg("payment intent created")

	return IntentResult{PaymentID: intent.PaymentID, RedirectURL: intent.RedirectURL}, nil
}

// SettlementApproved is the only settlement status the core acts on.
const SettlementApproved = "approved"

type SettlementEvent struct {
	PaymentID string
	Status    string
	Reference string
}

type SettleResult struct {
	Ticket  domain.Ticket
	Created bool
	Ignored bool
}

// HandleSettlement is the idempotency boundary: the same payment id settles
// at most once regardless of how many times the processor delivers it.
func (s *TicketService) HandleSettlement(ctx context.Context, ev SettlementEvent) (SettleResult, error) {
	if ev.PaymentID == "" {
		return SettleResult{}, domain.ErrPaymentIDRequired
	}
	if ev.Status != SettlementApproved {
		s.log.Info().
			Str("payment_id", ev.PaymentID).
			Str("status", ev.Status).
			Msg("ignoring non-approved settlement event")
		return SettleResult{Ignored: true}, nil
	}

	if existing, err := s.repo.FindTicketByPaymentRef(ctx, ev.PaymentID); err != nil {
		return SettleResult{}, err
	} else if existing != nil {
		s.log.Info().
			Str("payment_id", ev.PaymentID).
			Str("ticket_id", existing.ID).
			Msg("duplicate settlement delivery, returning existing ticket")
		return SettleResult{Ticket: *existing}, nil
	}

	payload, err := decodeIntentRef(ev.Reference)
	if err != nil {
		return SettleResult{}, err
	}
	user, err := s.repo.GetUser(ctx, payload.UserID)
	if err != nil {
		return SettleResult{}, err
	}

	var promoter *string
	if payload.PromoterID != "" {
		promoter = &payload.PromoterID
	}
	ticket, created, err := s.commit(ctx, commitInput{
		User:       user,
		TierID:     payload.TierID,
		Quantity:   payload.Quantity,
		AmountPaid: payload.Amount,
		PaymentRef: &ev.PaymentID,
		Kind:       payload.Kind,
		PromoterID: promoter,
		Settled:    true,
	})
	if err != nil {
		return SettleResult{}, err
	}
	return SettleResult{Ticket: ticket, Created: created}, nil
}

type IssueExemptInput struct {
	UserID   string
	TierID   string
	Quantity int
	Note     string
}

// IssueExempt is the administrative issuance entry point: gifts and host
// invitations that bypass the capacity pool entirely. It is a separate,
// statically-typed path so exemption is never reachable from buyer input.
func (s *TicketService) IssueExempt(ctx context.Context, in IssueExemptInput) (domain.Ticket, error) {
	if in.Quantity <= 0 {
		return domain.Ticket{}, domain.ErrInvalidQuantity
	}
	user, err := s.repo.GetUser(ctx, in.UserID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if _, err := s.repo.GetTier(ctx, in.TierID); err != nil {
		return domain.Ticket{}, err
	}

	ticket, _, err := s.commit(ctx, commitInput{
		User:     user,
		TierID:   in.TierID,
		Quantity: in.Quantity,
		Kind:     PurchaseFull,
		Exempt:   true,
		Note:     in.Note,
	})
	return ticket, err
}

type commitInput struct {
	User       domain.User
	TierID     string
	Quantity   int
	AmountPaid int64
	PaymentRef *string
	Kind       PurchaseKind
	PromoterID *string
	Exempt     bool
	// Settled marks money already captured: capacity floors at zero instead
	// of refusing, because a paid customer is never rejected at commit time.
	Settled bool
	Note    string
}

func (s *TicketService) commit(ctx context.Context, in commitInput) (domain.Ticket, bool, error) {
	now := s.clock.Now()
	var result domain.Ticket
	created := true

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if in.PaymentRef != nil {
			existing, err := s.repo.FindTicketByPaymentRef(txCtx, *in.PaymentRef)
			if err != nil {
				return err
			}
			if existing != nil {
				result = *existing
				created = false
				return nil
			}
		}

		tier, err := s.repo.GetTierForUpdate(txCtx, in.TierID)
		if err != nil {
			return err
		}

		if !in.Exempt {
			remaining := tier.Remaining - in.Quantity
			if remaining < 0 {
				if !in.Settled {
					return domain.ErrInsufficientCapacity
				}
				s.log.Warn().
					Str("tier_id", tier.ID).
					Int("remaining", tier.Remaining).
					Int("quantity", in.Quantity).
					Msg("settled payment exceeds remaining capacity, flooring pool at zero")
				remaining = 0
			}
			if err := s.repo.UpdateTierRemaining(txCtx, tier.ID, remaining); err != nil {
				return err
			}
		}

		status := domain.TicketStatusValid
		if in.AmountPaid > 0 && in.AmountPaid < tier.FullAmount(in.Quantity) {
			status = domain.TicketStatusPartiallyPaid
		}

		ticket := domain.Ticket{
			ID:             uuid.NewString(),
			UserID:         in.User.ID,
			TierID:         in.TierID,
			Quantity:       in.Quantity,
			AmountPaid:     in.AmountPaid,
			PaymentRef:     in.PaymentRef,
			Status:         status,
			CapacityExempt: in.Exempt,
			PromoterID:     in.PromoterID,
			Note:           in.Note,
			CreatedAt:      now,
		}
		if err := s.repo.CreateTicket(txCtx, ticket); err != nil {
			return err
		}
		result = ticket
		return nil
	})
	if err != nil {
		// Two deliveries of the same settlement can race past the in-tx
		// lookup; the unique index on payment_ref is the source of truth.
		// Treat losing that race as "already settled" and return the winner.
		if errors.Is(err, domain.ErrDuplicateSettlement) && in.PaymentRef != nil {
			existing, findErr := s.repo.FindTicketByPaymentRef(ctx, *in.PaymentRef)
			if findErr == nil && existing != nil {
				s.log.Info().
					Str("payment_ref", *in.PaymentRef).
					Str("ticket_id", existing.ID).
					Msg("lost settlement insert race, returning existing ticket")
				return *existing, false, nil
			}
		}
		return domain.Ticket{}, false, err
	}

	if created {
		s.notifyBestEffort(ctx, result, notifyIssued)
		if in.Settled && s.loyalty != nil {
			s.loyalty.PurchaseAward(ctx, result)
		}
	}
	return result, created, nil
}

// Invalidate drives the guarded valid -> invalidated transition and returns
// the ticket's quantity to the pool (unless capacity-exempt). It is the
// single code path for both sweeper expiry and administrative cancel; a
// second pass over an already-invalidated ticket is a no-op.
func (s *TicketService) Invalidate(ctx context.Context, ticketID string) (bool, error) {
	var ticket domain.Ticket
	changed := false

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		t, err := s.repo.GetTicketForUpdate(txCtx, ticketID)
		if err != nil {
			return err
		}
		switch t.Status {
		case domain.TicketStatusInvalidated:
			return nil
		case domain.TicketStatusPartiallyUsed, domain.TicketStatusRedeemed:
			return domain.ErrTicketNotCancellable
		}

		if !t.CapacityExempt {
			tier, err := s.repo.GetTierForUpdate(txCtx, t.TierID)
			if err != nil {
				return err
			}
			if err := s.repo.UpdateTierRemaining(txCtx, tier.ID, tier.Remaining+t.Quantity); err != nil {
				return err
			}
		}
		if err := s.repo.UpdateTicketStatus(txCtx, t.ID, domain.TicketStatusInvalidated); err != nil {
			return err
		}
		t.Status = domain.TicketStatusInvalidated
		ticket = t
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if changed {
		s.log.Info().
			Str("ticket_id", ticket.ID).
			Int("quantity", ticket.Quantity).
			Bool("capacity_exempt", ticket.CapacityExempt).
			Msg("ticket invalidated")
		s.notifyBestEffort(ctx, ticket, notifyInvalidated)
	}
	return changed, nil
}

type notifyKind int

const (
	notifyIssued notifyKind = iota
	notifyInvalidated
)

func (s *TicketService) notifyBestEffort(ctx context.Context, ticket domain.Ticket, kind notifyKind) {
	if s.notifier == nil {
		return
	}
	var err error
	var what string
	switch kind {
	case notifyIssued:
		what = "issued"
		err = s.notifier.TicketIssued(ctx, ticket)
	case notifyInvalidated:
		what = "invalidated"
		err = s.notifier.TicketInvalidated(ctx, ticket)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("ticket_id", ticket.ID).Msgf("ticket %s notification failed", what)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
