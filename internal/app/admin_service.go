package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/leaatimberini/sucht-backend-sub000/internal/clock"
	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

type AdminRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	CreateEvent(ctx context.Context, event domain.Event) error
	ListEvents(ctx context.Context) ([]domain.Event, error)
	SetConfirmationRequested(ctx context.Context, eventID string, at time.Time) error
	CreateTier(ctx context.Context, tier domain.Tier) error
	ListTiersByEvent(ctx context.Context, eventID string) ([]domain.Tier, error)
}

// AdminService covers the administrative collaborator surface the core
// depends on: events, tiers, buyers, and the confirmation request that
// starts the expiry grace clock.
type AdminService struct {
	repo  AdminRepository
	clock clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:  repo,
		clock: clk,
	}
}

type CreateUserInput struct {
	Name  string
	Email string
}

func (s *AdminService) CreateUser(ctx context.Context, in CreateUserInput) (domain.User, error) {
	if in.Email == "" {
		return domain.User{}, domain.ErrEmailRequired
	}

	user := domain.User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

type CreateEventInput struct {
	Name     string
	StartsAt *time.Time
	EndsAt   *time.Time
}

const defaultEventDuration = 8 * time.Hour

func (s *AdminService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Name == "" {
		return domain.Event{}, domain.ErrEventNameRequired
	}
	startsAt := s.clock.Now()
	if in.StartsAt != nil {
		startsAt = *in.StartsAt
	}
	endsAt := startsAt.Add(defaultEventDuration)
	if in.EndsAt != nil {
		endsAt = *in.EndsAt
	}

	event := domain.Event{
		ID:       uuid.NewString(),
		Name:     in.Name,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *AdminService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

// RequestConfirmations marks the event as having asked its buyers to confirm
// attendance; tickets still unconfirmed once the grace period elapses become
// eligible for the expiry sweep.
func (s *AdminService) RequestConfirmations(ctx context.Context, eventID string) error {
	if eventID == "" {
		return domain.ErrInvalidID
	}
	return s.repo.SetConfirmationRequested(ctx, eventID, s.clock.Now())
}

type CreateTierInput struct {
	EventID      string
	Name         string
	Capacity     int
	UnitPrice    int64
	PartialPrice *int64
	IsFree       bool
}

func (s *AdminService) CreateTier(ctx context.Context, in CreateTierInput) (domain.Tier, error) {
	if in.EventID == "" {
		return domain.Tier{}, domain.ErrInvalidID
	}
	if in.Name == "" {
		return domain.Tier{}, domain.ErrTierNameRequired
	}
	if in.Capacity <= 0 {
		return domain.Tier{}, domain.ErrInvalidCapacity
	}
	if in.IsFree {
		in.UnitPrice = 0
		in.PartialPrice = nil
	}
	if in.UnitPrice < 0 {
		return domain.Tier{}, domain.ErrInvalidPrice
	}
	if in.PartialPrice != nil && (*in.PartialPrice <= 0 || *in.PartialPrice >= in.UnitPrice) {
		return domain.Tier{}, domain.ErrInvalidPrice
	}

	tier := domain.Tier{
		ID:           uuid.NewString(),
		EventID:      in.EventID,
		Name:         in.Name,
		Remaining:    in.Capacity,
		UnitPrice:    in.UnitPrice,
		PartialPrice: in.PartialPrice,
		IsFree:       in.IsFree,
	}
	if err := s.repo.CreateTier(ctx, tier); err != nil {
		return domain.Tier{}, err
	}
	return tier, nil
}

func (s *AdminService) ListTiers(ctx context.Context, eventID string) ([]domain.Tier, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListTiersByEvent(ctx, eventID)
}
