package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/leaatimberini/sucht-backend-sub000/internal/app"
	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

// AdminEventService is the minimal interface needed for admin event endpoints.
type AdminEventService interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// AdminTierService is the minimal interface needed for admin tier endpoints
// and the confirmation request that arms the expiry sweep.
type AdminTierService interface {
	CreateTier(ctx context.Context, in app.CreateTierInput) (domain.Tier, error)
	ListTiers(ctx context.Context, eventID string) ([]domain.Tier, error)
	RequestConfirmations(ctx context.Context, eventID string) error
}

// AdminUserService is the minimal interface needed for admin user creation.
type AdminUserService interface {
	CreateUser(ctx context.Context, in app.CreateUserInput) (domain.User, error)
}

// HandleAdminEvents returns an HTTP handler for admin event creation/listing.
func HandleAdminEvents(svc AdminEventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			events, err := svc.ListEvents(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]eventResponse, 0, len(events))
			for _, event := range events {
				resp = append(resp, newEventResponse(event))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req createEventRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if req.Name == "" {
				writeError(w, http.StatusBadRequest, codeEventNameRequired, domain.ErrEventNameRequired.Error())
				return
			}

			startsAt, ok := parseOptionalTime(w, req.StartsAt, codeInvalidStartsAt, "invalid starts_at format")
			if !ok {
				return
			}
			endsAt, ok := parseOptionalTime(w, req.EndsAt, codeInvalidEndsAt, "invalid ends_at format")
			if !ok {
				return
			}

			event, err := svc.CreateEvent(r.Context(), app.CreateEventInput{
				Name:     req.Name,
				StartsAt: startsAt,
				EndsAt:   endsAt,
			})
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrEventNameRequired):
					writeError(w, http.StatusBadRequest, codeEventNameRequired, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}
			writeJSON(w, http.StatusCreated, newEventResponse(event))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleAdminEventSub routes /admin/events/{id}/tiers and
// /admin/events/{id}/request-confirmations.
func HandleAdminEventSub(svc AdminTierService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, sub, ok := parseAdminEventSubPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch sub {
		case "tiers":
			handleAdminTiers(w, r, svc, eventID)
		case "request-confirmations":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			if err := svc.RequestConfirmations(r.Context(), eventID); err != nil {
				switch {
				case errors.Is(err, domain.ErrInvalidID):
					writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
				case errors.Is(err, domain.ErrEventNotFound):
					writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleAdminTiers(w http.ResponseWriter, r *http.Request, svc AdminTierService, eventID string) {
	switch r.Method {
	case http.MethodGet:
		tiers, err := svc.ListTiers(r.Context(), eventID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusNotFound, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrEventNotFound):
				writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		resp := make([]tierResponse, 0, len(tiers))
		for _, tier := range tiers {
			resp = append(resp, newTierResponse(tier))
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodPost:
		var req createTierRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		tier, err := svc.CreateTier(r.Context(), app.CreateTierInput{
			EventID:      eventID,
			Name:         req.Name,
			Capacity:     req.Capacity,
			UnitPrice:    req.UnitPrice,
			PartialPrice: req.PartialPrice,
			IsFree:       req.IsFree,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusNotFound, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrTierNameRequired):
				writeError(w, http.StatusBadRequest, codeTierNameRequired, err.Error())
			case errors.Is(err, domain.ErrInvalidCapacity):
				writeError(w, http.StatusBadRequest, codeInvalidCapacity, err.Error())
			case errors.Is(err, domain.ErrInvalidPrice):
				writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
			case errors.Is(err, domain.ErrEventNotFound):
				writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
			case errors.Is(err, domain.ErrTierAlreadyExists):
				writeError(w, http.StatusConflict, codeTierAlreadyExists, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		writeJSON(w, http.StatusCreated, newTierResponse(tier))
	default:
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	}
}

// HandleAdminUsers returns an HTTP handler for admin user creation.
func HandleAdminUsers(svc AdminUserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createUserRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		user, err := svc.CreateUser(r.Context(), app.CreateUserInput{
			Name:  req.Name,
			Email: req.Email,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrEmailRequired):
				writeError(w, http.StatusBadRequest, codeEmailRequired, err.Error())
			case errors.Is(err, domain.ErrEmailAlreadyExists):
				writeError(w, http.StatusConflict, codeEmailAlreadyExists, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		writeJSON(w, http.StatusCreated, userResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		})
	}
}

func parseOptionalTime(w http.ResponseWriter, value, code, msg string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		writeError(w, http.StatusBadRequest, code, msg)
		return nil, false
	}
	return &parsed, true
}

func parseAdminEventSubPath(path string) (string, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", "", false
	}
	if parts[0] != "admin" || parts[1] != "events" || parts[2] == "" {
		return "", "", false
	}
	return parts[2], parts[3], true
}

type createEventRequest struct {
	Name     string `json:"name"`
	StartsAt string `json:"starts_at,omitempty"`
	EndsAt   string `json:"ends_at,omitempty"`
}

type eventResponse struct {
	ID                      string     `json:"id"`
	Name                    string     `json:"name"`
	StartsAt                time.Time  `json:"starts_at"`
	EndsAt                  time.Time  `json:"ends_at"`
	ConfirmationRequestedAt *time.Time `json:"confirmation_requested_at,omitempty"`
}

func newEventResponse(e domain.Event) eventResponse {
	return eventResponse{
		ID:                      e.ID,
		Name:                    e.Name,
		StartsAt:                e.StartsAt,
		EndsAt:                  e.EndsAt,
		ConfirmationRequestedAt: e.ConfirmationRequestedAt,
	}
}

type createTierRequest struct {
	Name         string `json:"name"`
	Capacity     int    `json:"capacity"`
	UnitPrice    int64  `json:"unit_price"`
	PartialPrice *int64 `json:"partial_price,omitempty"`
	IsFree       bool   `json:"is_free,omitempty"`
}

type tierResponse struct {
	ID           string `json:"id"`
	EventID      string `json:"event_id"`
	Name         string `json:"name"`
	Remaining    int    `json:"remaining"`
	UnitPrice    int64  `json:"unit_price"`
	PartialPrice *int64 `json:"partial_price,omitempty"`
	IsFree       bool   `json:"is_free"`
}

func newTierResponse(t domain.Tier) tierResponse {
	return tierResponse{
		ID:           t.ID,
		EventID:      t.EventID,
		Name:         t.Name,
		Remaining:    t.Remaining,
		UnitPrice:    t.UnitPrice,
		PartialPrice: t.PartialPrice,
		IsFree:       t.IsFree,
	}
}

type createUserRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
