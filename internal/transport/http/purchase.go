package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/leaatimberini/sucht-backend-sub000/internal/app"
	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

// IntentCreator is the minimal interface needed for the buyer purchase path.
type IntentCreator interface {
	CreateIntent(ctx context.Context, in app.CreateIntentInput) (app.IntentResult, error)
}

// HandleCreatePurchase returns an HTTP handler for opening a purchase.
// Free tiers (and a payments-disabled platform) issue the ticket
// immediately; paid tiers return a redirect handle for the processor.
func HandleCreatePurchase(svc IntentCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createPurchaseRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.UserID == "" || req.TierID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "user_id and tier_id are required")
			return
		}

		kind := app.PurchaseFull
		if req.PaymentType != "" {
			kind = app.PurchaseKind(req.PaymentType)
		}

		var promoter *string
		if req.PromoterID != "" {
			promoter = &req.PromoterID
		}

		res, err := svc.CreateIntent(r.Context(), app.CreateIntentInput{
			UserID:     req.UserID,
			TierID:     req.TierID,
			Quantity:   req.Quantity,
			Kind:       kind,
			PromoterID: promoter,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidQuantity):
				writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
			case errors.Is(err, domain.ErrInvalidPurchaseKind):
				writeError(w, http.StatusBadRequest, codeInvalidPurchaseKind, err.Error())
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrUserNotFound):
				writeError(w, http.StatusNotFound, codeUserNotFound, err.Error())
			case errors.Is(err, domain.ErrTierNotFound):
				writeError(w, http.StatusNotFound, codeTierNotFound, err.Error())
			case errors.Is(err, domain.ErrPartialNotEnabled):
				writeError(w, http.StatusBadRequest, codePartialNotEnabled, err.Error())
			case errors.Is(err, domain.ErrInsufficientCapacity):
				writeError(w, http.StatusConflict, codeInsufficientCapacity, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		if res.Ticket != nil {
			writeJSON(w, http.StatusCreated, newTicketResponse(*res.Ticket))
			return
		}
		writeJSON(w, http.StatusAccepted, purchasePendingResponse{
			PaymentID:   res.PaymentID,
			RedirectURL: res.RedirectURL,
		})
	}
}

type createPurchaseRequest struct {
	UserID      string `json:"user_id"`
	TierID      string `json:"tier_id"`
	Quantity    int    `json:"quantity"`
	PaymentType string `json:"payment_type,omitempty"`
	PromoterID  string `json:"promoter_id,omitempty"`
}

type purchasePendingResponse struct {
	PaymentID   string `json:"payment_id"`
	RedirectURL string `json:"redirect_url"`
}

type ticketResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	TierID        string     `json:"tier_id"`
	Quantity      int        `json:"quantity"`
	AmountPaid    int64      `json:"amount_paid"`
	RedeemedCount int        `json:"redeemed_count"`
	Status        string     `json:"status"`
	Note          string     `json:"note,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ValidatedAt   *time.Time `json:"validated_at,omitempty"`
}

func newTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:            t.ID,
		UserID:        t.UserID,
		TierID:        t.TierID,
		Quantity:      t.Quantity,
		AmountPaid:    t.AmountPaid,
		RedeemedCount: t.RedeemedCount,
		Status:        string(t.Status),
		Note:          t.Note,
		CreatedAt:     t.CreatedAt,
		ValidatedAt:   t.ValidatedAt,
	}
}
