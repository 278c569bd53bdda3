package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/leaatimberini/sucht-backend-sub000/internal/app"
	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

// ExemptIssuer is the administrative issuance path. It is deliberately a
// different interface from the buyer-facing IntentCreator: capacity
// exemption is never reachable from untrusted input.
type ExemptIssuer interface {
	IssueExempt(ctx context.Context, in app.IssueExemptInput) (domain.Ticket, error)
}

// TicketCanceller drives the administrative cancel transition.
type TicketCanceller interface {
	Invalidate(ctx context.Context, ticketID string) (bool, error)
}

// HandleAdminIssueTicket returns an HTTP handler for capacity-exempt
// (gift/invitation) ticket issuance.
func HandleAdminIssueTicket(svc ExemptIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req issueTicketRequest
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

		ticket, err := svc.IssueExempt(r.Context(), app.IssueExemptInput{
			UserID:   req.UserID,
			TierID:   req.TierID,
			Quantity: req.Quantity,
			Note:     req.Note,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidQuantity):
				writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrUserNotFound):
				writeError(w, http.StatusNotFound, codeUserNotFound, err.Error())
			case errors.Is(err, domain.ErrTierNotFound):
				writeError(w, http.StatusNotFound, codeTierNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		writeJSON(w, http.StatusCreated, newTicketResponse(ticket))
	}
}

// HandleAdminCancelTicket returns an HTTP handler for administrative cancel:
// POST /admin/tickets/{id}/cancel.
func HandleAdminCancelTicket(svc TicketCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		ticketID, ok := parseCancelTicketPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		changed, err := svc.Invalidate(r.Context(), ticketID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrTicketNotFound):
				writeError(w, http.StatusNotFound, codeTicketNotFound, err.Error())
			case errors.Is(err, domain.ErrTicketNotCancellable):
				writeError(w, http.StatusConflict, codeTicketNotCancellable, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, cancelTicketResponse{
			TicketID:  ticketID,
			Cancelled: changed,
		})
	}
}

func parseCancelTicketPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", false
	}
	if parts[0] != "admin" || parts[1] != "tickets" || parts[2] == "" || parts[3] != "cancel" {
		return "", false
	}
	return parts[2], true
}

type issueTicketRequest struct {
	UserID   string `json:"user_id"`
	TierID   string `json:"tier_id"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note,omitempty"`
}

type cancelTicketResponse struct {
	TicketID  string `json:"ticket_id"`
	Cancelled bool   `json:"cancelled"`
}
