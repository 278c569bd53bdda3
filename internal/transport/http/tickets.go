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

// Redeemer is the minimal interface the door-side endpoints need.
type Redeemer interface {
	Redeem(ctx context.Context, in app.RedeemInput) (app.RedeemResult, error)
	ConfirmAttendance(ctx context.Context, ticketID string) error
}

// HandleTickets routes /tickets/{id}/redeem and /tickets/{id}/confirm.
// Redemption errors are returned as precise, user-facing messages: door
// staff act on them immediately.
func HandleTickets(svc Redeemer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		ticketID, action, ok := parseTicketActionPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch action {
		case "redeem":
			handleRedeem(w, r, svc, ticketID)
		case "confirm":
			handleConfirm(w, r, svc, ticketID)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleRedeem(w http.ResponseWriter, r *http.Request, svc Redeemer, ticketID string) {
	var req redeemRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	res, err := svc.Redeem(r.Context(), app.RedeemInput{
		TicketID: ticketID,
		Units:    req.Units,
	})
	if err != nil {
		var exceeds *domain.ExceedsRemainingError
		switch {
		case errors.Is(err, domain.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
		case errors.Is(err, domain.ErrInvalidID):
			writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		case errors.Is(err, domain.ErrTicketNotFound):
			writeError(w, http.StatusNotFound, codeTicketNotFound, err.Error())
		case errors.Is(err, domain.ErrEventEnded):
			writeError(w, http.StatusConflict, codeEventEnded, err.Error())
		case errors.Is(err, domain.ErrTicketInvalidated):
			writeError(w, http.StatusConflict, codeTicketInvalidated, err.Error())
		case errors.Is(err, domain.ErrFullyRedeemed):
			writeError(w, http.StatusConflict, codeFullyRedeemed, err.Error())
		case errors.As(err, &exceeds):
			writeError(w, http.StatusConflict, codeExceedsRemaining, exceeds.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, redeemResponse{
		TicketID:      res.TicketID,
		Admitted:      res.Admitted,
		RedeemedCount: res.RedeemedCount,
		Remaining:     res.Remaining,
		Status:        string(res.Status),
		HolderName:    res.HolderName,
		TierName:      res.TierName,
		Note:          res.Note,
	})
}

func handleConfirm(w http.ResponseWriter, r *http.Request, svc Redeemer, ticketID string) {
	err := svc.ConfirmAttendance(r.Context(), ticketID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidID):
			writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		case errors.Is(err, domain.ErrTicketNotFound):
			writeError(w, http.StatusNotFound, codeTicketNotFound, err.Error())
		case errors.Is(err, domain.ErrTicketInvalidated):
			writeError(w, http.StatusConflict, codeTicketInvalidated, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseTicketActionPath(path string) (string, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", "", false
	}
	if parts[0] != "tickets" || parts[1] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

type redeemRequest struct {
	Units int `json:"units"`
}

type redeemResponse struct {
	TicketID      string `json:"ticket_id"`
	Admitted      int    `json:"admitted"`
	RedeemedCount int    `json:"redeemed_count"`
	Remaining     int    `json:"remaining"`
	Status        string `json:"status"`
	HolderName    string `json:"holder_name"`
	TierName      string `json:"tier_name"`
	Note          string `json:"note,omitempty"`
}
