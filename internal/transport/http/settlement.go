package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/leaatimberini/sucht-backend-sub000/internal/app"
	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

// SettlementHandler is the minimal interface needed for the processor callback.
type SettlementHandler interface {
	HandleSettlement(ctx context.Context, ev app.SettlementEvent) (app.SettleResult, error)
}

// HandleSettlementWebhook returns an HTTP handler for settlement events.
// Duplicate deliveries are expected and safe: the reconciler answers them
// with the already-settled ticket. Inconsistent events are logged and
// rejected; the processor's own retry redelivers them, which is harmless.
func HandleSettlementWebhook(svc SettlementHandler, log zerolog.Logger) http.HandlerFunc {
	log = log.With().Str("component", "settlement-webhook").Logger()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req settlementEventRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.HandleSettlement(r.Context(), app.SettlementEvent{
			PaymentID: req.PaymentID,
			Status:    req.Status,
			Reference: req.Reference,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrPaymentIDRequired):
				writeError(w, http.StatusBadRequest, codePaymentIDRequired, err.Error())
			case errors.Is(err, domain.ErrMalformedIntentRef):
				log.Error().Err(err).Str("payment_id", req.PaymentID).Msg("unparseable settlement reference")
				writeError(w, http.StatusBadRequest, codeMalformedIntentRef, err.Error())
			case errors.Is(err, domain.ErrUserNotFound):
				log.Error().Err(err).Str("payment_id", req.PaymentID).Msg("settlement references unknown buyer")
				writeError(w, http.StatusUnprocessableEntity, codeUserNotFound, err.Error())
			case errors.Is(err, domain.ErrTierNotFound):
				log.Error().Err(err).Str("payment_id", req.PaymentID).Msg("settlement references unknown tier")
				writeError(w, http.StatusUnprocessableEntity, codeTierNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		if res.Ignored {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		writeJSON(w, status, newTicketResponse(res.Ticket))
	}
}

type settlementEventRequest struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
}
