package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeInvalidID             = "invalid_id"
	codeInvalidQuantity       = "invalid_quantity"
	codeInvalidPurchaseKind   = "invalid_purchase_kind"
	codeInvalidStartsAt       = "invalid_starts_at"
	codeInvalidEndsAt         = "invalid_ends_at"
	codeEventNameRequired     = "event_name_required"
	codeTierNameRequired      = "tier_name_required"
	codeInvalidCapacity       = "invalid_capacity"
	codeInvalidPrice          = "invalid_price"
	codeEmailRequired         = "email_required"
	codeEmailAlreadyExists    = "email_already_exists"
	codeEventNotFound         = "event_not_found"
	codeTierNotFound          = "tier_not_found"
	codeTierAlreadyExists     = "tier_already_exists"
	codeUserNotFound          = "user_not_found"
	codeTicketNotFound        = "ticket_not_found"
	codeInsufficientCapacity  = "insufficient_capacity"
	codePartialNotEnabled     = "partial_not_enabled"
	codePaymentIDRequired     = "payment_id_required"
	codeMalformedIntentRef    = "malformed_intent_ref"
	codeEventEnded            = "event_ended"
	codeFullyRedeemed         = "fully_redeemed"
	codeExceedsRemaining      = "exceeds_remaining"
	codeTicketInvalidated     = "ticket_invalidated"
	codeTicketNotCancellable  = "ticket_not_cancellable"
	codeForbidden             = "forbidden"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
