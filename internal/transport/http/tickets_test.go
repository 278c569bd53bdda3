package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leaatimberini/sucht-backend-sub000/internal/app"
	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

func TestHandleTickets_Redeem(t *testing.T) {
	t.Parallel()

	success := app.RedeemResult{
		TicketID:      "ticket-123",
		Admitted:      2,
		RedeemedCount: 3,
		Remaining:     1,
		Status:        domain.TicketStatusPartiallyUsed,
		HolderName:    "Ana",
		TierName:      "General",
	}

	tests := []struct {
		name           string
		path           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "admits units",
			path:           "/tickets/ticket-123/redeem",
			body:           `{"units":2}`,
			expectedStatus: http.StatusOK,
			expectedSubstr: `"redeemed_count":3`,
		},
		{
			name:           "invalid json",
			path:           "/tickets/ticket-123/redeem",
			body:           `{"units":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero units",
			path:           "/tickets/ticket-123/redeem",
			body:           `{"units":0}`,
			serviceErr:     domain.ErrInvalidQuantity,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown ticket",
			path:           "/tickets/missing/redeem",
			body:           `{"units":1}`,
			serviceErr:     domain.ErrTicketNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "event ended",
			path:           "/tickets/ticket-123/redeem",
			body:           `{"units":1}`,
			serviceErr:     domain.ErrEventEnded,
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"code":"event_ended"`,
		},
		{
			name:           "fully redeemed",
			path:           "/tickets/ticket-123/redeem",
			body:           `{"units":1}`,
			serviceErr:     domain.ErrFullyRedeemed,
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"code":"fully_redeemed"`,
		},
		{
			name:           "exceeds remaining",
			path:           "/tickets/ticket-123/redeem",
			body:           `{"units":3}`,
			serviceErr:     &domain.ExceedsRemainingError{Remaining: 1},
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"code":"exceeds_remaining"`,
		},
		{
			name:           "invalidated",
			path:           "/tickets/ticket-123/redeem",
			body:           `{"units":1}`,
			serviceErr:     domain.ErrTicketInvalidated,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "unknown action",
			path:           "/tickets/ticket-123/upgrade",
			body:           `{}`,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bare ticket path",
			path:           "/tickets/ticket-123",
			body:           `{}`,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := HandleTickets(&stubRedeemer{result: success, err: tc.serviceErr})

			req := httptest.NewRequest(http.MethodPost, tc.path, bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d (%s)", tc.expectedStatus, rec.Code, rec.Body.String())
			}
			if tc.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tc.expectedSubstr) {
				t.Fatalf("expected body to contain %q, got %s", tc.expectedSubstr, rec.Body.String())
			}
		})
	}

	t.Run("method not allowed", func(t *testing.T) {
		handler := HandleTickets(&stubRedeemer{})
		req := httptest.NewRequest(http.MethodGet, "/tickets/ticket-123/redeem", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}

func TestHandleTickets_Confirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{"confirms", nil, http.StatusNoContent},
		{"unknown ticket", domain.ErrTicketNotFound, http.StatusNotFound},
		{"invalidated", domain.ErrTicketInvalidated, http.StatusConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := HandleTickets(&stubRedeemer{confirmErr: tc.serviceErr})

			req := httptest.NewRequest(http.MethodPost, "/tickets/ticket-123/confirm", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d (%s)", tc.expectedStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

type stubRedeemer struct {
	result     app.RedeemResult
	err        error
	confirmErr error
}

func (s *stubRedeemer) Redeem(_ context.Context, _ app.RedeemInput) (app.RedeemResult, error) {
	if s.err != nil {
		return app.RedeemResult{}, s.err
	}
	return s.result, nil
}

func (s *stubRedeemer) ConfirmAttendance(_ context.Context, _ string) error {
	return s.confirmErr
}
