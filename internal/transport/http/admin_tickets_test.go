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

func TestHandleAdminIssueTicket(t *testing.T) {
	t.Parallel()

	issued := domain.Ticket{
		ID:             "ticket-123",
		UserID:         "user-1",
		TierID:         "tier-1",
		Quantity:       2,
		Status:         domain.TicketStatusValid,
		CapacityExempt: true,
		Note:           "press invitation",
	}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "issues exempt ticket",
			body:           `{"user_id":"user-1","tier_id":"tier-1","quantity":2,"note":"press invitation"}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"id":"ticket-123"`,
		},
		{
			name:           "invalid json",
			body:           `{"user_id":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing ids",
			body:           `{"quantity":1}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid quantity",
			body:           `{"user_id":"u","tier_id":"t","quantity":0}`,
			serviceErr:     domain.ErrInvalidQuantity,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown user",
			body:           `{"user_id":"u","tier_id":"t","quantity":1}`,
			serviceErr:     domain.ErrUserNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unknown tier",
			body:           `{"user_id":"u","tier_id":"t","quantity":1}`,
			serviceErr:     domain.ErrTierNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := HandleAdminIssueTicket(&stubExemptIssuer{ticket: issued, err: tc.serviceErr})

			req := httptest.NewRequest(http.MethodPost, "/admin/tickets", bytes.NewBufferString(tc.body))
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
}

func TestHandleAdminCancelTicket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		path           string
		changed        bool
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "cancels ticket",
			path:           "/admin/tickets/ticket-123/cancel",
			changed:        true,
			expectedStatus: http.StatusOK,
			expectedSubstr: `"cancelled":true`,
		},
		{
			name:           "already cancelled is a no-op",
			path:           "/admin/tickets/ticket-123/cancel",
			changed:        false,
			expectedStatus: http.StatusOK,
			expectedSubstr: `"cancelled":false`,
		},
		{
			name:           "unknown ticket",
			path:           "/admin/tickets/missing/cancel",
			serviceErr:     domain.ErrTicketNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "used ticket cannot be cancelled",
			path:           "/admin/tickets/ticket-123/cancel",
			serviceErr:     domain.ErrTicketNotCancellable,
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"code":"ticket_not_cancellable"`,
		},
		{
			name:           "bad path",
			path:           "/admin/tickets/ticket-123/refund",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := HandleAdminCancelTicket(&stubCanceller{changed: tc.changed, err: tc.serviceErr})

			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
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
}

type stubExemptIssuer struct {
	ticket domain.Ticket
	err    error
}

func (s *stubExemptIssuer) IssueExempt(_ context.Context, _ app.IssueExemptInput) (domain.Ticket, error) {
	if s.err != nil {
		return domain.Ticket{}, s.err
	}
	return s.ticket, nil
}

type stubCanceller struct {
	changed bool
	err     error
}

func (s *stubCanceller) Invalidate(_ context.Context, _ string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.changed, nil
}
