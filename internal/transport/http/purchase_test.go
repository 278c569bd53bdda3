package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leaatimberini/sucht-backend-sub000/internal/app"
	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

func TestHandleCreatePurchase(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issued := domain.Ticket{
		ID:        "ticket-123",
		UserID:    "user-1",
		TierID:    "tier-1",
		Quantity:  2,
		Status:    domain.TicketStatusValid,
		CreatedAt: now,
	}

	tests := []struct {
		name           string
		body           string
		result         app.IntentResult
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "immediate issue",
			body:           `{"user_id":"user-1","tier_id":"tier-1","quantity":2}`,
			result:         app.IntentResult{Ticket: &issued},
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"id":"ticket-123"`,
		},
		{
			name:           "pending payment",
			body:           `{"user_id":"user-1","tier_id":"tier-1","quantity":2}`,
			result:         app.IntentResult{PaymentID: "pay-1", RedirectURL: "https://pay.example/1"},
			expectedStatus: http.StatusAccepted,
			expectedSubstr: `"payment_id":"pay-1"`,
		},
		{
			name:           "invalid json",
			body:           `{"user_id":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown field",
			body:           `{"user_id":"u","tier_id":"t","quantity":1,"zone":"vip"}`,
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
			name:           "invalid purchase kind",
			body:           `{"user_id":"u","tier_id":"t","quantity":1,"payment_type":"layaway"}`,
			serviceErr:     domain.ErrInvalidPurchaseKind,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "partial not enabled",
			body:           `{"user_id":"u","tier_id":"t","quantity":1,"payment_type":"partial"}`,
			serviceErr:     domain.ErrPartialNotEnabled,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "user not found",
			body:           `{"user_id":"u","tier_id":"t","quantity":1}`,
			serviceErr:     domain.ErrUserNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "tier not found",
			body:           `{"user_id":"u","tier_id":"t","quantity":1}`,
			serviceErr:     domain.ErrTierNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "sold out",
			body:           `{"user_id":"u","tier_id":"t","quantity":1}`,
			serviceErr:     domain.ErrInsufficientCapacity,
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"code":"insufficient_capacity"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := HandleCreatePurchase(&stubIntentCreator{result: tc.result, err: tc.serviceErr})

			req := httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewBufferString(tc.body))
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
		handler := HandleCreatePurchase(&stubIntentCreator{})
		req := httptest.NewRequest(http.MethodGet, "/purchases", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("forwards promoter and payment type", func(t *testing.T) {
		stub := &stubIntentCreator{result: app.IntentResult{Ticket: &issued}}
		handler := HandleCreatePurchase(stub)

		body := `{"user_id":"user-1","tier_id":"tier-1","quantity":1,"payment_type":"partial","promoter_id":"promo-1"}`
		req := httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if stub.lastInput.Kind != app.PurchasePartial {
			t.Fatalf("expected partial kind, got %s", stub.lastInput.Kind)
		}
		if stub.lastInput.PromoterID == nil || *stub.lastInput.PromoterID != "promo-1" {
			t.Fatalf("expected promoter forwarded")
		}
	})
}

type stubIntentCreator struct {
	result    app.IntentResult
	err       error
	lastInput app.CreateIntentInput
}

func (s *stubIntentCreator) CreateIntent(_ context.Context, in app.CreateIntentInput) (app.IntentResult, error) {
	s.lastInput = in
	if s.err != nil {
		return app.IntentResult{}, s.err
	}
	return s.result, nil
}
