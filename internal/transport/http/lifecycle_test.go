package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/voyatra/travel-booking/internal/app"
	"github.com/voyatra/travel-booking/internal/domain"
)

func TestHandleBookingSubtree(t *testing.T) {
	t.Parallel()

	confirmed := domain.Booking{
		ID:            "booking-123",
		BookingCode:   "BK-ABCDEF1234",
		ServiceType:   domain.ServiceHotel,
		Status:        domain.BookingConfirmed,
		PaymentStatus: domain.PaymentPaid,
		FinalPrice:    decimal.RequireFromString("240"),
	}

	t.Run("confirm requires transaction id", func(t *testing.T) {
		t.Parallel()
		svc := &stubLifecycleService{booking: confirmed}
		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/confirm", bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()

		HandleBookingSubtree(&stubBookingService{}, svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("confirm succeeds", func(t *testing.T) {
		t.Parallel()
		svc := &stubLifecycleService{booking: confirmed}
		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/confirm",
			bytes.NewBufferString(`{"transaction_id":"txn-1"}`))
		rec := httptest.NewRecorder()

		HandleBookingSubtree(&stubBookingService{}, svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if svc.gotTxnID != "txn-1" {
			t.Fatalf("expected txn-1, got %q", svc.gotTxnID)
		}
		if !strings.Contains(rec.Body.String(), `"payment_status":"paid"`) {
			t.Fatalf("expected paid status in body, got %q", rec.Body.String())
		}
	})

	t.Run("confirm conflicts on wrong state", func(t *testing.T) {
		t.Parallel()
		svc := &stubLifecycleService{err: domain.ErrInvalidBookingState}
		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/confirm",
			bytes.NewBufferString(`{"transaction_id":"txn-1"}`))
		rec := httptest.NewRecorder()

		HandleBookingSubtree(&stubBookingService{}, svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("complete succeeds", func(t *testing.T) {
		t.Parallel()
		completed := confirmed
		completed.Status = domain.BookingCompleted
		svc := &stubLifecycleService{booking: completed}
		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/complete", nil)
		rec := httptest.NewRecorder()

		HandleBookingSubtree(&stubBookingService{}, svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"status":"completed"`) {
			t.Fatalf("expected completed status, got %q", rec.Body.String())
		}
	})

	t.Run("cancel reports refund and gateway failure", func(t *testing.T) {
		t.Parallel()
		cancelled := confirmed
		cancelled.Status = domain.BookingCancelled
		cancelled.PaymentStatus = domain.PaymentRefunded
		cancelled.RefundAmount = decimal.RequireFromString("180")
		svc := &stubLifecycleService{cancellation: app.CancellationResult{
			Booking:       cancelled,
			RefundAmount:  cancelled.RefundAmount,
			GatewayFailed: true,
		}}
		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/cancel", nil)
		rec := httptest.NewRecorder()

		HandleBookingSubtree(&stubBookingService{}, svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{`"refund_amount":"180.00"`, `"status":"cancelled"`, `"gateway_refund_failed":true`} {
			if !strings.Contains(body, want) {
				t.Fatalf("expected response to contain %q, got %q", want, body)
			}
		}
	})

	t.Run("cancel conflicts when already cancelled", func(t *testing.T) {
		t.Parallel()
		svc := &stubLifecycleService{err: domain.ErrInvalidBookingState}
		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/cancel", nil)
		rec := httptest.NewRecorder()

		HandleBookingSubtree(&stubBookingService{}, svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("rebook returns old and new bookings", func(t *testing.T) {
		t.Parallel()
		old := confirmed
		old.Status = domain.BookingRebooked
		svc := &stubLifecycleService{rebook: app.RebookResult{
			Old: old,
			New: app.BookingResult{Booking: domain.Booking{
				ID:           "booking-456",
				BookingCode:  "BK-NEWCODE99",
				ServiceType:  domain.ServiceHotel,
				Status:       domain.BookingPending,
				RebookedFrom: old.ID,
			}},
		}}
		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/rebook", nil)
		rec := httptest.NewRecorder()

		HandleBookingSubtree(&stubBookingService{}, svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{`"status":"rebooked"`, `"id":"booking-456"`, `"status":"pending"`} {
			if !strings.Contains(body, want) {
				t.Fatalf("expected response to contain %q, got %q", want, body)
			}
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/archive", nil)
		rec := httptest.NewRecorder()

		HandleBookingSubtree(&stubBookingService{}, &stubLifecycleService{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("actions require POST", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/bookings/booking-123/cancel", nil)
		rec := httptest.NewRecorder()

		HandleBookingSubtree(&stubBookingService{}, &stubLifecycleService{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("plain id routes to get booking", func(t *testing.T) {
		t.Parallel()
		bookings := &stubBookingService{result: app.BookingResult{Booking: confirmed}}
		req := httptest.NewRequest(http.MethodGet, "/bookings/booking-123", nil)
		rec := httptest.NewRecorder()

		HandleBookingSubtree(bookings, &stubLifecycleService{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if bookings.gotID != "booking-123" {
			t.Fatalf("expected lookup of booking-123, got %q", bookings.gotID)
		}
	})
}

type stubLifecycleService struct {
	booking      domain.Booking
	cancellation app.CancellationResult
	rebook       app.RebookResult
	err          error
	gotTxnID     string
}

func (s *stubLifecycleService) Confirm(_ context.Context, _, txnID string) (domain.Booking, error) {
	s.gotTxnID = txnID
	return s.booking, s.err
}

func (s *stubLifecycleService) Complete(_ context.Context, _ string) (domain.Booking, error) {
	return s.booking, s.err
}

func (s *stubLifecycleService) Cancel(_ context.Context, _ string) (app.CancellationResult, error) {
	return s.cancellation, s.err
}

func (s *stubLifecycleService) Rebook(_ context.Context, _ string) (app.RebookResult, error) {
	return s.rebook, s.err
}
