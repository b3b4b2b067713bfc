package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voyatra/travel-booking/internal/app"
	"github.com/voyatra/travel-booking/internal/domain"
)

func TestHandleBookings(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	success := app.BookingResult{
		Booking: domain.Booking{
			ID:             "booking-123",
			BookingCode:    "BK-ABCDEF1234",
			ServiceType:    domain.ServiceHotel,
			Status:         domain.BookingPending,
			PaymentStatus:  domain.PaymentUnpaid,
			TotalPrice:     decimal.RequireFromString("300"),
			DiscountAmount: decimal.RequireFromString("60"),
			FinalPrice:     decimal.RequireFromString("240"),
			CreatedAt:      now,
		},
	}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"service_type":"hotel","details":[{"item_id":"room-1","quantity":1,"starts_at":"2025-06-10T14:00:00Z","ends_at":"2025-06-13T11:00:00Z"}]}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"final_price":"240.00"`,
		},
		{
			name:           "invalid json",
			body:           `{"service_type":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown service type",
			body:           `{"service_type":"cruise","details":[{"item_id":"x","quantity":1}]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad time format",
			body:           `{"service_type":"hotel","details":[{"item_id":"room-1","quantity":1,"starts_at":"tomorrow"}]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing item id",
			body:           `{"service_type":"hotel","details":[{"quantity":1}]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "no details",
			body:           `{"service_type":"hotel","details":[]}`,
			serviceErr:     domain.ErrNoDetails,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "item not found",
			body:           `{"service_type":"hotel","details":[{"item_id":"room-1","quantity":1}]}`,
			serviceErr:     domain.ErrItemNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "insufficient inventory",
			body:           `{"service_type":"hotel","details":[{"item_id":"room-1","quantity":1}]}`,
			serviceErr:     domain.ErrInsufficientInventory,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "internal error",
			body:           `{"service_type":"hotel","details":[{"item_id":"room-1","quantity":1}]}`,
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubBookingService{result: success, err: tt.serviceErr}
			req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandleBookings(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		rec := httptest.NewRecorder()

		HandleBookings(&stubBookingService{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}

func TestHandleGetBooking(t *testing.T) {
	t.Parallel()

	t.Run("returns booking with details", func(t *testing.T) {
		ends := time.Date(2025, 6, 13, 11, 0, 0, 0, time.UTC)
		svc := &stubBookingService{result: app.BookingResult{
			Booking: domain.Booking{
				ID:          "booking-123",
				BookingCode: "BK-ABCDEF1234",
				ServiceType: domain.ServiceHotel,
				Status:      domain.BookingConfirmed,
				FinalPrice:  decimal.RequireFromString("240"),
			},
			Details: []domain.BookingDetail{{
				ID:         "detail-1",
				ItemID:     "room-1",
				Quantity:   1,
				Occupants:  2,
				StartsAt:   ends.Add(-72 * time.Hour),
				EndsAt:     &ends,
				FinalPrice: decimal.RequireFromString("240"),
			}},
		}}

		req := httptest.NewRequest(http.MethodGet, "/bookings/booking-123", nil)
		rec := httptest.NewRecorder()
		HandleGetBooking(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{`"booking_code":"BK-ABCDEF1234"`, `"status":"confirmed"`, `"item_id":"room-1"`} {
			if !strings.Contains(body, want) {
				t.Fatalf("expected response to contain %q, got %q", want, body)
			}
		}
		if svc.gotID != "booking-123" {
			t.Fatalf("expected lookup of booking-123, got %q", svc.gotID)
		}
	})

	t.Run("unknown booking", func(t *testing.T) {
		svc := &stubBookingService{err: domain.ErrBookingNotFound}

		req := httptest.NewRequest(http.MethodGet, "/bookings/nope", nil)
		rec := httptest.NewRecorder()
		HandleGetBooking(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

type stubBookingService struct {
	result app.BookingResult
	err    error
	gotID  string
	gotIn  app.CreateBookingInput
}

func (s *stubBookingService) CreateBooking(_ context.Context, in app.CreateBookingInput) (app.BookingResult, error) {
	s.gotIn = in
	return s.result, s.err
}

func (s *stubBookingService) GetBooking(_ context.Context, id string) (app.BookingResult, error) {
	s.gotID = id
	return s.result, s.err
}
