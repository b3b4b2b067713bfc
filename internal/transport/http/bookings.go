package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/voyatra/travel-booking/internal/app"
	"github.com/voyatra/travel-booking/internal/domain"
)

// BookingCreator is the minimal interface needed for the booking endpoints.
type BookingCreator interface {
	CreateBooking(ctx context.Context, in app.CreateBookingInput) (app.BookingResult, error)
	GetBooking(ctx context.Context, id string) (app.BookingResult, error)
}

// HandleBookings serves POST /bookings.
func HandleBookings(svc BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in, err := req.toInput()
		if err != nil {
			writeDomainError(w, err)
			return
		}

		result, err := svc.CreateBooking(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toBookingResponse(result))
	}
}

// HandleGetBooking serves GET /bookings/{id}.
func HandleGetBooking(svc BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		id, ok := parseBookingPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		result, err := svc.GetBooking(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toBookingResponse(result))
	}
}

type createBookingRequest struct {
	ServiceType string               `json:"service_type"`
	Details     []bookingDetailInput `json:"details"`
}

type bookingDetailInput struct {
	ItemID    string `json:"item_id"`
	Quantity  int    `json:"quantity"`
	Occupants int    `json:"occupants,omitempty"`
	StartsAt  string `json:"starts_at,omitempty"`
	EndsAt    string `json:"ends_at,omitempty"`
}

func (r createBookingRequest) toInput() (app.CreateBookingInput, error) {
	in := app.CreateBookingInput{
		ServiceType: domain.ServiceType(r.ServiceType),
	}
	if !in.ServiceType.Valid() {
		return app.CreateBookingInput{}, domain.ErrInvalidServiceType
	}
	for _, d := range r.Details {
		if d.ItemID == "" {
			return app.CreateBookingInput{}, domain.ErrInvalidID
		}
		di := app.DetailInput{
			ItemID:    d.ItemID,
			Quantity:  d.Quantity,
			Occupants: d.Occupants,
		}
		if d.StartsAt != "" {
			t, err := time.Parse(time.RFC3339, d.StartsAt)
			if err != nil {
				return app.CreateBookingInput{}, domain.ErrInvalidTimeWindow
			}
			di.StartsAt = &t
		}
		if d.EndsAt != "" {
			t, err := time.Parse(time.RFC3339, d.EndsAt)
			if err != nil {
				return app.CreateBookingInput{}, domain.ErrInvalidTimeWindow
			}
			di.EndsAt = &t
		}
		in.Details = append(in.Details, di)
	}
	return in, nil
}

// Field names mirror the legacy API payloads so existing frontends keep
// working: total_price, discount_amount, final_price, booking_code, status,
// payment_status.
type bookingResponse struct {
	ID             string           `json:"id"`
	BookingCode    string           `json:"booking_code"`
	ServiceType    string           `json:"service_type"`
	Status         string           `json:"status"`
	PaymentStatus  string           `json:"payment_status"`
	TotalPrice     string           `json:"total_price"`
	DiscountAmount string           `json:"discount_amount"`
	FinalPrice     string           `json:"final_price"`
	RefundAmount   string           `json:"refund_amount"`
	CreatedAt      time.Time        `json:"created_at"`
	Details        []detailResponse `json:"details,omitempty"`
}

type detailResponse struct {
	ID             string     `json:"id"`
	ItemID         string     `json:"item_id"`
	Quantity       int        `json:"quantity"`
	Occupants      int        `json:"occupants"`
	StartsAt       time.Time  `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
	TotalPrice     string     `json:"total_price"`
	DiscountAmount string     `json:"discount_amount"`
	FinalPrice     string     `json:"final_price"`
}

func toBookingResponse(result app.BookingResult) bookingResponse {
	resp := bookingResponse{
		ID:             result.Booking.ID,
		BookingCode:    result.Booking.BookingCode,
		ServiceType:    string(result.Booking.ServiceType),
		Status:         string(result.Booking.Status),
		PaymentStatus:  string(result.Booking.PaymentStatus),
		TotalPrice:     result.Booking.TotalPrice.StringFixed(2),
		DiscountAmount: result.Booking.DiscountAmount.StringFixed(2),
		FinalPrice:     result.Booking.FinalPrice.StringFixed(2),
		RefundAmount:   result.Booking.RefundAmount.StringFixed(2),
		CreatedAt:      result.Booking.CreatedAt,
	}
	for _, d := range result.Details {
		resp.Details = append(resp.Details, detailResponse{
			ID:             d.ID,
			ItemID:         d.ItemID,
			Quantity:       d.Quantity,
			Occupants:      d.Occupants,
			StartsAt:       d.StartsAt,
			EndsAt:         d.EndsAt,
			TotalPrice:     d.TotalPrice.StringFixed(2),
			DiscountAmount: d.DiscountAmount.StringFixed(2),
			FinalPrice:     d.FinalPrice.StringFixed(2),
		})
	}
	return resp
}

// parseBookingPath matches /bookings/{id}.
func parseBookingPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] != "bookings" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// parseBookingActionPath matches /bookings/{id}/{action}.
func parseBookingActionPath(path string) (id, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "bookings" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
