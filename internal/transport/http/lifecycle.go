package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/voyatra/travel-booking/internal/app"
	"github.com/voyatra/travel-booking/internal/domain"
)

// LifecycleService is the minimal interface for booking status transitions.
type LifecycleService interface {
	Confirm(ctx context.Context, bookingID, txnID string) (domain.Booking, error)
	Complete(ctx context.Context, bookingID string) (domain.Booking, error)
	Cancel(ctx context.Context, bookingID string) (app.CancellationResult, error)
	Rebook(ctx context.Context, bookingID string) (app.RebookResult, error)
}

// HandleBookingSubtree routes GET /bookings/{id} and
// POST /bookings/{id}/{confirm|complete|cancel|rebook}.
func HandleBookingSubtree(bookings BookingCreator, lifecycle LifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, action, ok := parseBookingActionPath(r.URL.Path); ok {
			handleBookingAction(w, r, lifecycle, id, action)
			return
		}
		if _, ok := parseBookingPath(r.URL.Path); ok {
			HandleGetBooking(bookings)(w, r)
			return
		}
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	}
}

func handleBookingAction(w http.ResponseWriter, r *http.Request, svc LifecycleService, id, action string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	switch action {
	case "confirm":
		var req confirmRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.TransactionID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "transaction_id is required")
			return
		}
		booking, err := svc.Confirm(r.Context(), id, req.TransactionID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeBooking(w, booking)

	case "complete":
		booking, err := svc.Complete(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeBooking(w, booking)

	case "cancel":
		result, err := svc.Cancel(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp := cancellationResponse{
			bookingResponse: toBookingResponse(app.BookingResult{Booking: result.Booking}),
			GatewayFailed:   result.GatewayFailed,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)

	case "rebook":
		result, err := svc.Rebook(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp := rebookResponse{
			Old: toBookingResponse(app.BookingResult{Booking: result.Old}),
			New: toBookingResponse(result.New),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)

	default:
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	}
}

func writeBooking(w http.ResponseWriter, b domain.Booking) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toBookingResponse(app.BookingResult{Booking: b}))
}

type confirmRequest struct {
	TransactionID string `json:"transaction_id"`
}

type cancellationResponse struct {
	bookingResponse
	GatewayFailed bool `json:"gateway_refund_failed,omitempty"`
}

type rebookResponse struct {
	Old bookingResponse `json:"old"`
	New bookingResponse `json:"new"`
}
