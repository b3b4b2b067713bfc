package http

import (
	"encoding/json"
	"net/http"

	"github.com/voyatra/travel-booking/internal/domain"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeInvalidID             = "invalid_id"
	codeInvalidServiceType    = "invalid_service_type"
	codeInvalidQuantity       = "invalid_quantity"
	codeInvalidOccupancy      = "invalid_occupancy"
	codeInvalidTimeWindow     = "invalid_time_window"
	codeInsufficientInventory = "insufficient_inventory"
	codeInvalidBookingState   = "invalid_booking_state"
	codeServiceTypeMismatch   = "service_type_mismatch"
	codeBookingNotFound       = "booking_not_found"
	codeItemNotFound          = "item_not_found"
	codePromotionNotFound     = "promotion_not_found"
	codeNameRequired          = "name_required"
	codeInvalidCapacity       = "invalid_capacity"
	codeInvalidPrice          = "invalid_price"
	codeInvalidDiscount       = "invalid_discount"
	codeInvalidPolicy         = "invalid_refund_policy"
	codeNoDetails             = "no_details"
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

// writeDomainError maps the shared error taxonomy to HTTP. Validation
// failures are 400s, missing rows 404s, state and capacity conflicts 409s.
func writeDomainError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrInvalidQuantity:
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case domain.ErrInvalidOccupancy:
		writeError(w, http.StatusBadRequest, codeInvalidOccupancy, err.Error())
	case domain.ErrInvalidTimeWindow:
		writeError(w, http.StatusBadRequest, codeInvalidTimeWindow, err.Error())
	case domain.ErrInvalidServiceType:
		writeError(w, http.StatusBadRequest, codeInvalidServiceType, err.Error())
	case domain.ErrServiceTypeMismatch:
		writeError(w, http.StatusBadRequest, codeServiceTypeMismatch, err.Error())
	case domain.ErrNoDetails:
		writeError(w, http.StatusBadRequest, codeNoDetails, err.Error())
	case domain.ErrNameRequired:
		writeError(w, http.StatusBadRequest, codeNameRequired, err.Error())
	case domain.ErrInvalidCapacity:
		writeError(w, http.StatusBadRequest, codeInvalidCapacity, err.Error())
	case domain.ErrInvalidPrice:
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case domain.ErrInvalidDiscount:
		writeError(w, http.StatusBadRequest, codeInvalidDiscount, err.Error())
	case domain.ErrInvalidPolicy:
		writeError(w, http.StatusBadRequest, codeInvalidPolicy, err.Error())
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case domain.ErrBookingNotFound:
		writeError(w, http.StatusNotFound, codeBookingNotFound, err.Error())
	case domain.ErrItemNotFound:
		writeError(w, http.StatusNotFound, codeItemNotFound, err.Error())
	case domain.ErrPromotionNotFound:
		writeError(w, http.StatusNotFound, codePromotionNotFound, err.Error())
	case domain.ErrInsufficientInventory:
		writeError(w, http.StatusConflict, codeInsufficientInventory, err.Error())
	case domain.ErrInvalidBookingState:
		writeError(w, http.StatusConflict, codeInvalidBookingState, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
