package events

import "time"

// Exchange is the topic exchange all booking domain events are published to.
const Exchange = "booking.events"

// Routing keys per event type. Consumers (notification service, reporting)
// bind with patterns like "booking.*".
const (
	KeyBookingCreated   = "booking.created"
	KeyBookingCancelled = "booking.cancelled"
	KeyPaymentConfirmed = "payment.confirmed"
)

// Money fields are serialized as strings to keep 2-decimal precision intact
// across consumers.

type BookingCreated struct {
	BookingID      string    `json:"booking_id"`
	BookingCode    string    `json:"booking_code"`
	ServiceType    string    `json:"service_type"`
	TotalPrice     string    `json:"total_price"`
	DiscountAmount string    `json:"discount_amount"`
	FinalPrice     string    `json:"final_price"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type BookingCancelled struct {
	BookingID    string    `json:"booking_id"`
	BookingCode  string    `json:"booking_code"`
	ServiceType  string    `json:"service_type"`
	RefundAmount string    `json:"refund_amount"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type PaymentConfirmed struct {
	BookingID     string    `json:"booking_id"`
	BookingCode   string    `json:"booking_code"`
	TransactionID string    `json:"transaction_id"`
	Amount        string    `json:"amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}
