package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ServiceType string

const (
	ServiceHotel    ServiceType = "hotel"
	ServiceFlight   ServiceType = "flight"
	ServiceCar      ServiceType = "car"
	ServiceActivity ServiceType = "activity"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceHotel, ServiceFlight, ServiceCar, ServiceActivity:
		return true
	}
	return false
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingRebooked  BookingStatus = "rebooked"
)

type PaymentStatus string

const (
	PaymentUnpaid    PaymentStatus = "unpaid"
	PaymentPaid      PaymentStatus = "paid"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Booking is the aggregate root for one purchase across a single service type.
// Rollup money fields are always derived from the booking's details; they are
// recomputed in full, never written incrementally.
type Booking struct {
	ID             string
	BookingCode    string
	ServiceType    ServiceType
	Status         BookingStatus
	PaymentStatus  PaymentStatus
	PaymentTxnID   string
	TotalPrice     decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalPrice     decimal.Decimal
	RefundAmount   decimal.Decimal
	// RebookedFrom links a booking created by a rebook back to its source.
	RebookedFrom string
	CreatedAt    time.Time
}

// Cancellable reports whether the booking may enter the cancelled state.
// Non-standard states (rebooked) are cancellable only while unpaid.
func (b Booking) Cancellable() bool {
	switch b.Status {
	case BookingCancelled, BookingCompleted:
		return false
	case BookingPending, BookingConfirmed:
		return true
	}
	return b.PaymentStatus == PaymentUnpaid
}
