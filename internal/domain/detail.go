package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingDetail is one line item under a booking: a room stay, a block of
// flight seats, a car trip or an activity date. The four variants share one
// shape and are distinguished by ServiceType; validation is specialized per
// type at creation, everything downstream (pricing, rollup, refunds) is
// generic.
type BookingDetail struct {
	ID          string
	BookingID   string
	ItemID      string
	ServiceType ServiceType
	// Quantity counts booked units: rooms, seats, cars or ticket slots.
	Quantity int
	// Occupants counts people: guests for hotels, passengers for flights and
	// cars, adults plus children for activities.
	Occupants      int
	StartsAt       time.Time
	EndsAt         *time.Time
	TotalPrice     decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalPrice     decimal.Decimal
	CreatedAt      time.Time
}

// DurationUnits is the pricing multiplier for the time window: nights for
// hotel stays, 1 for everything priced per unit.
func (d BookingDetail) DurationUnits() int {
	if d.ServiceType != ServiceHotel || d.EndsAt == nil {
		return 1
	}
	nights := int(d.EndsAt.Sub(d.StartsAt).Hours() / 24)
	if nights < 1 {
		nights = 1
	}
	return nights
}
