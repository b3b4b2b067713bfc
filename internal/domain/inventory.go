package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is any bookable capacity-bearing entity: a room type, a seat
// class on a flight, a car, an activity date. AvailableCapacity is only ever
// mutated through the ledger's atomic conditional decrement/increment, so
// 0 <= available <= total holds under concurrent writers.
type InventoryItem struct {
	ID          string
	ServiceType ServiceType
	Name        string
	UnitPrice   decimal.Decimal
	// UnitCapacity is the occupant ceiling per booked unit: guests per room,
	// passengers per car. Zero means no per-unit limit.
	UnitCapacity      int
	TotalCapacity     int
	AvailableCapacity int
	// StartsAt is the item's own start time where it has one (flight
	// departure, activity launch date). Nil for rooms and cars, whose start
	// comes from the booking request.
	StartsAt  *time.Time
	CreatedAt time.Time
}
