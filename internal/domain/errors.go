package domain

import "errors"

var (
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidBookingState   = errors.New("invalid booking state")
	ErrInvalidTimeWindow     = errors.New("invalid time window")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInvalidOccupancy      = errors.New("invalid occupancy")
	ErrServiceTypeMismatch   = errors.New("service type mismatch")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrItemNotFound          = errors.New("item not found")
	ErrPromotionNotFound     = errors.New("promotion not found")
	ErrInvalidID             = errors.New("invalid id")
	ErrInvalidServiceType    = errors.New("invalid service type")
	ErrNameRequired          = errors.New("name required")
	ErrInvalidCapacity       = errors.New("invalid capacity")
	ErrInvalidPrice          = errors.New("invalid price")
	ErrInvalidDiscount       = errors.New("invalid discount")
	ErrInvalidPolicy         = errors.New("invalid refund policy")
	ErrNoDetails             = errors.New("booking requires at least one detail")
)
