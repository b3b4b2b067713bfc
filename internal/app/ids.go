package app

import (
	"strings"

	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

// newBookingCode derives a short human-facing code from a fresh UUID.
// Codes are unique by construction modulo the (ignored) truncation risk;
// the bookings table carries a unique index as the backstop.
func newBookingCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(raw[:10])
}
