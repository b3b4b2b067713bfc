package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RefundPolicyType string

const (
	RefundPolicyFull    RefundPolicyType = "full_refund"
	RefundPolicyPartial RefundPolicyType = "partial_refund"
	RefundPolicyNone    RefundPolicyType = "no_refund"
)

func (t RefundPolicyType) Valid() bool {
	switch t {
	case RefundPolicyFull, RefundPolicyPartial, RefundPolicyNone:
		return true
	}
	return false
}

// RefundPolicy maps a service type and a lead-time threshold to a refund
// rule. Policies are static reference data; the engine only reads them,
// ordered by HoursBeforeStart descending, first active match wins.
type RefundPolicy struct {
	ID               string
	ServiceType      ServiceType
	PolicyType       RefundPolicyType
	RefundPercentage decimal.NullDecimal
	RefundAmount     decimal.NullDecimal
	HoursBeforeStart *int
	IsActive         bool
	CreatedAt        time.Time
}
