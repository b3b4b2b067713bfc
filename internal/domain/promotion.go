package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Promotion is a discount campaign for one service type. Percent and amount
// are both optional; when both are set the amount acts as a cap on the
// percent-derived discount.
type Promotion struct {
	ID              string
	Title           string
	ServiceType     ServiceType
	DiscountPercent decimal.NullDecimal
	DiscountAmount  decimal.NullDecimal
	StartsAt        time.Time
	EndsAt          time.Time
	IsActive        bool
	CreatedAt       time.Time
}

// ActiveAt reports whether the promotion applies at the given instant.
func (p Promotion) ActiveAt(now time.Time) bool {
	return p.IsActive && !now.Before(p.StartsAt) && !now.After(p.EndsAt)
}

// PromotionLink attaches a promotion to one inventory item. Link-level
// discount values, when present, take precedence over the parent promotion's.
type PromotionLink struct {
	ID              string
	PromotionID     string
	ItemID          string
	DiscountPercent decimal.NullDecimal
	DiscountAmount  decimal.NullDecimal
	Promotion       Promotion
}

// EffectivePercent resolves the percent to apply: link override first, then
// the parent promotion, zero when neither is set.
func (l PromotionLink) EffectivePercent() decimal.Decimal {
	if l.DiscountPercent.Valid {
		return l.DiscountPercent.Decimal
	}
	if l.Promotion.DiscountPercent.Valid {
		return l.Promotion.DiscountPercent.Decimal
	}
	return decimal.Zero
}

// EffectiveAmount resolves the fixed amount the same way.
func (l PromotionLink) EffectiveAmount() decimal.Decimal {
	if l.DiscountAmount.Valid {
		return l.DiscountAmount.Decimal
	}
	if l.Promotion.DiscountAmount.Valid {
		return l.Promotion.DiscountAmount.Decimal
	}
	return decimal.Zero
}

// PromotionDecision is the outcome of resolving the best promotion for an
// item: the chosen promotion and its resolved discount values. Absence of a
// decision (nil) means no discount, which is a normal result, not an error.
type PromotionDecision struct {
	PromotionID     string
	Title           string
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	StartsAt        time.Time
	EndsAt          time.Time
}
