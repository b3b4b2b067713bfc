package app

import (
	"github.com/shopspring/decimal"

	"github.com/voyatra/travel-booking/internal/domain"
)

// PriceBreakdown is the computed money triple for one booking detail.
// Final = Total - Discount, floored at zero.
type PriceBreakdown struct {
	Total    decimal.Decimal
	Discount decimal.Decimal
	Final    decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// CalculatePrice computes total/discount/final for one detail. Total is
// unit price x quantity x duration units (nights for hotels, 1 otherwise).
// A percent discount is capped by the promotion's amount when both are set;
// an amount-only discount never exceeds the total. All values are rounded
// to 2 decimals at the end only, so intermediate math carries full precision.
func CalculatePrice(unitPrice decimal.Decimal, quantity, durationUnits int, promo *domain.PromotionDecision) PriceBreakdown {
	if quantity < 0 {
		quantity = 0
	}
	if durationUnits < 1 {
		durationUnits = 1
	}

	total := unitPrice.
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(decimal.NewFromInt(int64(durationUnits)))

	discount := decimal.Zero
	if promo != nil {
		switch {
		case promo.DiscountPercent.IsPositive():
			discount = total.Mul(promo.DiscountPercent).Div(hundred)
			if promo.DiscountAmount.IsPositive() && promo.DiscountAmount.LessThan(discount) {
				discount = promo.DiscountAmount
			}
		case promo.DiscountAmount.IsPositive():
			discount = promo.DiscountAmount
		}
	}
	if discount.GreaterThan(total) {
		discount = total
	}

	final := total.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return PriceBreakdown{
		Total:    total.Round(2),
		Discount: discount.Round(2),
		Final:    final.Round(2),
	}
}
