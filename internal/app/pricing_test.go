package app

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/voyatra/travel-booking/internal/domain"
)

func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func assertMoney(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s: expected %s, got %s", name, want.StringFixed(2), got.StringFixed(2))
	}
}

func TestCalculatePrice(t *testing.T) {
	t.Parallel()

	t.Run("hotel three nights with percent discount", func(t *testing.T) {
		promo := &domain.PromotionDecision{DiscountPercent: money(t, "20")}

		got := CalculatePrice(money(t, "100"), 1, 3, promo)

		assertMoney(t, "total", got.Total, money(t, "300"))
		assertMoney(t, "discount", got.Discount, money(t, "60"))
		assertMoney(t, "final", got.Final, money(t, "240"))
	})

	t.Run("flight two seats with fixed amount discount", func(t *testing.T) {
		promo := &domain.PromotionDecision{DiscountAmount: money(t, "100")}

		got := CalculatePrice(money(t, "500"), 2, 1, promo)

		assertMoney(t, "total", got.Total, money(t, "1000"))
		assertMoney(t, "discount", got.Discount, money(t, "100"))
		assertMoney(t, "final", got.Final, money(t, "900"))
	})

	t.Run("no promotion means zero discount", func(t *testing.T) {
		got := CalculatePrice(money(t, "250"), 2, 1, nil)

		assertMoney(t, "total", got.Total, money(t, "500"))
		assertMoney(t, "discount", got.Discount, decimal.Zero)
		assertMoney(t, "final", got.Final, money(t, "500"))
	})

	t.Run("amount caps percent discount", func(t *testing.T) {
		promo := &domain.PromotionDecision{
			DiscountPercent: money(t, "50"),
			DiscountAmount:  money(t, "30"),
		}

		got := CalculatePrice(money(t, "100"), 2, 1, promo)

		assertMoney(t, "total", got.Total, money(t, "200"))
		assertMoney(t, "discount", got.Discount, money(t, "30"))
		assertMoney(t, "final", got.Final, money(t, "170"))
	})

	t.Run("percent wins when below amount cap", func(t *testing.T) {
		promo := &domain.PromotionDecision{
			DiscountPercent: money(t, "10"),
			DiscountAmount:  money(t, "500"),
		}

		got := CalculatePrice(money(t, "100"), 2, 1, promo)

		assertMoney(t, "discount", got.Discount, money(t, "20"))
		assertMoney(t, "final", got.Final, money(t, "180"))
	})

	t.Run("amount discount clamped to total", func(t *testing.T) {
		promo := &domain.PromotionDecision{DiscountAmount: money(t, "900")}

		got := CalculatePrice(money(t, "100"), 3, 1, promo)

		assertMoney(t, "total", got.Total, money(t, "300"))
		assertMoney(t, "discount", got.Discount, money(t, "300"))
		assertMoney(t, "final", got.Final, decimal.Zero)
	})

	t.Run("rounds once at the end", func(t *testing.T) {
		// 33.335 * 3 = 100.005; a 10% discount on the unrounded total is
		// 10.0005, so discount rounds to 10.00 and final to 90.00.
		promo := &domain.PromotionDecision{DiscountPercent: money(t, "10")}

		got := CalculatePrice(money(t, "33.335"), 3, 1, promo)

		assertMoney(t, "total", got.Total, money(t, "100.01"))
		assertMoney(t, "discount", got.Discount, money(t, "10"))
		assertMoney(t, "final", got.Final, money(t, "90"))
	})

	t.Run("duration floor of one unit", func(t *testing.T) {
		got := CalculatePrice(money(t, "100"), 2, 0, nil)

		assertMoney(t, "total", got.Total, money(t, "200"))
	})
}
