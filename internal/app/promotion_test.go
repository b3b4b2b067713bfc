package app

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voyatra/travel-booking/internal/domain"
)

func TestResolveBestPromotion(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	activePromo := func(id string, percent, amount string) domain.Promotion {
		p := domain.Promotion{
			ID:       id,
			Title:    "promo " + id,
			StartsAt: now.Add(-24 * time.Hour),
			EndsAt:   now.Add(24 * time.Hour),
			IsActive: true,
		}
		if percent != "" {
			p.DiscountPercent = decimal.NullDecimal{Decimal: money(t, percent), Valid: true}
		}
		if amount != "" {
			p.DiscountAmount = decimal.NullDecimal{Decimal: money(t, amount), Valid: true}
		}
		return p
	}

	link := func(promo domain.Promotion) domain.PromotionLink {
		return domain.PromotionLink{
			ID:          "link-" + promo.ID,
			PromotionID: promo.ID,
			ItemID:      "item-1",
			Promotion:   promo,
		}
	}

	t.Run("nil when no links", func(t *testing.T) {
		if got := ResolveBestPromotion(nil, now); got != nil {
			t.Fatalf("expected nil decision, got %+v", got)
		}
	})

	t.Run("highest percent wins", func(t *testing.T) {
		links := []domain.PromotionLink{
			link(activePromo("promo-a", "10", "")),
			link(activePromo("promo-b", "25", "")),
			link(activePromo("promo-c", "15", "")),
		}

		got := ResolveBestPromotion(links, now)
		if got == nil {
			t.Fatalf("expected a decision")
		}
		if got.PromotionID != "promo-b" {
			t.Fatalf("expected promo-b, got %s", got.PromotionID)
		}
		assertMoney(t, "percent", got.DiscountPercent, money(t, "25"))
	})

	t.Run("equal percent falls back to highest amount", func(t *testing.T) {
		links := []domain.PromotionLink{
			link(activePromo("promo-a", "20", "50")),
			link(activePromo("promo-b", "20", "80")),
		}

		got := ResolveBestPromotion(links, now)
		if got == nil || got.PromotionID != "promo-b" {
			t.Fatalf("expected promo-b, got %+v", got)
		}
	})

	t.Run("full tie goes to lowest promotion id", func(t *testing.T) {
		links := []domain.PromotionLink{
			link(activePromo("promo-b", "20", "50")),
			link(activePromo("promo-a", "20", "50")),
		}

		got := ResolveBestPromotion(links, now)
		if got == nil || got.PromotionID != "promo-a" {
			t.Fatalf("expected promo-a, got %+v", got)
		}
	})

	t.Run("percent beats larger amount-only discount", func(t *testing.T) {
		links := []domain.PromotionLink{
			link(activePromo("promo-a", "", "500")),
			link(activePromo("promo-b", "5", "")),
		}

		got := ResolveBestPromotion(links, now)
		if got == nil || got.PromotionID != "promo-b" {
			t.Fatalf("expected promo-b, got %+v", got)
		}
	})

	t.Run("link override takes precedence over parent", func(t *testing.T) {
		l := link(activePromo("promo-a", "10", ""))
		l.DiscountPercent = decimal.NullDecimal{Decimal: money(t, "40"), Valid: true}
		other := link(activePromo("promo-b", "25", ""))

		got := ResolveBestPromotion([]domain.PromotionLink{l, other}, now)
		if got == nil || got.PromotionID != "promo-a" {
			t.Fatalf("expected promo-a via link override, got %+v", got)
		}
		assertMoney(t, "percent", got.DiscountPercent, money(t, "40"))
	})

	t.Run("inactive and out-of-window promotions are skipped", func(t *testing.T) {
		disabled := activePromo("promo-a", "90", "")
		disabled.IsActive = false
		expired := activePromo("promo-b", "80", "")
		expired.EndsAt = now.Add(-time.Hour)
		upcoming := activePromo("promo-c", "70", "")
		upcoming.StartsAt = now.Add(time.Hour)
		current := activePromo("promo-d", "10", "")

		got := ResolveBestPromotion([]domain.PromotionLink{
			link(disabled), link(expired), link(upcoming), link(current),
		}, now)
		if got == nil || got.PromotionID != "promo-d" {
			t.Fatalf("expected promo-d, got %+v", got)
		}
	})

	t.Run("nil when nothing is active", func(t *testing.T) {
		disabled := activePromo("promo-a", "50", "")
		disabled.IsActive = false

		if got := ResolveBestPromotion([]domain.PromotionLink{link(disabled)}, now); got != nil {
			t.Fatalf("expected nil decision, got %+v", got)
		}
	})

	t.Run("order of links does not change the winner", func(t *testing.T) {
		a := link(activePromo("promo-a", "10", ""))
		b := link(activePromo("promo-b", "30", ""))
		c := link(activePromo("promo-c", "20", ""))

		forward := ResolveBestPromotion([]domain.PromotionLink{a, b, c}, now)
		reversed := ResolveBestPromotion([]domain.PromotionLink{c, b, a}, now)
		if forward == nil || reversed == nil {
			t.Fatalf("expected decisions for both orders")
		}
		if forward.PromotionID != reversed.PromotionID {
			t.Fatalf("resolution depends on link order: %s vs %s", forward.PromotionID, reversed.PromotionID)
		}
	})
}
