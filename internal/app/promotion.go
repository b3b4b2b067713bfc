package app

import (
	"time"

	"github.com/voyatra/travel-booking/internal/domain"
)

// ResolveBestPromotion picks the single best promotion for an item from its
// links. Only links whose parent promotion is active at now are considered.
// Ranking is deterministic: highest effective percent wins; equal percents
// fall back to highest effective amount; remaining ties go to the lowest
// promotion ID. Amount-only promotions have percent zero and therefore rank
// below any positive-percent promotion. Returns nil when nothing applies.
func ResolveBestPromotion(links []domain.PromotionLink, now time.Time) *domain.PromotionDecision {
	var best *domain.PromotionLink
	for i := range links {
		link := &links[i]
		if !link.Promotion.ActiveAt(now) {
			continue
		}
		if best == nil || betterLink(*link, *best) {
			best = link
		}
	}
	if best == nil {
		return nil
	}
	return &domain.PromotionDecision{
		PromotionID:     best.PromotionID,
		Title:           best.Promotion.Title,
		DiscountPercent: best.EffectivePercent(),
		DiscountAmount:  best.EffectiveAmount(),
		StartsAt:        best.Promotion.StartsAt,
		EndsAt:          best.Promotion.EndsAt,
	}
}

func betterLink(a, b domain.PromotionLink) bool {
	if c := a.EffectivePercent().Cmp(b.EffectivePercent()); c != 0 {
		return c > 0
	}
	if c := a.EffectiveAmount().Cmp(b.EffectiveAmount()); c != 0 {
		return c > 0
	}
	return a.PromotionID < b.PromotionID
}
