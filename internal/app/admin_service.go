package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voyatra/travel-booking/internal/clock"
	"github.com/voyatra/travel-booking/internal/domain"
)

type AdminRepository interface {
	CreateItem(ctx context.Context, item domain.InventoryItem) error
	ListItems(ctx context.Context, st domain.ServiceType) ([]domain.InventoryItem, error)
	CreatePromotion(ctx context.Context, p domain.Promotion) error
	ListPromotions(ctx context.Context) ([]domain.Promotion, error)
	GetPromotion(ctx context.Context, id string) (domain.Promotion, error)
	CreatePromotionLink(ctx context.Context, link domain.PromotionLink) error
	ListLinksByPromotion(ctx context.Context, promotionID string) ([]domain.PromotionLink, error)
	CreateRefundPolicy(ctx context.Context, p domain.RefundPolicy) error
	ListRefundPolicies(ctx context.Context, st domain.ServiceType) ([]domain.RefundPolicy, error)
}

// AdminService manages the reference data the engine reads: inventory items,
// promotions and their links, refund policies.
type AdminService struct {
	repo  AdminRepository
	clock clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:  repo,
		clock: clk,
	}
}

type CreateItemInput struct {
	ServiceType   domain.ServiceType
	Name          string
	UnitPrice     decimal.Decimal
	UnitCapacity  int
	TotalCapacity int
	StartsAt      *time.Time
}

func (s *AdminService) CreateItem(ctx context.Context, in CreateItemInput) (domain.InventoryItem, error) {
	if !in.ServiceType.Valid() {
		return domain.InventoryItem{}, domain.ErrInvalidServiceType
	}
	if in.Name == "" {
		return domain.InventoryItem{}, domain.ErrNameRequired
	}
	if in.UnitPrice.IsNegative() {
		return domain.InventoryItem{}, domain.ErrInvalidPrice
	}
	if in.TotalCapacity <= 0 || in.UnitCapacity < 0 {
		return domain.InventoryItem{}, domain.ErrInvalidCapacity
	}

	item := domain.InventoryItem{
		ID:                newID(),
		ServiceType:       in.ServiceType,
		Name:              in.Name,
		UnitPrice:         in.UnitPrice,
		UnitCapacity:      in.UnitCapacity,
		TotalCapacity:     in.TotalCapacity,
		AvailableCapacity: in.TotalCapacity,
		StartsAt:          in.StartsAt,
		CreatedAt:         s.clock.Now(),
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return domain.InventoryItem{}, err
	}
	return item, nil
}

func (s *AdminService) ListItems(ctx context.Context, st domain.ServiceType) ([]domain.InventoryItem, error) {
	if st != "" && !st.Valid() {
		return nil, domain.ErrInvalidServiceType
	}
	return s.repo.ListItems(ctx, st)
}

type CreatePromotionInput struct {
	Title           string
	ServiceType     domain.ServiceType
	DiscountPercent *decimal.Decimal
	DiscountAmount  *decimal.Decimal
	StartsAt        time.Time
	EndsAt          time.Time
	IsActive        bool
}

func (s *AdminService) CreatePromotion(ctx context.Context, in CreatePromotionInput) (domain.Promotion, error) {
	if in.Title == "" {
		return domain.Promotion{}, domain.ErrNameRequired
	}
	if !in.ServiceType.Valid() {
		return domain.Promotion{}, domain.ErrInvalidServiceType
	}
	if !in.EndsAt.After(in.StartsAt) {
		return domain.Promotion{}, domain.ErrInvalidTimeWindow
	}
	if err := validateDiscount(in.DiscountPercent, in.DiscountAmount); err != nil {
		return domain.Promotion{}, err
	}

	p := domain.Promotion{
		ID:              newID(),
		Title:           in.Title,
		ServiceType:     in.ServiceType,
		DiscountPercent: nullDecimal(in.DiscountPercent),
		DiscountAmount:  nullDecimal(in.DiscountAmount),
		StartsAt:        in.StartsAt,
		EndsAt:          in.EndsAt,
		IsActive:        in.IsActive,
		CreatedAt:       s.clock.Now(),
	}
	if err := s.repo.CreatePromotion(ctx, p); err != nil {
		return domain.Promotion{}, err
	}
	return p, nil
}

func (s *AdminService) ListPromotions(ctx context.Context) ([]domain.Promotion, error) {
	return s.repo.ListPromotions(ctx)
}

type CreateLinkInput struct {
	PromotionID     string
	ItemID          string
	DiscountPercent *decimal.Decimal
	DiscountAmount  *decimal.Decimal
}

func (s *AdminService) CreatePromotionLink(ctx context.Context, in CreateLinkInput) (domain.PromotionLink, error) {
	if in.PromotionID == "" || in.ItemID == "" {
		return domain.PromotionLink{}, domain.ErrInvalidID
	}
	if err := validateDiscount(in.DiscountPercent, in.DiscountAmount); err != nil {
		return domain.PromotionLink{}, err
	}

	promo, err := s.repo.GetPromotion(ctx, in.PromotionID)
	if err != nil {
		return domain.PromotionLink{}, err
	}

	link := domain.PromotionLink{
		ID:              newID(),
		PromotionID:     promo.ID,
		ItemID:          in.ItemID,
		DiscountPercent: nullDecimal(in.DiscountPercent),
		DiscountAmount:  nullDecimal(in.DiscountAmount),
		Promotion:       promo,
	}
	if err := s.repo.CreatePromotionLink(ctx, link); err != nil {
		return domain.PromotionLink{}, err
	}
	return link, nil
}

func (s *AdminService) ListPromotionLinks(ctx context.Context, promotionID string) ([]domain.PromotionLink, error) {
	if promotionID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListLinksByPromotion(ctx, promotionID)
}

type CreateRefundPolicyInput struct {
	ServiceType      domain.ServiceType
	PolicyType       domain.RefundPolicyType
	RefundPercentage *decimal.Decimal
	RefundAmount     *decimal.Decimal
	HoursBeforeStart *int
	IsActive         bool
}

func (s *AdminService) CreateRefundPolicy(ctx context.Context, in CreateRefundPolicyInput) (domain.RefundPolicy, error) {
	if !in.ServiceType.Valid() {
		return domain.RefundPolicy{}, domain.ErrInvalidServiceType
	}
	if !in.PolicyType.Valid() {
		return domain.RefundPolicy{}, domain.ErrInvalidPolicy
	}
	if in.RefundPercentage != nil && (in.RefundPercentage.IsNegative() || in.RefundPercentage.GreaterThan(hundred)) {
		return domain.RefundPolicy{}, domain.ErrInvalidPolicy
	}
	if in.RefundAmount != nil && in.RefundAmount.IsNegative() {
		return domain.RefundPolicy{}, domain.ErrInvalidPolicy
	}
	if in.HoursBeforeStart != nil && *in.HoursBeforeStart < 0 {
		return domain.RefundPolicy{}, domain.ErrInvalidPolicy
	}

	p := domain.RefundPolicy{
		ID:               newID(),
		ServiceType:      in.ServiceType,
		PolicyType:       in.PolicyType,
		RefundPercentage: nullDecimal(in.RefundPercentage),
		RefundAmount:     nullDecimal(in.RefundAmount),
		HoursBeforeStart: in.HoursBeforeStart,
		IsActive:         in.IsActive,
		CreatedAt:        s.clock.Now(),
	}
	if err := s.repo.CreateRefundPolicy(ctx, p); err != nil {
		return domain.RefundPolicy{}, err
	}
	return p, nil
}

func (s *AdminService) ListRefundPolicies(ctx context.Context, st domain.ServiceType) ([]domain.RefundPolicy, error) {
	if st != "" && !st.Valid() {
		return nil, domain.ErrInvalidServiceType
	}
	return s.repo.ListRefundPolicies(ctx, st)
}

func validateDiscount(percent, amount *decimal.Decimal) error {
	if percent != nil && (percent.IsNegative() || percent.GreaterThan(hundred)) {
		return domain.ErrInvalidDiscount
	}
	if amount != nil && amount.IsNegative() {
		return domain.ErrInvalidDiscount
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
