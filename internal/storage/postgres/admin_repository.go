package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voyatra/travel-booking/internal/domain"
)

type AdminRepository struct {
	querier
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{querier{pool: pool}}
}

func (r *AdminRepository) CreateItem(ctx context.Context, item domain.InventoryItem) error {
	const stmt = `
INSERT INTO inventory_items (id, service_type, name, unit_price, unit_capacity,
	total_capacity, available_capacity, starts_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		item.ID,
		item.ServiceType,
		item.Name,
		item.UnitPrice,
		item.UnitCapacity,
		item.TotalCapacity,
		item.AvailableCapacity,
		item.StartsAt,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListItems(ctx context.Context, st domain.ServiceType) ([]domain.InventoryItem, error) {
	const query = `
SELECT id, service_type, name, unit_price, unit_capacity, total_capacity, available_capacity, starts_at, created_at
FROM inventory_items
WHERE $1 = '' OR service_type = $1
ORDER BY created_at, id`

	rows, err := r.query(ctx, query, string(st))
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(
			&it.ID, &it.ServiceType, &it.Name, &it.UnitPrice, &it.UnitCapacity,
			&it.TotalCapacity, &it.AvailableCapacity, &it.StartsAt, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *AdminRepository) CreatePromotion(ctx context.Context, p domain.Promotion) error {
	const stmt = `
INSERT INTO promotions (id, title, service_type, discount_percent, discount_amount,
	starts_at, ends_at, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		p.ID,
		p.Title,
		p.ServiceType,
		p.DiscountPercent,
		p.DiscountAmount,
		p.StartsAt,
		p.EndsAt,
		p.IsActive,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create promotion: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListPromotions(ctx context.Context) ([]domain.Promotion, error) {
	const query = `
SELECT id, title, service_type, discount_percent, discount_amount, starts_at, ends_at, is_active, created_at
FROM promotions
ORDER BY created_at, id`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()

	var promos []domain.Promotion
	for rows.Next() {
		var p domain.Promotion
		if err := scanPromotion(rows, &p); err != nil {
			return nil, err
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

func (r *AdminRepository) GetPromotion(ctx context.Context, id string) (domain.Promotion, error) {
	const query = `
SELECT id, title, service_type, discount_percent, discount_amount, starts_at, ends_at, is_active, created_at
FROM promotions
WHERE id = $1`

	var p domain.Promotion
	err := scanPromotion(r.queryRow(ctx, query, id), &p)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Promotion{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Promotion{}, domain.ErrPromotionNotFound
		}
		return domain.Promotion{}, fmt.Errorf("get promotion: %w", err)
	}
	return p, nil
}

func (r *AdminRepository) CreatePromotionLink(ctx context.Context, link domain.PromotionLink) error {
	const stmt = `
INSERT INTO promotion_links (id, promotion_id, item_id, discount_percent, discount_amount)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.exec(ctx, stmt,
		link.ID,
		link.PromotionID,
		link.ItemID,
		link.DiscountPercent,
		link.DiscountAmount,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrItemNotFound
		}
		return fmt.Errorf("create promotion link: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListLinksByPromotion(ctx context.Context, promotionID string) ([]domain.PromotionLink, error) {
	const query = `
SELECT l.id, l.promotion_id, l.item_id, l.discount_percent, l.discount_amount,
       p.id, p.title, p.service_type, p.discount_percent, p.discount_amount,
       p.starts_at, p.ends_at, p.is_active, p.created_at
FROM promotion_links l
JOIN promotions p ON p.id = l.promotion_id
WHERE l.promotion_id = $1
ORDER BY l.id`

	rows, err := r.query(ctx, query, promotionID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []domain.PromotionLink
	for rows.Next() {
		var l domain.PromotionLink
		if err := rows.Scan(
			&l.ID, &l.PromotionID, &l.ItemID, &l.DiscountPercent, &l.DiscountAmount,
			&l.Promotion.ID, &l.Promotion.Title, &l.Promotion.ServiceType,
			&l.Promotion.DiscountPercent, &l.Promotion.DiscountAmount,
			&l.Promotion.StartsAt, &l.Promotion.EndsAt, &l.Promotion.IsActive, &l.Promotion.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *AdminRepository) CreateRefundPolicy(ctx context.Context, p domain.RefundPolicy) error {
	const stmt = `
INSERT INTO refund_policies (id, service_type, policy_type, refund_percentage, refund_amount,
	hours_before_start, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.exec(ctx, stmt,
		p.ID,
		p.ServiceType,
		p.PolicyType,
		p.RefundPercentage,
		p.RefundAmount,
		p.HoursBeforeStart,
		p.IsActive,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create refund policy: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListRefundPolicies(ctx context.Context, st domain.ServiceType) ([]domain.RefundPolicy, error) {
	const query = `
SELECT id, service_type, policy_type, refund_percentage, refund_amount, hours_before_start, is_active, created_at
FROM refund_policies
WHERE $1 = '' OR service_type = $1
ORDER BY hours_before_start DESC NULLS LAST, id`

	rows, err := r.query(ctx, query, string(st))
	if err != nil {
		return nil, fmt.Errorf("list refund policies: %w", err)
	}
	defer rows.Close()

	var policies []domain.RefundPolicy
	for rows.Next() {
		var p domain.RefundPolicy
		if err := rows.Scan(
			&p.ID, &p.ServiceType, &p.PolicyType, &p.RefundPercentage, &p.RefundAmount,
			&p.HoursBeforeStart, &p.IsActive, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan refund policy: %w", err)
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func scanPromotion(row pgx.Row, p *domain.Promotion) error {
	return row.Scan(
		&p.ID, &p.Title, &p.ServiceType, &p.DiscountPercent, &p.DiscountAmount,
		&p.StartsAt, &p.EndsAt, &p.IsActive, &p.CreatedAt,
	)
}
