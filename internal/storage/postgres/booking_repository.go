package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voyatra/travel-booking/internal/domain"
)

const bookingColumns = `id, booking_code, service_type, status, payment_status, payment_txn_id,
total_price, discount_amount, final_price, refund_amount, rebooked_from, created_at`

const detailColumns = `id, booking_id, item_id, service_type, quantity, occupants,
starts_at, ends_at, total_price, discount_amount, final_price, created_at`

type BookingRepository struct {
	querier
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{querier{pool: pool}}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BookingRepository) CreateBooking(ctx context.Context, b domain.Booking) error {
	const stmt = `
INSERT INTO bookings (id, booking_code, service_type, status, payment_status, payment_txn_id,
	total_price, discount_amount, final_price, refund_amount, rebooked_from, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, '')::uuid, $12)`

	_, err := r.exec(ctx, stmt,
		b.ID,
		b.BookingCode,
		b.ServiceType,
		b.Status,
		b.PaymentStatus,
		b.PaymentTxnID,
		b.TotalPrice,
		b.DiscountAmount,
		b.FinalPrice,
		b.RefundAmount,
		b.RebookedFrom,
		b.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("booking code collision: %w", err)
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scanBooking(r.queryRow(ctx, query, id))
}

func (r *BookingRepository) GetItemForUpdate(ctx context.Context, itemID string) (domain.InventoryItem, error) {
	const query = `
SELECT id, service_type, name, unit_price, unit_capacity, total_capacity, available_capacity, starts_at, created_at
FROM inventory_items
WHERE id = $1
FOR UPDATE`

	var it domain.InventoryItem
	err := r.queryRow(ctx, query, itemID).Scan(
		&it.ID,
		&it.ServiceType,
		&it.Name,
		&it.UnitPrice,
		&it.UnitCapacity,
		&it.TotalCapacity,
		&it.AvailableCapacity,
		&it.StartsAt,
		&it.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.InventoryItem{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.InventoryItem{}, domain.ErrItemNotFound
		}
		return domain.InventoryItem{}, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// ReserveCapacity is the ledger's atomic check-then-decrement: a single
// conditional UPDATE with a capacity guard, so two concurrent reservations
// of the last unit cannot both succeed.
func (r *BookingRepository) ReserveCapacity(ctx context.Context, itemID string, quantity int) error {
	const stmt = `
UPDATE inventory_items
SET available_capacity = available_capacity - $2
WHERE id = $1 AND available_capacity >= $2`

	tag, err := r.exec(ctx, stmt, itemID, quantity)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("reserve capacity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientInventory
	}
	return nil
}

func (r *BookingRepository) CountOverlappingDetails(ctx context.Context, itemID string, from, to time.Time) (int, error) {
	const query = `
SELECT COUNT(*)
FROM booking_details d
JOIN bookings b ON b.id = d.booking_id
WHERE d.item_id = $1
  AND b.status NOT IN ('cancelled', 'rebooked')
  AND d.starts_at < $3
  AND d.ends_at IS NOT NULL
  AND d.ends_at > $2`

	var count int
	if err := r.queryRow(ctx, query, itemID, from, to).Scan(&count); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count overlapping details: %w", err)
	}
	return count, nil
}

func (r *BookingRepository) ListPromotionLinks(ctx context.Context, itemID string) ([]domain.PromotionLink, error) {
	const query = `
SELECT l.id, l.promotion_id, l.item_id, l.discount_percent, l.discount_amount,
       p.id, p.title, p.service_type, p.discount_percent, p.discount_amount,
       p.starts_at, p.ends_at, p.is_active, p.created_at
FROM promotion_links l
JOIN promotions p ON p.id = l.promotion_id
WHERE l.item_id = $1
ORDER BY l.id`

	rows, err := r.query(ctx, query, itemID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list promotion links: %w", err)
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
			return nil, fmt.Errorf("scan promotion link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *BookingRepository) InsertDetail(ctx context.Context, d domain.BookingDetail) error {
	const stmt = `
INSERT INTO booking_details (id, booking_id, item_id, service_type, quantity, occupants,
	starts_at, ends_at, total_price, discount_amount, final_price, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.exec(ctx, stmt,
		d.ID,
		d.BookingID,
		d.ItemID,
		d.ServiceType,
		d.Quantity,
		d.Occupants,
		d.StartsAt,
		d.EndsAt,
		d.TotalPrice,
		d.DiscountAmount,
		d.FinalPrice,
		d.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrBookingNotFound
		}
		return fmt.Errorf("insert detail: %w", err)
	}
	return nil
}

func (r *BookingRepository) ListDetailsByBooking(ctx context.Context, bookingID string) ([]domain.BookingDetail, error) {
	return listDetails(ctx, r.querier, bookingID)
}

// RecomputeBookingRollup rewrites the booking's money totals from its
// current details in one statement and returns the updated row. Running it
// twice in a row yields identical results.
func (r *BookingRepository) RecomputeBookingRollup(ctx context.Context, bookingID string) (domain.Booking, error) {
	return recomputeRollup(ctx, r.querier, bookingID)
}

func (r *BookingRepository) scanBooking(row pgx.Row) (domain.Booking, error) {
	return scanBooking(row)
}

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	var rebookedFrom *string
	err := row.Scan(
		&b.ID,
		&b.BookingCode,
		&b.ServiceType,
		&b.Status,
		&b.PaymentStatus,
		&b.PaymentTxnID,
		&b.TotalPrice,
		&b.DiscountAmount,
		&b.FinalPrice,
		&b.RefundAmount,
		&rebookedFrom,
		&b.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Booking{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Booking{}, domain.ErrBookingNotFound
		}
		return domain.Booking{}, fmt.Errorf("scan booking: %w", err)
	}
	if rebookedFrom != nil {
		b.RebookedFrom = *rebookedFrom
	}
	return b, nil
}

func listDetails(ctx context.Context, q querier, bookingID string) ([]domain.BookingDetail, error) {
	query := `SELECT ` + detailColumns + ` FROM booking_details WHERE booking_id = $1 ORDER BY created_at, id`

	rows, err := q.query(ctx, query, bookingID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list details: %w", err)
	}
	defer rows.Close()

	var details []domain.BookingDetail
	for rows.Next() {
		var d domain.BookingDetail
		if err := rows.Scan(
			&d.ID, &d.BookingID, &d.ItemID, &d.ServiceType, &d.Quantity, &d.Occupants,
			&d.StartsAt, &d.EndsAt, &d.TotalPrice, &d.DiscountAmount, &d.FinalPrice, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan detail: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func recomputeRollup(ctx context.Context, q querier, bookingID string) (domain.Booking, error) {
	const stmt = `
UPDATE bookings b
SET total_price = s.total,
    discount_amount = s.discount,
    final_price = GREATEST(s.total - s.discount, 0)
FROM (
	SELECT COALESCE(SUM(total_price), 0) AS total,
	       COALESCE(SUM(discount_amount), 0) AS discount
	FROM booking_details
	WHERE booking_id = $1
) s
WHERE b.id = $1
RETURNING ` + bookingColumns

	return scanBooking(q.queryRow(ctx, stmt, bookingID))
}
