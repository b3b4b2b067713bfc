package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/voyatra/travel-booking/internal/domain"
)

type LifecycleRepository struct {
	querier
}

func NewLifecycleRepository(pool *pgxpool.Pool) *LifecycleRepository {
	return &LifecycleRepository{querier{pool: pool}}
}

func (r *LifecycleRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *LifecycleRepository) GetBookingForUpdate(ctx context.Context, id string) (domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return scanBooking(r.queryRow(ctx, query, id))
}

func (r *LifecycleRepository) ListDetailsByBooking(ctx context.Context, bookingID string) ([]domain.BookingDetail, error) {
	return listDetails(ctx, r.querier, bookingID)
}

func (r *LifecycleRepository) FindRefundPolicies(ctx context.Context, st domain.ServiceType) ([]domain.RefundPolicy, error) {
	const query = `
SELECT id, service_type, policy_type, refund_percentage, refund_amount, hours_before_start, is_active, created_at
FROM refund_policies
WHERE service_type = $1 AND is_active
ORDER BY hours_before_start DESC NULLS LAST, id`

	rows, err := r.query(ctx, query, st)
	if err != nil {
		return nil, fmt.Errorf("find refund policies: %w", err)
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

// ReleaseCapacity returns reserved units to the pool, capped at the item's
// total capacity.
func (r *LifecycleRepository) ReleaseCapacity(ctx context.Context, itemID string, quantity int) error {
	const stmt = `
UPDATE inventory_items
SET available_capacity = LEAST(total_capacity, available_capacity + $2)
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, itemID, quantity)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("release capacity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *LifecycleRepository) MarkConfirmed(ctx context.Context, id, txnID string) error {
	const stmt = `
UPDATE bookings
SET status = 'confirmed', payment_status = 'paid', payment_txn_id = $2
WHERE id = $1`
	return r.markBooking(ctx, stmt, id, txnID)
}

func (r *LifecycleRepository) MarkCompleted(ctx context.Context, id string) error {
	const stmt = `UPDATE bookings SET status = 'completed' WHERE id = $1`
	return r.markBooking(ctx, stmt, id)
}

// MarkCancelled records the cancellation outcome. final_price is retained
// for audit; only status, payment status and the refund amount change.
func (r *LifecycleRepository) MarkCancelled(ctx context.Context, id string, refund decimal.Decimal, payment domain.PaymentStatus) error {
	const stmt = `
UPDATE bookings
SET status = 'cancelled', payment_status = $2, refund_amount = $3
WHERE id = $1`
	return r.markBooking(ctx, stmt, id, payment, refund)
}

func (r *LifecycleRepository) MarkRebooked(ctx context.Context, id string) error {
	const stmt = `UPDATE bookings SET status = 'rebooked' WHERE id = $1`
	return r.markBooking(ctx, stmt, id)
}

func (r *LifecycleRepository) RecomputeBookingRollup(ctx context.Context, bookingID string) (domain.Booking, error) {
	return recomputeRollup(ctx, r.querier, bookingID)
}

func (r *LifecycleRepository) markBooking(ctx context.Context, stmt, id string, args ...any) error {
	tag, err := r.exec(ctx, stmt, append([]any{id}, args...)...)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}
