package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voyatra/travel-booking/internal/clock"
	"github.com/voyatra/travel-booking/internal/domain"
	"github.com/voyatra/travel-booking/internal/events"
)

type LifecycleRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetBookingForUpdate(ctx context.Context, id string) (domain.Booking, error)
	ListDetailsByBooking(ctx context.Context, bookingID string) ([]domain.BookingDetail, error)
	// FindRefundPolicies returns active policies for the service type ordered
	// by hours_before_start descending.
	FindRefundPolicies(ctx context.Context, st domain.ServiceType) ([]domain.RefundPolicy, error)
	ReleaseCapacity(ctx context.Context, itemID string, quantity int) error
	MarkConfirmed(ctx context.Context, id, txnID string) error
	MarkCompleted(ctx context.Context, id string) error
	MarkCancelled(ctx context.Context, id string, refund decimal.Decimal, payment domain.PaymentStatus) error
	MarkRebooked(ctx context.Context, id string) error
	RecomputeBookingRollup(ctx context.Context, bookingID string) (domain.Booking, error)
}

// LifecycleService drives booking status transitions and computes refunds on
// cancellation. State machine: pending -> confirmed -> completed;
// pending|confirmed -> cancelled; cancelled -> rebooked (spawning a fresh
// pending booking through the factory).
type LifecycleService struct {
	repo      LifecycleRepository
	factory   *BookingService
	gateway   PaymentGateway
	clock     clock.Clock
	publisher EventPublisher
	logger    *slog.Logger
}

func NewLifecycleService(repo LifecycleRepository, factory *BookingService, gateway PaymentGateway, clk clock.Clock, pub EventPublisher, logger *slog.Logger) *LifecycleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LifecycleService{
		repo:      repo,
		factory:   factory,
		gateway:   gateway,
		clock:     clk,
		publisher: pub,
		logger:    logger,
	}
}

// Confirm records a successful payment: pending -> confirmed/paid.
// Re-confirming with the same transaction id is a no-op.
func (s *LifecycleService) Confirm(ctx context.Context, bookingID, txnID string) (domain.Booking, error) {
	var result domain.Booking
	var replayed bool
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.repo.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if b.Status == domain.BookingConfirmed && b.PaymentTxnID == txnID {
			replayed = true
			result = b
			return nil
		}
		if b.Status != domain.BookingPending {
			return domain.ErrInvalidBookingState
		}
		if err := s.repo.MarkConfirmed(txCtx, bookingID, txnID); err != nil {
			return err
		}
		b.Status = domain.BookingConfirmed
		b.PaymentStatus = domain.PaymentPaid
		b.PaymentTxnID = txnID
		result = b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	if replayed {
		return result, nil
	}

	publish(ctx, s.logger, s.publisher, events.KeyPaymentConfirmed, events.PaymentConfirmed{
		BookingID:     result.ID,
		BookingCode:   result.BookingCode,
		TransactionID: txnID,
		Amount:        result.FinalPrice.StringFixed(2),
		OccurredAt:    s.clock.Now(),
	})
	return result, nil
}

// Complete marks a confirmed booking as fulfilled.
func (s *LifecycleService) Complete(ctx context.Context, bookingID string) (domain.Booking, error) {
	var result domain.Booking
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.repo.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingConfirmed {
			return domain.ErrInvalidBookingState
		}
		if err := s.repo.MarkCompleted(txCtx, bookingID); err != nil {
			return err
		}
		b.Status = domain.BookingCompleted
		result = b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, nil
}

type CancellationResult struct {
	Booking      domain.Booking
	RefundAmount decimal.Decimal
	// GatewayFailed is set when the live refund call failed after the
	// cancellation itself committed; the owed amount stays recorded for
	// manual reconciliation.
	GatewayFailed bool
}

// Cancel transitions a booking to cancelled, computes the refund from the
// refund-policy table, returns reserved capacity to the pool and, for paid
// bookings, triggers a best-effort gateway refund after commit.
func (s *LifecycleService) Cancel(ctx context.Context, bookingID string) (CancellationResult, error) {
	now := s.clock.Now()

	var result CancellationResult
	var wasPaid bool
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.repo.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if !b.Cancellable() {
			return domain.ErrInvalidBookingState
		}
		wasPaid = b.PaymentStatus == domain.PaymentPaid

		details, err := s.repo.ListDetailsByBooking(txCtx, bookingID)
		if err != nil {
			return err
		}
		policies, err := s.repo.FindRefundPolicies(txCtx, b.ServiceType)
		if err != nil {
			return err
		}

		refund := computeRefund(b, details, policies, now)
		s.logger.Debug("refund computed",
			"booking_id", bookingID,
			"hours_before_start", hoursBeforeStart(b, details, now),
			"refund", refund.StringFixed(2))

		for _, d := range details {
			if err := s.repo.ReleaseCapacity(txCtx, d.ItemID, d.Quantity); err != nil {
				return err
			}
		}

		payment := domain.PaymentCancelled
		if refund.IsPositive() {
			payment = domain.PaymentRefunded
		}
		if err := s.repo.MarkCancelled(txCtx, bookingID, refund, payment); err != nil {
			return err
		}

		b.Status = domain.BookingCancelled
		b.PaymentStatus = payment
		b.RefundAmount = refund
		result = CancellationResult{Booking: b, RefundAmount: refund}
		return nil
	})
	if err != nil {
		return CancellationResult{}, err
	}

	if wasPaid && s.gateway != nil && result.RefundAmount.IsPositive() {
		if _, err := s.gateway.Refund(ctx, result.Booking.PaymentTxnID, result.RefundAmount); err != nil {
			s.logger.Warn("gateway refund failed",
				"booking_id", bookingID,
				"txn_id", result.Booking.PaymentTxnID,
				"amount", result.RefundAmount.StringFixed(2),
				"error", err)
			result.GatewayFailed = true
		}
	}

	publish(ctx, s.logger, s.publisher, events.KeyBookingCancelled, events.BookingCancelled{
		BookingID:    result.Booking.ID,
		BookingCode:  result.Booking.BookingCode,
		ServiceType:  string(result.Booking.ServiceType),
		RefundAmount: result.RefundAmount.StringFixed(2),
		OccurredAt:   now,
	})
	return result, nil
}

type RebookResult struct {
	Old domain.Booking
	New BookingResult
}

// Rebook replaces a cancelled booking with a fresh pending one inside a
// single transaction: the source row is locked and flipped to rebooked
// first, then the factory re-runs the full creation path, so a failure at
// any step leaves neither a stranded replacement nor a half-flipped source.
// Availability and prices are re-validated at rebook time; stale references
// from the old booking are never trusted.
func (s *LifecycleService) Rebook(ctx context.Context, bookingID string) (RebookResult, error) {
	var old domain.Booking
	var created BookingResult
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.repo.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingCancelled {
			return domain.ErrInvalidBookingState
		}
		details, err := s.repo.ListDetailsByBooking(txCtx, bookingID)
		if err != nil {
			return err
		}
		if err := s.repo.MarkRebooked(txCtx, bookingID); err != nil {
			return err
		}

		inputs := make([]DetailInput, 0, len(details))
		for _, d := range details {
			starts := d.StartsAt
			inputs = append(inputs, DetailInput{
				ItemID:    d.ItemID,
				Quantity:  d.Quantity,
				Occupants: d.Occupants,
				StartsAt:  &starts,
				EndsAt:    d.EndsAt,
			})
		}
		created, err = s.factory.create(txCtx, CreateBookingInput{
			ServiceType:  b.ServiceType,
			Details:      inputs,
			RebookedFrom: b.ID,
		})
		if err != nil {
			return err
		}
		old = b
		return nil
	})
	if err != nil {
		return RebookResult{}, err
	}
	old.Status = domain.BookingRebooked

	s.factory.publishCreated(ctx, created)
	return RebookResult{Old: old, New: created}, nil
}

// RecomputeRollup re-derives a booking's money totals from its current
// details. Idempotent: running it twice yields identical results.
func (s *LifecycleService) RecomputeRollup(ctx context.Context, bookingID string) (domain.Booking, error) {
	var result domain.Booking
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		b, err := s.repo.RecomputeBookingRollup(txCtx, bookingID)
		if err != nil {
			return err
		}
		result = b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, nil
}

var half = decimal.NewFromFloat(0.5)

// computeRefund applies the first matching policy. No policy at all means a
// full refund. Only no_refund is sensitive to the hours-before-start
// threshold; full/partial policies apply as configured even when the
// threshold is violated (documented as-is pending product clarification).
// The already-applied discount is never refunded, so it is subtracted from
// the raw refund, floored at zero.
func computeRefund(b domain.Booking, details []domain.BookingDetail, policies []domain.RefundPolicy, now time.Time) decimal.Decimal {
	raw := b.FinalPrice

	if len(policies) > 0 {
		policy := policies[0]
		switch policy.PolicyType {
		case domain.RefundPolicyNone:
			raw = decimal.Zero
		case domain.RefundPolicyFull:
			raw = b.FinalPrice
		case domain.RefundPolicyPartial:
			switch {
			case policy.RefundPercentage.Valid:
				raw = b.FinalPrice.Mul(policy.RefundPercentage.Decimal).Div(hundred)
			case policy.RefundAmount.Valid:
				raw = decimal.Min(policy.RefundAmount.Decimal, b.FinalPrice)
			default:
				raw = b.FinalPrice.Mul(half)
			}
		}
	}

	refund := raw.Sub(b.DiscountAmount)
	if refund.IsNegative() {
		refund = decimal.Zero
	}
	return refund.Round(2)
}

// startTime resolves the refund lead-time anchor: the earliest detail start,
// falling back to the booking's creation time.
func startTime(b domain.Booking, details []domain.BookingDetail) time.Time {
	start := time.Time{}
	for _, d := range details {
		if start.IsZero() || d.StartsAt.Before(start) {
			start = d.StartsAt
		}
	}
	if start.IsZero() {
		return b.CreatedAt
	}
	return start
}

// hoursBeforeStart is the refund lead time in hours at the moment of
// cancellation.
func hoursBeforeStart(b domain.Booking, details []domain.BookingDetail, now time.Time) float64 {
	return startTime(b, details).Sub(now).Hours()
}
