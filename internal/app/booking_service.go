package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/voyatra/travel-booking/internal/clock"
	"github.com/voyatra/travel-booking/internal/domain"
	"github.com/voyatra/travel-booking/internal/events"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateBooking(ctx context.Context, b domain.Booking) error
	GetBooking(ctx context.Context, id string) (domain.Booking, error)
	GetItemForUpdate(ctx context.Context, itemID string) (domain.InventoryItem, error)
	ReserveCapacity(ctx context.Context, itemID string, quantity int) error
	CountOverlappingDetails(ctx context.Context, itemID string, from, to time.Time) (int, error)
	ListPromotionLinks(ctx context.Context, itemID string) ([]domain.PromotionLink, error)
	InsertDetail(ctx context.Context, d domain.BookingDetail) error
	ListDetailsByBooking(ctx context.Context, bookingID string) ([]domain.BookingDetail, error)
	RecomputeBookingRollup(ctx context.Context, bookingID string) (domain.Booking, error)
}

// BookingService is the booking detail factory: it creates a booking
// aggregate plus its detail records in one transaction, reserving inventory,
// resolving promotions and pricing each detail in strict order. Any step's
// failure rolls back every prior effect of the invocation.
type BookingService struct {
	repo      BookingRepository
	clock     clock.Clock
	publisher EventPublisher
	logger    *slog.Logger
}

func NewBookingService(repo BookingRepository, clk clock.Clock, pub EventPublisher, logger *slog.Logger) *BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		repo:      repo,
		clock:     clk,
		publisher: pub,
		logger:    logger,
	}
}

type DetailInput struct {
	ItemID string
	// Quantity counts units: rooms, seats, cars, ticket slots.
	Quantity int
	// Occupants counts people; zero defaults to Quantity.
	Occupants int
	StartsAt  *time.Time
	EndsAt    *time.Time
}

type CreateBookingInput struct {
	ServiceType domain.ServiceType
	Details     []DetailInput
	// RebookedFrom is set when this booking replaces a cancelled one.
	RebookedFrom string
}

type BookingResult struct {
	Booking domain.Booking
	Details []domain.BookingDetail
}

func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (BookingResult, error) {
	result, err := s.create(ctx, in)
	if err != nil {
		return BookingResult{}, err
	}
	s.publishCreated(ctx, result)
	return result, nil
}

// create runs the factory sequence. It joins the ambient transaction when the
// caller already opened one, so booking creation can be a step of a larger
// atomic operation; the event publish is left to the caller in that case.
func (s *BookingService) create(ctx context.Context, in CreateBookingInput) (BookingResult, error) {
	if !in.ServiceType.Valid() {
		return BookingResult{}, domain.ErrInvalidServiceType
	}
	if len(in.Details) == 0 {
		return BookingResult{}, domain.ErrNoDetails
	}

	now := s.clock.Now()
	booking := domain.Booking{
		ID:            newID(),
		BookingCode:   newBookingCode(),
		ServiceType:   in.ServiceType,
		Status:        domain.BookingPending,
		PaymentStatus: domain.PaymentUnpaid,
		RebookedFrom:  in.RebookedFrom,
		CreatedAt:     now,
	}

	var result BookingResult
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateBooking(txCtx, booking); err != nil {
			return err
		}

		details := make([]domain.BookingDetail, 0, len(in.Details))
		for _, di := range in.Details {
			detail, err := s.createDetail(txCtx, booking, di, now)
			if err != nil {
				return err
			}
			details = append(details, detail)
		}

		// One rollup recompute per invocation, derived from the persisted
		// details rather than accumulated incrementally.
		rolled, err := s.repo.RecomputeBookingRollup(txCtx, booking.ID)
		if err != nil {
			return err
		}

		result = BookingResult{Booking: rolled, Details: details}
		return nil
	})
	if err != nil {
		return BookingResult{}, err
	}
	return result, nil
}

func (s *BookingService) publishCreated(ctx context.Context, result BookingResult) {
	publish(ctx, s.logger, s.publisher, events.KeyBookingCreated, events.BookingCreated{
		BookingID:      result.Booking.ID,
		BookingCode:    result.Booking.BookingCode,
		ServiceType:    string(result.Booking.ServiceType),
		TotalPrice:     result.Booking.TotalPrice.StringFixed(2),
		DiscountAmount: result.Booking.DiscountAmount.StringFixed(2),
		FinalPrice:     result.Booking.FinalPrice.StringFixed(2),
		OccurredAt:     result.Booking.CreatedAt,
	})
}

// GetBooking loads a booking with its details.
func (s *BookingService) GetBooking(ctx context.Context, id string) (BookingResult, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return BookingResult{}, err
	}
	details, err := s.repo.ListDetailsByBooking(ctx, id)
	if err != nil {
		return BookingResult{}, err
	}
	return BookingResult{Booking: booking, Details: details}, nil
}

// createDetail runs the strict factory sequence for one detail: validate,
// reserve, resolve promotion, price, persist. Reservation runs before any
// price work so capacity failures surface without side effects, and the
// enclosing transaction unwinds the decrement if a later step fails.
func (s *BookingService) createDetail(ctx context.Context, booking domain.Booking, in DetailInput, now time.Time) (domain.BookingDetail, error) {
	if in.Quantity <= 0 {
		return domain.BookingDetail{}, domain.ErrInvalidQuantity
	}

	item, err := s.repo.GetItemForUpdate(ctx, in.ItemID)
	if err != nil {
		return domain.BookingDetail{}, err
	}
	if item.ServiceType != booking.ServiceType {
		return domain.BookingDetail{}, domain.ErrServiceTypeMismatch
	}

	window, err := s.validateWindow(ctx, item, in, now)
	if err != nil {
		return domain.BookingDetail{}, err
	}

	occupants := in.Occupants
	if occupants == 0 {
		occupants = in.Quantity
	}
	if occupants < 1 {
		return domain.BookingDetail{}, domain.ErrInvalidOccupancy
	}
	if item.UnitCapacity > 0 && occupants > in.Quantity*item.UnitCapacity {
		return domain.BookingDetail{}, domain.ErrInvalidOccupancy
	}

	if err := s.repo.ReserveCapacity(ctx, item.ID, in.Quantity); err != nil {
		return domain.BookingDetail{}, err
	}

	links, err := s.repo.ListPromotionLinks(ctx, item.ID)
	if err != nil {
		return domain.BookingDetail{}, err
	}
	promo := ResolveBestPromotion(links, now)

	detail := domain.BookingDetail{
		ID:          newID(),
		BookingID:   booking.ID,
		ItemID:      item.ID,
		ServiceType: booking.ServiceType,
		Quantity:    in.Quantity,
		Occupants:   occupants,
		StartsAt:    window.start,
		EndsAt:      window.end,
		CreatedAt:   now,
	}

	prices := CalculatePrice(item.UnitPrice, in.Quantity, detail.DurationUnits(), promo)
	if prices.Final.IsNegative() {
		return domain.BookingDetail{}, fmt.Errorf("negative final price for item %s", item.ID)
	}
	detail.TotalPrice = prices.Total
	detail.DiscountAmount = prices.Discount
	detail.FinalPrice = prices.Final

	if err := s.repo.InsertDetail(ctx, detail); err != nil {
		return domain.BookingDetail{}, err
	}
	return detail, nil
}

type timeWindow struct {
	start time.Time
	end   *time.Time
}

// validateWindow applies the per-service-type business constraints before
// any inventory is touched.
func (s *BookingService) validateWindow(ctx context.Context, item domain.InventoryItem, in DetailInput, now time.Time) (timeWindow, error) {
	start := in.StartsAt
	if start == nil {
		// Flights and activities carry their own start time.
		start = item.StartsAt
	}

	switch item.ServiceType {
	case domain.ServiceHotel:
		if in.StartsAt == nil || in.EndsAt == nil {
			return timeWindow{}, domain.ErrInvalidTimeWindow
		}
		if !in.EndsAt.After(*in.StartsAt) || in.StartsAt.Before(now) {
			return timeWindow{}, domain.ErrInvalidTimeWindow
		}
		return timeWindow{start: *in.StartsAt, end: in.EndsAt}, nil

	case domain.ServiceCar:
		if in.StartsAt == nil || in.EndsAt == nil {
			return timeWindow{}, domain.ErrInvalidTimeWindow
		}
		if !in.EndsAt.After(*in.StartsAt) || in.StartsAt.Before(now) {
			return timeWindow{}, domain.ErrInvalidTimeWindow
		}
		// A physical car cannot serve two overlapping trips.
		overlaps, err := s.repo.CountOverlappingDetails(ctx, item.ID, *in.StartsAt, *in.EndsAt)
		if err != nil {
			return timeWindow{}, err
		}
		if overlaps > 0 {
			return timeWindow{}, domain.ErrInvalidTimeWindow
		}
		return timeWindow{start: *in.StartsAt, end: in.EndsAt}, nil

	case domain.ServiceFlight, domain.ServiceActivity:
		if start == nil || start.Before(now) {
			return timeWindow{}, domain.ErrInvalidTimeWindow
		}
		if in.EndsAt != nil && !in.EndsAt.After(*start) {
			return timeWindow{}, domain.ErrInvalidTimeWindow
		}
		return timeWindow{start: *start, end: in.EndsAt}, nil
	}

	return timeWindow{}, domain.ErrInvalidServiceType
}
