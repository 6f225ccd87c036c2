package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/internal/dto"
	"github.com/seatsurge/ticketd/internal/repository"
	"github.com/seatsurge/ticketd/pkg/logger"
	"github.com/seatsurge/ticketd/pkg/retry"
	"github.com/seatsurge/ticketd/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// BookingService defines the interface for booking business logic
type BookingService interface {
	// CreateHold places a pending hold on seats of a published event
	CreateHold(ctx context.Context, userID string, req *dto.CreateHoldRequest) (*dto.CreateHoldResponse, error)

	// ConfirmBooking transitions a live hold to confirmed and commits its seats
	ConfirmBooking(ctx context.Context, bookingID, userID string, req *dto.ConfirmBookingRequest) (*dto.ConfirmBookingResponse, error)

	// CancelBooking cancels a pending or confirmed booking
	CancelBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error)

	// RefundBooking refunds a confirmed booking within the refund window
	RefundBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error)

	// UpdateContact updates contact fields on a non-terminal booking
	UpdateContact(ctx context.Context, bookingID, userID string, req *dto.UpdateContactRequest) (*dto.BookingResponse, error)

	// GetBooking retrieves a booking. An empty userID skips the ownership
	// check; handlers pass it only for operator reads.
	GetBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error)

	// GetUserBookings retrieves a user's bookings, newest first, with event summaries
	GetUserBookings(ctx context.Context, userID string, page, pageSize int) ([]*dto.BookingResponse, error)

	// GetSeatMap reports which seats of an event cannot currently be booked
	GetSeatMap(ctx context.Context, eventID string) (*dto.SeatMapResponse, error)

	// ExpireHolds transitions lapsed holds to expired, up to limit
	ExpireHolds(ctx context.Context, limit int) (int, error)

	// ReconcileConfirmedSeats re-commits seats of confirmed bookings whose
	// commit write was lost, up to limit
	ReconcileConfirmedSeats(ctx context.Context, limit int) (int, error)
}

// BookingServiceConfig contains configuration for the booking service
type BookingServiceConfig struct {
	HoldTTL      time.Duration
	RefundWindow time.Duration
	// LockSlack is added to HoldTTL for seat lock expiry so locks outlive
	// the hold until the next sweep pass.
	LockSlack time.Duration
}

// bookingService implements BookingService
type bookingService struct {
	bookingRepo repository.BookingRepository
	eventRepo   repository.EventRepository
	// eventReader serves the hold and confirm validation reads. It must be
	// the uncached repository: a cached taken-seat set can be stale for a
	// full TTL, which is fine for browsing but not for admitting a booking.
	eventReader  repository.EventRepository
	seatLocks    repository.SeatLockRepository
	ledger       *SeatLedger
	notifier     Notifier
	retrier      *retry.Retrier
	holdTTL      time.Duration
	refundWindow time.Duration
	lockTTL      time.Duration
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repository.BookingRepository,
	eventRepo repository.EventRepository,
	eventReader repository.EventRepository,
	seatLocks repository.SeatLockRepository,
	ledger *SeatLedger,
	notifier Notifier,
	cfg *BookingServiceConfig,
) BookingService {
	if eventReader == nil {
		eventReader = eventRepo
	}
	holdTTL := 30 * time.Minute
	refundWindow := 24 * time.Hour
	lockSlack := 5 * time.Minute
	if cfg != nil {
		if cfg.HoldTTL > 0 {
			holdTTL = cfg.HoldTTL
		}
		if cfg.RefundWindow > 0 {
			refundWindow = cfg.RefundWindow
		}
		if cfg.LockSlack > 0 {
			lockSlack = cfg.LockSlack
		}
	}
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	return &bookingService{
		bookingRepo:  bookingRepo,
		eventRepo:    eventRepo,
		eventReader:  eventReader,
		seatLocks:    seatLocks,
		ledger:       ledger,
		notifier:     notifier,
		retrier:      retry.New(retry.DefaultConfig()),
		holdTTL:      holdTTL,
		refundWindow: refundWindow,
		lockTTL:      holdTTL + lockSlack,
	}
}

// CreateHold places a pending hold on seats of a published event.
//
// Two checks guard seat conflicts. Redis locks close the window between
// concurrent holds for the same seats; the ledger read catches seats
// already committed or held by earlier bookings. Either one failing names
// the contested seats.
func (s *bookingService) CreateHold(ctx context.Context, userID string, req *dto.CreateHoldRequest) (*dto.CreateHoldResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create_hold")
	defer span.End()

	if req == nil || req.EventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	seats := domain.NormalizeSeats(req.Seats)
	if len(seats) == 0 {
		span.SetStatus(codes.Error, "invalid seats")
		return nil, domain.ErrInvalidSeats
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", req.EventID),
		attribute.Int("seat_count", len(seats)),
	)

	event, err := s.eventReader.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if !event.IsPublished() {
		span.SetStatus(codes.Error, "event not published")
		return nil, domain.ErrEventNotPublished
	}

	bookingID := uuid.New().String()

	lock, err := s.seatLocks.AcquireSeats(ctx, event.ID, bookingID, seats, s.lockTTL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: seat locks: %v", domain.ErrDependencyUnavailable, err)
	}
	if !lock.Acquired {
		span.SetStatus(codes.Error, "seat conflict")
		return nil, domain.NewSeatConflictError(lock.Conflicts)
	}

	now := time.Now()
	unavailable, err := s.ledger.UnavailableSeats(ctx, event, now)
	if err != nil {
		s.releaseLocks(ctx, event.ID, bookingID, seats)
		return nil, err
	}
	if conflicts := domain.SeatOverlap(seats, unavailable); len(conflicts) > 0 {
		s.releaseLocks(ctx, event.ID, bookingID, seats)
		span.SetStatus(codes.Error, "seat conflict")
		return nil, domain.NewSeatConflictError(conflicts)
	}
	if len(unavailable)+len(seats) > event.TotalSeats {
		s.releaseLocks(ctx, event.ID, bookingID, seats)
		span.SetStatus(codes.Error, "capacity exceeded")
		return nil, domain.ErrCapacityExceeded
	}

	booking := domain.NewBooking(bookingID, event.ID, userID, seats, event.PricePerSeat, now.Add(s.holdTTL))
	booking.CustomerName = req.CustomerName
	booking.CustomerEmail = req.CustomerEmail
	booking.CustomerPhone = req.CustomerPhone
	if err := booking.Validate(); err != nil {
		s.releaseLocks(ctx, event.ID, bookingID, seats)
		return nil, err
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		s.releaseLocks(ctx, event.ID, bookingID, seats)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("booking_id", booking.ID))
	span.SetStatus(codes.Ok, "")
	return &dto.CreateHoldResponse{
		BookingID:  booking.ID,
		Status:     booking.Status.String(),
		Seats:      booking.Seats,
		TotalPrice: booking.TotalPrice(),
		ExpiresAt:  *booking.ExpiresAt,
	}, nil
}

// ConfirmBooking transitions a live hold to confirmed and commits its seats
// onto the event.
//
// The conditional status update is the commit point. The seat commit that
// follows is retried here and, if it still fails, replayed by the sweeper's
// reconciliation pass; the idempotent set union makes the replay safe.
func (s *bookingService) ConfirmBooking(ctx context.Context, bookingID, userID string, req *dto.ConfirmBookingRequest) (*dto.ConfirmBookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.confirm")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("user_id", userID),
	)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.BelongsToUser(userID) {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	if !booking.CanConfirm(now) {
		if booking.IsExpiredAt(now) {
			// Release the lapsed hold now, the same way the sweeper would,
			// instead of leaving its seats dangling until the next pass.
			if err := s.bookingRepo.MarkExpired(ctx, booking.ID, now); err == nil {
				s.releaseLocks(ctx, booking.EventID, booking.ID, booking.Seats)
			} else if !errors.Is(err, domain.ErrInvalidTransition) {
				logger.Get().Error("failed to expire lapsed hold on confirm",
					zap.String("booking_id", booking.ID),
					zap.Error(err),
				)
			}
			span.SetStatus(codes.Error, "hold expired")
			return nil, domain.ErrBookingExpired
		}
		span.SetStatus(codes.Error, "invalid transition")
		return nil, domain.ErrInvalidTransition
	}

	event, err := s.eventReader.GetByID(ctx, booking.EventID)
	if err != nil {
		return nil, err
	}

	// Last defense against a hold that raced past the locks: re-check the
	// ledger with this booking's own hold excluded.
	if conflicts, err := s.conflictsExcludingSelf(ctx, event, booking, now); err != nil {
		return nil, err
	} else if len(conflicts) > 0 {
		span.SetStatus(codes.Error, "seat conflict")
		return nil, domain.NewSeatConflictError(conflicts)
	}

	paymentRef := ""
	if req != nil {
		paymentRef = req.PaymentRef
	}

	if err := s.bookingRepo.Confirm(ctx, bookingID, paymentRef, now); err != nil {
		return nil, err
	}

	s.commitSeats(ctx, event.ID, bookingID, booking.Seats)
	s.releaseLocks(ctx, event.ID, bookingID, booking.Seats)

	booking.Status = domain.BookingStatusConfirmed
	booking.ConfirmedAt = &now
	booking.ExpiresAt = nil

	s.publish(ctx, domain.NotificationBookingConfirmed, booking, event)

	span.SetStatus(codes.Ok, "")
	return &dto.ConfirmBookingResponse{
		BookingID:   booking.ID,
		Status:      booking.Status.String(),
		Seats:       booking.Seats,
		ConfirmedAt: now,
	}, nil
}

// CancelBooking cancels a pending or confirmed booking. Seats of a
// confirmed booking go back to the pool; a pending hold's seats were never
// committed, so only its locks are dropped.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.BelongsToUser(userID) {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	if booking.Status != domain.BookingStatusPending && booking.Status != domain.BookingStatusConfirmed {
		span.SetStatus(codes.Error, "invalid transition")
		return nil, domain.ErrInvalidTransition
	}
	wasConfirmed := booking.Status == domain.BookingStatusConfirmed

	// The cancel write is keyed on the status read above. If a confirm
	// slipped in between, the write misses and we never skip the seat
	// release for a booking that is in fact confirmed.
	now := time.Now()
	if err := s.bookingRepo.Cancel(ctx, bookingID, booking.Status, now); err != nil {
		return nil, err
	}

	if wasConfirmed {
		s.returnSeats(ctx, booking.EventID, booking.Seats)
	}
	s.releaseLocks(ctx, booking.EventID, bookingID, booking.Seats)

	booking.Status = domain.BookingStatusCancelled
	booking.CancelledAt = &now
	booking.ExpiresAt = nil

	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// RefundBooking refunds a confirmed booking within the refund window and
// returns its seats to the pool
func (s *bookingService) RefundBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.refund")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.BelongsToUser(userID) {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	if !booking.IsRefundableAt(now, s.refundWindow) {
		if booking.Status != domain.BookingStatusConfirmed {
			span.SetStatus(codes.Error, "invalid transition")
			return nil, domain.ErrInvalidTransition
		}
		span.SetStatus(codes.Error, "refund window closed")
		return nil, domain.ErrRefundNotEligible
	}

	if err := s.bookingRepo.Refund(ctx, bookingID, now); err != nil {
		return nil, err
	}

	s.returnSeats(ctx, booking.EventID, booking.Seats)

	booking.Status = domain.BookingStatusRefunded
	booking.RefundedAt = &now

	if event, err := s.eventRepo.GetByID(ctx, booking.EventID); err == nil {
		s.publish(ctx, domain.NotificationRefundAccepted, booking, event)
	}

	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// UpdateContact updates contact fields on a non-terminal booking
func (s *bookingService) UpdateContact(ctx context.Context, bookingID, userID string, req *dto.UpdateContactRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.update_contact")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.BelongsToUser(userID) {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	if err := s.bookingRepo.UpdateCustomerInfo(ctx, bookingID, req.CustomerName, req.CustomerEmail, req.CustomerPhone); err != nil {
		return nil, err
	}

	booking.CustomerName = req.CustomerName
	booking.CustomerEmail = req.CustomerEmail
	booking.CustomerPhone = req.CustomerPhone

	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// GetBooking retrieves a booking with its event summary
func (s *bookingService) GetBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if userID != "" && !booking.BelongsToUser(userID) {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	resp := dto.BookingFromDomain(booking)
	if event, err := s.eventRepo.GetByID(ctx, booking.EventID); err == nil {
		resp.Event = dto.EventSummaryFromDomain(event)
	}

	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// GetUserBookings retrieves a user's bookings, newest first
func (s *bookingService) GetUserBookings(ctx context.Context, userID string, page, pageSize int) ([]*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_user_bookings")
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("page", page),
	)

	bookings, err := s.bookingRepo.ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	// One event fetch per distinct event; detail reads are cached.
	summaries := make(map[string]*dto.EventSummary)
	out := make([]*dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		resp := dto.BookingFromDomain(b)
		if summary, ok := summaries[b.EventID]; ok {
			resp.Event = summary
		} else if event, err := s.eventRepo.GetByID(ctx, b.EventID); err == nil {
			summary := dto.EventSummaryFromDomain(event)
			summaries[b.EventID] = summary
			resp.Event = summary
		}
		out[i] = resp
	}

	span.SetAttributes(attribute.Int("count", len(out)))
	span.SetStatus(codes.Ok, "")
	return out, nil
}

// GetSeatMap reports which seats of an event cannot currently be booked
func (s *bookingService) GetSeatMap(ctx context.Context, eventID string) (*dto.SeatMapResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_seat_map")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	unavailable, err := s.ledger.UnavailableSeats(ctx, event, time.Now())
	if err != nil {
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.SeatMapResponse{
		EventID:          event.ID,
		TotalSeats:       event.TotalSeats,
		UnavailableSeats: unavailable,
	}, nil
}

// ExpireHolds transitions lapsed holds to expired, up to limit. A hold that
// was confirmed or cancelled between the scan and the write is skipped;
// that transition already won.
func (s *bookingService) ExpireHolds(ctx context.Context, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.expire_holds")
	defer span.End()

	now := time.Now()
	holds, err := s.bookingRepo.ListExpiredHolds(ctx, now, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	expired := 0
	for _, hold := range holds {
		if err := s.bookingRepo.MarkExpired(ctx, hold.ID, now); err != nil {
			if !errors.Is(err, domain.ErrInvalidTransition) {
				logger.Get().Error("failed to expire hold",
					zap.String("booking_id", hold.ID),
					zap.Error(err),
				)
			}
			continue
		}
		s.releaseLocks(ctx, hold.EventID, hold.ID, hold.Seats)
		expired++
	}

	span.SetAttributes(attribute.Int("expired", expired))
	span.SetStatus(codes.Ok, "")
	return expired, nil
}

// ReconcileConfirmedSeats re-commits seats of confirmed bookings whose
// commit write was lost, up to limit
func (s *bookingService) ReconcileConfirmedSeats(ctx context.Context, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.reconcile_confirmed_seats")
	defer span.End()

	bookings, err := s.bookingRepo.ListConfirmedMissingSeats(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	reconciled := 0
	for _, b := range bookings {
		if err := s.eventRepo.CommitSeats(ctx, b.EventID, b.Seats); err != nil {
			logger.Get().Error("failed to reconcile confirmed seats",
				zap.String("booking_id", b.ID),
				zap.String("event_id", b.EventID),
				zap.Error(err),
			)
			continue
		}
		logger.Get().Warn("re-committed seats for confirmed booking",
			zap.String("booking_id", b.ID),
			zap.String("event_id", b.EventID),
			zap.Strings("seats", b.Seats),
		)
		reconciled++
	}

	span.SetAttributes(attribute.Int("reconciled", reconciled))
	span.SetStatus(codes.Ok, "")
	return reconciled, nil
}

// conflictsExcludingSelf computes ledger conflicts for a booking's seats
// with the booking's own hold left out
func (s *bookingService) conflictsExcludingSelf(ctx context.Context, event *domain.Event, booking *domain.Booking, now time.Time) ([]string, error) {
	holds, err := s.bookingRepo.ListActiveHolds(ctx, event.ID, now)
	if err != nil {
		return nil, err
	}

	others := make([]string, 0, len(event.TakenSeats))
	others = append(others, event.TakenSeats...)
	for _, hold := range holds {
		if hold.ID == booking.ID {
			continue
		}
		others = append(others, hold.Seats...)
	}

	return domain.SeatOverlap(booking.Seats, domain.NormalizeSeats(others)), nil
}

// commitSeats retries the seat commit; a persistent failure is logged and
// left to the reconciliation pass
func (s *bookingService) commitSeats(ctx context.Context, eventID, bookingID string, seats []string) {
	result := s.retrier.Do(ctx, func(ctx context.Context) error {
		return s.eventRepo.CommitSeats(ctx, eventID, seats)
	})
	if !result.Success() {
		logger.Get().Error("seat commit failed, leaving to reconciliation",
			zap.String("booking_id", bookingID),
			zap.String("event_id", eventID),
			zap.Int("attempts", result.Attempts),
			zap.Error(result.Err),
		)
	}
}

// returnSeats retries the seat release; failures are logged
func (s *bookingService) returnSeats(ctx context.Context, eventID string, seats []string) {
	result := s.retrier.Do(ctx, func(ctx context.Context) error {
		return s.eventRepo.ReleaseSeats(ctx, eventID, seats)
	})
	if !result.Success() {
		logger.Get().Error("seat release failed",
			zap.String("event_id", eventID),
			zap.Strings("seats", seats),
			zap.Error(result.Err),
		)
	}
}

func (s *bookingService) releaseLocks(ctx context.Context, eventID, bookingID string, seats []string) {
	if err := s.seatLocks.ReleaseSeats(ctx, eventID, bookingID, seats); err != nil {
		logger.Get().Warn("failed to release seat locks",
			zap.String("booking_id", bookingID),
			zap.Error(err),
		)
	}
}

func (s *bookingService) publish(ctx context.Context, typ domain.NotificationType, booking *domain.Booking, event *domain.Event) {
	n := domain.NewNotification(uuid.New().String(), typ, booking, event, booking.CustomerEmail)
	if err := s.notifier.Publish(ctx, n); err != nil {
		logger.Get().Warn("failed to publish notification",
			zap.String("type", string(typ)),
			zap.String("booking_id", booking.ID),
			zap.Error(err),
		)
	}
}
