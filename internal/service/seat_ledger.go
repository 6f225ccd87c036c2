package service

import (
	"context"
	"time"

	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/internal/repository"
	"github.com/seatsurge/ticketd/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SeatLedger computes which seats of an event cannot currently be booked.
// A seat is unavailable when it is committed on the event or held by a
// pending booking whose deadline has not passed. Lapsed holds drop out of
// the ledger immediately, before any sweep touches them.
type SeatLedger struct {
	bookingRepo repository.BookingRepository
}

// NewSeatLedger creates a new SeatLedger
func NewSeatLedger(bookingRepo repository.BookingRepository) *SeatLedger {
	return &SeatLedger{bookingRepo: bookingRepo}
}

// UnavailableSeats returns the sorted union of the event's committed seats
// and the seats of its live holds at now.
func (l *SeatLedger) UnavailableSeats(ctx context.Context, event *domain.Event, now time.Time) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seatledger.unavailable_seats")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", event.ID))

	holds, err := l.bookingRepo.ListActiveHolds(ctx, event.ID, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	seats := make([]string, 0, len(event.TakenSeats))
	seats = append(seats, event.TakenSeats...)
	for _, hold := range holds {
		seats = append(seats, hold.Seats...)
	}

	unavailable := domain.NormalizeSeats(seats)

	span.SetAttributes(attribute.Int("unavailable_count", len(unavailable)))
	span.SetStatus(codes.Ok, "")
	return unavailable, nil
}
