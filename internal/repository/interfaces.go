package repository

import (
	"context"
	"time"

	"github.com/seatsurge/ticketd/internal/domain"
)

// BookingRepository defines persistence operations for bookings.
// All state transitions are conditional writes keyed on the expected
// current status, so concurrent transitions on one booking cannot both win.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error)

	// ListActiveHolds returns pending bookings for an event whose hold
	// deadline is still in the future at now.
	ListActiveHolds(ctx context.Context, eventID string, now time.Time) ([]*domain.Booking, error)

	// ListExpiredHolds returns pending bookings whose deadline passed before now.
	ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error)

	// ListConfirmedMissingSeats returns confirmed bookings whose seats are
	// not all present in their event's taken set (partial confirm failures).
	ListConfirmedMissingSeats(ctx context.Context, limit int) ([]*domain.Booking, error)

	// Confirm transitions pending -> confirmed iff the hold is still live at now.
	Confirm(ctx context.Context, id, paymentRef string, now time.Time) error

	// Cancel transitions expected -> cancelled, keyed on the status the
	// caller read. A transition that landed in between makes this a no-op
	// returning ErrInvalidTransition, so the caller's seat handling never
	// runs against a status it did not see.
	Cancel(ctx context.Context, id string, expected domain.BookingStatus, now time.Time) error

	// MarkExpired transitions pending -> expired iff the deadline passed before now.
	MarkExpired(ctx context.Context, id string, now time.Time) error

	// Refund transitions confirmed -> refunded.
	Refund(ctx context.Context, id string, now time.Time) error

	UpdateCustomerInfo(ctx context.Context, id, name, email, phone string) error
}

// EventFilter narrows event list queries
type EventFilter struct {
	Status   string
	Category string
	Search   string
}

// EventRepository defines persistence operations for events.
// CommitSeats and ReleaseSeats are the only write paths for an event's
// taken-seat set; both are expressed as set operations on the stored
// array so concurrent mutations of different bookings never lose updates.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error)

	// CommitSeats adds seats to the event's taken set (set union, idempotent).
	CommitSeats(ctx context.Context, eventID string, seats []string) error

	// ReleaseSeats removes seats from the event's taken set (set difference, idempotent).
	ReleaseSeats(ctx context.Context, eventID string, seats []string) error
}

// SeatLockResult is the outcome of a seat lock acquisition
type SeatLockResult struct {
	Acquired  bool
	Conflicts []string
}

// SeatLockRepository guards seat holds against concurrent creation.
// Acquisition is all-or-nothing across the requested seats; locks expire
// on their own so an abandoned hold never wedges a seat.
type SeatLockRepository interface {
	AcquireSeats(ctx context.Context, eventID, bookingID string, seats []string, ttl time.Duration) (*SeatLockResult, error)
	ReleaseSeats(ctx context.Context, eventID, bookingID string, seats []string) error
}

// UserRepository defines persistence operations for users
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
