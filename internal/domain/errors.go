package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	// Booking errors
	ErrBookingNotFound   = errors.New("booking not found")
	ErrBookingExpired    = errors.New("booking hold has expired")
	ErrInvalidTransition = errors.New("invalid booking state transition")
	ErrRefundNotEligible = errors.New("booking is not eligible for refund")

	// Validation errors
	ErrInvalidSeats         = errors.New("seat list must not be empty")
	ErrInvalidEventID       = errors.New("invalid event id")
	ErrInvalidUserID        = errors.New("invalid user id")
	ErrInvalidPrice         = errors.New("price per seat must not be negative")
	ErrInvalidBookingStatus = errors.New("invalid booking status")
	ErrCapacityExceeded     = errors.New("requested seats exceed event capacity")

	// Event errors
	ErrEventNotFound      = errors.New("event not found")
	ErrEventNotPublished  = errors.New("event is not open for booking")
	ErrInvalidEvent       = errors.New("invalid event")
	ErrInvalidImageFormat = errors.New("unsupported image format")

	// Authorization errors
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidToken = errors.New("invalid token")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Infrastructure errors
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// SeatConflictError reports which requested seats are already unavailable.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already taken: %s", strings.Join(e.Seats, ", "))
}

// NewSeatConflictError creates a SeatConflictError for the given seats
func NewSeatConflictError(seats []string) *SeatConflictError {
	return &SeatConflictError{Seats: seats}
}
