package domain

import (
	"sort"
	"strings"
	"time"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
	BookingStatusRefunded  BookingStatus = "refunded"
)

// IsValid checks if the status is a known BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled,
		BookingStatusExpired, BookingStatusRefunded:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusCancelled, BookingStatusExpired, BookingStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// Booking is one ticket-purchase attempt for one event.
//
// The seat set is fixed at creation. ExpiresAt is set only while the
// booking is pending; it is cleared on confirmation so an illegal
// confirmed-with-deadline record cannot be written.
type Booking struct {
	ID           string        `json:"id"`
	EventID      string        `json:"event_id"`
	UserID       string        `json:"user_id"`
	Seats        []string      `json:"seats"`
	PricePerSeat float64       `json:"price_per_seat"`
	Status       BookingStatus `json:"status"`

	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`

	// PaymentRef is an opaque masked card reference, never a full card number
	PaymentRef string `json:"payment_ref,omitempty"`

	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewBooking creates a pending booking holding the given seats until deadline
func NewBooking(id, eventID, userID string, seats []string, pricePerSeat float64, deadline time.Time) *Booking {
	now := time.Now()
	expires := deadline
	return &Booking{
		ID:           id,
		EventID:      eventID,
		UserID:       userID,
		Seats:        NormalizeSeats(seats),
		PricePerSeat: pricePerSeat,
		Status:       BookingStatusPending,
		ExpiresAt:    &expires,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates booking fields at creation time
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.EventID) == "" {
		return ErrInvalidEventID
	}
	if strings.TrimSpace(b.UserID) == "" {
		return ErrInvalidUserID
	}
	if len(b.Seats) == 0 {
		return ErrInvalidSeats
	}
	for _, seat := range b.Seats {
		if strings.TrimSpace(seat) == "" {
			return ErrInvalidSeats
		}
	}
	if b.PricePerSeat < 0 {
		return ErrInvalidPrice
	}
	if !b.Status.IsValid() {
		return ErrInvalidBookingStatus
	}
	return nil
}

// TotalPrice returns the price snapshot for the whole seat set
func (b *Booking) TotalPrice() float64 {
	return b.PricePerSeat * float64(len(b.Seats))
}

// IsExpiredAt reports whether the hold deadline has passed at t.
// Only pending bookings carry a deadline.
func (b *Booking) IsExpiredAt(t time.Time) bool {
	return b.Status == BookingStatusPending && b.ExpiresAt != nil && t.After(*b.ExpiresAt)
}

// HoldsSeatsAt reports whether the booking makes its seats unavailable at t:
// confirmed, or pending with a live hold.
func (b *Booking) HoldsSeatsAt(t time.Time) bool {
	if b.Status == BookingStatusConfirmed {
		return true
	}
	return b.Status == BookingStatusPending && !b.IsExpiredAt(t)
}

// CanConfirm reports whether the booking can be confirmed at t
func (b *Booking) CanConfirm(t time.Time) bool {
	return b.Status == BookingStatusPending && !b.IsExpiredAt(t)
}

// CanCancel reports whether the booking can be cancelled
func (b *Booking) CanCancel() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// IsRefundableAt reports whether the booking can be refunded at t,
// given the refund eligibility window measured from confirmation.
func (b *Booking) IsRefundableAt(t time.Time, window time.Duration) bool {
	if b.Status != BookingStatusConfirmed || b.ConfirmedAt == nil {
		return false
	}
	return t.Sub(*b.ConfirmedAt) <= window
}

// BelongsToUser checks booking ownership
func (b *Booking) BelongsToUser(userID string) bool {
	return b.UserID == userID
}

// Confirm transitions the booking to confirmed, clearing the hold deadline
func (b *Booking) Confirm(paymentRef string, now time.Time) error {
	if b.Status != BookingStatusPending {
		return ErrInvalidTransition
	}
	if b.IsExpiredAt(now) {
		return ErrBookingExpired
	}
	b.Status = BookingStatusConfirmed
	b.PaymentRef = paymentRef
	b.ConfirmedAt = &now
	b.ExpiresAt = nil
	b.UpdatedAt = now
	return nil
}

// Cancel transitions the booking to cancelled
func (b *Booking) Cancel(now time.Time) error {
	if !b.CanCancel() {
		return ErrInvalidTransition
	}
	b.Status = BookingStatusCancelled
	b.CancelledAt = &now
	b.ExpiresAt = nil
	b.UpdatedAt = now
	return nil
}

// Expire transitions a pending booking to expired
func (b *Booking) Expire(now time.Time) error {
	if b.Status != BookingStatusPending {
		return ErrInvalidTransition
	}
	b.Status = BookingStatusExpired
	b.ExpiresAt = nil
	b.UpdatedAt = now
	return nil
}

// Refund transitions a confirmed booking to refunded
func (b *Booking) Refund(now time.Time, window time.Duration) error {
	if !b.IsRefundableAt(now, window) {
		return ErrRefundNotEligible
	}
	b.Status = BookingStatusRefunded
	b.RefundedAt = &now
	b.UpdatedAt = now
	return nil
}

// NormalizeSeats trims, deduplicates and sorts a seat list
func NormalizeSeats(seats []string) []string {
	seen := make(map[string]struct{}, len(seats))
	out := make([]string, 0, len(seats))
	for _, seat := range seats {
		seat = strings.TrimSpace(seat)
		if seat == "" {
			continue
		}
		if _, ok := seen[seat]; ok {
			continue
		}
		seen[seat] = struct{}{}
		out = append(out, seat)
	}
	sort.Strings(out)
	return out
}

// SeatOverlap returns seats present in both lists, sorted
func SeatOverlap(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, seat := range a {
		set[seat] = struct{}{}
	}
	var overlap []string
	seen := make(map[string]struct{})
	for _, seat := range b {
		if _, ok := set[seat]; !ok {
			continue
		}
		if _, dup := seen[seat]; dup {
			continue
		}
		seen[seat] = struct{}{}
		overlap = append(overlap, seat)
	}
	sort.Strings(overlap)
	return overlap
}
