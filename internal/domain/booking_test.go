package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func pendingBooking(expiresAt time.Time) *Booking {
	return NewBooking("booking-1", "event-1", "user-1", []string{"A1", "A2"}, 50, expiresAt)
}

func TestNewBooking(t *testing.T) {
	deadline := time.Now().Add(30 * time.Minute)
	b := NewBooking("booking-1", "event-1", "user-1", []string{"B2", "A1", "A1", " B2 "}, 25, deadline)

	if b.Status != BookingStatusPending {
		t.Errorf("expected status %s, got %s", BookingStatusPending, b.Status)
	}
	if !reflect.DeepEqual(b.Seats, []string{"A1", "B2"}) {
		t.Errorf("expected normalized seats [A1 B2], got %v", b.Seats)
	}
	if b.ExpiresAt == nil || !b.ExpiresAt.Equal(deadline) {
		t.Errorf("expected expiry %v, got %v", deadline, b.ExpiresAt)
	}
	if b.TotalPrice() != 50 {
		t.Errorf("expected total price 50, got %v", b.TotalPrice())
	}
}

func TestBooking_Validate(t *testing.T) {
	deadline := time.Now().Add(30 * time.Minute)

	tests := []struct {
		name    string
		booking *Booking
		wantErr error
	}{
		{
			name:    "valid booking",
			booking: NewBooking("b1", "event-1", "user-1", []string{"A1"}, 10, deadline),
			wantErr: nil,
		},
		{
			name:    "missing event id",
			booking: NewBooking("b1", "  ", "user-1", []string{"A1"}, 10, deadline),
			wantErr: ErrInvalidEventID,
		},
		{
			name:    "missing user id",
			booking: NewBooking("b1", "event-1", "", []string{"A1"}, 10, deadline),
			wantErr: ErrInvalidUserID,
		},
		{
			name:    "empty seat list",
			booking: NewBooking("b1", "event-1", "user-1", nil, 10, deadline),
			wantErr: ErrInvalidSeats,
		},
		{
			name:    "negative price",
			booking: NewBooking("b1", "event-1", "user-1", []string{"A1"}, -1, deadline),
			wantErr: ErrInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.booking.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBooking_Confirm(t *testing.T) {
	now := time.Now()

	t.Run("pending booking confirms", func(t *testing.T) {
		b := pendingBooking(now.Add(30 * time.Minute))
		if err := b.Confirm("card_****4242", now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.Status != BookingStatusConfirmed {
			t.Errorf("expected status %s, got %s", BookingStatusConfirmed, b.Status)
		}
		if b.ExpiresAt != nil {
			t.Error("expected hold deadline to be cleared")
		}
		if b.ConfirmedAt == nil || !b.ConfirmedAt.Equal(now) {
			t.Errorf("expected confirmed_at %v, got %v", now, b.ConfirmedAt)
		}
		if b.PaymentRef != "card_****4242" {
			t.Errorf("expected payment ref to be recorded, got %q", b.PaymentRef)
		}
	})

	t.Run("expired hold cannot confirm", func(t *testing.T) {
		b := pendingBooking(now.Add(-time.Minute))
		if err := b.Confirm("card_****4242", now); !errors.Is(err, ErrBookingExpired) {
			t.Errorf("expected ErrBookingExpired, got %v", err)
		}
		if b.Status != BookingStatusPending {
			t.Errorf("expected status unchanged, got %s", b.Status)
		}
	})

	t.Run("cancelled booking cannot confirm", func(t *testing.T) {
		b := pendingBooking(now.Add(30 * time.Minute))
		if err := b.Cancel(now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := b.Confirm("card_****4242", now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestBooking_Cancel(t *testing.T) {
	now := time.Now()

	t.Run("pending booking cancels", func(t *testing.T) {
		b := pendingBooking(now.Add(30 * time.Minute))
		if err := b.Cancel(now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.Status != BookingStatusCancelled {
			t.Errorf("expected status %s, got %s", BookingStatusCancelled, b.Status)
		}
		if b.ExpiresAt != nil {
			t.Error("expected hold deadline to be cleared")
		}
	})

	t.Run("confirmed booking cancels", func(t *testing.T) {
		b := pendingBooking(now.Add(30 * time.Minute))
		if err := b.Confirm("ref", now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := b.Cancel(now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.Status != BookingStatusCancelled {
			t.Errorf("expected status %s, got %s", BookingStatusCancelled, b.Status)
		}
	})

	t.Run("refunded booking cannot cancel", func(t *testing.T) {
		b := pendingBooking(now.Add(30 * time.Minute))
		if err := b.Confirm("ref", now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := b.Refund(now, 24*time.Hour); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := b.Cancel(now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestBooking_Expire(t *testing.T) {
	now := time.Now()

	b := pendingBooking(now.Add(-time.Minute))
	if err := b.Expire(now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != BookingStatusExpired {
		t.Errorf("expected status %s, got %s", BookingStatusExpired, b.Status)
	}

	if err := b.Expire(now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on second expire, got %v", err)
	}
}

func TestBooking_Refund(t *testing.T) {
	confirmed := time.Now()
	window := 24 * time.Hour

	tests := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{
			name:    "inside refund window",
			at:      confirmed.Add(23 * time.Hour),
			wantErr: nil,
		},
		{
			name:    "exactly at window edge",
			at:      confirmed.Add(window),
			wantErr: nil,
		},
		{
			name:    "outside refund window",
			at:      confirmed.Add(25 * time.Hour),
			wantErr: ErrRefundNotEligible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pendingBooking(confirmed.Add(30 * time.Minute))
			if err := b.Confirm("ref", confirmed); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			err := b.Refund(tt.at, window)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && b.Status != BookingStatusRefunded {
				t.Errorf("expected status %s, got %s", BookingStatusRefunded, b.Status)
			}
		})
	}

	t.Run("pending booking cannot refund", func(t *testing.T) {
		b := pendingBooking(confirmed.Add(30 * time.Minute))
		if err := b.Refund(confirmed, window); !errors.Is(err, ErrRefundNotEligible) {
			t.Errorf("expected ErrRefundNotEligible, got %v", err)
		}
	})
}

func TestBooking_HoldsSeatsAt(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		booking func() *Booking
		want    bool
	}{
		{
			name:    "live pending hold",
			booking: func() *Booking { return pendingBooking(now.Add(time.Minute)) },
			want:    true,
		},
		{
			name:    "lapsed pending hold",
			booking: func() *Booking { return pendingBooking(now.Add(-time.Minute)) },
			want:    false,
		},
		{
			name: "confirmed booking",
			booking: func() *Booking {
				b := pendingBooking(now.Add(time.Minute))
				b.Confirm("ref", now)
				return b
			},
			want: true,
		},
		{
			name: "cancelled booking",
			booking: func() *Booking {
				b := pendingBooking(now.Add(time.Minute))
				b.Cancel(now)
				return b
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.booking().HoldsSeatsAt(now); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNormalizeSeats(t *testing.T) {
	tests := []struct {
		name  string
		seats []string
		want  []string
	}{
		{
			name:  "dedupes and sorts",
			seats: []string{"B2", "A1", "B2", "A10"},
			want:  []string{"A1", "A10", "B2"},
		},
		{
			name:  "trims whitespace and drops blanks",
			seats: []string{" A1 ", "", "  "},
			want:  []string{"A1"},
		},
		{
			name:  "empty input",
			seats: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSeats(tt.seats)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSeatOverlap(t *testing.T) {
	got := SeatOverlap([]string{"A1", "B2", "C3"}, []string{"C3", "D4", "A1", "A1"})
	if !reflect.DeepEqual(got, []string{"A1", "C3"}) {
		t.Errorf("expected [A1 C3], got %v", got)
	}

	if got := SeatOverlap([]string{"A1"}, []string{"B2"}); len(got) != 0 {
		t.Errorf("expected no overlap, got %v", got)
	}
}
