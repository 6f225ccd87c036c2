package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/seatsurge/ticketd/internal/domain"
)

func TestSeatLedger_UnavailableSeats(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		takenSeats []string
		holds      []*domain.Booking
		want       []string
	}{
		{
			name:       "union of committed seats and live holds",
			takenSeats: []string{"A1", "B2"},
			holds: []*domain.Booking{
				domain.NewBooking("b1", "event-1", "user-1", []string{"C3"}, 50, now.Add(10*time.Minute)),
				domain.NewBooking("b2", "event-1", "user-2", []string{"B2", "D4"}, 50, now.Add(10*time.Minute)),
			},
			want: []string{"A1", "B2", "C3", "D4"},
		},
		{
			name:       "no holds",
			takenSeats: []string{"A1"},
			holds:      nil,
			want:       []string{"A1"},
		},
		{
			name:       "empty ledger",
			takenSeats: nil,
			holds:      nil,
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookingRepo := &MockBookingRepository{
				ListActiveHoldsFunc: func(ctx context.Context, eventID string, at time.Time) ([]*domain.Booking, error) {
					return tt.holds, nil
				},
			}
			ledger := NewSeatLedger(bookingRepo)

			event := publishedEvent()
			event.TakenSeats = tt.takenSeats

			got, err := ledger.UnavailableSeats(context.Background(), event, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
