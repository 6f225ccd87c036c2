package domain

import (
	"errors"
	"testing"
	"time"
)

func validEvent() *Event {
	return &Event{
		ID:           "event-1",
		Title:        "Test Concert",
		StartTime:    time.Now().Add(48 * time.Hour),
		Location:     "Main Hall",
		PricePerSeat: 80,
		TotalSeats:   100,
		Status:       EventStatusDraft,
	}
}

func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Event)
		wantErr error
	}{
		{
			name:    "valid event",
			mutate:  func(e *Event) {},
			wantErr: nil,
		},
		{
			name:    "missing title",
			mutate:  func(e *Event) { e.Title = "  " },
			wantErr: ErrInvalidEvent,
		},
		{
			name:    "zero seats",
			mutate:  func(e *Event) { e.TotalSeats = 0 },
			wantErr: ErrInvalidEvent,
		},
		{
			name:    "negative price",
			mutate:  func(e *Event) { e.PricePerSeat = -1 },
			wantErr: ErrInvalidEvent,
		},
		{
			name:    "unknown status",
			mutate:  func(e *Event) { e.Status = "archived" },
			wantErr: ErrInvalidEvent,
		},
		{
			name: "taken seats beyond capacity",
			mutate: func(e *Event) {
				e.TotalSeats = 1
				e.TakenSeats = []string{"A1", "A2"}
			},
			wantErr: ErrInvalidEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := validEvent()
			tt.mutate(event)
			if err := event.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEvent_SeatAccounting(t *testing.T) {
	event := validEvent()
	event.TakenSeats = []string{"A1", "B2"}

	if !event.SeatTaken("A1") {
		t.Error("expected A1 to be taken")
	}
	if event.SeatTaken("C3") {
		t.Error("expected C3 to be free")
	}
	if got := event.AvailableSeatCount(); got != 98 {
		t.Errorf("expected 98 available seats, got %d", got)
	}
}

func TestEvent_IsPublished(t *testing.T) {
	event := validEvent()
	if event.IsPublished() {
		t.Error("draft event should not be published")
	}
	event.Status = EventStatusPublished
	if !event.IsPublished() {
		t.Error("published event should report published")
	}
}
