package domain

import (
	"strings"
	"time"
)

// EventStatus represents the publication status of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
)

// IsValid checks if the status is a known EventStatus
func (s EventStatus) IsValid() bool {
	return s == EventStatusDraft || s == EventStatusPublished
}

// String returns the string representation of EventStatus
func (s EventStatus) String() string {
	return string(s)
}

// Event is a bookable event with a fixed seat inventory.
//
// TakenSeats holds only seats of confirmed bookings; pending holds never
// appear here. All mutations of TakenSeats go through the event
// repository's CommitSeats/ReleaseSeats set operations.
type Event struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	StartTime     time.Time   `json:"start_time"`
	Location      string      `json:"location"`
	Categories    []string    `json:"categories,omitempty"`
	PricePerSeat  float64     `json:"price_per_seat"`
	TotalSeats    int         `json:"total_seats"`
	TakenSeats    []string    `json:"taken_seats"`
	Status        EventStatus `json:"status"`
	ImageURL      string      `json:"image_url,omitempty"`
	OrganizerName string      `json:"organizer_name,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Validate validates event fields
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrInvalidEvent
	}
	if e.TotalSeats <= 0 {
		return ErrInvalidEvent
	}
	if e.PricePerSeat < 0 {
		return ErrInvalidEvent
	}
	if e.Status != "" && !e.Status.IsValid() {
		return ErrInvalidEvent
	}
	if len(e.TakenSeats) > e.TotalSeats {
		return ErrInvalidEvent
	}
	return nil
}

// IsPublished reports whether the event is open for booking
func (e *Event) IsPublished() bool {
	return e.Status == EventStatusPublished
}

// SeatTaken reports whether a seat is in the committed taken set
func (e *Event) SeatTaken(seat string) bool {
	for _, s := range e.TakenSeats {
		if s == seat {
			return true
		}
	}
	return false
}

// AvailableSeatCount returns how many seats are not yet committed
func (e *Event) AvailableSeatCount() int {
	return e.TotalSeats - len(e.TakenSeats)
}
