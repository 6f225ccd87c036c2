package dto

import (
	"time"

	"github.com/seatsurge/ticketd/internal/domain"
)

// CreateEventRequest represents a request to create an event
type CreateEventRequest struct {
	Title         string    `json:"title" binding:"required"`
	Description   string    `json:"description,omitempty"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	Location      string    `json:"location" binding:"required"`
	Categories    []string  `json:"categories,omitempty"`
	PricePerSeat  float64   `json:"price_per_seat" binding:"min=0"`
	TotalSeats    int       `json:"total_seats" binding:"required,min=1"`
	OrganizerName string    `json:"organizer_name,omitempty"`
}

// UpdateEventRequest represents a request to update an event
type UpdateEventRequest struct {
	Title         string    `json:"title" binding:"required"`
	Description   string    `json:"description,omitempty"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	Location      string    `json:"location" binding:"required"`
	Categories    []string  `json:"categories,omitempty"`
	PricePerSeat  float64   `json:"price_per_seat" binding:"min=0"`
	TotalSeats    int       `json:"total_seats" binding:"required,min=1"`
	OrganizerName string    `json:"organizer_name,omitempty"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	StartTime      time.Time `json:"start_time"`
	Location       string    `json:"location"`
	Categories     []string  `json:"categories,omitempty"`
	PricePerSeat   float64   `json:"price_per_seat"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	Status         string    `json:"status"`
	ImageURL       string    `json:"image_url,omitempty"`
	OrganizerName  string    `json:"organizer_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// SeatMapResponse reports which seats of an event cannot currently be booked
type SeatMapResponse struct {
	EventID          string   `json:"event_id"`
	TotalSeats       int      `json:"total_seats"`
	UnavailableSeats []string `json:"unavailable_seats"`
}

// EventFromDomain converts a domain Event to an EventResponse
func EventFromDomain(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		StartTime:      e.StartTime,
		Location:       e.Location,
		Categories:     e.Categories,
		PricePerSeat:   e.PricePerSeat,
		TotalSeats:     e.TotalSeats,
		AvailableSeats: e.AvailableSeatCount(),
		Status:         e.Status.String(),
		ImageURL:       e.ImageURL,
		OrganizerName:  e.OrganizerName,
		CreatedAt:      e.CreatedAt,
	}
}

// EventsFromDomain converts a slice of domain Events
func EventsFromDomain(events []*domain.Event) []*EventResponse {
	out := make([]*EventResponse, len(events))
	for i, e := range events {
		out[i] = EventFromDomain(e)
	}
	return out
}
