package dto

import (
	"time"

	"github.com/seatsurge/ticketd/internal/domain"
)

// CreateHoldRequest represents a request to hold seats on an event
type CreateHoldRequest struct {
	EventID       string   `json:"event_id" binding:"required"`
	Seats         []string `json:"seats" binding:"required,min=1,max=10"`
	CustomerName  string   `json:"customer_name" binding:"required"`
	CustomerEmail string   `json:"customer_email" binding:"required,email"`
	CustomerPhone string   `json:"customer_phone,omitempty"`
}

// CreateHoldResponse represents the created hold
type CreateHoldResponse struct {
	BookingID  string    `json:"booking_id"`
	Status     string    `json:"status"`
	Seats      []string  `json:"seats"`
	TotalPrice float64   `json:"total_price"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ConfirmBookingRequest represents a request to confirm a held booking
type ConfirmBookingRequest struct {
	PaymentRef string `json:"payment_ref,omitempty"`
}

// ConfirmBookingResponse represents the result of a confirm
type ConfirmBookingResponse struct {
	BookingID   string    `json:"booking_id"`
	Status      string    `json:"status"`
	Seats       []string  `json:"seats"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// UpdateContactRequest represents a contact-info update on a booking
type UpdateContactRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	CustomerPhone string `json:"customer_phone,omitempty"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID            string     `json:"id"`
	EventID       string     `json:"event_id"`
	UserID        string     `json:"user_id"`
	Seats         []string   `json:"seats"`
	PricePerSeat  float64    `json:"price_per_seat"`
	TotalPrice    float64    `json:"total_price"`
	Status        string     `json:"status"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	CustomerPhone string     `json:"customer_phone,omitempty"`
	PaymentRef    string     `json:"payment_ref,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	Event *EventSummary `json:"event,omitempty"`
}

// EventSummary is the slim event view embedded in booking listings
type EventSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	Location  string    `json:"location"`
	ImageURL  string    `json:"image_url,omitempty"`
}

// BookingFromDomain converts a domain Booking to a BookingResponse
func BookingFromDomain(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:            b.ID,
		EventID:       b.EventID,
		UserID:        b.UserID,
		Seats:         b.Seats,
		PricePerSeat:  b.PricePerSeat,
		TotalPrice:    b.TotalPrice(),
		Status:        b.Status.String(),
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		PaymentRef:    b.PaymentRef,
		ExpiresAt:     b.ExpiresAt,
		ConfirmedAt:   b.ConfirmedAt,
		CancelledAt:   b.CancelledAt,
		RefundedAt:    b.RefundedAt,
		CreatedAt:     b.CreatedAt,
	}
}

// EventSummaryFromDomain converts a domain Event to its slim listing view
func EventSummaryFromDomain(e *domain.Event) *EventSummary {
	return &EventSummary{
		ID:        e.ID,
		Title:     e.Title,
		StartTime: e.StartTime,
		Location:  e.Location,
		ImageURL:  e.ImageURL,
	}
}
