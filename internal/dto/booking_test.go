package dto

import (
	"testing"
	"time"

	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBookingFromDomain(t *testing.T) {
	now := time.Now()
	booking := domain.NewBooking("booking-1", "event-1", "user-1", []string{"A1", "A2"}, 50, now.Add(30*time.Minute))
	booking.CustomerName = "Jane Doe"
	booking.CustomerEmail = "jane@example.com"

	resp := BookingFromDomain(booking)

	assert.Equal(t, "booking-1", resp.ID)
	assert.Equal(t, "event-1", resp.EventID)
	assert.Equal(t, []string{"A1", "A2"}, resp.Seats)
	assert.Equal(t, 100.0, resp.TotalPrice)
	assert.Equal(t, "pending", resp.Status)
	assert.NotNil(t, resp.ExpiresAt)
	assert.Nil(t, resp.ConfirmedAt)
	assert.Nil(t, resp.Event)
}

func TestBookingFromDomain_Confirmed(t *testing.T) {
	now := time.Now()
	booking := domain.NewBooking("booking-1", "event-1", "user-1", []string{"A1"}, 50, now.Add(30*time.Minute))
	assert.NoError(t, booking.Confirm("card_****4242", now))

	resp := BookingFromDomain(booking)

	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "card_****4242", resp.PaymentRef)
	assert.Nil(t, resp.ExpiresAt, "confirm clears the hold deadline")
	assert.NotNil(t, resp.ConfirmedAt)
}

func TestEventSummaryFromDomain(t *testing.T) {
	event := &domain.Event{
		ID:        "event-1",
		Title:     "Test Concert",
		StartTime: time.Now().Add(48 * time.Hour),
		Location:  "Main Hall",
		ImageURL:  "/static/images/event-1.png",
	}

	summary := EventSummaryFromDomain(event)

	assert.Equal(t, "event-1", summary.ID)
	assert.Equal(t, "Test Concert", summary.Title)
	assert.Equal(t, "Main Hall", summary.Location)
	assert.Equal(t, "/static/images/event-1.png", summary.ImageURL)
}

func TestEventFromDomain(t *testing.T) {
	event := &domain.Event{
		ID:           "event-1",
		Title:        "Test Concert",
		StartTime:    time.Now().Add(48 * time.Hour),
		Location:     "Main Hall",
		PricePerSeat: 50,
		TotalSeats:   100,
		TakenSeats:   []string{"A1", "A2", "A3"},
		Status:       domain.EventStatusPublished,
	}

	resp := EventFromDomain(event)

	assert.Equal(t, 100, resp.TotalSeats)
	assert.Equal(t, 97, resp.AvailableSeats)
	assert.Equal(t, "published", resp.Status)
}
