package domain

import "time"

// NotificationType identifies the kind of booking notification
type NotificationType string

const (
	NotificationBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationRefundAccepted   NotificationType = "REFUND_ACCEPTED"
)

// Notification is the message emitted after a booking transition.
// Delivery is best-effort; producers never fail the triggering operation.
type Notification struct {
	ID             string           `json:"id"`
	Type           NotificationType `json:"type"`
	BookingID      string           `json:"booking_id"`
	EventID        string           `json:"event_id"`
	EventTitle     string           `json:"event_title"`
	Seats          []string         `json:"seats"`
	TotalPrice     float64          `json:"total_price"`
	RecipientEmail string           `json:"recipient_email"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

// Key returns the partition key for the notification stream.
// Keyed by booking so transitions of one booking stay ordered.
func (n *Notification) Key() string {
	return n.BookingID
}

// NewNotification builds a notification for a booking transition
func NewNotification(id string, typ NotificationType, booking *Booking, event *Event, recipient string) *Notification {
	return &Notification{
		ID:             id,
		Type:           typ,
		BookingID:      booking.ID,
		EventID:        event.ID,
		EventTitle:     event.Title,
		Seats:          booking.Seats,
		TotalPrice:     booking.TotalPrice(),
		RecipientEmail: recipient,
		OccurredAt:     time.Now(),
	}
}
