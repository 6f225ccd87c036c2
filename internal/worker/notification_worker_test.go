package worker

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/pkg/kafka"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

func newTestWorker() (*NotificationWorker, *[]sentMail) {
	w := NewNotificationWorker(nil, &MailerConfig{From: "tickets@example.com"})
	var sent []sentMail
	w.sendMail = func(to, subject, body string) error {
		sent = append(sent, sentMail{to: to, subject: subject, body: body})
		return nil
	}
	return w, &sent
}

func notificationMessage(t *testing.T, n *domain.Notification) *kafka.Message {
	t.Helper()
	value, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return &kafka.Message{
		Topic: "booking.notifications",
		Key:   []byte(n.Key()),
		Value: value,
	}
}

func TestNotificationWorker_Handle(t *testing.T) {
	notification := func(typ domain.NotificationType) *domain.Notification {
		return &domain.Notification{
			ID:             "n-1",
			Type:           typ,
			BookingID:      "booking-1",
			EventID:        "event-1",
			EventTitle:     "Test Concert",
			Seats:          []string{"A1", "A2"},
			TotalPrice:     100,
			RecipientEmail: "jane@example.com",
			OccurredAt:     time.Now(),
		}
	}

	t.Run("booking confirmed email", func(t *testing.T) {
		w, sent := newTestWorker()
		w.handle(notificationMessage(t, notification(domain.NotificationBookingConfirmed)))

		if len(*sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(*sent))
		}
		mail := (*sent)[0]
		if mail.to != "jane@example.com" {
			t.Errorf("expected recipient jane@example.com, got %s", mail.to)
		}
		if !strings.Contains(mail.subject, "Booking confirmed") {
			t.Errorf("unexpected subject: %s", mail.subject)
		}
		if !strings.Contains(mail.body, "A1, A2") || !strings.Contains(mail.body, "booking-1") {
			t.Errorf("unexpected body: %s", mail.body)
		}
	})

	t.Run("refund accepted email", func(t *testing.T) {
		w, sent := newTestWorker()
		w.handle(notificationMessage(t, notification(domain.NotificationRefundAccepted)))

		if len(*sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(*sent))
		}
		if !strings.Contains((*sent)[0].subject, "Refund accepted") {
			t.Errorf("unexpected subject: %s", (*sent)[0].subject)
		}
	})

	t.Run("malformed message is dropped", func(t *testing.T) {
		w, sent := newTestWorker()
		w.handle(&kafka.Message{Topic: "booking.notifications", Value: []byte("{not json")})

		if len(*sent) != 0 {
			t.Errorf("expected no email, got %d", len(*sent))
		}
	})

	t.Run("missing recipient is dropped", func(t *testing.T) {
		w, sent := newTestWorker()
		n := notification(domain.NotificationBookingConfirmed)
		n.RecipientEmail = ""
		w.handle(notificationMessage(t, n))

		if len(*sent) != 0 {
			t.Errorf("expected no email, got %d", len(*sent))
		}
	})

	t.Run("unknown type is dropped", func(t *testing.T) {
		w, sent := newTestWorker()
		n := notification("SOMETHING_ELSE")
		w.handle(notificationMessage(t, n))

		if len(*sent) != 0 {
			t.Errorf("expected no email, got %d", len(*sent))
		}
	})
}

func TestComposeEmail(t *testing.T) {
	subject, _ := composeEmail(&domain.Notification{Type: "UNKNOWN"})
	if subject != "" {
		t.Errorf("expected empty subject for unknown type, got %q", subject)
	}
}
