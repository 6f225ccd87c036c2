package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/pkg/kafka"
	"github.com/seatsurge/ticketd/pkg/logger"
	"go.uber.org/zap"
)

// MailerConfig contains SMTP settings for outgoing notification email
type MailerConfig struct {
	Addr     string
	Host     string
	From     string
	Password string
}

// NotificationWorker consumes booking notifications from Kafka and sends
// the matching email. One bad message is logged and skipped; the stream
// keeps moving.
type NotificationWorker struct {
	consumer *kafka.Consumer
	mailer   *MailerConfig
	log      *logger.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool

	// sendMail is swappable in tests
	sendMail func(to, subject, body string) error
}

// NewNotificationWorker creates a new NotificationWorker
func NewNotificationWorker(consumer *kafka.Consumer, mailer *MailerConfig) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		mailer:   mailer,
		log:      logger.Get(),
		stopCh:   make(chan struct{}),
	}
	w.sendMail = w.smtpSend
	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("notification worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting notification worker")

	w.wg.Add(1)
	go w.consume(ctx)

	return nil
}

// Stop stops the worker and waits for the in-flight poll to finish
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping notification worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Notification worker stopped")
}

func (w *NotificationWorker) consume(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		default:
		}

		msgs, err := w.consumer.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("Failed to poll notifications", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			w.handle(msg)
		}
	}
}

func (w *NotificationWorker) handle(msg *kafka.Message) {
	var n domain.Notification
	if err := json.Unmarshal(msg.Value, &n); err != nil {
		w.log.Warn("Dropping malformed notification", zap.Error(err))
		return
	}
	if n.RecipientEmail == "" {
		w.log.Warn("Dropping notification without recipient",
			zap.String("notification_id", n.ID),
		)
		return
	}

	subject, body := composeEmail(&n)
	if subject == "" {
		w.log.Warn("Dropping notification of unknown type",
			zap.String("notification_id", n.ID),
			zap.String("type", string(n.Type)),
		)
		return
	}

	if err := w.sendMail(n.RecipientEmail, subject, body); err != nil {
		w.log.Error("Failed to send notification email",
			zap.String("notification_id", n.ID),
			zap.String("recipient", n.RecipientEmail),
			zap.Error(err),
		)
		return
	}

	w.log.Info("Notification email sent",
		zap.String("notification_id", n.ID),
		zap.String("type", string(n.Type)),
		zap.String("booking_id", n.BookingID),
	)
}

func composeEmail(n *domain.Notification) (subject, body string) {
	seats := strings.Join(n.Seats, ", ")
	switch n.Type {
	case domain.NotificationBookingConfirmed:
		subject = fmt.Sprintf("Booking confirmed: %s", n.EventTitle)
		body = fmt.Sprintf(
			"Your booking for %s is confirmed.\n\nSeats: %s\nTotal: %.2f\nBooking reference: %s\n",
			n.EventTitle, seats, n.TotalPrice, n.BookingID,
		)
	case domain.NotificationRefundAccepted:
		subject = fmt.Sprintf("Refund accepted: %s", n.EventTitle)
		body = fmt.Sprintf(
			"Your refund for %s has been accepted.\n\nSeats released: %s\nAmount: %.2f\nBooking reference: %s\n",
			n.EventTitle, seats, n.TotalPrice, n.BookingID,
		)
	}
	return subject, body
}

func (w *NotificationWorker) smtpSend(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		w.mailer.From, to, subject, body,
	)
	auth := smtp.PlainAuth("", w.mailer.From, w.mailer.Password, w.mailer.Host)
	if err := smtp.SendMail(w.mailer.Addr, auth, w.mailer.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
