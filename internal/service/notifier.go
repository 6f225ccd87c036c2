package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/pkg/kafka"
	"github.com/seatsurge/ticketd/pkg/logger"
	"go.uber.org/zap"
)

// Notifier publishes booking notifications. Delivery is best-effort;
// callers log failures and move on, a booking transition never fails
// because the notification stream is down.
type Notifier interface {
	Publish(ctx context.Context, n *domain.Notification) error
}

// KafkaNotifier publishes notifications to a Kafka topic
type KafkaNotifier struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaNotifier creates a new KafkaNotifier
func NewKafkaNotifier(producer *kafka.Producer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

// Publish sends the notification keyed by booking ID, so transitions of
// one booking land on one partition in order.
func (k *KafkaNotifier) Publish(ctx context.Context, n *domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	msg := &kafka.Message{
		Topic: k.topic,
		Key:   []byte(n.Key()),
		Value: payload,
		Headers: map[string]string{
			"type": string(n.Type),
		},
		Timestamp: n.OccurredAt,
	}

	if err := k.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	logger.Get().Debug("notification published",
		zap.String("notification_id", n.ID),
		zap.String("type", string(n.Type)),
		zap.String("booking_id", n.BookingID),
	)
	return nil
}

// NoopNotifier drops notifications. Used when the broker is not configured
// or unreachable at startup.
type NoopNotifier struct{}

// NewNoopNotifier creates a new NoopNotifier
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

// Publish discards the notification
func (n *NoopNotifier) Publish(ctx context.Context, _ *domain.Notification) error {
	return nil
}

var (
	_ Notifier = (*KafkaNotifier)(nil)
	_ Notifier = (*NoopNotifier)(nil)
)
