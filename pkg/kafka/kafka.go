package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is a produced or consumed Kafka record
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// ProducerConfig contains configuration for a Kafka producer
type ProducerConfig struct {
	Brokers       []string
	ClientID      string
	MaxRetries    int
	RetryInterval time.Duration
}

// Producer wraps a franz-go client for producing messages
type Producer struct {
	client *kgo.Client
}

// NewProducer creates a new Kafka producer and verifies broker connectivity
func NewProducer(ctx context.Context, cfg *ProducerConfig) (*Producer, error) {
	if cfg == nil || len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	retries := cfg.MaxRetries
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			time.Sleep(interval)
		}
		if lastErr = client.Ping(ctx); lastErr == nil {
			return &Producer{client: client}, nil
		}
	}

	client.Close()
	return nil, fmt.Errorf("failed to connect to kafka after %d attempts: %w", retries+1, lastErr)
}

// Produce sends a message synchronously
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	record := toRecord(msg)
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce to %s: %w", msg.Topic, err)
	}
	return nil
}

// Close flushes and closes the producer
func (p *Producer) Close() {
	if p.client != nil {
		p.client.Close()
	}
}

// ConsumerConfig contains configuration for a Kafka consumer
type ConsumerConfig struct {
	Brokers  []string
	ClientID string
	Group    string
	Topics   []string
}

// Consumer wraps a franz-go client consuming as part of a group
type Consumer struct {
	client *kgo.Client
}

// NewConsumer creates a new Kafka group consumer
func NewConsumer(ctx context.Context, cfg *ConsumerConfig) (*Consumer, error) {
	if cfg == nil || len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if cfg.Group == "" {
		return nil, fmt.Errorf("consumer group is required")
	}
	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("at least one topic is required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topics...),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to kafka: %w", err)
	}

	return &Consumer{client: client}, nil
}

// Poll blocks until messages are available or the context is done
func (c *Consumer) Poll(ctx context.Context) ([]*Message, error) {
	fetches := c.client.PollFetches(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if errs := fetches.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("fetch error on %s: %w", errs[0].Topic, errs[0].Err)
	}

	var msgs []*Message
	fetches.EachRecord(func(r *kgo.Record) {
		msgs = append(msgs, fromRecord(r))
	})
	return msgs, nil
}

// Close closes the consumer, leaving the group cleanly
func (c *Consumer) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func toRecord(msg *Message) *kgo.Record {
	record := &kgo.Record{
		Topic:     msg.Topic,
		Key:       msg.Key,
		Value:     msg.Value,
		Timestamp: msg.Timestamp,
	}
	for k, v := range msg.Headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return record
}

func fromRecord(r *kgo.Record) *Message {
	msg := &Message{
		Topic:     r.Topic,
		Key:       r.Key,
		Value:     r.Value,
		Timestamp: r.Timestamp,
	}
	if len(r.Headers) > 0 {
		msg.Headers = make(map[string]string, len(r.Headers))
		for _, h := range r.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}
	}
	return msg
}
