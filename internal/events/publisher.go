package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Event types published by the platform.
const (
	EventPaymentCompleted     = "payment.completed"
	EventQuizSubmitted        = "quiz.submitted"
	EventNotificationBulkSent = "notification.bulk_sent"
	EventUserRegistered       = "user.registered"
)

// Event is the envelope for every published message.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with the platform source and schema version.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "quiz-platform",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// PaymentCompletedEvent is emitted after a verified payment enrolls a user.
type PaymentCompletedEvent struct {
	OrderID       string  `json:"order_id"`
	UserID        uint    `json:"user_id"`
	QuizID        uint    `json:"quiz_id"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transaction_id"`
}

// QuizSubmittedEvent is emitted when a result is recorded.
type QuizSubmittedEvent struct {
	UserID uint `json:"user_id"`
	QuizID uint `json:"quiz_id"`
	Score  int  `json:"score"`
	Passed bool `json:"passed"`
}

// BulkNotificationEvent is emitted after a broadcast fan-out.
type BulkNotificationEvent struct {
	Subject        string `json:"subject"`
	Recipient      string `json:"recipient"`
	RecipientCount int    `json:"recipient_count"`
}

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// ===== KAFKA PUBLISHER =====

type kafkaEventPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

// NewKafkaEventPublisher creates a watermill Kafka publisher.
func NewKafkaEventPublisher(brokers []string, topic string, logger *slog.Logger) (EventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &kafkaEventPublisher{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}, nil
}

func (p *kafkaEventPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.Debug("event published", "event_type", event.Type, "event_id", event.ID)
	return nil
}

func (p *kafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// ===== IN-PROCESS PUBLISHER =====

// goChannelEventPublisher backs the event bus with watermill's in-process
// GoChannel pubsub. Used when no Kafka brokers are configured.
type goChannelEventPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

// NewGoChannelEventPublisher creates an in-process publisher.
func NewGoChannelEventPublisher(topic string, logger *slog.Logger) EventPublisher {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewSlogLogger(logger),
	)

	return &goChannelEventPublisher{
		publisher: pubsub,
		topic:     topic,
		logger:    logger,
	}
}

func (p *goChannelEventPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.SetContext(ctx)

	return p.publisher.Publish(p.topic, msg)
}

func (p *goChannelEventPublisher) Close() error {
	return p.publisher.Close()
}
