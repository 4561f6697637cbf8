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
)

// Topics published by the core services.
const (
	TopicUserRegistered  = "user.registered"
	TopicAnswerSubmitted = "answer.submitted"
	TopicAnswerReviewed  = "answer.reviewed"
)

// Event is the envelope for every domain event.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// EventPublisher publishes domain events. Implementations must be safe for
// concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, data any) error
	Close() error
}

func newEvent(topic string, data any) (*message.Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}
	event := Event{
		ID:         watermill.NewUUID(),
		Type:       topic,
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return message.NewMessage(event.ID, payload), nil
}

// goChannelPublisher is the in-process publisher used when no broker is
// configured. A logging subscriber drains every topic so events are visible
// in the service logs.
type goChannelPublisher struct {
	pubSub *gochannel.GoChannel
	cancel context.CancelFunc
}

// NewGoChannelPublisher creates an in-process publisher with a slog-backed
// subscriber on every known topic.
func NewGoChannelPublisher(logger *slog.Logger) (EventPublisher, error) {
	wmLogger := watermill.NewSlogLogger(logger)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)

	ctx, cancel := context.WithCancel(context.Background())
	for _, topic := range []string{TopicUserRegistered, TopicAnswerSubmitted, TopicAnswerReviewed} {
		messages, err := pubSub.Subscribe(ctx, topic)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
		}
		go func(topic string, messages <-chan *message.Message) {
			for msg := range messages {
				logger.Info("domain event", "topic", topic, "payload", string(msg.Payload))
				msg.Ack()
			}
		}(topic, messages)
	}

	return &goChannelPublisher{pubSub: pubSub, cancel: cancel}, nil
}

func (p *goChannelPublisher) Publish(ctx context.Context, topic string, data any) error {
	msg, err := newEvent(topic, data)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	return p.pubSub.Publish(topic, msg)
}

func (p *goChannelPublisher) Close() error {
	p.cancel()
	return p.pubSub.Close()
}

// kafkaPublisher forwards domain events to a Kafka cluster.
type kafkaPublisher struct {
	publisher *kafka.Publisher
}

// NewKafkaPublisher creates a publisher backed by the given brokers.
func NewKafkaPublisher(brokers []string, logger *slog.Logger) (EventPublisher, error) {
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	return &kafkaPublisher{publisher: publisher}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, topic string, data any) error {
	msg, err := newEvent(topic, data)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	return p.publisher.Publish(topic, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.publisher.Close()
}
