package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	"github.com/SscSPs/btc_rate_service/internal/core/ports"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Topics
const (
	TopicUserCreated = "users.created"
	TopicRateUpdated = "rates.updated"
)

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)

// PublishUserCreated publishes a users.created event
func (p *WatermillPublisher) PublishUserCreated(ctx context.Context, event domain.UserCreatedEvent) error {
	return p.publish(ctx, TopicUserCreated, event)
}

// PublishRateUpdated publishes a rates.updated event
func (p *WatermillPublisher) PublishRateUpdated(ctx context.Context, event domain.RateUpdatedEvent) error {
	return p.publish(ctx, TopicRateUpdated, event)
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", topic, err)
	}

	return nil
}

// Close closes the underlying publisher.
func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}
