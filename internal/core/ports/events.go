package ports

import (
	"context"

	"github.com/SscSPs/btc_rate_service/internal/core/domain"
)

// EventPublisher publishes domain events to other instances and consumers.
type EventPublisher interface {
	PublishUserCreated(ctx context.Context, event domain.UserCreatedEvent) error
	PublishRateUpdated(ctx context.Context, event domain.RateUpdatedEvent) error
}
