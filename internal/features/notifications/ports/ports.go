package ports

import (
	"context"

	"fulfillment-tracker/internal/features/notifications/domain"
)

// Publisher is the message bus abstraction the emitter publishes to.
// Delivery is best-effort and at-most-once.
type Publisher interface {
	Publish(ctx context.Context, msg domain.Message) error
}
