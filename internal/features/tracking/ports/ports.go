package ports

import (
	"context"

	notify "fulfillment-tracker/internal/features/notifications/domain"
	orders "fulfillment-tracker/internal/features/orders/domain"
)

// OrderStore is the part of the order store the simulator reads and writes.
// This is a Secondary Port (Driven Port).
type OrderStore interface {
	Get(ctx context.Context, orderID string) (*orders.Order, error)
	Save(ctx context.Context, order *orders.Order) error
	Find(ctx context.Context, match func(*orders.Order) bool) ([]*orders.Order, error)
}

// Notifier publishes simulated position changes.
type Notifier interface {
	Broadcast(ctx context.Context, kind notify.EventKind, order *orders.Order)
}
