package service

import (
	"context"
	"time"

	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/core/metrics"
	"fulfillment-tracker/internal/features/notifications/domain"
	"fulfillment-tracker/internal/features/notifications/ports"
	orders "fulfillment-tracker/internal/features/orders/domain"

	"go.uber.org/zap"
)

// Emitter turns orders into events and publishes them. It implements the orders Notifier port.
type Emitter struct {
	publisher ports.Publisher
	now       func() time.Time
}

// NewEmitter creates an Emitter publishing to p.
func NewEmitter(p ports.Publisher) *Emitter {
	return &Emitter{
		publisher: p,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Broadcast publishes to every observer.
func (e *Emitter) Broadcast(ctx context.Context, kind domain.EventKind, order *orders.Order) {
	event := domain.Event{Kind: kind, Snapshot: domain.NewSnapshot(order), EmittedAt: e.now()}
	e.publish(ctx, domain.Message{Topic: domain.TopicBroadcast, Event: event})
}

// NotifyBuyer publishes to the buyer's private topic and mirrors the event to the admins.
func (e *Emitter) NotifyBuyer(ctx context.Context, kind domain.EventKind, order *orders.Order, itemIndex int) {
	event := domain.Event{Kind: kind, Snapshot: domain.NewItemSnapshot(order, itemIndex), EmittedAt: e.now()}
	e.publish(ctx, domain.Message{Topic: domain.BuyerTopic(order.Buyer.ID), Event: event})
	e.publish(ctx, domain.Message{Topic: domain.TopicAdmin, Event: event})
}

func (e *Emitter) publish(ctx context.Context, msg domain.Message) {
	if err := e.publisher.Publish(ctx, msg); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("notify_publish").Inc()
		logger.Named("emitter").Warn("Failed to publish event",
			zap.String("topic", msg.Topic),
			zap.String("kind", string(msg.Event.Kind)),
			zap.String("order_id", msg.Event.Snapshot.OrderID),
			zap.Error(err),
		)
		return
	}
	metrics.NotificationsPublishedTotal.WithLabelValues(string(msg.Event.Kind)).Inc()
}
