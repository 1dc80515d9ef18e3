package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"fulfillment-tracker/internal/core/cache"
	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/features/notifications/domain"
	"fulfillment-tracker/internal/features/notifications/ports"

	"go.uber.org/zap"
)

// RedisBus implements ports.Publisher over a Redis pub/sub channel so that
// every instance of the service sees every event.
type RedisBus struct {
	pubsub  cache.PubSub
	channel string
}

// NewRedisBus creates a RedisBus publishing to channel.
func NewRedisBus(ps cache.PubSub, channel string) *RedisBus {
	return &RedisBus{
		pubsub:  ps,
		channel: channel,
	}
}

// Publish serializes msg onto the channel.
func (b *RedisBus) Publish(ctx context.Context, msg domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := b.pubsub.Publish(ctx, b.channel, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", b.channel, err)
	}
	return nil
}

// Relay forwards every message received on the channel to local until ctx is done.
// It returns once the subscription is established in ready, or the subscription error.
func (b *RedisBus) Relay(ctx context.Context, local ports.Publisher, ready chan<- struct{}) error {
	sub, err := b.pubsub.Subscribe(ctx, b.channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	defer sub.Close()

	if ready != nil {
		close(ready)
	}

	log := logger.Named("relay")
	log.Info("Relaying notifications", zap.String("channel", b.channel))

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-sub.Messages():
			if !ok {
				return nil
			}

			var msg domain.Message
			if err := json.Unmarshal(raw.Payload, &msg); err != nil {
				log.Warn("Discarding malformed message", zap.Error(err))
				continue
			}

			if err := local.Publish(ctx, msg); err != nil {
				log.Warn("Failed to deliver relayed message",
					zap.String("topic", msg.Topic),
					zap.Error(err),
				)
			}
		}
	}
}
