package service

import (
	"context"
	"sync"

	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/core/metrics"
	"fulfillment-tracker/internal/features/notifications/domain"

	"go.uber.org/zap"
)

// Hub is the in-process multicast of events to subscribed connections.
// A subscriber whose buffer is full misses the event; nothing is queued or replayed.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	closed bool
}

// NewHub creates a Hub with the given per-subscriber buffer.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
	}
}

// Subscription receives the events published to its topics.
type Subscription struct {
	id     uint64
	hub    *Hub
	topics map[string]struct{}
	events chan domain.Event
	once   sync.Once
}

// Events delivers events until the subscription or the hub is closed.
func (s *Subscription) Events() <-chan domain.Event {
	return s.events
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Subscribe registers a subscriber for the given topics.
func (h *Hub) Subscribe(topics ...string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		hub:    h,
		topics: make(map[string]struct{}, len(topics)),
		events: make(chan domain.Event, h.buffer),
	}
	for _, t := range topics {
		sub.topics[t] = struct{}{}
	}

	if h.closed {
		sub.once.Do(func() { close(sub.events) })
		return sub
	}
	h.subs[sub.id] = sub
	return sub
}

// Publish delivers msg to every subscriber of its topic without blocking.
func (h *Hub) Publish(_ context.Context, msg domain.Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if _, ok := sub.topics[msg.Topic]; !ok {
			continue
		}
		select {
		case sub.events <- msg.Event:
		default:
			metrics.NotificationsDroppedTotal.Inc()
			logger.Named("hub").Debug("Subscriber buffer full, event dropped",
				zap.Uint64("subscriber", sub.id),
				zap.String("topic", msg.Topic),
				zap.String("kind", string(msg.Event.Kind)),
			)
		}
	}
	return nil
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription; later subscriptions are closed immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		sub.once.Do(func() { close(sub.events) })
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subs, sub.id)
	sub.once.Do(func() { close(sub.events) })
}
