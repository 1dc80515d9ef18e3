package service

import (
	"context"
	"strings"
	"time"

	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/core/metrics"
	notify "fulfillment-tracker/internal/features/notifications/domain"
	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/ports"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// LifecycleService is the order status state machine.
type LifecycleService struct {
	store    ports.OrderStore
	tracker  ports.Tracker
	notifier ports.Notifier
	policy   domain.TransitionPolicy

	now               func() time.Time
	newTrackingNumber func() string
}

// NewLifecycleService creates a new instance of LifecycleService.
func NewLifecycleService(store ports.OrderStore, tracker ports.Tracker, notifier ports.Notifier, policy domain.TransitionPolicy) *LifecycleService {
	return &LifecycleService{
		store:             store,
		tracker:           tracker,
		notifier:          notifier,
		policy:            policy,
		now:               func() time.Time { return time.Now().UTC() },
		newTrackingNumber: func() string { return "TRK-" + ulid.Make().String() },
	}
}

// Policy returns the transition policy in force.
func (s *LifecycleService) Policy() domain.TransitionPolicy {
	return s.policy
}

// Transition moves an order to newStatus on behalf of actorID.
// It fails with ErrPersistenceConflict when the order changed concurrently; the caller may retry.
func (s *LifecycleService) Transition(ctx context.Context, orderID string, newStatus domain.OrderStatus, actorID, notes string) (*domain.Order, error) {
	if !newStatus.Valid() {
		return nil, domain.Validationf("unknown order status %q", newStatus)
	}
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.Validationf("actor id is required")
	}

	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	if err := s.policy.Check(previous, newStatus); err != nil {
		return nil, err
	}

	now := s.now()
	order.ApplyStatus(newStatus, actorID, notes, now)

	startTracking := previous == domain.StatusPending && newStatus == domain.StatusProcessing
	if startTracking {
		order.EnsureTracking(now, s.newTrackingNumber)
	}

	if err := s.store.Save(ctx, order); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("transition").Inc()
		return nil, err
	}
	metrics.StatusTransitionsTotal.WithLabelValues(string(newStatus)).Inc()

	log := logger.Named("lifecycle").With(
		zap.String("order_id", orderID),
		zap.String("from", string(previous)),
		zap.String("status", string(newStatus)),
		zap.String("actor_id", actorID),
	)
	log.Info("Order status changed")

	switch {
	case newStatus.Terminal():
		s.tracker.Stop(orderID)
	case startTracking:
		if err := s.tracker.Start(ctx, orderID); err != nil {
			log.Warn("Failed to start tracking simulation", zap.Error(err))
		}
	default:
		s.tracker.StatusChanged(orderID)
	}

	fresh, err := s.store.Get(ctx, orderID)
	if err != nil {
		log.Warn("Failed to re-read order after transition", zap.Error(err))
		fresh = order
	}

	s.notifier.Broadcast(ctx, notify.KindOrderStatusUpdate, fresh)
	return fresh, nil
}
