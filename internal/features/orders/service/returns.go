package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/core/metrics"
	notify "fulfillment-tracker/internal/features/notifications/domain"
	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/ports"

	"go.uber.org/zap"
)

// ReturnService is the per-item return and refund workflow.
type ReturnService struct {
	store          ports.OrderStore
	gateway        ports.RefundGateway
	notifier       ports.Notifier
	gatewayTimeout time.Duration
	now            func() time.Time
}

// NewReturnService creates a new instance of ReturnService.
// gatewayTimeout bounds each refund gateway call; zero disables the bound.
func NewReturnService(store ports.OrderStore, gateway ports.RefundGateway, notifier ports.Notifier, gatewayTimeout time.Duration) *ReturnService {
	return &ReturnService{
		store:          store,
		gateway:        gateway,
		notifier:       notifier,
		gatewayTimeout: gatewayTimeout,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

type itemChange func(order *domain.Order, item *domain.Item, now time.Time) error

// update loads the order, applies change to one item, saves and notifies the buyer.
// Nothing is written or emitted when change fails.
func (s *ReturnService) update(ctx context.Context, action, orderID string, index int, kind notify.EventKind, change itemChange) (*domain.Order, error) {
	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	item, err := order.Item(index)
	if err != nil {
		return nil, err
	}

	if err := change(order, item, s.now()); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, order); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues(action).Inc()
		return nil, err
	}
	metrics.ReturnTransitionsTotal.WithLabelValues(string(item.Return.Status)).Inc()

	logger.Named("returns").Info("Return updated",
		zap.String("action", action),
		zap.String("order_id", orderID),
		zap.Int("item_index", index),
		zap.String("return_status", string(item.Return.Status)),
	)

	s.notifier.NotifyBuyer(ctx, kind, order, index)
	return order, nil
}

// RequestReturn opens a return for a delivered item on behalf of its buyer.
func (s *ReturnService) RequestReturn(ctx context.Context, orderID string, index int, buyerID, reason, description string) (*domain.Order, error) {
	return s.update(ctx, "request_return", orderID, index, notify.KindReturnRequestUpdate,
		func(order *domain.Order, item *domain.Item, now time.Time) error {
			// Another buyer's order is reported as missing.
			if order.Buyer.ID != buyerID {
				return fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
			}
			if err := order.CheckReturnEligible(now); err != nil {
				return err
			}
			return item.Return.Request(reason, description, now)
		})
}

// Approve accepts a requested return.
func (s *ReturnService) Approve(ctx context.Context, orderID string, index int, actorID, shippingLabel, notes string) (*domain.Order, error) {
	return s.update(ctx, "approve_return", orderID, index, notify.KindReturnRequestUpdate,
		func(_ *domain.Order, item *domain.Item, now time.Time) error {
			return item.Return.Approve(actorID, shippingLabel, notes, now)
		})
}

// Reject declines a requested return with a reason.
func (s *ReturnService) Reject(ctx context.Context, orderID string, index int, actorID, reason string) (*domain.Order, error) {
	return s.update(ctx, "reject_return", orderID, index, notify.KindReturnRequestUpdate,
		func(_ *domain.Order, item *domain.Item, now time.Time) error {
			return item.Return.Reject(actorID, reason, now)
		})
}

// MarkReturned records that the returned item arrived.
func (s *ReturnService) MarkReturned(ctx context.Context, orderID string, index int, trackingNumber string) (*domain.Order, error) {
	return s.update(ctx, "mark_returned", orderID, index, notify.KindReturnRequestUpdate,
		func(_ *domain.Order, item *domain.Item, now time.Time) error {
			return item.Return.MarkReturned(trackingNumber, now)
		})
}

// ProcessRefund refunds a returned item through the gateway or the buyer's wallet.
// The chosen path is saved on the item before money moves. A failed attempt leaves the
// item returned; repeats must use the same path and reuse the same idempotency reference,
// so an item is never refunded twice.
func (s *ReturnService) ProcessRefund(ctx context.Context, orderID string, index int, actorID string, method domain.RefundMethod) (*domain.Order, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.Validationf("actor id is required")
	}

	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	item, err := order.Item(index)
	if err != nil {
		return nil, err
	}

	path := order.RefundPath(method)
	reference := refundReference(order.ID, index)

	claimed, err := item.Return.ClaimRefund(path, reference)
	if err != nil {
		return nil, err
	}
	if claimed {
		if err := s.store.Save(ctx, order); err != nil {
			metrics.OperationErrorsTotal.WithLabelValues("process_refund").Inc()
			return nil, err
		}
	}

	amount := item.Subtotal()
	now := s.now()

	var txID string
	switch path {
	case domain.RefundPathGateway:
		txID, err = s.refundGateway(ctx, order, amount, reference)
	default:
		txID, err = s.creditWallet(ctx, order, index, amount, reference, now)
	}
	if err != nil {
		return nil, err
	}

	if err := item.Return.MarkRefunded(amount, txID, path, now); err != nil {
		return nil, err
	}
	order.RecordRefund(amount, txID, actorID, now)

	if err := s.store.Save(ctx, order); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("process_refund").Inc()
		return nil, err
	}
	metrics.ReturnTransitionsTotal.WithLabelValues(string(item.Return.Status)).Inc()
	metrics.RefundsTotal.WithLabelValues(string(path)).Inc()
	metrics.RefundedMinorUnitsTotal.WithLabelValues(string(path)).Add(float64(amount))

	logger.Named("returns").Info("Refund processed",
		zap.String("order_id", orderID),
		zap.Int("item_index", index),
		zap.String("path", string(path)),
		zap.String("transaction_id", txID),
		zap.Int64("amount", amount),
	)

	s.notifier.NotifyBuyer(ctx, notify.KindRefundProcessed, order, index)
	return order, nil
}

func refundReference(orderID string, index int) string {
	return fmt.Sprintf("refund_%s_%d", orderID, index)
}

func (s *ReturnService) refundGateway(ctx context.Context, order *domain.Order, amount int64, reference string) (string, error) {
	if s.gatewayTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.gatewayTimeout)
		defer cancel()
	}

	res, err := s.gateway.Refund(ctx, order.Payment.GatewayPaymentID, amount, reference)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("gateway_refund").Inc()
		logger.Named("returns").Error("Gateway refund failed",
			zap.String("order_id", order.ID),
			zap.String("reference", reference),
			zap.Int64("amount", amount),
			zap.Error(err),
		)
		if !errors.Is(err, domain.ErrGatewayFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrGatewayFailure, err)
		}
		return "", err
	}
	return res.TransactionID, nil
}

func (s *ReturnService) creditWallet(ctx context.Context, order *domain.Order, index int, amount int64, reference string, now time.Time) (string, error) {
	credit, err := s.store.CreditWallet(ctx, domain.WalletEntry{
		Reference:   reference,
		UserID:      order.Buyer.ID,
		Amount:      amount,
		OrderID:     order.ID,
		ItemIndex:   index,
		Description: fmt.Sprintf("Refund for order %s item %d", order.OrderNumber, index+1),
		CreatedAt:   now,
	})
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("wallet_credit").Inc()
		return "", fmt.Errorf("failed to credit wallet: %w", err)
	}
	return credit.TransactionID, nil
}
