package service

import (
	"context"

	notify "fulfillment-tracker/internal/features/notifications/domain"
	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/ports"

	"github.com/stretchr/testify/mock"
)

// MockOrderStore is a mock implementation of ports.OrderStore
type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderStore) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// Find applies match to the orders configured for the call.
func (m *MockOrderStore) Find(ctx context.Context, match func(*domain.Order) bool) ([]*domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	var out []*domain.Order
	for _, o := range args.Get(0).([]*domain.Order) {
		if match == nil || match(o) {
			out = append(out, o)
		}
	}
	return out, args.Error(1)
}

func (m *MockOrderStore) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.OrderStatus]int), args.Error(1)
}

func (m *MockOrderStore) CreditWallet(ctx context.Context, entry domain.WalletEntry) (domain.WalletCredit, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(domain.WalletCredit), args.Error(1)
}

func (m *MockOrderStore) Balance(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderStore) Ledger(ctx context.Context, userID string) ([]domain.WalletEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WalletEntry), args.Error(1)
}

// MockRefundGateway is a mock implementation of ports.RefundGateway
type MockRefundGateway struct {
	mock.Mock
}

func (m *MockRefundGateway) Refund(ctx context.Context, paymentID string, amount int64, idempotencyKey string) (ports.RefundResult, error) {
	args := m.Called(ctx, paymentID, amount, idempotencyKey)
	return args.Get(0).(ports.RefundResult), args.Error(1)
}

// MockNotifier is a mock implementation of ports.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Broadcast(ctx context.Context, kind notify.EventKind, order *domain.Order) {
	m.Called(ctx, kind, order)
}

func (m *MockNotifier) NotifyBuyer(ctx context.Context, kind notify.EventKind, order *domain.Order, itemIndex int) {
	m.Called(ctx, kind, order, itemIndex)
}

// MockTracker is a mock implementation of ports.Tracker
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Start(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockTracker) Stop(orderID string) {
	m.Called(orderID)
}

func (m *MockTracker) StatusChanged(orderID string) {
	m.Called(orderID)
}

func (m *MockTracker) Active(orderID string) bool {
	args := m.Called(orderID)
	return args.Bool(0)
}
