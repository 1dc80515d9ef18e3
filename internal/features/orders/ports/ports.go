package ports

import (
	"context"

	"fulfillment-tracker/internal/features/notifications/domain"
	orders "fulfillment-tracker/internal/features/orders/domain"
)

// OrderStore defines the persistence operations for orders and buyer wallets.
// This is a Secondary Port (Driven Port).
type OrderStore interface {
	// Get retrieves an order by id. Returns orders.ErrNotFound when absent.
	Get(ctx context.Context, orderID string) (*orders.Order, error)

	// Save upserts the whole order document. The write is rejected with
	// orders.ErrPersistenceConflict when the stored Version differs from order.Version.
	// On success order.Version and order.UpdatedAt reflect the stored document.
	Save(ctx context.Context, order *orders.Order) error

	// Find lists the orders matching the predicate, oldest first.
	Find(ctx context.Context, match func(*orders.Order) bool) ([]*orders.Order, error)

	// CountByStatus counts orders per status.
	CountByStatus(ctx context.Context) (map[orders.OrderStatus]int, error)

	// CreditWallet credits a buyer wallet and appends a ledger entry atomically.
	// A reference that was already credited is not applied twice.
	CreditWallet(ctx context.Context, entry orders.WalletEntry) (orders.WalletCredit, error)

	// Balance returns the wallet balance in minor units.
	Balance(ctx context.Context, userID string) (int64, error)

	// Ledger returns the wallet entries in insertion order.
	Ledger(ctx context.Context, userID string) ([]orders.WalletEntry, error)
}

// RefundResult is the outcome of a gateway refund.
type RefundResult struct {
	TransactionID string
}

// RefundGateway executes monetary refunds against the payment processor.
type RefundGateway interface {
	// Refund returns orders.ErrGatewayFailure when the processor rejects the refund or is unreachable.
	Refund(ctx context.Context, paymentID string, amount int64, idempotencyKey string) (RefundResult, error)
}

// Notifier emits order snapshots to observers.
type Notifier interface {
	// Broadcast delivers the event to every observer.
	Broadcast(ctx context.Context, kind domain.EventKind, order *orders.Order)
	// NotifyBuyer delivers the event privately to the order's buyer and the admins.
	NotifyBuyer(ctx context.Context, kind domain.EventKind, order *orders.Order, itemIndex int)
}

// Tracker controls the shipment simulations.
type Tracker interface {
	// Start arms the simulation for an order, replacing any running one.
	Start(ctx context.Context, orderID string) error
	// Stop cancels the simulation of an order. No-op when none is running.
	Stop(orderID string)
	// StatusChanged asks a running simulation to move to the waypoint of the new status now.
	StatusChanged(orderID string)
	// Active reports whether a simulation is running for the order.
	Active(orderID string) bool
}
