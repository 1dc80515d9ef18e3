package adapters

import (
	"context"
	"testing"
	"time"

	"fulfillment-tracker/internal/core/cache"
	"fulfillment-tracker/internal/features/orders/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*RedisOrderStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	adapter, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return NewRedisOrderStore(adapter), mr
}

func newStoredOrder(id string, status domain.OrderStatus, created time.Time) *domain.Order {
	return &domain.Order{
		ID:          id,
		OrderNumber: "ORD-" + id,
		Buyer:       domain.Buyer{ID: "user-1", Name: "Asha"},
		Status:      status,
		Items:       []domain.Item{{ProductID: "p-1", Quantity: 2, Price: 500}},
		CreatedAt:   created,
	}
}

func TestRedisOrderStore_SaveAndGet(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	order := newStoredOrder("ord-1", domain.StatusPending, time.Now().UTC())
	require.NoError(t, store.Save(ctx, order))
	assert.Equal(t, int64(1), order.Version)
	assert.False(t, order.UpdatedAt.IsZero())

	got, err := store.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "ORD-ord-1", got.OrderNumber)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, int64(500), got.Items[0].Price)

	got.Status = domain.StatusProcessing
	require.NoError(t, store.Save(ctx, got))
	assert.Equal(t, int64(2), got.Version)
}

func TestRedisOrderStore_SaveIndexesWithDocument(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newStoredOrder("ord-1", domain.StatusPending, time.Now())))
	members, err := mr.Members(orderIndexKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"ord-1"}, members)

	// A rejected write leaves neither a document nor an index entry behind.
	stale := newStoredOrder("ord-2", domain.StatusPending, time.Now())
	stale.Version = 3
	assert.ErrorIs(t, store.Save(ctx, stale), domain.ErrPersistenceConflict)
	assert.False(t, mr.Exists(orderKey("ord-2")))
	members, err = mr.Members(orderIndexKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"ord-1"}, members)
}

func TestRedisOrderStore_GetNotFound(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisOrderStore_SaveConflict(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newStoredOrder("ord-1", domain.StatusPending, time.Now())))

	first, err := store.Get(ctx, "ord-1")
	require.NoError(t, err)
	second, err := store.Get(ctx, "ord-1")
	require.NoError(t, err)

	first.Status = domain.StatusProcessing
	require.NoError(t, store.Save(ctx, first))

	second.Status = domain.StatusCancelled
	err = store.Save(ctx, second)
	assert.ErrorIs(t, err, domain.ErrPersistenceConflict)
	assert.Equal(t, int64(1), second.Version)

	stored, err := store.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, stored.Status)

	// A brand new document must not overwrite an existing one.
	err = store.Save(ctx, newStoredOrder("ord-1", domain.StatusPending, time.Now()))
	assert.ErrorIs(t, err, domain.ErrPersistenceConflict)
}

func TestRedisOrderStore_FindAndCount(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, newStoredOrder("b", domain.StatusShipped, base.Add(2*time.Hour))))
	require.NoError(t, store.Save(ctx, newStoredOrder("a", domain.StatusDelivered, base.Add(time.Hour))))
	require.NoError(t, store.Save(ctx, newStoredOrder("c", domain.StatusShipped, base.Add(3*time.Hour))))

	all, err := store.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})

	shipped, err := store.Find(ctx, func(o *domain.Order) bool { return o.Status == domain.StatusShipped })
	require.NoError(t, err)
	assert.Len(t, shipped, 2)

	// Indexed documents that disappeared are skipped.
	mr.Del("order:c")

	counts, err := store.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.StatusShipped])
	assert.Equal(t, 1, counts[domain.StatusDelivered])
	assert.Equal(t, 0, counts[domain.StatusPending])
	assert.Len(t, counts, len(domain.OrderStatuses))
}

func TestRedisOrderStore_CreditWallet(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	entry := domain.WalletEntry{
		Reference:   "refund_ord-1_0",
		UserID:      "user-1",
		Amount:      1000,
		OrderID:     "ord-1",
		Description: "Refund for ORD-1",
	}

	credit, err := store.CreditWallet(ctx, entry)
	require.NoError(t, err)
	assert.True(t, credit.Applied)
	assert.Equal(t, int64(1000), credit.Balance)
	assert.NotEmpty(t, credit.TransactionID)

	replay, err := store.CreditWallet(ctx, entry)
	require.NoError(t, err)
	assert.False(t, replay.Applied)
	assert.Equal(t, int64(1000), replay.Balance)
	assert.Equal(t, credit.TransactionID, replay.TransactionID)

	entry.Reference = "refund_ord-2_0"
	entry.Amount = 250
	other, err := store.CreditWallet(ctx, entry)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), other.Balance)

	balance, err := store.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1250), balance)

	ledger, err := store.Ledger(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, "refund_ord-1_0", ledger[0].Reference)
	assert.Equal(t, credit.TransactionID, ledger[0].TransactionID)
	assert.Equal(t, int64(250), ledger[1].Amount)
}

func TestRedisOrderStore_CreditWalletValidation(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.CreditWallet(ctx, domain.WalletEntry{UserID: "user-1", Amount: 10})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = store.CreditWallet(ctx, domain.WalletEntry{UserID: "user-1", Reference: "r", Amount: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRedisOrderStore_EmptyWallet(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	balance, err := store.Balance(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, balance)

	ledger, err := store.Ledger(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, ledger)
}
