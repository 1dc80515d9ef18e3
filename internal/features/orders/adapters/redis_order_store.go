package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"fulfillment-tracker/internal/core/cache"
	"fulfillment-tracker/internal/features/orders/domain"

	"github.com/oklog/ulid/v2"
)

const (
	orderKeyPrefix  = "order:"
	orderIndexKey   = "orders:index"
	walletKeyPrefix = "wallet:"
	walletApplied   = "wallet:applied:"
)

// creditScript applies a wallet credit once per reference.
// KEYS: balance, ledger, applied marker. ARGV: amount, ledger entry JSON, transaction id.
// Returns {applied, balance, transaction id}.
const creditScript = `
local existing = redis.call('GET', KEYS[3])
if existing then
	local balance = tonumber(redis.call('GET', KEYS[1]) or '0')
	return {0, balance, existing}
end
local balance = redis.call('INCRBY', KEYS[1], ARGV[1])
redis.call('RPUSH', KEYS[2], ARGV[2])
redis.call('SET', KEYS[3], ARGV[3])
return {1, balance, ARGV[3]}
`

var errStaleVersion = errors.New("stale version")

// RedisOrderStore implements ports.OrderStore on top of the cache port.
type RedisOrderStore struct {
	cache cache.Cache
	now   func() time.Time
	newID func() string
}

// NewRedisOrderStore creates a new RedisOrderStore.
func NewRedisOrderStore(c cache.Cache) *RedisOrderStore {
	return &RedisOrderStore{
		cache: c,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return ulid.Make().String() },
	}
}

func orderKey(id string) string {
	return orderKeyPrefix + id
}

func balanceKey(userID string) string {
	return walletKeyPrefix + userID + ":balance"
}

func ledgerKey(userID string) string {
	return walletKeyPrefix + userID + ":ledger"
}

// Get retrieves an order document.
func (s *RedisOrderStore) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	data, err := s.cache.Get(ctx, orderKey(orderID))
	if errors.Is(err, cache.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", orderID, err)
	}

	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order %s: %w", orderID, err)
	}
	return &order, nil
}

// Save writes and indexes the order in one transaction if nobody else wrote it since it was read.
func (s *RedisOrderStore) Save(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		return domain.Validationf("order id is required")
	}

	next := *order
	next.Version = order.Version + 1
	next.UpdatedAt = s.now()

	err := s.cache.Update(ctx, orderKey(order.ID), func(current []byte) ([]byte, error) {
		var stored int64
		if current != nil {
			var head struct {
				Version int64 `json:"version"`
			}
			if err := json.Unmarshal(current, &head); err != nil {
				return nil, fmt.Errorf("failed to read stored version: %w", err)
			}
			stored = head.Version
		}
		if stored != order.Version {
			return nil, fmt.Errorf("%w: have %d, stored %d", errStaleVersion, order.Version, stored)
		}
		return json.Marshal(&next)
	}, cache.SetMember{Set: orderIndexKey, Member: order.ID})
	switch {
	case errors.Is(err, cache.ErrConflict), errors.Is(err, errStaleVersion):
		return fmt.Errorf("%w: order %s: %v", domain.ErrPersistenceConflict, order.ID, err)
	case err != nil:
		return fmt.Errorf("failed to save order %s: %w", order.ID, err)
	}

	order.Version = next.Version
	order.UpdatedAt = next.UpdatedAt
	return nil
}

// Find scans the index and returns the matching orders, oldest first.
func (s *RedisOrderStore) Find(ctx context.Context, match func(*domain.Order) bool) ([]*domain.Order, error) {
	ids, err := s.cache.Members(ctx, orderIndexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = orderKey(id)
	}

	docs, err := s.cache.GetMany(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	result := make([]*domain.Order, 0, len(docs))
	for i, data := range docs {
		// Indexed but deleted.
		if data == nil {
			continue
		}
		var order domain.Order
		if err := json.Unmarshal(data, &order); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order %s: %w", ids[i], err)
		}
		if match == nil || match(&order) {
			result = append(result, &order)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// CountByStatus counts stored orders per status.
func (s *RedisOrderStore) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	all, err := s.Find(ctx, nil)
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.OrderStatus]int, len(domain.OrderStatuses))
	for _, status := range domain.OrderStatuses {
		counts[status] = 0
	}
	for _, o := range all {
		counts[o.Status]++
	}
	return counts, nil
}

// CreditWallet credits entry.Amount to the user's wallet once per entry.Reference.
func (s *RedisOrderStore) CreditWallet(ctx context.Context, entry domain.WalletEntry) (domain.WalletCredit, error) {
	if entry.UserID == "" || entry.Reference == "" {
		return domain.WalletCredit{}, domain.Validationf("wallet credit needs a user and a reference")
	}
	if entry.Amount <= 0 {
		return domain.WalletCredit{}, domain.Validationf("wallet credit must be positive, got %d", entry.Amount)
	}

	if entry.TransactionID == "" {
		entry.TransactionID = "wtx_" + s.newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return domain.WalletCredit{}, fmt.Errorf("failed to marshal wallet entry: %w", err)
	}

	keys := []string{balanceKey(entry.UserID), ledgerKey(entry.UserID), walletApplied + entry.Reference}
	res, err := s.cache.RunScript(ctx, creditScript, keys, entry.Amount, string(data), entry.TransactionID)
	if err != nil {
		return domain.WalletCredit{}, fmt.Errorf("failed to credit wallet of %s: %w", entry.UserID, err)
	}

	return parseCredit(res)
}

func parseCredit(res interface{}) (domain.WalletCredit, error) {
	vals, ok := res.([]interface{})
	if !ok || len(vals) != 3 {
		return domain.WalletCredit{}, fmt.Errorf("unexpected wallet script reply %T", res)
	}

	applied, ok1 := vals[0].(int64)
	balance, ok2 := vals[1].(int64)
	txID, ok3 := vals[2].(string)
	if !ok1 || !ok2 || !ok3 {
		return domain.WalletCredit{}, fmt.Errorf("unexpected wallet script reply %v", vals)
	}

	return domain.WalletCredit{
		TransactionID: txID,
		Balance:       balance,
		Applied:       applied == 1,
	}, nil
}

// Balance returns the user's wallet balance; an unknown wallet has balance 0.
func (s *RedisOrderStore) Balance(ctx context.Context, userID string) (int64, error) {
	data, err := s.cache.Get(ctx, balanceKey(userID))
	if errors.Is(err, cache.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet balance of %s: %w", userID, err)
	}

	balance, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid wallet balance of %s: %w", userID, err)
	}
	return balance, nil
}

// Ledger returns the wallet entries of a user in insertion order.
func (s *RedisOrderStore) Ledger(ctx context.Context, userID string) ([]domain.WalletEntry, error) {
	raw, err := s.cache.Range(ctx, ledgerKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet ledger of %s: %w", userID, err)
	}

	entries := make([]domain.WalletEntry, 0, len(raw))
	for _, data := range raw {
		var entry domain.WalletEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal wallet entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
