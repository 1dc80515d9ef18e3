package cache

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is returned when a key does not exist.
	ErrKeyNotFound = errors.New("key not found")
	// ErrConflict is returned when a watched key changed during an Update.
	ErrConflict = errors.New("concurrent modification")
)

// SetMember is a set membership written in the same transaction as an Update.
type SetMember struct {
	Set    string
	Member string
}

// UpdateFunc receives the current value (nil when the key is absent) and returns the value to store.
// Returning an error aborts the update and the error is passed through unchanged.
type UpdateFunc func(current []byte) ([]byte, error)

// Cache defines the key-value operations port.
// This is a port that can be implemented by different providers (Redis, Memcached, etc.).
type Cache interface {
	// Get retrieves a value by key. Returns ErrKeyNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetMany retrieves several values at once. Missing keys yield nil entries.
	GetMany(ctx context.Context, keys ...string) ([][]byte, error)

	// Update performs an optimistic read-modify-write on a single key.
	// The members are added in the same transaction as the write, so neither is stored without the other.
	// Returns ErrConflict if the key changed between the read and the write.
	Update(ctx context.Context, key string, fn UpdateFunc, members ...SetMember) error

	// Members lists the members of a set.
	Members(ctx context.Context, set string) ([]string, error)

	// Range returns every element of a list in insertion order.
	Range(ctx context.Context, key string) ([][]byte, error)

	// RunScript executes a server-side script atomically.
	RunScript(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)

	// Ping checks if the cache service is reachable.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}

// Message is a payload received from a channel subscription.
type Message struct {
	Channel string
	Payload []byte
}

// Subscription is a live channel subscription.
type Subscription interface {
	// Messages delivers received payloads until the subscription is closed.
	Messages() <-chan Message
	// Close ends the subscription.
	Close() error
}

// PubSub defines publish/subscribe operations.
type PubSub interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channels ...string) (Subscription, error)
}
