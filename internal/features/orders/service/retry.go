package service

import (
	"context"
	"errors"
	"time"

	"fulfillment-tracker/internal/features/orders/domain"
)

const conflictBackoff = 10 * time.Millisecond

// RetryOnConflict runs fn up to attempts times while it fails with domain.ErrPersistenceConflict.
// Any other error, or success, is returned immediately.
func RetryOnConflict(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); !errors.Is(err, domain.ErrPersistenceConflict) {
			return err
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(i+1) * conflictBackoff):
		}
	}
	return err
}
