package ports

import (
	"context"
	"time"
)

// Unlock releases a lock obtained from a Locker.
type Unlock func(ctx context.Context) error

// Locker grants short-lived, process-wide exclusive leases.
type Locker interface {
	// TryLock returns acquired=false without error when someone else holds key.
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock Unlock, acquired bool, err error)
}
