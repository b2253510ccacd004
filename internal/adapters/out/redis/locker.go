package redis

import (
	"context"
	"fmt"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const defaultLockPrefix = "fulfillment:lock:"

// releaseScript deletes the lock only while it still holds our token, so an
// expired lease taken over by another process is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var _ ports.Locker = (*Locker)(nil)

// Locker hands out leases with SET NX PX.
type Locker struct {
	client goredis.UniversalClient
	prefix string
}

func NewLocker(client goredis.UniversalClient, prefix string) (*Locker, error) {
	if client == nil {
		return nil, errs.NewValueIsRequiredError("client")
	}
	if prefix == "" {
		prefix = defaultLockPrefix
	}
	return &Locker{client: client, prefix: prefix}, nil
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (ports.Unlock, bool, error) {
	if key == "" {
		return nil, false, errs.NewValueIsRequiredError("key")
	}
	if ttl <= 0 {
		return nil, false, errs.NewValueIsOutOfRangeError("ttl", ttl, "1ms", "unbounded")
	}

	fullKey := l.prefix + key
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !acquired {
		return nil, false, nil
	}

	unlock := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}
	return unlock, true, nil
}
