package payments

import (
	"context"
	"sync"
	"time"

	"fulfillment/internal/core/ports"
)

// localLocker serializes holders of the same key inside one process. It is
// the fallback when no shared Locker is configured.
type localLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func newLocalLocker() *localLocker {
	return &localLocker{held: make(map[string]time.Time)}
}

func (l *localLocker) TryLock(_ context.Context, key string, ttl time.Duration) (ports.Unlock, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return nil, false, nil
	}
	until := now.Add(ttl)
	l.held[key] = until

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key].Equal(until) {
			delete(l.held, key)
		}
		return nil
	}, true, nil
}
