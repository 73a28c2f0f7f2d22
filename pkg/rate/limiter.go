// Package rate throttles outgoing requests, keyed by an arbitrary name such
// as an RPC method.
package rate

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter limits operations based on a provided key.
type Limiter interface {
	Allow(key string) (bool, error)
}

// Keyed keeps an independent token bucket per key. Buckets are created on
// first use with a burst equal to their per-second limit, and never less
// than one.
type Keyed struct {
	limit     rate.Limit
	overrides map[string]rate.Limit

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewLocalRateLimiter returns an in memory limiter. Keys present in overrides
// use their own limit instead of the default.
func NewLocalRateLimiter(limit rate.Limit, overrides map[string]rate.Limit) *Keyed {
	return &Keyed{
		limit:     limit,
		overrides: overrides,
		buckets:   make(map[string]*rate.Limiter),
	}
}

func (k *Keyed) Allow(key string) (bool, error) {
	return k.bucket(key).Allow(), nil
}

func (k *Keyed) bucket(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	if b, ok := k.buckets[key]; ok {
		return b
	}

	limit, ok := k.overrides[key]
	if !ok {
		limit = k.limit
	}

	b := rate.NewLimiter(limit, max(int(limit), 1))
	k.buckets[key] = b
	return b
}

// NoLimiter never limits operations.
type NoLimiter struct{}

func (*NoLimiter) Allow(string) (bool, error) {
	return true, nil
}
