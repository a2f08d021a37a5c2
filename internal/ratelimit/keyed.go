package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long an unused key keeps its limiter
const DefaultIdleTTL = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed holds one token bucket per key (client IP, retailer host).
// Keys unused for idleTTL are dropped, at most once per idleTTL.
type Keyed struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	entries   map[string]*entry
	lastSweep time.Time
	now       func() time.Time
}

// NewKeyed creates a keyed limiter. A non-positive idleTTL uses DefaultIdleTTL.
func NewKeyed(limit rate.Limit, burst int, idleTTL time.Duration) *Keyed {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Keyed{
		limit:     limit,
		burst:     burst,
		idleTTL:   idleTTL,
		entries:   make(map[string]*entry),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether a request for key may happen now
func (k *Keyed) Allow(key string) bool {
	return k.get(key).Allow()
}

// Wait blocks until key may proceed or ctx is done
func (k *Keyed) Wait(ctx context.Context, key string) error {
	return k.get(key).Wait(ctx)
}

// Len returns the number of tracked keys
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

func (k *Keyed) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) >= k.idleTTL {
		k.purgeIdle(now)
	}

	e, ok := k.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// purgeIdle drops keys not seen within idleTTL of now. Caller holds mu.
func (k *Keyed) purgeIdle(now time.Time) {
	for key, e := range k.entries {
		if now.Sub(e.lastSeen) >= k.idleTTL {
			delete(k.entries, key)
		}
	}
	k.lastSweep = now
}
