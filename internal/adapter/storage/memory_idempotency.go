package storage

import (
	"context"
	"sync"
	"time"
)

// idempotencySweepEvery is how many reservations pass between full scans for
// expired keys.
const idempotencySweepEvery = 1024

// MemoryIdempotency is the in-process stand-in for RedisAdapter.SetIdempotency
// when no Redis is configured. An expired key is deleted when it is looked up,
// and every idempotencySweepEvery reservations all expired keys are deleted.
type MemoryIdempotency struct {
	mu         sync.Mutex
	keys       map[string]time.Time
	ttl        time.Duration
	now        func() time.Time
	sweepEvery int
	writes     int
}

func NewMemoryIdempotency(ttl time.Duration) *MemoryIdempotency {
	if ttl <= 0 {
		ttl = idempotencyKeyTTL
	}
	return &MemoryIdempotency{
		keys:       make(map[string]time.Time),
		ttl:        ttl,
		now:        time.Now,
		sweepEvery: idempotencySweepEvery,
	}
}

func (m *MemoryIdempotency) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if expires, ok := m.keys[key]; ok {
		if now.Before(expires) {
			return false, nil
		}
		delete(m.keys, key)
	}

	m.writes++
	if m.writes >= m.sweepEvery {
		m.writes = 0
		m.sweep(now)
	}
	m.keys[key] = now.Add(m.ttl)
	return true, nil
}

func (m *MemoryIdempotency) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.keys, key)
	return nil
}

// sweep must be called with mu held.
func (m *MemoryIdempotency) sweep(now time.Time) {
	for key, expires := range m.keys {
		if !now.Before(expires) {
			delete(m.keys, key)
		}
	}
}
