package throttle

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count   int64
	expires time.Time
}

// Memory is an in-process Counter.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewMemory creates an empty Memory counter using clock, or time.Now when
// clock is nil.
func NewMemory(clock func() time.Time) *Memory {
	if clock == nil {
		clock = time.Now
	}
	return &Memory{entries: make(map[string]*entry), now: clock}
}

func (m *Memory) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || !now.Before(e.expires) {
		m.sweep(now)
		e = &entry{expires: now.Add(ttl)}
		m.entries[key] = e
	}
	e.count++
	return e.count, nil
}

// sweep drops expired entries. Callers hold mu.
func (m *Memory) sweep(now time.Time) {
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
}
