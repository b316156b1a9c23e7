package shipping

import (
	"sync"
	"time"
)

type cached[T any] struct {
	val    T
	stored time.Time
}

// staleCache keeps the last value per key forever and reports whether it is
// still within ttl. Expired values are kept so they can be served when the
// upstream is down.
type staleCache[T any] struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]cached[T]
}

func newStaleCache[T any](ttl time.Duration, now func() time.Time) *staleCache[T] {
	return &staleCache[T]{ttl: ttl, now: now, m: map[string]cached[T]{}}
}

// get returns the value, whether one exists, and whether it is fresh.
func (c *staleCache[T]) get(key string) (T, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok {
		var zero T
		return zero, false, false
	}
	return e.val, true, c.now().Sub(e.stored) < c.ttl
}

func (c *staleCache[T]) put(key string, v T) {
	c.mu.Lock()
	c.m[key] = cached[T]{val: v, stored: c.now()}
	c.mu.Unlock()
}
