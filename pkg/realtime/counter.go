package realtime

import "sync"

// Counter is the session-local unread counter. It overlays incremental
// deliveries on top of the last authoritative server snapshot; Sync
// always wins when a fresh snapshot arrives.
type Counter struct {
	mtx   sync.Mutex
	value int64
}

func NewCounter() *Counter {
	return &Counter{}
}

// Sync replaces the counter with the authoritative server value.
func (c *Counter) Sync(n int64) int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if n < 0 {
		n = 0
	}
	c.value = n
	return c.value
}

// Increment bumps the counter for a delivered notification.
func (c *Counter) Increment() int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.value++
	return c.value
}

// Decrement lowers the counter, floored at zero.
func (c *Counter) Decrement() int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.value > 0 {
		c.value--
	}
	return c.value
}

// Reset zeroes the counter, e.g. after a mark-all-read.
func (c *Counter) Reset() int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.value = 0
	return c.value
}

// Value returns the current overlay value.
func (c *Counter) Value() int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.value
}
