package cache

import "sync"

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  uint64
}

func (c *SafeCounter) Value() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v uint64) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

// Inc increments the counter and returns the new value
func (c *SafeCounter) Inc() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v++
	return c.v
}

// Every reports whether the counter sits on a multiple of n. n <= 1 is always true.
func (c *SafeCounter) Every(n uint64) bool {
	if n <= 1 {
		return true
	}
	return c.Value()%n == 0
}
