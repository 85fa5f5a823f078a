package util

import "sync/atomic"

// SafeCounter is a counter safe for concurrent use.
type SafeCounter struct {
	value atomic.Int64
}

// Increment adds one and returns the new value.
func (c *SafeCounter) Increment() int {
	return int(c.value.Add(1))
}

// Value returns the current count.
func (c *SafeCounter) Value() int {
	return int(c.value.Load())
}

// SafeFlag guards work that must not overlap with itself.
type SafeFlag struct {
	value atomic.Bool
}

// TryAcquire sets the flag and reports whether it was clear before.
func (f *SafeFlag) TryAcquire() bool {
	return f.value.CompareAndSwap(false, true)
}

// Release clears the flag.
func (f *SafeFlag) Release() {
	f.value.Store(false)
}

// Value reports whether the flag is set.
func (f *SafeFlag) Value() bool {
	return f.value.Load()
}
