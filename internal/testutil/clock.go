package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant a DeterministicClock reports.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock is a fake wall clock for tests. Every call to Now
// advances it by a fixed step, so durations and timestamps in golden output
// are stable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	seq  int64
	step time.Duration
}

// NewDeterministicClock creates a clock that advances by step per reading.
// A zero step defaults to one millisecond.
func NewDeterministicClock(step time.Duration) *DeterministicClock {
	if step == 0 {
		step = time.Millisecond
	}
	return &DeterministicClock{step: step}
}

// Now returns Epoch plus one step for every earlier reading.
// The first call returns Epoch.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.seq) * c.step)
	c.seq++
	return t
}

// Readings returns how many times Now has been called.
func (c *DeterministicClock) Readings() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
