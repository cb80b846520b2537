package clock

import (
	"sync"
	"time"
)

// Clock abstracts wall time so session arithmetic is testable
// without real waits.
type Clock interface {
	Now() time.Time
}

type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

// Frozen is a settable clock for tests.
type Frozen struct {
	mu sync.Mutex
	t  time.Time
}

func NewFrozen(t time.Time) *Frozen {
	return &Frozen{t: t}
}

func (f *Frozen) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *Frozen) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = t
}

func (f *Frozen) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}
