package chrono

import (
	"context"
	"sync"
	"time"
)

// FakeImpl is a clock frozen at a given time, sleeps return immediately and
// are recorded.
type FakeImpl struct {
	mutex  sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func NewFakeImpl(now time.Time) *FakeImpl {
	return &FakeImpl{now: now}
}

func (f *FakeImpl) Now() time.Time {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.now
}

func (f *FakeImpl) Sleep(ctx context.Context, d time.Duration) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.sleeps = append(f.sleeps, d)
	return ctx.Err()
}

// Sleeps returns every duration passed to Sleep so far.
func (f *FakeImpl) Sleeps() []time.Duration {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}
