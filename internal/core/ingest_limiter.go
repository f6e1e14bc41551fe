package core

// ingest_limiter.go bounds how many ingestions decode at once.
//
// Slots are a buffered channel used as a semaphore. Acquire waits up to
// maxWait for a slot before failing with ErrTooManyIngestions; shutdown
// uses WaitForDrain to let running ingestions finish.

import (
	"context"
	"errors"
	"time"
)

// ErrTooManyIngestions is returned when no slot frees up within the wait
// period. Clients should retry after a short delay.
var ErrTooManyIngestions = errors.New("too many concurrent ingestions, please try again later")

// Limiter defaults.
const (
	DefaultMaxConcurrentIngestions = 4
	DefaultMaxWaitTime             = 30 * time.Second
)

// IngestLimiter caps concurrent ingestions.
type IngestLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
}

// NewIngestLimiter creates a limiter with maxConcurrent slots.
// Non-positive arguments fall back to the defaults.
func NewIngestLimiter(maxConcurrent int, maxWait time.Duration) *IngestLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentIngestions
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &IngestLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait. The caller must Release
// the slot when its ingestion ends.
func (l *IngestLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyIngestions
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *IngestLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *IngestLimiter) Release() {
	<-l.slots
}

// Active returns the number of slots in use.
func (l *IngestLimiter) Active() int {
	return len(l.slots)
}

// Capacity returns the total number of slots.
func (l *IngestLimiter) Capacity() int {
	return cap(l.slots)
}

// WaitForDrain blocks until every slot is free or ctx ends.
func (l *IngestLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.Active() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a monitoring snapshot.
type LimiterStatus struct {
	Active   int `json:"active"`
	Capacity int `json:"capacity"`
}

// Status returns the limiter's current occupancy.
func (l *IngestLimiter) Status() LimiterStatus {
	return LimiterStatus{Active: l.Active(), Capacity: l.Capacity()}
}
