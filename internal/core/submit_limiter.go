package core

// submit_limiter.go bounds the number of submissions in flight.
//
// Each submission holds one slot of a buffered channel for the duration of
// encode + transmit. A caller that finds every slot taken waits up to maxWait
// and then fails with ErrTooManySubmissions. The server drains the limiter on
// shutdown so that accepted submissions are not cut off mid-transmit.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManySubmissions is returned when no slot frees up within the wait
// window. The form stays intact and the user may submit again.
var ErrTooManySubmissions = errors.New("too many concurrent submissions, please try again later")

const (
	DefaultMaxConcurrentSubmissions = 8
	DefaultSubmitWait               = 15 * time.Second
	drainPollInterval               = 50 * time.Millisecond
)

// SubmitLimiter is a counting semaphore for submissions.
type SubmitLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int32
}

// NewSubmitLimiter allows maxConcurrent submissions at once. Non-positive
// arguments fall back to the defaults.
func NewSubmitLimiter(maxConcurrent int, maxWait time.Duration) *SubmitLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentSubmissions
	}
	if maxWait <= 0 {
		maxWait = DefaultSubmitWait
	}
	return &SubmitLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait. The caller must Release
// after a nil return.
func (l *SubmitLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManySubmissions
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *SubmitLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *SubmitLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// ActiveCount returns the number of submissions holding a slot.
func (l *SubmitLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *SubmitLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// Available returns the number of free slots.
func (l *SubmitLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no submission holds a slot or ctx ends.
func (l *SubmitLimiter) WaitForDrain(ctx context.Context) error {
	if l.ActiveCount() == 0 {
		return nil
	}
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// SubmitLimiterStatus is a point-in-time view of the limiter.
type SubmitLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports the limiter state for the health endpoint.
func (l *SubmitLimiter) Status() SubmitLimiterStatus {
	return SubmitLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
