// Package cooldown throttles repeated scans between the same ordered pair of
// users. Direction matters: a scan X→Y and a later scan Y→X are independent
// entries that never throttle each other.
package cooldown

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of a limiter check. When not allowed, RetryAfter
// is the remaining wait before the same pair may scan again.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter is the rate-limit check for an ordered (scanner, scanned) pair.
// Swapping the implementation (in-memory vs Redis) changes the deployment
// scale, not the contract.
type Limiter interface {
	TryAcquire(ctx context.Context, scannerID, scannedID string) (Decision, error)
}

// MemoryLimiter keeps last-accepted timestamps in a process-local map.
// Single-instance only: it does not synchronize across server processes.
type MemoryLimiter struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewMemory creates an in-memory limiter with the given cooldown window.
func NewMemory(window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		window: window,
		now:    time.Now,
		last:   make(map[string]time.Time),
	}
}

func pairKey(scannerID, scannedID string) string {
	return scannerID + ":" + scannedID
}

// TryAcquire allows the scan and records now for the pair, unless the
// previous accepted scan is still inside the window. The check and the
// record happen under one lock so concurrent attempts for the same pair
// admit exactly one caller per window.
func (l *MemoryLimiter) TryAcquire(_ context.Context, scannerID, scannedID string) (Decision, error) {
	key := pairKey(scannerID, scannedID)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.last[key]; ok {
		if elapsed := now.Sub(last); elapsed < l.window {
			return Decision{RetryAfter: l.window - elapsed}, nil
		}
	}
	l.last[key] = now
	return Decision{Allowed: true}, nil
}

// PurgeExpired drops entries older than the window. Best effort: it bounds
// memory, correctness never depends on it.
func (l *MemoryLimiter) PurgeExpired() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, last := range l.last {
		if now.Sub(last) > l.window {
			delete(l.last, key)
		}
	}
}

// StartPurgeLoop purges expired entries at window cadence until ctx is done.
func (l *MemoryLimiter) StartPurgeLoop(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.PurgeExpired()
			}
		}
	}()
}

// Len reports how many pairs are currently tracked.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.last)
}
