// Package dedupe defines the interface for idempotency tracking.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Tracker records seen keys to ensure at-most-once side effects, such as
// firing an intervention once per assessment window.
type Tracker interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key from the seen set, allowing it to be retried.
	// This should only be used when a key was recorded but the side effect
	// it guards never happened (e.g., delivery failed permanently).
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryTracker implements Tracker with two map generations. When the
// current generation fills up it becomes the previous one and a fresh map
// takes its place, so memory stays bounded at roughly 2*maxSize keys and
// the oldest keys age out first.
type inMemoryTracker struct {
	mu      sync.Mutex
	current map[string]struct{}
	prev    map[string]struct{}
	maxSize int // per generation; 0 or negative disables rotation
	size    atomic.Int64
}

// NewInMemoryTracker creates a new in-memory tracker with configuration options.
func NewInMemoryTracker(opts ...Option) Tracker {
	t := &inMemoryTracker{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.current = make(map[string]struct{})
	return t
}

func (t *inMemoryTracker) SeenAndRecord(ctx context.Context, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.current[key]; ok {
		return true
	}
	if _, ok := t.prev[key]; ok {
		return true
	}

	if t.maxSize > 0 && len(t.current) >= t.maxSize {
		t.size.Add(-int64(len(t.prev)))
		t.prev = t.current
		t.current = make(map[string]struct{})
	}
	t.current[key] = struct{}{}
	t.size.Add(1)
	return false
}

func (t *inMemoryTracker) Unrecord(ctx context.Context, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.current[key]; ok {
		delete(t.current, key)
		t.size.Add(-1)
		return
	}
	if _, ok := t.prev[key]; ok {
		delete(t.prev, key)
		t.size.Add(-1)
	}
}

// Size returns the current number of tracked keys across both generations.
func (t *inMemoryTracker) Size() int64 {
	return t.size.Load()
}
