package dedupe

// Option configures the in-memory tracker.
type Option func(*inMemoryTracker)

// WithMaxSize sets the per-generation key limit. A value of 0 or below
// disables rotation entirely, keeping every key forever.
func WithMaxSize(n int) Option {
	return func(t *inMemoryTracker) {
		t.maxSize = n
	}
}
