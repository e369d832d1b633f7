package baseline

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithShardCount sets the number of shards in the store.
func WithShardCount(count int) Option {
	return func(s *MemoryStore) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithWindowDays sets the length of the sliding daily-aggregate window.
func WithWindowDays(days int) Option {
	return func(s *MemoryStore) {
		if days > 0 {
			s.windowDays = int64(days)
		}
	}
}

// WithMinDays sets the distinct-day count at which a baseline matures.
func WithMinDays(days int) Option {
	return func(s *MemoryStore) {
		if days > 0 {
			s.minDays = days
		}
	}
}

// WithInactiveTTL sets the inactivity duration after which a record is
// eligible for eviction by Sweep.
func WithInactiveTTL(ttl time.Duration) Option {
	return func(s *MemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}
