// Package baseline maintains rolling per-person, per-signal statistics.
//
// Each record keeps a sliding window of daily aggregates (count, sum,
// sum-of-squares) instead of raw samples, bounding memory while allowing
// exact mean/variance recomputation as old days roll out of the window.
// Updates for one (person, signal) key are serialized by the owning shard;
// reads return a point-in-time snapshot and never block writers beyond the
// instant of the copy.
package baseline

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/lantern-care/lantern/internal/domain/model"
	"github.com/lantern-care/lantern/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultShardCount  = 8
	defaultWindowDays  = 14
	defaultMinDays     = 7
	defaultInactiveTTL = 90 * 24 * time.Hour

	secondsPerDay = 86400
)

// Snapshot is a point-in-time copy of one baseline record's statistics.
type Snapshot struct {
	PersonID       string
	SignalID       string
	Mean           float64
	StdDev         float64
	DistinctDays   int
	SampleCount    int
	Mature         bool
	LastValue      float64
	LastObservedAt time.Time
	LastPeriodEnd  time.Time
}

// Store provides write/read access to per-(person, signal) baselines.
type Store interface {
	// Update applies one observation. It fails with model.ErrInvalidObservation
	// for non-finite values or conflicting replays, and with
	// model.ErrStaleObservation for observations older than the retained window.
	// Re-applying an identical observation is a no-op.
	Update(ctx context.Context, obs model.SignalObservation) error

	// Query returns a snapshot of the record for (personID, signalID).
	// Returns ErrNotFound for unknown keys.
	Query(ctx context.Context, personID, signalID string) (Snapshot, error)

	// Sweep evicts records with no activity since now minus the inactivity
	// TTL and returns the number of evicted records.
	Sweep(ctx context.Context, now time.Time) int

	// Count returns the number of live baseline records.
	Count(ctx context.Context) int
}

// bucket aggregates all samples observed on one UTC day.
type bucket struct {
	day   int64 // days since the Unix epoch; -1 when empty
	count int
	sum   float64
	sumsq float64
}

// record is the mutable state for one (person, signal) key. It is owned by
// its shard; all mutation happens under the shard's write lock.
type record struct {
	buckets   []bucket
	latestDay int64

	// seen maps applied observation timestamps (UnixNano) to their values,
	// pruned together with the window. It makes re-ingestion of an identical
	// observation a no-op and rejects conflicting replays.
	seen map[int64]float64

	mean         float64
	variance     float64
	distinctDays int
	sampleCount  int

	lastValue      float64
	lastObservedAt time.Time
	lastPeriodEnd  time.Time
	lastActivity   time.Time
}

type shard struct {
	mu      sync.RWMutex
	records map[string]*record
}

// MemoryStore is the sharded in-memory Store implementation.
type MemoryStore struct {
	shards     []*shard
	shardCount int
	windowDays int64
	minDays    int
	ttl        time.Duration
}

// NewMemoryStore creates a sharded in-memory baseline store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		shardCount: defaultShardCount,
		windowDays: defaultWindowDays,
		minDays:    defaultMinDays,
		ttl:        defaultInactiveTTL,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[string]*record)}
	}

	return s
}

func recordKey(personID, signalID string) string {
	return personID + "\x00" + signalID
}

func (s *MemoryStore) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[int(h.Sum32())%s.shardCount]
}

func dayOf(t time.Time) int64 {
	return t.UTC().Unix() / secondsPerDay
}

// Update applies one observation to its record.
func (s *MemoryStore) Update(ctx context.Context, obs model.SignalObservation) error {
	start := time.Now()
	defer func() {
		metrics.RecordBaselineUpdateLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if math.IsNaN(obs.Value) || math.IsInf(obs.Value, 0) {
		return fmt.Errorf("%w: non-finite value for %s/%s", model.ErrInvalidObservation, obs.PersonID, obs.SignalID)
	}
	if obs.ObservedAt.IsZero() {
		return fmt.Errorf("%w: missing observed_at", model.ErrInvalidObservation)
	}

	key := recordKey(obs.PersonID, obs.SignalID)
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	day := dayOf(obs.ObservedAt)

	rec, ok := sh.records[key]
	if !ok {
		rec = &record{
			buckets:   make([]bucket, s.windowDays),
			latestDay: day,
			seen:      make(map[int64]float64),
		}
		for i := range rec.buckets {
			rec.buckets[i].day = -1
		}
		sh.records[key] = rec
	}

	windowStart := rec.latestDay - s.windowDays + 1
	if day < windowStart {
		return fmt.Errorf("%w: %s/%s observed %s, window starts at day %d",
			model.ErrStaleObservation, obs.PersonID, obs.SignalID,
			obs.ObservedAt.Format(time.RFC3339), windowStart)
	}

	nano := obs.ObservedAt.UnixNano()
	if prev, dup := rec.seen[nano]; dup {
		if prev == obs.Value {
			return nil // idempotent re-ingestion
		}
		return fmt.Errorf("%w: conflicting replay at %s for %s/%s",
			model.ErrInvalidObservation, obs.ObservedAt.Format(time.RFC3339),
			obs.PersonID, obs.SignalID)
	}

	if obs.ObservedAt.Before(rec.lastObservedAt) {
		// Late arrival inside the retained window: still applied, but it
		// forces the full-window recompute below instead of being dropped.
		metrics.RecordBaselineRecompute()
	}

	if day > rec.latestDay {
		rec.latestDay = day
		rec.pruneSeen(rec.latestDay - s.windowDays + 1)
	}

	b := &rec.buckets[day%s.windowDays]
	if b.day != day {
		// Slot either empty or aliased by a day that rolled out of the window.
		*b = bucket{day: day}
	}
	b.count++
	b.sum += obs.Value
	b.sumsq += obs.Value * obs.Value

	rec.seen[nano] = obs.Value
	if !obs.ObservedAt.Before(rec.lastObservedAt) {
		rec.lastObservedAt = obs.ObservedAt
		rec.lastValue = obs.Value
	}
	if obs.PeriodEnd.After(rec.lastPeriodEnd) {
		rec.lastPeriodEnd = obs.PeriodEnd
	}
	rec.lastActivity = time.Now()

	rec.recompute(rec.latestDay - s.windowDays + 1)

	return nil
}

// pruneSeen drops idempotency entries whose observation day fell out of the
// retained window. The map stays bounded by the window contents.
func (r *record) pruneSeen(windowStart int64) {
	for nano := range r.seen {
		if nano/int64(time.Second)/secondsPerDay < windowStart {
			delete(r.seen, nano)
		}
	}
}

// recompute rebuilds mean/variance/counts exactly from the retained buckets.
func (r *record) recompute(windowStart int64) {
	var (
		n     int
		sum   float64
		sumsq float64
		days  int
	)
	for i := range r.buckets {
		b := &r.buckets[i]
		if b.count == 0 || b.day < windowStart || b.day > r.latestDay {
			continue
		}
		n += b.count
		sum += b.sum
		sumsq += b.sumsq
		days++
	}

	r.sampleCount = n
	r.distinctDays = days
	if n == 0 {
		r.mean = 0
		r.variance = 0
		return
	}

	mean := sum / float64(n)
	variance := sumsq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0 // guard against float cancellation
	}
	r.mean = mean
	r.variance = variance
}

// Query returns a snapshot for (personID, signalID).
func (s *MemoryStore) Query(ctx context.Context, personID, signalID string) (Snapshot, error) {
	key := recordKey(personID, signalID)
	sh := s.shardFor(key)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	rec, ok := sh.records[key]
	if !ok {
		return Snapshot{}, fmt.Errorf("baseline for %s/%s: %w", personID, signalID, ErrNotFound)
	}

	return Snapshot{
		PersonID:       personID,
		SignalID:       signalID,
		Mean:           rec.mean,
		StdDev:         math.Sqrt(rec.variance),
		DistinctDays:   rec.distinctDays,
		SampleCount:    rec.sampleCount,
		Mature:         rec.distinctDays >= s.minDays,
		LastValue:      rec.lastValue,
		LastObservedAt: rec.lastObservedAt,
		LastPeriodEnd:  rec.lastPeriodEnd,
	}, nil
}

// Sweep evicts records inactive for longer than the TTL.
func (s *MemoryStore) Sweep(ctx context.Context, now time.Time) int {
	cutoff := now.Add(-s.ttl)
	evicted := 0

	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, rec := range sh.records {
			if rec.lastActivity.Before(cutoff) {
				delete(sh.records, key)
				evicted++
			}
		}
		sh.mu.Unlock()
	}

	if evicted > 0 {
		metrics.RecordBaselineEvictions(evicted)
	}
	metrics.UpdateBaselineRecordCount(s.Count(ctx))
	return evicted
}

// Count returns the number of live baseline records.
func (s *MemoryStore) Count(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.records)
		sh.mu.RUnlock()
	}
	return total
}
