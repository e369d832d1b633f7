// Package queue defines the contract for enqueuing and consuming
// assessment jobs.
//
// Jobs are coalesced per person: a burst of observations for the same
// person while a job is already pending produces a single recompute.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/lantern-care/lantern/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 100000
)

// Job asks the worker pool to recompute one person's assessment.
type Job struct {
	PersonID    string
	TriggeredBy string
	Enqueued    time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job for the person unless one is already pending.
	// Returns false if the queue is full and the job was not enqueued.
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns a channel that will receive jobs as they become
	// available. The channel will be closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new jobs can be enqueued and the dequeue channel
	// will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel plus a pending
// set for per-person coalescing.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu      sync.Mutex
	pending map[string]struct{}
	closed  bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.jobs = make(chan Job, q.capacity)
	q.pending = make(map[string]struct{})

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a job to the queue. A job for a person that already has one
// pending is coalesced into it and reported as accepted.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}

	if _, ok := q.pending[j.PersonID]; ok {
		metrics.RecordJobCoalesced()
		return true
	}

	if j.Enqueued.IsZero() {
		j.Enqueued = time.Now()
	}

	select {
	case q.jobs <- j:
		q.pending[j.PersonID] = struct{}{}
		metrics.RecordQueueEnqueue()
		q.publishSize()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false
	default:
		metrics.RecordQueueEnqueueError()
		return false // queue is full
	}
}

// Dequeue returns a channel that will receive jobs as they become available.
// A person becomes eligible for a new job the moment their current one is
// handed to a consumer.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	dequeueChan := make(chan Job)
	go func() {
		defer close(dequeueChan)
		for job := range q.jobs {
			select {
			case dequeueChan <- job:
				q.mu.Lock()
				delete(q.pending, job.PersonID)
				q.publishSize()
				q.mu.Unlock()
				metrics.RecordQueueDequeue()
			case <-ctx.Done():
				q.mu.Lock()
				delete(q.pending, job.PersonID)
				q.mu.Unlock()
				return
			}
		}
	}()
	return dequeueChan
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.jobs)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil // already closed
	}

	close(q.jobs)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// publishSize refreshes the size and utilization gauges. Caller holds q.mu.
func (q *InMemoryQueue) publishSize() {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
