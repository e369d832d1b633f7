// Package intervention dispatches escalation notices to an external
// check-in agent.
package intervention

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lantern-care/lantern/internal/domain/dedupe"
	"github.com/lantern-care/lantern/internal/domain/model"
	"github.com/lantern-care/lantern/pkg/logger"
	"github.com/lantern-care/lantern/pkg/metrics"
)

// Default dispatcher configuration constants.
const (
	defaultCooldown        = 24 * time.Hour
	defaultAttemptTimeout  = 5 * time.Second
	defaultInitialInterval = 200 * time.Millisecond
	defaultMultiplier      = 4.0
	defaultMaxRetries      = 3
)

// Suppression reasons reported on the outcome and in metrics.
const (
	ReasonCooldown     = "cooldown"
	ReasonDuplicate    = "duplicate"
	ReasonNotEscalated = "not_escalated"
)

// Notice is the payload handed to the external agent.
type Notice struct {
	PersonID     string      `json:"person_id"`
	Level        model.Level `json:"level"`
	FinalScore   float64     `json:"final_score"`
	Explanations []string    `json:"explanations"`
	AssessedAt   time.Time   `json:"assessed_at"`
}

// Notifier delivers a notice to the outside world.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// Outcome describes what the dispatcher did with an assessment.
type Outcome struct {
	Fired      bool
	Suppressed string // empty unless suppressed
	Degraded   bool   // delivery failed after retries
}

// Dispatcher decides whether an escalated assessment becomes an outbound
// notice, enforcing the per-person cooldown and once-per-window delivery.
type Dispatcher struct {
	notifier Notifier
	tracker  dedupe.Tracker

	cooldown        time.Duration
	attemptTimeout  time.Duration
	initialInterval time.Duration
	multiplier      float64
	maxRetries      uint64

	mu       sync.Mutex
	lastSent map[string]time.Time

	now    func() time.Time
	logger logger.Logger
}

// NewDispatcher creates a dispatcher with configuration options.
func NewDispatcher(notifier Notifier, tracker dedupe.Tracker, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifier:        notifier,
		tracker:         tracker,
		cooldown:        defaultCooldown,
		attemptTimeout:  defaultAttemptTimeout,
		initialInterval: defaultInitialInterval,
		multiplier:      defaultMultiplier,
		maxRetries:      defaultMaxRetries,
		lastSent:        make(map[string]time.Time),
		now:             time.Now,
		logger:          logger.Get().Named("intervention"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch evaluates an assessment and, when warranted, delivers a notice.
// Every strict escalation is actionable regardless of the level reached.
func (d *Dispatcher) Dispatch(ctx context.Context, a *model.Assessment) Outcome {
	if !a.Escalated {
		metrics.RecordInterventionSuppressed(ReasonNotEscalated)
		return Outcome{Suppressed: ReasonNotEscalated}
	}

	key := a.PersonID + "/" + strconv.FormatInt(a.PeriodEnd.UnixNano(), 10)

	d.mu.Lock()
	last, ok := d.lastSent[a.PersonID]
	if ok && d.now().Sub(last) < d.cooldown {
		d.mu.Unlock()
		metrics.RecordInterventionSuppressed(ReasonCooldown)
		d.logger.Debug(ctx, "intervention suppressed by cooldown",
			logger.String("personID", a.PersonID),
		)
		return Outcome{Suppressed: ReasonCooldown}
	}
	d.mu.Unlock()

	if d.tracker.SeenAndRecord(ctx, key) {
		metrics.RecordInterventionSuppressed(ReasonDuplicate)
		return Outcome{Suppressed: ReasonDuplicate}
	}

	notice := Notice{
		PersonID:     a.PersonID,
		Level:        a.Level,
		FinalScore:   a.FinalScore,
		Explanations: a.Explanations,
		AssessedAt:   a.ComputedAt,
	}

	if err := d.deliver(ctx, notice); err != nil {
		// Let a later assessment in the same window try again.
		d.tracker.Unrecord(ctx, key)
		metrics.RecordInterventionFailure()
		d.logger.Error(ctx, "intervention delivery failed",
			logger.String("personID", a.PersonID),
			logger.Error(err),
		)
		return Outcome{Degraded: true}
	}

	d.mu.Lock()
	d.lastSent[a.PersonID] = d.now()
	d.mu.Unlock()

	metrics.RecordInterventionFired()
	d.logger.Info(ctx, "intervention dispatched",
		logger.String("personID", a.PersonID),
		logger.String("level", string(a.Level)),
		logger.Float64("finalScore", a.FinalScore),
	)
	return Outcome{Fired: true}
}

// deliver retries the notifier with exponential backoff.
func (d *Dispatcher) deliver(ctx context.Context, n Notice) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.initialInterval
	policy.Multiplier = d.multiplier
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, d.attemptTimeout)
		defer cancel()
		return d.notifier.Notify(attemptCtx, n)
	}

	err := backoff.Retry(attempt, backoff.WithContext(
		backoff.WithMaxRetries(policy, d.maxRetries), ctx))
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// Forget drops cooldown state for a person.
func (d *Dispatcher) Forget(personID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.lastSent, personID)
}
