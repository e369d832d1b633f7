// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/lantern-care/lantern/internal/adapters/intervention"
	jobqueue "github.com/lantern-care/lantern/internal/adapters/mq/queue"
	workerpool "github.com/lantern-care/lantern/internal/adapters/mq/worker"
	"github.com/lantern-care/lantern/internal/adapters/repository"
	"github.com/lantern-care/lantern/internal/domain/baseline"
	"github.com/lantern-care/lantern/internal/domain/dedupe"
	"github.com/lantern-care/lantern/internal/domain/model"
	"github.com/lantern-care/lantern/internal/domain/scoring"
	"github.com/lantern-care/lantern/internal/domain/signal"
	"github.com/lantern-care/lantern/pkg/logger"
	"github.com/lantern-care/lantern/pkg/metrics"
)

// Service implements the API dependencies for the risk assessment system.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry    *signal.Registry
	baselines   baseline.Store
	transformer *scoring.Transformer
	composer    *scoring.Composer
	assessments repository.Store
	jobQueue    jobqueue.Queue
	workerPool  *workerpool.Pool
	dispatcher  *intervention.Dispatcher
	sweeper     *cron.Cron

	// Configuration
	workerCount       int
	queueSize         int
	shardCount        int
	windowDays        int
	minDays           int
	baselineTTL       time.Duration
	sweepSchedule     string
	dataDir           string
	historyCap        int
	steepness         float64
	calendarWeight    float64
	musicWeight       float64
	hysteresisMargin  float64
	sustainCount      int
	signalWeights     map[string]float64
	cooldown          time.Duration
	interventionURL   string
	retryInitial      time.Duration
	retryMultiplier   float64
	retryMaxAttempts  uint64
	disabledCategory  map[model.Category]bool

	// State
	started bool
	now     func() time.Time

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU() * 4,
		queueSize:        100_000,
		shardCount:       8,
		windowDays:       14,
		minDays:          7,
		baselineTTL:      90 * 24 * time.Hour,
		sweepSchedule:    "0 3 * * *",
		dataDir:          "data",
		historyCap:       500,
		steepness:        1.0,
		calendarWeight:   0.5,
		musicWeight:      0.4,
		hysteresisMargin: 5,
		sustainCount:     2,
		cooldown:         24 * time.Hour,
		retryInitial:     200 * time.Millisecond,
		retryMultiplier:  4,
		retryMaxAttempts: 3,
		disabledCategory: make(map[model.Category]bool),
		now:              time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting risk assessment service...")

	regOpts := []signal.Option{signal.WithWeightOverrides(s.signalWeights)}
	for c := range s.disabledCategory {
		regOpts = append(regOpts, signal.WithSourceDisabled(c))
	}
	s.registry = signal.New(regOpts...)

	s.baselines = baseline.NewMemoryStore(
		baseline.WithShardCount(s.shardCount),
		baseline.WithWindowDays(s.windowDays),
		baseline.WithMinDays(s.minDays),
		baseline.WithInactiveTTL(s.baselineTTL),
	)

	s.transformer = scoring.NewTransformer(scoring.WithSteepness(s.steepness))
	s.composer = scoring.NewComposer(
		scoring.WithCategoryWeights(s.calendarWeight, s.musicWeight),
		scoring.WithHysteresisMargin(s.hysteresisMargin),
		scoring.WithSustainCount(s.sustainCount),
	)

	if s.assessments == nil {
		store, err := repository.NewSQLiteStore(s.dataDir,
			repository.WithHistoryCap(s.historyCap))
		if err != nil {
			return fmt.Errorf("open assessment store: %w", err)
		}
		s.assessments = store
	}

	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
	)

	var notifier intervention.Notifier
	if s.interventionURL != "" {
		notifier = intervention.NewHTTPNotifier(s.interventionURL)
	} else {
		notifier = intervention.NewLogNotifier()
		s.logger.Info(ctx, "no intervention endpoint configured, notices will be logged")
	}
	s.dispatcher = intervention.NewDispatcher(
		notifier,
		dedupe.NewInMemoryTracker(),
		intervention.WithCooldown(s.cooldown),
		intervention.WithRetry(s.retryInitial, s.retryMultiplier, s.retryMaxAttempts),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s)
	s.workerPool.Start(ctx)

	s.sweeper = cron.New()
	if _, err := s.sweeper.AddFunc(s.sweepSchedule, func() {
		sweepCtx := context.Background()
		evicted := s.baselines.Sweep(sweepCtx, s.now())
		if evicted > 0 {
			s.logger.Info(sweepCtx, "baseline sweep completed",
				logger.Int("evicted", evicted),
			)
		}
	}); err != nil {
		return fmt.Errorf("schedule baseline sweep: %w", err)
	}
	s.sweeper.Start()

	s.started = true
	s.logger.Info(ctx, "risk assessment service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("signals", s.registry.Size()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping risk assessment service...")

	if s.sweeper != nil {
		s.sweeper.Stop()
	}

	// Shutdown closes the queue first so workers drain remaining jobs.
	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}

	if s.assessments != nil {
		if err := s.assessments.Close(); err != nil {
			s.logger.Error(ctx, "error closing assessment store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "risk assessment service stopped")
}

// IngestSignal validates an observation, folds it into the person's
// baseline, and schedules an assessment recompute. Validation and baseline
// conflicts surface synchronously so callers can acknowledge accurately.
func (s *Service) IngestSignal(ctx context.Context, obs model.SignalObservation) error {
	if err := obs.Validate(); err != nil {
		metrics.RecordObservationRejected("invalid")
		return err
	}

	desc, ok := s.registry.Lookup(obs.SignalID)
	if !ok {
		metrics.RecordObservationRejected("unknown_signal")
		return fmt.Errorf("%w: unknown signal %q", model.ErrInvalidObservation, obs.SignalID)
	}
	if desc.Category != obs.Category {
		metrics.RecordObservationRejected("category_mismatch")
		return fmt.Errorf("%w: signal %q belongs to category %q",
			model.ErrInvalidObservation, obs.SignalID, desc.Category)
	}

	if !s.registry.SourceEnabled(desc.Category) {
		// Accepted but inert: a disabled source must not shift baselines.
		metrics.RecordObservationRejected("source_disabled")
		s.logger.Debug(ctx, "dropping observation for disabled source",
			logger.String("signalID", obs.SignalID),
		)
		return nil
	}

	if err := s.baselines.Update(ctx, obs); err != nil {
		switch {
		case errors.Is(err, model.ErrStaleObservation):
			metrics.RecordObservationRejected("stale")
		default:
			metrics.RecordObservationRejected("invalid")
		}
		return err
	}
	metrics.RecordObservationAccepted()

	if !s.jobQueue.Enqueue(ctx, jobqueue.Job{
		PersonID:    obs.PersonID,
		TriggeredBy: obs.SignalID,
	}) {
		s.logger.Warn(ctx, "assessment queue full, recompute deferred",
			logger.String("personID", obs.PersonID),
		)
	}

	return nil
}

// Assess recomputes, persists, and dispatches one person's assessment.
// It satisfies the worker pool's Assessor interface.
func (s *Service) Assess(ctx context.Context, personID, trigger string) error {
	_, err := s.ComputeAssessment(ctx, personID, trigger)
	return err
}

// ComputeAssessment builds a fresh assessment for a person from current
// baselines, persists it, and dispatches an intervention when the level
// escalated into actionable territory.
func (s *Service) ComputeAssessment(ctx context.Context, personID, trigger string) (*model.Assessment, error) {
	start := s.now()
	defer func() {
		metrics.RecordAssessmentLatency(float64(time.Since(start).Milliseconds()))
	}()

	subs, periodEnd := s.collectSubScores(ctx, personID)

	var calendarSubs, musicSubs []scoring.SubScore
	for _, sub := range subs {
		switch sub.Category {
		case model.CategoryCalendar:
			calendarSubs = append(calendarSubs, sub)
		case model.CategoryMusic:
			musicSubs = append(musicSubs, sub)
		}
	}

	calendarScore := scoring.Combine(calendarSubs)
	musicScore := scoring.Combine(musicSubs)
	mf := scoring.MaturityFraction(subs, len(s.registry.Enabled()))

	prev, err := s.assessments.Latest(ctx, personID)
	hasPrev := err == nil
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn(ctx, "previous assessment unavailable, skipping hysteresis",
			logger.String("personID", personID),
			logger.Error(err),
		)
	}

	in := scoring.Inputs{
		PersonID:         personID,
		CalendarScore:    calendarScore,
		MusicScore:       musicScore,
		MaturityFraction: mf,
		HasPrevious:      hasPrev,
	}
	if hasPrev {
		in.PreviousLevel = prev.Level
	}
	res := s.composer.Compose(in)

	a := &model.Assessment{
		ID:               uuid.NewString(),
		PersonID:         personID,
		ComputedAt:       s.now(),
		PeriodEnd:        periodEnd,
		CalendarScore:    calendarScore,
		MusicScore:       musicScore,
		MaturityFraction: mf,
		RawScore:         res.Raw,
		FinalScore:       res.Final,
		Level:            res.Level,
		PreviousLevel:    res.PreviousLevel,
		Breakdown:        scoring.Breakdown(subs),
		Explanations:     scoring.Explain(subs),
		Escalated:        res.Escalated,
	}

	if err := s.appendWithRetry(ctx, a); err != nil {
		// Keep serving the computed result, but flag that history is
		// missing it and hold back the intervention.
		a.Degraded = true
		metrics.RecordAssessmentDegraded()
		metrics.RecordPersistenceFailure()
		s.logger.Error(ctx, "assessment persistence failed",
			logger.String("personID", personID),
			logger.Error(err),
		)
	}

	metrics.RecordAssessmentComputed()
	if hasPrev && prev.Level != a.Level {
		metrics.RecordLevelTransition(string(prev.Level), string(a.Level))
	}

	if a.Escalated && !a.Degraded {
		out := s.dispatcher.Dispatch(ctx, a)
		if out.Fired {
			s.logger.Info(ctx, "escalation dispatched",
				logger.String("personID", personID),
				logger.String("level", string(a.Level)),
				logger.String("trigger", trigger),
			)
		}
	}

	return a, nil
}

// collectSubScores queries every enabled signal's baseline and transforms
// the latest observed value into a sub-score. Signals without history are
// absent from the result. The returned period end is the most recent one
// across the person's signals.
func (s *Service) collectSubScores(ctx context.Context, personID string) ([]scoring.SubScore, time.Time) {
	var (
		subs      []scoring.SubScore
		periodEnd time.Time
	)
	for _, desc := range s.registry.Enabled() {
		snap, err := s.baselines.Query(ctx, personID, desc.ID)
		if err != nil {
			continue
		}
		subs = append(subs, scoring.SubScore{
			SignalID: desc.ID,
			Category: desc.Category,
			Score:    s.transformer.Transform(snap.LastValue, snap, desc.Direction),
			Weight:   desc.Weight,
			Mature:   snap.Mature,
			RawValue: snap.LastValue,
			ZScore:   s.transformer.ZScore(snap.LastValue, snap, desc.Direction),
		})
		if snap.LastPeriodEnd.After(periodEnd) {
			periodEnd = snap.LastPeriodEnd
		}
	}
	if periodEnd.IsZero() {
		periodEnd = s.now().UTC().Truncate(24 * time.Hour)
	}
	return subs, periodEnd
}

// appendWithRetry persists an assessment, retrying transient store errors
// with exponential backoff.
func (s *Service) appendWithRetry(ctx context.Context, a *model.Assessment) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryInitial
	policy.Multiplier = s.retryMultiplier
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	attempts := 0
	return backoff.Retry(func() error {
		if attempts > 0 {
			metrics.RecordPersistenceRetry()
		}
		attempts++

		appendStart := s.now()
		err := s.assessments.Append(ctx, a)
		metrics.RecordAppendLatency(float64(time.Since(appendStart).Milliseconds()))
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, s.retryMaxAttempts), ctx))
}

// LatestAssessment returns the newest stored assessment for a person.
func (s *Service) LatestAssessment(ctx context.Context, personID string) (*model.Assessment, error) {
	return s.assessments.Latest(ctx, personID)
}

// History returns stored assessments for a person, newest first.
func (s *Service) History(ctx context.Context, personID string, limit, offset int) ([]*model.Assessment, error) {
	return s.assessments.History(ctx, personID, limit, offset)
}

// Baseline returns the live baseline snapshot for one (person, signal) key.
func (s *Service) Baseline(ctx context.Context, personID, signalID string) (baseline.Snapshot, error) {
	if _, ok := s.registry.Lookup(signalID); !ok {
		return baseline.Snapshot{}, fmt.Errorf("%w: unknown signal %q",
			model.ErrInvalidObservation, signalID)
	}
	return s.baselines.Query(ctx, personID, signalID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"windowDays":  s.windowDays,
		"minDays":     s.minDays,
		"signals":     0,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		baselineCount := s.baselines.Count(ctx)
		stats["queueLength"] = queueLen
		stats["baselineRecords"] = baselineCount
		stats["signals"] = s.registry.Size()

		if persons, err := s.assessments.CountPersons(ctx); err == nil {
			stats["personsAssessed"] = persons
			metrics.UpdatePersonsTracked(persons)
		}

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateBaselineRecordCount(baselineCount)
	}

	return stats
}
