package service

import (
	"time"

	"github.com/lantern-care/lantern/internal/adapters/repository"
	"github.com/lantern-care/lantern/internal/domain/model"
	"github.com/lantern-care/lantern/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of assessment workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the assessment job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithShardCount sets the number of baseline store shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithBaselineWindow sets the rolling window length and the distinct-day
// maturity threshold.
func WithBaselineWindow(windowDays, minDays int) Option {
	return func(s *Service) {
		if windowDays > 0 {
			s.windowDays = windowDays
		}
		if minDays > 0 {
			s.minDays = minDays
		}
	}
}

// WithBaselineTTL sets the inactivity TTL for baseline eviction.
func WithBaselineTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.baselineTTL = ttl
		}
	}
}

// WithSweepSchedule sets the cron expression for the baseline sweep.
func WithSweepSchedule(expr string) Option {
	return func(s *Service) {
		if expr != "" {
			s.sweepSchedule = expr
		}
	}
}

// WithDataDir sets the directory holding the assessment database.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithHistoryCap limits stored assessments per person.
func WithHistoryCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyCap = n
		}
	}
}

// WithLogisticSteepness tunes the deviation-to-score curve.
func WithLogisticSteepness(k float64) Option {
	return func(s *Service) {
		if k > 0 {
			s.steepness = k
		}
	}
}

// WithCategoryWeights blends category scores into the raw score.
func WithCategoryWeights(calendar, music float64) Option {
	return func(s *Service) {
		if calendar >= 0 && music >= 0 && calendar+music > 0 {
			s.calendarWeight = calendar
			s.musicWeight = music
		}
	}
}

// WithHysteresis sets the level margin and the de-escalation sustain count.
func WithHysteresis(margin float64, sustain int) Option {
	return func(s *Service) {
		if margin >= 0 {
			s.hysteresisMargin = margin
		}
		if sustain > 0 {
			s.sustainCount = sustain
		}
	}
}

// WithSignalWeights overrides per-signal weights within a category.
func WithSignalWeights(weights map[string]float64) Option {
	return func(s *Service) {
		s.signalWeights = weights
	}
}

// WithSourceDisabled drops observations from one category entirely.
func WithSourceDisabled(c model.Category) Option {
	return func(s *Service) {
		s.disabledCategory[c] = true
	}
}

// WithInterventionCooldown sets the minimum gap between notices per person.
func WithInterventionCooldown(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cooldown = d
		}
	}
}

// WithInterventionURL sets the external check-in agent endpoint.
func WithInterventionURL(url string) Option {
	return func(s *Service) {
		s.interventionURL = url
	}
}

// WithRetryPolicy shapes the backoff used for persistence and delivery.
func WithRetryPolicy(initial time.Duration, multiplier float64, maxAttempts uint64) Option {
	return func(s *Service) {
		if initial > 0 {
			s.retryInitial = initial
		}
		if multiplier > 1 {
			s.retryMultiplier = multiplier
		}
		s.retryMaxAttempts = maxAttempts
	}
}

// WithAssessmentStore injects a pre-built store, mainly for tests.
func WithAssessmentStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.assessments = store
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
