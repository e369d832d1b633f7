// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir holds the assessment database.
	DataDir string `koanf:"data_dir"`

	// JobQueueSize bounds the in-memory assessment job queue.
	JobQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of assessment workers.
	WorkerCount int `koanf:"worker_count"`

	// ShardCount configures the number of shards in the baseline store.
	ShardCount int `koanf:"shard_count"`

	// WindowDays sets the rolling baseline window length.
	WindowDays int `koanf:"window_days"`

	// MinDays sets how many distinct days a baseline needs before it is
	// trusted for deviation scoring.
	MinDays int `koanf:"min_days"`

	// BaselineTTL evicts baselines for persons silent this long.
	BaselineTTL time.Duration `koanf:"baseline_ttl"`

	// SweepSchedule is the cron expression for the baseline eviction sweep.
	SweepSchedule string `koanf:"sweep_schedule"`

	// HistoryCap limits stored assessments per person.
	HistoryCap int `koanf:"history_cap"`

	// MaxHistoryLimit caps GET history ?limit.
	MaxHistoryLimit int `koanf:"max_history_limit"`

	// LogisticSteepness tunes the deviation-to-score curve.
	LogisticSteepness float64 `koanf:"logistic_steepness"`

	// CalendarWeight and MusicWeight blend category scores into the raw score.
	CalendarWeight float64 `koanf:"calendar_weight"`
	MusicWeight    float64 `koanf:"music_weight"`

	// HysteresisMargin and SustainCount damp level flapping.
	HysteresisMargin float64 `koanf:"hysteresis_margin"`
	SustainCount     int     `koanf:"sustain_count"`

	// SignalWeights overrides per-signal weights within a category.
	SignalWeights map[string]float64 `koanf:"signal_weights"`

	// DisabledSources lists categories whose observations are dropped,
	// e.g. ["music"].
	DisabledSources []string `koanf:"disabled_sources"`

	// InterventionCooldown is the minimum gap between notices per person.
	InterventionCooldown time.Duration `koanf:"intervention_cooldown"`

	// InterventionURL is the external check-in agent endpoint. Empty means
	// notices are logged instead of delivered.
	InterventionURL string `koanf:"intervention_url"`

	// RetryInitialInterval, RetryMultiplier and RetryMaxAttempts shape the
	// backoff used for persistence and notice delivery.
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMultiplier      float64       `koanf:"retry_multiplier"`
	RetryMaxAttempts     uint64        `koanf:"retry_max_attempts"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		DataDir:              "data",
		JobQueueSize:         100_000,
		WorkerCount:          runtime.NumCPU() * 4,
		ShardCount:           8,
		WindowDays:           14,
		MinDays:              7,
		BaselineTTL:          90 * 24 * time.Hour,
		SweepSchedule:        "0 3 * * *",
		HistoryCap:           500,
		MaxHistoryLimit:      100,
		LogisticSteepness:    1.0,
		CalendarWeight:       0.5,
		MusicWeight:          0.4,
		HysteresisMargin:     5,
		SustainCount:         2,
		SignalWeights:        map[string]float64{},
		DisabledSources:      []string{},
		InterventionCooldown: 24 * time.Hour,
		RetryInitialInterval: 200 * time.Millisecond,
		RetryMultiplier:      4,
		RetryMaxAttempts:     3,
	}
}
