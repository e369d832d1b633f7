package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/lantern-care/lantern/internal/domain/model"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if LANTERN_CONFIG is set
//  3. env (prefix LANTERN_)
func Load() (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("LANTERN_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: LANTERN_ADDR, LANTERN_QUEUE_SIZE, ...
	// Map env keys like LANTERN_QUEUE_SIZE -> queue_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("LANTERN_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "lantern_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WindowDays < 1:
		return fmt.Errorf("%w: window_days must be at least 1", ErrInvalidConfig)
	case c.MinDays < 1 || c.MinDays > c.WindowDays:
		return fmt.Errorf("%w: min_days must be within [1, window_days]", ErrInvalidConfig)
	case c.CalendarWeight < 0 || c.MusicWeight < 0:
		return fmt.Errorf("%w: category weights must not be negative", ErrInvalidConfig)
	case c.CalendarWeight+c.MusicWeight <= 0:
		return fmt.Errorf("%w: category weights must not both be zero", ErrInvalidConfig)
	case c.HysteresisMargin < 0:
		return fmt.Errorf("%w: hysteresis_margin must not be negative", ErrInvalidConfig)
	case c.SustainCount < 1:
		return fmt.Errorf("%w: sustain_count must be at least 1", ErrInvalidConfig)
	}
	for id, w := range c.SignalWeights {
		if w < 0 {
			return fmt.Errorf("%w: signal weight for %s must not be negative", ErrInvalidConfig, id)
		}
	}
	for _, src := range c.DisabledSources {
		if !model.Category(src).Valid() {
			return fmt.Errorf("%w: unknown disabled source %q", ErrInvalidConfig, src)
		}
	}
	return nil
}
