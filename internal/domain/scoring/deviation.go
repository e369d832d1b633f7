// Package scoring turns raw observations into bounded, explainable risk
// scores: per-signal deviation sub-scores, category aggregates, and the
// final composed score with hysteresis over severity levels.
package scoring

import (
	"math"

	"github.com/lantern-care/lantern/internal/domain/baseline"
	"github.com/lantern-care/lantern/internal/domain/model"
)

// Default transformer configuration constants.
const (
	defaultSteepness = 1.0
	defaultZClip     = 3.0

	// epsilon is the stddev floor substituted when a baseline's variance
	// would otherwise be used as a zero divisor.
	epsilon = 1e-9

	neutralScore  = 50.0
	maxScoreValue = 100.0
)

// SubScore is one signal's normalized 0-100 contribution.
type SubScore struct {
	SignalID string
	Category model.Category
	Score    float64
	Weight   float64
	Mature   bool
	RawValue float64
	ZScore   float64
}

// Transformer converts one raw observation plus its baseline into a
// sub-score in [0,100] via z-normalization and logistic squashing.
type Transformer struct {
	steepness float64
	zClip     float64
}

// TransformerOption applies a configuration option to the Transformer.
type TransformerOption func(*Transformer)

// WithSteepness sets the logistic steepness k in 100/(1+e^(-k*z)).
func WithSteepness(k float64) TransformerOption {
	return func(t *Transformer) {
		if k > 0 {
			t.steepness = k
		}
	}
}

// NewTransformer creates a transformer with configuration options.
func NewTransformer(opts ...TransformerOption) *Transformer {
	t := &Transformer{
		steepness: defaultSteepness,
		zClip:     defaultZClip,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform computes the sub-score for one observation value against its
// baseline snapshot. An immature baseline yields the neutral score; such a
// signal contributes zero to the maturity fraction.
func (t *Transformer) Transform(value float64, snap baseline.Snapshot, direction model.Direction) float64 {
	if !snap.Mature {
		return neutralScore
	}
	z := t.ZScore(value, snap, direction)
	return maxScoreValue / (1 + math.Exp(-t.steepness*z))
}

// ZScore returns the clipped, direction-adjusted deviation behind Transform.
// Positive always means riskier. Immature baselines report zero.
func (t *Transformer) ZScore(value float64, snap baseline.Snapshot, direction model.Direction) float64 {
	if !snap.Mature {
		return 0
	}

	stddev := snap.StdDev
	if stddev < epsilon {
		stddev = epsilon
	}

	z := (value - snap.Mean) / stddev
	if z > t.zClip {
		z = t.zClip
	} else if z < -t.zClip {
		z = -t.zClip
	}
	if direction == model.LowerIsRiskier {
		z = -z
	}
	return z
}
