// Package signal defines the registry of behavioral signals the engine
// scores. A signal source is described by a uniform capability set
// (category, risk direction, importance weight); adding a new source means
// registering a descriptor, not changing core logic.
package signal

import (
	"sort"

	"github.com/lantern-care/lantern/internal/domain/model"
)

// Descriptor describes one registered behavioral signal.
type Descriptor struct {
	ID        string
	Category  model.Category
	Direction model.Direction
	Weight    float64
}

// Registry holds the static set of registered signals. It is immutable
// after construction and safe for concurrent reads.
type Registry struct {
	byID     map[string]Descriptor
	disabled map[model.Category]bool
}

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithSignal registers a descriptor, replacing any existing one with the
// same id. Descriptors with a non-positive weight are ignored.
func WithSignal(d Descriptor) Option {
	return func(r *Registry) {
		if d.ID == "" || d.Weight <= 0 {
			return
		}
		r.byID[d.ID] = d
	}
}

// WithWeightOverrides replaces the weights of already-registered signals.
// Unknown ids and non-positive weights are ignored.
func WithWeightOverrides(weights map[string]float64) Option {
	return func(r *Registry) {
		for id, w := range weights {
			d, ok := r.byID[id]
			if !ok || w <= 0 {
				continue
			}
			d.Weight = w
			r.byID[id] = d
		}
	}
}

// WithSourceDisabled marks an entire category's source as disabled; its
// signals are excluded from scoring and from the maturity fraction.
func WithSourceDisabled(c model.Category) Option {
	return func(r *Registry) {
		r.disabled[c] = true
	}
}

// New builds a registry with the default signal set, then applies options.
func New(opts ...Option) *Registry {
	r := &Registry{
		byID:     make(map[string]Descriptor),
		disabled: make(map[model.Category]bool),
	}
	for _, d := range defaults() {
		r.byID[d.ID] = d
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// defaults returns the built-in signal set. Calendar signals capture social
// withdrawal, music signals capture mood and rumination patterns.
func defaults() []Descriptor {
	return []Descriptor{
		{ID: "social_event_frequency", Category: model.CategoryCalendar, Direction: model.LowerIsRiskier, Weight: 0.4},
		{ID: "invitation_decline_rate", Category: model.CategoryCalendar, Direction: model.HigherIsRiskier, Weight: 0.3},
		{ID: "unique_contact_count", Category: model.CategoryCalendar, Direction: model.LowerIsRiskier, Weight: 0.3},
		{ID: "track_valence", Category: model.CategoryMusic, Direction: model.LowerIsRiskier, Weight: 0.3},
		{ID: "late_night_fraction", Category: model.CategoryMusic, Direction: model.HigherIsRiskier, Weight: 0.25},
		{ID: "listening_hours", Category: model.CategoryMusic, Direction: model.HigherIsRiskier, Weight: 0.25},
		{ID: "repeat_track_fraction", Category: model.CategoryMusic, Direction: model.HigherIsRiskier, Weight: 0.2},
	}
}

// Lookup returns the descriptor for id. The second return is false for
// unknown ids and for signals whose source is disabled.
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	d, ok := r.byID[id]
	if !ok || r.disabled[d.Category] {
		return Descriptor{}, false
	}
	return d, true
}

// Enabled returns all enabled descriptors in a stable order.
func (r *Registry) Enabled() []Descriptor {
	out := make([]Descriptor, 0, len(r.byID))
	for _, d := range r.byID {
		if r.disabled[d.Category] {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByCategory returns the enabled descriptors for one category in a stable order.
func (r *Registry) ByCategory(c model.Category) []Descriptor {
	if r.disabled[c] {
		return nil
	}
	out := make([]Descriptor, 0, len(r.byID))
	for _, d := range r.byID {
		if d.Category == c {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SourceEnabled reports whether a category's source is enabled.
func (r *Registry) SourceEnabled(c model.Category) bool {
	return !r.disabled[c]
}

// Size returns the number of enabled signals; it is the denominator of the
// maturity fraction.
func (r *Registry) Size() int {
	n := 0
	for _, d := range r.byID {
		if !r.disabled[d.Category] {
			n++
		}
	}
	return n
}
