// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Sentinel kinds for the two caller-visible rejection errors.
var (
	ErrInvalidObservation = errors.New("invalid observation")
	ErrStaleObservation   = errors.New("stale observation")
)

// Category identifies the data source a signal belongs to.
type Category string

// Known signal categories.
const (
	CategoryCalendar Category = "calendar"
	CategoryMusic    Category = "music"
)

// Valid reports whether the category is a known one.
func (c Category) Valid() bool {
	return c == CategoryCalendar || c == CategoryMusic
}

// Direction states which way a raw value moves when risk increases.
type Direction string

// Known risk directions.
const (
	HigherIsRiskier Direction = "higher_is_riskier"
	LowerIsRiskier  Direction = "lower_is_riskier"
)

// Valid reports whether the direction is a known one.
func (d Direction) Valid() bool {
	return d == HigherIsRiskier || d == LowerIsRiskier
}

// SignalObservation is one raw behavioral measurement for a person,
// delivered by an external feature extractor.
type SignalObservation struct {
	PersonID    string    `json:"person_id"`
	Category    Category  `json:"category"`
	SignalID    string    `json:"signal_id"`
	Value       float64   `json:"value"`
	Direction   Direction `json:"direction"`
	ObservedAt  time.Time `json:"observed_at"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// Validate checks the structural invariants of an observation.
// A failure is always an ErrInvalidObservation kind.
func (o SignalObservation) Validate() error {
	switch {
	case strings.TrimSpace(o.PersonID) == "":
		return fmt.Errorf("%w: missing person_id", ErrInvalidObservation)
	case strings.TrimSpace(o.SignalID) == "":
		return fmt.Errorf("%w: missing signal_id", ErrInvalidObservation)
	case !o.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidObservation, o.Category)
	case !o.Direction.Valid():
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidObservation, o.Direction)
	case o.ObservedAt.IsZero():
		return fmt.Errorf("%w: missing observed_at", ErrInvalidObservation)
	}
	if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
		return fmt.Errorf("%w: non-finite value", ErrInvalidObservation)
	}
	return nil
}
