package model

import "time"

// Level is a discrete severity bucket over the 0-100 score range.
type Level string

// Severity levels, ordered from least to most severe.
const (
	LevelLow      Level = "low"
	LevelMild     Level = "mild"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// Score boundaries between levels.
const (
	lowUpperBound      = 25.0
	mildUpperBound     = 50.0
	moderateUpperBound = 75.0
	highUpperBound     = 100.0
)

// LevelForScore maps a final score to its natural level:
// Low [0,25], Mild (25,50], Moderate (50,75], High (75,100].
func LevelForScore(score float64) Level {
	switch {
	case score <= lowUpperBound:
		return LevelLow
	case score <= mildUpperBound:
		return LevelMild
	case score <= moderateUpperBound:
		return LevelModerate
	default:
		return LevelHigh
	}
}

// Rank orders levels for escalation comparisons.
func (l Level) Rank() int {
	switch l {
	case LevelLow:
		return 0
	case LevelMild:
		return 1
	case LevelModerate:
		return 2
	case LevelHigh:
		return 3
	default:
		return -1
	}
}

// LowerBound returns the inclusive lower edge of the level's score range.
func (l Level) LowerBound() float64 {
	switch l {
	case LevelMild:
		return lowUpperBound
	case LevelModerate:
		return mildUpperBound
	case LevelHigh:
		return moderateUpperBound
	default:
		return 0
	}
}

// UpperBound returns the inclusive upper edge of the level's score range.
func (l Level) UpperBound() float64 {
	switch l {
	case LevelLow:
		return lowUpperBound
	case LevelMild:
		return mildUpperBound
	case LevelModerate:
		return moderateUpperBound
	default:
		return highUpperBound
	}
}

// Contribution is one signal's share of an assessment, for explainability.
type Contribution struct {
	SignalID     string  `json:"signal_id"`
	SubScore     float64 `json:"sub_score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Mature       bool    `json:"mature"`
}

// Assessment is an immutable risk computation result. Once appended to the
// assessment store it is a read-only historical fact.
type Assessment struct {
	ID               string         `json:"id"`
	PersonID         string         `json:"person_id"`
	ComputedAt       time.Time      `json:"computed_at"`
	PeriodEnd        time.Time      `json:"period_end"`
	CalendarScore    *float64       `json:"calendar_score"`
	MusicScore       *float64       `json:"music_score"`
	MaturityFraction float64        `json:"maturity_fraction"`
	RawScore         float64        `json:"raw_score"`
	FinalScore       float64        `json:"final_score"`
	Level            Level          `json:"level"`
	PreviousLevel    Level          `json:"previous_level"`
	Breakdown        []Contribution `json:"breakdown"`
	Explanations     []string       `json:"explanations"`
	Escalated        bool           `json:"escalated"`
	Degraded         bool           `json:"degraded"`
}
