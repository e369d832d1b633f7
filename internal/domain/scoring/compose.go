package scoring

import (
	"sync"

	"github.com/lantern-care/lantern/internal/domain/model"
)

// Default composer configuration constants.
const (
	defaultCalendarWeight   = 0.5
	defaultMusicWeight      = 0.4
	defaultHysteresisMargin = 5.0
	defaultSustainCount     = 2
)

// Inputs carries everything the composer needs for one assessment.
type Inputs struct {
	PersonID         string
	CalendarScore    *float64
	MusicScore       *float64
	MaturityFraction float64
	PreviousLevel    model.Level
	HasPrevious      bool
}

// Result is the composed outcome before persistence.
type Result struct {
	Raw           float64
	Final         float64
	Level         model.Level
	PreviousLevel model.Level
	Escalated     bool
}

// deescalation tracks how many consecutive assessments have qualified for
// dropping to a lower level.
type deescalation struct {
	target model.Level
	streak int
}

// Composer combines category scores and baseline-maturity confidence into
// the final score and severity level, applying hysteresis so that noise
// around a threshold does not flap the level.
//
// The de-escalation streak is in-memory per-person state; losing it on
// restart only delays a de-escalation by one assessment.
type Composer struct {
	mu sync.Mutex

	calendarWeight float64
	musicWeight    float64
	margin         float64
	sustain        int

	pending map[string]*deescalation
}

// ComposerOption applies a configuration option to the Composer.
type ComposerOption func(*Composer)

// WithCategoryWeights sets the static calendar and music category weights.
func WithCategoryWeights(calendar, music float64) ComposerOption {
	return func(c *Composer) {
		if calendar > 0 {
			c.calendarWeight = calendar
		}
		if music > 0 {
			c.musicWeight = music
		}
	}
}

// WithHysteresisMargin sets the margin M a score must clear beyond a level
// boundary before the level changes.
func WithHysteresisMargin(m float64) ComposerOption {
	return func(c *Composer) {
		if m >= 0 {
			c.margin = m
		}
	}
}

// WithSustainCount sets how many consecutive qualifying assessments are
// required before a de-escalation takes effect.
func WithSustainCount(n int) ComposerOption {
	return func(c *Composer) {
		if n > 0 {
			c.sustain = n
		}
	}
}

// NewComposer creates a composer with configuration options.
func NewComposer(opts ...ComposerOption) *Composer {
	c := &Composer{
		calendarWeight: defaultCalendarWeight,
		musicWeight:    defaultMusicWeight,
		margin:         defaultHysteresisMargin,
		sustain:        defaultSustainCount,
		pending:        make(map[string]*deescalation),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose produces the final score and level for one assessment.
func (c *Composer) Compose(in Inputs) Result {
	raw := c.rawScore(in.CalendarScore, in.MusicScore)

	mf := in.MaturityFraction
	if mf < 0 {
		mf = 0
	} else if mf > 1 {
		mf = 1
	}

	final := raw*mf + neutralScore*(1-mf)
	if final < 0 {
		final = 0
	} else if final > maxScoreValue {
		final = maxScoreValue
	}

	natural := model.LevelForScore(final)

	c.mu.Lock()
	defer c.mu.Unlock()

	prev := in.PreviousLevel
	if !in.HasPrevious || prev.Rank() < 0 {
		delete(c.pending, in.PersonID)
		return Result{Raw: raw, Final: final, Level: natural, PreviousLevel: natural}
	}

	level := c.applyHysteresis(in.PersonID, natural, prev, final)

	return Result{
		Raw:           raw,
		Final:         final,
		Level:         level,
		PreviousLevel: prev,
		Escalated:     level.Rank() > prev.Rank(),
	}
}

// rawScore renormalizes over the weights of the available categories.
// With neither category available the score is neutral; the maturity
// damping then holds the final score at 50 as well.
func (c *Composer) rawScore(calendar, music *float64) float64 {
	var weighted, total float64
	if calendar != nil {
		weighted += *calendar * c.calendarWeight
		total += c.calendarWeight
	}
	if music != nil {
		weighted += *music * c.musicWeight
		total += c.musicWeight
	}
	if total == 0 {
		return neutralScore
	}
	return weighted / total
}

// applyHysteresis resolves the persisted level under the margin and
// sustain rules. Caller holds c.mu.
func (c *Composer) applyHysteresis(personID string, natural, prev model.Level, final float64) model.Level {
	switch {
	case natural == prev:
		delete(c.pending, personID)
		return prev

	case natural.Rank() > prev.Rank():
		// Escalation must clear the new level's lower bound by the margin.
		delete(c.pending, personID)
		if final > natural.LowerBound()+c.margin {
			return natural
		}
		return prev

	default:
		// De-escalation must stay clearly below the target level's upper
		// bound for a sustained run of assessments.
		if final >= natural.UpperBound()-c.margin {
			delete(c.pending, personID)
			return prev
		}

		p := c.pending[personID]
		if p == nil || p.target != natural {
			p = &deescalation{target: natural}
			c.pending[personID] = p
		}
		p.streak++
		if p.streak >= c.sustain {
			delete(c.pending, personID)
			return natural
		}
		return prev
	}
}

// Forget drops any pending de-escalation state for a person.
func (c *Composer) Forget(personID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, personID)
}
