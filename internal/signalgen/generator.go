package signalgen

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/lantern-care/lantern/internal/domain/model"
)

const randomFloatDivisor = 1000000

// Baseline shapes per signal: a person's habitual mean and day-to-day
// jitter, plus the value used for the final-day anomaly.
type signalShape struct {
	id        string
	category  model.Category
	direction model.Direction
	mean      float64
	jitter    float64
	anomaly   float64
}

var shapes = []signalShape{
	{"social_event_frequency", model.CategoryCalendar, model.LowerIsRiskier, 4.0, 1.0, 0.0},
	{"invitation_decline_rate", model.CategoryCalendar, model.HigherIsRiskier, 0.2, 0.05, 0.9},
	{"unique_contact_count", model.CategoryCalendar, model.LowerIsRiskier, 8.0, 2.0, 1.0},
	{"track_valence", model.CategoryMusic, model.LowerIsRiskier, 0.6, 0.1, 0.1},
	{"late_night_fraction", model.CategoryMusic, model.HigherIsRiskier, 0.1, 0.05, 0.8},
	{"listening_hours", model.CategoryMusic, model.HigherIsRiskier, 2.0, 0.5, 9.0},
	{"repeat_track_fraction", model.CategoryMusic, model.HigherIsRiskier, 0.2, 0.05, 0.9},
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// person is one synthetic subject with a generated observation stream.
type person struct {
	id      string
	deviant bool
	stream  []model.SignalObservation
}

// generatePersons builds synthetic daily histories. Each person gets one
// observation per signal per day; deviant persons end their history with a
// sharp anomaly on every signal.
func generatePersons(config *Config, stats *Stats) []person {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	persons := make([]person, config.Persons)

	for i := range persons {
		p := person{
			id:      uuid.New().String(),
			deviant: getRandomFloat() < config.Deviant,
		}

		for day := 0; day < config.Days; day++ {
			at := end.AddDate(0, 0, day-config.Days+1).Add(12 * time.Hour)
			lastDay := day == config.Days-1
			for _, sh := range shapes {
				value := sh.mean + (getRandomFloat()*2-1)*sh.jitter
				if lastDay && p.deviant {
					value = sh.anomaly
				}
				p.stream = append(p.stream, model.SignalObservation{
					PersonID:    p.id,
					Category:    sh.category,
					SignalID:    sh.id,
					Value:       value,
					Direction:   sh.direction,
					ObservedAt:  at,
					PeriodStart: at.Add(-24 * time.Hour),
					PeriodEnd:   at,
				})
				stats.Generated++
			}
		}
		persons[i] = p
	}

	return persons
}
