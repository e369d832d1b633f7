package scoring

import (
	"fmt"
	"sort"

	"github.com/lantern-care/lantern/internal/domain/model"
)

// Sub-score thresholds for explanation sentences.
const (
	strongDeviationScore = 80.0
	clearDeviationScore  = 65.0
)

// Breakdown orders sub-scores into the assessment's contribution list,
// largest contribution first. Each contribution is the sub-score times the
// signal's renormalized weight within its available set.
func Breakdown(subs []SubScore) []model.Contribution {
	var total float64
	for _, s := range subs {
		total += s.Weight
	}

	out := make([]model.Contribution, 0, len(subs))
	for _, s := range subs {
		w := s.Weight
		if total > 0 {
			w = s.Weight / total
		}
		out = append(out, model.Contribution{
			SignalID:     s.SignalID,
			SubScore:     s.Score,
			Weight:       w,
			Contribution: s.Score * w,
			Mature:       s.Mature,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Contribution != out[j].Contribution {
			return out[i].Contribution > out[j].Contribution
		}
		return out[i].SignalID < out[j].SignalID
	})
	return out
}

// Explain derives human-readable factor sentences from sub-scores. This is
// a pure data transformation over the numeric breakdown; anything more
// conversational belongs to the external intervention agent.
func Explain(subs []SubScore) []string {
	ordered := make([]SubScore, len(subs))
	copy(ordered, subs)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].SignalID < ordered[j].SignalID
	})

	var out []string
	immature := 0
	for _, s := range ordered {
		if !s.Mature {
			immature++
			continue
		}
		switch {
		case s.Score >= strongDeviationScore:
			out = append(out, fmt.Sprintf(
				"%s deviates sharply from the personal baseline (%.1f, z=%+.2f)",
				s.SignalID, s.Score, s.ZScore))
		case s.Score >= clearDeviationScore:
			out = append(out, fmt.Sprintf(
				"%s is drifting away from the personal baseline (%.1f)",
				s.SignalID, s.Score))
		}
	}

	if immature > 0 {
		out = append(out, fmt.Sprintf(
			"%d signal(s) lack enough history for a trusted baseline; the score is damped toward neutral", immature))
	}
	if len(out) == 0 {
		out = append(out, "no significant deviation from personal baselines detected")
	}
	return out
}
