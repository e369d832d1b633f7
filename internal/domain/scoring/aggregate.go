package scoring

// Combine folds a category's sub-scores into one category score.
//
// Sub-scores carry their static importance weights; missing or disabled
// signals are simply absent from the slice and the remaining weights are
// renormalized to sum to one. A category with no available signals has no
// score at all (nil), which is not the same as zero risk.
func Combine(subs []SubScore) *float64 {
	var weighted, total float64
	for _, s := range subs {
		if s.Weight <= 0 {
			continue
		}
		weighted += s.Score * s.Weight
		total += s.Weight
	}
	if total == 0 {
		return nil
	}
	score := weighted / total
	return &score
}

// MaturityFraction returns the share of in-scope signals whose baselines
// are mature. total is the number of registered, enabled signals; signals
// without any baseline record count as immature.
func MaturityFraction(subs []SubScore, total int) float64 {
	if total <= 0 {
		return 0
	}
	mature := 0
	for _, s := range subs {
		if s.Mature {
			mature++
		}
	}
	f := float64(mature) / float64(total)
	if f > 1 {
		f = 1
	}
	return f
}
