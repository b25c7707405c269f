package scoring

import "github.com/mariostorable/friction-engine/pkg/models"

// trendBand is the dead zone around zero delta inside which an account is
// considered stable.
const trendBand = 5

// Trend compares a new score against the prior snapshot's score and
// returns the delta and direction. A nil prior snapshot means this is the
// account's first observation: nil delta, stable direction.
func Trend(newScore int, prior *models.AccountSnapshot) (*int, string) {
	if prior == nil {
		return nil, models.TrendStable
	}

	delta := newScore - prior.OFIScore
	switch {
	case delta > trendBand:
		return &delta, models.TrendWorsening
	case delta < -trendBand:
		return &delta, models.TrendImproving
	default:
		return &delta, models.TrendStable
	}
}
