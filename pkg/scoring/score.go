// Package scoring computes the Operational Friction Index for an account
// from its friction cards and support-case volume, classifies the trend
// against the prior snapshot, and evaluates alert rules.
package scoring

import (
	"math"
	"sort"

	"github.com/mariostorable/friction-engine/pkg/models"
)

// severityWeights maps card severity to its score weight. The doubling
// progression makes one severity-5 card worth sixteen severity-1 cards.
var severityWeights = map[int]int{
	1: 1,
	2: 2,
	3: 4,
	4: 8,
	5: 16,
}

// highSeverityThreshold marks the severities that count toward the
// high-severity boost and the critical_severity alert.
const highSeverityThreshold = 4

// topThemeLimit caps how many theme aggregates a snapshot carries.
const topThemeLimit = 5

// Result is the outcome of scoring one account.
type Result struct {
	OFIScore          int
	CardCount         int
	HighSeverityCount int
	CaseVolume        int
	TopThemes         []models.ThemeAggregate
	Breakdown         models.ScoreBreakdown
}

// Compute scores an account from its friction cards and the case volume
// observed in the scoring window. Cards with IsFriction=false are ignored.
//
// The score is a log-scaled weighted severity sum, stretched or damped by
// how dense friction is relative to overall case traffic, plus a capped
// boost for high-severity cards. Zero qualifying cards always scores 0
// with an all-zero breakdown.
func Compute(cards []models.FrictionCard, caseVolume int) Result {
	qualifying := make([]models.FrictionCard, 0, len(cards))
	for _, card := range cards {
		if card.IsFriction {
			qualifying = append(qualifying, card)
		}
	}

	result := Result{
		CaseVolume: caseVolume,
		TopThemes:  []models.ThemeAggregate{},
	}
	if len(qualifying) == 0 {
		return result
	}

	weighted := 0
	highSeverity := 0
	for _, card := range qualifying {
		weighted += severityWeights[card.Severity]
		if card.Severity >= highSeverityThreshold {
			highSeverity++
		}
	}

	base := math.Log10(float64(weighted)+1) * 20

	volume := caseVolume
	if volume < 1 {
		volume = 1
	}
	density := float64(len(qualifying)) / float64(volume) * 100
	multiplier := clampFloat(density/5, 0.5, 2.0)

	boost := highSeverity * 2
	if boost > 20 {
		boost = 20
	}

	ofi := int(math.Round(base*multiplier + float64(boost)))
	ofi = clampInt(ofi, 0, 100)

	result.OFIScore = ofi
	result.CardCount = len(qualifying)
	result.HighSeverityCount = highSeverity
	result.TopThemes = topThemes(qualifying)
	result.Breakdown = models.ScoreBreakdown{
		WeightedScore:     weighted,
		BaseScore:         base,
		FrictionDensity:   density,
		DensityMultiplier: multiplier,
		HighSeverityBoost: boost,
		CardCount:         len(qualifying),
	}
	return result
}

// topThemes groups cards by theme, ranks themes by card count, and keeps
// the top five. Ties break on average severity, then theme key, so output
// order is deterministic.
func topThemes(cards []models.FrictionCard) []models.ThemeAggregate {
	counts := make(map[string]int)
	severitySums := make(map[string]int)
	for _, card := range cards {
		counts[card.ThemeKey]++
		severitySums[card.ThemeKey] += card.Severity
	}

	aggregates := make([]models.ThemeAggregate, 0, len(counts))
	for key, count := range counts {
		aggregates = append(aggregates, models.ThemeAggregate{
			ThemeKey:    key,
			Count:       count,
			AvgSeverity: float64(severitySums[key]) / float64(count),
		})
	}

	sort.Slice(aggregates, func(i, j int) bool {
		if aggregates[i].Count != aggregates[j].Count {
			return aggregates[i].Count > aggregates[j].Count
		}
		if aggregates[i].AvgSeverity != aggregates[j].AvgSeverity {
			return aggregates[i].AvgSeverity > aggregates[j].AvgSeverity
		}
		return aggregates[i].ThemeKey < aggregates[j].ThemeKey
	})

	if len(aggregates) > topThemeLimit {
		aggregates = aggregates[:topThemeLimit]
	}
	return aggregates
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
