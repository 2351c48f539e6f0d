package rotation

import (
	"math"
	"sort"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

// boost is the additive bonus a suggestion's factor tags earn. Boosts are cumulative.
func boost(s model.RotationSuggestion, phase Phase, t Thresholds) float64 {
	var b float64
	if s.HasFactor(model.FactorLateArrival) {
		b += t.LateArrivalBoost
	}
	if s.HasFactor(model.FactorTimeEquity) {
		b += t.EquityBoost
	}
	if s.HasFactor(model.FactorFatigue) && phase == PhaseLate {
		b += t.LateFatigueBoost
	}
	if s.HasFactor(model.FactorInclusion) {
		b += t.InclusionBoost
	}
	return b
}

// rank rewrites each urgency as its unified score, sorts descending and keeps the top N.
// The sort is stable, so ties keep generator order and then discovery order.
func rank(in []model.RotationSuggestion, phase Phase, t Thresholds) []model.RotationSuggestion {
	out := make([]model.RotationSuggestion, len(in))
	for i, s := range in {
		s.UrgencyScore = round2(s.UrgencyScore + boost(s, phase, t))
		out[i] = s
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UrgencyScore > out[j].UrgencyScore })
	if len(out) > t.TopN {
		out = out[:t.TopN]
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
