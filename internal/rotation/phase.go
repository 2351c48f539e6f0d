package rotation

import "github.com/maxviazov/rotation-advisor-service/internal/model"

// Phase is a coarse bucket of progress through the current quarter.
type Phase string

const (
	PhaseEarly Phase = "early"
	PhaseMid   Phase = "mid"
	PhaseLate  Phase = "late"
)

// PhaseOf buckets quarterTime against the configured quarter duration.
func PhaseOf(quarterTime int, t Thresholds) Phase {
	ratio := float64(quarterTime) / float64(max(t.QuarterDuration, 1))
	switch {
	case ratio < t.EarlyPhaseRatio:
		return PhaseEarly
	case ratio < t.MidPhaseRatio:
		return PhaseMid
	default:
		return PhaseLate
	}
}

// NextReviewTime says how many seconds until the engine should run again.
// Without phase context (no roster, or the match has not started) it falls back to a flat default.
func NextReviewTime(state model.GameState, t Thresholds) int {
	if !hasPhaseContext(state) {
		return t.ReviewDefault
	}
	switch PhaseOf(state.QuarterTime, t) {
	case PhaseLate:
		return t.ReviewLate
	case PhaseMid:
		return t.ReviewMid
	default:
		return t.ReviewEarly
	}
}

func hasPhaseContext(state model.GameState) bool {
	return len(state.Players) > 0 && (state.IsPlaying || state.TotalTime > 0)
}
