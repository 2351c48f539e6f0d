package rotation

import (
	"fmt"
	"strings"
)

// Style names a coaching strictness preset.
type Style string

const (
	StyleRelaxed  Style = "relaxed"
	StyleBalanced Style = "balanced"
	StyleStrict   Style = "strict"
)

// Thresholds bundles every tunable the engine uses. Durations are seconds of game clock.
// One bundle drives all generators so a coaching style never needs its own code path.
type Thresholds struct {
	QuarterDuration int
	EarlyPhaseRatio float64
	MidPhaseRatio   float64

	LateArrivalMinStint int

	EquityGap       int
	EquityUrgentGap int

	FatigueStint       int
	FatigueStintLate   int
	FatigueUrgentStint int
	FatigueMinRest     int

	InclusionMinRest    int
	InclusionMinStint   int
	InclusionMaxPlayers int

	ExperienceMax      int
	ExperienceMinStint int

	FlipFlopWindow int
	TopN           int

	ReviewEarly   int
	ReviewMid     int
	ReviewLate    int
	ReviewDefault int

	LateArrivalBaseUrgency float64
	RoutineUrgencyCap      float64

	LateArrivalBoost float64
	EquityBoost      float64
	LateFatigueBoost float64
	InclusionBoost   float64
}

// DefaultThresholds is the balanced preset.
func DefaultThresholds() Thresholds {
	return Thresholds{
		QuarterDuration: 900,
		EarlyPhaseRatio: 0.3,
		MidPhaseRatio:   0.7,

		LateArrivalMinStint: 300,

		EquityGap:       120,
		EquityUrgentGap: 300,

		FatigueStint:       600,
		FatigueStintLate:   480,
		FatigueUrgentStint: 720,
		FatigueMinRest:     180,

		InclusionMinRest:    300,
		InclusionMinStint:   360,
		InclusionMaxPlayers: 2,

		ExperienceMax:      300,
		ExperienceMinStint: 360,

		FlipFlopWindow: 120,
		TopN:           4,

		ReviewEarly:   90,
		ReviewMid:     60,
		ReviewLate:    30,
		ReviewDefault: 180,

		// Late arrivals start above the cap every other generator is held under,
		// so with the boost they always rank first.
		LateArrivalBaseUrgency: 10,
		RoutineUrgencyCap:      8,

		LateArrivalBoost: 10,
		EquityBoost:      3,
		LateFatigueBoost: 2,
		InclusionBoost:   1,
	}
}

// ThresholdsFor returns the preset for a style. Empty means balanced.
func ThresholdsFor(style Style) (Thresholds, error) {
	t := DefaultThresholds()
	switch Style(strings.ToLower(strings.TrimSpace(string(style)))) {
	case "", StyleBalanced:
		return t, nil
	case StyleRelaxed:
		t.EquityGap = 180
		t.EquityUrgentGap = 420
		t.FatigueStint = 720
		t.FatigueStintLate = 600
		t.FatigueUrgentStint = 900
		t.InclusionMinRest = 420
		t.InclusionMinStint = 480
		t.TopN = 3
		return t, nil
	case StyleStrict:
		t.LateArrivalMinStint = 180
		t.EquityGap = 90
		t.EquityUrgentGap = 240
		t.FatigueStint = 480
		t.FatigueStintLate = 420
		t.FatigueUrgentStint = 600
		t.InclusionMinRest = 240
		t.InclusionMinStint = 300
		return t, nil
	default:
		return Thresholds{}, fmt.Errorf("unknown coaching style %q", style)
	}
}

// Validate rejects bundles the engine cannot run with.
func (t Thresholds) Validate() error {
	switch {
	case t.QuarterDuration <= 0:
		return fmt.Errorf("quarter duration must be > 0, got %d", t.QuarterDuration)
	case t.EarlyPhaseRatio <= 0 || t.MidPhaseRatio <= t.EarlyPhaseRatio || t.MidPhaseRatio >= 1:
		return fmt.Errorf("phase ratios must satisfy 0 < early < mid < 1, got %.2f/%.2f", t.EarlyPhaseRatio, t.MidPhaseRatio)
	case t.TopN < 1 || t.TopN > 10:
		return fmt.Errorf("top_n must be between 1 and 10, got %d", t.TopN)
	case t.EquityUrgentGap < t.EquityGap:
		return fmt.Errorf("equity urgent gap must be >= equity gap")
	case t.FatigueUrgentStint < t.FatigueStint:
		return fmt.Errorf("fatigue urgent stint must be >= fatigue stint")
	case t.FlipFlopWindow < 0:
		return fmt.Errorf("flip-flop window must be >= 0")
	case t.LateArrivalBaseUrgency <= t.RoutineUrgencyCap:
		return fmt.Errorf("late arrival base urgency must exceed the routine cap")
	}
	return nil
}
