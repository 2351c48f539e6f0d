package rotation

import (
	"fmt"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

// Assessment messages. They are data-only; no text model is involved.
const (
	AssessmentNoNeeds  = "No immediate rotation needs - the current lineup is balanced."
	AssessmentEquity   = "Game time is drifting apart - the equity rotations will even it out."
	AssessmentFatigue  = "Some players have been on for a long stint - rotate to give them a rest."
	AssessmentOptional = "Optional development rotations available."
)

// Assess reports the single most severe condition present in the final suggestion set.
func Assess(suggestions []model.RotationSuggestion) string {
	if len(suggestions) == 0 {
		return AssessmentNoNeeds
	}
	urgent, equity, tired := 0, false, false
	for _, s := range suggestions {
		if s.Priority == model.PriorityUrgent {
			urgent++
		}
		equity = equity || s.HasFactor(model.FactorTimeEquity)
		tired = tired || s.HasFactor(model.FactorFatigue)
	}
	switch {
	case urgent == 1:
		return "1 urgent rotation needed - make this change soon."
	case urgent > 1:
		return fmt.Sprintf("%d urgent rotations needed - make these changes soon.", urgent)
	case equity:
		return AssessmentEquity
	case tired:
		return AssessmentFatigue
	default:
		return AssessmentOptional
	}
}
