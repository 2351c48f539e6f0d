package model

// SuggestionType says how a suggestion changes the lineup.
type SuggestionType string

const (
	SuggestionSwap          SuggestionType = "swap"
	SuggestionSubstituteOn  SuggestionType = "substitute_on"
	SuggestionSubstituteOff SuggestionType = "substitute_off"
)

// Priority is the coarse bucket shown to the coach.
type Priority string

const (
	PriorityUrgent      Priority = "urgent"
	PriorityRecommended Priority = "recommended"
	PriorityOptional    Priority = "optional"
)

// Factor tags the concern that produced a suggestion.
type Factor string

const (
	FactorLateArrival        Factor = "late_arrival"
	FactorTimeEquity         Factor = "time_equity"
	FactorFatigue            Factor = "fatigue"
	FactorInclusion          Factor = "inclusion"
	FactorPositionExperience Factor = "position_experience"
)

// RotationSuggestion is a single recommended move. It is ephemeral and never persisted.
type RotationSuggestion struct {
	ID           string         `json:"id"`
	Type         SuggestionType `json:"type"`
	Priority     Priority       `json:"priority"`
	Reasoning    string         `json:"reasoning"`
	PlayerIn     string         `json:"player_in,omitempty"`
	PlayerOut    string         `json:"player_out,omitempty"`
	Position     Position       `json:"position"`
	UrgencyScore float64        `json:"urgency_score"`
	Factors      []Factor       `json:"factors"`
}

// HasFactor reports whether f tags the suggestion.
func (s RotationSuggestion) HasFactor(f Factor) bool {
	for _, x := range s.Factors {
		if x == f {
			return true
		}
	}
	return false
}

// RotationAnalysis is the engine output for one invocation.
type RotationAnalysis struct {
	Suggestions       []RotationSuggestion `json:"suggestions"`
	OverallAssessment string               `json:"overall_assessment"`
	NextReviewTime    int                  `json:"next_review_time"`
	Insight           string               `json:"insight,omitempty"`
	Enhanced          bool                 `json:"enhanced"`
}

// Clone copies the suggestion slice and factor tags.
func (a RotationAnalysis) Clone() RotationAnalysis {
	out := a
	out.Suggestions = make([]RotationSuggestion, len(a.Suggestions))
	for i, s := range a.Suggestions {
		s.Factors = append([]Factor(nil), s.Factors...)
		out.Suggestions[i] = s
	}
	return out
}
