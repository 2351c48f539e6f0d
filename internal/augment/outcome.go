// Package augment rewrites suggestion reasoning through an optional remote text model.
// It is cosmetic: it never adds, drops or reorders suggestions, and every failure
// degrades to the deterministic text the engine already produced.
package augment

import (
	"context"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

// Outcome is either Enhanced or Unavailable.
type Outcome interface {
	isOutcome()
}

// Enhanced carries rewritten reasoning, one entry per suggestion in request order.
type Enhanced struct {
	Reasoning []string
	Insight   string
}

// Unavailable says why no enhancement was produced.
type Unavailable struct {
	Reason string
}

func (Enhanced) isOutcome()    {}
func (Unavailable) isOutcome() {}

// GameContext is the slice of match state the text model sees.
type GameContext struct {
	Quarter     int    `json:"quarter"`
	QuarterTime int    `json:"quarter_time"`
	TotalTime   int    `json:"total_time"`
	RosterSize  int    `json:"roster_size"`
	OnField     int    `json:"on_field"`
	Assessment  string `json:"assessment"`
}

// Request is what gets sent for rewriting.
type Request struct {
	Reasoning []string    `json:"reasoning"`
	Game      GameContext `json:"game"`
}

// Enhancer produces an Outcome for a request. Implementations must not return nil.
type Enhancer interface {
	Enhance(ctx context.Context, req Request) Outcome
}

// ContextOf summarises state for a request.
func ContextOf(state model.GameState, assessment string) GameContext {
	onField := 0
	for _, ids := range state.ActivePlayersByPosition {
		onField += len(ids)
	}
	return GameContext{
		Quarter:     state.CurrentQuarter,
		QuarterTime: state.QuarterTime,
		TotalTime:   state.TotalTime,
		RosterSize:  len(state.Players),
		OnField:     onField,
		Assessment:  assessment,
	}
}

// RequestFor builds the request for an analysis.
func RequestFor(a model.RotationAnalysis, game GameContext) Request {
	reasoning := make([]string, len(a.Suggestions))
	for i, s := range a.Suggestions {
		reasoning[i] = s.Reasoning
	}
	return Request{Reasoning: reasoning, Game: game}
}

// Apply returns a copy of a with the outcome's text merged in. Only reasoning strings and
// the insight change; an outcome that does not line up with the suggestions is ignored.
func Apply(a model.RotationAnalysis, o Outcome) model.RotationAnalysis {
	out := a.Clone()
	e, ok := o.(Enhanced)
	if !ok || len(e.Reasoning) != len(out.Suggestions) {
		return out
	}
	for i, text := range e.Reasoning {
		if text != "" {
			out.Suggestions[i].Reasoning = text
		}
	}
	out.Insight = e.Insight
	out.Enhanced = true
	return out
}
