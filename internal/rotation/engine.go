// Package rotation is the substitution decision engine.
// It reads a game snapshot plus recent rotation history and returns ranked suggestions,
// a one-line assessment, and when to look again. It never mutates what it is given.
package rotation

import (
	"fmt"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
	"github.com/rs/zerolog"
)

// Engine is stateless between calls; the thresholds bundle is its only configuration.
type Engine struct {
	th  Thresholds
	log zerolog.Logger
}

// NewEngine builds an engine. Invalid thresholds are reported rather than clamped.
func NewEngine(th Thresholds, logger zerolog.Logger) (*Engine, error) {
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rotation thresholds: %w", err)
	}
	l := logger.With().Str("module", "rotation").Str("component", "engine").Logger()
	return &Engine{th: th, log: l}, nil
}

// Thresholds returns the bundle the engine runs with.
func (e *Engine) Thresholds() Thresholds { return e.th }

// Analyze runs generators, filters, ranking and the assessment over a private copy of state.
// Identical inputs give identical output, including suggestion ids.
func (e *Engine) Analyze(state model.GameState, history []model.RotationRecord) model.RotationAnalysis {
	snapshot := state.Clone()
	analysis := model.RotationAnalysis{
		Suggestions:    []model.RotationSuggestion{},
		NextReviewTime: NextReviewTime(snapshot, e.th),
	}
	if len(snapshot.Players) == 0 {
		analysis.OverallAssessment = AssessmentNoNeeds
		return analysis
	}

	c := newAnalysisContext(&snapshot, history, e.th)
	if len(c.skipped) > 0 {
		e.log.Debug().Strs("player_ids", c.skipped).Msg("ignoring inconsistent lineup entries")
	}

	var candidates []model.RotationSuggestion
	seq := 0
	for _, g := range generators {
		produced := g.run(c)
		for _, s := range produced {
			seq++
			s.ID = fmt.Sprintf("%s-%d", g.name, seq)
			candidates = append(candidates, s)
		}
		e.log.Trace().Str("generator", g.name).Int("count", len(produced)).Msg("generator finished")
	}

	generated := len(candidates)
	candidates = dropMalformed(c, candidates)
	candidates = suppressFlipFlops(c, candidates)
	candidates = dedupePairs(candidates)
	analysis.Suggestions = rank(candidates, c.phase, e.th)
	analysis.OverallAssessment = Assess(analysis.Suggestions)

	e.log.Debug().
		Int("now", c.now).
		Str("phase", string(c.phase)).
		Int("generated", generated).
		Int("kept", len(candidates)).
		Int("returned", len(analysis.Suggestions)).
		Msg("rotation analysis complete")
	return analysis
}
