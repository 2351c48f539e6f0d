// Package gameclock holds the state store's mutations over model.GameState.
// Every function takes a snapshot and returns a new one; the input is never modified.
// Lineup changes also return the moves they made so callers can append them to history.
package gameclock

import (
	"errors"
	"fmt"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

// Quarters is the number of quarters in a match.
const Quarters = 4

var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrDuplicatePlayer = errors.New("player already on roster")
	ErrInvalidMove     = errors.New("invalid move")
)

// Move is one side of a lineup change.
type Move struct {
	PlayerID string
	Action   model.RotationAction
	Position model.Position
}

// Clock owns the quarter length. Lineup operations do not need it and are plain functions.
type Clock struct {
	quarterDuration int
}

// New builds a clock for quarters of the given length in seconds.
func New(quarterDuration int) (Clock, error) {
	if quarterDuration <= 0 {
		return Clock{}, fmt.Errorf("quarter duration must be > 0, got %d", quarterDuration)
	}
	return Clock{quarterDuration: quarterDuration}, nil
}

// QuarterDuration returns the configured quarter length.
func (c Clock) QuarterDuration() int { return c.quarterDuration }

// Advance accrues seconds of play. Active players earn time in their current position.
// The clock never runs past the end of a quarter; reaching it stops play.
// A paused clock or a non-positive step returns an unchanged copy.
func (c Clock) Advance(state model.GameState, seconds int) model.GameState {
	out := state.Clone()
	if !out.IsPlaying || seconds <= 0 {
		return out
	}
	step := min(seconds, c.quarterDuration-out.QuarterTime)
	if step <= 0 {
		out.IsPlaying = false
		return out
	}
	out.QuarterTime += step
	out.TotalTime += step
	for _, pos := range model.Positions {
		for _, id := range out.ActivePlayersByPosition[pos] {
			i := out.PlayerIndex(id)
			if i < 0 {
				continue
			}
			p := &out.Players[i]
			if p.TimeStats == nil {
				p.TimeStats = make(map[model.Position]int, len(model.Positions))
			}
			p.TimeStats[pos] += step
		}
	}
	if out.QuarterTime >= c.quarterDuration {
		out.IsPlaying = false
	}
	return out
}

// StartClock resumes play. A finished quarter has to be closed with NextQuarter first.
func (c Clock) StartClock(state model.GameState) (model.GameState, error) {
	if state.QuarterTime >= c.quarterDuration {
		return state, fmt.Errorf("%w: quarter %d is over", ErrInvalidMove, state.CurrentQuarter)
	}
	out := state.Clone()
	if out.CurrentQuarter < 1 {
		out.CurrentQuarter = 1
	}
	out.IsPlaying = true
	return out, nil
}

// PauseClock stops play without touching the quarter.
func (c Clock) PauseClock(state model.GameState) model.GameState {
	out := state.Clone()
	out.IsPlaying = false
	return out
}

// NextQuarter moves to the following quarter with the clock stopped and quarter time reset.
func (c Clock) NextQuarter(state model.GameState) (model.GameState, error) {
	if state.CurrentQuarter >= Quarters {
		return state, fmt.Errorf("%w: match already in the final quarter", ErrInvalidMove)
	}
	out := state.Clone()
	out.CurrentQuarter++
	out.QuarterTime = 0
	out.IsPlaying = false
	return out, nil
}

// AddPlayer puts a new player on the bench. A late arrival starts with no time and
// an interchange stamp at the current clock, so their rest counts from now.
func AddPlayer(state model.GameState, id, name string, number int) (model.GameState, error) {
	if state.PlayerIndex(id) >= 0 {
		return state, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
	}
	out := state.Clone()
	out.Players = append(out.Players, model.Player{
		ID:                  id,
		Name:                name,
		GuernseyNumber:      number,
		LastInterchangeTime: out.TotalTime,
		TimeStats:           map[model.Position]int{},
	})
	return out, nil
}

// TogglePlayer takes an active player off, or puts a bench player on at pos.
// pos is ignored when taking a player off.
func TogglePlayer(state model.GameState, id string, pos model.Position) (model.GameState, []Move, error) {
	i := state.PlayerIndex(id)
	if i < 0 {
		return state, nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	out := state.Clone()
	ensureLineup(&out)
	p := &out.Players[i]
	if p.IsActive {
		from := p.CurrentPosition
		removeID(&out, from, id)
		p.IsActive = false
		p.CurrentPosition = model.PositionNone
		p.LastInterchangeTime = out.TotalTime
		return out, []Move{{PlayerID: id, Action: model.ActionOut, Position: from}}, nil
	}
	if !pos.Valid() {
		return state, nil, fmt.Errorf("%w: unknown position %q", ErrInvalidMove, pos)
	}
	p.IsActive = true
	p.CurrentPosition = pos
	p.LastInterchangeTime = out.TotalTime
	out.ActivePlayersByPosition[pos] = append(out.ActivePlayersByPosition[pos], id)
	return out, []Move{{PlayerID: id, Action: model.ActionIn, Position: pos}}, nil
}

// MovePlayer shifts an active player to another position. It is not an interchange,
// so the current stint keeps running.
func MovePlayer(state model.GameState, id string, pos model.Position) (model.GameState, []Move, error) {
	i := state.PlayerIndex(id)
	if i < 0 {
		return state, nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	if !pos.Valid() {
		return state, nil, fmt.Errorf("%w: unknown position %q", ErrInvalidMove, pos)
	}
	p := state.Players[i]
	if !p.IsActive {
		return state, nil, fmt.Errorf("%w: %s is on the bench", ErrInvalidMove, id)
	}
	if p.CurrentPosition == pos {
		return state, nil, fmt.Errorf("%w: %s is already in %s", ErrInvalidMove, id, pos)
	}
	out := state.Clone()
	ensureLineup(&out)
	from := p.CurrentPosition
	removeID(&out, from, id)
	out.ActivePlayersByPosition[pos] = append(out.ActivePlayersByPosition[pos], id)
	out.Players[i].CurrentPosition = pos
	return out, []Move{
		{PlayerID: id, Action: model.ActionOut, Position: from},
		{PlayerID: id, Action: model.ActionIn, Position: pos},
	}, nil
}

// ExecuteSwap replaces an active player with a bench player in the same lineup slot.
func ExecuteSwap(state model.GameState, inID, outID string) (model.GameState, []Move, error) {
	in, off := state.PlayerIndex(inID), state.PlayerIndex(outID)
	switch {
	case in < 0:
		return state, nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, inID)
	case off < 0:
		return state, nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, outID)
	case inID == outID:
		return state, nil, fmt.Errorf("%w: cannot swap %s with themselves", ErrInvalidMove, inID)
	case state.Players[in].IsActive:
		return state, nil, fmt.Errorf("%w: %s is already on the field", ErrInvalidMove, inID)
	case !state.Players[off].IsActive:
		return state, nil, fmt.Errorf("%w: %s is on the bench", ErrInvalidMove, outID)
	}
	out := state.Clone()
	ensureLineup(&out)
	pos := out.Players[off].CurrentPosition
	replaced := false
	for j, id := range out.ActivePlayersByPosition[pos] {
		if id == outID {
			out.ActivePlayersByPosition[pos][j] = inID
			replaced = true
			break
		}
	}
	if !replaced {
		out.ActivePlayersByPosition[pos] = append(out.ActivePlayersByPosition[pos], inID)
	}

	now := out.TotalTime
	leaving, coming := &out.Players[off], &out.Players[in]
	leaving.IsActive, leaving.CurrentPosition, leaving.LastInterchangeTime = false, model.PositionNone, now
	coming.IsActive, coming.CurrentPosition, coming.LastInterchangeTime = true, pos, now
	return out, []Move{
		{PlayerID: outID, Action: model.ActionOut, Position: pos},
		{PlayerID: inID, Action: model.ActionIn, Position: pos},
	}, nil
}

func ensureLineup(s *model.GameState) {
	if s.ActivePlayersByPosition == nil {
		s.ActivePlayersByPosition = make(map[model.Position][]string, len(model.Positions))
	}
}

func removeID(s *model.GameState, pos model.Position, id string) {
	ids := s.ActivePlayersByPosition[pos]
	kept := ids[:0]
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		delete(s.ActivePlayersByPosition, pos)
		return
	}
	s.ActivePlayersByPosition[pos] = kept
}
