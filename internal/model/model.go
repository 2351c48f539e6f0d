// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes; the only behavior here is copying and lookups.
package model

import "time"

// Position is one of the three on-field roles a player may occupy.
type Position string

const (
	PositionNone     Position = ""
	PositionForward  Position = "forward"
	PositionMidfield Position = "midfield"
	PositionDefence  Position = "defence"
)

// Positions lists the on-field roles in their canonical order.
// Everything that iterates positions uses this order so output stays deterministic.
var Positions = []Position{PositionForward, PositionMidfield, PositionDefence}

// Valid reports whether p is an on-field role.
func (p Position) Valid() bool {
	switch p {
	case PositionForward, PositionMidfield, PositionDefence:
		return true
	default:
		return false
	}
}

// SeasonStats holds cross-game aggregates owned by season tracking.
type SeasonStats struct {
	GamesPlayed     int              `json:"games_played"`
	PositionTotals  map[Position]int `json:"position_totals,omitempty"`
	AverageGameTime float64          `json:"average_game_time"`
}

// Player is a roster member. Times are seconds of game clock.
type Player struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	GuernseyNumber      int              `json:"guernsey_number"`
	IsActive            bool             `json:"is_active"`
	CurrentPosition     Position         `json:"current_position,omitempty"`
	LastInterchangeTime int              `json:"last_interchange_time"`
	TimeStats           map[Position]int `json:"time_stats,omitempty"`
	SeasonStats         SeasonStats      `json:"season_stats"`
}

// PlannedSubstitution is a move queued by the coach for later.
type PlannedSubstitution struct {
	PlayerIn  string   `json:"player_in,omitempty"`
	PlayerOut string   `json:"player_out,omitempty"`
	Position  Position `json:"position"`
}

// GameState is the live match snapshot.
type GameState struct {
	IsPlaying               bool                  `json:"is_playing"`
	CurrentQuarter          int                   `json:"current_quarter"`
	QuarterTime             int                   `json:"quarter_time"`
	TotalTime               int                   `json:"total_time"`
	Players                 []Player              `json:"players"`
	ActivePlayersByPosition map[Position][]string `json:"active_players_by_position"`
	PlannedSubstitutions    []PlannedSubstitution `json:"planned_substitutions,omitempty"`
}

// Clone returns a deep copy so callers can mutate the result without touching the source.
func (s GameState) Clone() GameState {
	out := s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.Clone()
	}
	out.ActivePlayersByPosition = make(map[Position][]string, len(s.ActivePlayersByPosition))
	for pos, ids := range s.ActivePlayersByPosition {
		out.ActivePlayersByPosition[pos] = append([]string(nil), ids...)
	}
	if s.PlannedSubstitutions != nil {
		out.PlannedSubstitutions = append([]PlannedSubstitution(nil), s.PlannedSubstitutions...)
	}
	return out
}

// PlayerIndex returns the roster index of id, or -1.
func (s GameState) PlayerIndex(id string) int {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone deep-copies the player's maps.
func (p Player) Clone() Player {
	out := p
	out.TimeStats = copyTimes(p.TimeStats)
	out.SeasonStats.PositionTotals = copyTimes(p.SeasonStats.PositionTotals)
	return out
}

func copyTimes(in map[Position]int) map[Position]int {
	if in == nil {
		return nil
	}
	out := make(map[Position]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Game is the persisted aggregate: a named match and its live state.
type Game struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	State     GameState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RotationAction is the direction of a recorded move.
type RotationAction string

const (
	ActionIn  RotationAction = "in"
	ActionOut RotationAction = "out"
)

// RotationRecord is one entry of the rotation history log.
type RotationRecord struct {
	ID        string         `json:"id"`
	GameID    string         `json:"game_id"`
	PlayerID  string         `json:"player_id"`
	Action    RotationAction `json:"action"`
	Position  Position       `json:"position"`
	GameTime  int            `json:"game_time"`
	CreatedAt time.Time      `json:"created_at"`
}
