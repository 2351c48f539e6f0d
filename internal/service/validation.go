package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/maxviazov/rotation-advisor-service/internal/gameclock"
	"github.com/maxviazov/rotation-advisor-service/internal/model"
	"github.com/maxviazov/rotation-advisor-service/internal/repository"
)

const (
	maxNameLen     = 100
	maxRosterSize  = 40
	maxGuernseyNum = 99
)

// Clock actions accepted by GameService.Clock.
const (
	ClockStart       = "start"
	ClockPause       = "pause"
	ClockNextQuarter = "next_quarter"
)

func normalizePage(p repository.Page) repository.Page {
	return p.Sanitize()
}

// ParsePosition accepts a position name in any case; "defense" is taken as "defence".
func ParsePosition(s string) (model.Position, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "defense" {
		v = string(model.PositionDefence)
	}
	p := model.Position(v)
	return p, p.Valid()
}

func validateGameID(id string) []FieldError {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return []FieldError{{Field: "game_id", Message: "must be a uuid"}}
	}
	return nil
}

func validateName(field, name string) []FieldError {
	n := strings.TrimSpace(name)
	switch {
	case n == "":
		return []FieldError{{Field: field, Message: "must not be empty"}}
	case len(n) > maxNameLen:
		return []FieldError{{Field: field, Message: fmt.Sprintf("must be at most %d characters", maxNameLen)}}
	}
	return nil
}

func validatePlayer(prefix string, p NewPlayer) []FieldError {
	ferrs := validateName(prefix+"name", p.Name)
	if p.GuernseyNumber < 0 || p.GuernseyNumber > maxGuernseyNum {
		ferrs = append(ferrs, FieldError{Field: prefix + "guernsey_number", Message: fmt.Sprintf("must be between 0 and %d", maxGuernseyNum)})
	}
	if p.Position != "" {
		if _, ok := ParsePosition(p.Position); !ok {
			ferrs = append(ferrs, FieldError{Field: prefix + "position", Message: "must be one of forward|midfield|defence"})
		}
	}
	return ferrs
}

func validateRoster(roster []NewPlayer) []FieldError {
	var ferrs []FieldError
	if len(roster) > maxRosterSize {
		return []FieldError{{Field: "players", Message: fmt.Sprintf("at most %d players", maxRosterSize)}}
	}
	seen := make(map[int]bool, len(roster))
	for i, p := range roster {
		prefix := fmt.Sprintf("players[%d].", i)
		ferrs = append(ferrs, validatePlayer(prefix, p)...)
		if seen[p.GuernseyNumber] {
			ferrs = append(ferrs, FieldError{Field: prefix + "guernsey_number", Message: "already taken"})
		}
		seen[p.GuernseyNumber] = true
	}
	return ferrs
}

func numberTaken(state model.GameState, number int) bool {
	for _, p := range state.Players {
		if p.GuernseyNumber == number {
			return true
		}
	}
	return false
}

// lineupError turns a state store rejection into a field error. Rule violations are
// reported on field; anything else is returned untouched.
func lineupError(field string, err error) error {
	switch {
	case errors.Is(err, gameclock.ErrPlayerNotFound):
		return newInvalidInput([]FieldError{{Field: "player_id", Message: "player does not exist"}})
	case errors.Is(err, gameclock.ErrInvalidMove), errors.Is(err, gameclock.ErrDuplicatePlayer):
		return newInvalidInput([]FieldError{{Field: field, Message: err.Error()}})
	default:
		return err
	}
}
