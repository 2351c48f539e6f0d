package rotation

import "github.com/maxviazov/rotation-advisor-service/internal/model"

// dropMalformed removes candidates that reference players missing from the roster,
// swap a player with themselves, or target no position.
func dropMalformed(c *analysisContext, in []model.RotationSuggestion) []model.RotationSuggestion {
	out := in[:0:0]
	for _, s := range in {
		if !s.Position.Valid() {
			continue
		}
		if s.PlayerIn != "" && s.PlayerIn == s.PlayerOut {
			continue
		}
		if !c.known(s.PlayerIn) || !c.known(s.PlayerOut) {
			continue
		}
		if s.Type == model.SuggestionSwap && (s.PlayerIn == "" || s.PlayerOut == "") {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (c *analysisContext) known(id string) bool {
	if id == "" {
		return true
	}
	_, ok := c.roster[id]
	return ok
}

// suppressFlipFlops drops candidates that would undo a move made within the window:
// bringing a player back into a position they just left, or taking off one who just arrived.
func suppressFlipFlops(c *analysisContext, in []model.RotationSuggestion) []model.RotationSuggestion {
	if len(c.history) == 0 || c.th.FlipFlopWindow <= 0 {
		return in
	}
	out := in[:0:0]
	for _, s := range in {
		if s.PlayerIn != "" && c.movedRecently(s.PlayerIn, model.ActionOut, s.Position) {
			continue
		}
		if s.PlayerOut != "" && c.movedRecently(s.PlayerOut, model.ActionIn, s.Position) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (c *analysisContext) movedRecently(playerID string, action model.RotationAction, pos model.Position) bool {
	for _, r := range c.history {
		if r.PlayerID != playerID || r.Action != action || r.Position != pos {
			continue
		}
		if c.now-r.GameTime < c.th.FlipFlopWindow {
			return true
		}
	}
	return false
}

type pairKey struct {
	a, b string
	pos  model.Position
}

func keyOf(s model.RotationSuggestion) pairKey {
	a, b := s.PlayerIn, s.PlayerOut
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b, pos: s.Position}
}

// dedupePairs keeps one suggestion per unordered pairing and position: the most urgent,
// and the earliest on ties. Survivors keep the slot of the first occurrence.
func dedupePairs(in []model.RotationSuggestion) []model.RotationSuggestion {
	out := make([]model.RotationSuggestion, 0, len(in))
	seen := make(map[pairKey]int, len(in))
	for _, s := range in {
		k := keyOf(s)
		if i, ok := seen[k]; ok {
			if s.UrgencyScore > out[i].UrgencyScore {
				out[i] = s
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, s)
	}
	return out
}
