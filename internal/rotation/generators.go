package rotation

import (
	"fmt"
	"sort"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

// generator produces candidates from one concern. Generators never see each other's output.
type generator struct {
	name string
	run  func(c *analysisContext) []model.RotationSuggestion
}

// generators run in this order; ranking ties fall back to it.
var generators = []generator{
	{name: "late_arrival", run: lateArrivals},
	{name: "equity", run: timeEquity},
	{name: "fatigue", run: fatigue},
	{name: "inclusion", run: benchInclusion},
	{name: "experience", run: positionExperience},
}

func swap(in, out *model.Player, pos model.Position, pr model.Priority, urgency float64, f model.Factor, reasoning string) model.RotationSuggestion {
	return model.RotationSuggestion{
		Type:         model.SuggestionSwap,
		Priority:     pr,
		Reasoning:    reasoning,
		PlayerIn:     in.ID,
		PlayerOut:    out.ID,
		Position:     pos,
		UrgencyScore: urgency,
		Factors:      []model.Factor{f},
	}
}

// lateArrivals brings on bench players who have not played at all yet.
// Each newcomer replaces the longest-serving active player not already claimed.
// When the match is underway and a position is empty, the newcomer fills it directly.
func lateArrivals(c *analysisContext) []model.RotationSuggestion {
	var out []model.RotationSuggestion
	claimed := make(map[string]bool)
	filled := make(map[model.Position]bool)
	for _, b := range c.bench {
		if TotalPlayTime(*b) != 0 {
			continue
		}
		if c.occupied() {
			if pos, ok := c.emptyPosition(filled); ok {
				filled[pos] = true
				out = append(out, model.RotationSuggestion{
					Type:         model.SuggestionSubstituteOn,
					Priority:     model.PriorityUrgent,
					Reasoning:    fmt.Sprintf("%s has not played yet and %s is unoccupied - put them straight on", c.name(b.ID), pos),
					PlayerIn:     b.ID,
					Position:     pos,
					UrgencyScore: c.th.LateArrivalBaseUrgency,
					Factors:      []model.Factor{model.FactorLateArrival},
				})
				continue
			}
		}

		var longest *model.Player
		var longestPos model.Position
		longestStint := -1
		for _, pos := range model.Positions {
			for _, a := range c.active[pos] {
				if claimed[a.ID] {
					continue
				}
				if st := c.stint(a); st > longestStint {
					longest, longestPos, longestStint = a, pos, st
				}
			}
		}
		if longest == nil || longestStint <= c.th.LateArrivalMinStint {
			continue
		}
		claimed[longest.ID] = true
		urgency := c.th.LateArrivalBaseUrgency + minutes(longestStint)/10
		reason := fmt.Sprintf("%s has not played yet this game - bring them on for %s, who has been on %s in %s",
			c.name(b.ID), c.name(longest.ID), clock(longestStint), longestPos)
		out = append(out, swap(b, longest, longestPos, model.PriorityUrgent, urgency, model.FactorLateArrival, reason))
	}
	return out
}

func (c *analysisContext) emptyPosition(filled map[model.Position]bool) (model.Position, bool) {
	for _, pos := range model.Positions {
		if len(c.active[pos]) == 0 && !filled[pos] {
			return pos, true
		}
	}
	return model.PositionNone, false
}

// timeEquity pairs, per position, the most-played active player with the least-played bench player.
func timeEquity(c *analysisContext) []model.RotationSuggestion {
	var out []model.RotationSuggestion
	used := make(map[string]bool)
	for _, pos := range model.Positions {
		var over *model.Player
		overTime := -1
		for _, a := range c.active[pos] {
			if t := TotalPlayTime(*a); t > overTime {
				over, overTime = a, t
			}
		}
		if over == nil {
			continue
		}
		var under *model.Player
		underTime := 0
		for _, b := range c.bench {
			if used[b.ID] {
				continue
			}
			if t := TotalPlayTime(*b); under == nil || t < underTime {
				under, underTime = b, t
			}
		}
		if under == nil {
			continue
		}
		gap := overTime - underTime
		if gap <= c.th.EquityGap {
			continue
		}
		used[under.ID] = true
		pr := model.PriorityRecommended
		if gap > c.th.EquityUrgentGap {
			pr = model.PriorityUrgent
		}
		reason := fmt.Sprintf("%s has played %s more than %s - swap them in %s to even out game time",
			c.name(over.ID), clock(gap), c.name(under.ID), pos)
		out = append(out, swap(under, over, pos, pr, c.capped(minutes(gap)), model.FactorTimeEquity, reason))
	}
	return out
}

// fatigue relieves active players whose stint passed the phase threshold,
// most tired first, each with the best-rested bench player still available.
func fatigue(c *analysisContext) []model.RotationSuggestion {
	limit := c.th.FatigueStint
	if c.phase == PhaseLate {
		limit = c.th.FatigueStintLate
	}
	type tired struct {
		p   *model.Player
		pos model.Position
		st  int
	}
	var candidates []tired
	for _, pos := range model.Positions {
		for _, a := range c.active[pos] {
			if st := c.stint(a); st > limit {
				candidates = append(candidates, tired{p: a, pos: pos, st: st})
			}
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].st > candidates[j].st })

	var out []model.RotationSuggestion
	used := make(map[string]bool)
	for _, t := range candidates {
		var fresh *model.Player
		freshRest := c.th.FatigueMinRest
		for _, b := range c.bench {
			if used[b.ID] {
				continue
			}
			if r := c.rest(b); r > freshRest {
				fresh, freshRest = b, r
			}
		}
		if fresh == nil {
			continue
		}
		used[fresh.ID] = true
		pr := model.PriorityRecommended
		if t.st > c.th.FatigueUrgentStint {
			pr = model.PriorityUrgent
		}
		urgency := c.capped(3 + minutes(t.st-limit))
		reason := fmt.Sprintf("%s has been on for %s in %s - %s has rested %s and is ready",
			c.name(t.p.ID), clock(t.st), t.pos, c.name(fresh.ID), clock(freshRest))
		out = append(out, swap(fresh, t.p, t.pos, pr, urgency, model.FactorFatigue, reason))
	}
	return out
}

// benchInclusion gets the longest-waiting bench players back on.
func benchInclusion(c *analysisContext) []model.RotationSuggestion {
	var waiting []*model.Player
	for _, b := range c.bench {
		if c.rest(b) > c.th.InclusionMinRest {
			waiting = append(waiting, b)
		}
	}
	sort.SliceStable(waiting, func(i, j int) bool { return c.rest(waiting[i]) > c.rest(waiting[j]) })
	if len(waiting) > c.th.InclusionMaxPlayers {
		waiting = waiting[:c.th.InclusionMaxPlayers]
	}

	var out []model.RotationSuggestion
	replaced := make(map[string]bool)
	for _, b := range waiting {
		var stale *model.Player
		var stalePos model.Position
		staleStint := c.th.InclusionMinStint
		for _, pos := range model.Positions {
			for _, a := range c.active[pos] {
				if replaced[a.ID] {
					continue
				}
				if st := c.stint(a); st > staleStint {
					stale, stalePos, staleStint = a, pos, st
				}
			}
		}
		if stale == nil {
			continue
		}
		replaced[stale.ID] = true
		rest := c.rest(b)
		reason := fmt.Sprintf("%s has been waiting on the bench for %s - rotate in for %s in %s",
			c.name(b.ID), clock(rest), c.name(stale.ID), stalePos)
		out = append(out, swap(b, stale, stalePos, model.PriorityRecommended, c.capped(1+minutes(rest)/2), model.FactorInclusion, reason))
	}
	return out
}

// positionExperience moves players into positions they have barely played.
// Near the end of a quarter rest and fairness matter more, so it stays silent in the late phase.
func positionExperience(c *analysisContext) []model.RotationSuggestion {
	if c.phase == PhaseLate {
		return nil
	}
	var out []model.RotationSuggestion
	used := make(map[string]bool)
	for _, pos := range model.Positions {
		for _, a := range c.active[pos] {
			if used[a.ID] {
				continue
			}
			exp := LifetimePositionTime(*a, pos)
			if exp >= c.th.ExperienceMax || c.stint(a) <= c.th.ExperienceMinStint {
				continue
			}
			var novice *model.Player
			var noviceFrom model.Position
			noviceExp := exp
			for _, other := range model.Positions {
				if other == pos {
					continue
				}
				for _, b := range c.active[other] {
					if used[b.ID] {
						continue
					}
					if e := LifetimePositionTime(*b, pos); e < noviceExp {
						novice, noviceFrom, noviceExp = b, other, e
					}
				}
			}
			if novice == nil {
				continue
			}
			used[a.ID], used[novice.ID] = true, true
			urgency := c.capped(1 + minutes(c.th.ExperienceMax-noviceExp)/2)
			reason := fmt.Sprintf("%s has only %s in %s - swap with %s (now in %s) to build positional experience",
				c.name(novice.ID), clock(noviceExp), pos, c.name(a.ID), noviceFrom)
			out = append(out, swap(novice, a, pos, model.PriorityOptional, urgency, model.FactorPositionExperience, reason))
		}
	}
	return out
}
