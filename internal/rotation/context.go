package rotation

import (
	"fmt"

	"github.com/maxviazov/rotation-advisor-service/internal/model"
)

// analysisContext is the resolved, read-only view every generator works from.
type analysisContext struct {
	now     int
	phase   Phase
	th      Thresholds
	roster  map[string]*model.Player
	bench   []*model.Player
	active  map[model.Position][]*model.Player
	history []model.RotationRecord
	skipped []string
}

// newAnalysisContext resolves ids against the roster. Active ids with no roster entry,
// or whose player is not marked active, are skipped and reported in skipped.
func newAnalysisContext(state *model.GameState, history []model.RotationRecord, th Thresholds) *analysisContext {
	c := &analysisContext{
		now:     state.TotalTime,
		phase:   PhaseOf(state.QuarterTime, th),
		th:      th,
		roster:  make(map[string]*model.Player, len(state.Players)),
		active:  make(map[model.Position][]*model.Player, len(model.Positions)),
		history: history,
	}
	for i := range state.Players {
		p := &state.Players[i]
		if _, dup := c.roster[p.ID]; dup || p.ID == "" {
			c.skipped = append(c.skipped, p.ID)
			continue
		}
		c.roster[p.ID] = p
		if !p.IsActive {
			c.bench = append(c.bench, p)
		}
	}
	placed := make(map[string]bool)
	for _, pos := range model.Positions {
		for _, id := range state.ActivePlayersByPosition[pos] {
			p, ok := c.roster[id]
			if !ok || !p.IsActive || placed[id] {
				c.skipped = append(c.skipped, id)
				continue
			}
			placed[id] = true
			c.active[pos] = append(c.active[pos], p)
		}
	}
	return c
}

func (c *analysisContext) stint(p *model.Player) int { return CurrentStint(*p, c.now) }
func (c *analysisContext) rest(p *model.Player) int  { return RestTime(*p, c.now) }

func (c *analysisContext) occupied() bool {
	for _, pos := range model.Positions {
		if len(c.active[pos]) > 0 {
			return true
		}
	}
	return false
}

func (c *analysisContext) name(id string) string {
	if p, ok := c.roster[id]; ok && p.Name != "" {
		return p.Name
	}
	return "Unknown"
}

func (c *analysisContext) capped(v float64) float64 {
	return min(v, c.th.RoutineUrgencyCap)
}

func clock(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func minutes(secs int) float64 { return float64(secs) / 60 }
