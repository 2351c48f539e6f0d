package rotation

import "github.com/maxviazov/rotation-advisor-service/internal/model"

// RestTime is how long a benched player has been off. Zero for active players.
func RestTime(p model.Player, now int) int {
	if p.IsActive {
		return 0
	}
	return nonNegative(now - p.LastInterchangeTime)
}

// CurrentStint is how long an active player has been on since the last interchange.
func CurrentStint(p model.Player, now int) int {
	if !p.IsActive {
		return 0
	}
	return nonNegative(now - p.LastInterchangeTime)
}

// TotalPlayTime sums the player's time in every position this game.
func TotalPlayTime(p model.Player) int {
	total := 0
	for _, secs := range p.TimeStats {
		total += secs
	}
	return total
}

// LifetimePositionTime is season experience in pos plus time there this game.
func LifetimePositionTime(p model.Player, pos model.Position) int {
	return p.SeasonStats.PositionTotals[pos] + p.TimeStats[pos]
}

// AverageGameTime is the mean total play time across the roster.
func AverageGameTime(players []model.Player) float64 {
	sum := 0
	for _, p := range players {
		sum += TotalPlayTime(p)
	}
	return float64(sum) / float64(max(len(players), 1))
}

// AveragePositionTime is the mean time spent in pos across the roster.
func AveragePositionTime(players []model.Player, pos model.Position) float64 {
	sum := 0
	for _, p := range players {
		sum += p.TimeStats[pos]
	}
	return float64(sum) / float64(max(len(players), 1))
}

// a stale snapshot can carry an interchange stamp ahead of the clock
func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
