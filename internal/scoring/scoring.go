// Package scoring derives the daily point score from the user's goals and
// calorie target.
//
// Canonical rule set (older builds shipped 25/50/75/100 milestone tiers and a
// count-all-goals model; this is the one kept):
//   - only goals marked completed contribute
//   - base points: floor(goalCalories/10) per contributing goal
//   - one milestone bonus for the highest tier reached:
//     100%:+100, 80%:+60, 60%:+40, 40%:+20, 20%:+10
//   - overshoot past 100%: +2 per percent, capped at +100
//   - 3+ distinct calorie-burning kinds completed: +8 per distinct kind
//   - below 20% completion the score is 0, full stop
package scoring

import (
	"math"

	"fitQuestAPI/internal/types/goal"
)

// CompletedCalories sums the calories of the completed goals.
func CompletedCalories(goals []goal.Goal) float64 {
	var total float64
	for _, g := range goals {
		if g.Completed {
			total += g.Calories()
		}
	}
	return total
}

// CompletionPercent returns floor(completedCalories/target*100), or 0 when the
// target is not positive.
func CompletionPercent(goals []goal.Goal, dailyTarget int) int {
	if dailyTarget <= 0 {
		return 0
	}
	return int(math.Floor(CompletedCalories(goals) / float64(dailyTarget) * 100))
}

// Score computes the daily point score. It is pure and total: malformed goals
// contribute 0 calories, and the result is always >= 0.
func Score(goals []goal.Goal, dailyTarget int) int {
	if dailyTarget <= 0 {
		return 0
	}

	pct := CompletionPercent(goals, dailyTarget)
	if pct < 20 {
		return 0
	}

	points := 0
	distinct := make(map[string]struct{})
	for _, g := range goals {
		if !g.Completed {
			continue
		}
		points += int(math.Floor(g.Calories() / 10))
		// Only kinds that actually burn calories count toward variety.
		if g.Calories() > 0 {
			distinct[string(g.Kind)] = struct{}{}
		}
	}

	switch {
	case pct >= 100:
		points += 100
	case pct >= 80:
		points += 60
	case pct >= 60:
		points += 40
	case pct >= 40:
		points += 20
	default:
		points += 10
	}

	if pct >= 100 {
		overshoot := pct - 100
		if overshoot > 50 {
			overshoot = 50
		}
		points += 2 * overshoot
	}

	if len(distinct) >= 3 {
		points += 8 * len(distinct)
	}

	return points
}
