package goal

import (
	"time"

	"fitQuestAPI/internal/exercise"
)

// Level labels which preset quantity the user picked when creating the goal.
type Level string

const (
	LevelBeginner  Level = "beginner"
	LevelStandard  Level = "standard"
	LevelChallenge Level = "challenge"
	LevelCustom    Level = "custom"
)

// Goal is one exercise goal for the current day. Calories are never stored,
// always recomputed from Kind and Quantity.
type Goal struct {
	ID        string        `json:"id"`
	Kind      exercise.Kind `json:"kind"`
	Level     Level         `json:"level"`
	Quantity  float64       `json:"quantity"`
	Unit      string        `json:"unit"`
	Completed bool          `json:"completed"`
	CreatedAt time.Time     `json:"created_at"`
}

// Calories returns the kilocalories this goal burns. Unknown kinds yield 0.
func (g Goal) Calories() float64 {
	return exercise.CaloriesFor(g.Kind, g.Quantity)
}
