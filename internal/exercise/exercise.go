package exercise

import (
	"strconv"
	"strings"
)

// Kind identifies a supported exercise type.
type Kind string

const (
	KindRunning  Kind = "running"
	KindCycling  Kind = "cycling"
	KindSwimming Kind = "swimming"
	KindWalking  Kind = "walking"
	KindYoga     Kind = "yoga"
	KindStrength Kind = "strength"
	KindPushUps  Kind = "push_ups"
	KindSitUps   Kind = "sit_ups"
	KindPullUps  Kind = "pull_ups"
	KindJumpRope Kind = "jump_rope"
)

// Info describes a kind: the unit its quantity is measured in and how many
// kilocalories one unit burns. Units are not interchangeable across kinds.
type Info struct {
	DisplayName     string  `json:"display_name"`
	Unit            string  `json:"unit"`
	CaloriesPerUnit float64 `json:"calories_per_unit"`
}

var kinds = map[Kind]Info{
	KindRunning:  {DisplayName: "Running", Unit: "km", CaloriesPerUnit: 60.0},
	KindCycling:  {DisplayName: "Cycling", Unit: "km", CaloriesPerUnit: 40.0},
	KindSwimming: {DisplayName: "Swimming", Unit: "m", CaloriesPerUnit: 0.15},
	KindWalking:  {DisplayName: "Walking", Unit: "km", CaloriesPerUnit: 30.0},
	KindYoga:     {DisplayName: "Yoga", Unit: "min", CaloriesPerUnit: 3.0},
	KindStrength: {DisplayName: "Weight training", Unit: "min", CaloriesPerUnit: 5.0},
	KindPushUps:  {DisplayName: "Push-ups", Unit: "reps", CaloriesPerUnit: 0.5},
	KindSitUps:   {DisplayName: "Sit-ups", Unit: "reps", CaloriesPerUnit: 0.3},
	KindPullUps:  {DisplayName: "Pull-ups", Unit: "reps", CaloriesPerUnit: 1.0},
	KindJumpRope: {DisplayName: "Jump rope", Unit: "min", CaloriesPerUnit: 10.0},
}

var kindOrder = []Kind{
	KindRunning, KindCycling, KindSwimming, KindWalking, KindYoga,
	KindStrength, KindPushUps, KindSitUps, KindPullUps, KindJumpRope,
}

// Known reports whether kind is a supported exercise kind.
func Known(kind Kind) bool {
	_, ok := kinds[kind]
	return ok
}

// InfoFor returns the kind's unit and coefficient info.
func InfoFor(kind Kind) (Info, bool) {
	info, ok := kinds[kind]
	return info, ok
}

// UnitFor returns the unit string for kind, or "" for an unknown kind.
func UnitFor(kind Kind) string {
	return kinds[kind].Unit
}

// Kinds returns all supported kinds in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(kindOrder))
	copy(out, kindOrder)
	return out
}

// CaloriesFor returns the kilocalories burned by quantity units of kind.
// Total: an unknown kind or a non-positive quantity yields 0, never an error.
func CaloriesFor(kind Kind, quantity float64) float64 {
	info, ok := kinds[kind]
	if !ok || quantity <= 0 {
		return 0
	}
	return info.CaloriesPerUnit * quantity
}

// ParseQuantity parses user-entered quantity text. Invalid or negative input
// is treated as 0 rather than rejected.
func ParseQuantity(s string) float64 {
	q, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || q < 0 {
		return 0
	}
	return q
}
