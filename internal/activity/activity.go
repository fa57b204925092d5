// Package activity defines the event contract between the local goal store
// and the cloud sync collaborator. Emission is fire-and-forget: a dropped or
// failed event never rolls back the local mutation that produced it.
package activity

import (
	"time"

	"fitQuestAPI/internal/exercise"
)

type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event mirrors one goal mutation to the remote activity store.
type Event struct {
	GoalID    string        `json:"goal_id"`
	Kind      exercise.Kind `json:"kind"`
	Calories  float64       `json:"calories"`
	Action    Action        `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
}

// Sink consumes goal mutation events. Publish must not block the caller.
type Sink interface {
	Publish(event Event)
}
