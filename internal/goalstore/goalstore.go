// Package goalstore owns the user's exercise goals for the current period and
// persists them as a serialized list through the prefs boundary.
package goalstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"fitQuestAPI/internal/activity"
	"fitQuestAPI/internal/clock"
	"fitQuestAPI/internal/prefs"
	"fitQuestAPI/internal/types/goal"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const keySportGoals = "sport_goals"

// Store holds the goal list in insertion order. Mutations complete
// synchronously; the activity sink is notified after the local write and its
// failures never roll the mutation back.
type Store struct {
	mu     sync.Mutex
	prefs  prefs.Store
	clock  clock.Clock
	sink   activity.Sink
	goals  []goal.Goal
	loaded bool
}

func NewStore(p prefs.Store, clk clock.Clock, sink activity.Sink) *Store {
	return &Store{prefs: p, clock: clk, sink: sink}
}

func (s *Store) load(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true

	raw := s.prefs.GetString(ctx, keySportGoals, "")
	if raw == "" {
		return
	}
	var goals []goal.Goal
	if err := json.Unmarshal([]byte(raw), &goals); err != nil {
		log.Printf("goalstore: corrupt goal list, starting empty: %v", err)
		return
	}
	s.goals = goals
}

func (s *Store) save(ctx context.Context) error {
	data, err := json.Marshal(s.goals)
	if err != nil {
		return fmt.Errorf("failed to serialize goals: %w", err)
	}
	if err := s.prefs.PutString(ctx, keySportGoals, string(data)); err != nil {
		return fmt.Errorf("failed to persist goals: %w", err)
	}
	return nil
}

func (s *Store) emit(g goal.Goal, action activity.Action) {
	if s.sink == nil {
		return
	}
	s.sink.Publish(activity.Event{
		GoalID:    g.ID,
		Kind:      g.Kind,
		Calories:  g.Calories(),
		Action:    action,
		Timestamp: s.clock.Now(),
	})
}

// List returns the goals in insertion order.
func (s *Store) List(ctx context.Context) []goal.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(ctx)
	out := make([]goal.Goal, len(s.goals))
	copy(out, s.goals)
	return out
}

// Add appends a goal, assigning an ID and creation timestamp when missing.
func (s *Store) Add(ctx context.Context, g goal.Goal) (goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(ctx)
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.clock.Now()
	}
	s.goals = append(s.goals, g)
	if err := s.save(ctx); err != nil {
		s.goals = s.goals[:len(s.goals)-1]
		return goal.Goal{}, err
	}
	s.emit(g, activity.ActionAdd)
	return g, nil
}

// Update replaces the goal with the given id, keeping its identity and
// creation time. Unknown ids are a no-op so a stale UI snapshot cannot fail.
func (s *Store) Update(ctx context.Context, id string, updated goal.Goal) (goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(ctx)
	for i, g := range s.goals {
		if g.ID != id {
			continue
		}
		updated.ID = g.ID
		updated.CreatedAt = g.CreatedAt
		prev := s.goals[i]
		s.goals[i] = updated
		if err := s.save(ctx); err != nil {
			s.goals[i] = prev
			return goal.Goal{}, err
		}
		s.emit(updated, activity.ActionUpdate)
		return updated, nil
	}
	return goal.Goal{}, nil
}

// Delete removes the goal with the given id. Unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(ctx)
	for i, g := range s.goals {
		if g.ID != id {
			continue
		}
		prev := s.goals
		s.goals = append(append([]goal.Goal{}, s.goals[:i]...), s.goals[i+1:]...)
		if err := s.save(ctx); err != nil {
			s.goals = prev
			return err
		}
		s.emit(g, activity.ActionDelete)
		return nil
	}
	return nil
}

// ToggleCompleted flips the completion flag of the goal with the given id.
// Unknown ids are a no-op.
func (s *Store) ToggleCompleted(ctx context.Context, id string) (goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(ctx)
	for i, g := range s.goals {
		if g.ID != id {
			continue
		}
		g.Completed = !g.Completed
		s.goals[i] = g
		if err := s.save(ctx); err != nil {
			g.Completed = !g.Completed
			s.goals[i] = g
			return goal.Goal{}, err
		}
		s.emit(g, activity.ActionUpdate)
		return g, nil
	}
	return goal.Goal{}, nil
}
