package services

import (
	"context"
	"fmt"
	"time"

	"fitQuestAPI/internal/exercise"
	"fitQuestAPI/internal/progress"
	"fitQuestAPI/internal/types/goal"

	log "github.com/sirupsen/logrus"
)

// GoalNotifier receives goal-achievement events. Optional; delivery failures
// never affect the goal mutation that triggered them.
type GoalNotifier interface {
	NotifyGoalAchieved(ctx context.Context, clerkID string, calories float64, target int)
	NotifyStreakMilestone(ctx context.Context, clerkID string, days int)
}

// streakMilestones are the streak lengths worth celebrating with a push.
var streakMilestones = map[int]bool{3: true, 7: true, 14: true, 30: true, 100: true}

// PointsSyncer mirrors the user's point total to the cloud leaderboard.
// Fire-and-forget: local storage stays the source of truth for scoring.
type PointsSyncer interface {
	SyncPoints(ctx context.Context, clerkID string, totalPoints int) error
}

type GoalRequest struct {
	Kind     exercise.Kind `json:"kind"`
	Level    goal.Level    `json:"level"`
	Quantity string        `json:"quantity"`
}

// GoalsWithScore is what the exercise screen renders after any mutation.
type GoalsWithScore struct {
	Goals    []goal.Goal        `json:"goals"`
	Progress *progress.Snapshot `json:"progress"`
}

type GoalService struct {
	sessions *SessionManager
	notifier GoalNotifier
	syncer   PointsSyncer
}

func NewGoalService(sessions *SessionManager) *GoalService {
	return &GoalService{sessions: sessions}
}

func (s *GoalService) SetNotifier(n GoalNotifier)     { s.notifier = n }
func (s *GoalService) SetPointsSyncer(p PointsSyncer) { s.syncer = p }

func goalFromRequest(req *GoalRequest) goal.Goal {
	level := req.Level
	if level == "" {
		level = goal.LevelCustom
	}
	// Unknown kinds and unparseable quantities degrade to zero calories
	// rather than failing creation.
	return goal.Goal{
		Kind:     req.Kind,
		Level:    level,
		Quantity: exercise.ParseQuantity(req.Quantity),
		Unit:     exercise.UnitFor(req.Kind),
	}
}

// ListGoals returns the user's goals with the current score, rolling the day
// over first if needed.
func (s *GoalService) ListGoals(ctx context.Context, clerkID string) (*GoalsWithScore, error) {
	session := s.sessions.Session(clerkID)
	session.Lock()
	defer session.Unlock()

	goals := session.Goals.List(ctx)
	snapshot, err := session.Progress.Recompute(ctx, goals)
	if err != nil {
		return nil, fmt.Errorf("failed to compute progress: %w", err)
	}
	return &GoalsWithScore{Goals: goals, Progress: snapshot}, nil
}

func (s *GoalService) AddGoal(ctx context.Context, clerkID string, req *GoalRequest) (*GoalsWithScore, error) {
	session := s.sessions.Session(clerkID)
	session.Lock()
	defer session.Unlock()

	if _, err := session.Goals.Add(ctx, goalFromRequest(req)); err != nil {
		return nil, fmt.Errorf("failed to add goal: %w", err)
	}
	return s.rescore(ctx, clerkID, session)
}

func (s *GoalService) UpdateGoal(ctx context.Context, clerkID, goalID string, req *GoalRequest) (*GoalsWithScore, error) {
	session := s.sessions.Session(clerkID)
	session.Lock()
	defer session.Unlock()

	updated := goalFromRequest(req)
	// Completion state survives an edit.
	for _, g := range session.Goals.List(ctx) {
		if g.ID == goalID {
			updated.Completed = g.Completed
			break
		}
	}
	if _, err := session.Goals.Update(ctx, goalID, updated); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	return s.rescore(ctx, clerkID, session)
}

func (s *GoalService) DeleteGoal(ctx context.Context, clerkID, goalID string) (*GoalsWithScore, error) {
	session := s.sessions.Session(clerkID)
	session.Lock()
	defer session.Unlock()

	if err := session.Goals.Delete(ctx, goalID); err != nil {
		return nil, fmt.Errorf("failed to delete goal: %w", err)
	}
	return s.rescore(ctx, clerkID, session)
}

func (s *GoalService) ToggleGoal(ctx context.Context, clerkID, goalID string) (*GoalsWithScore, error) {
	session := s.sessions.Session(clerkID)
	session.Lock()
	defer session.Unlock()

	if _, err := session.Goals.ToggleCompleted(ctx, goalID); err != nil {
		return nil, fmt.Errorf("failed to toggle goal: %w", err)
	}
	return s.rescore(ctx, clerkID, session)
}

// rescore re-derives today's score after a mutation and kicks off the
// fire-and-forget cloud side effects. Caller holds the session lock.
func (s *GoalService) rescore(ctx context.Context, clerkID string, session *UserSession) (*GoalsWithScore, error) {
	goals := session.Goals.List(ctx)

	before, err := session.Progress.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}

	snapshot, err := session.Progress.Recompute(ctx, goals)
	if err != nil {
		return nil, fmt.Errorf("failed to compute progress: %w", err)
	}

	if s.notifier != nil && !before.TodayAchieved && snapshot.TodayAchieved {
		s.notifier.NotifyGoalAchieved(ctx, clerkID, snapshot.DailyCalories, snapshot.CalorieTarget)
		if streak, err := session.Progress.CurrentStreak(ctx); err == nil && streakMilestones[streak] {
			s.notifier.NotifyStreakMilestone(ctx, clerkID, streak)
		}
	}

	syncPointsAsync(s.syncer, clerkID, snapshot.TotalPoints)

	return &GoalsWithScore{Goals: goals, Progress: snapshot}, nil
}

// syncPointsAsync mirrors the point total to the leaderboard off the request
// path. A nil syncer or a sync failure never surfaces to the caller.
func syncPointsAsync(syncer PointsSyncer, clerkID string, total int) {
	if syncer == nil {
		return
	}
	go func() {
		syncCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := syncer.SyncPoints(syncCtx, clerkID, total); err != nil {
			log.Printf("points sync for user %s failed: %v", clerkID, err)
		}
	}()
}
