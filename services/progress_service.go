package services

import (
	"context"
	"fmt"

	"fitQuestAPI/internal/progress"
)

type ProgressService struct {
	sessions *SessionManager
	syncer   PointsSyncer
}

func NewProgressService(sessions *SessionManager) *ProgressService {
	return &ProgressService{sessions: sessions}
}

func (s *ProgressService) SetPointsSyncer(p PointsSyncer) { s.syncer = p }

// Today returns the current accumulator state, converged onto today's date.
func (s *ProgressService) Today(ctx context.Context, clerkID string) (*progress.Snapshot, error) {
	session := s.sessions.Session(clerkID)
	session.Lock()
	defer session.Unlock()

	goals := session.Goals.List(ctx)
	snapshot, err := session.Progress.Recompute(ctx, goals)
	if err != nil {
		return nil, fmt.Errorf("failed to compute progress: %w", err)
	}
	return snapshot, nil
}

// History returns the last `days` daily outcomes, today last and derived live.
func (s *ProgressService) History(ctx context.Context, clerkID string, days int) ([]progress.DayOutcome, error) {
	session := s.sessions.Session(clerkID)
	session.Lock()
	defer session.Unlock()

	goals := session.Goals.List(ctx)
	if _, err := session.Progress.Recompute(ctx, goals); err != nil {
		return nil, fmt.Errorf("failed to compute progress: %w", err)
	}
	return session.Progress.History(ctx, days)
}

// SetCalorieTarget updates the daily target and immediately re-derives the
// score against the new denominator.
func (s *ProgressService) SetCalorieTarget(ctx context.Context, clerkID string, target int) (*progress.Snapshot, error) {
	session := s.sessions.Session(clerkID)
	session.Lock()
	defer session.Unlock()

	if err := session.Progress.SetCalorieTarget(ctx, target); err != nil {
		return nil, err
	}
	goals := session.Goals.List(ctx)
	snapshot, err := session.Progress.Recompute(ctx, goals)
	if err != nil {
		return nil, fmt.Errorf("failed to compute progress: %w", err)
	}
	syncPointsAsync(s.syncer, clerkID, snapshot.TotalPoints)
	return snapshot, nil
}

// AwardPoints adds bonus points to the historical total (challenges, streak
// rewards).
func (s *ProgressService) AwardPoints(ctx context.Context, clerkID string, points int) (*progress.Snapshot, error) {
	session := s.sessions.Session(clerkID)
	session.Lock()
	defer session.Unlock()

	if err := session.Progress.AwardPoints(ctx, points); err != nil {
		return nil, err
	}
	snapshot, err := session.Progress.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	syncPointsAsync(s.syncer, clerkID, snapshot.TotalPoints)
	return snapshot, nil
}
