package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"fitQuestAPI/internal/activity"
	"fitQuestAPI/internal/clock"
	"fitQuestAPI/internal/exercise"
	"fitQuestAPI/internal/prefs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

type recordingNotifier struct {
	mu      sync.Mutex
	calls   []float64
	streaks []int
}

func (n *recordingNotifier) NotifyGoalAchieved(_ context.Context, _ string, calories float64, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, calories)
}

func (n *recordingNotifier) NotifyStreakMilestone(_ context.Context, _ string, days int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.streaks = append(n.streaks, days)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func (n *recordingNotifier) streakCalls() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int(nil), n.streaks...)
}

type recordingSyncer struct {
	synced chan int
}

func (s *recordingSyncer) SyncPoints(_ context.Context, _ string, totalPoints int) error {
	select {
	case s.synced <- totalPoints:
	default:
	}
	return nil
}

func newTestGoalService() (*GoalService, *fakeClock) {
	clk := &fakeClock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	sessions := NewSessionManager(
		func(string) prefs.Store { return prefs.NewMemoryStore() },
		clk,
		func(string) activity.Sink { return nil },
	)
	return NewGoalService(sessions), clk
}

func TestAddGoalScoresImmediately(t *testing.T) {
	svc, _ := newTestGoalService()
	ctx := context.Background()

	result, err := svc.AddGoal(ctx, "user_1", &GoalRequest{
		Kind:     exercise.KindRunning,
		Quantity: "3",
	})
	require.NoError(t, err)

	require.Len(t, result.Goals, 1)
	assert.NotEmpty(t, result.Goals[0].ID)
	assert.Equal(t, "km", result.Goals[0].Unit)
	assert.False(t, result.Goals[0].Completed)

	// Nothing completed yet, so the score is zero.
	assert.Equal(t, 0, result.Progress.DailyPoints)
	assert.Equal(t, 0.0, result.Progress.DailyCalories)
}

func TestToggleGoalScores(t *testing.T) {
	svc, _ := newTestGoalService()
	ctx := context.Background()

	added, err := svc.AddGoal(ctx, "user_1", &GoalRequest{
		Kind:     exercise.KindRunning,
		Quantity: "3",
	})
	require.NoError(t, err)

	result, err := svc.ToggleGoal(ctx, "user_1", added.Goals[0].ID)
	require.NoError(t, err)

	// 180 kcal of 500: base 18 plus the 20% milestone.
	assert.Equal(t, 28, result.Progress.DailyPoints)
	assert.InDelta(t, 180.0, result.Progress.DailyCalories, 1e-9)
	assert.False(t, result.Progress.TodayAchieved)
}

func TestUpdateGoalPreservesCompletion(t *testing.T) {
	svc, _ := newTestGoalService()
	ctx := context.Background()

	added, err := svc.AddGoal(ctx, "user_1", &GoalRequest{
		Kind:     exercise.KindRunning,
		Quantity: "3",
	})
	require.NoError(t, err)
	goalID := added.Goals[0].ID

	_, err = svc.ToggleGoal(ctx, "user_1", goalID)
	require.NoError(t, err)

	result, err := svc.UpdateGoal(ctx, "user_1", goalID, &GoalRequest{
		Kind:     exercise.KindRunning,
		Quantity: "5",
	})
	require.NoError(t, err)

	require.Len(t, result.Goals, 1)
	assert.True(t, result.Goals[0].Completed, "editing a goal must not uncheck it")
	assert.Equal(t, 5.0, result.Goals[0].Quantity)
	assert.InDelta(t, 300.0, result.Progress.DailyCalories, 1e-9)
}

func TestDeleteGoalRescores(t *testing.T) {
	svc, _ := newTestGoalService()
	ctx := context.Background()

	added, err := svc.AddGoal(ctx, "user_1", &GoalRequest{
		Kind:     exercise.KindRunning,
		Quantity: "3",
	})
	require.NoError(t, err)
	_, err = svc.ToggleGoal(ctx, "user_1", added.Goals[0].ID)
	require.NoError(t, err)

	result, err := svc.DeleteGoal(ctx, "user_1", added.Goals[0].ID)
	require.NoError(t, err)

	assert.Empty(t, result.Goals)
	assert.Equal(t, 0, result.Progress.DailyPoints)
	assert.Equal(t, 0.0, result.Progress.DailyCalories)
}

func TestAchievementNotifiedOnce(t *testing.T) {
	svc, _ := newTestGoalService()
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	ctx := context.Background()

	// 10 km run = 600 kcal, clears the default 500 kcal target.
	added, err := svc.AddGoal(ctx, "user_1", &GoalRequest{
		Kind:     exercise.KindRunning,
		Quantity: "10",
	})
	require.NoError(t, err)
	require.Equal(t, 0, notifier.count())

	result, err := svc.ToggleGoal(ctx, "user_1", added.Goals[0].ID)
	require.NoError(t, err)
	assert.True(t, result.Progress.TodayAchieved)
	assert.Equal(t, 1, notifier.count())

	// Still achieved on the next mutation: no duplicate notification.
	_, err = svc.AddGoal(ctx, "user_1", &GoalRequest{
		Kind:     exercise.KindYoga,
		Quantity: "10",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.count())
}

func TestStreakMilestoneNotified(t *testing.T) {
	svc, clk := newTestGoalService()
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	ctx := context.Background()

	// Day one: a 10 km run clears the 500 kcal target. Streak of one, no
	// milestone yet.
	added, err := svc.AddGoal(ctx, "user_1", &GoalRequest{
		Kind:     exercise.KindRunning,
		Quantity: "10",
	})
	require.NoError(t, err)
	_, err = svc.ToggleGoal(ctx, "user_1", added.Goals[0].ID)
	require.NoError(t, err)
	assert.Empty(t, notifier.streakCalls())

	// The run stays checked, so the first mutation of each new day re-achieves
	// the target. Day two extends the streak to two: still no milestone.
	clk.advanceDays(1)
	_, err = svc.AddGoal(ctx, "user_1", &GoalRequest{
		Kind:     exercise.KindYoga,
		Quantity: "1",
	})
	require.NoError(t, err)
	assert.Empty(t, notifier.streakCalls())

	// Day three hits the first milestone.
	clk.advanceDays(1)
	_, err = svc.AddGoal(ctx, "user_1", &GoalRequest{
		Kind:     exercise.KindYoga,
		Quantity: "1",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, notifier.streakCalls())
}

func TestPointsSyncedAfterMutation(t *testing.T) {
	svc, _ := newTestGoalService()
	syncer := &recordingSyncer{synced: make(chan int, 8)}
	svc.SetPointsSyncer(syncer)
	ctx := context.Background()

	added, err := svc.AddGoal(ctx, "user_1", &GoalRequest{
		Kind:     exercise.KindRunning,
		Quantity: "3",
	})
	require.NoError(t, err)
	<-syncer.synced

	result, err := svc.ToggleGoal(ctx, "user_1", added.Goals[0].ID)
	require.NoError(t, err)

	select {
	case total := <-syncer.synced:
		assert.Equal(t, result.Progress.TotalPoints, total)
	case <-time.After(2 * time.Second):
		t.Fatal("points were never synced")
	}
}

func TestDayRolloverFoldsPoints(t *testing.T) {
	svc, clk := newTestGoalService()
	ctx := context.Background()

	added, err := svc.AddGoal(ctx, "user_1", &GoalRequest{
		Kind:     exercise.KindRunning,
		Quantity: "10", // 600 kcal, achieved
	})
	require.NoError(t, err)
	result, err := svc.ToggleGoal(ctx, "user_1", added.Goals[0].ID)
	require.NoError(t, err)
	dayPoints := result.Progress.DailyPoints
	require.Greater(t, dayPoints, 0)

	clk.advanceDays(1)

	// First access of the new day: yesterday's points are historical now and
	// the goal re-scores against the fresh day.
	result, err = svc.ListGoals(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, dayPoints, result.Progress.HistoricalPoints)
	assert.Equal(t, "20240311", result.Progress.Date)
}

func TestUsersAreIsolated(t *testing.T) {
	svc, _ := newTestGoalService()
	ctx := context.Background()

	_, err := svc.AddGoal(ctx, "user_1", &GoalRequest{
		Kind:     exercise.KindRunning,
		Quantity: "3",
	})
	require.NoError(t, err)

	other, err := svc.ListGoals(ctx, "user_2")
	require.NoError(t, err)
	assert.Empty(t, other.Goals)
}

func TestSessionManagerReturnsSameSession(t *testing.T) {
	clk := &fakeClock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	sessions := NewSessionManager(
		func(string) prefs.Store { return prefs.NewMemoryStore() },
		clk,
		nil,
	)

	first := sessions.Session("user_1")
	second := sessions.Session("user_1")
	assert.Same(t, first, second)
	assert.NotSame(t, first, sessions.Session("user_2"))
}

var _ clock.Clock = (*fakeClock)(nil)
