package progress

import (
	"context"
	"testing"
	"time"

	"fitQuestAPI/internal/clock"
	"fitQuestAPI/internal/exercise"
	"fitQuestAPI/internal/prefs"
	"fitQuestAPI/internal/types/goal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests cross day boundaries at will.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advanceDays(n int) { c.now = c.now.AddDate(0, 0, n) }

func newTestTracker() (*Tracker, *prefs.MemoryStore, *fakeClock) {
	store := prefs.NewMemoryStore()
	clk := &fakeClock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	return NewTracker(store, clk), store, clk
}

func TestSnapshotFirstUse(t *testing.T) {
	tracker, store, clk := newTestTracker()
	ctx := context.Background()

	snap, err := tracker.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, snap.DailyPoints)
	assert.Equal(t, 0, snap.HistoricalPoints)
	assert.Equal(t, 0, snap.TotalPoints)
	assert.Equal(t, DefaultCalorieTarget, snap.CalorieTarget)
	assert.False(t, snap.TodayAchieved)
	assert.Equal(t, "20240310", snap.Date)

	// First access pins the active date without folding anything.
	assert.Equal(t, clock.DayKey(clk.now), store.GetString(ctx, keyLastActiveDate, ""))
}

func TestRolloverFoldsDailyIntoHistorical(t *testing.T) {
	tracker, store, clk := newTestTracker()
	ctx := context.Background()

	_, err := tracker.Snapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, store.PutInt(ctx, keyDailyPoints, 40))
	require.NoError(t, store.PutFloat(ctx, keyDailyCalories, 520))
	require.NoError(t, store.PutInt(ctx, keyHistoricalPoints, 100))

	clk.advanceDays(1)

	snap, err := tracker.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, snap.DailyPoints)
	assert.Equal(t, 0.0, snap.DailyCalories)
	assert.Equal(t, 140, snap.HistoricalPoints)
	assert.Equal(t, 140, snap.TotalPoints)
	assert.Equal(t, "20240311", snap.Date)

	// Yesterday beat the 500 kcal target, so the ledger records it achieved.
	history, err := tracker.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, DayOutcome{Date: "20240310", Achieved: true}, history[0])
	assert.Equal(t, DayOutcome{Date: "20240311", Achieved: false, IsToday: true}, history[1])
}

func TestRolloverRecordsMissedDay(t *testing.T) {
	tracker, store, clk := newTestTracker()
	ctx := context.Background()

	_, err := tracker.Snapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, store.PutFloat(ctx, keyDailyCalories, 200)) // under target

	clk.advanceDays(1)

	history, err := tracker.History(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, DayOutcome{Date: "20240310", Achieved: false}, history[0])
}

func TestRolloverIdempotent(t *testing.T) {
	tracker, store, clk := newTestTracker()
	ctx := context.Background()

	_, err := tracker.Snapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, store.PutInt(ctx, keyDailyPoints, 40))
	require.NoError(t, store.PutInt(ctx, keyHistoricalPoints, 100))

	clk.advanceDays(1)

	for i := 0; i < 3; i++ {
		snap, err := tracker.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, 140, snap.HistoricalPoints, "fold must happen exactly once")
		assert.Equal(t, 0, snap.DailyPoints)
	}
}

func TestRolloverBackfillsSkippedDays(t *testing.T) {
	tracker, store, clk := newTestTracker()
	ctx := context.Background()

	_, err := tracker.Snapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, store.PutFloat(ctx, keyDailyCalories, 600))

	// Four days pass without the app being opened.
	clk.advanceDays(4)

	history, err := tracker.History(ctx, 5)
	require.NoError(t, err)
	require.Len(t, history, 5)

	assert.Equal(t, DayOutcome{Date: "20240310", Achieved: true}, history[0])
	assert.Equal(t, DayOutcome{Date: "20240311", Achieved: false}, history[1])
	assert.Equal(t, DayOutcome{Date: "20240312", Achieved: false}, history[2])
	assert.Equal(t, DayOutcome{Date: "20240313", Achieved: false}, history[3])
	assert.True(t, history[4].IsToday)
}

func TestRecomputeScoresToday(t *testing.T) {
	tracker, _, _ := newTestTracker()
	ctx := context.Background()

	goals := []goal.Goal{
		{Kind: exercise.KindRunning, Quantity: 3, Completed: true}, // 180 kcal
	}

	snap, err := tracker.Recompute(ctx, goals)
	require.NoError(t, err)

	assert.Equal(t, 28, snap.DailyPoints)
	assert.InDelta(t, 180.0, snap.DailyCalories, 1e-9)
	assert.False(t, snap.TodayAchieved)

	// Unchecking the goal drops today back to zero.
	goals[0].Completed = false
	snap, err = tracker.Recompute(ctx, goals)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.DailyPoints)
	assert.Equal(t, 0.0, snap.DailyCalories)
}

func TestSetCalorieTarget(t *testing.T) {
	tracker, _, _ := newTestTracker()
	ctx := context.Background()

	require.NoError(t, tracker.SetCalorieTarget(ctx, 300))

	goals := []goal.Goal{
		{Kind: exercise.KindRunning, Quantity: 3, Completed: true}, // 180 kcal, 60%
	}
	snap, err := tracker.Recompute(ctx, goals)
	require.NoError(t, err)
	assert.Equal(t, 300, snap.CalorieTarget)
	assert.Equal(t, 18+40, snap.DailyPoints)

	assert.Error(t, tracker.SetCalorieTarget(ctx, 0))
	assert.Error(t, tracker.SetCalorieTarget(ctx, -100))
}

func TestAwardPoints(t *testing.T) {
	tracker, _, _ := newTestTracker()
	ctx := context.Background()

	require.NoError(t, tracker.AwardPoints(ctx, 50))
	require.NoError(t, tracker.AwardPoints(ctx, 25))

	snap, err := tracker.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 75, snap.HistoricalPoints)

	assert.Error(t, tracker.AwardPoints(ctx, 0))
	assert.Error(t, tracker.AwardPoints(ctx, -10))
}

func TestHistoryAbsentDatesNotAchieved(t *testing.T) {
	tracker, _, _ := newTestTracker()
	ctx := context.Background()

	history, err := tracker.History(ctx, 7)
	require.NoError(t, err)
	require.Len(t, history, 7)

	for _, day := range history[:6] {
		assert.False(t, day.Achieved)
		assert.False(t, day.IsToday)
	}
	assert.True(t, history[6].IsToday)
	assert.Equal(t, "20240310", history[6].Date)
	assert.Equal(t, "20240304", history[0].Date)
}

func TestCurrentStreak(t *testing.T) {
	tracker, store, _ := newTestTracker()
	ctx := context.Background()

	_, err := tracker.Snapshot(ctx)
	require.NoError(t, err)

	// Nothing achieved anywhere.
	streak, err := tracker.CurrentStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, streak)

	// Two achieved days in the ledger, then a gap further back.
	require.NoError(t, tracker.RecordOutcome(ctx, "20240309", true))
	require.NoError(t, tracker.RecordOutcome(ctx, "20240308", true))
	require.NoError(t, tracker.RecordOutcome(ctx, "20240307", false))
	require.NoError(t, tracker.RecordOutcome(ctx, "20240306", true))

	// Today still pending: the run ending yesterday is the current streak.
	streak, err = tracker.CurrentStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)

	// Achieving today extends it to three.
	require.NoError(t, store.PutFloat(ctx, keyDailyCalories, 520))
	streak, err = tracker.CurrentStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}

func TestRecordOutcome(t *testing.T) {
	tracker, _, _ := newTestTracker()
	ctx := context.Background()

	require.NoError(t, tracker.RecordOutcome(ctx, "20240308", true))
	assert.Error(t, tracker.RecordOutcome(ctx, "not-a-date", true))

	history, err := tracker.History(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, DayOutcome{Date: "20240308", Achieved: true}, history[0])
}

func TestCorruptHistoryStartsEmpty(t *testing.T) {
	tracker, store, _ := newTestTracker()
	ctx := context.Background()

	require.NoError(t, store.PutString(ctx, keyGoalHistory, "{not json"))

	history, err := tracker.History(ctx, 3)
	require.NoError(t, err)
	for _, day := range history[:2] {
		assert.False(t, day.Achieved)
	}
}

func TestCorruptLastActiveDateResets(t *testing.T) {
	tracker, store, clk := newTestTracker()
	ctx := context.Background()

	require.NoError(t, store.PutString(ctx, keyLastActiveDate, "garbage"))
	require.NoError(t, store.PutInt(ctx, keyDailyPoints, 40))

	snap, err := tracker.Snapshot(ctx)
	require.NoError(t, err)

	// Recovery keeps today's accumulator instead of guessing at a fold.
	assert.Equal(t, 40, snap.DailyPoints)
	assert.Equal(t, clock.DayKey(clk.now), store.GetString(ctx, keyLastActiveDate, ""))
}
