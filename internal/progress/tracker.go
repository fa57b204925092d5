// Package progress owns the daily accumulator, the day-boundary rollover and
// the per-date achievement ledger.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"fitQuestAPI/internal/clock"
	"fitQuestAPI/internal/prefs"
	"fitQuestAPI/internal/scoring"
	"fitQuestAPI/internal/types/goal"

	log "github.com/sirupsen/logrus"
)

const (
	keyDailyPoints      = "daily_points"
	keyDailyCalories    = "daily_calories"
	keyHistoricalPoints = "historical_points"
	keyLastActiveDate   = "last_active_date"
	keyCalorieTarget    = "daily_calorie_target"
	keyGoalHistory      = "goal_history"
)

// DefaultCalorieTarget is the daily kilocalorie goal until the user changes it.
const DefaultCalorieTarget = 500

// Snapshot is the accumulator state after rollover has been applied.
type Snapshot struct {
	DailyPoints      int     `json:"daily_points"`
	DailyCalories    float64 `json:"daily_calories"`
	HistoricalPoints int     `json:"historical_points"`
	TotalPoints      int     `json:"total_points"`
	CalorieTarget    int     `json:"calorie_target"`
	TodayAchieved    bool    `json:"today_achieved"`
	Date             string  `json:"date"`
}

// DayOutcome is one entry of the achievement history. For past dates the
// stored ledger is authoritative; for today the outcome is derived live.
type DayOutcome struct {
	Date     string `json:"date"`
	Achieved bool   `json:"achieved"`
	IsToday  bool   `json:"is_today"`
}

// Tracker maintains one user's accumulator and ledger on top of a prefs.Store.
// All operations first converge the state onto the current date, so callers
// never observe stale "today" data. A single mutex preserves the at-most-one
// local writer assumption.
type Tracker struct {
	mu    sync.Mutex
	store prefs.Store
	clock clock.Clock
}

func NewTracker(store prefs.Store, clk clock.Clock) *Tracker {
	return &Tracker{store: store, clock: clk}
}

// rollover converges stored state onto today's date. Lazy, idempotent: the
// first call after a day boundary folds daily points into historical points,
// records the previous date's outcome, backfills skipped dates as not
// achieved, and zeroes the daily accumulators. Later calls on the same day see
// lastActive == today and do nothing. All writes go through PutAll so a
// failure leaves the old state intact and the next call retries cleanly.
func (t *Tracker) rollover(ctx context.Context) error {
	today := clock.DayKey(t.clock.Now())
	lastActive := t.store.GetString(ctx, keyLastActiveDate, "")

	if lastActive == today {
		return nil
	}
	if lastActive == "" {
		// First use, nothing to fold.
		return t.store.PutString(ctx, keyLastActiveDate, today)
	}

	lastDate, err := clock.ParseDayKey(lastActive)
	if err != nil {
		log.Printf("progress: corrupt last active date %q, resetting to today", lastActive)
		return t.store.PutString(ctx, keyLastActiveDate, today)
	}

	dailyPoints := t.store.GetInt(ctx, keyDailyPoints, 0)
	dailyCalories := t.store.GetFloat(ctx, keyDailyCalories, 0)
	historical := t.store.GetInt(ctx, keyHistoricalPoints, 0)
	target := t.store.GetInt(ctx, keyCalorieTarget, DefaultCalorieTarget)
	history := t.loadHistory(ctx)

	// The day that actually accumulated the data gets its outcome; every
	// skipped day in between is recorded as not achieved.
	history[lastActive] = dailyCalories >= float64(target)
	for d := lastDate.AddDate(0, 0, 1); clock.DayKey(d) != today && d.Before(t.clock.Now()); d = d.AddDate(0, 0, 1) {
		history[clock.DayKey(d)] = false
	}

	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to serialize goal history: %w", err)
	}

	return t.store.PutAll(ctx, map[string]string{
		keyHistoricalPoints: prefs.FormatInt(historical + dailyPoints),
		keyDailyPoints:      prefs.FormatInt(0),
		keyDailyCalories:    prefs.FormatFloat(0),
		keyGoalHistory:      string(historyJSON),
		keyLastActiveDate:   today,
	})
}

func (t *Tracker) loadHistory(ctx context.Context) map[string]bool {
	history := make(map[string]bool)
	raw := t.store.GetString(ctx, keyGoalHistory, "")
	if raw == "" {
		return history
	}
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		log.Printf("progress: corrupt goal history, starting empty: %v", err)
		return make(map[string]bool)
	}
	return history
}

// Snapshot rolls over if needed and returns the current accumulator state.
func (t *Tracker) Snapshot(ctx context.Context) (*Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.rollover(ctx); err != nil {
		return nil, err
	}
	return t.snapshotLocked(ctx), nil
}

func (t *Tracker) snapshotLocked(ctx context.Context) *Snapshot {
	daily := t.store.GetInt(ctx, keyDailyPoints, 0)
	historical := t.store.GetInt(ctx, keyHistoricalPoints, 0)
	calories := t.store.GetFloat(ctx, keyDailyCalories, 0)
	target := t.store.GetInt(ctx, keyCalorieTarget, DefaultCalorieTarget)
	return &Snapshot{
		DailyPoints:      daily,
		DailyCalories:    calories,
		HistoricalPoints: historical,
		TotalPoints:      historical + daily,
		CalorieTarget:    target,
		TodayAchieved:    calories >= float64(target),
		Date:             clock.DayKey(t.clock.Now()),
	}
}

// Recompute re-derives today's points and calories from the goal set. Called
// after every goal mutation and after a target change.
func (t *Tracker) Recompute(ctx context.Context, goals []goal.Goal) (*Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.rollover(ctx); err != nil {
		return nil, err
	}

	target := t.store.GetInt(ctx, keyCalorieTarget, DefaultCalorieTarget)
	err := t.store.PutAll(ctx, map[string]string{
		keyDailyPoints:   prefs.FormatInt(scoring.Score(goals, target)),
		keyDailyCalories: prefs.FormatFloat(scoring.CompletedCalories(goals)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store daily score: %w", err)
	}
	return t.snapshotLocked(ctx), nil
}

// SetCalorieTarget updates the daily target. The caller is expected to
// Recompute right after so the score reflects the new denominator.
func (t *Tracker) SetCalorieTarget(ctx context.Context, target int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.rollover(ctx); err != nil {
		return err
	}
	if target <= 0 {
		return fmt.Errorf("calorie target must be positive, got %d", target)
	}
	return t.store.PutInt(ctx, keyCalorieTarget, target)
}

// AwardPoints adds bonus points directly to the historical total.
func (t *Tracker) AwardPoints(ctx context.Context, points int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.rollover(ctx); err != nil {
		return err
	}
	if points <= 0 {
		return fmt.Errorf("award must be positive, got %d", points)
	}
	historical := t.store.GetInt(ctx, keyHistoricalPoints, 0)
	return t.store.PutInt(ctx, keyHistoricalPoints, historical+points)
}

// History returns the outcomes of the last `days` calendar days, oldest first,
// today always last. Today's outcome is derived live from the accumulator;
// past dates come from the ledger, absent entries reading as not achieved.
func (t *Tracker) History(ctx context.Context, days int) ([]DayOutcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.rollover(ctx); err != nil {
		return nil, err
	}

	if days <= 0 {
		days = 7
	}
	now := t.clock.Now()
	today := clock.DayKey(now)
	ledger := t.loadHistory(ctx)

	calories := t.store.GetFloat(ctx, keyDailyCalories, 0)
	target := t.store.GetInt(ctx, keyCalorieTarget, DefaultCalorieTarget)

	out := make([]DayOutcome, 0, days)
	for offset := days - 1; offset >= 0; offset-- {
		key := clock.DayKey(now.AddDate(0, 0, -offset))
		if key == today {
			out = append(out, DayOutcome{
				Date:     key,
				Achieved: calories >= float64(target),
				IsToday:  true,
			})
			continue
		}
		out = append(out, DayOutcome{Date: key, Achieved: ledger[key]})
	}
	return out, nil
}

// CurrentStreak returns how many consecutive days the calorie goal has been
// met, counting back from today. Today contributes only once it is achieved;
// an unfinished today does not break the run ending yesterday.
func (t *Tracker) CurrentStreak(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.rollover(ctx); err != nil {
		return 0, err
	}

	now := t.clock.Now()
	calories := t.store.GetFloat(ctx, keyDailyCalories, 0)
	target := t.store.GetInt(ctx, keyCalorieTarget, DefaultCalorieTarget)
	ledger := t.loadHistory(ctx)

	streak := 0
	if calories >= float64(target) {
		streak = 1
	}
	for offset := 1; ledger[clock.DayKey(now.AddDate(0, 0, -offset))]; offset++ {
		streak++
	}
	return streak, nil
}

// RecordOutcome writes an outcome for an arbitrary date into the ledger.
// Append/overwrite only; exists for the sync collaborator to import remote
// history.
func (t *Tracker) RecordOutcome(ctx context.Context, date string, achieved bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := clock.ParseDayKey(date); err != nil {
		return fmt.Errorf("invalid ledger date %q: %w", date, err)
	}
	history := t.loadHistory(ctx)
	history[date] = achieved
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to serialize goal history: %w", err)
	}
	return t.store.PutString(ctx, keyGoalHistory, string(historyJSON))
}
