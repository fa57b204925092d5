package clock

import "time"

// DayKeyFormat is the calendar-date key used to bucket daily data.
const DayKeyFormat = "20060102"

// Clock provides the current time in the user's local timezone. Injected so
// day-boundary behavior is testable without waiting for midnight.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

func NewSystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return &systemClock{loc: loc}
}

func (c *systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// DayKey formats t as a yyyyMMdd calendar-date key.
func DayKey(t time.Time) string {
	return t.Format(DayKeyFormat)
}

// ParseDayKey parses a yyyyMMdd key back into a date at midnight UTC.
func ParseDayKey(key string) (time.Time, error) {
	return time.Parse(DayKeyFormat, key)
}
