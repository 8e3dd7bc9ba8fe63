package planning

import "time"

// weekDateLayout is the wire format for week start dates.
const weekDateLayout = "2006-01-02"

// WeekStartOf returns the Monday of the week containing t, truncated to
// midnight UTC. Allocations are keyed by this date.
func WeekStartOf(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	monday := t.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekKey formats a time as the canonical week-start string used in keys.
func WeekKey(t time.Time) string {
	return t.UTC().Format(weekDateLayout)
}

// ParseWeekKey parses a canonical week-start string.
func ParseWeekKey(s string) (time.Time, error) {
	return time.ParseInLocation(weekDateLayout, s, time.UTC)
}

// IsWeekStart reports whether t falls on a Monday.
func IsWeekStart(t time.Time) bool {
	return t.UTC().Weekday() == time.Monday
}

// WeeksBetween lists the Mondays from the week containing from up to and
// including the week containing to. Returns nil when to precedes from.
func WeeksBetween(from, to time.Time) []time.Time {
	start := WeekStartOf(from)
	end := WeekStartOf(to)
	if end.Before(start) {
		return nil
	}
	var weeks []time.Time
	for w := start; !w.After(end); w = w.AddDate(0, 0, 7) {
		weeks = append(weeks, w)
	}
	return weeks
}
