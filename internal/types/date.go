package types

import "time"

// StartOfDay truncates t to midnight UTC
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last representable instant of t's day in UTC
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// DayBounds returns the [start, end] window covering the whole calendar day of t
func DayBounds(t time.Time) (time.Time, time.Time) {
	return StartOfDay(t), EndOfDay(t)
}

// WholeDaysBetween returns the number of whole calendar days from a to b.
// Both times are normalized to midnight UTC first, so intra-day offsets never
// leak into the count. Negative when b is before a.
func WholeDaysBetween(a, b time.Time) int {
	a = StartOfDay(a)
	b = StartOfDay(b)
	return int(b.Sub(a).Hours() / 24)
}
