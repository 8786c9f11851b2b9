// Package dates normalizes instants to server-local calendar days.
//
// The whole tracking core keys on calendar days: the lazy daily reset,
// the one-log-per-day rule and the streak evaluation must all agree on
// where a day starts. Everything that needs a day boundary goes through
// this package.
package dates

import "time"

// Day is the length of one calendar day. Day transitions are treated as
// exact 24-hour periods in the server's local time.
const Day = 24 * time.Hour

// StartOfDay returns the midnight that starts t's calendar day, in t's
// location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// IsNextDay reports whether next falls exactly one calendar day after prev.
func IsNextDay(prev, next time.Time) bool {
	return StartOfDay(next).Sub(StartOfDay(prev)) == Day
}

// Before reports whether a's calendar day is strictly before b's.
func Before(a, b time.Time) bool {
	return StartOfDay(a).Before(StartOfDay(b))
}

// DaysAgo returns the start of the day n days before ref's day.
func DaysAgo(ref time.Time, n int) time.Time {
	return StartOfDay(ref).Add(-time.Duration(n) * Day)
}
