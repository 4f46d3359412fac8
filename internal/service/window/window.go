// Package window converts an instant into the time boundaries the engine
// works with. Everything here is pure; callers inject now.
package window

import "time"

const (
	Day = 24 * time.Hour

	TwoDayThreshold  = 2
	FiveDayThreshold = 5

	DueSoon = 5 * time.Minute
)

// Thresholds holds the inactivity boundaries for one pass.
// TwoDay and FiveDay are raw (not floored) so an entity is caught as soon
// as it crosses them. DayStart keys the once-per-day rule.
type Thresholds struct {
	Now      time.Time
	TwoDay   time.Time
	FiveDay  time.Time
	DayStart time.Time
}

func NewThresholds(now time.Time, loc *time.Location) Thresholds {
	return Thresholds{
		Now:      now,
		TwoDay:   InactiveSince(now, TwoDayThreshold),
		FiveDay:  InactiveSince(now, FiveDayThreshold),
		DayStart: StartOfDay(now, loc),
	}
}

// For returns the raw threshold for a day count. Only 2 and 5 are defined.
func (t Thresholds) For(days int) (time.Time, bool) {
	switch days {
	case TwoDayThreshold:
		return t.TwoDay, true
	case FiveDayThreshold:
		return t.FiveDay, true
	}
	return time.Time{}, false
}

// InactiveSince returns now - days*86400s.
func InactiveSince(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * Day)
}

// StartOfDay floors t to midnight of its calendar day in loc.
// A nil loc means UTC.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// Range is a closed interval [Start, End].
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// DueSoonWindow is [now, now+5m].
func DueSoonWindow(now time.Time) Range {
	return Range{Start: now, End: now.Add(DueSoon)}
}

// MinutesUntil rounds the remaining time up to whole minutes, never below zero.
func MinutesUntil(now, due time.Time) int {
	d := due.Sub(now)
	if d <= 0 {
		return 0
	}
	mins := int(d / time.Minute)
	if d%time.Minute != 0 {
		mins++
	}
	return mins
}
