package reminder

import (
	"fmt"
	"time"

	"crm-engagement/internal/domain"
)

// NextOccurrence steps t forward by one unit of pattern in loc's calendar.
// Monthly and yearly steps keep the day of month, clamped to the last day
// of the target month (Jan 31 -> Feb 29/28, Feb 29 -> Feb 28 next year).
func NextOccurrence(t time.Time, pattern domain.RecurrencePattern, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)

	switch pattern {
	case domain.RecurDaily:
		return lt.AddDate(0, 0, 1), nil
	case domain.RecurWeekly:
		return lt.AddDate(0, 0, 7), nil
	case domain.RecurMonthly:
		return addMonthsClamped(lt, 1), nil
	case domain.RecurYearly:
		return addMonthsClamped(lt, 12), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRecurrence, pattern)
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	firstOfTarget := time.Date(year, month+time.Month(months), 1, hour, min, sec, t.Nanosecond(), t.Location())
	if last := daysIn(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
