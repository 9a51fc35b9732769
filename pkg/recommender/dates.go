package recommender

import "time"

// addMonths moves t forward by n calendar months. The day is clamped to the
// last day of the target month, so Jan 31 + 1 month is Feb 28 (or 29).
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())

	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// monthsBetween counts whole calendar months from earlier to later. A month
// only counts once its anniversary has been reached.
func monthsBetween(later, earlier time.Time) int {
	later = later.In(earlier.Location())
	if later.Before(earlier) {
		return -monthsBetween(earlier, later)
	}

	months := (later.Year()-earlier.Year())*12 + int(later.Month()-earlier.Month())
	if months > 0 && addMonths(earlier, months).After(later) {
		months--
	}
	return months
}
