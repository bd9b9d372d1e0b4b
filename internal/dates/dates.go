// Package dates holds civil-day helpers shared by the expansion engine.
// All day arithmetic happens in the Location carried by the input time;
// nothing here shifts instants to UTC.
package dates

import "time"

// DayKeyLayout is the canonical ISO representation of a calendar day.
const DayKeyLayout = "2006-01-02"

// StartOfDay truncates t to midnight of its own civil day, keeping the
// Location untouched.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayKey returns the canonical ISO day string for t's civil day.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// SameDay reports whether a and b fall on the same civil day, each in its
// own Location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AfterDay reports whether a's civil day is strictly after b's.
func AfterDay(a, b time.Time) bool {
	return StartOfDay(a).After(StartOfDay(b))
}

// DaysIn returns the number of days in the month containing t.
func DaysIn(year int, month time.Month, loc *time.Location) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// NextMonthClamped steps t one month forward, landing on anchorDay when the
// target month has it and on the month's last day otherwise. The anchor is
// passed separately so a series starting on the 31st returns to the 31st
// after passing through shorter months.
func NextMonthClamped(t time.Time, anchorDay int) time.Time {
	year, month := t.Year(), t.Month()
	month++
	if month > time.December {
		month = time.January
		year++
	}
	day := anchorDay
	if last := DaysIn(year, month, t.Location()); day > last {
		day = last
	}
	return time.Date(year, month, day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
