// Package caldate handles plain calendar dates in the fixed YYYY-MM-DD form.
//
// Dates are represented as time.Time values at midnight UTC. There is no
// timezone handling: "today" is taken from the wall clock's calendar day and
// normalized the same way, so day arithmetic is exact.
package caldate

import (
	"time"
)

// Layout is the canonical textual date format.
const Layout = "2006-01-02"

// Parse accepts exactly YYYY-MM-DD (zero-padded, hyphen-separated) naming a
// real calendar day. Any other input reports ok == false.
func Parse(text string) (time.Time, bool) {
	if len(text) != len(Layout) {
		return time.Time{}, false
	}
	t, err := time.Parse(Layout, text)
	if err != nil || t.Year() < 1 {
		return time.Time{}, false
	}
	return t, true
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Valid reports whether text parses.
func Valid(text string) bool {
	_, ok := Parse(text)
	return ok
}

// Today returns the calendar day of now (in now's own location) as a
// midnight-UTC date comparable with Parse results.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DaysBetween returns to - from in whole days. Both must be dates as
// returned by Parse or Today. Unix seconds are used because a Duration
// cannot span more than about 292 years.
func DaysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60
