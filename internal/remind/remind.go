package remind

import (
	"fmt"
	"sort"
	"time"

	"festivalbot/internal/caldate"
	"festivalbot/internal/model"
	"festivalbot/internal/notify"
)

// WeekDays is the reach of the "this week" bucket, counted from tomorrow.
const WeekDays = 7

// Entry is a record whose date parsed, with its distance from today.
type Entry struct {
	Record   model.Record
	Date     time.Time
	DaysLeft int
}

// Buckets splits reminders by urgency. A record is in at most one bucket.
type Buckets struct {
	Today []Entry
	Week  []Entry
}

// SortedOrder returns the indexes of records in display order: ascending by
// stored date, ties kept in storage order. Records whose date does not parse
// come after all valid dates, also in storage order.
func SortedOrder(records []model.Record) []int {
	type key struct {
		idx   int
		date  time.Time
		valid bool
	}
	keys := make([]key, len(records))
	for i, r := range records {
		d, ok := caldate.Parse(r.Date)
		keys[i] = key{idx: i, date: d, valid: ok}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.valid != b.valid {
			return a.valid
		}
		if !a.valid {
			return false
		}
		return a.date.Before(b.date)
	})

	order := make([]int, len(keys))
	for i, k := range keys {
		order[i] = k.idx
	}
	return order
}

// SortByDate returns a sorted copy of records; see SortedOrder.
func SortByDate(records []model.Record) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, i := range SortedOrder(records) {
		out = append(out, records[i])
	}
	return out
}

// Upcoming returns the records dated within [today, today+days], inclusive
// on both ends, in ascending date order. Records with unparsable dates are
// left out. Dates are taken literally: a festival that already passed this
// year is not carried over to the next.
func Upcoming(records []model.Record, today time.Time, days int) []Entry {
	if days < 0 {
		return nil
	}
	return collect(records, today, func(delta int) bool {
		return delta >= 0 && delta <= days
	})
}

// TodayAndWeek buckets records dated today and within the next WeekDays
// days, and sends one notification per bucketed record through n.
func TodayAndWeek(records []model.Record, today time.Time, n notify.Notifier) Buckets {
	if n == nil {
		n = notify.Nop{}
	}

	var b Buckets
	for _, e := range collect(records, today, func(delta int) bool {
		return delta >= 0 && delta <= WeekDays
	}) {
		if e.DaysLeft == 0 {
			b.Today = append(b.Today, e)
		} else {
			b.Week = append(b.Week, e)
		}
	}

	for _, e := range b.Today {
		send(n, TodayTitle(e), e)
	}
	for _, e := range b.Week {
		send(n, WeekTitle(e), e)
	}
	return b
}

// TodayTitle is the notification title for a festival happening today.
func TodayTitle(e Entry) string {
	return e.Record.Name + " is today!"
}

// WeekTitle is the notification title for a festival later this week.
func WeekTitle(e Entry) string {
	return fmt.Sprintf("Upcoming: %s in %s", e.Record.Name, DaysText(e.DaysLeft))
}

// DaysText renders "1 day" or "n days".
func DaysText(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func send(n notify.Notifier, title string, e Entry) {
	message := e.Record.Notes
	if message == "" {
		message = title
	}
	n.Notify(title, message)
}

func collect(records []model.Record, today time.Time, keep func(delta int) bool) []Entry {
	var out []Entry
	for _, r := range records {
		d, ok := caldate.Parse(r.Date)
		if !ok {
			continue
		}
		delta := caldate.DaysBetween(today, d)
		if !keep(delta) {
			continue
		}
		out = append(out, Entry{Record: r, Date: d, DaysLeft: delta})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
