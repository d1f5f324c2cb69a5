package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	"festivalbot/internal/caldate"
	appLog "festivalbot/internal/log"
	"festivalbot/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 500
)

// ExpandConfig controls how recurring events are turned into dated records.
type ExpandConfig struct {
	// RangeStart / RangeEnd are the inclusive calendar days within which
	// RRULE occurrences are materialized. Non-recurring events are always
	// kept, whatever their date.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent is a safety cap to avoid extremely large
	// expansions. If zero, defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the produced records and the UIDs whose expansion was
// cut short.
type ExpandResult struct {
	Records         []model.Record
	TruncatedEvents []string
}

// ToRecords turns parsed events into festival records, one per occurrence.
//
//   - Single events become one record on their start day.
//   - RRULE events are expanded within the configured range (EXDATE
//     honored); each occurrence becomes its own literal record.
//   - RECURRENCE-ID overrides replace the matching occurrence.
//
// Records come out in the order their events appear in the payload.
func ToRecords(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	overridesByUID := make(map[string][]ParsedEvent)
	hasBase := make(map[string]bool)
	for _, ev := range events {
		if ev.IsOverride && ev.UID != "" {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		} else {
			hasBase[ev.UID] = true
		}
	}

	for _, ev := range events {
		if ev.IsOverride && ev.UID != "" {
			// Orphaned overrides stand on their own.
			if !hasBase[ev.UID] {
				result.Records = append(result.Records, toRecord(ev, ev.Start))
			}
			continue
		}

		if ev.RawRRule == "" {
			if o, ok := findOverrideForStart(overridesByUID[ev.UID], ev.Start); ok {
				result.Records = append(result.Records, toRecord(o, o.Start))
				continue
			}
			result.Records = append(result.Records, toRecord(ev, ev.Start))
			continue
		}

		recs, hitCap := expandRecurringEvent(ev, overridesByUID[ev.UID], cfg)
		result.Records = append(result.Records, recs...)
		if hitCap {
			result.TruncatedEvents = append(result.TruncatedEvents, ev.UID)
			appLog.Warn("expand: truncated occurrences due to cap",
				"uid", ev.UID,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	return result, nil
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Record, bool) {
	out := make([]model.Record, 0)

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(alignExDate(ex, ev))
	}

	// Whole calendar days in the event's own location.
	loc := ev.Start.Location()
	from := time.Date(cfg.RangeStart.Year(), cfg.RangeStart.Month(), cfg.RangeStart.Day(), 0, 0, 0, 0, loc)
	to := time.Date(cfg.RangeEnd.Year(), cfg.RangeEnd.Month(), cfg.RangeEnd.Day(), 23, 59, 59, 0, loc)

	occTimes := set.Between(from, to, true)

	hitCap := false
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	for _, occStart := range occTimes {
		if o, ok := findOverrideForStart(overrides, occStart); ok {
			out = append(out, toRecord(o, o.Start))
			continue
		}
		out = append(out, toRecord(ev, occStart))
	}
	return out, hitCap
}

// alignExDate moves an all-day EXDATE onto the clock time of a timed
// series, so EXDATE;VALUE=DATE removes the occurrence on that day.
func alignExDate(ex time.Time, ev ParsedEvent) time.Time {
	if ev.AllDay || ex.Hour() != 0 || ex.Minute() != 0 || ex.Second() != 0 {
		return ex.In(ev.Start.Location())
	}
	s := ev.Start
	return time.Date(ex.Year(), ex.Month(), ex.Day(), s.Hour(), s.Minute(), s.Second(), 0, s.Location())
}

// findOverrideForStart finds an override whose RECURRENCE-ID falls on the
// same calendar day as start.
func findOverrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence == nil {
			continue
		}
		rid := ov.Recurrence.In(start.Location())
		if sameDay(rid, start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func toRecord(ev ParsedEvent, start time.Time) model.Record {
	return model.Record{
		Name:  ev.Summary,
		Date:  caldate.Format(caldate.Today(start)),
		Notes: ev.Description,
	}
}
