package ics

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"festivalbot/internal/atomicfile"
	"festivalbot/internal/caldate"
	appLog "festivalbot/internal/log"
	"festivalbot/internal/model"
)

const productID = "-//festivalbot//Festival Reminder Bot//EN"

// Encode renders records as an iCalendar feed of all-day events. Records
// whose date does not parse are skipped.
func Encode(records []model.Record, now time.Time) []byte {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	skipped := 0
	for _, r := range records {
		d, ok := caldate.Parse(r.Date)
		if !ok {
			skipped++
			continue
		}
		ev := cal.AddEvent(eventUID(r))
		ev.SetDtStampTime(now.UTC())
		ev.SetSummary(r.Name)
		if r.Notes != "" {
			ev.SetDescription(r.Notes)
		}
		ev.SetAllDayStartAt(d)
		ev.SetAllDayEndAt(caldate.AddDays(d, 1))
	}
	if skipped > 0 {
		appLog.Warn("ics: skipped records with invalid dates", "skipped", skipped)
	}

	return []byte(cal.Serialize())
}

// Export writes Encode's output to path.
func Export(records []model.Record, path string, now time.Time) error {
	return atomicfile.WriteFile(path, Encode(records, now), 0o644)
}

// IsICSPath reports whether path names an iCalendar file.
func IsICSPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".ics")
}

// eventUID is stable for a given name and date, so re-exporting the same
// list yields the same UIDs and calendar apps update instead of duplicating.
func eventUID(r model.Record) string {
	sum := sha256.Sum256([]byte(strings.ToLower(r.Name) + "\x00" + r.Date))
	return hex.EncodeToString(sum[:8]) + "@festivalbot"
}
