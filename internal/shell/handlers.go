package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"festivalbot/internal/caldate"
	"festivalbot/internal/ics"
	appLog "festivalbot/internal/log"
	"festivalbot/internal/model"
	"festivalbot/internal/remind"
	"festivalbot/internal/store"
)

var (
	ErrCancelled        = errors.New("cancelled")
	ErrIndexOutOfRange  = errors.New("index out of range")
	errUnparsableNumber = errors.New("not a number")
)

// Add validates a festival and appends it to the in-memory list. The date
// must be YYYY-MM-DD; a festival with the same name (ignoring case) and date
// is rejected. Validation failures leave the list untouched. The caller
// decides when to save.
func (s *Session) Add(name, date, notes string) (model.Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Record{}, model.ErrNameRequired
	}
	d, ok := caldate.Parse(strings.TrimSpace(date))
	if !ok {
		return model.Record{}, model.ErrInvalidDate
	}
	rec := model.Record{Name: name, Date: caldate.Format(d), Notes: strings.TrimSpace(notes)}
	if model.ContainsEvent(s.records, rec) {
		return model.Record{}, model.ErrDuplicate
	}
	s.records = append(s.records, rec)
	return rec, nil
}

// Delete removes the festival shown at position index (1-based) of the
// date-sorted listing. Index 0 returns ErrCancelled.
func (s *Session) Delete(index int) (model.Record, error) {
	if index == 0 {
		return model.Record{}, ErrCancelled
	}
	order := remind.SortedOrder(s.records)
	if index < 1 || index > len(order) {
		return model.Record{}, ErrIndexOutOfRange
	}
	target := order[index-1]
	removed := s.records[target]
	s.records = append(s.records[:target:target], s.records[target+1:]...)
	return removed, nil
}

func (s *Session) viewAll() {
	if len(s.records) == 0 {
		s.println("No festivals saved yet. Add one from the menu.")
		return
	}
	sorted := remind.SortByDate(s.records)
	rows := make([][]string, 0, len(sorted))
	for i, r := range sorted {
		rows = append(rows, []string{strconv.Itoa(i + 1), r.Name, r.Date, r.Notes})
	}
	s.println("\nSaved festivals:")
	if err := s.renderer.Render(s.out, []string{"#", "Name", "Date", "Notes"}, rows); err != nil {
		appLog.Error("shell: render failed", err)
	}
}

func (s *Session) addFestival() error {
	name, err := s.prompt("Festival name: ")
	if err != nil {
		return err
	}
	if name == "" {
		s.println("Name cannot be empty.")
		return nil
	}
	date, err := s.prompt("Date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	if !caldate.Valid(date) {
		s.println("Invalid date format. Use YYYY-MM-DD.")
		return nil
	}
	notes, err := s.prompt("Optional notes/description (press Enter to skip): ")
	if err != nil {
		return err
	}

	if _, err := s.Add(name, date, notes); err != nil {
		switch {
		case errors.Is(err, model.ErrDuplicate):
			s.println("A festival with this name and date already exists.")
		default:
			s.println(capitalize(err.Error()) + ".")
		}
		return nil
	}
	if s.persist() {
		s.println("Festival added and saved.")
	} else {
		s.println("Festival added for this session only.")
	}
	return nil
}

func (s *Session) deleteFestival() error {
	if len(s.records) == 0 {
		s.println("No festivals to delete.")
		return nil
	}
	s.viewAll()
	text, err := s.prompt("Enter the number of the festival to delete (0 to cancel): ")
	if err != nil {
		return err
	}
	idx, err := parseInt(text)
	if err != nil {
		s.println("Invalid input.")
		return nil
	}

	removed, err := s.Delete(idx)
	switch {
	case errors.Is(err, ErrCancelled):
		s.println("Cancelled.")
		return nil
	case errors.Is(err, ErrIndexOutOfRange):
		s.println("Index out of range.")
		return nil
	}
	s.persist()
	s.printf("Removed festival: %s — %s\n", removed.Name, removed.Date)
	return nil
}

// CheckReminders prints the festivals happening today and within the next
// week, and sends one notification for each.
func (s *Session) CheckReminders() remind.Buckets {
	b := remind.TodayAndWeek(s.records, caldate.Today(s.now()), s.notifier)

	if len(b.Today) > 0 {
		s.println("\n🎉 Festivals happening TODAY:")
		for _, e := range b.Today {
			s.println(" - " + e.Record.Name + " (" + e.Record.Date + ")" + notesSuffix(e.Record))
		}
	} else {
		s.println("\nNo festivals today.")
	}

	if len(b.Week) > 0 {
		s.printf("\n📅 Festivals within the next %d days:\n", remind.WeekDays)
		for _, e := range b.Week {
			s.printf(" - %s on %s (in %s)%s\n", e.Record.Name, e.Record.Date, remind.DaysText(e.DaysLeft), notesSuffix(e.Record))
		}
	} else {
		s.printf("\nNo festivals within the next %d days.\n", remind.WeekDays)
	}
	return b
}

func (s *Session) showUpcoming() error {
	text, err := s.prompt(fmt.Sprintf("Show upcoming within how many days? (e.g. %d): ", s.upcomingDays))
	if err != nil {
		return err
	}
	n, err := parseInt(text)
	if err != nil || n < 0 {
		s.println("Invalid number.")
		return nil
	}
	s.ShowUpcoming(n)
	return nil
}

// ShowUpcoming prints the festivals dated from today through today+days.
func (s *Session) ShowUpcoming(days int) []remind.Entry {
	ups := remind.Upcoming(s.records, caldate.Today(s.now()), days)
	if len(ups) == 0 {
		s.printf("No festivals within next %d days.\n", days)
		return ups
	}
	s.printf("Festivals within next %d days:\n", days)
	for _, e := range ups {
		s.printf(" - %s on %s\n", e.Record.Name, e.Record.Date)
	}
	return ups
}

func (s *Session) export() error {
	path, err := s.prompt(fmt.Sprintf("Backup filename (press Enter for '%s'): ", s.backupFile))
	if err != nil {
		return err
	}
	if path == "" {
		path = s.backupFile
	}

	if err := s.Export(path); err != nil {
		s.printf("Failed to export: %v\n", err)
		return nil
	}
	s.printf("Exported to %s\n", path)
	return nil
}

// Export writes the current list to path, as iCalendar when path ends in
// .ics and as JSON otherwise. The primary data file is not touched.
func (s *Session) Export(path string) error {
	if ics.IsICSPath(path) {
		return ics.Export(s.records, path, s.now())
	}
	return store.Export(s.records, path)
}

func notesSuffix(r model.Record) string {
	if r.Notes == "" {
		return ""
	}
	return " — " + r.Notes
}

func parseInt(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, errUnparsableNumber
	}
	return n, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
