package shell

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"festivalbot/internal/model"
	"festivalbot/internal/store"
)

// script feeds canned lines to the session and then ends with end (io.EOF
// when nil).
type script struct {
	lines   []string
	prompts []string
	end     error
}

func (s *script) Prompt(p string) (string, error) {
	s.prompts = append(s.prompts, p)
	if len(s.lines) == 0 {
		if s.end != nil {
			return "", s.end
		}
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

type recorder struct{ titles, messages []string }

func (r *recorder) Notify(title, message string) {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
}

var fixedNow = time.Date(2025, 10, 25, 10, 0, 0, 0, time.Local)

type harness struct {
	session *Session
	input   *script
	out     *bytes.Buffer
	store   *store.Store
	dir     string
}

func newHarness(t *testing.T, records []model.Record, lines ...string) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		input: &script{lines: lines},
		out:   &bytes.Buffer{},
		store: store.New(filepath.Join(dir, "festivals.json")),
		dir:   dir,
	}
	h.session = New(records, Options{
		Store:      h.store,
		Input:      h.input,
		Output:     h.out,
		Now:        func() time.Time { return fixedNow },
		BackupFile: filepath.Join(dir, "festivals_backup.json"),
	})
	return h
}

func (h *harness) run(t *testing.T) {
	t.Helper()
	if err := h.session.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func (h *harness) saved(t *testing.T) []model.Record {
	t.Helper()
	got, err := h.store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return got
}

func (h *harness) expectOutput(t *testing.T, parts ...string) {
	t.Helper()
	out := h.out.String()
	for _, p := range parts {
		if !strings.Contains(out, p) {
			t.Errorf("output is missing %q:\n%s", p, out)
		}
	}
}

func threeFestivals() []model.Record {
	return []model.Record{
		{Name: "Diwali", Date: "2025-11-01", Notes: "lights"},
		{Name: "Holi", Date: "2025-03-14"},
		{Name: "Onam", Date: "2025-09-05"},
	}
}

func TestAddAndExitSaves(t *testing.T) {
	h := newHarness(t, nil, "2", "  Holi  ", "2025-03-14", "", "7")
	h.run(t)

	h.expectOutput(t, "=== Festival Reminder Bot ===", "Festival added and saved.", "Goodbye — reminders saved.")
	want := []model.Record{{Name: "Holi", Date: "2025-03-14"}}
	if got := h.saved(t); !reflect.DeepEqual(got, want) {
		t.Errorf("saved = %#v", got)
	}
}

func TestAddRejections(t *testing.T) {
	existing := []model.Record{{Name: "Diwali", Date: "2025-11-01"}}
	h := newHarness(t, existing,
		"2", "", // empty name
		"2", "Holi", "14/03/2025", // bad date
		"2", "Holi", "2025-02-30", // impossible date
		"2", "diwali", "2025-11-01", "dup", // duplicate
	)
	h.run(t)

	h.expectOutput(t,
		"Name cannot be empty.",
		"Invalid date format. Use YYYY-MM-DD.",
		"A festival with this name and date already exists.",
	)
	if got := h.session.Records(); !reflect.DeepEqual(got, existing) {
		t.Errorf("records changed: %#v", got)
	}
	if _, err := os.Stat(h.store.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("store written after rejected adds: %v", err)
	}
}

func TestAddMethodErrors(t *testing.T) {
	s := New([]model.Record{{Name: "Diwali", Date: "2025-11-01"}}, Options{})

	if _, err := s.Add(" ", "2025-11-01", ""); !errors.Is(err, model.ErrNameRequired) {
		t.Errorf("empty name: %v", err)
	}
	if _, err := s.Add("Holi", "2025-3-14", ""); !errors.Is(err, model.ErrInvalidDate) {
		t.Errorf("bad date: %v", err)
	}
	if _, err := s.Add("DIWALI", "2025-11-01", ""); !errors.Is(err, model.ErrDuplicate) {
		t.Errorf("duplicate: %v", err)
	}
	if len(s.Records()) != 1 {
		t.Errorf("collection size changed: %d", len(s.Records()))
	}
	if _, err := s.Add("Diwali", "2026-10-20", ""); err != nil {
		t.Errorf("same name on another date should be allowed: %v", err)
	}
}

func TestDeleteCancelAndRejects(t *testing.T) {
	h := newHarness(t, threeFestivals(),
		"3", "0",
		"3", "4",
		"3", "-1",
		"3", "two",
	)
	h.run(t)

	h.expectOutput(t, "Cancelled.", "Index out of range.", "Invalid input.")
	if got := h.session.Records(); !reflect.DeepEqual(got, threeFestivals()) {
		t.Errorf("records changed: %#v", got)
	}
}

func TestDeleteRemovesDisplayedEntry(t *testing.T) {
	// Sorted display: 1 Holi, 2 Onam, 3 Diwali.
	h := newHarness(t, threeFestivals(), "3", "2")
	h.run(t)

	h.expectOutput(t, "2. Onam — 2025-09-05", "Removed festival: Onam — 2025-09-05")
	want := []model.Record{
		{Name: "Diwali", Date: "2025-11-01", Notes: "lights"},
		{Name: "Holi", Date: "2025-03-14"},
	}
	if got := h.session.Records(); !reflect.DeepEqual(got, want) {
		t.Errorf("records = %#v", got)
	}
	if got := h.saved(t); !reflect.DeepEqual(got, want) {
		t.Errorf("saved = %#v", got)
	}
}

func TestDeleteEmpty(t *testing.T) {
	h := newHarness(t, nil, "3")
	h.run(t)
	h.expectOutput(t, "No festivals to delete.")
}

func TestViewAllPlain(t *testing.T) {
	records := append(threeFestivals(), model.Record{Name: "Corrupt", Date: "someday"})
	h := newHarness(t, records, "1")
	h.run(t)

	h.expectOutput(t,
		"Saved festivals:\n1. Holi — 2025-03-14\n2. Onam — 2025-09-05\n3. Diwali — 2025-11-01 — lights\n4. Corrupt — someday\n",
	)
}

func TestViewAllEmpty(t *testing.T) {
	h := newHarness(t, nil, "1")
	h.run(t)
	h.expectOutput(t, "No festivals saved yet. Add one from the menu.")
}

func TestCheckReminders(t *testing.T) {
	records := []model.Record{
		{Name: "Far", Date: "2025-11-02"},
		{Name: "Diwali", Date: "2025-11-01", Notes: "lights"},
		{Name: "Karva Chauth", Date: "2025-10-25"},
		{Name: "Tomorrow", Date: "2025-10-26"},
	}
	h := newHarness(t, records, "4")
	rec := &recorder{}
	h.session.notifier = rec
	h.run(t)

	h.expectOutput(t,
		"Festivals happening TODAY:\n - Karva Chauth (2025-10-25)\n",
		"Festivals within the next 7 days:\n - Tomorrow on 2025-10-26 (in 1 day)\n - Diwali on 2025-11-01 (in 7 days) — lights\n",
	)
	if strings.Contains(h.out.String(), "Far") {
		t.Error("festival 8 days out was reported")
	}

	wantTitles := []string{"Karva Chauth is today!", "Upcoming: Tomorrow in 1 day", "Upcoming: Diwali in 7 days"}
	if !reflect.DeepEqual(rec.titles, wantTitles) {
		t.Errorf("titles = %v", rec.titles)
	}
	if rec.messages[2] != "lights" || rec.messages[0] != wantTitles[0] {
		t.Errorf("messages = %v", rec.messages)
	}
}

func TestCheckRemindersNone(t *testing.T) {
	h := newHarness(t, []model.Record{{Name: "Holi", Date: "2025-03-14"}}, "4")
	h.run(t)
	h.expectOutput(t, "No festivals today.", "No festivals within the next 7 days.")
}

func TestShowUpcoming(t *testing.T) {
	records := []model.Record{
		{Name: "Diwali", Date: "2025-11-01"},
		{Name: "Today", Date: "2025-10-25"},
		{Name: "Broken", Date: "2025-10-99"},
	}
	h := newHarness(t, records,
		"5", "soon",
		"5", "-3",
		"5", "0",
		"5", "7",
		"5", "30",
	)
	h.run(t)

	out := h.out.String()
	if strings.Count(out, "Invalid number.") != 2 {
		t.Errorf("expected two rejections:\n%s", out)
	}
	h.expectOutput(t,
		"Festivals within next 0 days:\n - Today on 2025-10-25\n",
		"Festivals within next 7 days:\n - Today on 2025-10-25\n - Diwali on 2025-11-01\n",
	)
	if strings.Contains(out, "Broken") {
		t.Error("record with invalid date listed as upcoming")
	}
	if !strings.Contains(h.input.prompts[1], "(e.g. 30)") {
		t.Errorf("prompt = %q", h.input.prompts[1])
	}
}

func TestShowUpcomingEmpty(t *testing.T) {
	h := newHarness(t, nil, "5", "10")
	h.run(t)
	h.expectOutput(t, "No festivals within next 10 days.")
}

func TestExportEndToEnd(t *testing.T) {
	h := newHarness(t, nil)
	backup := filepath.Join(h.dir, "backup.json")
	h.input.lines = []string{"2", "Holi", "2025-03-14", "", "6", backup}
	h.run(t)

	h.expectOutput(t, "Exported to "+backup)
	want := []model.Record{{Name: "Holi", Date: "2025-03-14"}}

	exported, err := store.New(backup).Load()
	if err != nil || !reflect.DeepEqual(exported, want) {
		t.Errorf("backup = %#v, %v", exported, err)
	}

	if err := os.Remove(backup); err != nil {
		t.Fatal(err)
	}
	if got := h.saved(t); !reflect.DeepEqual(got, want) {
		t.Errorf("primary store = %#v", got)
	}
}

func TestExportDefaultAndICS(t *testing.T) {
	h := newHarness(t, threeFestivals())
	icsPath := filepath.Join(h.dir, "festivals.ics")
	h.input.lines = []string{"6", "", "6", icsPath, "6", h.dir}
	h.run(t)

	if _, err := os.Stat(filepath.Join(h.dir, "festivals_backup.json")); err != nil {
		t.Errorf("default backup not written: %v", err)
	}
	b, err := os.ReadFile(icsPath)
	if err != nil {
		t.Fatalf("ics not written: %v", err)
	}
	if !strings.Contains(string(b), "SUMMARY:Onam") {
		t.Errorf("ics content:\n%s", b)
	}
	h.expectOutput(t, "Failed to export:")
	if _, err := os.Stat(h.store.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Error("export touched the primary store")
	}
}

func TestInterruptLeavesWithoutSaving(t *testing.T) {
	h := newHarness(t, threeFestivals(), "2", "Holi", "2026-03-04")
	h.input.end = ErrInterrupted
	h.run(t)

	h.expectOutput(t, "Exiting. Bye!")
	if len(h.session.Records()) != 3 {
		t.Errorf("interrupted add changed records: %v", h.session.Records())
	}
	if _, err := os.Stat(h.store.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Error("interrupt should not save")
	}
}

func TestUnexpectedInputErrorReturned(t *testing.T) {
	h := newHarness(t, nil)
	boom := errors.New("terminal gone")
	h.input.end = boom
	if err := h.session.Run(); !errors.Is(err, boom) {
		t.Errorf("Run = %v", err)
	}
}

func TestSaveFailureKeepsSessionState(t *testing.T) {
	h := newHarness(t, nil, "2", "Holi", "2025-03-14", "", "7")
	// A non-empty directory at the data path makes every save fail.
	badPath := filepath.Join(h.dir, "taken")
	if err := os.MkdirAll(filepath.Join(badPath, "child"), 0o700); err != nil {
		t.Fatal(err)
	}
	h.session.store = store.New(badPath)
	h.run(t)

	h.expectOutput(t, "Error: could not write to "+badPath, "Festival added for this session only.", "Goodbye")
	if len(h.session.Records()) != 1 {
		t.Errorf("in-memory record lost: %v", h.session.Records())
	}
}

func TestInvalidChoice(t *testing.T) {
	h := newHarness(t, nil, "9", "")
	h.run(t)
	if strings.Count(h.out.String(), "Invalid choice. Choose 1-7.") != 2 {
		t.Errorf("output:\n%s", h.out.String())
	}
}
