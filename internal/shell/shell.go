// Package shell implements the interactive festival menu.
//
// A Session owns the in-memory festival list for the lifetime of the
// program. Every mutation is written through to the store immediately; the
// session never reads the store again after start-up.
package shell

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"festivalbot/internal/config"
	appLog "festivalbot/internal/log"
	"festivalbot/internal/model"
	"festivalbot/internal/notify"
	"festivalbot/internal/render"
)

// ErrInterrupted is returned by a LineReader when the user aborts a prompt
// (Ctrl-C).
var ErrInterrupted = errors.New("interrupted")

// LineReader reads one line of user input after showing prompt.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// Saver persists the full festival list.
type Saver interface {
	Save(records []model.Record) error
	Path() string
}

// Options wires a Session to its collaborators. Notifier and Renderer may
// be nil; they default to notify.Nop and render.Plain.
type Options struct {
	Store    Saver
	Input    LineReader
	Output   io.Writer
	Notifier notify.Notifier
	Renderer render.Renderer

	// Now is the clock used for "today". Defaults to time.Now.
	Now func() time.Time

	// BackupFile is the export target when the user leaves the prompt blank.
	BackupFile string
	// UpcomingDays is the example N shown by the upcoming prompt.
	UpcomingDays int
}

type Session struct {
	records []model.Record

	store    Saver
	in       LineReader
	out      io.Writer
	notifier notify.Notifier
	renderer render.Renderer
	now      func() time.Time

	backupFile   string
	upcomingDays int
}

// New returns a Session holding a copy of records.
func New(records []model.Record, opts Options) *Session {
	s := &Session{
		records:      append([]model.Record(nil), records...),
		store:        opts.Store,
		in:           opts.Input,
		out:          opts.Output,
		notifier:     opts.Notifier,
		renderer:     opts.Renderer,
		now:          opts.Now,
		backupFile:   opts.BackupFile,
		upcomingDays: opts.UpcomingDays,
	}
	if s.out == nil {
		s.out = io.Discard
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if s.renderer == nil {
		s.renderer = render.Plain{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.backupFile == "" {
		s.backupFile = config.DefaultBackupFile
	}
	if s.upcomingDays <= 0 {
		s.upcomingDays = config.DefaultUpcomingDays
	}
	return s
}

// Records returns a copy of the current in-memory list, in storage order.
func (s *Session) Records() []model.Record {
	return append([]model.Record(nil), s.records...)
}

const menu = `
=== Festival Reminder Bot ===
1. View all saved festivals
2. Add a new festival
3. Delete a festival
4. Check reminders (today / next 7 days)
5. Show upcoming festivals within next N days
6. Export festivals to JSON (backup)
7. Exit`

// Run shows the menu until the user exits. Choosing Exit saves the list
// first; an interrupt or end of input leaves without saving. Both return
// nil. Any other input error is returned.
func (s *Session) Run() error {
	for {
		s.println(menu)
		choice, err := s.in.Prompt("Choose an option (1-7): ")
		if err != nil {
			return s.stop(err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			s.viewAll()
		case "2":
			err = s.addFestival()
		case "3":
			err = s.deleteFestival()
		case "4":
			s.CheckReminders()
		case "5":
			err = s.showUpcoming()
		case "6":
			err = s.export()
		case "7":
			s.Exit()
			return nil
		default:
			s.println("Invalid choice. Choose 1-7.")
		}
		if err != nil {
			return s.stop(err)
		}
	}
}

// Exit saves the list and says goodbye.
func (s *Session) Exit() {
	s.persist()
	s.println("Goodbye — reminders saved.")
}

func (s *Session) stop(err error) error {
	if errors.Is(err, ErrInterrupted) || errors.Is(err, io.EOF) {
		s.println("\nExiting. Bye!")
		return nil
	}
	appLog.Error("shell: reading input failed", err)
	return err
}

// persist writes the full list, reporting failures to the user. The
// in-memory list is kept either way.
func (s *Session) persist() bool {
	if s.store == nil {
		return true
	}
	if err := s.store.Save(s.records); err != nil {
		appLog.Error("shell: save failed", err, "path", s.store.Path())
		s.printf("Error: could not write to %s: %v\n", s.store.Path(), err)
		return false
	}
	return true
}

func (s *Session) prompt(p string) (string, error) {
	line, err := s.in.Prompt(p)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Session) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Session) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}
