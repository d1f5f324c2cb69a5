package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"festivalbot/internal/caldate"
	"festivalbot/internal/config"
	"festivalbot/internal/ics"
	appLog "festivalbot/internal/log"
	"festivalbot/internal/model"
	"festivalbot/internal/notify"
	"festivalbot/internal/render"
	"festivalbot/internal/shell"
	"festivalbot/internal/store"
	"festivalbot/internal/watch"
)

// loadRecords reads the data file. An unreadable file is reported and the
// program carries on with an empty list.
func loadRecords(st *store.Store) []model.Record {
	records, err := st.Load()
	if err != nil {
		appLog.Error("load failed", err, "path", st.Path())
		fmt.Printf("Warning: %v\n", err)
	}
	return records
}

func sessionOptions(conf *config.Config, st *store.Store, in shell.LineReader) shell.Options {
	return shell.Options{
		Store:        st,
		Input:        in,
		Output:       os.Stdout,
		Notifier:     notify.New(conf.Notify, conf.AppName),
		Renderer:     render.New(conf.Table),
		BackupFile:   conf.BackupFile,
		UpcomingDays: conf.UpcomingDays,
	}
}

func runShell(conf *config.Config, demo bool) error {
	st := store.New(conf.DataFile)
	records := loadRecords(st)

	if demo && len(records) == 0 {
		records = demoRecords(caldate.Today(time.Now()))
		if err := st.Save(records); err != nil {
			fmt.Printf("Error: could not write to %s: %v\n", st.Path(), err)
		}
	}

	console := shell.NewConsole()
	defer console.Close()

	// Ctrl-C at a prompt is handled by the console; this covers SIGTERM and
	// SIGINT delivered while the terminal is not in raw mode.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, exiting", "signal", sig.String())
		console.Close()
		fmt.Println("\nExiting. Bye!")
		os.Exit(0)
	}()

	return shell.New(records, sessionOptions(conf, st, console)).Run()
}

func runRemind(conf *config.Config) error {
	st := store.New(conf.DataFile)
	shell.New(loadRecords(st), sessionOptions(conf, st, nil)).CheckReminders()
	return nil
}

func runUpcoming(conf *config.Config, args []string) error {
	days := conf.UpcomingDays
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid number: %q", args[0])
		}
		days = n
	}
	st := store.New(conf.DataFile)
	shell.New(loadRecords(st), sessionOptions(conf, st, nil)).ShowUpcoming(days)
	return nil
}

func runExport(conf *config.Config, args []string) error {
	path := conf.BackupFile
	if len(args) > 0 && args[0] != "" {
		path = args[0]
	}
	st := store.New(conf.DataFile)
	if err := shell.New(loadRecords(st), sessionOptions(conf, st, nil)).Export(path); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

func runImport(conf *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("missing source: give an .ics path or URL")
	}
	source := args[0]

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	body, err := ics.NewFetcher().Fetch(ctx, source)
	if err != nil {
		return err
	}
	events, err := ics.ParseICS(body)
	if err != nil {
		return fmt.Errorf("parse %s: %w", source, err)
	}

	today := caldate.Today(time.Now())
	res, err := ics.ToRecords(events, ics.ExpandConfig{
		RangeStart: today,
		RangeEnd:   caldate.AddDays(today, conf.ImportHorizonDays),
	})
	if err != nil {
		return err
	}

	st := store.New(conf.DataFile)
	records, err := st.Load()
	if err != nil {
		// Refuse to overwrite a file we could not read.
		return err
	}
	added, skipped := mergeNew(records, res.Records)
	if len(added) > 0 {
		if err := st.Save(append(records, added...)); err != nil {
			return fmt.Errorf("could not write to %s: %w", st.Path(), err)
		}
	}
	appLog.Info("import done", "source_events", len(events), "added", len(added), "skipped", skipped)
	fmt.Printf("Imported %d festivals (%d duplicates skipped).\n", len(added), skipped)
	return nil
}

// mergeNew returns the candidates that are not already present in existing
// or earlier in candidates, and how many were dropped.
func mergeNew(existing, candidates []model.Record) ([]model.Record, int) {
	var added []model.Record
	skipped := 0
	for _, c := range candidates {
		if model.ContainsEvent(existing, c) || model.ContainsEvent(added, c) {
			skipped++
			continue
		}
		added = append(added, c)
	}
	return added, skipped
}

func runWatch(conf *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := store.New(conf.DataFile)
	fmt.Printf("Watching %s, checking on %q. Press Ctrl-C to stop.\n", st.Path(), conf.RemindCron)

	return watch.Run(ctx, conf.RemindCron, true, func() {
		fmt.Printf("\n[%s] Checking reminders\n", time.Now().Format(time.DateTime))
		shell.New(loadRecords(st), sessionOptions(conf, st, nil)).CheckReminders()
	})
}

func demoRecords(today time.Time) []model.Record {
	year := today.Year()
	return []model.Record{
		{Name: "New Year", Date: caldate.Format(time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)), Notes: "Start of the year"},
		{Name: "Independence Day", Date: caldate.Format(time.Date(year, 8, 15, 0, 0, 0, 0, time.UTC)), Notes: "National holiday"},
		{Name: "Festival Example", Date: caldate.Format(caldate.AddDays(today, 3)), Notes: "Demo festival in 3 days"},
	}
}
