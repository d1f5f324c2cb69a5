// Package watch runs the reminder check on a cron schedule.
package watch

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	appLog "festivalbot/internal/log"
)

// Run calls job on every tick of the five-field cron spec until ctx is
// cancelled. If runNow is set, job also runs once immediately. Run waits for
// a job in flight to finish before returning.
func Run(ctx context.Context, spec string, runNow bool, job func()) error {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}

	c := cron.New()
	c.Schedule(sched, cron.FuncJob(func() {
		appLog.Debug("watch: tick", "schedule", spec)
		job()
	}))

	if runNow {
		job()
	}

	c.Start()
	appLog.Info("watch: scheduler started", "schedule", spec)

	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("watch: scheduler stopped")
	return nil
}
