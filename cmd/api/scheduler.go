package main

import (
	"context"
	"os"
	"time"

	"property-catalog/pkg/logger"

	"github.com/robfig/cron/v3"
)

const sweepTimeout = 5 * time.Minute

func (a *App) initializeScheduler() {
	if !a.Config.Cleanup.Enabled {
		return
	}

	cronLogger := cron.PrintfLogger(logger.GlobalLogger)
	a.cron = cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	_, err := a.cron.AddFunc(a.Config.Cleanup.Schedule, a.runOrphanSweep)
	if err != nil {
		logger.GlobalLogger.Errorf("invalid cleanup schedule %q: %v", a.Config.Cleanup.Schedule, err)
		os.Exit(1)
	}
}

func (a *App) runOrphanSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	result, err := a.sweeper.Sweep(ctx)
	if err != nil {
		logger.GlobalLogger.Errorf("orphan sweep failed: %v", err)
		return
	}
	for _, e := range result.Errors {
		logger.GlobalLogger.Warnf("orphan sweep: %s", e)
	}
}

func (a *App) startScheduler() {
	if a.cron == nil {
		return
	}
	a.cron.Start()
	logger.GlobalLogger.Printf("orphan sweep scheduled %q (grace %s, dry run %t)",
		a.Config.Cleanup.Schedule, a.Config.Cleanup.GracePeriod, a.Config.Cleanup.DryRun)
}

func (a *App) stopScheduler() {
	if a.cron == nil {
		return
	}
	select {
	case <-a.cron.Stop().Done():
	case <-time.After(sweepTimeout):
		logger.GlobalLogger.Warnf("orphan sweep still running at shutdown")
	}
}
