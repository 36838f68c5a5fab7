package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/maccabipedia/match-calendar/internal/config"
	"github.com/maccabipedia/match-calendar/internal/logger"
	"github.com/maccabipedia/match-calendar/internal/match"
	"github.com/maccabipedia/match-calendar/internal/reconcile"
	"github.com/maccabipedia/match-calendar/internal/scraper"
)

var (
	flagSchedule    string
	flagRunNow      bool
	flagWatchDryRun bool
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run sync on a cron schedule until interrupted",
		RunE:  runWatch,
	}

	cmd.Flags().StringVar(&flagSchedule, "schedule", "", "Cron expression (default from config)")
	cmd.Flags().BoolVar(&flagRunNow, "run-now", true, "Run once before waiting for the schedule")
	cmd.Flags().BoolVar(&flagWatchDryRun, "dry-run", false, "Log the writes without applying them")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("schedule") {
		cfg.Schedule = flagSchedule
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := newWatchJob(cfg, flagWatchDryRun)

	scheduler, err := newScheduler(ctx, cfg.Schedule, job)
	if err != nil {
		return err
	}

	if flagRunNow {
		job.run(ctx)
	}

	scheduler.Start()
	if entries := scheduler.Entries(); len(entries) > 0 {
		logger.Info("Scheduler started", logger.Fields{"schedule": cfg.Schedule, "next": entries[0].Next})
	}

	<-ctx.Done()
	logger.Info("Shutting down", nil)
	<-scheduler.Stop().Done()

	return nil
}

// newScheduler registers the sync job. Runs never overlap: a tick that fires
// while the previous run is still going is skipped.
func newScheduler(ctx context.Context, schedule string, job *watchJob) (*cron.Cron, error) {
	log := cronLogger{log: logger.Named("cron")}

	c := cron.New(
		cron.WithLocation(match.Location()),
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)

	if _, err := c.AddFunc(schedule, func() { job.run(ctx) }); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	return c, nil
}

// watchJob is the repeated sync behind watch. One scraper serves every run
// so its wiki cache outlives a tick. Delete-all and history backfill are
// applied by the first run only.
type watchJob struct {
	cfg    *config.Config
	src    *scraper.Scraper
	dryRun bool
}

func newWatchJob(cfg *config.Config, dryRun bool) *watchJob {
	own := *cfg
	return &watchJob{cfg: &own, src: newScraper(cfg), dryRun: dryRun}
}

// sync executes one run. Runs never overlap, so the job is not locked.
func (j *watchJob) sync(ctx context.Context) (*reconcile.Result, error) {
	result, err := syncOnce(ctx, j.cfg, j.src, j.dryRun)

	if j.cfg.DeleteAll || j.cfg.AddHistory {
		logger.Info("Maintenance run done, later runs only sync", logger.Fields{
			"delete_all":  j.cfg.DeleteAll,
			"add_history": j.cfg.AddHistory,
		})
		j.cfg.DeleteAll = false
		j.cfg.AddHistory = false
	}

	return result, err
}

func (j *watchJob) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	result, err := j.sync(ctx)
	if err != nil {
		logger.Error("Scheduled sync failed", logger.Fields{"calendar": j.cfg.Calendar}, err)
		return
	}

	logger.Info("Scheduled sync finished", logger.Fields{
		"calendar": j.cfg.Calendar,
		"created":  result.Created,
		"updated":  result.Updated,
		"deleted":  result.Deleted,
		"wiped":    result.Wiped,
		"history":  result.History,
		"failures": len(result.Failures),
		"duration": result.Duration.String(),
	})
}

// cronLogger adapts logger.Logger to cron.Logger
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, kvFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, kvFields(keysAndValues), err)
}

func kvFields(keysAndValues []interface{}) logger.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make(logger.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
