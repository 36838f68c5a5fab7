package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/maccabipedia/match-calendar/internal/calendar"
	"github.com/maccabipedia/match-calendar/internal/config"
	"github.com/maccabipedia/match-calendar/internal/logger"
	"github.com/maccabipedia/match-calendar/internal/reconcile"
)

var (
	flagDryRun     bool
	flagDeleteAll  bool
	flagAddHistory bool
	flagFormat     string
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation of the calendar",
		RunE:  runSync,
	}

	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Log the writes without applying them")
	cmd.Flags().BoolVar(&flagDeleteAll, "delete-all", false, "Delete every entry before syncing")
	cmd.Flags().BoolVar(&flagAddHistory, "add-history", false, "Create entries for every past season")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("delete-all") {
		cfg.DeleteAll = flagDeleteAll
	}
	if cmd.Flags().Changed("add-history") {
		cfg.AddHistory = flagAddHistory
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	result, runErr := syncOnce(cmd.Context(), cfg, newScraper(cfg), flagDryRun)

	if result != nil {
		out := &RunOutput{
			CheckedAt: time.Now().UTC(),
			Calendar:  cfg.Calendar,
			Store:     cfg.Store,
			DryRun:    flagDryRun,
			Result:    result,
		}
		if flagVerbose {
			snapshot := logger.DefaultMetrics().Snapshot()
			out.Metrics = &snapshot
		}
		if err := WriteOutput(cmd.OutOrStdout(), out, format, flagVerbose); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	return runErr
}

// syncOnce opens the store and executes one run against src
func syncOnce(ctx context.Context, cfg *config.Config, src reconcile.Source, dryRun bool) (*reconcile.Result, error) {
	logger.DefaultMetrics().Reset()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if dryRun {
		store = calendar.NewDryRunStore(store)
	}

	logger.Info("Updating calendar", logger.Fields{"calendar": cfg.Calendar, "store": cfg.Store, "dry_run": dryRun})

	r := reconcile.New(src, store, reconcile.Options{FetchLimit: cfg.FetchLimit})
	return r.Run(ctx, reconcile.RunOptions{
		DeleteAll:  cfg.DeleteAll,
		AddHistory: cfg.AddHistory,
	})
}

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}
