package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maccabipedia/match-calendar/internal/calendar"
	"github.com/maccabipedia/match-calendar/internal/config"
	"github.com/maccabipedia/match-calendar/internal/logger"
	"github.com/maccabipedia/match-calendar/internal/scraper"
	"github.com/maccabipedia/match-calendar/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig   string
	flagCalendar string
	flagStore    string
	flagDataDir  string
	flagVerbose  bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match-calendar",
		Short: "Keep a team's calendar in sync with the club's fixtures",
		Long: `A CLI tool that scrapes the club's published fixtures and reconciles them
into a calendar: new matches are created, changed matches updated, removed
matches deleted and the result of the last played match written back.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&flagCalendar, "calendar", "", "Sport whose calendar is updated (default from config)")
	cmd.PersistentFlags().StringVar(&flagStore, "store", "", "Calendar backend: google or file (default from config)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory for the file backend (default from config)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newSyncCmd(), newWatchCmd(), newCalendarsCmd(), newExportCmd())

	return cmd
}

// loadConfig resolves the configuration and applies the root flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("calendar") {
		cfg.Calendar = strings.ToLower(strings.TrimSpace(flagCalendar))
	}
	if flags.Changed("store") {
		cfg.Store = strings.ToLower(strings.TrimSpace(flagStore))
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = flagDataDir
	}
	if flagVerbose {
		cfg.Debug = true
	}

	if err := setupLogger(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger writes logs to stderr so stdout only carries command output.
// Debug mode wins over log_level.
func setupLogger(cfg *config.Config) error {
	level := logger.LevelInfo
	if cfg.LogLevel != "" {
		parsed, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		level = parsed
	}
	if cfg.Debug {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))
	return nil
}

// openStore opens the configured backend for the selected calendar
func openStore(ctx context.Context, cfg *config.Config) (calendar.Store, error) {
	calendarID, err := cfg.CalendarID()
	if err != nil {
		return nil, err
	}

	switch cfg.Store {
	case config.StoreFile:
		store, err := storage.Open(cfg.DataDir, calendarID)
		if err != nil {
			return nil, fmt.Errorf("opening file store: %w", err)
		}
		return store, nil
	case config.StoreGoogle:
		creds, err := cfg.CredentialsJSON()
		if err != nil {
			return nil, err
		}
		svc, err := calendar.NewGoogleService(ctx, creds)
		if err != nil {
			return nil, err
		}
		return calendar.NewGoogleStore(svc, calendarID), nil
	default:
		return nil, fmt.Errorf("invalid store: %s", cfg.Store)
	}
}

func newScraper(cfg *config.Config) *scraper.Scraper {
	return scraper.New(scraper.Options{
		UpcomingURL: cfg.Source.UpcomingURL,
		SeasonURL:   cfg.Source.SeasonURL,
		FirstSeason: cfg.Source.FirstSeason,
		WikiURL:     cfg.Source.WikiURL,
	})
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		logger.Error("Command failed", nil, err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
