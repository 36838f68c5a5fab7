package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/maccabipedia/match-calendar/internal/calendar"
	"github.com/maccabipedia/match-calendar/internal/logger"
	"github.com/maccabipedia/match-calendar/internal/match"
)

var (
	flagOutput string
	flagAll    bool
	flagSort   string
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the calendar's entries as an iCalendar file",
		RunE:  runExport,
	}

	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&flagAll, "all", false, "Include entries that already ended")
	cmd.Flags().StringVar(&flagSort, "sort", string(SortByStart), "Sort order: start or title")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	order := SortOrder(flagSort)
	if order != SortByStart && order != SortByTitle {
		return fmt.Errorf("invalid sort order: %s (must be 'start' or 'title')", flagSort)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	after := time.Now()
	if flagAll {
		after = time.Unix(0, 0)
	}

	matches, err := store.List(cmd.Context(), after, cfg.FetchLimit)
	if err != nil {
		return fmt.Errorf("listing entries: %w", err)
	}
	sortMatches(matches, order)

	if flagOutput != "" {
		err = writeICSFile(flagOutput, cfg.Calendar, matches)
	} else {
		err = calendar.WriteICS(cmd.OutOrStdout(), cfg.Calendar, matches)
	}
	if err != nil {
		return err
	}

	logger.Info("Exported entries", logger.Fields{"calendar": cfg.Calendar, "count": len(matches), "output": flagOutput})
	return nil
}

// writeICSFile writes the feed to path. The file is only reported written
// once it has been closed without error.
func writeICSFile(path, name string, matches []*match.Match) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", closeErr)
		}
	}()

	return calendar.WriteICS(f, name, matches)
}
