package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/maccabipedia/match-calendar/internal/calendar"
)

var flagRemote bool

func newCalendarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "List the configured calendars",
		RunE:  runCalendars,
	}

	cmd.Flags().BoolVar(&flagRemote, "remote", false, "Also list the calendars visible to the Google account")

	return cmd
}

func runCalendars(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	sports := cfg.Sports()
	if len(sports) == 0 {
		fmt.Fprintln(w, "No calendars configured. Set <SPORT>_CALENDAR_ID or add calendars to the config file.")
	}
	for _, sport := range sports {
		marker := " "
		if sport == cfg.Calendar {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\t%s\n", marker, sport, cfg.Calendars[sport])
	}

	if flagRemote {
		creds, err := cfg.CredentialsJSON()
		if err != nil {
			return err
		}
		svc, err := calendar.NewGoogleService(cmd.Context(), creds)
		if err != nil {
			return err
		}
		remote, err := calendar.ListCalendars(cmd.Context(), svc)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "\nGoogle calendars (%d):\n", len(remote))
		for _, c := range remote {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", c.Summary, c.ID, c.AccessRole)
		}
	}

	return w.Flush()
}
