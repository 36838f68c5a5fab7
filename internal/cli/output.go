package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/maccabipedia/match-calendar/internal/logger"
	"github.com/maccabipedia/match-calendar/internal/reconcile"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// RunOutput contains data to be output after a sync
type RunOutput struct {
	CheckedAt time.Time               `json:"checked_at"`
	Calendar  string                  `json:"calendar"`
	Store     string                  `json:"store"`
	DryRun    bool                    `json:"dry_run,omitempty"`
	Result    *reconcile.Result       `json:"result"`
	Metrics   *logger.MetricsSnapshot `json:"metrics,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, out *RunOutput, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, out)
	case FormatText:
		return writeText(w, out, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, out *RunOutput) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, out *RunOutput, verbose bool) error {
	res := out.Result
	if res == nil {
		res = &reconcile.Result{}
	}

	prefix := ""
	if out.DryRun {
		prefix = "[dry run] "
	}

	fmt.Fprintf(w, "%sCalendar %s (%s)\n", prefix, out.Calendar, out.Store)
	fmt.Fprintf(w, "  Created:    %d\n", res.Created)
	fmt.Fprintf(w, "  Updated:    %d\n", res.Updated)
	fmt.Fprintf(w, "  Unchanged:  %d\n", res.Unchanged)
	fmt.Fprintf(w, "  Deleted:    %d\n", res.Deleted)
	fmt.Fprintf(w, "  Backfilled: %d\n", res.Backfilled)
	if res.Wiped > 0 {
		fmt.Fprintf(w, "  Wiped:      %d\n", res.Wiped)
	}
	if res.History > 0 {
		fmt.Fprintf(w, "  History:    %d\n", res.History)
	}

	if res.Failed() {
		fmt.Fprintf(w, "\nFailures (%d):\n", len(res.Failures))
		for _, f := range res.Failures {
			target := f.URL
			if target == "" {
				target = f.ID
			}
			fmt.Fprintf(w, "  %s %s: %s\n", f.Op, target, f.Error)
		}
	}

	if verbose {
		fmt.Fprintf(w, "\nDuration: %s\n", res.Duration.Round(time.Millisecond))
		if out.Metrics != nil {
			writeMetrics(w, out.Metrics)
		}
	}

	return nil
}

func writeMetrics(w io.Writer, m *logger.MetricsSnapshot) {
	names := make([]string, 0, len(m.Counters))
	for name := range m.Counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, m.Counters[name])
	}

	names = names[:0]
	for name := range m.Timings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := m.Timings[name]
		fmt.Fprintf(w, "  %s: %d calls, avg %s, max %s\n", name, t.Count, t.Average, t.Max)
	}
}
