package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/maccabipedia/match-calendar/internal/calendar"
	"github.com/maccabipedia/match-calendar/internal/logger"
	"github.com/maccabipedia/match-calendar/internal/match"
)

const (
	// DefaultFetchLimit caps how many stored entries a single List reads
	DefaultFetchLimit = 3000

	// backfillOffset is the UTC offset the last match's wall-clock start is
	// re-read in before looking up its entry
	backfillOffset = 2 * 60 * 60
)

// Metric names
const (
	MetricCreated    = "entries_created"
	MetricUpdated    = "entries_updated"
	MetricDeleted    = "entries_deleted"
	MetricBackfilled = "results_backfilled"
	MetricFailures   = "write_failures"
	MetricRun        = "run"
)

// Source produces fresh matches
type Source interface {
	// FetchMatches scrapes the page at url. With playedOnly it returns at most
	// the most recently played match.
	FetchMatches(ctx context.Context, url string, playedOnly bool) ([]*match.Match, error)

	// SeasonLinks returns the season pages with played matches, oldest first.
	SeasonLinks(ctx context.Context) ([]string, error)

	// UpcomingURL returns the page listing matches not played yet.
	UpcomingURL() string
}

// Options configures a Reconciler
type Options struct {
	FetchLimit int
	Now        func() time.Time
	Metrics    *logger.Metrics
}

// RunOptions selects the optional steps of a run
type RunOptions struct {
	DeleteAll  bool
	AddHistory bool
}

// Reconciler computes and applies the writes that align a Store with a Source
type Reconciler struct {
	source     Source
	store      calendar.Store
	fetchLimit int
	now        func() time.Time
	metrics    *logger.Metrics
	log        *logger.Logger
}

// New creates a Reconciler bound to one source and one calendar
func New(source Source, store calendar.Store, opts Options) *Reconciler {
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = DefaultFetchLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = logger.DefaultMetrics()
	}

	return &Reconciler{
		source:     source,
		store:      store,
		fetchLimit: opts.FetchLimit,
		now:        opts.Now,
		metrics:    opts.Metrics,
		log:        logger.Named("reconcile"),
	}
}

// Run performs one full reconciliation. Steps run in order: optional wipe,
// list stored future entries, fetch upcoming matches, create/update, delete,
// last result backfill, optional history backfill.
func (r *Reconciler) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	started := r.now()
	total := &Result{}
	defer func() {
		total.Duration = r.now().Sub(started)
		r.metrics.RecordTiming(MetricRun, total.Duration)
	}()

	if opts.DeleteAll {
		r.log.Info("Deleting all entries", nil)
		wiped, err := r.DeleteAll(ctx)
		total.add(wiped)
		if err != nil {
			return total, err
		}
	}

	now := r.now()
	stored, err := r.store.List(ctx, now, r.fetchLimit)
	if err != nil {
		return total, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	r.log.Info("Listed future entries", logger.Fields{"count": len(stored), "after": now.Format(time.RFC3339)})

	fresh, err := r.source.FetchMatches(ctx, r.source.UpcomingURL(), false)
	if err != nil {
		return total, fmt.Errorf("%w: %w", ErrSourceFetch, err)
	}
	r.log.Info("Fetched upcoming matches", logger.Fields{"count": len(fresh)})

	synced, err := r.SyncFuture(ctx, fresh, stored)
	total.add(synced)
	if err != nil {
		return total, err
	}

	deleted, err := r.DeleteStale(ctx, fresh, stored)
	total.add(deleted)
	if err != nil {
		return total, err
	}

	seasons, err := r.source.SeasonLinks(ctx)
	if err != nil {
		return total, fmt.Errorf("%w: %w", ErrSourceFetch, err)
	}

	if last, ok := lo.Last(seasons); ok {
		updated, err := r.BackfillLastResult(ctx, last)
		switch {
		case err == nil:
			if updated {
				total.Backfilled++
			}
		case errors.Is(err, ErrNotFound):
			r.log.Warn("Skipping result backfill", logger.Fields{"season": last, "reason": err.Error()})
		case errors.Is(err, ErrStoreWrite):
			total.Failures = append(total.Failures, Failure{Op: "backfill", URL: last, Error: err.Error()})
		default:
			return total, err
		}
	} else {
		r.log.Warn("Skipping result backfill", logger.Fields{"reason": "no season with played matches"})
	}

	if opts.AddHistory {
		history, err := r.AddHistory(ctx, seasons)
		total.add(history)
		if err != nil {
			return total, err
		}
	} else {
		r.log.Debug("Skipping history matches", nil)
	}

	r.log.Info("Run finished", logger.Fields{
		"created":    total.Created,
		"updated":    total.Updated,
		"unchanged":  total.Unchanged,
		"deleted":    total.Deleted,
		"backfilled": total.Backfilled,
		"failures":   len(total.Failures),
	})

	return total, nil
}

// SyncFuture creates an entry for every fresh match without a stored
// counterpart and updates counterparts whose title, description, start or
// location changed. Matches are processed in order; a failed write is
// recorded and the loop goes on. The only error returned is ctx's.
func (r *Reconciler) SyncFuture(ctx context.Context, fresh, stored []*match.Match) (*Result, error) {
	res := &Result{}

	for _, m := range fresh {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		existing := match.FindMatch(m, stored)
		if existing == nil {
			r.create(ctx, m, res)
			continue
		}

		changes := match.Changes(existing, m)
		if len(changes) == 0 || !existing.Persisted() {
			res.Unchanged++
			continue
		}

		if err := r.store.Update(ctx, existing.ID, m); err != nil {
			r.fail(res, "update", existing.ID, m.URL(), err)
			continue
		}
		res.Updated++
		r.metrics.IncrCounter(MetricUpdated)
		r.log.Info("Updated entry", logger.Fields{
			"id":      existing.ID,
			"title":   m.Title,
			"url":     m.URL(),
			"changed": strings.Join(changes, ","),
		})
	}

	return res, nil
}

// DeleteStale deletes every stored entry whose match is no longer in fresh.
// It must run after SyncFuture for the same inputs.
func (r *Reconciler) DeleteStale(ctx context.Context, fresh, stored []*match.Match) (*Result, error) {
	res := &Result{}

	for _, entry := range stored {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if match.FindMatch(entry, fresh) != nil {
			continue
		}
		if !entry.Persisted() {
			r.log.Warn("Stale entry has no id", logger.Fields{"url": entry.URL()})
			continue
		}

		r.delete(ctx, entry, res)
	}

	return res, nil
}

// BackfillLastResult writes the result of the most recently played match on
// seasonURL into its entry, unless the entry already carries a result. It
// reports whether an update was made. A missing match or entry yields
// ErrNotFound.
func (r *Reconciler) BackfillLastResult(ctx context.Context, seasonURL string) (bool, error) {
	played, err := r.source.FetchMatches(ctx, seasonURL, true)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrSourceFetch, err)
	}

	last, ok := lo.First(played)
	if !ok {
		return false, fmt.Errorf("last played match: %w", ErrNotFound)
	}

	after := BackfillLookupTime(last.Start)
	entries, err := r.store.List(ctx, after, 1)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}

	entry, ok := lo.First(entries)
	if !ok {
		return false, fmt.Errorf("entry of %s: %w", last.URL(), ErrNotFound)
	}

	if entry.URL() != last.URL() {
		r.log.Debug("Last match has no entry at its start", logger.Fields{"match": last.URL(), "entry": entry.URL()})
		return false, nil
	}
	if entry.Played() {
		return false, nil
	}

	if err := r.store.Update(ctx, entry.ID, last); err != nil {
		r.metrics.IncrCounter(MetricFailures)
		return false, fmt.Errorf("%w: update %s: %w", ErrStoreWrite, entry.ID, err)
	}

	r.metrics.IncrCounter(MetricBackfilled)
	r.log.Info("Backfilled result", logger.Fields{"id": entry.ID, "url": last.URL(), "result": last.Shared.Result})
	return true, nil
}

// BackfillLookupTime re-reads the wall-clock start of a match as UTC+02:00.
// The club site publishes local times, so during daylight saving time the
// lookup lands an hour after the real start.
func BackfillLookupTime(start time.Time) time.Time {
	return time.Date(start.Year(), start.Month(), start.Day(),
		start.Hour(), start.Minute(), start.Second(), start.Nanosecond(),
		time.FixedZone("", backfillOffset))
}

// AddHistory creates an entry for every match of every season without any
// identity check. Running it twice duplicates entries.
func (r *Reconciler) AddHistory(ctx context.Context, seasonURLs []string) (*Result, error) {
	res := &Result{}

	for _, season := range seasonURLs {
		matches, err := r.source.FetchMatches(ctx, season, false)
		if err != nil {
			return res, fmt.Errorf("%w: %w", ErrSourceFetch, err)
		}

		before := res.Created
		for _, m := range matches {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			r.create(ctx, m, res)
		}

		r.log.Info("Added history matches", logger.Fields{"season": season, "count": res.Created - before})
	}

	res.History, res.Created = res.Created, 0
	return res, nil
}

// DeleteAll removes every entry listed since the Unix epoch
func (r *Reconciler) DeleteAll(ctx context.Context) (*Result, error) {
	entries, err := r.store.List(ctx, time.Unix(0, 0), r.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}

	res := &Result{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !entry.Persisted() {
			r.log.Warn("Entry has no id", logger.Fields{"title": entry.Title})
			continue
		}
		r.delete(ctx, entry, res)
	}

	res.Wiped, res.Deleted = res.Deleted, 0
	return res, nil
}

func (r *Reconciler) create(ctx context.Context, m *match.Match, res *Result) {
	id, err := r.store.Create(ctx, m)
	if err != nil {
		r.fail(res, "create", "", m.URL(), err)
		return
	}
	res.Created++
	r.metrics.IncrCounter(MetricCreated)
	r.log.Info("Created entry", logger.Fields{"id": id, "title": m.Title, "url": m.URL()})
}

func (r *Reconciler) delete(ctx context.Context, entry *match.Match, res *Result) {
	if err := r.store.Delete(ctx, entry.ID); err != nil {
		r.fail(res, "delete", entry.ID, entry.URL(), err)
		return
	}
	res.Deleted++
	r.metrics.IncrCounter(MetricDeleted)
	r.log.Info("Deleted entry", logger.Fields{"id": entry.ID, "title": entry.Title, "url": entry.URL()})
}

func (r *Reconciler) fail(res *Result, op, id, url string, err error) {
	err = fmt.Errorf("%w: %s: %w", ErrStoreWrite, op, err)
	res.Failures = append(res.Failures, Failure{Op: op, ID: id, URL: url, Error: err.Error()})
	r.metrics.IncrCounter(MetricFailures)
	r.log.Error("Write failed", logger.Fields{"op": op, "id": id, "url": url}, err)
}
