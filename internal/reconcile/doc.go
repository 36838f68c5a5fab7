// Package reconcile aligns a calendar with the matches published by the club.
//
// A run lists the stored entries that have not ended yet, scrapes the
// upcoming fixtures, creates or updates entries for them, deletes future
// entries that disappeared from the schedule and finally writes the result of
// the most recently played match into its entry. The create/update pass
// always completes before the delete pass starts.
//
// Matches are identified only by their provenance URL (match.Shared.URL).
// Write failures are logged and counted; read failures abort the run. Nothing
// is retried: the next run re-diffs and picks up where this one stopped.
package reconcile
