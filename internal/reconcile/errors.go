package reconcile

import "errors"

var (
	// ErrSourceFetch means the match source could not be read. The run stops so
	// that a partial schedule never drives deletions.
	ErrSourceFetch = errors.New("fetching matches")

	// ErrStoreRead means the calendar could not be listed. The run stops.
	ErrStoreRead = errors.New("reading calendar")

	// ErrStoreWrite means a single create, update or delete failed.
	ErrStoreWrite = errors.New("writing calendar")

	// ErrNotFound means the last played match or its entry does not exist.
	// Only the result backfill is skipped.
	ErrNotFound = errors.New("not found")
)
