package calendar

import (
	"context"
	"time"

	"github.com/maccabipedia/match-calendar/internal/match"
)

// Store is a remote set of calendar entries for one calendar
type Store interface {
	// List returns at most limit entries that end after the given instant,
	// ordered by start time.
	List(ctx context.Context, after time.Time, limit int) ([]*match.Match, error)

	// Create writes a new entry and returns the identifier the store assigned.
	Create(ctx context.Context, m *match.Match) (string, error)

	// Update replaces the entry with the given id.
	Update(ctx context.Context, id string, m *match.Match) error

	// Delete removes the entry with the given id.
	Delete(ctx context.Context, id string) error
}
