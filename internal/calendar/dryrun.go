package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/maccabipedia/match-calendar/internal/logger"
	"github.com/maccabipedia/match-calendar/internal/match"
)

// DryRunStore reads from the wrapped store and only logs the writes it would
// make
type DryRunStore struct {
	next    Store
	log     *logger.Logger
	created int
}

// NewDryRunStore wraps next
func NewDryRunStore(next Store) *DryRunStore {
	return &DryRunStore{next: next, log: logger.Named("dry-run")}
}

// List delegates to the wrapped store
func (s *DryRunStore) List(ctx context.Context, after time.Time, limit int) ([]*match.Match, error) {
	return s.next.List(ctx, after, limit)
}

// Create logs the entry and returns a placeholder ID
func (s *DryRunStore) Create(_ context.Context, m *match.Match) (string, error) {
	s.created++
	id := fmt.Sprintf("dry-run-%d", s.created)
	s.log.Info("Would create entry", entryFields(id, m))
	return id, nil
}

// Update logs the entry
func (s *DryRunStore) Update(_ context.Context, id string, m *match.Match) error {
	s.log.Info("Would update entry", entryFields(id, m))
	return nil
}

// Delete logs the id
func (s *DryRunStore) Delete(_ context.Context, id string) error {
	s.log.Info("Would delete entry", logger.Fields{"id": id})
	return nil
}

func entryFields(id string, m *match.Match) logger.Fields {
	return logger.Fields{
		"id":       id,
		"title":    m.Title,
		"start":    m.Start.Format(time.RFC3339),
		"location": m.Location,
		"url":      m.Shared.URL,
		"result":   m.Shared.Result,
	}
}
