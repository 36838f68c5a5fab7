package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maccabipedia/match-calendar/internal/calendar"
	"github.com/maccabipedia/match-calendar/internal/match"
)

// snapshot is the on-disk layout of one calendar
type snapshot struct {
	CalendarID string         `json:"calendar_id"`
	Entries    []*match.Match `json:"entries"`
	UpdatedAt  string         `json:"updated_at"` // RFC3339 timestamp
}

// FileStore implements calendar.Store on top of a JSON file
type FileStore struct {
	path       string
	calendarID string
	mem        *calendar.MemoryStore
}

// Open loads the file for calendarID from dataDir, creating the directory if needed
func Open(dataDir, calendarID string) (*FileStore, error) {
	if calendarID == "" {
		return nil, fmt.Errorf("calendar id is required")
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &FileStore{
		path:       filepath.Join(dataDir, fileName(calendarID)),
		calendarID: calendarID,
	}

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	s.mem = calendar.NewMemoryStore(entries...)

	return s, nil
}

// Path returns the file backing the store
func (s *FileStore) Path() string {
	return s.path
}

func fileName(calendarID string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	return fmt.Sprintf("calendar_%s.json", r.Replace(calendarID))
}

func (s *FileStore) load() ([]*match.Match, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading calendar file: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing calendar file: %w", err)
	}

	if snap.CalendarID != "" && snap.CalendarID != s.calendarID {
		return nil, fmt.Errorf("calendar file %s belongs to %s", s.path, snap.CalendarID)
	}

	return snap.Entries, nil
}

func (s *FileStore) save() error {
	snap := snapshot{
		CalendarID: s.calendarID,
		Entries:    s.mem.Entries(),
		UpdatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding calendar file: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing calendar file: %w", err)
	}

	return nil
}

// List returns stored entries ending after the given instant
func (s *FileStore) List(ctx context.Context, after time.Time, limit int) ([]*match.Match, error) {
	return s.mem.List(ctx, after, limit)
}

// Create adds an entry and rewrites the file
func (s *FileStore) Create(ctx context.Context, m *match.Match) (string, error) {
	id, err := s.mem.Create(ctx, m)
	if err != nil {
		return "", err
	}
	if err := s.save(); err != nil {
		return "", err
	}
	return id, nil
}

// Update replaces an entry and rewrites the file
func (s *FileStore) Update(ctx context.Context, id string, m *match.Match) error {
	if err := s.mem.Update(ctx, id, m); err != nil {
		return err
	}
	return s.save()
}

// Delete removes an entry and rewrites the file
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := s.mem.Delete(ctx, id); err != nil {
		return err
	}
	return s.save()
}
