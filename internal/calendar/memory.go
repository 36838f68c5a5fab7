package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/maccabipedia/match-calendar/internal/match"
)

// Operation kinds recorded by MemoryStore
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Op is one write applied to a MemoryStore
type Op struct {
	Kind string
	ID   string
	URL  string
}

// MemoryStore keeps entries in process. It mirrors the Google Calendar
// listing semantics: entries are filtered on their end time and returned in
// start order.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*match.Match
	ops     []Op
	nextID  int
}

// NewMemoryStore creates a store holding copies of the given entries.
// Entries without an ID are assigned one.
func NewMemoryStore(entries ...*match.Match) *MemoryStore {
	s := &MemoryStore{entries: make(map[string]*match.Match)}
	for _, m := range entries {
		id := m.ID
		if id == "" {
			id = s.newID()
		}
		s.entries[id] = m.Clone(id)
	}
	return s
}

func (s *MemoryStore) newID() string {
	for {
		s.nextID++
		id := fmt.Sprintf("entry-%d", s.nextID)
		if _, taken := s.entries[id]; !taken {
			return id
		}
	}
}

// List returns copies of entries ending after the given instant
func (s *MemoryStore) List(_ context.Context, after time.Time, limit int) ([]*match.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*match.Match, 0)
	for _, m := range s.entries {
		if m.End.After(after) {
			result = append(result, m.Clone(m.ID))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Start.Equal(result[j].Start) {
			return result[i].Start.Before(result[j].Start)
		}
		return result[i].ID < result[j].ID
	})

	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Create stores a copy of m under a new ID
func (s *MemoryStore) Create(_ context.Context, m *match.Match) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	s.entries[id] = m.Clone(id)
	s.ops = append(s.ops, Op{Kind: OpCreate, ID: id, URL: m.Shared.URL})
	return id, nil
}

// Update replaces the entry with id
func (s *MemoryStore) Update(_ context.Context, id string, m *match.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("entry not found: %s", id)
	}
	s.entries[id] = m.Clone(id)
	s.ops = append(s.ops, Op{Kind: OpUpdate, ID: id, URL: m.Shared.URL})
	return nil
}

// Delete removes the entry with id
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("entry not found: %s", id)
	}
	delete(s.entries, id)
	s.ops = append(s.ops, Op{Kind: OpDelete, ID: id, URL: m.Shared.URL})
	return nil
}

// Get returns a copy of the entry with id, or nil
func (s *MemoryStore) Get(id string) *match.Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.entries[id]; ok {
		return m.Clone(id)
	}
	return nil
}

// Entries returns copies of all entries in start order
func (s *MemoryStore) Entries() []*match.Match {
	all, _ := s.List(context.Background(), time.Time{}, -1)
	return all
}

// Ops returns the writes applied since the store was created or last reset
func (s *MemoryStore) Ops() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops := make([]Op, len(s.ops))
	copy(ops, s.ops)
	return ops
}

// ResetOps clears the recorded writes
func (s *MemoryStore) ResetOps() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
}
