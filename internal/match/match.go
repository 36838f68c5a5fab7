package match

import (
	"errors"
	"time"
)

const (
	// Duration is the fixed length of every calendar entry.
	Duration = 2 * time.Hour

	// DefaultTimeZone is the zone the club publishes kick-off times in.
	DefaultTimeZone = "Asia/Jerusalem"
)

var (
	ErrMissingURL   = errors.New("match has no provenance URL")
	ErrMissingStart = errors.New("match has no start time")
)

// SourceLink points at the wiki page describing the match
type SourceLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Shared holds the annotations used to recognise a match across runs.
// URL is the club's page for the match, Result stays empty until it is played.
type Shared struct {
	URL    string `json:"url"`
	Result string `json:"result"`
}

// Match is a single fixture, either freshly scraped or read back from a calendar
type Match struct {
	ID          string     `json:"id,omitempty"` // empty until created in a calendar
	Title       string     `json:"title"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	TimeZone    string     `json:"time_zone"`
	Source      SourceLink `json:"source"`
	Shared      Shared     `json:"shared"`
}

// Location returns the club's time zone. Without a tz database it falls back
// to a fixed UTC+02:00 zone under the same name.
func Location() *time.Location {
	loc, err := time.LoadLocation(DefaultTimeZone)
	if err != nil {
		return time.FixedZone(DefaultTimeZone, 2*60*60)
	}
	return loc
}

// New creates a Match starting at start and lasting Duration
func New(title, location, description string, start time.Time, source SourceLink, shared Shared) *Match {
	tz := start.Location().String()
	if tz == "" || tz == "Local" || tz == "UTC" {
		tz = DefaultTimeZone
	}

	return &Match{
		Title:       title,
		Location:    location,
		Description: description,
		Start:       start,
		End:         start.Add(Duration),
		TimeZone:    tz,
		Source:      source,
		Shared:      shared,
	}
}

// URL returns the provenance URL, the identity key of the match
func (m *Match) URL() string {
	return m.Shared.URL
}

// Persisted reports whether the match has been written to a calendar
func (m *Match) Persisted() bool {
	return m.ID != ""
}

// Played reports whether a result has been recorded
func (m *Match) Played() bool {
	return m.Shared.Result != ""
}

// Validate checks the fields every scraped match must carry
func (m *Match) Validate() error {
	if m.Shared.URL == "" {
		return ErrMissingURL
	}
	if m.Start.IsZero() {
		return ErrMissingStart
	}
	return nil
}

// Clone returns a copy of the match with the given ID
func (m *Match) Clone(id string) *Match {
	c := *m
	c.ID = id
	return &c
}

// Changes lists the fields that differ between a stored entry and a fresh
// match. Only title, description, start and location are compared: a result
// appearing on its own is not a change here.
func Changes(stored, fresh *Match) []string {
	var changed []string

	if stored.Title != fresh.Title {
		changed = append(changed, "title")
	}
	if stored.Description != fresh.Description {
		changed = append(changed, "description")
	}
	if !stored.Start.Equal(fresh.Start) {
		changed = append(changed, "start")
	}
	if stored.Location != fresh.Location {
		changed = append(changed, "location")
	}

	return changed
}
