package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/maccabipedia/match-calendar/internal/logger"
	"github.com/maccabipedia/match-calendar/internal/match"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	// maxPageSize is the largest page the Events.list endpoint returns
	maxPageSize = 2500

	sharedURLKey    = "url"
	sharedResultKey = "result"
)

// NewGoogleService builds a Calendar API client from a service account key
func NewGoogleService(ctx context.Context, credentialsJSON []byte, opts ...option.ClientOption) (*gcal.Service, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	opts = append([]option.ClientOption{option.WithCredentials(creds)}, opts...)
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	return svc, nil
}

// GoogleStore implements Store on top of one Google calendar
type GoogleStore struct {
	svc        *gcal.Service
	calendarID string
	log        *logger.Logger
}

// NewGoogleStore creates a store for calendarID
func NewGoogleStore(svc *gcal.Service, calendarID string) *GoogleStore {
	return &GoogleStore{
		svc:        svc,
		calendarID: calendarID,
		log:        logger.Named("calendar"),
	}
}

// List fetches entries ending after the given instant, following pages until
// limit entries have been read
func (s *GoogleStore) List(ctx context.Context, after time.Time, limit int) ([]*match.Match, error) {
	s.log.Info("Listing entries", logger.Fields{
		"calendar": s.calendarID,
		"after":    after.Format(time.RFC3339),
		"limit":    limit,
	})

	entries := make([]*match.Match, 0)
	pageToken := ""

	for len(entries) < limit {
		call := s.svc.Events.List(s.calendarID).
			TimeMin(after.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(int64(min(limit-len(entries), maxPageSize))).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("listing events in %s: %w", s.calendarID, err)
		}

		for _, ev := range resp.Items {
			m, err := fromEvent(ev)
			if err != nil {
				s.log.Warn("Skipping unreadable entry", logger.Fields{"id": ev.Id, "error": err.Error()})
				continue
			}
			entries = append(entries, m)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}

	s.log.Info("Listed entries", logger.Fields{"calendar": s.calendarID, "count": len(entries)})
	return entries, nil
}

// Create inserts a new event
func (s *GoogleStore) Create(ctx context.Context, m *match.Match) (string, error) {
	created, err := s.svc.Events.Insert(s.calendarID, toEvent(m)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("creating event in %s: %w", s.calendarID, err)
	}

	s.log.Info("Event created", logger.Fields{
		"calendar": s.calendarID,
		"id":       created.Id,
		"link":     created.HtmlLink,
	})
	return created.Id, nil
}

// Update replaces title, location, description, source, shared annotations,
// start and end of the event
func (s *GoogleStore) Update(ctx context.Context, id string, m *match.Match) error {
	updated, err := s.svc.Events.Update(s.calendarID, id, toEvent(m)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("updating event %s in %s: %w", id, s.calendarID, err)
	}

	s.log.Info("Event updated", logger.Fields{
		"calendar":    s.calendarID,
		"id":          updated.Id,
		"summary":     updated.Summary,
		"start":       eventTime(updated.Start),
		"end":         eventTime(updated.End),
		"location":    updated.Location,
		"description": updated.Description,
	})
	return nil
}

// Delete removes an event
func (s *GoogleStore) Delete(ctx context.Context, id string) error {
	if err := s.svc.Events.Delete(s.calendarID, id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting event %s from %s: %w", id, s.calendarID, err)
	}

	s.log.Info("Event deleted", logger.Fields{"calendar": s.calendarID, "id": id})
	return nil
}

// CalendarInfo describes a calendar visible to the service account
type CalendarInfo struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	AccessRole string `json:"access_role"`
}

// ListCalendars returns every calendar the credentials can see
func ListCalendars(ctx context.Context, svc *gcal.Service) ([]CalendarInfo, error) {
	var calendars []CalendarInfo

	err := svc.CalendarList.List().Pages(ctx, func(page *gcal.CalendarList) error {
		for _, item := range page.Items {
			calendars = append(calendars, CalendarInfo{
				ID:         item.Id,
				Summary:    item.Summary,
				AccessRole: item.AccessRole,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing calendars: %w", err)
	}

	return calendars, nil
}

func toEvent(m *match.Match) *gcal.Event {
	return &gcal.Event{
		Summary:     m.Title,
		Location:    m.Location,
		Description: m.Description,
		Start: &gcal.EventDateTime{
			DateTime: m.Start.Format(time.RFC3339),
			TimeZone: m.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: m.End.Format(time.RFC3339),
			TimeZone: m.TimeZone,
		},
		Source: &gcal.EventSource{
			Url:   m.Source.URL,
			Title: m.Source.Title,
		},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Shared: map[string]string{
				sharedURLKey:    m.Shared.URL,
				sharedResultKey: m.Shared.Result,
			},
		},
	}
}

func fromEvent(ev *gcal.Event) (*match.Match, error) {
	start, err := parseEventTime(ev.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := parseEventTime(ev.End)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	m := &match.Match{
		ID:          ev.Id,
		Title:       ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		Start:       start,
		End:         end,
		TimeZone:    match.DefaultTimeZone,
	}
	if ev.Start != nil && ev.Start.TimeZone != "" {
		m.TimeZone = ev.Start.TimeZone
	}
	if ev.Source != nil {
		m.Source = match.SourceLink{URL: ev.Source.Url, Title: ev.Source.Title}
	}
	if ev.ExtendedProperties != nil {
		m.Shared = match.Shared{
			URL:    ev.ExtendedProperties.Shared[sharedURLKey],
			Result: ev.ExtendedProperties.Shared[sharedResultKey],
		}
	}

	return m, nil
}

func parseEventTime(dt *gcal.EventDateTime) (time.Time, error) {
	if dt == nil {
		return time.Time{}, fmt.Errorf("missing date")
	}
	if dt.DateTime != "" {
		return time.Parse(time.RFC3339, dt.DateTime)
	}
	// all-day entries only carry a date
	return time.ParseInLocation("2006-01-02", dt.Date, match.Location())
}

func eventTime(dt *gcal.EventDateTime) string {
	if dt == nil {
		return ""
	}
	if dt.DateTime != "" {
		return dt.DateTime
	}
	return dt.Date
}
