package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/maccabipedia/match-calendar/internal/match"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func newTestGoogleStore(t *testing.T, handler http.HandlerFunc) *GoogleStore {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := gcal.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return NewGoogleStore(svc, "team@group.calendar.google.com")
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func TestGoogleStore_List(t *testing.T) {
	pages := 0
	store := newTestGoogleStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !strings.HasSuffix(r.URL.Path, "/events") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}

		q := r.URL.Query()
		if q.Get("singleEvents") != "true" || q.Get("orderBy") != "startTime" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if q.Get("timeMin") == "" {
			t.Error("timeMin missing")
		}

		pages++
		if q.Get("pageToken") == "" {
			writeJSON(t, w, map[string]interface{}{
				"items": []map[string]interface{}{{
					"id":       "evt-1",
					"summary":  "⚽ בני סכנין - חוץ",
					"location": "אצטדיון דוחה",
					"start":    map[string]string{"dateTime": "2026-11-01T19:00:00+02:00", "timeZone": "Asia/Jerusalem"},
					"end":      map[string]string{"dateTime": "2026-11-01T21:00:00+02:00", "timeZone": "Asia/Jerusalem"},
					"source":   map[string]string{"url": "https://www.maccabipedia.co.il/x", "title": "עמוד המשחק"},
					"extendedProperties": map[string]interface{}{
						"shared": map[string]string{"url": "https://example.com/match/1", "result": ""},
					},
				}},
				"nextPageToken": "page-2",
			})
			return
		}

		writeJSON(t, w, map[string]interface{}{
			"items": []map[string]interface{}{{
				"id":    "evt-2",
				"start": map[string]string{"dateTime": "2026-11-08T20:00:00+02:00"},
				"end":   map[string]string{"dateTime": "2026-11-08T22:00:00+02:00"},
			}},
		})
	})

	entries, err := store.List(context.Background(), time.Now(), 3000)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if pages != 2 {
		t.Errorf("expected 2 pages to be fetched, got %d", pages)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.ID != "evt-1" || first.Shared.URL != "https://example.com/match/1" {
		t.Errorf("first entry = %+v", first)
	}
	if first.Source.Title != "עמוד המשחק" {
		t.Errorf("source title = %q", first.Source.Title)
	}
	wantStart := time.Date(2026, 11, 1, 17, 0, 0, 0, time.UTC)
	if !first.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", first.Start, wantStart)
	}

	if entries[1].Shared.URL != "" {
		t.Errorf("entry without extended properties should have empty url, got %q", entries[1].Shared.URL)
	}
}

func TestGoogleStore_Writes(t *testing.T) {
	var gotMethods []string
	var inserted gcal.Event

	store := newTestGoogleStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethods = append(gotMethods, r.Method)

		switch r.Method {
		case http.MethodPost:
			if err := json.NewDecoder(r.Body).Decode(&inserted); err != nil {
				t.Errorf("decoding insert body: %v", err)
			}
			writeJSON(t, w, map[string]string{"id": "new-id", "htmlLink": "https://calendar.google.com/event?eid=1"})
		case http.MethodPut:
			if !strings.HasSuffix(r.URL.Path, "/events/evt-9") {
				t.Errorf("update path = %s", r.URL.Path)
			}
			writeJSON(t, w, map[string]interface{}{
				"id":    "evt-9",
				"start": map[string]string{"dateTime": "2026-11-01T19:00:00+02:00"},
				"end":   map[string]string{"dateTime": "2026-11-01T21:00:00+02:00"},
			})
		case http.MethodDelete:
			if strings.HasSuffix(r.URL.Path, "/events/gone") {
				w.WriteHeader(http.StatusGone)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	ctx := context.Background()
	start := time.Date(2026, 11, 1, 19, 0, 0, 0, match.Location())
	m := entryAt("", "https://example.com/match/1", start)
	m.Shared.Result = "תיקו 1 - 1"

	id, err := store.Create(ctx, m)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id != "new-id" {
		t.Errorf("Create() id = %q, want new-id", id)
	}
	if inserted.ExtendedProperties == nil || inserted.ExtendedProperties.Shared["url"] != m.Shared.URL {
		t.Errorf("insert body missing shared url: %+v", inserted.ExtendedProperties)
	}
	if inserted.ExtendedProperties.Shared["result"] != "תיקו 1 - 1" {
		t.Errorf("insert body result = %q", inserted.ExtendedProperties.Shared["result"])
	}
	if inserted.Start.TimeZone != match.DefaultTimeZone {
		t.Errorf("insert start time zone = %q", inserted.Start.TimeZone)
	}

	if err := store.Update(ctx, "evt-9", m); err != nil {
		t.Errorf("Update() error = %v", err)
	}
	if err := store.Delete(ctx, "evt-9"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "gone"); err == nil {
		t.Error("Delete() expected error for 410 response")
	}

	want := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodDelete}
	if strings.Join(gotMethods, ",") != strings.Join(want, ",") {
		t.Errorf("methods = %v, want %v", gotMethods, want)
	}
}

func TestFromEvent_AllDay(t *testing.T) {
	m, err := fromEvent(&gcal.Event{
		Id:    "all-day",
		Start: &gcal.EventDateTime{Date: "2026-05-01"},
		End:   &gcal.EventDateTime{Date: "2026-05-02"},
	})
	if err != nil {
		t.Fatalf("fromEvent() error = %v", err)
	}
	if m.Start.Day() != 1 || m.End.Day() != 2 {
		t.Errorf("unexpected dates %v - %v", m.Start, m.End)
	}
}

func TestFromEvent_MissingStart(t *testing.T) {
	if _, err := fromEvent(&gcal.Event{Id: "broken"}); err == nil {
		t.Error("expected error for event without start")
	}
}
