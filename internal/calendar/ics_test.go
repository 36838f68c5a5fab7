package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/maccabipedia/match-calendar/internal/match"
)

func TestWriteICS(t *testing.T) {
	start := time.Date(2026, 3, 15, 19, 30, 0, 0, match.Location())
	first := entryAt("a", "https://example.com/match/1", start)
	first.Title = "⚽ הפועל באר שבע - בית"
	first.Description = "ליגת העל, מחזור 24\nספורט1"
	second := entryAt("b", "https://example.com/match/2", start.Add(7*24*time.Hour))

	var buf bytes.Buffer
	if err := WriteICS(&buf, "Football", []*match.Match{first, second}); err != nil {
		t.Fatalf("WriteICS() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "METHOD:PUBLISH") {
		t.Fatalf("unexpected calendar header:\n%s", out)
	}

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseCalendar() error = %v", err)
	}

	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	summary := events[0].GetProperty(ical.ComponentPropertySummary)
	if summary == nil || summary.Value != first.Title {
		t.Errorf("summary = %v, want %q", summary, first.Title)
	}

	gotStart, err := events[0].GetStartAt()
	if err != nil {
		t.Fatalf("GetStartAt() error = %v", err)
	}
	if !gotStart.Equal(start) {
		t.Errorf("start = %v, want %v", gotStart, start)
	}

	if events[0].Id() == events[1].Id() {
		t.Error("expected distinct UIDs")
	}
}

func TestEventUID_StableAcrossIDs(t *testing.T) {
	start := time.Date(2026, 3, 15, 19, 30, 0, 0, match.Location())
	a := entryAt("id-1", "https://example.com/match/1", start)
	b := entryAt("id-2", "https://example.com/match/1", start)

	if eventUID(a) != eventUID(b) {
		t.Error("UID should depend on the provenance URL only")
	}
}
