package calendar

import (
	"crypto/sha1"
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/maccabipedia/match-calendar/internal/match"
)

const icsProductID = "-//MaccabiPedia//match-calendar//HE"

// WriteICS writes matches as an iCalendar document. The UID of every event is
// derived from the provenance URL so that re-imports replace earlier copies.
func WriteICS(w io.Writer, name string, matches []*match.Match) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)
	if name != "" {
		cal.SetName(name)
		cal.SetXWRCalName(name)
	}
	cal.SetTimezoneId(match.DefaultTimeZone)

	now := time.Now().UTC()
	for _, m := range matches {
		ev := cal.AddEvent(eventUID(m))
		ev.SetDtStampTime(now)
		ev.SetStartAt(m.Start)
		ev.SetEndAt(m.End)
		ev.SetSummary(m.Title)
		ev.SetLocation(m.Location)
		ev.SetDescription(m.Description)
		if m.Shared.URL != "" {
			ev.SetURL(m.Shared.URL)
		}
		ev.SetStatus(ical.ObjectStatusConfirmed)
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

func eventUID(m *match.Match) string {
	key := m.Shared.URL
	if key == "" {
		key = m.ID
	}
	return fmt.Sprintf("%x@match-calendar", sha1.Sum([]byte(key)))
}
