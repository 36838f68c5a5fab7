package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"github.com/maccabipedia/match-calendar/internal/logger"
	"github.com/maccabipedia/match-calendar/internal/match"
)

const (
	homeSuffix      = " - בית"
	awaySuffix      = " - חוץ"
	titlePrefix     = "⚽ "
	unknownOpponent = "יריבה לא ידועה"

	// default kick-off when the site has not published a time yet
	defaultHour   = 20
	defaultMinute = 0
)

var (
	errMissingLink     = errors.New("missing match link")
	errMissingLocation = errors.New("missing location block")
	errMissingDate     = errors.New("missing date")
)

// parseFixture builds a match from one div.fixtures-holder block
func (s *Scraper) parseFixture(ctx context.Context, base *url.URL, sel *goquery.Selection) (*match.Match, error) {
	href, ok := sel.Find("a[href]").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return nil, errMissingLink
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, fmt.Errorf("parsing match link: %w", err)
	}
	matchURL := base.ResolveReference(ref).String()

	location := sel.Find("div.location").First()
	if location.Length() == 0 {
		return nil, errMissingLocation
	}

	dateText := strings.TrimSpace(location.Find("span").First().Text())
	if dateText == "" {
		return nil, errMissingDate
	}
	clock, venue := splitTimeVenue(location.Find("div").First().Text())

	start, err := parseKickoff(dateText, clock, match.Location())
	if err != nil {
		return nil, err
	}

	home := sel.Find("div.Home").Length() > 0

	opponent := strings.TrimSpace(sel.Find("div.holder.notmaccabi.nn").First().Text())
	if opponent == "" {
		opponent = unknownOpponent
	}

	fixture := competitionName(sel.Find("div.league-title").First().Text())
	if round := sel.Find("div.round").First(); round.Length() > 0 {
		fixture = fixture + ", " + strings.TrimSpace(round.Text())
	}

	scores := sel.Find("div.holder.split").First()
	result := match.FormatResult(
		scores.Find("span.ss.maccabi.h").First().Text(),
		scores.Find("span.ss.h:not(.maccabi)").First().Text(),
	)

	channel := s.channel(ctx, matchURL)
	page := s.wikiPage(ctx, start)

	var desc strings.Builder
	desc.WriteString(fixture)
	if result != "" {
		desc.WriteString("\n" + result)
	}
	if channel != "" {
		desc.WriteString("\n" + channel)
	}
	desc.WriteString("\n" + s.wikiAnchor(page))

	m := match.New(
		titlePrefix+opponent+lo.Ternary(home, homeSuffix, awaySuffix),
		stadiumName(venue),
		desc.String(),
		start,
		match.SourceLink{URL: s.wikiURL + "/" + page, Title: matchPageTitle},
		match.Shared{URL: matchURL, Result: result},
	)

	return m, nil
}

// splitTimeVenue splits "20:30 בלומפילד" into the clock and the venue.
// A missing clock yields an empty first value.
func splitTimeVenue(text string) (string, string) {
	text = strings.TrimSpace(text)
	first, rest, _ := strings.Cut(text, " ")
	if _, _, err := parseClock(first); err == nil {
		return first, strings.TrimSpace(rest)
	}
	return "", text
}

// parseKickoff reads "DD MON YYYY" with a Hebrew month and an optional
// "HH:MM" clock in loc
func parseKickoff(dateText, clock string, loc *time.Location) (time.Time, error) {
	parts := strings.Fields(dateText)
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date %q", dateText)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid day in %q", dateText)
	}
	month, ok := monthNumber(parts[1])
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month in %q", dateText)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in %q", dateText)
	}

	hour, minute := defaultHour, defaultMinute
	if clock != "" {
		hour, minute, err = parseClock(clock)
		if err != nil {
			return time.Time{}, err
		}
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc), nil
}

func parseClock(clock string) (int, int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q", clock)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", clock)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return hour, minute, nil
}

// channel reads the broadcaster logo from the club's match page. Failures
// only cost the channel line.
func (s *Scraper) channel(ctx context.Context, matchURL string) string {
	doc, err := s.document(ctx, matchURL)
	if err != nil {
		s.log.Warn("Could not read match page", logger.Fields{"url": matchURL, "reason": err.Error()})
		return ""
	}

	logo, _ := doc.Find("div.tv img").First().Attr("src")
	return channelName(logo)
}
