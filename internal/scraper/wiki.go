package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/maccabipedia/match-calendar/internal/logger"
)

const (
	matchPageTitle = "עמוד המשחק"
	wikiHomeTitle  = "מכביפדיה"
)

var whitespace = regexp.MustCompile(`\s+`)

type cargoRow struct {
	PageName string `json:"_pageName"`
}

// cargoURL queries the wiki's football games table for a match date
func (s *Scraper) cargoURL(day time.Time) string {
	q := url.Values{}
	q.Set("title", "Special:CargoExport")
	q.Set("format", "json")
	q.Set("tables", "Football_Games")
	q.Set("fields", "_pageName")
	q.Set("where", fmt.Sprintf("Football_Games.Date='%s'", dayKey(day)))
	return s.wikiURL + "/index.php?" + q.Encode()
}

// wikiPage returns the wiki page name of the match played on the day of
// start, with spaces turned into underscores, or "" when the wiki has none.
func (s *Scraper) wikiPage(ctx context.Context, start time.Time) string {
	if page, ok := s.wiki.get(start); ok {
		return page
	}

	page, err := s.lookupWikiPage(ctx, start)
	if err != nil {
		s.log.Warn("Wiki lookup failed", logger.Fields{"date": dayKey(start), "reason": err.Error()})
		return ""
	}

	s.wiki.set(start, page)
	return page
}

func (s *Scraper) lookupWikiPage(ctx context.Context, start time.Time) (string, error) {
	resp, err := s.do(ctx, s.cargoURL(start))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var rows []cargoRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return "", fmt.Errorf("decoding cargo export: %w", err)
	}

	if len(rows) == 0 || rows[0].PageName == "" {
		return "", nil
	}
	return whitespace.ReplaceAllString(rows[0].PageName, "_"), nil
}

// wikiAnchor links the match page, or the wiki home page when page is empty
func (s *Scraper) wikiAnchor(page string) string {
	if page == "" {
		return fmt.Sprintf(`<a href="%s">%s</a>`, s.wikiURL, wikiHomeTitle)
	}
	return fmt.Sprintf(`<a href="%s/%s">%s</a>`, s.wikiURL, page, matchPageTitle)
}
