package cli

import (
	"sort"
	"strings"

	"github.com/maccabipedia/match-calendar/internal/match"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByStart SortOrder = "start"
	SortByTitle SortOrder = "title"
)

// sortMatches sorts matches in place based on the specified sort order
func sortMatches(matches []*match.Match, order SortOrder) {
	switch order {
	case SortByStart:
		sort.SliceStable(matches, func(i, j int) bool {
			return compareByStart(matches[i], matches[j])
		})
	case SortByTitle:
		sort.SliceStable(matches, func(i, j int) bool {
			ti, tj := strings.ToLower(matches[i].Title), strings.ToLower(matches[j].Title)
			if ti != tj {
				return ti < tj
			}
			// If titles are equal, sort by start
			return compareByStart(matches[i], matches[j])
		})
	}
}

// compareByStart orders by start instant, then by provenance URL
func compareByStart(i, j *match.Match) bool {
	if !i.Start.Equal(j.Start) {
		return i.Start.Before(j.Start)
	}
	return i.URL() < j.URL()
}
