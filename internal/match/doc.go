// Package match provides the match record shared by the scraper, the calendar
// stores and the reconciler.
//
// A Match scraped from the club website has no ID. Once it is written to a
// calendar it becomes a calendar entry and carries the ID assigned by the
// store. Two records describe the same real-world match when their shared
// provenance URL (the club's page for that match) is equal; titles and dates
// are never used as identity because a match can be rescheduled without its
// page changing.
package match
