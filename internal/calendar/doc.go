// Package calendar provides the calendar stores the reconciler writes to.
//
// A Store is scoped to a single calendar and exposes list, create, update and
// delete over match entries. GoogleStore talks to the Google Calendar API,
// MemoryStore keeps entries in process, and DryRunStore wraps another store so
// that reads are real and writes are only logged. WriteICS exports entries as
// an iCalendar file.
package calendar
