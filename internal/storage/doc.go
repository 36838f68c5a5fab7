// Package storage provides a JSON file-backed calendar store.
//
// FileStore lets the sync run without a Google account: every calendar id gets
// its own file (calendar_<id>.json) under the data directory, rewritten after
// each create, update or delete. The default data directory is
// $XDG_DATA_HOME/match-calendar.
package storage
