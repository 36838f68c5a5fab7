// Package cli implements the command-line interface for match-calendar.
//
// The root command carries the settings shared by every subcommand (config
// file, sport, store backend, data directory, verbosity); sync, watch,
// calendars and export each add their own flags. Settings resolve as
// defaults, then the YAML file, then the environment, then flags.
package cli
