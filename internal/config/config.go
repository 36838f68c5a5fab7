// Package config loads match-calendar settings from an optional YAML file and
// the environment.
//
// Values are resolved in order: built-in defaults, the YAML file, then
// environment variables. Any variable named <SPORT>_CALENDAR_ID adds the
// lowercased sport to the calendar map, so new calendars need no code change.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/maccabipedia/match-calendar/internal/scraper"
)

const (
	StoreGoogle = "google"
	StoreFile   = "file"

	calendarIDSuffix = "_CALENDAR_ID"
)

// SourceConfig locates the pages scraped for matches
type SourceConfig struct {
	// UpcomingURL lists the fixtures that have not been played yet.
	UpcomingURL string `yaml:"upcoming_url"`
	// SeasonURL contains scraper.SeasonPlaceholder where the season number goes.
	SeasonURL string `yaml:"season_url"`
	// FirstSeason is the first season number probed during discovery.
	FirstSeason int `yaml:"first_season"`
	// WikiURL is the base URL of the wiki linked from every entry.
	WikiURL string `yaml:"wiki_url"`
}

// Config is the top-level application configuration
type Config struct {
	Calendar        string            `yaml:"calendar"`
	Calendars       map[string]string `yaml:"calendars"`
	DeleteAll       bool              `yaml:"delete_all"`
	AddHistory      bool              `yaml:"add_history"`
	FetchLimit      int               `yaml:"fetch_limit"`
	Debug           bool              `yaml:"debug"`
	LogLevel        string            `yaml:"log_level"`
	Schedule        string            `yaml:"schedule"`
	Store           string            `yaml:"store"`
	DataDir         string            `yaml:"data_dir"`
	CredentialsFile string            `yaml:"credentials_file"`
	Source          SourceConfig      `yaml:"source"`

	// Credentials holds the service account JSON. It is only read from the
	// environment and never written to disk.
	Credentials string `yaml:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Calendar:   "football",
		Calendars:  map[string]string{},
		FetchLimit: 3000,
		Schedule:   "0 */6 * * *",
		Store:      StoreGoogle,
		DataDir:    filepath.Join(xdg.DataHome, "match-calendar"),
		Source: SourceConfig{
			UpcomingURL: "https://www.maccabi-tlv.co.il/%d7%9e%d7%a9%d7%97%d7%a7%d7%99%d7%9d-%d7%95%d7%aa%d7%95%d7%a6%d7%90%d7%95%d7%aa/%d7%94%d7%a7%d7%91%d7%95%d7%a6%d7%94-%d7%94%d7%91%d7%95%d7%92%d7%a8%d7%aa/%d7%9c%d7%95%d7%97-%d7%9e%d7%a9%d7%97%d7%a7%d7%99%d7%9d/",
			SeasonURL:   "https://www.maccabi-tlv.co.il/%d7%9e%d7%a9%d7%97%d7%a7%d7%99%d7%9d-%d7%95%d7%aa%d7%95%d7%a6%d7%90%d7%95%d7%aa/%d7%94%d7%a7%d7%91%d7%95%d7%a6%d7%94-%d7%94%d7%91%d7%95%d7%92%d7%a8%d7%aa/%d7%aa%d7%95%d7%a6%d7%90%d7%95%d7%aa/?season=" + scraper.SeasonPlaceholder + "#content",
			FirstSeason: 75,
			WikiURL:     "https://www.maccabipedia.co.il",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies the
// environment. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if err := cfg.ApplyEnv(os.Environ()); err != nil {
		return nil, err
	}

	cfg.normalize()
	return cfg, nil
}

// ApplyEnv overrides fields from KEY=VALUE pairs
func (c *Config) ApplyEnv(environ []string) error {
	if c.Calendars == nil {
		c.Calendars = map[string]string{}
	}

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}

		var err error
		switch key {
		case "CALENDAR_TO_UPDATE":
			c.Calendar = value
		case "DELETE_ALL_MATCHES":
			c.DeleteAll, err = strconv.ParseBool(value)
		case "ADD_HISTORY_MATCHES":
			c.AddHistory, err = strconv.ParseBool(value)
		case "DEBUG_MODE":
			c.Debug, err = strconv.ParseBool(value)
		case "LOG_LEVEL":
			c.LogLevel = value
		case "NUMBER_OF_EVENTS_TO_FETCH":
			c.FetchLimit, err = strconv.Atoi(value)
		case "GOOGLE_CREDENTIALS":
			c.Credentials = value
		case "GOOGLE_CREDENTIALS_FILE":
			c.CredentialsFile = value
		case "MATCH_CALENDAR_STORE":
			c.Store = value
		case "MATCH_CALENDAR_SCHEDULE":
			c.Schedule = value
		default:
			if sport, found := strings.CutSuffix(key, calendarIDSuffix); found && sport != "" {
				c.Calendars[strings.ToLower(sport)] = value
			}
		}
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}

	return nil
}

func (c *Config) normalize() {
	c.Calendar = strings.ToLower(strings.TrimSpace(c.Calendar))
	if c.Calendar == "" {
		c.Calendar = "football"
	}
	if c.FetchLimit <= 0 {
		c.FetchLimit = 3000
	}
	if c.Store == "" {
		c.Store = StoreGoogle
	}
	if strings.HasPrefix(c.DataDir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.DataDir = filepath.Join(home, c.DataDir[2:])
		}
	}
}

// Validate checks the settings a sync run depends on
func (c *Config) Validate() error {
	switch c.Store {
	case StoreGoogle, StoreFile:
	default:
		return fmt.Errorf("invalid store: %s (must be '%s' or '%s')", c.Store, StoreGoogle, StoreFile)
	}

	if _, err := c.CalendarID(); err != nil {
		return err
	}

	if c.Source.UpcomingURL == "" {
		return fmt.Errorf("source upcoming_url is required")
	}
	if !strings.Contains(c.Source.SeasonURL, scraper.SeasonPlaceholder) {
		return fmt.Errorf("source season_url must contain %s", scraper.SeasonPlaceholder)
	}

	return nil
}

// CalendarID returns the calendar id for the selected sport
func (c *Config) CalendarID() (string, error) {
	id, ok := c.Calendars[c.Calendar]
	if !ok || id == "" {
		return "", fmt.Errorf("no calendar id configured for %q (set %s%s)",
			c.Calendar, strings.ToUpper(c.Calendar), calendarIDSuffix)
	}
	return id, nil
}

// Sports returns the configured sports in alphabetical order
func (c *Config) Sports() []string {
	sports := make([]string, 0, len(c.Calendars))
	for sport := range c.Calendars {
		sports = append(sports, sport)
	}
	sort.Strings(sports)
	return sports
}

// CredentialsJSON returns the service account key, preferring the
// environment over the credentials file
func (c *Config) CredentialsJSON() ([]byte, error) {
	if c.Credentials != "" {
		return []byte(c.Credentials), nil
	}
	if c.CredentialsFile == "" {
		return nil, fmt.Errorf("google credentials are required (set GOOGLE_CREDENTIALS or credentials_file)")
	}

	data, err := os.ReadFile(c.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	return data, nil
}
