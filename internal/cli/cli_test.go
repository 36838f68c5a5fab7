package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

const upcomingPage = `<html><body>
<div class="fixtures-holder"><a href="/match/1">
<div class="Home"></div>
<div class="league-title">ליגת WINNER</div><div class="round">מחזור 14</div>
<div class="location"><span>5 דצמ 2099</span><div>20:30 בלומפילד</div></div>
<div class="holder notmaccabi nn">הפועל חיפה</div>
</a></div>
</body></html>`

// testSite is a fake club site and wiki plus a config file pointing at them
type testSite struct {
	configPath string
	dataDir    string
	wikiHits   atomic.Int32
}

// newSite serves one upcoming fixture and no played seasons, and writes a
// config file pointing at it
func newSite(t *testing.T) *testSite {
	t.Helper()

	site := &testSite{}

	mux := http.NewServeMux()
	mux.HandleFunc("/upcoming", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, upcomingPage)
	})
	mux.HandleFunc("/results", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body></body></html>")
	})
	mux.HandleFunc("/index.php", func(w http.ResponseWriter, r *http.Request) {
		site.wikiHits.Add(1)
		fmt.Fprint(w, `[{"_pageName":"מכבי תל אביב נגד הפועל חיפה 05-12-2099"}]`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	site.configPath = filepath.Join(dir, "config.yaml")
	site.dataDir = filepath.Join(dir, "data")
	content := fmt.Sprintf(`calendar: football
store: file
source:
  upcoming_url: "%[1]s/upcoming"
  season_url: "%[1]s/results?season={season}"
  first_season: 75
  wiki_url: "%[1]s"
`, server.URL)
	if err := os.WriteFile(site.configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FOOTBALL_CALENDAR_ID", "football-test")
	t.Setenv("DELETE_ALL_MATCHES", "false")
	t.Setenv("ADD_HISTORY_MATCHES", "false")
	t.Setenv("LOG_LEVEL", "")

	return site
}

func setupSite(t *testing.T) (configPath, dataDir string) {
	t.Helper()
	site := newSite(t)
	return site.configPath, site.dataDir
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func decodeRun(t *testing.T, out string) *RunOutput {
	t.Helper()

	var run RunOutput
	if err := json.Unmarshal([]byte(out), &run); err != nil {
		t.Fatalf("decoding output %q: %v", out, err)
	}
	if run.Result == nil {
		t.Fatal("output has no result")
	}
	return &run
}

func TestSync_FileStore(t *testing.T) {
	configPath, dataDir := setupSite(t)
	args := []string{"sync", "--config", configPath, "--data-dir", dataDir, "--format", "json"}

	out, err := executeCommand(t, args...)
	if err != nil {
		t.Fatalf("first sync error = %v", err)
	}
	first := decodeRun(t, out)
	if first.Result.Created != 1 {
		t.Errorf("first run Created = %d, want 1", first.Result.Created)
	}
	if first.Calendar != "football" || first.Store != "file" {
		t.Errorf("output = %+v", first)
	}

	out, err = executeCommand(t, args...)
	if err != nil {
		t.Fatalf("second sync error = %v", err)
	}
	second := decodeRun(t, out)
	if second.Result.Writes() != 0 || second.Result.Unchanged != 1 {
		t.Errorf("second run Result = %+v, want only one unchanged", second.Result)
	}

	if _, err := os.Stat(filepath.Join(dataDir, "calendar_football-test.json")); err != nil {
		t.Errorf("expected calendar file: %v", err)
	}
}

func TestSync_DryRun(t *testing.T) {
	configPath, dataDir := setupSite(t)

	out, err := executeCommand(t, "sync", "--config", configPath, "--data-dir", dataDir, "--dry-run")
	if err != nil {
		t.Fatalf("sync error = %v", err)
	}
	if !strings.Contains(out, "[dry run]") || !strings.Contains(out, "Created:    1") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = executeCommand(t, "export", "--config", configPath, "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if strings.Contains(out, "BEGIN:VEVENT") {
		t.Error("dry run should not have written any entry")
	}
}

func TestExport_AfterSync(t *testing.T) {
	configPath, dataDir := setupSite(t)

	if _, err := executeCommand(t, "sync", "--config", configPath, "--data-dir", dataDir); err != nil {
		t.Fatalf("sync error = %v", err)
	}

	outFile := filepath.Join(t.TempDir(), "football.ics")
	if _, err := executeCommand(t, "export", "--config", configPath, "--data-dir", dataDir, "-o", outFile); err != nil {
		t.Fatalf("export error = %v", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "BEGIN:VEVENT"); n != 1 {
		t.Errorf("exported %d events, want 1", n)
	}
}

func TestCalendars(t *testing.T) {
	configPath, _ := setupSite(t)
	t.Setenv("BASKETBALL_CALENDAR_ID", "basketball-test")

	out, err := executeCommand(t, "calendars", "--config", configPath)
	if err != nil {
		t.Fatalf("calendars error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "  basketball") || !strings.Contains(lines[0], "basketball-test") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "* football") || !strings.Contains(lines[1], "football-test") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestLogLevel(t *testing.T) {
	configPath, _ := setupSite(t)

	t.Setenv("LOG_LEVEL", "warn")
	if _, err := executeCommand(t, "calendars", "--config", configPath); err != nil {
		t.Fatalf("calendars error = %v", err)
	}

	t.Setenv("LOG_LEVEL", "verbose")
	_, err := executeCommand(t, "calendars", "--config", configPath)
	if err == nil || !strings.Contains(err.Error(), "unknown log level") {
		t.Errorf("error = %v, want unknown log level", err)
	}
}

func TestCommandErrors(t *testing.T) {
	configPath, dataDir := setupSite(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"invalid format", []string{"sync", "--config", configPath, "--format", "xml"}, "invalid format"},
		{"invalid store", []string{"sync", "--config", configPath, "--store", "sqlite"}, "invalid store"},
		{"unknown sport", []string{"sync", "--config", configPath, "--calendar", "handball", "--data-dir", dataDir}, "HANDBALL_CALENDAR_ID"},
		{"invalid sort", []string{"export", "--config", configPath, "--sort", "venue"}, "invalid sort order"},
		{"invalid schedule", []string{"watch", "--config", configPath, "--data-dir", dataDir, "--schedule", "every day", "--run-now=false"}, "invalid schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, should contain %q", err, tt.want)
			}
		})
	}
}

func TestWriteICSFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "football.ics")
	if err := writeICSFile(path, "football", nil); err != nil {
		t.Fatalf("writeICSFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "END:VCALENDAR") {
		t.Errorf("file should hold a complete calendar, got %q", data)
	}

	if err := writeICSFile(filepath.Join(dir, "missing", "football.ics"), "football", nil); err == nil {
		t.Error("expected error for a path in a missing directory")
	}
}
