package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/maccabipedia/match-calendar/internal/calendar"
	"github.com/maccabipedia/match-calendar/internal/match"
)

func main() {
	// A sample fixture as the scraper would produce it
	start := time.Date(2026, 12, 5, 20, 30, 0, 0, match.Location())
	m := match.New(
		"⚽ הפועל חיפה - בית",
		"אצטדיון בלומפילד",
		"ליגת העל, מחזור 14\nספורט1\n<a href=\"https://www.maccabipedia.co.il\">מכביפדיה</a>",
		start,
		match.SourceLink{URL: "https://www.maccabipedia.co.il/", Title: "עמוד המשחק"},
		match.Shared{URL: "https://www.maccabi-tlv.co.il/match/sample/"},
	)

	var buf bytes.Buffer
	if err := calendar.WriteICS(&buf, "football", []*match.Match{m}); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating calendar: %v\n", err)
		os.Exit(1)
	}

	// Write to file (owner read/write only)
	filename := "test-match.ics"
	if err := os.WriteFile(filename, buf.Bytes(), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated calendar file: %s\n\n", filename)
	fmt.Println("Import it into Google Calendar, Apple Calendar or Outlook to check")
	fmt.Println("the title, the Hebrew description and the Asia/Jerusalem start time.")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(buf.String())
	fmt.Println("---")
}
