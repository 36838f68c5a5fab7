package match

import (
	"fmt"
	"strconv"
	"strings"
)

// Outcome words as they appear in the calendar description
const (
	OutcomeWin  = "ניצחון"
	OutcomeDraw = "תיקו"
	OutcomeLoss = "הפסד"
)

// FormatResult builds the result text from the team's and the rival's score,
// e.g. "ניצחון 2 - 1". It returns "" when either score is missing.
func FormatResult(teamScore, rivalScore string) string {
	teamScore = strings.TrimSpace(teamScore)
	rivalScore = strings.TrimSpace(rivalScore)
	if teamScore == "" || rivalScore == "" {
		return ""
	}

	outcome := compareScores(teamScore, rivalScore)
	return fmt.Sprintf("%s %s - %s", outcome, teamScore, rivalScore)
}

// compareScores compares numerically and falls back to plain string
// comparison for scores such as "3 (4)" after penalties
func compareScores(team, rival string) string {
	t, errT := strconv.Atoi(team)
	r, errR := strconv.Atoi(rival)

	var cmp int
	if errT == nil && errR == nil {
		cmp = t - r
	} else {
		cmp = strings.Compare(team, rival)
	}

	switch {
	case cmp > 0:
		return OutcomeWin
	case cmp == 0:
		return OutcomeDraw
	default:
		return OutcomeLoss
	}
}
