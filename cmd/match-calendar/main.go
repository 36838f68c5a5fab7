package main

import (
	_ "time/tzdata"

	"github.com/maccabipedia/match-calendar/internal/cli"
)

func main() {
	cli.Execute()
}
