package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/vntrieu/werewolf/internal/analysis"
	"github.com/vntrieu/werewolf/internal/gamelog"
)

var errNoLogs = errors.New("no valid game logs found")

// replay prints the summary of a saved game, and its timeline when asked.
func replay(w io.Writer, path string, timeline bool) error {
	l, err := gamelog.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, analysis.Summary(l))
	if timeline {
		fmt.Fprintln(w)
		fmt.Fprintln(w, analysis.Timeline(l))
	}
	return nil
}

// analyzeDir prints the aggregate report over every saved game in dir. Unreadable logs are
// logged and skipped.
func analyzeDir(w io.Writer, dir string, log zerolog.Logger) error {
	logs, errs := gamelog.LoadDir(dir)
	for _, err := range errs {
		log.Warn().Err(err).Msg("skipping game log")
	}
	if len(logs) == 0 {
		return fmt.Errorf("%w in %s", errNoLogs, dir)
	}
	fmt.Fprintln(w, analysis.AggregateLogs(logs).Report())
	return nil
}
