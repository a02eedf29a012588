// Command simulate plays seeded all-bot games in process and prints aggregate statistics.
// With -replay it prints a saved game instead, and with -analyze it reports on a directory
// of saved games.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/vntrieu/werewolf/internal/analysis"
	"github.com/vntrieu/werewolf/internal/config"
	"github.com/vntrieu/werewolf/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stderr := zerolog.New(os.Stderr)
		stderr.Fatal().Err(err).Msg("load config")
	}

	opts := options{variants: cfg.Variants, maxDays: cfg.MaxDays}
	var rulesFile, logLevel, replayFile, analyzeDirPath string
	flag.IntVar(&opts.games, "games", 10, "number of games to play")
	flag.Int64Var(&opts.seed, "seed", 1, "seed of the first game; game i uses seed+i")
	flag.StringVar(&opts.roleSet, "role-set", "A", "role set: A (guard) or B (village idiot)")
	flag.IntVar(&opts.parallel, "parallel", 4, "games played at once")
	flag.Float64Var(&opts.selfExplodeRate, "self-explode-rate", 0, "chance a werewolf bot self-explodes when offered")
	flag.StringVar(&opts.outDir, "out", "", "directory to write game logs to (optional)")
	flag.StringVar(&opts.format, "format", "json", "game log format: json or yaml")
	flag.StringVar(&rulesFile, "rules", cfg.RulesFile, "YAML rule variants file")
	flag.StringVar(&logLevel, "log-level", "warn", "log level")
	flag.BoolVar(&opts.timeline, "timeline", false, "print the summary and timeline of the first game")
	flag.StringVar(&replayFile, "replay", "", "print the summary of a saved game log instead of simulating")
	flag.StringVar(&analyzeDirPath, "analyze", "", "print the aggregate report of the game logs in a directory instead of simulating")
	flag.Parse()

	log, err := logging.New(logLevel, true)
	if err != nil {
		stderr := zerolog.New(os.Stderr)
		stderr.Fatal().Err(err).Msg("configure logging")
	}
	switch {
	case replayFile != "" && analyzeDirPath != "":
		log.Fatal().Msg("-replay and -analyze are mutually exclusive")
	case replayFile != "":
		if err := replay(os.Stdout, replayFile, opts.timeline); err != nil {
			log.Fatal().Err(err).Msg("replay")
		}
		return
	case analyzeDirPath != "":
		if err := analyzeDir(os.Stdout, analyzeDirPath, log); err != nil {
			log.Fatal().Err(err).Msg("analyze")
		}
		return
	}

	if rulesFile != "" && rulesFile != cfg.RulesFile {
		v, err := config.LoadRules(rulesFile)
		if err != nil {
			log.Fatal().Err(err).Msg("load rules")
		}
		opts.variants = v
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logs, err := simulate(ctx, opts, log)
	if err != nil {
		log.Fatal().Err(err).Msg("simulation failed")
	}

	if opts.outDir != "" {
		for _, l := range logs {
			path := filepath.Join(opts.outDir, fmt.Sprintf("game_%d.%s", l.Seed, opts.format))
			if err := l.Save(path); err != nil {
				log.Fatal().Err(err).Msg("save game log")
			}
		}
		log.Info().Int("games", len(logs)).Str("dir", opts.outDir).Msg("game logs written")
	}

	if opts.timeline && len(logs) > 0 {
		fmt.Println(analysis.Summary(logs[0]))
		fmt.Println(analysis.Timeline(logs[0]))
	}
	fmt.Println(analysis.AggregateLogs(logs).Report())
}
