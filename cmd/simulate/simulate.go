package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vntrieu/werewolf/internal/gamelog"
	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/orchestrator"
)

type options struct {
	games           int
	seed            int64
	roleSet         string
	parallel        int
	selfExplodeRate float64
	outDir          string
	format          string
	timeline        bool
	variants        games.RuleVariants
	maxDays         int
}

func (o options) validate() error {
	if o.games < 1 {
		return fmt.Errorf("-games must be at least 1, got %d", o.games)
	}
	if o.parallel < 1 {
		return fmt.Errorf("-parallel must be at least 1, got %d", o.parallel)
	}
	if o.selfExplodeRate < 0 || o.selfExplodeRate > 1 {
		return fmt.Errorf("-self-explode-rate must be between 0 and 1, got %v", o.selfExplodeRate)
	}
	switch gamelog.Format(o.format) {
	case gamelog.FormatJSON, gamelog.FormatYAML:
	default:
		return fmt.Errorf("-format must be json or yaml, got %q", o.format)
	}
	return nil
}

// simulate plays o.games games and returns their logs in seed order.
func simulate(ctx context.Context, o options, log zerolog.Logger) ([]*gamelog.GameLog, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	logs := make([]*gamelog.GameLog, o.games)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallel)
	for i := 0; i < o.games; i++ {
		i := i
		g.Go(func() error {
			l, err := playOne(gctx, o, o.seed+int64(i), log)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			logs[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return logs, nil
}

func playOne(ctx context.Context, o options, seed int64, log zerolog.Logger) (*gamelog.GameLog, error) {
	cfg := games.DefaultGameConfig().WithSeed(seed)
	cfg.RoleSet = games.RoleSet(o.roleSet)
	cfg.RuleVariants = o.variants
	state, err := games.CreateGameState(cfg, nil)
	if err != nil {
		return nil, err
	}
	state.GameID = uuid.NewString()

	deciders := make(map[string]orchestrator.Decider, len(state.Players))
	for _, p := range state.Players {
		bot := orchestrator.NewRandomDecider(seed + int64(p.SeatNumber))
		bot.SelfExplodeRate = o.selfExplodeRate
		deciders[p.ID] = bot
	}
	final, err := orchestrator.New(state, orchestrator.Config{
		Deciders: deciders,
		Logger:   log,
		MaxDays:  o.maxDays,
	}).Run(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug().Int64("seed", seed).Str("winner", string(final.WinningTeam)).Int("day", final.DayNumber).Msg("game over")
	return gamelog.FromState(final), nil
}
