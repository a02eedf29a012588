package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/vntrieu/werewolf/internal/games"
)

// runNight collects the night actions in resolution order and resolves them. Each
// collector sees the state left by the previous one, so the witch sees the wolf target.
func (o *Orchestrator) runNight(ctx context.Context) {
	o.set(games.AdvanceToNight(o.current()))
	o.phaseChange(ctx)

	var actions []games.Action
	if a, ok := o.collectGuard(ctx); ok {
		actions = append(actions, a)
	}
	if a, ok := o.collectWolves(ctx); ok {
		actions = append(actions, a)
		o.set(games.WithWolfTarget(o.current(), a.TargetID))
	}
	actions = append(actions, o.collectWitch(ctx)...)
	if a, ok := o.collectSeer(ctx); ok {
		actions = append(actions, a)
	}

	before := o.current()
	next, events := games.ResolveNight(before, actions)
	o.apply(ctx, next, events)
	o.nightDeaths = deaths(before, next)
	o.log.Debug().Int("day", next.DayNumber).Int("actions", len(actions)).Strs("deaths", o.nightDeaths).Msg("night resolved")
}

// deaths lists players alive in before and dead in after, in seat order.
func deaths(before, after *games.GameState) []string {
	var out []string
	for _, p := range before.Players {
		if !p.IsAlive {
			continue
		}
		if q := after.Player(p.ID); q != nil && !q.IsAlive {
			out = append(out, p.ID)
		}
	}
	return out
}

func (o *Orchestrator) collectGuard(ctx context.Context) (games.Action, bool) {
	s := o.current()
	guard := s.PlayerByRole(games.RoleGuard)
	if guard == nil || !guard.IsAlive {
		return games.Action{}, false
	}
	options := games.ValidGuardTargets(s, guard.ID)
	if len(options) == 0 {
		return games.Action{}, false
	}
	d := o.ask(ctx, o.prompt(KindGuardProtect, guard.ID, options))
	return games.NewAction(games.ActionGuardProtect, guard.ID, d.TargetID), true
}

// collectWolves asks every living werewolf for a target concurrently and settles on the
// plurality pick. Ties are broken with the game rng. The first living werewolf in seat
// order acts for the pack.
func (o *Orchestrator) collectWolves(ctx context.Context) (games.Action, bool) {
	s := o.current()
	wolves := s.AliveWerewolves()
	options := games.ValidWolfTargets(s)
	if len(wolves) == 0 || len(options) == 0 {
		return games.Action{}, false
	}

	prompts := make([]Prompt, len(wolves))
	answers := make([]Decision, len(wolves))
	errs := make([]error, len(wolves))
	for i, w := range wolves {
		prompts[i] = o.prompt(KindWolfKill, w.ID, options)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range wolves {
		i := i
		g.Go(func() error {
			answers[i], errs[i] = o.consult(gctx, prompts[i])
			return nil
		})
	}
	_ = g.Wait()

	tally := make(map[string]int, len(options))
	for i := range wolves {
		d := o.settle(prompts[i], answers[i], errs[i])
		tally[d.TargetID]++
	}
	best := 0
	var leaders []string
	for _, id := range options {
		switch n := tally[id]; {
		case n > best:
			best = n
			leaders = []string{id}
		case n == best && n > 0:
			leaders = append(leaders, id)
		}
	}
	target := leaders[0]
	if len(leaders) > 1 {
		target = leaders[o.rng.Intn(len(leaders))]
	}
	o.log.Debug().Interface("proposals", tally).Str("target", target).Msg("werewolves agreed")
	return games.NewAction(games.ActionWolfKill, wolves[0].ID, target), true
}

func (o *Orchestrator) collectWitch(ctx context.Context) []games.Action {
	s := o.current()
	witch := s.PlayerByRole(games.RoleWitch)
	if witch == nil || !witch.IsAlive {
		return nil
	}
	p := o.prompt(KindWitch, witch.ID, games.ValidPoisonTargets(s, witch.ID))
	p.CanSkip = true
	p.WolfTargetID = s.WolfKillTargetID
	p.CanCure = games.CanWitchCure(s, witch.ID, s.WolfKillTargetID)
	p.CanPoison = games.CanWitchPoison(s, witch.ID)
	p.CanUseBoth = s.Config.RuleVariants.WitchCanUseBothPotions
	if !p.CanCure && !p.CanPoison {
		return nil
	}

	d := o.ask(ctx, p)
	var actions []games.Action
	if d.Cure {
		actions = append(actions, games.NewAction(games.ActionWitchCure, witch.ID, s.WolfKillTargetID))
	}
	if d.PoisonTargetID != "" {
		actions = append(actions, games.NewAction(games.ActionWitchPoison, witch.ID, d.PoisonTargetID))
	}
	return actions
}

func (o *Orchestrator) collectSeer(ctx context.Context) (games.Action, bool) {
	s := o.current()
	seer := s.PlayerByRole(games.RoleSeer)
	if seer == nil || !seer.IsAlive {
		return games.Action{}, false
	}
	options := games.ValidSeerTargets(s, seer.ID)
	if len(options) == 0 {
		return games.Action{}, false
	}
	d := o.ask(ctx, o.prompt(KindSeerCheck, seer.ID, options))
	return games.NewAction(games.ActionSeerCheck, seer.ID, d.TargetID), true
}
