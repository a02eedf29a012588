package orchestrator

import (
	"context"

	"github.com/vntrieu/werewolf/internal/games"
)

// runDay plays one day and reports whether the game is over.
func (o *Orchestrator) runDay(ctx context.Context) bool {
	o.set(games.AdvanceToDay(o.current()))
	if day := o.current().DayNumber; day >= o.maxDays {
		o.log.Warn().Int("day", day).Msg("day ceiling reached, werewolves win")
		o.set(games.DeclareWinner(o.current(), games.TeamWerewolf))
		return true
	}
	o.phaseChange(ctx)

	if s := o.current(); s.DayNumber == 1 && !s.SheriffElectionComplete {
		o.runSheriffElection(ctx)
	}

	o.announceDeaths(ctx)
	if o.checkWin() {
		return true
	}

	o.runSpeeches(ctx)
	if o.offerSelfExplode(ctx) {
		return o.checkWin()
	}
	o.runVote(ctx)
	return o.checkWin()
}

func (o *Orchestrator) checkWin() bool {
	next := games.UpdateWinCondition(o.current())
	o.set(next)
	return next.IsGameOver()
}

func (o *Orchestrator) runSheriffElection(ctx context.Context) {
	s := o.current()
	o.emit(ctx, games.NewPublicEvent(s, games.EventSheriffElection, "", "", nil))

	var candidates []string
	for _, p := range s.AlivePlayers() {
		if d := o.ask(ctx, o.prompt(KindRunForSheriff, p.ID, nil)); d.Yes {
			candidates = append(candidates, p.ID)
		}
	}
	for _, id := range candidates {
		if d := o.ask(ctx, o.prompt(KindCampaignSpeech, id, nil)); d.Text != "" {
			o.emit(ctx, games.NewPublicEvent(o.current(), games.EventSheriffCampaignSpeech, id, "", map[string]interface{}{"content": d.Text}))
		}
	}

	votes := make(map[string]string)
	for _, p := range o.current().AlivePlayers() {
		var options []string
		for _, c := range candidates {
			if c != p.ID {
				options = append(options, c)
			}
		}
		if len(options) == 0 {
			continue
		}
		d := o.ask(ctx, o.prompt(KindSheriffVote, p.ID, options))
		votes[p.ID] = d.TargetID
		o.emit(ctx, games.NewPublicEvent(o.current(), games.EventSheriffVote, p.ID, d.TargetID, nil))
	}

	next, events := games.ResolveSheriffElection(o.current(), candidates, votes, o.rng)
	o.apply(ctx, next, events)
	o.log.Info().Int("candidates", len(candidates)).Str("sheriff_id", next.SheriffID).Msg("sheriff election held")
}

// announceDeaths reports last night's deaths, running the cascade for each in turn.
func (o *Orchestrator) announceDeaths(ctx context.Context) {
	deaths := o.nightDeaths
	o.nightDeaths = nil
	if len(deaths) == 0 {
		o.emit(ctx, games.NewPublicEvent(o.current(), games.EventNoDeath, "", "", nil))
		return
	}
	s := o.current()
	lastWords := s.DayNumber == 1 && s.Config.RuleVariants.FirstNightDeathHasLastWords
	for _, id := range deaths {
		o.emit(ctx, games.NewPublicEvent(o.current(), games.EventDeathAnnouncement, "", id, nil))
		o.cascade(ctx, id, lastWords)
	}
}

// cascade runs the reactions to id's death: last words, the hunter's shot, then the badge.
func (o *Orchestrator) cascade(ctx context.Context, id string, lastWords bool) {
	if lastWords {
		if d := o.ask(ctx, o.prompt(KindLastWords, id, nil)); d.Text != "" {
			o.emit(ctx, games.NewPublicEvent(o.current(), games.EventLastWords, id, "", map[string]interface{}{"content": d.Text}))
		}
	}

	if s := o.current(); s.Player(id).Role == games.RoleHunter && games.CanHunterShoot(s, id) {
		o.hunterShot(ctx, id)
	}

	if s := o.current(); s.SheriffID == id && !s.BadgeTorn {
		o.badgeDecision(ctx, id)
	}
}

func (o *Orchestrator) hunterShot(ctx context.Context, hunterID string) {
	s := o.current()
	p := o.prompt(KindHunterShot, hunterID, games.ValidHunterTargets(s, hunterID))
	p.CanSkip = true
	d := o.ask(ctx, p)
	if d.TargetID == "" {
		o.log.Debug().Str("hunter_id", hunterID).Msg("hunter holds fire")
		return
	}
	next, events := games.ResolveHunterShot(s, games.NewAction(games.ActionHunterShoot, hunterID, d.TargetID))
	o.apply(ctx, next, events)
	o.log.Info().Str("hunter_id", hunterID).Str("target_id", d.TargetID).Msg("hunter shot")
}

func (o *Orchestrator) badgeDecision(ctx context.Context, sheriffID string) {
	s := o.current()
	p := o.prompt(KindBadge, sheriffID, games.ValidBadgeTargets(s, sheriffID))
	p.CanSkip = true
	d := o.ask(ctx, p)
	action := games.NewAction(games.ActionTearBadge, sheriffID, "")
	if d.TargetID != "" {
		action = games.NewAction(games.ActionPassBadge, sheriffID, d.TargetID)
	}
	next, events := games.ResolveBadgeAction(s, action)
	o.apply(ctx, next, events)
}

// runSpeeches lets the living speak: the sheriff first, then seat order.
func (o *Orchestrator) runSpeeches(ctx context.Context) {
	for _, id := range speakingOrder(o.current()) {
		if d := o.ask(ctx, o.prompt(KindSpeech, id, nil)); d.Text != "" {
			o.emit(ctx, games.NewPublicEvent(o.current(), games.EventSpeech, id, "", map[string]interface{}{"content": d.Text}))
		}
	}
}

func speakingOrder(s *games.GameState) []string {
	var order []string
	if sheriff := s.Sheriff(); sheriff != nil && sheriff.IsAlive {
		order = append(order, sheriff.ID)
	}
	for _, p := range s.AlivePlayers() {
		if p.ID != s.SheriffID {
			order = append(order, p.ID)
		}
	}
	return order
}

// offerSelfExplode gives each living werewolf, in seat order, the chance to end the day.
// It reports whether one took it.
func (o *Orchestrator) offerSelfExplode(ctx context.Context) bool {
	s := o.current()
	if !s.Config.RuleVariants.AllowWolfSelfExplode {
		return false
	}
	for _, w := range s.AliveWerewolves() {
		p := o.prompt(KindSelfExplode, w.ID, nil)
		p.CanSkip = true
		if d := o.ask(ctx, p); !d.Yes {
			continue
		}
		next, events := games.ResolveWolfSelfExplode(o.current(), w.ID)
		o.apply(ctx, next, events)
		o.log.Info().Str("werewolf_id", w.ID).Msg("werewolf self-exploded, day ends")
		o.cascade(ctx, w.ID, false)
		return true
	}
	return false
}

func (o *Orchestrator) runVote(ctx context.Context) {
	s := o.current()
	votes := make(map[string]string)
	for _, p := range s.AlivePlayers() {
		if games.VoteWeight(s, p.ID) == 0 {
			continue
		}
		options := games.ValidVoteTargets(s, p.ID)
		if len(options) == 0 {
			continue
		}
		votes[p.ID] = o.ask(ctx, o.prompt(KindVote, p.ID, options)).TargetID
	}

	next, result := games.ResolveVote(s, votes)
	o.apply(ctx, next, result.Events)
	if result.LynchedPlayerID == "" {
		o.log.Info().Int("day", next.DayNumber).Bool("tie", result.IsTie).Msg("no lynch")
		return
	}

	next, events := games.ResolveLynch(o.current(), result.LynchedPlayerID)
	o.apply(ctx, next, events)
	if next.Player(result.LynchedPlayerID).IsAlive {
		o.log.Info().Str("player_id", result.LynchedPlayerID).Msg("village idiot revealed")
		return
	}
	o.log.Info().Str("player_id", result.LynchedPlayerID).Msg("lynched")
	o.cascade(ctx, result.LynchedPlayerID, true)
}
