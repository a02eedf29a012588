package games

import (
	"math"
	"math/rand"
	"sort"
)

// voteEpsilon absorbs float drift when comparing weighted totals.
const voteEpsilon = 1e-9

// ResolveSheriffElection elects a sheriff from candidates. votes maps voter id to candidate id;
// votes from dead players, for non-candidates, or for oneself are ignored. Ties among the
// leaders are broken uniformly at random with rng (nil uses a source seeded from the game).
func ResolveSheriffElection(state *GameState, candidates []string, votes map[string]string, rng *rand.Rand) (*GameState, []Event) {
	next := state.Clone()
	var events []Event

	valid := make([]string, 0, len(candidates))
	counts := make(map[string]int, len(candidates))
	for _, id := range candidates {
		p := next.Player(id)
		if p == nil || !p.IsAlive {
			continue
		}
		if _, dup := counts[id]; dup {
			continue
		}
		counts[id] = 0
		valid = append(valid, id)
	}
	if len(valid) == 0 {
		next.SheriffElectionComplete = true
		return next, events
	}

	for voterID, candidateID := range votes {
		voter := next.Player(voterID)
		if voter == nil || !voter.IsAlive || voterID == candidateID {
			continue
		}
		if _, ok := counts[candidateID]; ok {
			counts[candidateID]++
		}
	}

	best := -1
	var leaders []string
	for _, id := range valid {
		switch {
		case counts[id] > best:
			best = counts[id]
			leaders = []string{id}
		case counts[id] == best:
			leaders = append(leaders, id)
		}
	}

	winnerID := leaders[0]
	wasTie := len(leaders) > 1
	if wasTie {
		if rng == nil {
			rng = NewRand(next.Seed + int64(next.DayNumber))
		}
		winnerID = leaders[rng.Intn(len(leaders))]
	}

	if prev := next.Sheriff(); prev != nil {
		prev.IsSheriff = false
	}
	winner := next.Player(winnerID)
	winner.IsSheriff = true
	next.SheriffID = winnerID
	next.BadgeTorn = false
	next.SheriffElectionComplete = true

	tally := make(map[string]interface{}, len(counts))
	for id, n := range counts {
		tally[id] = n
	}
	events = append(events, NewPublicEvent(next, EventSheriffElected, "", winnerID, map[string]interface{}{
		"vote_counts": tally,
		"was_tie":     wasTie,
	}))
	return next, events
}

// VoteResult is the outcome of a day vote.
type VoteResult struct {
	Votes           map[string]string  `json:"votes"`
	VoteCounts      map[string]float64 `json:"vote_counts"`
	LynchedPlayerID string             `json:"lynched_player_id,omitempty"`
	IsTie           bool               `json:"is_tie"`
	Events          []Event            `json:"-"`
}

// VoteWeight is what voterID's ballot is worth today: zero for the dead and for a revealed
// village idiot, the configured multiplier for a sheriff with an intact badge, else one.
func VoteWeight(state *GameState, voterID string) float64 {
	p := state.Player(voterID)
	if p == nil || !p.IsAlive {
		return 0
	}
	if p.Role == RoleVillageIdiot && p.VillageIdiotRevealed {
		return 0
	}
	if p.IsSheriff && state.SheriffID == p.ID && !state.BadgeTorn {
		return state.Config.RuleVariants.SheriffVoteWeight
	}
	return 1.0
}

// ResolveVote tallies a weighted day vote. The highest total is lynched; an exact tie lynches
// nobody. The returned state is unchanged apart from being a fresh copy.
func ResolveVote(state *GameState, votes map[string]string) (*GameState, VoteResult) {
	next := state.Clone()
	result := VoteResult{
		Votes:      make(map[string]string, len(votes)),
		VoteCounts: make(map[string]float64),
	}

	for _, voter := range next.Players {
		targetID, ok := votes[voter.ID]
		if !ok {
			continue
		}
		result.Votes[voter.ID] = targetID
		weight := VoteWeight(next, voter.ID)
		if weight == 0 {
			continue
		}
		target := next.Player(targetID)
		if target == nil || !target.IsAlive || target.ID == voter.ID {
			continue
		}
		result.VoteCounts[targetID] += weight
		result.Events = append(result.Events, NewPublicEvent(next, EventVoteCast, voter.ID, targetID,
			map[string]interface{}{"weight": weight}))
	}

	targets := make([]string, 0, len(result.VoteCounts))
	for id := range result.VoteCounts {
		targets = append(targets, id)
	}
	sort.Strings(targets)
	best := math.Inf(-1)
	var leaders []string
	for _, id := range targets {
		n := result.VoteCounts[id]
		switch {
		case n > best+voteEpsilon:
			best = n
			leaders = []string{id}
		case math.Abs(n-best) <= voteEpsilon:
			leaders = append(leaders, id)
		}
	}
	switch {
	case len(leaders) == 1:
		result.LynchedPlayerID = leaders[0]
	case len(leaders) > 1:
		result.IsTie = true
	}

	counts := make(map[string]interface{}, len(result.VoteCounts))
	for id, n := range result.VoteCounts {
		counts[id] = n
	}
	data := map[string]interface{}{"vote_counts": counts, "is_tie": result.IsTie}
	if result.LynchedPlayerID != "" {
		data["lynched_player_id"] = result.LynchedPlayerID
	}
	result.Events = append(result.Events, NewPublicEvent(next, EventVoteResult, "", result.LynchedPlayerID, data))
	return next, result
}

// ResolveLynch executes the vote. An unrevealed village idiot reveals and survives once;
// everyone else dies.
func ResolveLynch(state *GameState, playerID string) (*GameState, []Event) {
	next := state.Clone()
	p := next.Player(playerID)
	if p == nil || !p.IsAlive {
		return next, nil
	}
	if p.Role == RoleVillageIdiot && !p.VillageIdiotRevealed {
		p.VillageIdiotRevealed = true
		return next, []Event{NewPublicEvent(next, EventVillageIdiotReveal, "", p.ID, nil)}
	}
	p.IsAlive = false
	return next, []Event{NewPublicEvent(next, EventLynch, "", p.ID, nil)}
}

// ResolveBadgeAction passes or tears the badge of the current sheriff.
func ResolveBadgeAction(state *GameState, action Action) (*GameState, []Event) {
	next := state.Clone()
	holder := next.Player(action.ActorID)
	if holder == nil || next.SheriffID != holder.ID || next.BadgeTorn {
		return next, nil
	}
	switch action.Type {
	case ActionPassBadge:
		target := next.Player(action.TargetID)
		if target == nil || !target.IsAlive || target.ID == holder.ID {
			return next, nil
		}
		holder.IsSheriff = false
		target.IsSheriff = true
		next.SheriffID = target.ID
		return next, []Event{NewPublicEvent(next, EventBadgePass, holder.ID, target.ID, nil)}
	case ActionTearBadge:
		holder.IsSheriff = false
		next.SheriffID = ""
		next.BadgeTorn = true
		return next, []Event{NewPublicEvent(next, EventBadgeTear, holder.ID, "", nil)}
	}
	return next, nil
}

// ResolveHunterShot lets a dead hunter take one player down. Shooting the sheriff tears the
// badge; it cannot be passed on.
func ResolveHunterShot(state *GameState, action Action) (*GameState, []Event) {
	next := state.Clone()
	hunter := next.Player(action.ActorID)
	if hunter == nil || hunter.Role != RoleHunter || hunter.IsAlive || !hunter.HunterCanShoot {
		return next, nil
	}
	target := next.Player(action.TargetID)
	if target == nil || !target.IsAlive || target.ID == hunter.ID {
		return next, nil
	}
	target.IsAlive = false
	hunter.HunterCanShoot = false
	var data map[string]interface{}
	if target.IsSheriff || next.SheriffID == target.ID {
		target.IsSheriff = false
		next.SheriffID = ""
		next.BadgeTorn = true
		data = map[string]interface{}{"badge_torn": true}
	}
	return next, []Event{NewPublicEvent(next, EventHunterShot, hunter.ID, target.ID, data)}
}

// ResolveWolfSelfExplode reveals and kills a werewolf during the day when the table allows it.
func ResolveWolfSelfExplode(state *GameState, actorID string) (*GameState, []Event) {
	next := state.Clone()
	wolf := next.Player(actorID)
	if wolf == nil || wolf.Role != RoleWerewolf || !wolf.IsAlive || !next.Config.RuleVariants.AllowWolfSelfExplode {
		return next, nil
	}
	wolf.IsAlive = false
	return next, []Event{NewPublicEvent(next, EventWolfSelfExplode, actorID, actorID, nil)}
}
