package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/vntrieu/werewolf/internal/games"
)

// Kind names the decision a seat is asked to make.
type Kind string

const (
	KindGuardProtect   Kind = "guard_protect"
	KindWolfKill       Kind = "wolf_kill"
	KindWitch          Kind = "witch"
	KindSeerCheck      Kind = "seer_check"
	KindRunForSheriff  Kind = "run_for_sheriff"
	KindCampaignSpeech Kind = "sheriff_campaign_speech"
	KindSheriffVote    Kind = "sheriff_vote"
	KindSpeech         Kind = "speech"
	KindSelfExplode    Kind = "wolf_self_explode"
	KindVote           Kind = "vote"
	KindLastWords      Kind = "last_words"
	KindHunterShot     Kind = "hunter_shot"
	KindBadge          Kind = "badge"
)

// Prompt is what a decider sees. Options are the legal target ids for the decision.
type Prompt struct {
	Kind     Kind             `json:"kind"`
	PlayerID string           `json:"player_id"`
	Options  []string         `json:"options,omitempty"`
	CanSkip  bool             `json:"can_skip"`
	View     games.PlayerView `json:"view"`

	// Witch only.
	WolfTargetID string `json:"wolf_target_id,omitempty"`
	CanCure      bool   `json:"can_cure,omitempty"`
	CanPoison    bool   `json:"can_poison,omitempty"`
	CanUseBoth   bool   `json:"can_use_both,omitempty"`
}

// Decision answers a Prompt. Which fields matter depends on the prompt kind:
// TargetID for target picks (empty skips, or tears the badge), Yes for run/explode,
// Cure and PoisonTargetID for the witch, Text for speeches.
type Decision struct {
	TargetID       string `json:"target_id,omitempty"`
	Yes            bool   `json:"yes,omitempty"`
	Cure           bool   `json:"cure,omitempty"`
	PoisonTargetID string `json:"poison_target_id,omitempty"`
	Text           string `json:"text,omitempty"`
}

// Decider makes choices for one or more seats. Implementations must honour ctx; the
// orchestrator replaces late, failed or illegal answers with a random legal one.
type Decider interface {
	Decide(ctx context.Context, p Prompt) (Decision, error)
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(ctx context.Context, p Prompt) (Decision, error)

func (f DeciderFunc) Decide(ctx context.Context, p Prompt) (Decision, error) {
	return f(ctx, p)
}

// Legal reports whether d is an acceptable answer to p.
func Legal(p Prompt, d Decision) bool {
	switch p.Kind {
	case KindGuardProtect, KindWolfKill, KindSeerCheck, KindVote, KindSheriffVote:
		if d.TargetID == "" {
			return p.CanSkip
		}
		return contains(p.Options, d.TargetID)
	case KindHunterShot, KindBadge:
		return d.TargetID == "" || contains(p.Options, d.TargetID)
	case KindWitch:
		if d.Cure && !p.CanCure {
			return false
		}
		if d.PoisonTargetID != "" && (!p.CanPoison || !contains(p.Options, d.PoisonTargetID)) {
			return false
		}
		return !(d.Cure && d.PoisonTargetID != "") || p.CanUseBoth
	}
	return true
}

// RandomDecision picks uniformly among the legal answers to p. Self-explosion is never
// chosen and speeches are left empty.
func RandomDecision(rng *rand.Rand, p Prompt) Decision {
	switch p.Kind {
	case KindGuardProtect, KindWolfKill, KindSeerCheck, KindVote, KindSheriffVote:
		if len(p.Options) == 0 {
			return Decision{}
		}
		return Decision{TargetID: p.Options[rng.Intn(len(p.Options))]}
	case KindHunterShot, KindBadge:
		// index len(Options) is the skip (or tear) answer
		i := rng.Intn(len(p.Options) + 1)
		if i == len(p.Options) {
			return Decision{}
		}
		return Decision{TargetID: p.Options[i]}
	case KindWitch:
		choices := []Decision{{}}
		if p.CanCure {
			choices = append(choices, Decision{Cure: true})
		}
		if p.CanPoison {
			for _, id := range p.Options {
				choices = append(choices, Decision{PoisonTargetID: id})
			}
		}
		return choices[rng.Intn(len(choices))]
	case KindRunForSheriff:
		return Decision{Yes: rng.Intn(2) == 0}
	}
	return Decision{}
}

// RandomDecider is a bot seat. It answers every prompt with a random legal choice and
// says something bland when asked to speak.
type RandomDecider struct {
	mu  sync.Mutex
	rng *rand.Rand
	// SelfExplodeRate is the chance a werewolf bot blows itself up when offered.
	SelfExplodeRate float64
}

// NewRandomDecider returns a bot seeded with seed.
func NewRandomDecider(seed int64) *RandomDecider {
	return &RandomDecider{rng: games.NewRand(seed)}
}

var botLines = []string{
	"I have nothing solid yet. I will listen to the others first.",
	"Last night felt too quiet. Somebody here is hiding something.",
	"I am good. Watch who pushes the vote hardest today.",
	"I trust the sheriff's read for now.",
	"Let's not waste the vote. Pick someone and commit.",
}

func (d *RandomDecider) Decide(ctx context.Context, p Prompt) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	switch p.Kind {
	case KindSpeech, KindCampaignSpeech:
		return Decision{Text: botLines[d.rng.Intn(len(botLines))]}, nil
	case KindLastWords:
		return Decision{Text: fmt.Sprintf("I was on the good side. Trust seat %d's read.", 1+d.rng.Intn(games.PlayerCount))}, nil
	case KindSelfExplode:
		return Decision{Yes: d.SelfExplodeRate > 0 && d.rng.Float64() < d.SelfExplodeRate}, nil
	}
	return RandomDecision(d.rng, p), nil
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
