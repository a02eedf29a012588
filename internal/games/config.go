package games

import (
	"errors"
	"fmt"
)

// PlayerCount is the only supported table size.
const PlayerCount = 12

// MaxGameDays is the day ceiling; reaching it is a forced werewolf win.
const MaxGameDays = 20

// ErrInvalidConfig is returned when a game cannot be created from the given configuration.
var ErrInvalidConfig = errors.New("invalid game config")

// Phase names.
type Phase string

const (
	PhaseNight    Phase = "night"
	PhaseDay      Phase = "day"
	PhaseGameOver Phase = "game_over"
)

// WinMode selects the werewolf win condition.
type WinMode string

const (
	// WinModeSideElimination: werewolves win once all villagers or all specials are dead.
	WinModeSideElimination WinMode = "side_elimination"
	// WinModeCityElimination: werewolves win once every good player is dead.
	WinModeCityElimination WinMode = "city_elimination"
)

// Team is the winning side of a game.
type Team string

const (
	TeamNone     Team = "none"
	TeamVillage  Team = "village"
	TeamWerewolf Team = "werewolf"
)

// RuleVariants toggles the table rules that differ between play groups.
type RuleVariants struct {
	WitchCanSelfHealN1          bool    `json:"witch_can_self_heal_n1" yaml:"witch_can_self_heal_n1"`
	WitchCanSelfHeal            bool    `json:"witch_can_self_heal" yaml:"witch_can_self_heal"`
	WitchCanUseBothPotions      bool    `json:"witch_can_use_both_potions" yaml:"witch_can_use_both_potions"`
	GuardCanSelfGuard           bool    `json:"guard_can_self_guard" yaml:"guard_can_self_guard"`
	SameGuardSameSaveKills      bool    `json:"same_guard_same_save_kills" yaml:"same_guard_same_save_kills"`
	WinMode                     WinMode `json:"win_mode" yaml:"win_mode"`
	AllowWolfSelfExplode        bool    `json:"allow_wolf_self_explode" yaml:"allow_wolf_self_explode"`
	AllowWolfSelfKnife          bool    `json:"allow_wolf_self_knife" yaml:"allow_wolf_self_knife"`
	SheriffVoteWeight           float64 `json:"sheriff_vote_weight" yaml:"sheriff_vote_weight"`
	HunterCanShootIfPoisoned    bool    `json:"hunter_can_shoot_if_poisoned" yaml:"hunter_can_shoot_if_poisoned"`
	HunterCanShootIfNightKilled bool    `json:"hunter_can_shoot_if_night_killed" yaml:"hunter_can_shoot_if_night_killed"`
	FirstNightDeathHasLastWords bool    `json:"first_night_death_has_last_words" yaml:"first_night_death_has_last_words"`
}

// DefaultRuleVariants returns the standard table rules.
func DefaultRuleVariants() RuleVariants {
	return RuleVariants{
		WitchCanSelfHealN1:          true,
		WitchCanSelfHeal:            false,
		WitchCanUseBothPotions:      false,
		GuardCanSelfGuard:           true,
		SameGuardSameSaveKills:      true,
		WinMode:                     WinModeSideElimination,
		AllowWolfSelfExplode:        true,
		AllowWolfSelfKnife:          true,
		SheriffVoteWeight:           1.5,
		HunterCanShootIfPoisoned:    false,
		HunterCanShootIfNightKilled: true,
		FirstNightDeathHasLastWords: true,
	}
}

// GameConfig holds everything needed to deal a table.
type GameConfig struct {
	NumPlayers   int          `json:"num_players" yaml:"num_players"`
	RoleSet      RoleSet      `json:"role_set" yaml:"role_set"`
	RuleVariants RuleVariants `json:"rule_variants" yaml:"rule_variants"`
	// RandomSeed makes role assignment, ids and tie-breaks reproducible. Nil draws a fresh seed.
	RandomSeed *int64 `json:"random_seed,omitempty" yaml:"random_seed,omitempty"`
}

// DefaultGameConfig returns a 12-player role set A game with default variants.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		NumPlayers:   PlayerCount,
		RoleSet:      RoleSetA,
		RuleVariants: DefaultRuleVariants(),
	}
}

// WithSeed returns a copy of c with a fixed seed.
func (c GameConfig) WithSeed(seed int64) GameConfig {
	c.RandomSeed = &seed
	return c
}

// Validate checks the fixed table constraints.
func (c GameConfig) Validate() error {
	if c.NumPlayers != PlayerCount {
		return fmt.Errorf("%w: num_players must be %d, got %d", ErrInvalidConfig, PlayerCount, c.NumPlayers)
	}
	if !c.RoleSet.Valid() {
		return fmt.Errorf("%w: unknown role set %q", ErrInvalidConfig, c.RoleSet)
	}
	switch c.RuleVariants.WinMode {
	case WinModeSideElimination, WinModeCityElimination:
	default:
		return fmt.Errorf("%w: unknown win mode %q", ErrInvalidConfig, c.RuleVariants.WinMode)
	}
	if c.RuleVariants.SheriffVoteWeight < 0 {
		return fmt.Errorf("%w: sheriff_vote_weight must not be negative", ErrInvalidConfig)
	}
	return nil
}
