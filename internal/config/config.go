// Package config loads server and simulator settings from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/vntrieu/werewolf/internal/games"
)

// DevTokenSecret is used when WEREWOLF_TOKEN_SECRET is unset.
const DevTokenSecret = "dev-secret-change-in-production"

// Config is the process configuration.
type Config struct {
	HTTPAddr    string `env:"WEREWOLF_HTTP_ADDR" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"WEREWOLF_SQLITE_PATH"`
	TokenSecret string `env:"WEREWOLF_TOKEN_SECRET" envDefault:"dev-secret-change-in-production"`

	LogLevel  string `env:"WEREWOLF_LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"WEREWOLF_LOG_PRETTY" envDefault:"false"`

	RulesFile       string        `env:"WEREWOLF_RULES_FILE"`
	DecisionTimeout time.Duration `env:"WEREWOLF_DECISION_TIMEOUT" envDefault:"60s"`
	MaxDays         int           `env:"WEREWOLF_MAX_DAYS" envDefault:"20"`

	// RateLimit is requests per minute per IP on game creation; 0 disables it.
	RateLimit   int      `env:"WEREWOLF_RATE_LIMIT" envDefault:"20"`
	CORSOrigins []string `env:"WEREWOLF_CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// Variants are the defaults for new games: the rules file, then WEREWOLF_RULE_* overrides.
	Variants games.RuleVariants `env:"-"`
}

// ruleOverrides mirrors games.RuleVariants for WEREWOLF_RULE_* variables.
type ruleOverrides struct {
	WitchCanSelfHealN1          bool    `env:"WITCH_CAN_SELF_HEAL_N1"`
	WitchCanSelfHeal            bool    `env:"WITCH_CAN_SELF_HEAL"`
	WitchCanUseBothPotions      bool    `env:"WITCH_CAN_USE_BOTH_POTIONS"`
	GuardCanSelfGuard           bool    `env:"GUARD_CAN_SELF_GUARD"`
	SameGuardSameSaveKills      bool    `env:"SAME_GUARD_SAME_SAVE_KILLS"`
	WinMode                     string  `env:"WIN_MODE"`
	AllowWolfSelfExplode        bool    `env:"ALLOW_WOLF_SELF_EXPLODE"`
	AllowWolfSelfKnife          bool    `env:"ALLOW_WOLF_SELF_KNIFE"`
	SheriffVoteWeight           float64 `env:"SHERIFF_VOTE_WEIGHT"`
	HunterCanShootIfPoisoned    bool    `env:"HUNTER_CAN_SHOOT_IF_POISONED"`
	HunterCanShootIfNightKilled bool    `env:"HUNTER_CAN_SHOOT_IF_NIGHT_KILLED"`
	FirstNightDeathHasLastWords bool    `env:"FIRST_NIGHT_DEATH_HAS_LAST_WORDS"`
}

// Load reads an optional .env file and then parses the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse(nil)
}

// Parse builds a Config from environ, or from the process environment when environ is nil.
func Parse(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	variants := games.DefaultRuleVariants()
	if cfg.RulesFile != "" {
		v, err := LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		variants = v
	}
	v, err := applyRuleOverrides(variants, environ)
	if err != nil {
		return nil, err
	}
	cfg.Variants = v

	if cfg.DecisionTimeout <= 0 {
		return nil, fmt.Errorf("WEREWOLF_DECISION_TIMEOUT must be positive, got %s", cfg.DecisionTimeout)
	}
	if cfg.MaxDays < 1 {
		return nil, fmt.Errorf("WEREWOLF_MAX_DAYS must be at least 1, got %d", cfg.MaxDays)
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("WEREWOLF_RATE_LIMIT must not be negative, got %d", cfg.RateLimit)
	}
	return cfg, nil
}

// LoadRules reads rule variants from a YAML file. Keys missing from the file keep
// their default values.
func LoadRules(path string) (games.RuleVariants, error) {
	v := games.DefaultRuleVariants()
	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &v); err != nil {
		return v, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if err := validateVariants(v); err != nil {
		return v, fmt.Errorf("rules file %s: %w", path, err)
	}
	return v, nil
}

func applyRuleOverrides(v games.RuleVariants, environ map[string]string) (games.RuleVariants, error) {
	o := ruleOverrides{
		WitchCanSelfHealN1:          v.WitchCanSelfHealN1,
		WitchCanSelfHeal:            v.WitchCanSelfHeal,
		WitchCanUseBothPotions:      v.WitchCanUseBothPotions,
		GuardCanSelfGuard:           v.GuardCanSelfGuard,
		SameGuardSameSaveKills:      v.SameGuardSameSaveKills,
		WinMode:                     string(v.WinMode),
		AllowWolfSelfExplode:        v.AllowWolfSelfExplode,
		AllowWolfSelfKnife:          v.AllowWolfSelfKnife,
		SheriffVoteWeight:           v.SheriffVoteWeight,
		HunterCanShootIfPoisoned:    v.HunterCanShootIfPoisoned,
		HunterCanShootIfNightKilled: v.HunterCanShootIfNightKilled,
		FirstNightDeathHasLastWords: v.FirstNightDeathHasLastWords,
	}
	if err := env.ParseWithOptions(&o, env.Options{Environment: environ, Prefix: "WEREWOLF_RULE_"}); err != nil {
		return v, fmt.Errorf("parse rule overrides: %w", err)
	}
	out := games.RuleVariants{
		WitchCanSelfHealN1:          o.WitchCanSelfHealN1,
		WitchCanSelfHeal:            o.WitchCanSelfHeal,
		WitchCanUseBothPotions:      o.WitchCanUseBothPotions,
		GuardCanSelfGuard:           o.GuardCanSelfGuard,
		SameGuardSameSaveKills:      o.SameGuardSameSaveKills,
		WinMode:                     games.WinMode(o.WinMode),
		AllowWolfSelfExplode:        o.AllowWolfSelfExplode,
		AllowWolfSelfKnife:          o.AllowWolfSelfKnife,
		SheriffVoteWeight:           o.SheriffVoteWeight,
		HunterCanShootIfPoisoned:    o.HunterCanShootIfPoisoned,
		HunterCanShootIfNightKilled: o.HunterCanShootIfNightKilled,
		FirstNightDeathHasLastWords: o.FirstNightDeathHasLastWords,
	}
	if err := validateVariants(out); err != nil {
		return v, err
	}
	return out, nil
}

func validateVariants(v games.RuleVariants) error {
	cfg := games.DefaultGameConfig()
	cfg.RuleVariants = v
	return cfg.Validate()
}
