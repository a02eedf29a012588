package games

// ValidWolfTargets lists living players the werewolves may choose tonight. Fellow werewolves
// are included only when self-knifing is allowed.
func ValidWolfTargets(state *GameState) []string {
	selfKnife := state.Config.RuleVariants.AllowWolfSelfKnife
	return ids(state.filter(func(p Player) bool {
		return p.IsAlive && (p.Role != RoleWerewolf || selfKnife)
	}))
}

// ValidGuardTargets never includes the guard's previous target, nor the guard when
// self-guarding is off.
func ValidGuardTargets(state *GameState, guardID string) []string {
	guard := state.Player(guardID)
	if guard == nil || !guard.IsAlive || guard.Role != RoleGuard {
		return nil
	}
	selfGuard := state.Config.RuleVariants.GuardCanSelfGuard
	return ids(state.filter(func(p Player) bool {
		if !p.IsAlive || p.ID == guard.GuardLastProtected {
			return false
		}
		return p.ID != guardID || selfGuard
	}))
}

// ValidSeerTargets lists living players other than the seer.
func ValidSeerTargets(state *GameState, seerID string) []string {
	seer := state.Player(seerID)
	if seer == nil || !seer.IsAlive || seer.Role != RoleSeer {
		return nil
	}
	return aliveExcept(state, seerID)
}

// ValidPoisonTargets lists who the witch may poison tonight, empty once the poison is gone.
func ValidPoisonTargets(state *GameState, witchID string) []string {
	if !CanWitchPoison(state, witchID) {
		return nil
	}
	return aliveExcept(state, witchID)
}

// ValidVoteTargets never includes the voter or the dead.
func ValidVoteTargets(state *GameState, voterID string) []string {
	return aliveExcept(state, voterID)
}

// ValidHunterTargets lists living players other than the hunter.
func ValidHunterTargets(state *GameState, hunterID string) []string {
	return aliveExcept(state, hunterID)
}

// ValidBadgeTargets lists who the sheriff may pass the badge to.
func ValidBadgeTargets(state *GameState, sheriffID string) []string {
	return aliveExcept(state, sheriffID)
}

// CanWitchCure reports whether the witch may save targetID: the cure must be unused, the
// target must be tonight's wolf victim, and self-saves follow the night-1/later variants.
func CanWitchCure(state *GameState, witchID, targetID string) bool {
	witch := state.Player(witchID)
	if witch == nil || witch.Role != RoleWitch || !witch.IsAlive || !witch.WitchHasCure {
		return false
	}
	if targetID == "" || targetID != state.WolfKillTargetID {
		return false
	}
	if targetID == witchID {
		return selfHealAllowed(state)
	}
	return true
}

// CanWitchPoison reports whether the living witch still holds her poison.
func CanWitchPoison(state *GameState, witchID string) bool {
	witch := state.Player(witchID)
	if witch == nil || witch.Role != RoleWitch || !witch.IsAlive {
		return false
	}
	return witch.WitchHasPoison
}

// CanHunterShoot reports whether the hunter keeps the right to shoot.
func CanHunterShoot(state *GameState, hunterID string) bool {
	hunter := state.Player(hunterID)
	if hunter == nil || hunter.Role != RoleHunter {
		return false
	}
	return hunter.HunterCanShoot
}

func aliveExcept(state *GameState, id string) []string {
	return ids(state.filter(func(p Player) bool { return p.IsAlive && p.ID != id }))
}

func ids(players []Player) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.ID)
	}
	return out
}
