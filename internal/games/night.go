package games

// nightInputs holds the first action of each night category; later duplicates are ignored.
type nightInputs struct {
	guard, wolf, cure, poison, seer *Action
}

func collectNightInputs(actions []Action) nightInputs {
	var in nightInputs
	pick := func(slot **Action, a *Action) {
		if *slot == nil {
			*slot = a
		}
	}
	for i := range actions {
		a := &actions[i]
		switch a.Type {
		case ActionGuardProtect:
			pick(&in.guard, a)
		case ActionWolfKill:
			pick(&in.wolf, a)
		case ActionWitchCure:
			pick(&in.cure, a)
		case ActionWitchPoison:
			pick(&in.poison, a)
		case ActionSeerCheck:
			pick(&in.seer, a)
		}
	}
	return in
}

// ResolveNight applies one night of hidden actions and resolves deaths. Illegal actions are
// dropped silently. Resolution order is guard, werewolves, witch cure, witch poison, seer,
// then deaths.
func ResolveNight(state *GameState, actions []Action) (*GameState, []Event) {
	next := state.Clone()
	rules := next.Config.RuleVariants
	in := collectNightInputs(actions)
	var events []Event

	protectedID := ""
	if a := in.guard; a != nil {
		guard := next.Player(a.ActorID)
		target := next.Player(a.TargetID)
		if guard != nil && guard.IsAlive && guard.Role == RoleGuard && target != nil && target.IsAlive {
			legal := target.ID != guard.GuardLastProtected &&
				(target.ID != guard.ID || rules.GuardCanSelfGuard)
			guard.GuardLastProtected = target.ID
			if legal {
				protectedID = target.ID
				events = append(events, NewPrivateEvent(next, EventGuardProtect, guard.ID, target.ID, nil, guard.ID))
			}
		}
	}

	wolfTargetID := ""
	if a := in.wolf; a != nil {
		wolf := next.Player(a.ActorID)
		target := next.Player(a.TargetID)
		if wolf != nil && wolf.IsAlive && wolf.Role == RoleWerewolf && target != nil && target.IsAlive &&
			(target.Role != RoleWerewolf || rules.AllowWolfSelfKnife) {
			wolfTargetID = target.ID
			events = append(events, NewPrivateEvent(next, EventNightKill, wolf.ID, target.ID, nil, next.WerewolfIDs()...))
		}
	}

	curedID, poisonedID := "", ""
	witch := next.PlayerByRole(RoleWitch)
	if witch != nil && witch.IsAlive {
		cureAttempted := false
		if a := in.cure; a != nil && a.ActorID == witch.ID {
			cureAttempted = true
			if witch.WitchHasCure && wolfTargetID != "" && a.TargetID == wolfTargetID &&
				(a.TargetID != witch.ID || selfHealAllowed(next)) {
				curedID = wolfTargetID
				witch.WitchHasCure = false
				events = append(events, NewPrivateEvent(next, EventWitchSave, witch.ID, curedID, nil, witch.ID))
			}
		}
		if a := in.poison; a != nil && a.ActorID == witch.ID && witch.WitchHasPoison &&
			(rules.WitchCanUseBothPotions || !cureAttempted) {
			if target := next.Player(a.TargetID); target != nil && target.IsAlive && target.ID != witch.ID {
				poisonedID = target.ID
				witch.WitchHasPoison = false
				events = append(events, NewPrivateEvent(next, EventWitchPoison, witch.ID, poisonedID, nil, witch.ID))
			}
		}
	}

	if a := in.seer; a != nil {
		seer := next.Player(a.ActorID)
		target := next.Player(a.TargetID)
		if seer != nil && seer.IsAlive && seer.Role == RoleSeer && target != nil && target.IsAlive && target.ID != seer.ID {
			seer.SeerChecks = append(seer.SeerChecks, SeerCheck{TargetID: target.ID, Result: target.Alignment})
			events = append(events, NewPrivateEvent(next, EventSeerCheck, seer.ID, target.ID,
				map[string]interface{}{"result": string(target.Alignment)}, seer.ID))
		}
	}

	if wolfTargetID != "" {
		target := next.Player(wolfTargetID)
		protected := protectedID == wolfTargetID
		cured := curedID == wolfTargetID
		dies := false
		switch {
		case protected && cured:
			dies = rules.SameGuardSameSaveKills
		case protected || cured:
			dies = false
		default:
			dies = true
		}
		if dies && target.IsAlive {
			target.IsAlive = false
			if target.Role == RoleHunter {
				if poisonedID == target.ID {
					target.HunterCanShoot = rules.HunterCanShootIfPoisoned
				} else {
					target.HunterCanShoot = rules.HunterCanShootIfNightKilled
				}
			}
		}
	}

	if poisonedID != "" {
		target := next.Player(poisonedID)
		if target.IsAlive {
			target.IsAlive = false
			if target.Role == RoleHunter {
				target.HunterCanShoot = rules.HunterCanShootIfPoisoned
			}
		}
	}

	next.WolfKillTargetID = wolfTargetID
	return next, events
}

// selfHealAllowed applies the night-1 or later-night self-heal variant.
func selfHealAllowed(s *GameState) bool {
	if s.DayNumber == 0 {
		return s.Config.RuleVariants.WitchCanSelfHealN1
	}
	return s.Config.RuleVariants.WitchCanSelfHeal
}

// WithWolfTarget records the werewolves' chosen victim before the witch decides, so
// CanWitchCure can be answered. Illegal targets leave the state unchanged.
func WithWolfTarget(state *GameState, targetID string) *GameState {
	next := state.Clone()
	target := next.Player(targetID)
	if target == nil || !target.IsAlive {
		return next
	}
	if target.Role == RoleWerewolf && !next.Config.RuleVariants.AllowWolfSelfKnife {
		return next
	}
	next.WolfKillTargetID = targetID
	return next
}
