package games

// CheckWinCondition evaluates the table. The village wins once no werewolf is alive; otherwise
// the werewolf condition depends on the configured win mode.
func CheckWinCondition(state *GameState) Team {
	if len(state.AliveWerewolves()) == 0 {
		return TeamVillage
	}
	switch state.Config.RuleVariants.WinMode {
	case WinModeCityElimination:
		if len(state.AliveByAlignment(AlignmentGood)) == 0 {
			return TeamWerewolf
		}
	default:
		if len(state.AliveVillagers()) == 0 || len(state.AliveSpecials()) == 0 {
			return TeamWerewolf
		}
	}
	return TeamNone
}

// UpdateWinCondition records the current winner, moving to game over when there is one.
func UpdateWinCondition(state *GameState) *GameState {
	next := state.Clone()
	next.WinningTeam = CheckWinCondition(next)
	if next.WinningTeam != TeamNone {
		next.Phase = PhaseGameOver
	}
	return next
}

// DeclareWinner ends the game for team regardless of the table, e.g. at the day ceiling.
func DeclareWinner(state *GameState, team Team) *GameState {
	next := state.Clone()
	next.WinningTeam = team
	next.Phase = PhaseGameOver
	return next
}

// AdvanceToDay moves night to day: the day counter increments and the night's wolf target is
// cleared. Any other phase is returned unchanged.
func AdvanceToDay(state *GameState) *GameState {
	next := state.Clone()
	if state.Phase != PhaseNight {
		return next
	}
	next.Phase = PhaseDay
	next.DayNumber++
	next.WolfKillTargetID = ""
	return next
}

// AdvanceToNight moves day to night. Any other phase is returned unchanged.
func AdvanceToNight(state *GameState) *GameState {
	next := state.Clone()
	if state.Phase != PhaseDay {
		return next
	}
	next.Phase = PhaseNight
	next.WolfKillTargetID = ""
	return next
}
