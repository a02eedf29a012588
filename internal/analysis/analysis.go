// Package analysis summarises game logs, one game at a time or across a batch.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/gamelog"
)

// Statistics counts what happened in one game.
type Statistics struct {
	TotalEvents   int    `json:"total_events"`
	TotalDeaths   int    `json:"total_deaths"`
	NightKills    int    `json:"night_kills"`
	Lynches       int    `json:"lynches"`
	HunterShots   int    `json:"hunter_shots"`
	WitchSaves    int    `json:"witch_saves"`
	WitchPoisons  int    `json:"witch_poisons"`
	Protections   int    `json:"protections"`
	SeerChecks    int    `json:"seer_checks"`
	IdiotReveals  int    `json:"idiot_reveals"`
	SelfExplodes  int    `json:"self_explodes"`
	Speeches      int    `json:"speeches"`
	Votes         int    `json:"votes"`
	SheriffID     string `json:"sheriff_id,omitempty"`
	Survivors     int    `json:"survivors"`
	WolfSurvivors int    `json:"wolf_survivors"`
}

// Analyze computes Statistics for l. Deaths are counted from death announcements,
// lynches, hunter shots and self-explosions, so a saved wolf target is not a death.
func Analyze(l *gamelog.GameLog) Statistics {
	s := Statistics{TotalEvents: len(l.Events)}
	for _, e := range l.Events {
		switch e.Type {
		case games.EventNightKill:
			s.NightKills++
		case games.EventDeathAnnouncement:
			s.TotalDeaths++
		case games.EventLynch:
			s.Lynches++
			s.TotalDeaths++
		case games.EventHunterShot:
			s.HunterShots++
			s.TotalDeaths++
		case games.EventWolfSelfExplode:
			s.SelfExplodes++
			s.TotalDeaths++
		case games.EventWitchSave:
			s.WitchSaves++
		case games.EventWitchPoison:
			s.WitchPoisons++
		case games.EventGuardProtect:
			s.Protections++
		case games.EventSeerCheck:
			s.SeerChecks++
		case games.EventVillageIdiotReveal:
			s.IdiotReveals++
		case games.EventSpeech:
			s.Speeches++
		case games.EventVoteCast:
			s.Votes++
		case games.EventSheriffElected:
			s.SheriffID = e.TargetID
		}
	}
	for _, p := range l.Players {
		if !p.IsAlive {
			continue
		}
		s.Survivors++
		if p.Role == games.RoleWerewolf {
			s.WolfSurvivors++
		}
	}
	return s
}

const rule = "============================================================"

// Summary renders the headline numbers and survivors of one game.
func Summary(l *gamelog.GameLog) string {
	st := Analyze(l)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nGAME SUMMARY\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Game ID: %s\nRole Set: %s\nSeed: %d\n", l.GameID, l.RoleSet, l.Seed)
	fmt.Fprintf(&b, "\nWinner: %s\nFinal Day: %d\n", strings.ToUpper(string(l.WinningTeam)), l.FinalDay)
	fmt.Fprintf(&b, "\n--- Statistics ---\n")
	fmt.Fprintf(&b, "Night Kills: %d\nLynches: %d\nWitch Saves: %d\nWitch Poisons: %d\n", st.NightKills, st.Lynches, st.WitchSaves, st.WitchPoisons)
	fmt.Fprintf(&b, "Guard Protections: %d\nHunter Shots: %d\nSeer Checks: %d\n", st.Protections, st.HunterShots, st.SeerChecks)
	fmt.Fprintf(&b, "Speeches: %d\nVotes: %d\n", st.Speeches, st.Votes)
	if st.SheriffID != "" {
		fmt.Fprintf(&b, "Sheriff: %s\n", l.PlayerName(st.SheriffID))
	}
	fmt.Fprintf(&b, "\n--- Players ---\n")
	players := append([]gamelog.PlayerLog(nil), l.Players...)
	sort.Slice(players, func(i, j int) bool { return players[i].SeatNumber < players[j].SeatNumber })
	for _, p := range players {
		status := "ALIVE"
		if !p.IsAlive {
			status = "DEAD"
		}
		sheriff := ""
		if p.IsSheriff {
			sheriff = " [Sheriff]"
		}
		fmt.Fprintf(&b, "  Seat %2d: %-12s %-13s %s%s\n", p.SeatNumber, p.Name, strings.ToUpper(string(p.Role)), status, sheriff)
	}
	return b.String()
}

// Timeline renders every event as one line, grouped under day/phase headers.
func Timeline(l *gamelog.GameLog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nGAME TIMELINE\n%s\n", rule, rule)
	day, phase := -1, games.Phase("")
	for _, e := range l.Events {
		if e.DayNumber != day || e.Phase != phase {
			day, phase = e.DayNumber, e.Phase
			fmt.Fprintf(&b, "\n--- Day %d - %s ---\n", day, strings.ToUpper(string(phase)))
		}
		if line := describe(l, e); line != "" {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String()
}

func describe(l *gamelog.GameLog, e games.Event) string {
	actor, target := l.PlayerName(e.ActorID), l.PlayerName(e.TargetID)
	content, _ := e.Data["content"].(string)
	switch e.Type {
	case games.EventGameStart:
		return "Game started"
	case games.EventGameEnd:
		return fmt.Sprintf("Game ended, %s wins", l.WinningTeam)
	case games.EventNightKill:
		return fmt.Sprintf("Werewolves chose %s", target)
	case games.EventGuardProtect:
		return fmt.Sprintf("Guard protected %s", target)
	case games.EventWitchSave:
		return fmt.Sprintf("Witch saved %s", target)
	case games.EventWitchPoison:
		return fmt.Sprintf("Witch poisoned %s", target)
	case games.EventSeerCheck:
		return fmt.Sprintf("Seer checked %s: %v", target, e.Data["result"])
	case games.EventDeathAnnouncement:
		return fmt.Sprintf("%s was found dead", target)
	case games.EventNoDeath:
		return "Nobody died"
	case games.EventSheriffElected:
		if e.TargetID == "" {
			return "No sheriff was elected"
		}
		return fmt.Sprintf("%s elected sheriff", target)
	case games.EventSpeech, games.EventSheriffCampaignSpeech, games.EventLastWords:
		if r := []rune(content); len(r) > 50 {
			content = string(r[:50]) + "..."
		}
		return fmt.Sprintf("%s: %s", actor, content)
	case games.EventVoteCast:
		return fmt.Sprintf("%s voted for %s", actor, target)
	case games.EventVoteResult:
		if e.TargetID == "" {
			return "Vote tied, nobody lynched"
		}
		return fmt.Sprintf("Vote result: %s", target)
	case games.EventLynch:
		return fmt.Sprintf("%s was lynched", target)
	case games.EventHunterShot:
		return fmt.Sprintf("%s shot %s", actor, target)
	case games.EventBadgePass:
		return fmt.Sprintf("Badge passed to %s", target)
	case games.EventBadgeTear:
		return "Badge was torn"
	case games.EventVillageIdiotReveal:
		return fmt.Sprintf("%s revealed as village idiot", target)
	case games.EventWolfSelfExplode:
		return fmt.Sprintf("%s self-exploded", actor)
	}
	return ""
}

// Aggregate holds batch statistics across games.
type Aggregate struct {
	TotalGames       int                `json:"total_games"`
	VillageWins      int                `json:"village_wins"`
	WerewolfWins     int                `json:"werewolf_wins"`
	VillageWinRate   float64            `json:"village_win_rate"`
	WerewolfWinRate  float64            `json:"werewolf_win_rate"`
	AverageDays      float64            `json:"average_days"`
	RoleSurvival     map[string]float64 `json:"role_survival"`
	WitchCureRate    float64            `json:"witch_cure_rate"`
	WitchPoisonRate  float64            `json:"witch_poison_rate"`
	SheriffElections int                `json:"sheriff_elections"`
}

// AggregateLogs computes batch statistics. It returns the zero Aggregate for no logs.
func AggregateLogs(logs []*gamelog.GameLog) Aggregate {
	a := Aggregate{RoleSurvival: map[string]float64{}}
	if len(logs) == 0 {
		return a
	}
	type tally struct{ alive, total int }
	roles := map[games.Role]*tally{}
	days, witchGames, cures, poisons := 0, 0, 0, 0

	for _, l := range logs {
		a.TotalGames++
		switch l.WinningTeam {
		case games.TeamVillage:
			a.VillageWins++
		case games.TeamWerewolf:
			a.WerewolfWins++
		}
		days += l.FinalDay
		hasWitch := false
		for _, p := range l.Players {
			t := roles[p.Role]
			if t == nil {
				t = &tally{}
				roles[p.Role] = t
			}
			t.total++
			if p.IsAlive {
				t.alive++
			}
			if p.Role == games.RoleWitch {
				hasWitch = true
			}
		}
		st := Analyze(l)
		if hasWitch {
			witchGames++
			if st.WitchSaves > 0 {
				cures++
			}
			if st.WitchPoisons > 0 {
				poisons++
			}
		}
		if st.SheriffID != "" {
			a.SheriffElections++
		}
	}

	n := float64(a.TotalGames)
	a.VillageWinRate = float64(a.VillageWins) / n
	a.WerewolfWinRate = float64(a.WerewolfWins) / n
	a.AverageDays = float64(days) / n
	for role, t := range roles {
		a.RoleSurvival[string(role)] = float64(t.alive) / float64(t.total)
	}
	if witchGames > 0 {
		a.WitchCureRate = float64(cures) / float64(witchGames)
		a.WitchPoisonRate = float64(poisons) / float64(witchGames)
	}
	return a
}

// Report renders an Aggregate.
func (a Aggregate) Report() string {
	if a.TotalGames == 0 {
		return "No games to analyze."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nMULTI-GAME ANALYSIS REPORT\n%s\n", rule, rule)
	fmt.Fprintf(&b, "\nTotal Games Analyzed: %d\n", a.TotalGames)
	fmt.Fprintf(&b, "\nWin Rates:\n  Village: %.1f%% (%d wins)\n  Werewolf: %.1f%% (%d wins)\n",
		a.VillageWinRate*100, a.VillageWins, a.WerewolfWinRate*100, a.WerewolfWins)
	fmt.Fprintf(&b, "\nAverage Game Length: %.1f days\n", a.AverageDays)
	fmt.Fprintf(&b, "\nRole Survival Rates:\n")
	roles := make([]string, 0, len(a.RoleSurvival))
	for r := range a.RoleSurvival {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	for _, r := range roles {
		fmt.Fprintf(&b, "  %-15s: %.1f%%\n", r, a.RoleSurvival[r]*100)
	}
	fmt.Fprintf(&b, "\nWitch Usage:\n  Cure Used: %.1f%%\n  Poison Used: %.1f%%\n", a.WitchCureRate*100, a.WitchPoisonRate*100)
	return b.String()
}
