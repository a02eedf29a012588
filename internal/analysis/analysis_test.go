package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/gamelog"
)

func sampleLog() *gamelog.GameLog {
	return &gamelog.GameLog{
		GameID:      "g1",
		RoleSet:     games.RoleSetA,
		WinningTeam: games.TeamVillage,
		FinalDay:    3,
		Players: []gamelog.PlayerLog{
			{ID: "w1", Name: "Ann", SeatNumber: 2, Role: games.RoleWerewolf, IsAlive: false},
			{ID: "s1", Name: "Bob", SeatNumber: 1, Role: games.RoleSeer, IsAlive: true, IsSheriff: true},
			{ID: "h1", Name: "Cid", SeatNumber: 3, Role: games.RoleHunter, IsAlive: false},
			{ID: "x1", Name: "Dee", SeatNumber: 4, Role: games.RoleWitch, IsAlive: true},
		},
		Events: []games.Event{
			{Type: games.EventGameStart, Phase: games.PhaseNight, Public: true},
			{Type: games.EventGuardProtect, Phase: games.PhaseNight, TargetID: "s1"},
			{Type: games.EventNightKill, Phase: games.PhaseNight, ActorID: "w1", TargetID: "h1"},
			{Type: games.EventWitchPoison, Phase: games.PhaseNight, TargetID: "w1"},
			{Type: games.EventSeerCheck, Phase: games.PhaseNight, TargetID: "w1", Data: map[string]interface{}{"result": "werewolf"}},
			{Type: games.EventSheriffElected, DayNumber: 1, Phase: games.PhaseDay, TargetID: "s1", Public: true},
			{Type: games.EventDeathAnnouncement, DayNumber: 1, Phase: games.PhaseDay, TargetID: "h1", Public: true},
			{Type: games.EventDeathAnnouncement, DayNumber: 1, Phase: games.PhaseDay, TargetID: "w1", Public: true},
			{Type: games.EventSpeech, DayNumber: 1, Phase: games.PhaseDay, ActorID: "s1", Public: true,
				Data: map[string]interface{}{"content": "I checked Ann and she is a werewolf, trust me on this one please"}},
			{Type: games.EventVoteCast, DayNumber: 1, Phase: games.PhaseDay, ActorID: "s1", TargetID: "x1", Public: true},
			{Type: games.EventGameEnd, DayNumber: 1, Phase: games.PhaseDay, Public: true},
		},
	}
}

func TestAnalyze(t *testing.T) {
	st := Analyze(sampleLog())
	want := Statistics{
		TotalEvents:   11,
		TotalDeaths:   2,
		NightKills:    1,
		WitchPoisons:  1,
		Protections:   1,
		SeerChecks:    1,
		Speeches:      1,
		Votes:         1,
		SheriffID:     "s1",
		Survivors:     2,
		WolfSurvivors: 0,
	}
	if st != want {
		t.Errorf("Analyze:\n got %+v\nwant %+v", st, want)
	}
}

func TestSummaryAndTimeline(t *testing.T) {
	l := sampleLog()
	summary := Summary(l)
	for _, want := range []string{"Winner: VILLAGE", "Final Day: 3", "Sheriff: Bob", "Seat  1: Bob", "[Sheriff]"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
	if strings.Index(summary, "Seat  1") > strings.Index(summary, "Seat  2") {
		t.Error("players should be listed in seat order")
	}

	timeline := Timeline(l)
	for _, want := range []string{"--- Day 0 - NIGHT ---", "--- Day 1 - DAY ---", "Werewolves chose Cid", "Cid was found dead", "Bob voted for Dee", "..."} {
		if !strings.Contains(timeline, want) {
			t.Errorf("timeline missing %q:\n%s", want, timeline)
		}
	}
}

func TestAggregateLogs(t *testing.T) {
	if a := AggregateLogs(nil); a.TotalGames != 0 || a.Report() != "No games to analyze." {
		t.Errorf("unexpected empty aggregate %+v", a)
	}

	first := sampleLog()
	second := sampleLog()
	second.WinningTeam = games.TeamWerewolf
	second.FinalDay = 5
	second.Players[0].IsAlive = true
	second.Events = nil

	a := AggregateLogs([]*gamelog.GameLog{first, second})
	if a.TotalGames != 2 || a.VillageWins != 1 || a.WerewolfWins != 1 {
		t.Errorf("unexpected wins %+v", a)
	}
	if a.VillageWinRate != 0.5 || a.AverageDays != 4 {
		t.Errorf("unexpected rates %+v", a)
	}
	if a.RoleSurvival["werewolf"] != 0.5 || a.RoleSurvival["seer"] != 1 || a.RoleSurvival["hunter"] != 0 {
		t.Errorf("unexpected role survival %+v", a.RoleSurvival)
	}
	if a.WitchPoisonRate != 0.5 || a.WitchCureRate != 0 || a.SheriffElections != 1 {
		t.Errorf("unexpected witch/sheriff stats %+v", a)
	}
	if math.IsNaN(a.WerewolfWinRate) {
		t.Error("NaN win rate")
	}
	if report := a.Report(); !strings.Contains(report, "Village: 50.0% (1 wins)") || !strings.Contains(report, "Average Game Length: 4.0 days") {
		t.Errorf("unexpected report:\n%s", report)
	}
}
