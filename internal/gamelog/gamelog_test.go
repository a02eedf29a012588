package gamelog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vntrieu/werewolf/internal/games"
)

func finishedState(t *testing.T) *games.GameState {
	t.Helper()
	s, err := games.CreateGameState(games.DefaultGameConfig().WithSeed(7), nil)
	if err != nil {
		t.Fatalf("CreateGameState: %v", err)
	}
	s.GameID = "game-7"
	wolf := s.Werewolves()[0]
	victim := s.AliveVillagers()[0]
	s = s.WithEvents(
		games.NewPublicEvent(s, games.EventGameStart, "", "", map[string]interface{}{"role_set": "A"}),
		games.NewPrivateEvent(s, games.EventNightKill, wolf.ID, victim.ID, nil, s.WerewolfIDs()...),
		games.NewPublicEvent(s, games.EventSpeech, victim.ID, "", map[string]interface{}{"content": "hello"}),
		games.NewPublicEvent(s, games.EventVoteResult, "", wolf.ID, map[string]interface{}{
			"vote_counts": map[string]interface{}{wolf.ID: 2.5, victim.ID: 1},
			"was_tie":     false,
		}),
	)
	s.Players[victim.SeatNumber-1].IsAlive = false
	return games.DeclareWinner(s, games.TeamVillage)
}

func TestFromState(t *testing.T) {
	s := finishedState(t)
	l := FromState(s)
	if l.GameID != "game-7" || l.Seed != 7 || l.RoleSet != games.RoleSetA || l.WinningTeam != games.TeamVillage {
		t.Errorf("unexpected header %+v", l)
	}
	if len(l.Players) != games.PlayerCount || len(l.Events) != 4 {
		t.Fatalf("expected 12 players and 4 events, got %d and %d", len(l.Players), len(l.Events))
	}
	dead := 0
	for _, p := range l.Players {
		if p.Role == "" {
			t.Errorf("seat %d has no role", p.SeatNumber)
		}
		if !p.IsAlive {
			dead++
		}
	}
	if dead != 1 {
		t.Errorf("expected one dead player, got %d", dead)
	}
	if got := l.EventsOfType(games.EventNightKill); len(got) != 1 || got[0].Public {
		t.Errorf("expected the private night kill kept, got %+v", got)
	}
	if name := l.PlayerName(l.Players[2].ID); name != l.Players[2].Name {
		t.Errorf("PlayerName: got %q", name)
	}
	if name := l.PlayerName("unknown"); name != "unknown" {
		t.Errorf("PlayerName fallback: got %q", name)
	}
}

func TestSaveLoad(t *testing.T) {
	l := FromState(finishedState(t))
	dir := t.TempDir()

	for _, name := range []string{"game.json", "game.yaml", "nested/game.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := l.Save(path); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.GameID != l.GameID || got.Seed != l.Seed || got.WinningTeam != l.WinningTeam || got.Variants != l.Variants {
				t.Errorf("header did not round-trip: %+v", got)
			}
			if len(got.Players) != len(l.Players) || got.Players[0] != l.Players[0] {
				t.Errorf("players did not round-trip")
			}
			if len(got.Events) != len(l.Events) || got.Events[1].Type != games.EventNightKill || len(got.Events[1].VisibleTo) != 4 {
				t.Errorf("events did not round-trip: %+v", got.Events)
			}
			if got.Events[2].Data["content"] != "hello" {
				t.Errorf("event data lost: %+v", got.Events[2].Data)
			}
			counts, ok := got.Events[3].Data["vote_counts"].(map[string]interface{})
			if !ok {
				t.Fatalf("vote_counts decoded as %T", got.Events[3].Data["vote_counts"])
			}
			if counts[l.Events[3].TargetID] != 2.5 || len(counts) != 2 {
				t.Errorf("unexpected vote_counts %v", counts)
			}
			var buf bytes.Buffer
			if err := got.Encode(&buf, FormatJSON); err != nil {
				t.Errorf("re-encode as json: %v", err)
			}
		})
	}
}

func TestDecode_FormatsAgree(t *testing.T) {
	l := FromState(finishedState(t))
	decoded := make(map[Format]*GameLog)
	for _, format := range []Format{FormatJSON, FormatYAML} {
		var buf bytes.Buffer
		if err := l.Encode(&buf, format); err != nil {
			t.Fatalf("Encode %s: %v", format, err)
		}
		got, err := Decode(&buf, format)
		if err != nil {
			t.Fatalf("Decode %s: %v", format, err)
		}
		decoded[format] = got
	}
	if !reflect.DeepEqual(decoded[FormatJSON].Events, decoded[FormatYAML].Events) {
		t.Errorf("json and yaml events differ:\n%+v\n%+v", decoded[FormatJSON].Events, decoded[FormatYAML].Events)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	l := FromState(finishedState(t))
	if err := l.Save(filepath.Join(t.TempDir(), "game.txt")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat from Save, got %v", err)
	}
	if _, err := Load("game.toml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat from Load, got %v", err)
	}
	var buf bytes.Buffer
	if err := l.Encode(&buf, "xml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat from Encode, got %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	l := FromState(finishedState(t))
	for _, name := range []string{"a.json", "b.yaml"} {
		if err := l.Save(filepath.Join(dir, name)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	logs, errs := LoadDir(dir)
	if len(logs) != 2 {
		t.Errorf("expected 2 logs, got %d", len(logs))
	}
	if len(errs) != 1 {
		t.Errorf("expected 1 error for broken.json, got %v", errs)
	}
}
