package games

import (
	"errors"
	"testing"
)

// newTestGame deals a seeded 12-player table.
func newTestGame(t *testing.T, seed int64, set RoleSet) *GameState {
	t.Helper()
	cfg := DefaultGameConfig().WithSeed(seed)
	cfg.RoleSet = set
	s, err := CreateGameState(cfg, nil)
	if err != nil {
		t.Fatalf("CreateGameState: %v", err)
	}
	return s
}

// withVariants returns a copy of s with its rule variants replaced.
func withVariants(s *GameState, mutate func(*RuleVariants)) *GameState {
	out := s.Clone()
	mutate(&out.Config.RuleVariants)
	return out
}

// holder returns the id of the first player with role.
func holder(t *testing.T, s *GameState, role Role) string {
	t.Helper()
	p := s.PlayerByRole(role)
	if p == nil {
		t.Fatalf("no player with role %s", role)
	}
	return p.ID
}

// holders returns the ids of every player with role, in seat order.
func holders(s *GameState, role Role) []string {
	var out []string
	for _, p := range s.Players {
		if p.Role == role {
			out = append(out, p.ID)
		}
	}
	return out
}

func kill(s *GameState, ids ...string) *GameState {
	out := s.Clone()
	for _, id := range ids {
		out.Player(id).IsAlive = false
	}
	return out
}

func TestCreateGameState(t *testing.T) {
	t.Run("seats are a permutation and ids are unique", func(t *testing.T) {
		s := newTestGame(t, 7, RoleSetA)
		if len(s.Players) != PlayerCount {
			t.Fatalf("expected %d players, got %d", PlayerCount, len(s.Players))
		}
		seats := make(map[int]bool)
		ids := make(map[string]bool)
		for _, p := range s.Players {
			if p.SeatNumber < 1 || p.SeatNumber > PlayerCount {
				t.Errorf("seat %d out of range", p.SeatNumber)
			}
			seats[p.SeatNumber] = true
			ids[p.ID] = true
			if p.Alignment != AlignmentOf(p.Role) {
				t.Errorf("player %s: alignment %s does not match role %s", p.ID, p.Alignment, p.Role)
			}
			if !p.IsAlive || !p.WitchHasCure || !p.WitchHasPoison || !p.HunterCanShoot {
				t.Errorf("player %s not in initial condition: %+v", p.ID, p)
			}
		}
		if len(seats) != PlayerCount {
			t.Errorf("expected %d distinct seats, got %d", PlayerCount, len(seats))
		}
		if len(ids) != PlayerCount {
			t.Errorf("expected %d distinct ids, got %d", PlayerCount, len(ids))
		}
	})

	t.Run("starts on night zero", func(t *testing.T) {
		s := newTestGame(t, 7, RoleSetB)
		if s.DayNumber != 0 || s.Phase != PhaseNight {
			t.Errorf("expected day 0 night, got day %d %s", s.DayNumber, s.Phase)
		}
		if s.WinningTeam != TeamNone {
			t.Errorf("expected no winner, got %s", s.WinningTeam)
		}
		if s.Seed != 7 {
			t.Errorf("expected seed 7, got %d", s.Seed)
		}
		if !ValidateRoleComposition(s.Players, RoleSetB) {
			t.Error("expected role set B composition")
		}
	})

	t.Run("same seed deals the same table", func(t *testing.T) {
		a := newTestGame(t, 42, RoleSetA)
		b := newTestGame(t, 42, RoleSetA)
		for i := range a.Players {
			if a.Players[i].ID != b.Players[i].ID || a.Players[i].Role != b.Players[i].Role {
				t.Fatalf("seat %d differs: %+v vs %+v", i+1, a.Players[i], b.Players[i])
			}
		}
	})

	t.Run("default names", func(t *testing.T) {
		s := newTestGame(t, 1, RoleSetA)
		if s.Players[0].Name != "Player 1" || s.Players[11].Name != "Player 12" {
			t.Errorf("unexpected names %q .. %q", s.Players[0].Name, s.Players[11].Name)
		}
	})

	t.Run("wrong name count", func(t *testing.T) {
		_, err := CreateGameState(DefaultGameConfig(), []string{"a", "b"})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("wrong player count", func(t *testing.T) {
		cfg := DefaultGameConfig()
		cfg.NumPlayers = 10
		_, err := CreateGameState(cfg, nil)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("no seed still deals", func(t *testing.T) {
		s, err := CreateGameState(DefaultGameConfig(), nil)
		if err != nil {
			t.Fatalf("CreateGameState: %v", err)
		}
		if !ValidateRoleComposition(s.Players, RoleSetA) {
			t.Error("expected role set A composition")
		}
	})
}

func TestRoleComposition(t *testing.T) {
	cases := []struct {
		set      RoleSet
		special  Role
		excluded Role
	}{
		{RoleSetA, RoleGuard, RoleVillageIdiot},
		{RoleSetB, RoleVillageIdiot, RoleGuard},
	}
	for _, tc := range cases {
		t.Run(string(tc.set), func(t *testing.T) {
			roles := RoleComposition(tc.set)
			if len(roles) != 12 {
				t.Fatalf("expected 12 roles, got %d", len(roles))
			}
			counts := make(map[Role]int)
			for _, r := range roles {
				counts[r]++
			}
			if counts[RoleWerewolf] != 4 || counts[RoleVillager] != 4 {
				t.Errorf("expected 4 werewolves and 4 villagers, got %v", counts)
			}
			for _, r := range []Role{RoleSeer, RoleWitch, RoleHunter, tc.special} {
				if counts[r] != 1 {
					t.Errorf("expected one %s, got %d", r, counts[r])
				}
			}
			if counts[tc.excluded] != 0 {
				t.Errorf("did not expect %s in set %s", tc.excluded, tc.set)
			}
		})
	}
}

func TestAlignmentOf(t *testing.T) {
	for _, r := range []Role{RoleVillager, RoleSeer, RoleWitch, RoleHunter, RoleGuard, RoleVillageIdiot} {
		if AlignmentOf(r) != AlignmentGood {
			t.Errorf("%s: expected good", r)
		}
	}
	if AlignmentOf(RoleWerewolf) != AlignmentWerewolf {
		t.Error("werewolf: expected werewolf alignment")
	}
}

func TestValidateRoleComposition_RejectsSwappedRole(t *testing.T) {
	s := newTestGame(t, 3, RoleSetA)
	players := append([]Player(nil), s.Players...)
	for i := range players {
		if players[i].Role == RoleGuard {
			players[i].Role = RoleVillageIdiot
		}
	}
	if ValidateRoleComposition(players, RoleSetA) {
		t.Error("expected composition with an idiot to fail set A")
	}
	if ValidateRoleComposition(players[:11], RoleSetB) {
		t.Error("expected 11 players to fail")
	}
}
