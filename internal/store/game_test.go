package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vntrieu/werewolf/internal/games"
)

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	testStore(t, SetupTestSQLite(t))
}

func TestPostgresStore(t *testing.T) {
	pool := SetupTestDB(t)
	defer pool.Close()
	testStore(t, NewPostgresStore(pool))
}

func newStoredGame(t *testing.T, seed int64) (*Game, *games.GameState) {
	t.Helper()
	cfg := games.DefaultGameConfig().WithSeed(seed)
	state, err := games.CreateGameState(cfg, nil)
	if err != nil {
		t.Fatalf("CreateGameState: %v", err)
	}
	state.GameID = uuid.NewString()
	g := &Game{
		ID:          state.GameID,
		Config:      cfg,
		Seed:        state.Seed,
		HostKeyHash: "hash",
	}
	for _, p := range state.Players {
		controller := ControllerBot
		if p.SeatNumber == 1 {
			controller = ControllerHuman
		}
		g.Seats = append(g.Seats, Seat{PlayerID: p.ID, SeatNumber: p.SeatNumber, Name: p.Name, Controller: controller})
	}
	return g, state
}

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("create and get game", func(t *testing.T) {
		g, _ := newStoredGame(t, 1)
		if err := s.CreateGame(ctx, g); err != nil {
			t.Fatalf("CreateGame: %v", err)
		}
		got, err := s.GetGame(ctx, g.ID)
		if err != nil {
			t.Fatalf("GetGame: %v", err)
		}
		if got.Status != StatusInProgress || got.WinningTeam != games.TeamNone {
			t.Errorf("unexpected status %s / %s", got.Status, got.WinningTeam)
		}
		if got.Seed != 1 || got.HostKeyHash != "hash" || got.Config.RoleSet != games.RoleSetA {
			t.Errorf("fields did not round-trip: %+v", got)
		}
		if len(got.Seats) != games.PlayerCount || got.Seats[0].SeatNumber != 1 || got.Seats[0].Controller != ControllerHuman {
			t.Errorf("unexpected seats %+v", got.Seats)
		}
		if got.CreatedAt.IsZero() {
			t.Error("expected created_at")
		}
	})

	t.Run("unknown game", func(t *testing.T) {
		if _, err := s.GetGame(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := s.ListEvents(ctx, uuid.NewString(), 0); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound from ListEvents, got %v", err)
		}
		if _, err := s.LatestSnapshot(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound from LatestSnapshot, got %v", err)
		}
		if err := s.UpdateGameStatus(ctx, uuid.NewString(), StatusFinished, games.TeamVillage, nil); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound from UpdateGameStatus, got %v", err)
		}
	})

	t.Run("update status", func(t *testing.T) {
		g, _ := newStoredGame(t, 2)
		if err := s.CreateGame(ctx, g); err != nil {
			t.Fatalf("CreateGame: %v", err)
		}
		ended := time.Now().UTC().Truncate(time.Millisecond)
		if err := s.UpdateGameStatus(ctx, g.ID, StatusFinished, games.TeamWerewolf, &ended); err != nil {
			t.Fatalf("UpdateGameStatus: %v", err)
		}
		got, err := s.GetGame(ctx, g.ID)
		if err != nil {
			t.Fatalf("GetGame: %v", err)
		}
		if got.Status != StatusFinished || got.WinningTeam != games.TeamWerewolf {
			t.Errorf("unexpected status %s / %s", got.Status, got.WinningTeam)
		}
		if got.EndedAt == nil || !got.EndedAt.Equal(ended) {
			t.Errorf("expected ended_at %v, got %v", ended, got.EndedAt)
		}
	})

	t.Run("snapshots are versioned", func(t *testing.T) {
		g, state := newStoredGame(t, 3)
		if err := s.CreateGame(ctx, g); err != nil {
			t.Fatalf("CreateGame: %v", err)
		}
		v1, err := s.SaveSnapshot(ctx, g.ID, state)
		if err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
		next := games.AdvanceToDay(state)
		v2, err := s.SaveSnapshot(ctx, g.ID, next)
		if err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
		if v1 != 1 || v2 != 2 {
			t.Errorf("expected versions 1 and 2, got %d and %d", v1, v2)
		}
		latest, err := s.LatestSnapshot(ctx, g.ID)
		if err != nil {
			t.Fatalf("LatestSnapshot: %v", err)
		}
		if latest.Version != 2 || latest.Phase != games.PhaseDay || latest.DayNumber != 1 {
			t.Errorf("unexpected latest snapshot: v%d %s day %d", latest.Version, latest.Phase, latest.DayNumber)
		}
		if len(latest.Players) != games.PlayerCount || latest.Players[0].ID != state.Players[0].ID {
			t.Error("players did not round-trip")
		}
	})

	t.Run("events append in order", func(t *testing.T) {
		g, state := newStoredGame(t, 4)
		if err := s.CreateGame(ctx, g); err != nil {
			t.Fatalf("CreateGame: %v", err)
		}
		first := []games.Event{
			games.NewPublicEvent(state, games.EventGameStart, "", "", map[string]interface{}{"role_set": "A"}),
			games.NewPrivateEvent(state, games.EventSeerCheck, state.Players[0].ID, state.Players[1].ID,
				map[string]interface{}{"result": "good"}, state.Players[0].ID),
		}
		recs, err := s.AppendEvents(ctx, g.ID, first)
		if err != nil {
			t.Fatalf("AppendEvents: %v", err)
		}
		if len(recs) != 2 || recs[0].Seq != 1 || recs[1].Seq != 2 || recs[0].ID == "" || recs[0].ID == recs[1].ID {
			t.Fatalf("unexpected records %+v", recs)
		}
		if _, err := s.AppendEvents(ctx, g.ID, []games.Event{games.NewPublicEvent(state, games.EventNoDeath, "", "", nil)}); err != nil {
			t.Fatalf("AppendEvents: %v", err)
		}

		all, err := s.ListEvents(ctx, g.ID, 0)
		if err != nil {
			t.Fatalf("ListEvents: %v", err)
		}
		if len(all) != 3 || all[2].Seq != 3 || all[2].Event.Type != games.EventNoDeath {
			t.Fatalf("unexpected events %+v", all)
		}
		private := all[1].Event
		if private.Public || len(private.VisibleTo) != 1 || private.VisibleTo[0] != state.Players[0].ID || private.Data["result"] != "good" {
			t.Errorf("private event did not round-trip: %+v", private)
		}

		tail, err := s.ListEvents(ctx, g.ID, 2)
		if err != nil {
			t.Fatalf("ListEvents: %v", err)
		}
		if len(tail) != 1 || tail[0].Seq != 3 {
			t.Errorf("expected only seq 3, got %+v", tail)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		older, _ := newStoredGame(t, 5)
		older.CreatedAt = time.Now().Add(-time.Hour)
		newer, _ := newStoredGame(t, 6)
		newer.CreatedAt = time.Now()
		for _, g := range []*Game{older, newer} {
			if err := s.CreateGame(ctx, g); err != nil {
				t.Fatalf("CreateGame: %v", err)
			}
		}
		list, err := s.ListGames(ctx, 100)
		if err != nil {
			t.Fatalf("ListGames: %v", err)
		}
		var iOlder, iNewer = -1, -1
		for i, g := range list {
			switch g.ID {
			case older.ID:
				iOlder = i
			case newer.ID:
				iNewer = i
			}
		}
		if iOlder < 0 || iNewer < 0 {
			t.Fatalf("expected both games listed, got %d games", len(list))
		}
		if _, isPostgres := s.(*PostgresStore); !isPostgres && iNewer > iOlder {
			t.Errorf("expected newer game before older one")
		}
		if limited, _ := s.ListGames(ctx, 1); len(limited) != 1 {
			t.Errorf("expected limit 1, got %d", len(limited))
		}
	})
}
