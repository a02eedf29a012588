package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vntrieu/werewolf/internal/games"
)

// MemoryStore keeps everything in process. It is used by tests and when no database is
// configured.
type MemoryStore struct {
	mu        sync.RWMutex
	games     map[string]*Game
	snapshots map[string][][]byte
	events    map[string][]EventRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:     make(map[string]*Game),
		snapshots: make(map[string][][]byte),
		events:    make(map[string][]EventRecord),
	}
}

func (s *MemoryStore) CreateGame(_ context.Context, g *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; ok {
		return fmt.Errorf("game %s already exists", g.ID)
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	if g.Status == "" {
		g.Status = StatusInProgress
	}
	if g.WinningTeam == "" {
		g.WinningTeam = games.TeamNone
	}
	s.games[g.ID] = copyGame(g)
	return nil
}

func (s *MemoryStore) GetGame(_ context.Context, id string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyGame(g), nil
}

func (s *MemoryStore) ListGames(_ context.Context, limit int) ([]Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, *copyGame(g))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) UpdateGameStatus(_ context.Context, id string, status Status, winner games.Team, endedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return ErrNotFound
	}
	g.Status = status
	g.WinningTeam = winner
	if endedAt != nil {
		t := *endedAt
		g.EndedAt = &t
	}
	return nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, gameID string, state *games.GameState) (int, error) {
	data, err := encodeSnapshot(state)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[gameID]; !ok {
		return 0, ErrNotFound
	}
	s.snapshots[gameID] = append(s.snapshots[gameID], data)
	return len(s.snapshots[gameID]), nil
}

func (s *MemoryStore) LatestSnapshot(_ context.Context, gameID string) (*games.GameState, error) {
	s.mu.RLock()
	versions := s.snapshots[gameID]
	s.mu.RUnlock()
	if len(versions) == 0 {
		return nil, ErrNotFound
	}
	return decodeSnapshot(versions[len(versions)-1], len(versions))
}

func (s *MemoryStore) AppendEvents(_ context.Context, gameID string, events []games.Event) ([]EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[gameID]; !ok {
		return nil, ErrNotFound
	}
	now := time.Now().UTC()
	seq := len(s.events[gameID])
	out := make([]EventRecord, 0, len(events))
	for _, e := range events {
		seq++
		out = append(out, EventRecord{
			ID:        newEventID(),
			GameID:    gameID,
			Seq:       seq,
			Event:     e,
			CreatedAt: now,
		})
	}
	s.events[gameID] = append(s.events[gameID], out...)
	return out, nil
}

func (s *MemoryStore) ListEvents(_ context.Context, gameID string, afterSeq int) ([]EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.games[gameID]; !ok {
		return nil, ErrNotFound
	}
	all := s.events[gameID]
	if afterSeq < 0 {
		afterSeq = 0
	}
	if afterSeq >= len(all) {
		return []EventRecord{}, nil
	}
	return append([]EventRecord(nil), all[afterSeq:]...), nil
}

func copyGame(g *Game) *Game {
	out := *g
	out.Seats = append([]Seat(nil), g.Seats...)
	if g.EndedAt != nil {
		t := *g.EndedAt
		out.EndedAt = &t
	}
	if g.Config.RandomSeed != nil {
		seed := *g.Config.RandomSeed
		out.Config.RandomSeed = &seed
	}
	return &out
}
