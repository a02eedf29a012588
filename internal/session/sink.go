package session

import (
	"context"

	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/store"
)

// storeSink persists what an orchestrator records and forwards events to live seats.
type storeSink struct {
	store     store.Store
	publisher Publisher
	gameID    string
}

func (s *storeSink) Events(ctx context.Context, _ *games.GameState, events []games.Event) error {
	recs, err := s.store.AppendEvents(ctx, s.gameID, events)
	if err != nil {
		return err
	}
	if s.publisher != nil {
		s.publisher.PublishEvents(s.gameID, recs)
	}
	return nil
}

func (s *storeSink) Checkpoint(ctx context.Context, state *games.GameState) error {
	_, err := s.store.SaveSnapshot(ctx, s.gameID, state)
	return err
}
