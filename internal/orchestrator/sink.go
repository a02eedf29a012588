package orchestrator

import (
	"context"

	"github.com/vntrieu/werewolf/internal/games"
)

// Sink receives everything the orchestrator records. Errors are logged and do not stop
// the game.
type Sink interface {
	// Events is called after events were appended to state's history.
	Events(ctx context.Context, state *games.GameState, events []games.Event) error
	// Checkpoint is called at every phase boundary and once more when the game ends.
	Checkpoint(ctx context.Context, state *games.GameState) error
}

type nopSink struct{}

func (nopSink) Events(context.Context, *games.GameState, []games.Event) error { return nil }
func (nopSink) Checkpoint(context.Context, *games.GameState) error            { return nil }
