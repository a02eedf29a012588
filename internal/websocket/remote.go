package websocket

import (
	"context"

	"github.com/vntrieu/werewolf/internal/orchestrator"
)

// RemoteDecider plays a seat through its WebSocket connections. A seat that is not
// connected fails immediately, so the orchestrator falls back to a random legal choice.
type RemoteDecider struct {
	hub      *Hub
	gameID   string
	playerID string
}

// NewRemoteDecider returns a decider for one human seat.
func NewRemoteDecider(hub *Hub, gameID, playerID string) *RemoteDecider {
	return &RemoteDecider{hub: hub, gameID: gameID, playerID: playerID}
}

func (d *RemoteDecider) Decide(ctx context.Context, p orchestrator.Prompt) (orchestrator.Decision, error) {
	return d.hub.Ask(ctx, d.gameID, d.playerID, p)
}

var _ orchestrator.Decider = (*RemoteDecider)(nil)
