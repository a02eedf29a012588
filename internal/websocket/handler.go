package websocket

import (
	"context"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/ratelimit"
)

// StateProvider returns a game as one seat may see it.
type StateProvider interface {
	View(ctx context.Context, gameID, playerID string) (*games.PlayerView, error)
}

// EventHandler processes messages coming from seat connections.
type EventHandler struct {
	hub         *Hub
	states      StateProvider
	rateLimiter ratelimit.Limiter
	log         zerolog.Logger
}

// NewEventHandler creates a new EventHandler. rateLimiter is optional; when set, decisions
// are rate-limited by client key (e.g. IP).
func NewEventHandler(hub *Hub, states StateProvider, rateLimiter ratelimit.Limiter, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		hub:         hub,
		states:      states,
		rateLimiter: rateLimiter,
		log:         logger.With().Str("component", "ws_handler").Logger(),
	}
}

// HandleMessage dispatches a client message. Unknown or invalid types get an error envelope.
func (h *EventHandler) HandleMessage(ctx context.Context, client *Client, msg *ClientInMessage) {
	if msg == nil {
		h.hub.SendToClient(client, errorEnvelope("invalid message"))
		return
	}
	if len(msg.Type) > MaxClientMessageTypeLength || !ValidClientMessageTypes[msg.Type] {
		h.hub.SendToClient(client, errorEnvelope("unsupported message type"))
		return
	}
	switch msg.Type {
	case ClientMessageTypeDecision:
		h.handleDecision(client, msg)
	case ClientMessageTypeSyncState:
		h.handleSyncState(ctx, client)
	}
}

func (h *EventHandler) handleDecision(client *Client, msg *ClientInMessage) {
	if h.rateLimiter != nil && client.RateLimitKey != "" {
		if allowed, _ := h.rateLimiter.Allow(client.RateLimitKey); !allowed {
			h.hub.SendToClient(client, errorEnvelope("rate limit exceeded; try again later"))
			return
		}
	}
	if msg.CorrelationID == "" || msg.Decision == nil {
		h.hub.SendToClient(client, errorEnvelope("decision requires correlation_id and decision"))
		return
	}
	d := *msg.Decision
	d.Text = trimToMax(d.Text, MaxSpeechLength)
	if err := h.hub.Resolve(client.GameID, client.PlayerID, msg.CorrelationID, d); err != nil {
		h.hub.SendToClient(client, errorEnvelope("unknown or expired prompt"))
		return
	}
	h.log.Debug().Str("game_id", client.GameID).Str("player_id", client.PlayerID).Msg("decision received")
}

// handleSyncState sends the seat's current view to that connection only.
func (h *EventHandler) handleSyncState(ctx context.Context, client *Client) {
	if h.states == nil {
		h.hub.SendToClient(client, errorEnvelope("sync_state not available"))
		return
	}
	view, err := h.states.View(ctx, client.GameID, client.PlayerID)
	if err != nil {
		h.hub.SendToClient(client, errorEnvelope("failed to load state"))
		return
	}
	h.hub.SendToClient(client, &ServerEnvelope{Type: ServerTypeState, Payload: view})
}

// trimToMax cuts s to at most max bytes without splitting a rune.
func trimToMax(s string, max int) string {
	if len(s) <= max {
		return s
	}
	end := max
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end]
}
