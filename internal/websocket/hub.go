package websocket

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/orchestrator"
	"github.com/vntrieu/werewolf/internal/store"
)

var (
	// ErrNotConnected is returned by Ask when the seat has no open connection.
	ErrNotConnected = errors.New("seat not connected")
	// ErrUnknownPrompt is returned by Resolve for an unknown, answered or foreign prompt.
	ErrUnknownPrompt = errors.New("unknown prompt")
)

// Hub maintains the set of active clients per game, fans out events by visibility and
// routes decision prompts to seats.
type Hub struct {
	// Registered clients by game_id -> client map
	games map[string]map[*Client]bool

	broadcast  chan *BroadcastMessage
	register   chan *Client
	unregister chan *Client

	eventHandler *EventHandler

	// Open prompts by correlation id
	pending map[string]*pendingPrompt
	pmu     sync.Mutex

	log zerolog.Logger
	mu  sync.RWMutex
}

type pendingPrompt struct {
	gameID   string
	playerID string
	answer   chan orchestrator.Decision
}

// BroadcastMessage is one delivery request. With Event set, every client of the game that
// may see the event receives it. With Envelope set, delivery is narrowed by PlayerID or
// Client when those are set.
type BroadcastMessage struct {
	GameID   string
	Seq      int
	Event    *games.Event
	Envelope *ServerEnvelope
	PlayerID string
	Client   *Client
}

// NewHub creates a new Hub.
func NewHub(eventHandler *EventHandler, logger zerolog.Logger) *Hub {
	return &Hub{
		games:        make(map[string]map[*Client]bool),
		broadcast:    make(chan *BroadcastMessage, 256),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		eventHandler: eventHandler,
		pending:      make(map[string]*pendingPrompt),
		log:          logger.With().Str("component", "ws_hub").Logger(),
	}
}

// SetEventHandler sets the event handler for the hub.
func (h *Hub) SetEventHandler(handler *EventHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.eventHandler = handler
}

func (h *Hub) handler() *EventHandler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.eventHandler
}

// Run starts the hub's main loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.games[client.GameID] == nil {
				h.games[client.GameID] = make(map[*Client]bool)
			}
			h.games[client.GameID][client] = true
			total := len(h.games[client.GameID])
			h.mu.Unlock()
			h.log.Debug().Str("game_id", client.GameID).Str("player_id", client.PlayerID).Int("total", total).Msg("ws client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			h.log.Debug().Str("game_id", client.GameID).Str("player_id", client.PlayerID).Msg("ws client unregistered")

		case message := <-h.broadcast:
			h.mu.Lock()
			h.deliver(message)
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.games[client.GameID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.games, client.GameID)
	}
}

// deliver must be called with mu held.
func (h *Hub) deliver(message *BroadcastMessage) {
	out := message.Envelope
	if message.Event != nil {
		out = &ServerEnvelope{
			Type:    ServerTypeEvent,
			Event:   string(message.Event.Type),
			Payload: EventPayload{Seq: message.Seq, Event: *message.Event},
		}
	}
	if out == nil {
		return
	}
	for client := range h.games[message.GameID] {
		if message.Client != nil && client != message.Client {
			continue
		}
		if message.PlayerID != "" && client.PlayerID != message.PlayerID {
			continue
		}
		if message.Event != nil && !message.Event.VisibleToPlayer(client.PlayerID) {
			continue
		}
		select {
		case client.send <- out:
		default:
			h.log.Warn().Str("game_id", client.GameID).Str("player_id", client.PlayerID).Msg("ws client too slow, dropping")
			h.remove(client)
		}
	}
}

// PublishEvents sends persisted events to every client allowed to see them.
func (h *Hub) PublishEvents(gameID string, records []store.EventRecord) {
	for i := range records {
		rec := records[i]
		h.broadcast <- &BroadcastMessage{GameID: gameID, Seq: rec.Seq, Event: &rec.Event}
	}
}

// SendToClient queues an envelope for one connection.
func (h *Hub) SendToClient(client *Client, envelope *ServerEnvelope) {
	h.broadcast <- &BroadcastMessage{GameID: client.GameID, Envelope: envelope, Client: client}
}

// GetGameClientCount returns the number of clients connected to a game.
func (h *Hub) GetGameClientCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

// Connected reports whether playerID has at least one open connection to gameID.
func (h *Hub) Connected(gameID, playerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.games[gameID] {
		if client.PlayerID == playerID {
			return true
		}
	}
	return false
}

// Ask sends p to the seat's connections and waits for the first answer or ctx.
func (h *Hub) Ask(ctx context.Context, gameID, playerID string, p orchestrator.Prompt) (orchestrator.Decision, error) {
	if !h.Connected(gameID, playerID) {
		return orchestrator.Decision{}, ErrNotConnected
	}
	id := uuid.NewString()
	pending := &pendingPrompt{gameID: gameID, playerID: playerID, answer: make(chan orchestrator.Decision, 1)}
	h.pmu.Lock()
	h.pending[id] = pending
	h.pmu.Unlock()
	defer func() {
		h.pmu.Lock()
		delete(h.pending, id)
		h.pmu.Unlock()
	}()

	msg := &BroadcastMessage{
		GameID:   gameID,
		PlayerID: playerID,
		Envelope: &ServerEnvelope{Type: ServerTypePrompt, Event: string(p.Kind), CorrelationID: id, Payload: p},
	}
	select {
	case h.broadcast <- msg:
	case <-ctx.Done():
		return orchestrator.Decision{}, ctx.Err()
	}
	select {
	case d := <-pending.answer:
		return d, nil
	case <-ctx.Done():
		return orchestrator.Decision{}, ctx.Err()
	}
}

// Resolve hands d to the prompt waiting under correlationID. Only the prompted seat may
// answer, and only once.
func (h *Hub) Resolve(gameID, playerID, correlationID string, d orchestrator.Decision) error {
	h.pmu.Lock()
	defer h.pmu.Unlock()
	p, ok := h.pending[correlationID]
	if !ok || p.gameID != gameID || p.playerID != playerID {
		return ErrUnknownPrompt
	}
	delete(h.pending, correlationID)
	p.answer <- d
	return nil
}
