package websocket

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vntrieu/werewolf/internal/auth"
)

// rateLimitKeyFromRequest returns a key for rate limiting (e.g. client IP).
func rateLimitKeyFromRequest(r *http.Request) string {
	if x := r.Header.Get("X-Real-IP"); x != "" {
		return x
	}
	if x := r.Header.Get("X-Forwarded-For"); x != "" {
		return x
	}
	return r.RemoteAddr
}

// WSHandler upgrades seat connections.
type WSHandler struct {
	hub    *Hub
	signer *auth.Signer
	states StateProvider
	log    zerolog.Logger
}

// NewWSHandler creates a new WSHandler. Without a signer every connection is rejected.
func NewWSHandler(hub *Hub, signer *auth.Signer, states StateProvider, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		signer: signer,
		states: states,
		log:    logger.With().Str("component", "ws").Logger(),
	}
}

// HandleGameWebSocket handles GET /api/games/{id}/ws. The seat token comes from the
// token query param or the Authorization header. Auth is checked before upgrading.
func (h *WSHandler) HandleGameWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	if gameID == "" {
		http.Error(w, "game id is required", http.StatusBadRequest)
		return
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		const prefix = "Bearer "
		if v := r.Header.Get("Authorization"); strings.HasPrefix(v, prefix) {
			token = strings.TrimSpace(v[len(prefix):])
		}
	}
	if token == "" || h.signer == nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}
	claims, err := h.signer.Verify(token)
	if err != nil {
		h.log.Info().Err(err).Str("game_id", gameID).Msg("ws token verification failed")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if claims.GameID != gameID {
		http.Error(w, "game does not match token", http.StatusUnauthorized)
		return
	}
	view, err := h.states.View(r.Context(), gameID, claims.PlayerID)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade error")
		return
	}

	// The request context ends when this handler returns, so the client gets its own.
	client := newClient(h.hub, conn, gameID, claims.PlayerID, rateLimitKeyFromRequest(r))
	h.hub.register <- client
	h.hub.SendToClient(client, &ServerEnvelope{Type: ServerTypeState, Payload: view})

	go client.writePump()
	go client.readPump()
}
