package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vntrieu/werewolf/internal/analysis"
	"github.com/vntrieu/werewolf/internal/gamelog"
	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/session"
	"github.com/vntrieu/werewolf/internal/store"
)

// Limits for game endpoints.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	MaxNameLen       = 32
)

// HostKeyHeader carries the host key on host-only endpoints.
const HostKeyHeader = "X-Host-Key"

// GameService is the game manager as seen by the HTTP layer.
type GameService interface {
	Create(ctx context.Context, req session.CreateRequest) (*session.Created, error)
	List(ctx context.Context, limit int) ([]store.Game, error)
	Get(ctx context.Context, gameID string) (*store.Game, error)
	View(ctx context.Context, gameID, playerID string) (*games.PlayerView, error)
	Events(ctx context.Context, gameID, playerID string, afterSeq int) ([]store.EventRecord, error)
	Log(ctx context.Context, gameID string) (*gamelog.GameLog, error)
	Stop(ctx context.Context, gameID, hostKey string) error
}

// CreateGameRequest is the body for POST /api/games. Every field is optional.
type CreateGameRequest struct {
	RoleSet  games.RoleSet       `json:"role_set,omitempty" example:"A"`
	Variants *games.RuleVariants `json:"variants,omitempty"`
	Seed     *int64              `json:"seed,omitempty"`
	// Names are the twelve player names in seat order.
	Names []string `json:"names,omitempty"`
	// HumanSeats are seat numbers (1-12) played over WebSocket; the rest are bots.
	HumanSeats []int `json:"human_seats,omitempty"`
}

// GameResponse is a stored game with its public table.
type GameResponse struct {
	Game *store.Game       `json:"game"`
	View *games.PlayerView `json:"view"`
}

// GameHandler handles game HTTP requests.
type GameHandler struct {
	games GameService
	log   zerolog.Logger
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(svc GameService, logger zerolog.Logger) *GameHandler {
	return &GameHandler{games: svc, log: logger.With().Str("component", "http").Logger()}
}

// CreateGame handles POST /api/games.
//
// @Summary      Create game
// @Description  Deal a new 12-player table and start it. Returns the host key and one token per human seat; neither is shown again.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        body  body      CreateGameRequest  false  "Game options"
// @Success      201   {object}  session.Created
// @Failure      400   {string}  string  "Invalid body, role set, variants, names or seats"
// @Failure      413   {string}  string  "Body too large"
// @Failure      429   {string}  string  "Rate limit exceeded"
// @Failure      500   {string}  string  "Server error"
// @Router       /api/games [post]
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var body CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	for _, n := range body.Names {
		if len(n) == 0 || len(n) > MaxNameLen {
			http.Error(w, "names must be 1 to 32 characters", http.StatusBadRequest)
			return
		}
	}

	created, err := h.games.Create(r.Context(), session.CreateRequest{
		RoleSet:    body.RoleSet,
		Variants:   body.Variants,
		Seed:       body.Seed,
		Names:      body.Names,
		HumanSeats: body.HumanSeats,
	})
	if err != nil {
		writeError(w, r, h.log, "create game", err)
		return
	}
	writeJSON(w, r, h.log, http.StatusCreated, created)
}

// ListGames handles GET /api/games.
//
// @Summary      List games
// @Description  Most recently created games first.
// @Tags         games
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of games (1-100, default 20)"
// @Success      200    {array}   store.Game
// @Failure      400    {string}  string  "Invalid limit"
// @Router       /api/games [get]
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxListLimit {
			http.Error(w, "limit must be between 1 and 100", http.StatusBadRequest)
			return
		}
		limit = n
	}
	list, err := h.games.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, h.log, "list games", err)
		return
	}
	if list == nil {
		list = []store.Game{}
	}
	writeJSON(w, r, h.log, http.StatusOK, list)
}

// GetGame handles GET /api/games/{id}.
//
// @Summary      Get game
// @Description  The stored game and the table as a spectator sees it.
// @Tags         games
// @Produce      json
// @Param        id   path      string  true  "Game ID"
// @Success      200  {object}  GameResponse
// @Failure      404  {string}  string  "Game not found"
// @Router       /api/games/{id} [get]
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, err := h.games.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, "get game", err)
		return
	}
	view, err := h.games.View(r.Context(), id, "")
	if err != nil {
		writeError(w, r, h.log, "get game view", err)
		return
	}
	writeJSON(w, r, h.log, http.StatusOK, GameResponse{Game: g, View: view})
}

// GetView handles GET /api/games/{id}/view.
//
// @Summary      Player view
// @Description  The table as the bearer's seat sees it: own role, teammates, private results and visible events.
// @Tags         games
// @Produce      json
// @Param        id   path      string  true  "Game ID"
// @Success      200  {object}  games.PlayerView
// @Failure      401  {string}  string  "Missing or invalid seat token"
// @Failure      403  {string}  string  "Token belongs to another game"
// @Failure      404  {string}  string  "Game not found"
// @Security     BearerAuth
// @Router       /api/games/{id}/view [get]
func (h *GameHandler) GetView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	playerID, ok := h.seatFor(w, r, id)
	if !ok {
		return
	}
	if playerID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	view, err := h.games.View(r.Context(), id, playerID)
	if err != nil {
		writeError(w, r, h.log, "get view", err)
		return
	}
	writeJSON(w, r, h.log, http.StatusOK, view)
}

// ListEvents handles GET /api/games/{id}/events.
//
// @Summary      List events
// @Description  Public events, plus the private events addressed to the bearer's seat when a seat token is sent.
// @Tags         games
// @Produce      json
// @Param        id     path      string  true   "Game ID"
// @Param        after  query     int     false  "Only events with a greater sequence number"
// @Success      200    {array}   store.EventRecord
// @Failure      400    {string}  string  "Invalid after"
// @Failure      403    {string}  string  "Token belongs to another game"
// @Failure      404    {string}  string  "Game not found"
// @Security     BearerAuth
// @Router       /api/games/{id}/events [get]
func (h *GameHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	after := 0
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "after must be a non-negative integer", http.StatusBadRequest)
			return
		}
		after = n
	}
	playerID, ok := h.seatFor(w, r, id)
	if !ok {
		return
	}
	events, err := h.games.Events(r.Context(), id, playerID, after)
	if err != nil {
		writeError(w, r, h.log, "list events", err)
		return
	}
	writeJSON(w, r, h.log, http.StatusOK, events)
}

// GetLog handles GET /api/games/{id}/log.
//
// @Summary      Game log
// @Description  The full log with every role and private event. Only available once the game is over.
// @Tags         games
// @Produce      json
// @Produce      application/x-yaml
// @Param        id      path      string  true   "Game ID"
// @Param        format  query     string  false  "json (default) or yaml"
// @Success      200     {object}  gamelog.GameLog
// @Failure      400     {string}  string  "Unsupported format"
// @Failure      404     {string}  string  "Game not found"
// @Failure      409     {string}  string  "Game is not finished"
// @Router       /api/games/{id}/log [get]
func (h *GameHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	format := gamelog.Format(r.URL.Query().Get("format"))
	contentType := "application/json"
	switch format {
	case "", gamelog.FormatJSON:
		format = gamelog.FormatJSON
	case gamelog.FormatYAML:
		contentType = "application/x-yaml"
	default:
		http.Error(w, "format must be json or yaml", http.StatusBadRequest)
		return
	}

	l, err := h.games.Log(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, "get log", err)
		return
	}
	var buf bytes.Buffer
	if err := l.Encode(&buf, format); err != nil {
		writeError(w, r, h.log, "encode log", err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(buf.Bytes())
}

// GetStats handles GET /api/games/{id}/stats.
//
// @Summary      Game statistics
// @Description  Counts of kills, saves, checks, votes and survivors. Only available once the game is over.
// @Tags         games
// @Produce      json
// @Param        id   path      string  true  "Game ID"
// @Success      200  {object}  analysis.Statistics
// @Failure      404  {string}  string  "Game not found"
// @Failure      409  {string}  string  "Game is not finished"
// @Router       /api/games/{id}/stats [get]
func (h *GameHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	l, err := h.games.Log(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, "get stats", err)
		return
	}
	writeJSON(w, r, h.log, http.StatusOK, analysis.Analyze(l))
}

// StopGame handles POST /api/games/{id}/stop.
//
// @Summary      Stop game
// @Description  Halt a running game at its next phase boundary. Requires the host key returned at creation.
// @Tags         games
// @Produce      json
// @Param        id          path      string  true  "Game ID"
// @Param        X-Host-Key  header    string  true  "Host key"
// @Success      202         {object}  map[string]string
// @Failure      401         {string}  string  "Missing host key"
// @Failure      403         {string}  string  "Wrong host key"
// @Failure      404         {string}  string  "Game not found"
// @Failure      409         {string}  string  "Game is not running"
// @Router       /api/games/{id}/stop [post]
func (h *GameHandler) StopGame(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(HostKeyHeader)
	if key == "" {
		http.Error(w, "host key required", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.games.Stop(r.Context(), id, key); err != nil {
		writeError(w, r, h.log, "stop game", err)
		return
	}
	writeJSON(w, r, h.log, http.StatusAccepted, map[string]string{"status": "stopping"})
}

// seatFor returns the player id of the request's seat token for gameID, or "" for an
// anonymous request. A token for another game gets 403 and ok=false.
func (h *GameHandler) seatFor(w http.ResponseWriter, r *http.Request, gameID string) (string, bool) {
	claims := SeatFromRequest(r)
	if claims == nil {
		return "", true
	}
	if claims.GameID != gameID {
		http.Error(w, "token belongs to another game", http.StatusForbidden)
		return "", false
	}
	return claims.PlayerID, true
}
