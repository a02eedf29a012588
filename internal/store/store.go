package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vntrieu/werewolf/internal/games"
)

// ErrNotFound is returned when a game, snapshot or event does not exist.
var ErrNotFound = errors.New("not found")

// Status is the lifecycle state of a stored game.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
	StatusStopped    Status = "stopped"
)

// Controller says who plays a seat.
type Controller string

const (
	ControllerBot   Controller = "bot"
	ControllerHuman Controller = "human"
)

// Seat is one player's public registration in a game.
type Seat struct {
	PlayerID   string     `json:"player_id"`
	SeatNumber int        `json:"seat_number"`
	Name       string     `json:"name"`
	Controller Controller `json:"controller"`
}

// Game is a game instance.
type Game struct {
	ID          string           `json:"id"`
	Status      Status           `json:"status"`
	Config      games.GameConfig `json:"config"`
	Seed        int64            `json:"seed"`
	HostKeyHash string           `json:"-"`
	WinningTeam games.Team       `json:"winning_team"`
	Seats       []Seat           `json:"seats"`
	CreatedAt   time.Time        `json:"created_at"`
	EndedAt     *time.Time       `json:"ended_at,omitempty"`
}

// EventRecord is a persisted history event. Seq starts at 1 and orders the game's events.
type EventRecord struct {
	ID        string      `json:"id"`
	GameID    string      `json:"game_id"`
	Seq       int         `json:"seq"`
	Event     games.Event `json:"event"`
	CreatedAt time.Time   `json:"created_at"`
}

// Store persists games, their state snapshots and their event history.
type Store interface {
	CreateGame(ctx context.Context, g *Game) error
	GetGame(ctx context.Context, id string) (*Game, error)
	// ListGames returns the most recently created games first.
	ListGames(ctx context.Context, limit int) ([]Game, error)
	UpdateGameStatus(ctx context.Context, id string, status Status, winner games.Team, endedAt *time.Time) error

	// SaveSnapshot stores state as the game's next version and returns that version.
	SaveSnapshot(ctx context.Context, gameID string, state *games.GameState) (int, error)
	// LatestSnapshot returns the highest version, with Version set.
	LatestSnapshot(ctx context.Context, gameID string) (*games.GameState, error)

	// AppendEvents stores events after the game's existing ones.
	AppendEvents(ctx context.Context, gameID string, events []games.Event) ([]EventRecord, error)
	// ListEvents returns the game's events with Seq greater than afterSeq, in order.
	ListEvents(ctx context.Context, gameID string, afterSeq int) ([]EventRecord, error)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// DefaultListLimit caps ListGames when the caller passes no positive limit.
const DefaultListLimit = 50

func listLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return DefaultListLimit
	}
	return limit
}

func newEventID() string {
	return ulid.Make().String()
}

// encodeSnapshot serializes state through its map form, the shape every backend stores.
func encodeSnapshot(state *games.GameState) ([]byte, error) {
	m, err := state.ToMap()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte, version int) (*games.GameState, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	state, err := games.StateFromMap(m)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrNotFound
	}
	state.Version = version
	return state, nil
}
