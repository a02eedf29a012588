package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vntrieu/werewolf/internal/games"
)

// PostgresStore handles database operations for games on PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// uuidToString converts pgtype.UUID to string.
func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	id, err := uuid.FromBytes(u.Bytes[:])
	if err != nil {
		return ""
	}
	return id.String()
}

// stringToUUID converts string to pgtype.UUID.
func stringToUUID(s string) (pgtype.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, err
	}
	var u pgtype.UUID
	copy(u.Bytes[:], id[:])
	u.Valid = true
	return u, nil
}

// timestamptzToTime converts pgtype.Timestamptz to time.Time.
func timestamptzToTime(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time
}

// CreateGame inserts the game and its seats in one transaction.
func (s *PostgresStore) CreateGame(ctx context.Context, g *Game) error {
	gameUUID, err := stringToUUID(g.ID)
	if err != nil {
		return fmt.Errorf("invalid game_id: %w", err)
	}
	configJSON, err := json.Marshal(g.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if g.Status == "" {
		g.Status = StatusInProgress
	}
	if g.WinningTeam == "" {
		g.WinningTeam = games.TeamNone
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var createdAt pgtype.Timestamptz
	err = tx.QueryRow(ctx,
		`INSERT INTO games (id, status, config_json, seed, host_key_hash, winning_team)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		gameUUID, string(g.Status), configJSON, g.Seed, g.HostKeyHash, string(g.WinningTeam)).Scan(&createdAt)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}

	for _, seat := range g.Seats {
		_, err = tx.Exec(ctx,
			`INSERT INTO game_players (game_id, player_id, seat_number, name, controller) VALUES ($1, $2, $3, $4, $5)`,
			gameUUID, seat.PlayerID, seat.SeatNumber, seat.Name, string(seat.Controller))
		if err != nil {
			return fmt.Errorf("create game player: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	g.CreatedAt = timestamptzToTime(createdAt)
	return nil
}

const selectGame = `SELECT id, status, config_json, seed, host_key_hash, winning_team, created_at, ended_at FROM games`

// GetGame returns the game with its seats in seat order.
func (s *PostgresStore) GetGame(ctx context.Context, id string) (*Game, error) {
	gameUUID, err := stringToUUID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	g, err := scanPostgresGame(s.pool.QueryRow(ctx, selectGame+` WHERE id = $1`, gameUUID))
	if err != nil {
		return nil, err
	}
	if g.Seats, err = s.seats(ctx, gameUUID); err != nil {
		return nil, err
	}
	return g, nil
}

// ListGames returns the newest games first.
func (s *PostgresStore) ListGames(ctx context.Context, limit int) ([]Game, error) {
	rows, err := s.pool.Query(ctx, selectGame+` ORDER BY created_at DESC, id DESC LIMIT $1`, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Game, error) {
		g, err := scanPostgresGame(row)
		if err != nil {
			return Game{}, err
		}
		return *g, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	for i := range out {
		gameUUID, _ := stringToUUID(out[i].ID)
		if out[i].Seats, err = s.seats(ctx, gameUUID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func scanPostgresGame(row pgx.Row) (*Game, error) {
	var (
		g          Game
		id         pgtype.UUID
		status     string
		configJSON []byte
		winner     string
		createdAt  pgtype.Timestamptz
		endedAt    pgtype.Timestamptz
	)
	err := row.Scan(&id, &status, &configJSON, &g.Seed, &g.HostKeyHash, &winner, &createdAt, &endedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}
	if err := json.Unmarshal(configJSON, &g.Config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	g.ID = uuidToString(id)
	g.Status = Status(status)
	g.WinningTeam = games.Team(winner)
	g.CreatedAt = timestamptzToTime(createdAt)
	if endedAt.Valid {
		t := timestamptzToTime(endedAt)
		g.EndedAt = &t
	}
	return &g, nil
}

func (s *PostgresStore) seats(ctx context.Context, gameUUID pgtype.UUID) ([]Seat, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT player_id, seat_number, name, controller FROM game_players WHERE game_id = $1 ORDER BY seat_number`, gameUUID)
	if err != nil {
		return nil, fmt.Errorf("get game players: %w", err)
	}
	seats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Seat, error) {
		var seat Seat
		var controller string
		err := row.Scan(&seat.PlayerID, &seat.SeatNumber, &seat.Name, &controller)
		seat.Controller = Controller(controller)
		return seat, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan game players: %w", err)
	}
	return seats, nil
}

// UpdateGameStatus updates the game's status, winner and optionally ended_at.
func (s *PostgresStore) UpdateGameStatus(ctx context.Context, id string, status Status, winner games.Team, endedAt *time.Time) error {
	gameUUID, err := stringToUUID(id)
	if err != nil {
		return ErrNotFound
	}
	var endAt pgtype.Timestamptz
	if endedAt != nil {
		endAt = pgtype.Timestamptz{Time: *endedAt, Valid: true}
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE games SET status = $2, winning_team = $3, ended_at = COALESCE($4, ended_at) WHERE id = $1`,
		gameUUID, string(status), string(winner), endAt)
	if err != nil {
		return fmt.Errorf("update game status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveSnapshot creates a new snapshot for the game with the next version number.
func (s *PostgresStore) SaveSnapshot(ctx context.Context, gameID string, state *games.GameState) (int, error) {
	gameUUID, err := stringToUUID(gameID)
	if err != nil {
		return 0, ErrNotFound
	}
	data, err := encodeSnapshot(state)
	if err != nil {
		return 0, err
	}
	var version int32
	err = s.pool.QueryRow(ctx,
		`INSERT INTO game_state_snapshots (game_id, version, state_json)
		 SELECT $1::uuid, COALESCE(MAX(version), 0) + 1, $2::jsonb FROM game_state_snapshots WHERE game_id = $1
		 RETURNING version`,
		gameUUID, data).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}
	return int(version), nil
}

// LatestSnapshot returns the highest-version snapshot of the game.
func (s *PostgresStore) LatestSnapshot(ctx context.Context, gameID string) (*games.GameState, error) {
	gameUUID, err := stringToUUID(gameID)
	if err != nil {
		return nil, ErrNotFound
	}
	var (
		version int32
		data    []byte
	)
	err = s.pool.QueryRow(ctx,
		`SELECT version, state_json FROM game_state_snapshots WHERE game_id = $1 ORDER BY version DESC LIMIT 1`,
		gameUUID).Scan(&version, &data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	return decodeSnapshot(data, int(version))
}
