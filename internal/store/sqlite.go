package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vntrieu/werewolf/internal/games"
)

// SQLiteStore persists games in SQLite through database/sql. The schema comes from
// database.MigrateSQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open, migrated SQLite handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func (s *SQLiteStore) CreateGame(ctx context.Context, g *Game) error {
	configJSON, err := json.Marshal(g.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO games (id, status, config_json, seed, host_key_hash, winning_team, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, string(g.Status), string(configJSON), g.Seed, g.HostKeyHash, string(g.WinningTeam), toMillis(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	for _, seat := range g.Seats {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO game_players (game_id, player_id, seat_number, name, controller) VALUES (?, ?, ?, ?, ?)`,
			g.ID, seat.PlayerID, seat.SeatNumber, seat.Name, string(seat.Controller))
		if err != nil {
			return fmt.Errorf("create game player: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetGame(ctx context.Context, id string) (*Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, config_json, seed, host_key_hash, winning_team, created_at, ended_at
		 FROM games WHERE id = ?`, id)
	g, err := scanSQLiteGame(row)
	if err != nil {
		return nil, err
	}
	if g.Seats, err = s.seats(ctx, g.ID); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *SQLiteStore) ListGames(ctx context.Context, limit int) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, config_json, seed, host_key_hash, winning_team, created_at, ended_at
		 FROM games ORDER BY created_at DESC, id DESC LIMIT ?`, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []Game
	for rows.Next() {
		g, err := scanSQLiteGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	for i := range out {
		if out[i].Seats, err = s.seats(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	if out == nil {
		out = []Game{}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteGame(row rowScanner) (*Game, error) {
	var (
		g          Game
		status     string
		configJSON string
		winner     string
		createdAt  int64
		endedAt    sql.NullInt64
	)
	err := row.Scan(&g.ID, &status, &configJSON, &g.Seed, &g.HostKeyHash, &winner, &createdAt, &endedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}
	if err := json.Unmarshal([]byte(configJSON), &g.Config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	g.Status = Status(status)
	g.WinningTeam = games.Team(winner)
	g.CreatedAt = fromMillis(createdAt)
	if endedAt.Valid {
		t := fromMillis(endedAt.Int64)
		g.EndedAt = &t
	}
	return &g, nil
}

func (s *SQLiteStore) seats(ctx context.Context, gameID string) ([]Seat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, seat_number, name, controller FROM game_players WHERE game_id = ? ORDER BY seat_number`, gameID)
	if err != nil {
		return nil, fmt.Errorf("get game players: %w", err)
	}
	defer rows.Close()
	var out []Seat
	for rows.Next() {
		var seat Seat
		var controller string
		if err := rows.Scan(&seat.PlayerID, &seat.SeatNumber, &seat.Name, &controller); err != nil {
			return nil, fmt.Errorf("scan game player: %w", err)
		}
		seat.Controller = Controller(controller)
		out = append(out, seat)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateGameStatus(ctx context.Context, id string, status Status, winner games.Team, endedAt *time.Time) error {
	var ended sql.NullInt64
	if endedAt != nil {
		ended = sql.NullInt64{Int64: toMillis(*endedAt), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET status = ?, winning_team = ?, ended_at = COALESCE(?, ended_at) WHERE id = ?`,
		string(status), string(winner), ended, id)
	if err != nil {
		return fmt.Errorf("update game status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, gameID string, state *games.GameState) (int, error) {
	data, err := encodeSnapshot(state)
	if err != nil {
		return 0, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM game_state_snapshots WHERE game_id = ?`, gameID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("get latest snapshot: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO game_state_snapshots (game_id, version, state_json, created_at) VALUES (?, ?, ?, ?)`,
		gameID, next, string(data), toMillis(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return next, nil
}

func (s *SQLiteStore) LatestSnapshot(ctx context.Context, gameID string) (*games.GameState, error) {
	var (
		version int
		data    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT version, state_json FROM game_state_snapshots WHERE game_id = ? ORDER BY version DESC LIMIT 1`,
		gameID).Scan(&version, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	return decodeSnapshot([]byte(data), version)
}

func (s *SQLiteStore) AppendEvents(ctx context.Context, gameID string, events []games.Event) ([]EventRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM games WHERE id = ?`, gameID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}
	var seq int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM game_events WHERE game_id = ?`, gameID).Scan(&seq); err != nil {
		return nil, fmt.Errorf("get last event: %w", err)
	}

	now := time.Now().UTC()
	out := make([]EventRecord, 0, len(events))
	for _, e := range events {
		seq++
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal event: %w", err)
		}
		rec := EventRecord{ID: newEventID(), GameID: gameID, Seq: seq, Event: e, CreatedAt: now}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO game_events (id, game_id, seq, event_type, day_number, public, event_json, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, gameID, seq, string(e.Type), e.DayNumber, e.Public, string(data), toMillis(now))
		if err != nil {
			return nil, fmt.Errorf("create game event: %w", err)
		}
		out = append(out, rec)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) ListEvents(ctx context.Context, gameID string, afterSeq int) ([]EventRecord, error) {
	if _, err := s.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seq, event_json, created_at FROM game_events WHERE game_id = ? AND seq > ? ORDER BY seq`,
		gameID, afterSeq)
	if err != nil {
		return nil, fmt.Errorf("get game events: %w", err)
	}
	defer rows.Close()

	out := []EventRecord{}
	for rows.Next() {
		var (
			rec       EventRecord
			data      string
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.Seq, &data, &createdAt); err != nil {
			return nil, fmt.Errorf("scan game event: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &rec.Event); err != nil {
			return nil, fmt.Errorf("unmarshal game event: %w", err)
		}
		rec.GameID = gameID
		rec.CreatedAt = fromMillis(createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
