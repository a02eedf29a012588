package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vntrieu/werewolf/internal/games"
)

// AppendEvents stores events after the game's existing ones in a single transaction.
func (s *PostgresStore) AppendEvents(ctx context.Context, gameID string, events []games.Event) ([]EventRecord, error) {
	gameUUID, err := stringToUUID(gameID)
	if err != nil {
		return nil, ErrNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the game row so concurrent appends get distinct sequence numbers.
	var locked pgtype.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM games WHERE id = $1 FOR UPDATE`, gameUUID).Scan(&locked); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}
	var seq int32
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) FROM game_events WHERE game_id = $1`, gameUUID).Scan(&seq); err != nil {
		return nil, fmt.Errorf("get last event: %w", err)
	}

	now := time.Now().UTC()
	out := make([]EventRecord, 0, len(events))
	batch := &pgx.Batch{}
	for _, e := range events {
		seq++
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal event: %w", err)
		}
		rec := EventRecord{ID: newEventID(), GameID: gameID, Seq: int(seq), Event: e, CreatedAt: now}
		batch.Queue(
			`INSERT INTO game_events (id, game_id, seq, event_type, day_number, public, event_json, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			rec.ID, gameUUID, seq, string(e.Type), e.DayNumber, e.Public, data, now)
		out = append(out, rec)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("create game events: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return out, nil
}

// ListEvents retrieves the game's events after afterSeq.
func (s *PostgresStore) ListEvents(ctx context.Context, gameID string, afterSeq int) ([]EventRecord, error) {
	if _, err := s.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	gameUUID, _ := stringToUUID(gameID)

	rows, err := s.pool.Query(ctx,
		`SELECT id, seq, event_json, created_at FROM game_events WHERE game_id = $1 AND seq > $2 ORDER BY seq`,
		gameUUID, afterSeq)
	if err != nil {
		return nil, fmt.Errorf("get game events: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (EventRecord, error) {
		var (
			rec       EventRecord
			seq       int32
			data      []byte
			createdAt pgtype.Timestamptz
		)
		if err := row.Scan(&rec.ID, &seq, &data, &createdAt); err != nil {
			return rec, err
		}
		if err := json.Unmarshal(data, &rec.Event); err != nil {
			return rec, fmt.Errorf("unmarshal game event: %w", err)
		}
		rec.GameID = gameID
		rec.Seq = int(seq)
		rec.CreatedAt = timestamptzToTime(createdAt)
		return rec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get game events: %w", err)
	}
	return out, nil
}
