package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// goose keeps its dialect and filesystem in package state.
var gooseMu sync.Mutex

// Migrate runs the embedded PostgreSQL migrations using goose.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	// Convert pgxpool.Pool to *sql.DB for goose compatibility
	connConfig := pool.Config().ConnConfig
	db := stdlib.OpenDB(*connConfig)
	defer db.Close()

	return up(ctx, db, "postgres", "migrations/postgres")
}

// MigrateSQLite runs the embedded SQLite migrations on db.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	return up(ctx, db, "sqlite3", "migrations/sqlite")
}

func up(ctx context.Context, db *sql.DB, dialect, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
