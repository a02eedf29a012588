package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vntrieu/werewolf/internal/auth"
	"github.com/vntrieu/werewolf/internal/config"
	"github.com/vntrieu/werewolf/internal/database"
	"github.com/vntrieu/werewolf/internal/httpapi"
	"github.com/vntrieu/werewolf/internal/logging"
	"github.com/vntrieu/werewolf/internal/orchestrator"
	"github.com/vntrieu/werewolf/internal/ratelimit"
	"github.com/vntrieu/werewolf/internal/session"
	"github.com/vntrieu/werewolf/internal/store"
	"github.com/vntrieu/werewolf/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stderr := zerolog.New(os.Stderr)
		stderr.Fatal().Err(err).Msg("load config")
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		stderr := zerolog.New(os.Stderr)
		stderr.Fatal().Err(err).Msg("configure logging")
	}
	if cfg.TokenSecret == config.DevTokenSecret {
		log.Warn().Msg("WEREWOLF_TOKEN_SECRET is not set; using the development secret")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer closeStore()

	signer, err := auth.NewSigner([]byte(cfg.TokenSecret))
	if err != nil {
		log.Fatal().Err(err).Msg("token signer")
	}

	hub := websocket.NewHub(nil, log)
	go hub.Run(ctx)

	manager := session.NewManager(session.Config{
		Store:     st,
		Signer:    signer,
		Publisher: hub,
		Remote: func(gameID, playerID string) orchestrator.Decider {
			return websocket.NewRemoteDecider(hub, gameID, playerID)
		},
		Logger:          log,
		Variants:        cfg.Variants,
		DecisionTimeout: cfg.DecisionTimeout,
		MaxDays:         cfg.MaxDays,
	})

	opts := httpapi.Options{
		Games:       manager,
		Hub:         hub,
		Signer:      signer,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	}
	if lim := httpapi.NewRateLimiter(cfg.RateLimit); lim != nil {
		opts.RateLimiter = lim
		go pruneLoop(ctx, lim, time.Minute)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("werewolf server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := manager.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("games did not stop in time")
	}
	log.Info().Msg("server stopped")
}

// openStore picks Postgres when DATABASE_URL is set, SQLite when WEREWOLF_SQLITE_PATH is
// set, and memory otherwise. Migrations run before the store is returned.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info().Str("backend", "postgres").Msg("migrations up to date")
		return store.NewPostgresStore(pool), pool.Close, nil

	case cfg.SQLitePath != "":
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigrateSQLite(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info().Str("backend", "sqlite").Str("path", cfg.SQLitePath).Msg("migrations up to date")
		return store.NewSQLiteStore(db), func() { db.Close() }, nil

	default:
		log.Warn().Msg("no database configured; games are kept in memory")
		return store.NewMemoryStore(), func() {}, nil
	}
}

func pruneLoop(ctx context.Context, lim *ratelimit.InMemory, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			lim.Prune()
		}
	}
}
