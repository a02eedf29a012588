// Package session runs games: it deals tables, starts their orchestrators, persists what
// they record and answers questions about them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vntrieu/werewolf/internal/auth"
	"github.com/vntrieu/werewolf/internal/gamelog"
	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/orchestrator"
	"github.com/vntrieu/werewolf/internal/store"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrForbidden    = errors.New("forbidden")
	ErrNotRunning   = errors.New("game is not running")
	ErrNotFinished  = errors.New("game is not finished")
	ErrInvalidSeat  = errors.New("invalid seat")
)

// Publisher fans persisted events out to live connections.
type Publisher interface {
	PublishEvents(gameID string, records []store.EventRecord)
}

// RemoteFactory builds the decider for a human seat.
type RemoteFactory func(gameID, playerID string) orchestrator.Decider

// Config wires a Manager.
type Config struct {
	Store     store.Store
	Signer    *auth.Signer
	Publisher Publisher
	Remote    RemoteFactory
	Logger    zerolog.Logger
	// Variants are used for games created without explicit variants.
	Variants        games.RuleVariants
	DecisionTimeout time.Duration
	MaxDays         int
	TokenExpiry     time.Duration
}

// CreateRequest describes a new game.
type CreateRequest struct {
	RoleSet  games.RoleSet
	Variants *games.RuleVariants
	Seed     *int64
	// Names are the twelve player names in seat order; nil uses defaults.
	Names []string
	// HumanSeats are the seat numbers played over WebSocket; every other seat is a bot.
	HumanSeats []int
}

// SeatToken is the credential for one human seat.
type SeatToken struct {
	PlayerID   string    `json:"player_id"`
	SeatNumber int       `json:"seat_number"`
	Name       string    `json:"name"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Created is returned once by Create. The host key is not recoverable afterwards.
type Created struct {
	Game    *store.Game `json:"game"`
	HostKey string      `json:"host_key"`
	Seats   []SeatToken `json:"seats"`
}

type running struct {
	orch *orchestrator.Orchestrator
	done chan struct{}
}

// Manager owns every game started in this process.
type Manager struct {
	store     store.Store
	signer    *auth.Signer
	publisher Publisher
	remote    RemoteFactory
	log       zerolog.Logger
	variants  games.RuleVariants
	timeout   time.Duration
	maxDays   int
	expiry    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	running map[string]*running
}

// NewManager creates a Manager. Zero Variants fall back to games.DefaultRuleVariants.
func NewManager(cfg Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		store:     cfg.Store,
		signer:    cfg.Signer,
		publisher: cfg.Publisher,
		remote:    cfg.Remote,
		log:       cfg.Logger.With().Str("component", "session").Logger(),
		variants:  cfg.Variants,
		timeout:   cfg.DecisionTimeout,
		maxDays:   cfg.MaxDays,
		expiry:    cfg.TokenExpiry,
		ctx:       ctx,
		cancel:    cancel,
		running:   make(map[string]*running),
	}
	if m.variants == (games.RuleVariants{}) {
		m.variants = games.DefaultRuleVariants()
	}
	return m
}

// Create deals a table, persists it and starts its orchestrator.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*Created, error) {
	cfg := games.DefaultGameConfig()
	cfg.RuleVariants = m.variants
	if req.RoleSet != "" {
		cfg.RoleSet = req.RoleSet
	}
	if req.Variants != nil {
		cfg.RuleVariants = *req.Variants
	}
	cfg.RandomSeed = req.Seed

	humans := make(map[int]bool, len(req.HumanSeats))
	for _, seat := range req.HumanSeats {
		if seat < 1 || seat > games.PlayerCount {
			return nil, fmt.Errorf("%w: %d", ErrInvalidSeat, seat)
		}
		humans[seat] = true
	}
	if len(humans) > 0 && (m.signer == nil || m.remote == nil) {
		return nil, fmt.Errorf("%w: human seats need a token signer and a remote transport", ErrInvalidSeat)
	}

	state, err := games.CreateGameState(cfg, req.Names)
	if err != nil {
		return nil, err
	}
	state.GameID = uuid.NewString()

	hostKey, hostHash, err := auth.NewHostKey()
	if err != nil {
		return nil, err
	}
	g := &store.Game{
		ID:          state.GameID,
		Config:      cfg,
		Seed:        state.Seed,
		HostKeyHash: hostHash,
	}
	out := &Created{Game: g, HostKey: hostKey}
	deciders := make(map[string]orchestrator.Decider, len(humans))
	for _, p := range state.Players {
		seat := store.Seat{PlayerID: p.ID, SeatNumber: p.SeatNumber, Name: p.Name, Controller: store.ControllerBot}
		if humans[p.SeatNumber] {
			seat.Controller = store.ControllerHuman
			token, exp, err := m.signer.Issue(state.GameID, p.ID, m.expiry)
			if err != nil {
				return nil, err
			}
			out.Seats = append(out.Seats, SeatToken{PlayerID: p.ID, SeatNumber: p.SeatNumber, Name: p.Name, Token: token, ExpiresAt: exp})
			deciders[p.ID] = m.remote(state.GameID, p.ID)
		}
		g.Seats = append(g.Seats, seat)
	}

	if err := m.store.CreateGame(ctx, g); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	if _, err := m.store.SaveSnapshot(ctx, g.ID, state); err != nil {
		return nil, fmt.Errorf("save initial snapshot: %w", err)
	}

	orch := orchestrator.New(state, orchestrator.Config{
		Deciders:        deciders,
		Sink:            &storeSink{store: m.store, publisher: m.publisher, gameID: g.ID},
		Logger:          m.log,
		DecisionTimeout: m.timeout,
		MaxDays:         m.maxDays,
	})
	r := &running{orch: orch, done: make(chan struct{})}
	m.mu.Lock()
	m.running[g.ID] = r
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(g.ID, r)

	m.log.Info().Str("game_id", g.ID).Int64("seed", g.Seed).Int("humans", len(humans)).Msg("game created")
	return out, nil
}

func (m *Manager) run(gameID string, r *running) {
	defer m.wg.Done()
	defer close(r.done)

	final, err := r.orch.Run(m.ctx)
	status := store.StatusFinished
	if err != nil {
		status = store.StatusStopped
		if !errors.Is(err, orchestrator.ErrStopped) && !errors.Is(err, context.Canceled) {
			m.log.Error().Err(err).Str("game_id", gameID).Msg("game run failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	now := time.Now().UTC()
	if err := m.store.UpdateGameStatus(ctx, gameID, status, final.WinningTeam, &now); err != nil {
		m.log.Error().Err(err).Str("game_id", gameID).Msg("update game status")
	}

	m.mu.Lock()
	delete(m.running, gameID)
	m.mu.Unlock()
	m.log.Info().Str("game_id", gameID).Str("status", string(status)).Str("winner", string(final.WinningTeam)).Msg("game finished")
}

func (m *Manager) lookup(gameID string) *running {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running[gameID]
}

// Store returns the backing store.
func (m *Manager) Store() store.Store {
	return m.store
}

// Done returns a channel closed when the game's run ends, or nil if it is not running.
func (m *Manager) Done(gameID string) <-chan struct{} {
	if r := m.lookup(gameID); r != nil {
		return r.done
	}
	return nil
}

// Get returns the stored game.
func (m *Manager) Get(ctx context.Context, gameID string) (*store.Game, error) {
	g, err := m.store.GetGame(ctx, gameID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	return g, err
}

// List returns the most recent games.
func (m *Manager) List(ctx context.Context, limit int) ([]store.Game, error) {
	return m.store.ListGames(ctx, limit)
}

// State returns the live state of a running game, or the latest snapshot otherwise.
func (m *Manager) State(ctx context.Context, gameID string) (*games.GameState, error) {
	if r := m.lookup(gameID); r != nil {
		return r.orch.State(), nil
	}
	s, err := m.store.LatestSnapshot(ctx, gameID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	return s, err
}

// View returns the game as playerID sees it. An empty playerID is a spectator.
func (m *Manager) View(ctx context.Context, gameID, playerID string) (*games.PlayerView, error) {
	s, err := m.State(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if playerID != "" && s.Player(playerID) == nil {
		return nil, ErrForbidden
	}
	v := games.BuildView(s, playerID)
	return &v, nil
}

// Events returns the persisted events after afterSeq that playerID may see. An empty
// playerID gets the public events only.
func (m *Manager) Events(ctx context.Context, gameID, playerID string, afterSeq int) ([]store.EventRecord, error) {
	recs, err := m.store.ListEvents(ctx, gameID, afterSeq)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	out := make([]store.EventRecord, 0, len(recs))
	for _, rec := range recs {
		if rec.Event.VisibleToPlayer(playerID) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Log returns the full game log. It is only available once the game is over, since it
// reveals every role and private event.
func (m *Manager) Log(ctx context.Context, gameID string) (*gamelog.GameLog, error) {
	g, err := m.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s, err := m.State(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !s.IsGameOver() {
		return nil, ErrNotFinished
	}
	l := gamelog.FromState(s)
	started := g.CreatedAt
	l.StartedAt = &started
	l.EndedAt = g.EndedAt
	return l, nil
}

// Stop halts a running game at its next phase boundary. hostKey must match the key
// returned by Create.
func (m *Manager) Stop(ctx context.Context, gameID, hostKey string) error {
	g, err := m.Get(ctx, gameID)
	if err != nil {
		return err
	}
	if !auth.CheckHostKey(g.HostKeyHash, hostKey) {
		return ErrForbidden
	}
	r := m.lookup(gameID)
	if r == nil {
		return ErrNotRunning
	}
	r.orch.Stop()
	m.log.Info().Str("game_id", gameID).Msg("stop requested")
	return nil
}

// Shutdown stops every running game and waits for them to record their last state.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.RLock()
	for _, r := range m.running {
		r.orch.Stop()
	}
	m.mu.RUnlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		m.cancel()
		return ctx.Err()
	}
}
