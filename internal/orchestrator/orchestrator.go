package orchestrator

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vntrieu/werewolf/internal/games"
)

// ErrStopped is returned by Run when Stop was called before the game ended.
var ErrStopped = errors.New("game stopped")

// DefaultDecisionTimeout bounds a single decision when Config.DecisionTimeout is zero.
const DefaultDecisionTimeout = 30 * time.Second

// Config wires an Orchestrator to its collaborators.
type Config struct {
	// Deciders maps player id to the seat's decision maker. Seats without one play as
	// RandomDecider bots seeded from the game seed and seat number.
	Deciders        map[string]Decider
	Sink            Sink
	Logger          zerolog.Logger
	DecisionTimeout time.Duration
	// MaxDays overrides games.MaxGameDays when positive.
	MaxDays int
}

// Orchestrator drives one game from night zero to game over. It is sequential per game;
// only the werewolves' proposals are gathered concurrently.
type Orchestrator struct {
	deciders map[string]Decider
	sink     Sink
	log      zerolog.Logger
	timeout  time.Duration
	maxDays  int
	// rng breaks ties and substitutes failed decisions; only the run goroutine uses it.
	rng *rand.Rand
	// nightDeaths carries the last night's deaths into the day announcements.
	nightDeaths []string

	stop atomic.Bool

	mu    sync.RWMutex
	state *games.GameState
}

// New prepares an orchestrator for state. state is not modified.
func New(state *games.GameState, cfg Config) *Orchestrator {
	o := &Orchestrator{
		deciders: make(map[string]Decider, len(state.Players)),
		sink:     cfg.Sink,
		log:      cfg.Logger.With().Str("component", "orchestrator").Str("game_id", state.GameID).Logger(),
		timeout:  cfg.DecisionTimeout,
		maxDays:  cfg.MaxDays,
		rng:      games.NewRand(state.Seed),
		state:    state.Clone(),
	}
	if o.sink == nil {
		o.sink = nopSink{}
	}
	if o.timeout <= 0 {
		o.timeout = DefaultDecisionTimeout
	}
	if o.maxDays <= 0 {
		o.maxDays = games.MaxGameDays
	}
	for _, p := range state.Players {
		if d, ok := cfg.Deciders[p.ID]; ok && d != nil {
			o.deciders[p.ID] = d
			continue
		}
		o.deciders[p.ID] = NewRandomDecider(state.Seed + int64(p.SeatNumber))
	}
	return o
}

// Stop asks the game to halt at the next phase boundary. It is safe to call from any
// goroutine and more than once.
func (o *Orchestrator) Stop() {
	o.stop.Store(true)
}

// Stopped reports whether Stop was called.
func (o *Orchestrator) Stopped() bool {
	return o.stop.Load()
}

// State returns a copy of the latest state.
func (o *Orchestrator) State() *games.GameState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state.Clone()
}

func (o *Orchestrator) current() *games.GameState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

func (o *Orchestrator) set(s *games.GameState) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run plays the game to the end. It returns the final state, or the last good state with
// ErrStopped or the context error when interrupted.
func (o *Orchestrator) Run(ctx context.Context) (*games.GameState, error) {
	s := o.current()
	o.log.Info().Int64("seed", s.Seed).Str("role_set", string(s.Config.RoleSet)).Msg("game started")
	o.emit(ctx, games.NewPublicEvent(s, games.EventGameStart, "", "", map[string]interface{}{
		"role_set":    string(s.Config.RoleSet),
		"num_players": len(s.Players),
	}))

	for {
		if err := o.boundary(ctx); err != nil {
			return o.State(), err
		}
		o.runNight(ctx)

		if err := o.boundary(ctx); err != nil {
			return o.State(), err
		}
		if o.runDay(ctx) {
			break
		}
	}

	final := o.current()
	o.log.Info().Str("winner", string(final.WinningTeam)).Int("day", final.DayNumber).Msg("game over")
	o.emit(ctx, games.NewPublicEvent(final, games.EventGameEnd, "", "", map[string]interface{}{
		"winning_team": string(final.WinningTeam),
		"day_number":   final.DayNumber,
	}))
	o.checkpoint(ctx)
	return o.State(), nil
}

// boundary checkpoints the state and reports why the game must not continue, if it must not.
func (o *Orchestrator) boundary(ctx context.Context) error {
	o.checkpoint(ctx)
	if err := ctx.Err(); err != nil {
		o.log.Warn().Err(err).Msg("game interrupted")
		return err
	}
	if o.Stopped() {
		o.log.Info().Int("day", o.current().DayNumber).Msg("game stopped")
		return ErrStopped
	}
	return nil
}

// apply installs a state returned by the rules engine together with its events.
func (o *Orchestrator) apply(ctx context.Context, next *games.GameState, events []games.Event) {
	o.set(next)
	o.emit(ctx, events...)
}

// emit appends events to the history and hands them to the sink.
func (o *Orchestrator) emit(ctx context.Context, events ...games.Event) {
	if len(events) == 0 {
		return
	}
	next := o.current().WithEvents(events...)
	o.set(next)
	if err := o.sink.Events(ctx, next, events); err != nil {
		o.log.Warn().Err(err).Int("count", len(events)).Msg("sink rejected events")
	}
}

func (o *Orchestrator) checkpoint(ctx context.Context) {
	if err := o.sink.Checkpoint(ctx, o.current()); err != nil {
		o.log.Warn().Err(err).Msg("checkpoint failed")
	}
}

// ask consults the seat's decider under the decision timeout and substitutes a random
// legal choice when the answer is late, failed or illegal.
func (o *Orchestrator) ask(ctx context.Context, p Prompt) Decision {
	d, err := o.consult(ctx, p)
	return o.settle(p, d, err)
}

// consult only talks to the decider; it never touches the orchestrator rng, so it may run
// concurrently.
func (o *Orchestrator) consult(ctx context.Context, p Prompt) (Decision, error) {
	dctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	return o.deciders[p.PlayerID].Decide(dctx, p)
}

func (o *Orchestrator) settle(p Prompt, d Decision, err error) Decision {
	switch {
	case err != nil:
		o.log.Warn().Err(err).Str("player_id", p.PlayerID).Str("kind", string(p.Kind)).Msg("decision failed, choosing at random")
	case !Legal(p, d):
		o.log.Warn().Str("player_id", p.PlayerID).Str("kind", string(p.Kind)).Msg("illegal decision, choosing at random")
	default:
		return d
	}
	return RandomDecision(o.rng, p)
}

func (o *Orchestrator) prompt(kind Kind, playerID string, options []string) Prompt {
	return Prompt{
		Kind:     kind,
		PlayerID: playerID,
		Options:  options,
		View:     games.BuildView(o.current(), playerID),
	}
}

func (o *Orchestrator) phaseChange(ctx context.Context) {
	s := o.current()
	o.log.Info().Int("day", s.DayNumber).Str("phase", string(s.Phase)).Int("alive", len(s.AlivePlayers())).Msg("phase change")
	o.emit(ctx, games.NewPublicEvent(s, games.EventPhaseChange, "", "", map[string]interface{}{
		"phase":      string(s.Phase),
		"day_number": s.DayNumber,
	}))
}
