package games

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// NewSeed draws a fresh seed from crypto/rand for games created without one.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns the deterministic source used for shuffles, ids and tie-breaks.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// DefaultPlayerNames returns "Player 1" through "Player 12".
func DefaultPlayerNames() []string {
	names := make([]string, PlayerCount)
	for i := range names {
		names[i] = fmt.Sprintf("Player %d", i+1)
	}
	return names
}

// CreateGameState deals a new table: roles are shuffled under the config seed, seats follow
// shuffle order, and the game starts on night zero. Nil names use DefaultPlayerNames.
func CreateGameState(config GameConfig, names []string) (*GameState, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if names == nil {
		names = DefaultPlayerNames()
	}
	if len(names) != config.NumPlayers {
		return nil, fmt.Errorf("%w: expected %d player names, got %d", ErrInvalidConfig, config.NumPlayers, len(names))
	}

	var seed int64
	if config.RandomSeed != nil {
		seed = *config.RandomSeed
	} else {
		var err error
		if seed, err = NewSeed(); err != nil {
			return nil, err
		}
	}
	rng := NewRand(seed)

	roles := RoleComposition(config.RoleSet)
	rng.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })

	players := make([]Player, 0, len(roles))
	for i, role := range roles {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, fmt.Errorf("player id: %w", err)
		}
		players = append(players, newPlayer(id.String(), names[i], role, i+1))
	}

	return &GameState{
		Config:      config,
		Seed:        seed,
		DayNumber:   0,
		Phase:       PhaseNight,
		Players:     players,
		History:     []Event{},
		WinningTeam: TeamNone,
	}, nil
}
