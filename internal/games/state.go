package games

import (
	"encoding/json"
	"fmt"
)

// SeerCheck is one night's result for the seer.
type SeerCheck struct {
	TargetID string    `json:"target_id" yaml:"target_id"`
	Result   Alignment `json:"result" yaml:"result"`
}

// Player is one seat at the table. Role-scoped fields are only meaningful for their role.
type Player struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	Alignment  Alignment `json:"alignment"`
	IsAlive    bool      `json:"is_alive"`
	IsSheriff  bool      `json:"is_sheriff"`
	SeatNumber int       `json:"seat_number"`

	WitchHasCure         bool        `json:"witch_has_cure"`
	WitchHasPoison       bool        `json:"witch_has_poison"`
	GuardLastProtected   string      `json:"guard_last_protected,omitempty"`
	SeerChecks           []SeerCheck `json:"seer_checks,omitempty"`
	VillageIdiotRevealed bool        `json:"village_idiot_revealed"`
	HunterCanShoot       bool        `json:"hunter_can_shoot"`
}

func newPlayer(id, name string, role Role, seat int) Player {
	return Player{
		ID:             id,
		Name:           name,
		Role:           role,
		Alignment:      AlignmentOf(role),
		IsAlive:        true,
		SeatNumber:     seat,
		WitchHasCure:   true,
		WitchHasPoison: true,
		HunterCanShoot: true,
	}
}

// GameState is the authoritative per-game snapshot. Rules functions never mutate a
// GameState they receive; they return a new one.
type GameState struct {
	GameID                  string     `json:"game_id,omitempty"`
	Config                  GameConfig `json:"config"`
	Seed                    int64      `json:"seed"`
	DayNumber               int        `json:"day_number"` // 0 is the first night
	Phase                   Phase      `json:"phase"`
	Players                 []Player   `json:"players"`
	SheriffID               string     `json:"sheriff_id,omitempty"`
	BadgeTorn               bool       `json:"badge_torn"`
	SheriffElectionComplete bool       `json:"sheriff_election_complete"`
	WolfKillTargetID        string     `json:"wolf_kill_target_id,omitempty"`
	History                 []Event    `json:"history"`
	WinningTeam             Team       `json:"winning_team"`
	// Version is set by the store on snapshot writes.
	Version int `json:"version,omitempty"`
}

// Clone returns a deep copy. Players, seer checks and history never alias the original.
// Event data maps are shared because events are immutable once recorded.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	if s.Config.RandomSeed != nil {
		seed := *s.Config.RandomSeed
		out.Config.RandomSeed = &seed
	}
	if s.Players != nil {
		out.Players = make([]Player, len(s.Players))
		for i, p := range s.Players {
			if p.SeerChecks != nil {
				p.SeerChecks = append([]SeerCheck(nil), p.SeerChecks...)
			}
			out.Players[i] = p
		}
	}
	if s.History != nil {
		out.History = make([]Event, len(s.History))
		for i, e := range s.History {
			if e.VisibleTo != nil {
				e.VisibleTo = append([]string(nil), e.VisibleTo...)
			}
			out.History[i] = e
		}
	}
	return &out
}

// WithEvents returns a copy of s with events appended to its history.
func (s *GameState) WithEvents(events ...Event) *GameState {
	out := s.Clone()
	out.History = append(out.History, events...)
	return out
}

// Player returns the player with id, or nil. The pointer aliases s.
func (s *GameState) Player(id string) *Player {
	if s == nil || id == "" {
		return nil
	}
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// PlayerBySeat returns the player at seat, or nil.
func (s *GameState) PlayerBySeat(seat int) *Player {
	for i := range s.Players {
		if s.Players[i].SeatNumber == seat {
			return &s.Players[i]
		}
	}
	return nil
}

// PlayerByRole returns the first player holding role, alive or not.
func (s *GameState) PlayerByRole(role Role) *Player {
	for i := range s.Players {
		if s.Players[i].Role == role {
			return &s.Players[i]
		}
	}
	return nil
}

// AlivePlayers returns copies of all living players in seat order.
func (s *GameState) AlivePlayers() []Player {
	return s.filter(func(p Player) bool { return p.IsAlive })
}

// AliveIDs returns the ids of all living players in seat order.
func (s *GameState) AliveIDs() []string {
	alive := s.AlivePlayers()
	ids := make([]string, 0, len(alive))
	for _, p := range alive {
		ids = append(ids, p.ID)
	}
	return ids
}

// Werewolves returns the whole werewolf roster, dead or alive.
func (s *GameState) Werewolves() []Player {
	return s.filter(func(p Player) bool { return p.Role == RoleWerewolf })
}

// WerewolfIDs returns the ids of the werewolf roster.
func (s *GameState) WerewolfIDs() []string {
	wolves := s.Werewolves()
	ids := make([]string, 0, len(wolves))
	for _, w := range wolves {
		ids = append(ids, w.ID)
	}
	return ids
}

func (s *GameState) AliveWerewolves() []Player {
	return s.filter(func(p Player) bool { return p.IsAlive && p.Role == RoleWerewolf })
}

// AliveVillagers returns living plain villagers.
func (s *GameState) AliveVillagers() []Player {
	return s.filter(func(p Player) bool { return p.IsAlive && p.Role == RoleVillager })
}

// AliveSpecials returns living good players with a power.
func (s *GameState) AliveSpecials() []Player {
	return s.filter(func(p Player) bool { return p.IsAlive && p.Role.IsSpecial() })
}

func (s *GameState) AliveByAlignment(a Alignment) []Player {
	return s.filter(func(p Player) bool { return p.IsAlive && p.Alignment == a })
}

// Sheriff returns the current badge holder, or nil.
func (s *GameState) Sheriff() *Player {
	return s.Player(s.SheriffID)
}

// IsGameOver reports whether a winner has been decided.
func (s *GameState) IsGameOver() bool {
	return s.Phase == PhaseGameOver
}

func (s *GameState) filter(keep func(Player) bool) []Player {
	if s == nil {
		return nil
	}
	out := make([]Player, 0, len(s.Players))
	for _, p := range s.Players {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// ToMap converts state to a map for JSON snapshots.
func (s *GameState) ToMap() (map[string]interface{}, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal state map: %w", err)
	}
	return m, nil
}

// StateFromMap reconstructs a GameState from a snapshot map (e.g. from the database).
func StateFromMap(m map[string]interface{}) (*GameState, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot map: %w", err)
	}
	var s GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &s, nil
}
