package games

// SeatView is what everyone at the table knows about a seat.
type SeatView struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	SeatNumber           int    `json:"seat_number"`
	IsAlive              bool   `json:"is_alive"`
	IsSheriff            bool   `json:"is_sheriff"`
	VillageIdiotRevealed bool   `json:"village_idiot_revealed,omitempty"`
	// Role is only filled in for the viewer, their werewolf teammates, and once the game is over.
	Role Role `json:"role,omitempty"`
}

// PlayerView is the table as seen by one player (or a spectator when PlayerID is empty).
type PlayerView struct {
	GameID      string     `json:"game_id,omitempty"`
	PlayerID    string     `json:"player_id,omitempty"`
	DayNumber   int        `json:"day_number"`
	Phase       Phase      `json:"phase"`
	SheriffID   string     `json:"sheriff_id,omitempty"`
	BadgeTorn   bool       `json:"badge_torn"`
	WinningTeam Team       `json:"winning_team"`
	Seats       []SeatView `json:"seats"`

	Role           Role        `json:"role,omitempty"`
	Teammates      []string    `json:"teammates,omitempty"`
	SeerChecks     []SeerCheck `json:"seer_checks,omitempty"`
	HasCure        *bool       `json:"has_cure,omitempty"`
	HasPoison      *bool       `json:"has_poison,omitempty"`
	LastProtected  string      `json:"last_protected,omitempty"`
	HunterCanShoot *bool       `json:"hunter_can_shoot,omitempty"`

	Events []Event `json:"events"`
}

// BuildView projects state for playerID. Private events and hidden roles never leak into a
// view for someone outside their audience.
func BuildView(state *GameState, playerID string) PlayerView {
	over := state.IsGameOver()
	view := PlayerView{
		GameID:      state.GameID,
		DayNumber:   state.DayNumber,
		Phase:       state.Phase,
		SheriffID:   state.SheriffID,
		BadgeTorn:   state.BadgeTorn,
		WinningTeam: state.WinningTeam,
	}
	me := state.Player(playerID)
	if me != nil {
		view.PlayerID = me.ID
		view.Role = me.Role
	}

	for _, p := range state.Players {
		seat := SeatView{
			ID:                   p.ID,
			Name:                 p.Name,
			SeatNumber:           p.SeatNumber,
			IsAlive:              p.IsAlive,
			IsSheriff:            p.IsSheriff,
			VillageIdiotRevealed: p.VillageIdiotRevealed,
		}
		switch {
		case over:
			seat.Role = p.Role
		case me != nil && p.ID == me.ID:
			seat.Role = p.Role
		case me != nil && me.Role == RoleWerewolf && p.Role == RoleWerewolf:
			seat.Role = p.Role
		case p.VillageIdiotRevealed:
			seat.Role = p.Role
		}
		view.Seats = append(view.Seats, seat)
	}

	if me != nil {
		switch me.Role {
		case RoleWerewolf:
			for _, w := range state.Werewolves() {
				if w.ID != me.ID {
					view.Teammates = append(view.Teammates, w.ID)
				}
			}
		case RoleSeer:
			view.SeerChecks = append([]SeerCheck(nil), me.SeerChecks...)
		case RoleWitch:
			cure, poison := me.WitchHasCure, me.WitchHasPoison
			view.HasCure, view.HasPoison = &cure, &poison
		case RoleGuard:
			view.LastProtected = me.GuardLastProtected
		case RoleHunter:
			shoot := me.HunterCanShoot
			view.HunterCanShoot = &shoot
		}
		view.Events = EventsVisibleTo(state.History, me.ID)
	} else {
		view.Events = PublicEvents(state.History)
	}
	return view
}
