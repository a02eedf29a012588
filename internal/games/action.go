package games

// ActionType names a command submitted by a decision maker.
type ActionType string

const (
	ActionWolfKill        ActionType = "wolf_kill"
	ActionSeerCheck       ActionType = "seer_check"
	ActionWitchCure       ActionType = "witch_cure"
	ActionWitchPoison     ActionType = "witch_poison"
	ActionGuardProtect    ActionType = "guard_protect"
	ActionHunterShoot     ActionType = "hunter_shoot"
	ActionPassBadge       ActionType = "pass_badge"
	ActionTearBadge       ActionType = "tear_badge"
	ActionVote            ActionType = "vote"
	ActionRunForSheriff   ActionType = "run_for_sheriff"
	ActionSheriffVote     ActionType = "sheriff_vote"
	ActionWolfSelfExplode ActionType = "wolf_self_explode"
)

// Action is untrusted input. The engine revalidates every field before acting on it.
type Action struct {
	Type     ActionType             `json:"action_type"`
	ActorID  string                 `json:"actor_id"`
	TargetID string                 `json:"target_id,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// NewAction builds an action with no extra data.
func NewAction(typ ActionType, actorID, targetID string) Action {
	return Action{Type: typ, ActorID: actorID, TargetID: targetID}
}

// IsNightAction reports whether the action is consumed by ResolveNight.
func (a Action) IsNightAction() bool {
	switch a.Type {
	case ActionWolfKill, ActionSeerCheck, ActionWitchCure, ActionWitchPoison, ActionGuardProtect:
		return true
	}
	return false
}
