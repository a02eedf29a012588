package games

// EventType names a history record.
type EventType string

const (
	EventGameStart   EventType = "game_start"
	EventGameEnd     EventType = "game_end"
	EventPhaseChange EventType = "phase_change"

	EventNightKill    EventType = "night_kill"
	EventSeerCheck    EventType = "seer_check"
	EventWitchSave    EventType = "witch_save"
	EventWitchPoison  EventType = "witch_poison"
	EventGuardProtect EventType = "guard_protect"

	EventDeathAnnouncement EventType = "death_announcement"
	EventSpeech            EventType = "speech"
	EventVoteCast          EventType = "vote_cast"
	EventVoteResult        EventType = "vote_result"
	EventLynch             EventType = "lynch"
	EventLastWords         EventType = "last_words"

	EventSheriffElection       EventType = "sheriff_election"
	EventSheriffCampaignSpeech EventType = "sheriff_campaign_speech"
	EventSheriffVote           EventType = "sheriff_vote"
	EventSheriffElected        EventType = "sheriff_elected"
	EventBadgePass             EventType = "badge_pass"
	EventBadgeTear             EventType = "badge_tear"

	EventHunterShot         EventType = "hunter_shot"
	EventVillageIdiotReveal EventType = "village_idiot_reveal"
	EventWolfSelfExplode    EventType = "wolf_self_explode"

	EventNoDeath EventType = "no_death"
	EventSaved   EventType = "saved"
)

// Event is an immutable history record. A non-public event may only be shown to the ids
// in VisibleTo.
type Event struct {
	Type      EventType              `json:"event_type" yaml:"event_type"`
	DayNumber int                    `json:"day_number" yaml:"day_number"`
	Phase     Phase                  `json:"phase" yaml:"phase"`
	ActorID   string                 `json:"actor_id,omitempty" yaml:"actor_id,omitempty"`
	TargetID  string                 `json:"target_id,omitempty" yaml:"target_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty" yaml:"data,omitempty"`
	Public    bool                   `json:"public" yaml:"public"`
	VisibleTo []string               `json:"visible_to,omitempty" yaml:"visible_to,omitempty"`
}

// NewPublicEvent builds an event everyone may see.
func NewPublicEvent(s *GameState, typ EventType, actorID, targetID string, data map[string]interface{}) Event {
	return Event{
		Type:      typ,
		DayNumber: s.DayNumber,
		Phase:     s.Phase,
		ActorID:   actorID,
		TargetID:  targetID,
		Data:      data,
		Public:    true,
	}
}

// NewPrivateEvent builds an event restricted to audience. Callers must pass at least one id.
func NewPrivateEvent(s *GameState, typ EventType, actorID, targetID string, data map[string]interface{}, audience ...string) Event {
	return Event{
		Type:      typ,
		DayNumber: s.DayNumber,
		Phase:     s.Phase,
		ActorID:   actorID,
		TargetID:  targetID,
		Data:      data,
		Public:    false,
		VisibleTo: append([]string(nil), audience...),
	}
}

// Valid reports whether the visibility contract holds.
func (e Event) Valid() bool {
	return e.Public || len(e.VisibleTo) > 0
}

// VisibleToPlayer reports whether playerID may see e.
func (e Event) VisibleToPlayer(playerID string) bool {
	if e.Public {
		return true
	}
	for _, id := range e.VisibleTo {
		if id == playerID {
			return true
		}
	}
	return false
}

// EventsVisibleTo filters events down to what playerID may see, preserving order.
func EventsVisibleTo(events []Event, playerID string) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.VisibleToPlayer(playerID) {
			out = append(out, e)
		}
	}
	return out
}

// PublicEvents filters events down to the public ones.
func PublicEvents(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Public {
			out = append(out, e)
		}
	}
	return out
}
