package websocket

import (
	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/orchestrator"
)

// ClientInMessage is the envelope for messages from client to server.
// Types: "decision" | "sync_state"
type ClientInMessage struct {
	Type          string                 `json:"type"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Decision      *orchestrator.Decision `json:"decision,omitempty"`
}

// ServerEnvelope is the envelope for messages from server to client.
// Type: "event" | "prompt" | "state" | "error"
type ServerEnvelope struct {
	Type          string      `json:"type"`
	Event         string      `json:"event,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Payload       interface{} `json:"payload,omitempty"`
}

// Client message types.
const (
	ClientMessageTypeDecision  = "decision"
	ClientMessageTypeSyncState = "sync_state"
)

// Server envelope types.
const (
	ServerTypeEvent  = "event"
	ServerTypePrompt = "prompt"
	ServerTypeState  = "state"
	ServerTypeError  = "error"
)

// MaxClientMessageTypeLength limits the "type" field to prevent abuse.
const MaxClientMessageTypeLength = 64

// MaxSpeechLength caps free text in decisions.
const MaxSpeechLength = 2000

// ValidClientMessageTypes are the only allowed values for ClientInMessage.Type.
var ValidClientMessageTypes = map[string]bool{
	ClientMessageTypeDecision:  true,
	ClientMessageTypeSyncState: true,
}

// EventPayload is the payload of an "event" envelope.
type EventPayload struct {
	Seq   int         `json:"seq"`
	Event games.Event `json:"event"`
}
