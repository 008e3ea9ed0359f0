package server

import (
	"encoding/json"

	"github.com/zulandar/atelier/internal/engine"
	"github.com/zulandar/atelier/internal/event"
)

// Envelope is the wire form of every inbound command: an event name plus
// a command-specific JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outbound is the wire form of every server-to-client event.
type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type joinPayload struct {
	ProjectID string     `json:"projectId"`
	UserID    string     `json:"userId"`
	Mode      event.Mode `json:"mode"`
}

type modePayload struct {
	Mode event.Mode `json:"mode"`
}

type designPayload struct {
	Type    engine.Kind         `json:"type"`
	Target  engine.DesignTarget `json:"target,omitempty"`
	Payload json.RawMessage     `json:"payload"`
}

type logicPayload struct {
	Type     engine.Kind     `json:"type"`
	NodeType engine.NodeKind `json:"nodeType"`
	Payload  json.RawMessage `json:"payload"`
}

type codePayload struct {
	Type    engine.Kind     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type aiPayload struct {
	Type    string         `json:"type"`
	Prompt  string         `json:"prompt"`
	Context map[string]any `json:"context,omitempty"`
}

type exportPayload struct {
	Format string `json:"format"`
}

// errorPayload carries a short human-readable message on every named
// error event.
type errorPayload struct {
	Message string `json:"message"`
}
