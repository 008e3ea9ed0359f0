// Package event defines the sync event taxonomy: the typed, ordered
// notifications emitted for every mutation applied to a project. Events
// are transient — they are broadcast to the project's room and never
// persisted.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of mutation an event describes. The set is
// closed; the engine never emits a type outside this list.
type Type string

const (
	ComponentCreate Type = "component.create"
	ComponentUpdate Type = "component.update"
	ComponentDelete Type = "component.delete"

	LogicNodeCreate Type = "logic.node.create"
	LogicNodeUpdate Type = "logic.node.update"
	LogicNodeDelete Type = "logic.node.delete"

	LogicConnectionCreate Type = "logic.connection.create"
	LogicConnectionDelete Type = "logic.connection.delete"

	CodeFileCreate Type = "code.file.create"
	CodeFileUpdate Type = "code.file.update"
	CodeFileDelete Type = "code.file.delete"

	ScreenCreate Type = "screen.create"
	ScreenUpdate Type = "screen.update"
	ScreenDelete Type = "screen.delete"

	SettingsUpdate Type = "project.settings.update"
)

// Mode is one of the three editing surfaces.
type Mode string

const (
	ModeDesign Mode = "design"
	ModeLogic  Mode = "logic"
	ModeCode   Mode = "code"
)

// ValidMode reports whether m names a real editing surface.
func ValidMode(m Mode) bool {
	switch m {
	case ModeDesign, ModeLogic, ModeCode:
		return true
	}
	return false
}

// Known reports whether t belongs to the closed event taxonomy.
func Known(t Type) bool {
	switch t {
	case ComponentCreate, ComponentUpdate, ComponentDelete,
		LogicNodeCreate, LogicNodeUpdate, LogicNodeDelete,
		LogicConnectionCreate, LogicConnectionDelete,
		CodeFileCreate, CodeFileUpdate, CodeFileDelete,
		ScreenCreate, ScreenUpdate, ScreenDelete,
		SettingsUpdate:
		return true
	}
	return false
}

// Actor identifies who caused a mutation. SessionID is used for broadcast
// exclusion and never leaves the process; UserID travels on the event.
type Actor struct {
	SessionID string
	UserID    string
}

// Event is one applied mutation, in apply order for its project.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	UserID    string    `json:"userId"`
	Data      any       `json:"data,omitempty"`
	Modes     []Mode    `json:"modes"`
	Timestamp time.Time `json:"timestamp"`

	// Origin is the session that submitted the mutation, used by the
	// broadcaster to skip echoing the change back to its author. Empty
	// for events with no originating session (AI merges, loads).
	Origin string `json:"-"`
}

// New constructs an event for one applied mutation.
func New(t Type, actor Actor, data any) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      t,
		UserID:    actor.UserID,
		Data:      data,
		Modes:     RelevantModes(t),
		Timestamp: time.Now().UTC(),
		Origin:    actor.SessionID,
	}
}

// RelevantModes returns the editing surfaces that should re-render when an
// event of type t arrives. Design and logic changes also concern the code
// surface because generated code tracks both; settings concern everyone.
func RelevantModes(t Type) []Mode {
	switch t {
	case ComponentCreate, ComponentUpdate, ComponentDelete,
		ScreenCreate, ScreenUpdate, ScreenDelete:
		return []Mode{ModeDesign, ModeCode}
	case LogicNodeCreate, LogicNodeUpdate, LogicNodeDelete,
		LogicConnectionCreate, LogicConnectionDelete:
		return []Mode{ModeLogic, ModeCode}
	case CodeFileCreate, CodeFileUpdate, CodeFileDelete:
		return []Mode{ModeCode}
	case SettingsUpdate:
		return []Mode{ModeDesign, ModeLogic, ModeCode}
	}
	return nil
}
