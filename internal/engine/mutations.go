package engine

import (
	"encoding/json"
	"time"

	"github.com/zulandar/atelier/internal/event"
	"github.com/zulandar/atelier/internal/models"
)

// Kind is the mutation verb carried by every surface change.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// DesignTarget selects which entity a design-surface change addresses.
// An empty target means component, the common case.
type DesignTarget string

const (
	TargetComponent DesignTarget = "component"
	TargetScreen    DesignTarget = "screen"
	TargetSettings  DesignTarget = "settings"
)

// NodeKind selects whether a logic-surface change addresses a node or a
// connection between node ports.
type NodeKind string

const (
	NodeKindNode       NodeKind = "node"
	NodeKindConnection NodeKind = "connection"
)

// deletion is the event payload for delete mutations.
type deletion struct {
	ID string `json:"id"`
}

// ApplyDesign applies a design-surface mutation: components, screens, or
// project settings. Unknown ids on update/delete are benign no-ops that
// still emit the event, so two racing deletes both succeed.
func (e *Engine) ApplyDesign(actor event.Actor, kind Kind, target DesignTarget, raw json.RawMessage) (event.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.project == nil {
		return event.Event{}, ErrNotReady
	}

	var (
		typ  event.Type
		data any
		err  error
	)
	switch target {
	case TargetComponent, "":
		typ, data, err = e.applyComponent(kind, raw)
	case TargetScreen:
		typ, data, err = e.applyScreen(kind, raw)
	case TargetSettings:
		typ, data, err = e.applySettings(kind, raw)
	default:
		return event.Event{}, invalidMutation("unknown design target %q", target)
	}
	if err != nil {
		return event.Event{}, err
	}

	ev := event.New(typ, actor, data)
	e.dispatch(ev)
	return ev, nil
}

// ApplyLogic applies a logic-surface mutation to a node or connection.
func (e *Engine) ApplyLogic(actor event.Actor, kind Kind, nodeKind NodeKind, raw json.RawMessage) (event.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.project == nil {
		return event.Event{}, ErrNotReady
	}

	var (
		typ  event.Type
		data any
		err  error
	)
	switch nodeKind {
	case NodeKindNode, "":
		typ, data, err = e.applyNode(kind, raw)
	case NodeKindConnection:
		typ, data, err = e.applyConnection(kind, raw)
	default:
		return event.Event{}, invalidMutation("unknown node kind %q", nodeKind)
	}
	if err != nil {
		return event.Event{}, err
	}

	ev := event.New(typ, actor, data)
	e.dispatch(ev)
	return ev, nil
}

// ApplyCode applies a code-surface mutation to a source file.
func (e *Engine) ApplyCode(actor event.Actor, kind Kind, raw json.RawMessage) (event.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.project == nil {
		return event.Event{}, ErrNotReady
	}

	typ, data, err := e.applyFile(kind, raw)
	if err != nil {
		return event.Event{}, err
	}

	ev := event.New(typ, actor, data)
	e.dispatch(ev)
	return ev, nil
}

// --- component ---

func (e *Engine) applyComponent(kind Kind, raw json.RawMessage) (event.Type, any, error) {
	var c models.Component
	if err := json.Unmarshal(raw, &c); err != nil {
		return "", nil, invalidMutation("component payload: %v", err)
	}
	if c.ID == "" {
		return "", nil, invalidMutation("component id is required")
	}

	switch kind {
	case KindCreate:
		if c.Type == "" {
			return "", nil, invalidMutation("component type is required")
		}
		if c.ScreenID != "" && e.project.ScreenByID(c.ScreenID) == nil {
			return "", nil, invalidMutation("component %s references unknown screen %q", c.ID, c.ScreenID)
		}
		e.upsertComponent(c)
		return event.ComponentCreate, c, nil

	case KindUpdate:
		if c.ScreenID != "" && e.project.ScreenByID(c.ScreenID) == nil {
			return "", nil, invalidMutation("component %s references unknown screen %q", c.ID, c.ScreenID)
		}
		if existing := e.project.ComponentByID(c.ID); existing != nil {
			*existing = c
		}
		return event.ComponentUpdate, c, nil

	case KindDelete:
		e.removeComponent(c.ID)
		return event.ComponentDelete, deletion{ID: c.ID}, nil
	}
	return "", nil, invalidMutation("unknown change kind %q", kind)
}

func (e *Engine) upsertComponent(c models.Component) {
	if existing := e.project.ComponentByID(c.ID); existing != nil {
		*existing = c
		return
	}
	e.project.Components = append(e.project.Components, c)
}

func (e *Engine) removeComponent(id string) {
	comps := e.project.Components
	for i := range comps {
		if comps[i].ID == id {
			e.project.Components = append(comps[:i], comps[i+1:]...)
			return
		}
	}
}

// --- screen ---

func (e *Engine) applyScreen(kind Kind, raw json.RawMessage) (event.Type, any, error) {
	var s models.Screen
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", nil, invalidMutation("screen payload: %v", err)
	}
	if s.ID == "" {
		return "", nil, invalidMutation("screen id is required")
	}

	switch kind {
	case KindCreate:
		if s.Name == "" {
			return "", nil, invalidMutation("screen name is required")
		}
		if existing := e.project.ScreenByID(s.ID); existing != nil {
			*existing = s
		} else {
			e.project.Screens = append(e.project.Screens, s)
		}
		return event.ScreenCreate, s, nil

	case KindUpdate:
		if existing := e.project.ScreenByID(s.ID); existing != nil {
			*existing = s
		}
		return event.ScreenUpdate, s, nil

	case KindDelete:
		e.removeScreen(s.ID)
		return event.ScreenDelete, deletion{ID: s.ID}, nil
	}
	return "", nil, invalidMutation("unknown change kind %q", kind)
}

// removeScreen deletes a screen and cascades to its components, keeping
// the screen-id reference invariant. The cascade is part of the same
// mutation and emits no per-component events.
func (e *Engine) removeScreen(id string) {
	screens := e.project.Screens
	found := false
	for i := range screens {
		if screens[i].ID == id {
			e.project.Screens = append(screens[:i], screens[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return
	}

	kept := e.project.Components[:0]
	for _, c := range e.project.Components {
		if c.ScreenID != id {
			kept = append(kept, c)
		}
	}
	e.project.Components = kept
}

// --- settings ---

func (e *Engine) applySettings(kind Kind, raw json.RawMessage) (event.Type, any, error) {
	if kind != KindUpdate {
		return "", nil, invalidMutation("settings only support update, got %q", kind)
	}
	var s models.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", nil, invalidMutation("settings payload: %v", err)
	}
	e.project.Settings = s
	return event.SettingsUpdate, s, nil
}

// --- logic node ---

func (e *Engine) applyNode(kind Kind, raw json.RawMessage) (event.Type, any, error) {
	var n models.LogicNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", nil, invalidMutation("node payload: %v", err)
	}
	if n.ID == "" {
		return "", nil, invalidMutation("node id is required")
	}

	switch kind {
	case KindCreate:
		if n.Type == "" {
			return "", nil, invalidMutation("node type is required")
		}
		if existing := e.project.NodeByID(n.ID); existing != nil {
			*existing = n
		} else {
			e.project.Logic.Nodes = append(e.project.Logic.Nodes, n)
		}
		return event.LogicNodeCreate, n, nil

	case KindUpdate:
		if existing := e.project.NodeByID(n.ID); existing != nil {
			*existing = n
		}
		return event.LogicNodeUpdate, n, nil

	case KindDelete:
		e.removeNode(n.ID)
		return event.LogicNodeDelete, deletion{ID: n.ID}, nil
	}
	return "", nil, invalidMutation("unknown change kind %q", kind)
}

// removeNode deletes a node and cascades to every connection touching it.
func (e *Engine) removeNode(id string) {
	nodes := e.project.Logic.Nodes
	found := false
	for i := range nodes {
		if nodes[i].ID == id {
			e.project.Logic.Nodes = append(nodes[:i], nodes[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return
	}

	kept := e.project.Logic.Connections[:0]
	for _, c := range e.project.Logic.Connections {
		if c.FromNodeID != id && c.ToNodeID != id {
			kept = append(kept, c)
		}
	}
	e.project.Logic.Connections = kept
}

// --- logic connection ---

func (e *Engine) applyConnection(kind Kind, raw json.RawMessage) (event.Type, any, error) {
	var c models.Connection
	if err := json.Unmarshal(raw, &c); err != nil {
		return "", nil, invalidMutation("connection payload: %v", err)
	}
	if c.ID == "" {
		return "", nil, invalidMutation("connection id is required")
	}

	switch kind {
	case KindCreate:
		if c.FromNodeID == "" || c.ToNodeID == "" {
			return "", nil, invalidMutation("connection endpoints are required")
		}
		if e.project.NodeByID(c.FromNodeID) == nil {
			return "", nil, invalidMutation("connection %s references unknown node %q", c.ID, c.FromNodeID)
		}
		if e.project.NodeByID(c.ToNodeID) == nil {
			return "", nil, invalidMutation("connection %s references unknown node %q", c.ID, c.ToNodeID)
		}
		switch c.Kind {
		case "":
			c.Kind = models.ConnectionExec
		case models.ConnectionExec, models.ConnectionData:
		default:
			return "", nil, invalidMutation("unknown connection kind %q", c.Kind)
		}
		e.upsertConnection(c)
		return event.LogicConnectionCreate, c, nil

	case KindDelete:
		e.removeConnection(c.ID)
		return event.LogicConnectionDelete, deletion{ID: c.ID}, nil
	}
	// The taxonomy has no connection update; connections are replaced by
	// delete + create.
	return "", nil, invalidMutation("connections do not support %q", kind)
}

func (e *Engine) upsertConnection(c models.Connection) {
	conns := e.project.Logic.Connections
	for i := range conns {
		if conns[i].ID == c.ID {
			conns[i] = c
			return
		}
	}
	e.project.Logic.Connections = append(conns, c)
}

func (e *Engine) removeConnection(id string) {
	conns := e.project.Logic.Connections
	for i := range conns {
		if conns[i].ID == id {
			e.project.Logic.Connections = append(conns[:i], conns[i+1:]...)
			return
		}
	}
}

// --- code file ---

func (e *Engine) applyFile(kind Kind, raw json.RawMessage) (event.Type, any, error) {
	var f models.CodeFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", nil, invalidMutation("file payload: %v", err)
	}
	if f.ID == "" {
		return "", nil, invalidMutation("file id is required")
	}

	switch kind {
	case KindCreate:
		if f.Path == "" {
			return "", nil, invalidMutation("file path is required")
		}
		f.Refresh(time.Now().UTC())
		if existing := e.project.FileByID(f.ID); existing != nil {
			*existing = f
		} else {
			e.project.Code.Files = append(e.project.Code.Files, f)
		}
		return event.CodeFileCreate, f, nil

	case KindUpdate:
		existing := e.project.FileByID(f.ID)
		if existing == nil {
			return event.CodeFileUpdate, f, nil
		}
		if existing.Generated {
			if f.Generated && existing.HandEdited {
				return "", nil, invalidMutation("file %s was hand-edited; generated overwrite refused", f.ID)
			}
			if !f.Generated {
				// A human touched a generated file: keep its machine
				// origin and latch the hand-edited flag.
				f.Generated = true
				f.HandEdited = true
			}
		}
		f.Refresh(time.Now().UTC())
		*existing = f
		return event.CodeFileUpdate, f, nil

	case KindDelete:
		e.removeFile(f.ID)
		return event.CodeFileDelete, deletion{ID: f.ID}, nil
	}
	return "", nil, invalidMutation("unknown change kind %q", kind)
}

func (e *Engine) removeFile(id string) {
	files := e.project.Code.Files
	for i := range files {
		if files[i].ID == id {
			e.project.Code.Files = append(files[:i], files[i+1:]...)
			return
		}
	}
}
