package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/zulandar/atelier/internal/ai"
	"github.com/zulandar/atelier/internal/engine"
	"github.com/zulandar/atelier/internal/event"
	"github.com/zulandar/atelier/internal/models"
	"github.com/zulandar/atelier/internal/room"
)

// userRef names a user in a presence event.
type userRef struct {
	UserID string `json:"userId"`
}

// userMode names a user plus their current editing surface.
type userMode struct {
	UserID string     `json:"userId"`
	Mode   event.Mode `json:"mode"`
}

// kickNotice tells a session why it was removed.
type kickNotice struct {
	Reason string `json:"reason"`
}

// Cursor is the ephemeral presence payload of cursor-update.
type Cursor struct {
	Position  models.Point `json:"position"`
	Mode      event.Mode   `json:"mode"`
	ElementID string       `json:"elementId,omitempty"`
}

// userCursor is the outbound form, tagged with the moving user.
type userCursor struct {
	UserID string `json:"userId"`
	Cursor
}

// Join attaches a session to a project: constructs or reuses the
// project's engine, registers the session, sends it the current project
// state, and announces the join to the room. A failed load aborts the
// join with no room entry.
func (h *Hub) Join(ctx context.Context, sessionID, userID, projectID string, mode event.Mode, sender room.Sender) error {
	if sender == nil {
		return fmt.Errorf("hub: sender is required")
	}

	// Joining a new project implicitly leaves the old room, with the
	// same presence updates a disconnect would produce.
	if prev, ok := h.registry.Get(sessionID); ok && prev.ProjectID != projectID {
		h.depart(sessionID, prev.UserID)
	}

	eng, err := h.engineFor(ctx, projectID)
	if err != nil {
		return err
	}
	if err := h.registry.Register(sessionID, userID, projectID, mode); err != nil {
		return err
	}
	h.rooms.Join(sessionID, projectID, sender)

	// A detached snapshot, not the live model: the sender may serialize
	// it on another goroutine, outside the engine lock.
	if err := sender.Send("project-state", eng.Snapshot()); err != nil {
		log.Printf("hub: send project-state to %s: %v", sessionID, err)
	}
	h.rooms.Broadcast(projectID, "user-joined", userMode{UserID: userID, Mode: mode}, sessionID)
	h.broadcastActiveUsers(projectID)

	fmt.Fprintf(h.out, "hub: %s joined %s (%s)\n", userID, projectID, mode)
	return nil
}

// ChangeMode switches the session's editing surface and notifies the
// room. The canonical model is untouched.
func (h *Hub) ChangeMode(sessionID string, mode event.Mode) error {
	if err := h.registry.UpdateMode(sessionID, mode); err != nil {
		return err
	}
	sess, _ := h.registry.Get(sessionID)
	h.rooms.Broadcast(sess.ProjectID, "user-mode-changed", userMode{UserID: sess.UserID, Mode: mode}, sessionID)
	return nil
}

// DesignChange forwards a design-surface mutation to the session's
// engine. The engine's own emission triggers the broadcast.
func (h *Hub) DesignChange(sessionID string, kind engine.Kind, target engine.DesignTarget, payload json.RawMessage) error {
	eng, sess, err := h.engineOf(sessionID)
	if err != nil {
		return err
	}
	h.registry.Touch(sessionID)
	_, err = eng.ApplyDesign(event.Actor{SessionID: sessionID, UserID: sess.UserID}, kind, target, payload)
	return err
}

// LogicChange forwards a logic-surface mutation.
func (h *Hub) LogicChange(sessionID string, kind engine.Kind, nodeKind engine.NodeKind, payload json.RawMessage) error {
	eng, sess, err := h.engineOf(sessionID)
	if err != nil {
		return err
	}
	h.registry.Touch(sessionID)
	_, err = eng.ApplyLogic(event.Actor{SessionID: sessionID, UserID: sess.UserID}, kind, nodeKind, payload)
	return err
}

// CodeChange forwards a code-surface mutation.
func (h *Hub) CodeChange(sessionID string, kind engine.Kind, payload json.RawMessage) error {
	eng, sess, err := h.engineOf(sessionID)
	if err != nil {
		return err
	}
	h.registry.Touch(sessionID)
	_, err = eng.ApplyCode(event.Actor{SessionID: sessionID, UserID: sess.UserID}, kind, payload)
	return err
}

// Relay re-broadcasts a sender-constructed event to the room, excluding
// the sender, without re-validation. Sessions are authenticated upstream
// of this layer.
func (h *Hub) Relay(sessionID string, ev event.Event) error {
	sess, ok := h.registry.Get(sessionID)
	if !ok {
		return ErrNotJoined
	}
	h.registry.Touch(sessionID)
	h.rooms.Broadcast(sess.ProjectID, "sync-event", ev, sessionID)
	return nil
}

// CursorUpdate broadcasts an ephemeral cursor position to the room.
func (h *Hub) CursorUpdate(sessionID string, cur Cursor) error {
	sess, ok := h.registry.Get(sessionID)
	if !ok {
		return ErrNotJoined
	}
	h.registry.Touch(sessionID)
	h.rooms.Broadcast(sess.ProjectID, "user-cursor", userCursor{UserID: sess.UserID, Cursor: cur}, sessionID)
	return nil
}

// Activity records a heartbeat from the session.
func (h *Hub) Activity(sessionID string) {
	h.registry.Touch(sessionID)
}

// AIRequest enriches the request with the session's project snapshot and
// forwards it to the merge bridge. The response goes to the requester
// only; if the bridge auto-applied, the resulting event has already been
// broadcast through the engine.
func (h *Hub) AIRequest(ctx context.Context, sessionID string, req ai.Request) (*ai.Response, error) {
	if h.bridge == nil {
		return nil, ErrAIUnavailable
	}
	eng, sess, err := h.engineOf(sessionID)
	if err != nil {
		return nil, err
	}
	h.registry.Touch(sessionID)

	req.ProjectID = sess.ProjectID
	req.Project = eng.Snapshot()
	return h.bridge.Handle(ctx, req, eng)
}

// Save snapshots the session's project and hands it to storage.
func (h *Hub) Save(ctx context.Context, sessionID string) error {
	eng, _, err := h.engineOf(sessionID)
	if err != nil {
		return err
	}
	h.registry.Touch(sessionID)
	if err := h.store.Save(ctx, eng.Snapshot()); err != nil {
		return fmt.Errorf("hub: save project %s: %w", eng.ProjectID(), err)
	}
	return nil
}

// Export builds a download-ready payload from the session's project.
func (h *Hub) Export(sessionID, format string) (*Export, error) {
	eng, _, err := h.engineOf(sessionID)
	if err != nil {
		return nil, err
	}
	h.registry.Touch(sessionID)
	return buildExport(eng.Snapshot(), format)
}

// Disconnect tears a session down and updates room presence.
func (h *Hub) Disconnect(sessionID string) {
	sess, ok := h.registry.Get(sessionID)
	if !ok {
		h.rooms.Leave(sessionID)
		return
	}
	h.depart(sessionID, sess.UserID)
	fmt.Fprintf(h.out, "hub: %s left %s\n", sess.UserID, sess.ProjectID)
}

// Kick forcibly removes a session: the victim is told why, the room gets
// the same presence updates as a disconnect.
func (h *Hub) Kick(sessionID, reason string) {
	if sender := h.rooms.SenderOf(sessionID); sender != nil {
		if err := sender.Send("kicked-from-project", kickNotice{Reason: reason}); err != nil {
			log.Printf("hub: send kick notice to %s: %v", sessionID, err)
		}
	}
	h.Disconnect(sessionID)
}

// depart removes the session from its room and registry and notifies the
// remaining members. The broadcaster, not the registry, is the authority
// on which room to notify.
func (h *Hub) depart(sessionID, userID string) {
	projectID := h.rooms.RoomOf(sessionID)
	h.rooms.Leave(sessionID)
	h.registry.Unregister(sessionID)
	if projectID == "" {
		return
	}
	h.rooms.Broadcast(projectID, "user-left", userRef{UserID: userID}, "")
	h.broadcastActiveUsers(projectID)
}

func (h *Hub) broadcastActiveUsers(projectID string) {
	h.rooms.Broadcast(projectID, "active-users", h.registry.ListByProject(projectID), "")
}
