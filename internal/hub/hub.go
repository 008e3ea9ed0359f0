// Package hub implements the connection coordinator: it owns the
// project-id → sync-engine map, the session registry, and the room
// broadcaster, and routes every inbound command to the right engine.
// One hub instance serves the whole process; all of its stores are
// injected so tests can run isolated instances.
package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/zulandar/atelier/internal/ai"
	"github.com/zulandar/atelier/internal/engine"
	"github.com/zulandar/atelier/internal/event"
	"github.com/zulandar/atelier/internal/models"
	"github.com/zulandar/atelier/internal/room"
	"github.com/zulandar/atelier/internal/session"
	"github.com/zulandar/atelier/internal/storage"
)

// ErrNotJoined is returned for commands from a session that has not
// joined a project.
var ErrNotJoined = errors.New("hub: session not joined to a project")

// ErrAIUnavailable is returned for ai-request when no generator is
// configured.
var ErrAIUnavailable = errors.New("hub: no ai generator configured")

// projectEntry gates engine construction. The first joiner creates the
// entry and performs the load; concurrent joiners block on done and share
// the result. This is what prevents two racing joins from constructing
// two competing engines for one project.
type projectEntry struct {
	done chan struct{}
	eng  *engine.Engine
	err  error
}

// HubOpts holds parameters for creating a Hub.
type HubOpts struct {
	Store  storage.Store
	Bridge *ai.Bridge // optional; ai-request fails without it
	Out    io.Writer  // defaults to os.Stdout
}

// Hub is the connection coordinator.
type Hub struct {
	store  storage.Store
	bridge *ai.Bridge
	out    io.Writer

	registry *session.Registry
	rooms    *room.Broadcaster

	mu       sync.Mutex
	projects map[string]*projectEntry
}

// NewHub creates a Hub with empty registries.
func NewHub(opts HubOpts) (*Hub, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("hub: store is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Hub{
		store:    opts.Store,
		bridge:   opts.Bridge,
		out:      out,
		registry: session.NewRegistry(),
		rooms:    room.NewBroadcaster(),
		projects: make(map[string]*projectEntry),
	}, nil
}

// engineFor returns the engine for a project, constructing and loading it
// on first use. Exactly one load runs per project id no matter how many
// sessions join concurrently; a failed load removes the entry so a later
// join can retry.
func (h *Hub) engineFor(ctx context.Context, projectID string) (*engine.Engine, error) {
	h.mu.Lock()
	if entry, ok := h.projects[projectID]; ok {
		h.mu.Unlock()
		select {
		case <-entry.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if entry.err != nil {
			return nil, entry.err
		}
		return entry.eng, nil
	}

	entry := &projectEntry{done: make(chan struct{})}
	h.projects[projectID] = entry
	h.mu.Unlock()

	p, err := h.store.Load(ctx, projectID)
	if errors.Is(err, storage.ErrNotFound) {
		// First-ever join: start from an empty project.
		p, err = models.NewProject(projectID, projectID), nil
	}
	if err != nil {
		entry.err = fmt.Errorf("hub: load project %s: %w", projectID, err)
		h.mu.Lock()
		delete(h.projects, projectID)
		h.mu.Unlock()
		close(entry.done)
		return nil, entry.err
	}

	eng := engine.New(projectID)
	eng.Replace(p)

	// Wire the room broadcaster exactly once per project, before the
	// entry is published. Membership is looked up at broadcast time, so
	// later joins never re-subscribe.
	eng.OnAll(func(ev event.Event) {
		h.rooms.Broadcast(projectID, "sync-event", ev, ev.Origin)
	})

	entry.eng = eng
	close(entry.done)
	return eng, nil
}

// engineOf resolves the engine a joined session is attached to.
func (h *Hub) engineOf(sessionID string) (*engine.Engine, session.Session, error) {
	sess, ok := h.registry.Get(sessionID)
	if !ok {
		return nil, session.Session{}, ErrNotJoined
	}
	h.mu.Lock()
	entry, ok := h.projects[sess.ProjectID]
	h.mu.Unlock()
	if !ok {
		return nil, session.Session{}, ErrNotJoined
	}
	<-entry.done
	if entry.err != nil {
		return nil, session.Session{}, entry.err
	}
	return entry.eng, sess, nil
}

// Stats is a point-in-time view of hub load.
type Stats struct {
	OpenProjects int `json:"openProjects"`
	Sessions     int `json:"sessions"`
}

// Stats returns the number of open projects and connected sessions.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	projects := len(h.projects)
	h.mu.Unlock()
	return Stats{OpenProjects: projects, Sessions: h.registry.Len()}
}

// SweepIdle kicks every session with no activity for at least timeout.
// Returns the number of sessions removed.
func (h *Hub) SweepIdle(timeout time.Duration) int {
	ids := h.registry.Idle(timeout)
	for _, id := range ids {
		h.Kick(id, "idle")
	}
	return len(ids)
}
