// Package session tracks connected editing sessions: who they are, which
// project they are attached to, and which editing surface they are using.
// The registry is an injected store with an explicit lifecycle, not a
// package-level singleton, so tests can run isolated instances.
package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zulandar/atelier/internal/event"
)

// Session is one connected client.
type Session struct {
	ID           string
	UserID       string
	ProjectID    string
	Mode         event.Mode
	JoinedAt     time.Time
	LastActivity time.Time
}

// Presence is the per-session view exposed to other room members.
type Presence struct {
	UserID       string     `json:"userId"`
	Mode         event.Mode `json:"mode"`
	LastActivity time.Time  `json:"lastActivity"`
}

// Registry holds every connected session. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	now func() time.Time // test override
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Register adds or re-targets a session. Re-registering an existing id
// moves it to the new project and mode.
func (r *Registry) Register(sessionID, userID, projectID string, mode event.Mode) error {
	if sessionID == "" {
		return fmt.Errorf("session: sessionID is required")
	}
	if userID == "" {
		return fmt.Errorf("session: userID is required")
	}
	if projectID == "" {
		return fmt.Errorf("session: projectID is required")
	}
	if !event.ValidMode(mode) {
		return fmt.Errorf("session: unknown mode %q", mode)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if s, ok := r.sessions[sessionID]; ok {
		s.UserID = userID
		s.ProjectID = projectID
		s.Mode = mode
		s.LastActivity = now
		return nil
	}
	r.sessions[sessionID] = &Session{
		ID:           sessionID,
		UserID:       userID,
		ProjectID:    projectID,
		Mode:         mode,
		JoinedAt:     now,
		LastActivity: now,
	}
	return nil
}

// UpdateMode switches the session's editing surface.
func (r *Registry) UpdateMode(sessionID string, mode event.Mode) error {
	if !event.ValidMode(mode) {
		return fmt.Errorf("session: unknown mode %q", mode)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session: not registered: %s", sessionID)
	}
	s.Mode = mode
	s.LastActivity = r.now()
	return nil
}

// Touch records activity on a session. Unknown ids are ignored.
func (r *Registry) Touch(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sessionID]; ok {
		s.LastActivity = r.now()
	}
}

// Unregister removes a session. Unknown ids are ignored.
func (r *Registry) Unregister(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Get returns a copy of the session, or false.
func (r *Registry) Get(sessionID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// ListByProject returns the presence list for a project, in join order.
func (r *Registry) ListByProject(projectID string) []Presence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var members []*Session
	for _, s := range r.sessions {
		if s.ProjectID == projectID {
			members = append(members, s)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].ID < members[j].ID
		}
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})

	out := make([]Presence, len(members))
	for i, s := range members {
		out[i] = Presence{UserID: s.UserID, Mode: s.Mode, LastActivity: s.LastActivity}
	}
	return out
}

// Idle returns the ids of sessions with no activity for at least timeout.
func (r *Registry) Idle(timeout time.Duration) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cutoff := r.now().Add(-timeout)
	var ids []string
	for id, s := range r.sessions {
		if s.LastActivity.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
