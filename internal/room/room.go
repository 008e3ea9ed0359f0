// Package room implements per-project broadcast rooms. A room is the set
// of sessions currently attached to one project id; broadcasts fan out to
// every member except, optionally, the originating session.
package room

import (
	"log"
	"sort"
	"sync"
)

// Sender delivers one named event to a single session. The websocket
// layer and test fakes implement it.
type Sender interface {
	Send(eventName string, data any) error
}

type member struct {
	projectID string
	sender    Sender
}

// Broadcaster maps sessions to rooms and fans events out. Safe for
// concurrent use.
type Broadcaster struct {
	mu      sync.RWMutex
	members map[string]member            // sessionID -> membership
	rooms   map[string]map[string]Sender // projectID -> sessionID -> sender
}

// NewBroadcaster returns an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		members: make(map[string]member),
		rooms:   make(map[string]map[string]Sender),
	}
}

// Join attaches a session to a project's room. A session belongs to at
// most one room; joining implicitly leaves any previous one.
func (b *Broadcaster) Join(sessionID, projectID string, s Sender) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leaveLocked(sessionID)

	r, ok := b.rooms[projectID]
	if !ok {
		r = make(map[string]Sender)
		b.rooms[projectID] = r
	}
	r[sessionID] = s
	b.members[sessionID] = member{projectID: projectID, sender: s}
}

// Leave detaches a session from its room, if any.
func (b *Broadcaster) Leave(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leaveLocked(sessionID)
}

func (b *Broadcaster) leaveLocked(sessionID string) {
	m, ok := b.members[sessionID]
	if !ok {
		return
	}
	delete(b.members, sessionID)
	if r, ok := b.rooms[m.projectID]; ok {
		delete(r, sessionID)
		if len(r) == 0 {
			delete(b.rooms, m.projectID)
		}
	}
}

// RoomOf returns the project id the session is attached to, or "".
func (b *Broadcaster) RoomOf(sessionID string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.members[sessionID].projectID
}

// SenderOf returns the sender registered for a session, or nil.
func (b *Broadcaster) SenderOf(sessionID string) Sender {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.members[sessionID].sender
}

// Members returns the session ids in a project's room, sorted.
func (b *Broadcaster) Members(projectID string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.rooms[projectID]))
	for id := range b.rooms[projectID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Broadcast sends eventName/data to every session in the project's room
// except excludeSessionID (pass "" to reach everyone). Delivery errors
// are logged, not propagated: one slow or dead member must not fail the
// others.
func (b *Broadcaster) Broadcast(projectID, eventName string, data any, excludeSessionID string) {
	b.mu.RLock()
	targets := make(map[string]Sender, len(b.rooms[projectID]))
	for id, s := range b.rooms[projectID] {
		if id == excludeSessionID {
			continue
		}
		targets[id] = s
	}
	b.mu.RUnlock()

	for id, s := range targets {
		if err := s.Send(eventName, data); err != nil {
			log.Printf("room: send %s to %s: %v", eventName, id, err)
		}
	}
}
