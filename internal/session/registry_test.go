package session

import (
	"testing"
	"time"

	"github.com/zulandar/atelier/internal/event"
)

// fixedClock returns a controllable clock for registry tests.
func fixedClock(start time.Time) (*time.Time, func() time.Time) {
	t := start
	return &t, func() time.Time { return t }
}

func TestRegister_Validation(t *testing.T) {
	r := NewRegistry()
	cases := []struct {
		name                      string
		sessionID, userID, projID string
		mode                      event.Mode
	}{
		{"missing session", "", "alice", "p1", event.ModeDesign},
		{"missing user", "s1", "", "p1", event.ModeDesign},
		{"missing project", "s1", "alice", "", event.ModeDesign},
		{"bad mode", "s1", "alice", "p1", "preview"},
	}
	for _, tc := range cases {
		if err := r.Register(tc.sessionID, tc.userID, tc.projID, tc.mode); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
	if r.Len() != 0 {
		t.Errorf("invalid registrations were stored: %d", r.Len())
	}
}

func TestListByProject_JoinOrder(t *testing.T) {
	r := NewRegistry()
	now, clock := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	r.now = clock

	if err := r.Register("s-a", "alice", "p1", event.ModeDesign); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(time.Second)
	if err := r.Register("s-b", "bob", "p1", event.ModeLogic); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(time.Second)
	if err := r.Register("s-c", "cara", "p2", event.ModeCode); err != nil {
		t.Fatal(err)
	}

	got := r.ListByProject("p1")
	if len(got) != 2 {
		t.Fatalf("members = %d, want 2", len(got))
	}
	if got[0].UserID != "alice" || got[1].UserID != "bob" {
		t.Errorf("order = [%s, %s], want [alice, bob]", got[0].UserID, got[1].UserID)
	}
	if got[1].Mode != event.ModeLogic {
		t.Errorf("bob mode = %q", got[1].Mode)
	}
}

func TestUpdateMode(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("s1", "alice", "p1", event.ModeDesign); err != nil {
		t.Fatal(err)
	}
	if err := r.UpdateMode("s1", event.ModeCode); err != nil {
		t.Fatal(err)
	}
	s, ok := r.Get("s1")
	if !ok || s.Mode != event.ModeCode {
		t.Errorf("mode = %q", s.Mode)
	}

	if err := r.UpdateMode("ghost", event.ModeCode); err == nil {
		t.Error("expected error for unknown session")
	}
	if err := r.UpdateMode("s1", "preview"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestIdle(t *testing.T) {
	r := NewRegistry()
	now, clock := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	r.now = clock

	r.Register("s-old", "alice", "p1", event.ModeDesign)
	*now = now.Add(10 * time.Minute)
	r.Register("s-new", "bob", "p1", event.ModeDesign)

	idle := r.Idle(5 * time.Minute)
	if len(idle) != 1 || idle[0] != "s-old" {
		t.Fatalf("idle = %v, want [s-old]", idle)
	}

	// Activity rescues a session from the idle sweep.
	r.Touch("s-old")
	if idle := r.Idle(5 * time.Minute); len(idle) != 0 {
		t.Fatalf("idle after touch = %v", idle)
	}
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("s1", "alice", "p1", event.ModeDesign)
	r.Unregister("s1")
	if _, ok := r.Get("s1"); ok {
		t.Error("session survived unregister")
	}
	// Unknown ids are ignored.
	r.Unregister("ghost")
}
