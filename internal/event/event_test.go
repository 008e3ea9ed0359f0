package event

import (
	"testing"
)

func TestNew_FillsIdentityAndOrder(t *testing.T) {
	actor := Actor{SessionID: "sess-1", UserID: "alice"}
	ev := New(ComponentCreate, actor, map[string]string{"id": "c1"})

	if ev.ID == "" {
		t.Error("ID not assigned")
	}
	if ev.UserID != "alice" {
		t.Errorf("UserID = %q", ev.UserID)
	}
	if ev.Origin != "sess-1" {
		t.Errorf("Origin = %q", ev.Origin)
	}
	if ev.Timestamp.IsZero() {
		t.Error("Timestamp not assigned")
	}
}

func TestNew_UniqueIDs(t *testing.T) {
	a := New(ComponentCreate, Actor{}, nil)
	b := New(ComponentCreate, Actor{}, nil)
	if a.ID == b.ID {
		t.Errorf("two events share id %q", a.ID)
	}
}

func TestKnown(t *testing.T) {
	for _, typ := range []Type{
		ComponentCreate, ComponentUpdate, ComponentDelete,
		LogicNodeCreate, LogicConnectionDelete,
		CodeFileUpdate, ScreenDelete, SettingsUpdate,
	} {
		if !Known(typ) {
			t.Errorf("Known(%q) = false", typ)
		}
	}
	if Known("component.rename") {
		t.Error("Known accepted a type outside the taxonomy")
	}
	if Known("logic.connection.update") {
		t.Error("connection updates are not part of the taxonomy")
	}
}

func TestRelevantModes(t *testing.T) {
	cases := []struct {
		typ  Type
		want []Mode
	}{
		{ComponentUpdate, []Mode{ModeDesign, ModeCode}},
		{ScreenCreate, []Mode{ModeDesign, ModeCode}},
		{LogicNodeDelete, []Mode{ModeLogic, ModeCode}},
		{LogicConnectionCreate, []Mode{ModeLogic, ModeCode}},
		{CodeFileCreate, []Mode{ModeCode}},
		{SettingsUpdate, []Mode{ModeDesign, ModeLogic, ModeCode}},
	}
	for _, tc := range cases {
		got := RelevantModes(tc.typ)
		if len(got) != len(tc.want) {
			t.Errorf("RelevantModes(%q) = %v, want %v", tc.typ, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("RelevantModes(%q) = %v, want %v", tc.typ, got, tc.want)
				break
			}
		}
	}
}

func TestValidMode(t *testing.T) {
	for _, m := range []Mode{ModeDesign, ModeLogic, ModeCode} {
		if !ValidMode(m) {
			t.Errorf("ValidMode(%q) = false", m)
		}
	}
	if ValidMode("preview") {
		t.Error("ValidMode accepted an unknown surface")
	}
}
