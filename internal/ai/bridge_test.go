package ai

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/zulandar/atelier/internal/engine"
	"github.com/zulandar/atelier/internal/event"
	"github.com/zulandar/atelier/internal/models"
)

// stubGenerator returns a canned response or error.
type stubGenerator struct {
	resp *Response
	err  error
}

func (s *stubGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	return s.resp, s.err
}

func newBridge(t *testing.T, gen Generator) *Bridge {
	t.Helper()
	b, err := NewBridge(BridgeOpts{Generator: gen, Out: io.Discard})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func readyEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New("p1")
	e.Replace(models.NewProject("p1", "Test"))
	return e
}

func componentResponse(confidence float64) *Response {
	return &Response{
		Type:       "component",
		Confidence: confidence,
		Suggestion: &models.Component{Type: "button", Props: map[string]any{"label": "AI"}},
	}
}

func TestNewBridge_RequiresGenerator(t *testing.T) {
	_, err := NewBridge(BridgeOpts{})
	if err == nil || err.Error() != "ai: generator is required" {
		t.Fatalf("err = %v", err)
	}
}

// Confidence exactly at the threshold must NOT auto-apply: the rule is a
// strict greater-than.
func TestThresholdIsStrict(t *testing.T) {
	eng := readyEngine(t)
	b := newBridge(t, &stubGenerator{resp: componentResponse(0.70)})

	resp, err := b.Handle(context.Background(), Request{Type: "component"}, eng)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Applied {
		t.Fatal("confidence 0.70 was auto-applied")
	}
	if len(eng.Project().Components) != 0 {
		t.Fatal("model mutated below threshold")
	}
}

func TestAboveThresholdAppliesAndEmitsOnce(t *testing.T) {
	eng := readyEngine(t)
	var got []event.Event
	eng.OnAll(func(ev event.Event) { got = append(got, ev) })

	b := newBridge(t, &stubGenerator{resp: componentResponse(0.71)})
	resp, err := b.Handle(context.Background(), Request{Type: "component"}, eng)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Applied {
		t.Fatal("confidence 0.71 was not auto-applied")
	}

	comps := eng.Project().Components
	if len(comps) != 1 {
		t.Fatalf("components = %d, want 1", len(comps))
	}
	if comps[0].ID == "" {
		t.Error("applied component got no id")
	}
	if comps[0].Generated == nil || comps[0].Generated.GeneratedAt.IsZero() {
		t.Error("applied component missing fresh generated metadata")
	}

	if len(got) != 1 {
		t.Fatalf("events = %d, want exactly 1", len(got))
	}
	if got[0].Type != event.ComponentCreate {
		t.Errorf("event type = %q", got[0].Type)
	}
	if got[0].UserID != AuthorID {
		t.Errorf("event author = %q, want %q", got[0].UserID, AuthorID)
	}
	if got[0].Origin != "" {
		t.Errorf("event origin = %q, want empty (no exclusion)", got[0].Origin)
	}
}

func TestNonComponentNeverApplies(t *testing.T) {
	eng := readyEngine(t)
	b := newBridge(t, &stubGenerator{resp: &Response{Type: "code", Confidence: 0.99, Content: "x"}})

	resp, err := b.Handle(context.Background(), Request{Type: "code"}, eng)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Applied {
		t.Fatal("non-component response was auto-applied")
	}
	if len(eng.Project().Components) != 0 {
		t.Fatal("model mutated by non-component response")
	}
}

func TestGeneratorFailureLeavesModelUntouched(t *testing.T) {
	eng := readyEngine(t)
	b := newBridge(t, &stubGenerator{err: fmt.Errorf("upstream down")})

	_, err := b.Handle(context.Background(), Request{Type: "component"}, eng)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(eng.Project().Components) != 0 {
		t.Fatal("model mutated on generator failure")
	}
}

func TestSuggestionWithoutEngineIsReturnedOnly(t *testing.T) {
	b := newBridge(t, &stubGenerator{resp: componentResponse(0.95)})
	resp, err := b.Handle(context.Background(), Request{Type: "component"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Applied {
		t.Fatal("applied without an engine")
	}
}
