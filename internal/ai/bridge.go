// Package ai bridges an external suggestion generator into the sync
// engine. High-confidence component suggestions merge into the canonical
// model through the same bulk path as a load and broadcast like any human
// edit; everything else is returned to the requesting session untouched.
package ai

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/zulandar/atelier/internal/engine"
	"github.com/zulandar/atelier/internal/event"
	"github.com/zulandar/atelier/internal/models"
)

// AutoApplyThreshold is the confidence a component suggestion must exceed
// (strictly) to be merged without explicit human acceptance.
const AutoApplyThreshold = 0.7

// AuthorID is the reserved identity stamped on events the bridge emits.
const AuthorID = "atelier-ai"

// Request is an assistant request, enriched by the coordinator with the
// current project snapshot before it reaches the generator.
type Request struct {
	Type      string         `json:"type"`
	Prompt    string         `json:"prompt"`
	Context   map[string]any `json:"context,omitempty"`
	ProjectID string         `json:"projectId,omitempty"`

	// Project is the snapshot handed to the generator. Never mutated.
	Project *models.Project `json:"project,omitempty"`
}

// Response is what the generator produced. Exactly one of the payload
// fields is set, matching Type.
type Response struct {
	Type       string             `json:"type"`
	Confidence float64            `json:"confidence"`
	Suggestion *models.Component  `json:"suggestion,omitempty"`
	Content    string             `json:"content,omitempty"`
	Files      []models.CodeFile  `json:"files,omitempty"`
	Nodes      []models.LogicNode `json:"nodes,omitempty"`
	Message    string             `json:"message,omitempty"`

	// Applied reports whether the bridge merged the suggestion into the
	// model (and therefore already broadcast it).
	Applied bool `json:"applied"`
}

// Generator produces a structured suggestion for a request. Opaque to the
// bridge; failures surface before any model mutation.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// BridgeOpts holds parameters for creating a Bridge.
type BridgeOpts struct {
	Generator Generator
	Out       io.Writer // defaults to os.Stdout
}

// Bridge applies generator output to project engines under the auto-apply
// rule.
type Bridge struct {
	gen Generator
	out io.Writer
}

// NewBridge creates a Bridge with the given options.
func NewBridge(opts BridgeOpts) (*Bridge, error) {
	if opts.Generator == nil {
		return nil, fmt.Errorf("ai: generator is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Bridge{gen: opts.Generator, out: out}, nil
}

// Handle runs the generator and, for component suggestions whose
// confidence strictly exceeds AutoApplyThreshold, merges the component
// into the engine's model and emits a component.create event under the
// reserved AI identity. Anything else is returned to the caller only.
func (b *Bridge) Handle(ctx context.Context, req Request, eng *engine.Engine) (*Response, error) {
	resp, err := b.gen.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ai: generate: %w", err)
	}

	if resp.Type != "component" || resp.Suggestion == nil || resp.Confidence <= AutoApplyThreshold {
		return resp, nil
	}
	if eng == nil || !eng.Ready() {
		return resp, nil
	}

	comp := resp.Suggestion.Clone()
	if comp.ID == "" {
		comp.ID = uuid.New().String()
	}
	comp.Generated = &models.GeneratedMeta{GeneratedAt: time.Now().UTC()}

	// Merge through the bulk path, same as a load, then emit so the room
	// broadcaster propagates it like a human edit. An empty origin means
	// no session is excluded: everyone sees the AI's change, including
	// the requester.
	snapshot := eng.Snapshot()
	snapshot.Components = append(snapshot.Components, comp)
	eng.Replace(snapshot)

	ev := event.New(event.ComponentCreate, event.Actor{UserID: AuthorID}, comp)
	if err := eng.Emit(ev); err != nil {
		return nil, fmt.Errorf("ai: emit merge event: %w", err)
	}

	fmt.Fprintf(b.out, "ai: auto-applied component %s to %s (confidence %.2f)\n",
		comp.ID, eng.ProjectID(), resp.Confidence)

	resp.Suggestion = &comp
	resp.Applied = true
	return resp, nil
}
