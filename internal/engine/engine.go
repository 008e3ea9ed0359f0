// Package engine implements the project sync engine: one instance per
// open project, exclusively owning that project's canonical model. All
// mutation entry points apply their change and emit the corresponding
// sync event under one per-engine lock, so every subscriber observes
// events in exact apply order.
package engine

import (
	"sync"

	"github.com/zulandar/atelier/internal/event"
	"github.com/zulandar/atelier/internal/models"
)

// Handler receives sync events synchronously, in emission order. Handlers
// run while the engine lock is held and must not call back into the
// engine.
type Handler func(event.Event)

// Engine owns the canonical model for one project. It starts uninitialized;
// Replace transitions it to ready, after which the per-surface mutation
// entry points accept changes.
type Engine struct {
	projectID string

	mu      sync.Mutex
	project *models.Project // nil until loaded
	byType  map[event.Type][]Handler
	all     []Handler
}

// New creates an uninitialized engine for the given project id.
func New(projectID string) *Engine {
	return &Engine{
		projectID: projectID,
		byType:    make(map[event.Type][]Handler),
	}
}

// ProjectID returns the id this engine was created for.
func (e *Engine) ProjectID() string {
	return e.projectID
}

// Ready reports whether a project has been loaded into the engine.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project != nil
}

// On registers a handler for one event type.
func (e *Engine) On(t event.Type, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.byType[t] = append(e.byType[t], h)
}

// OnAll registers a handler for every event the engine emits. The room
// broadcaster subscribes through this, exactly once per project.
func (e *Engine) OnAll(h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.all = append(e.all, h)
}

// Project returns the live canonical model, or nil before load. The
// returned reference is read-only by convention; callers must not mutate
// it in place.
func (e *Engine) Project() *models.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project
}

// Snapshot returns a deep copy of the current model, safe to serialize
// while other sessions keep mutating. Nil before load.
func (e *Engine) Snapshot() *models.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project.Clone()
}

// Replace swaps in a whole new model. This is the bulk entry point used
// by load-from-storage and the AI merge bridge; it skips per-entity
// validation and emits no event.
func (e *Engine) Replace(p *models.Project) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.project = p
}

// Emit dispatches a caller-constructed event to subscribers, preserving
// emission order relative to mutations. Used by the AI merge bridge after
// a bulk apply; per-surface mutations emit internally and do not need it.
func (e *Engine) Emit(ev event.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.project == nil {
		return ErrNotReady
	}
	e.dispatch(ev)
	return nil
}

// dispatch invokes handlers for ev. Callers must hold e.mu.
func (e *Engine) dispatch(ev event.Event) {
	for _, h := range e.byType[ev.Type] {
		h(ev)
	}
	for _, h := range e.all {
		h(ev)
	}
}
