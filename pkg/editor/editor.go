// Package editor is the composition root of a scene editing session. It owns one layer
// store, one application state and one object table, keeps them consistent and records a
// history entry for every undoable action.
//
// Each operation commits the state once and, when undoable, appends one history entry.
// An Editor is not safe for concurrent use; see the workspace package for serialized access.
package editor

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/isoscene/internal/logging"
	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/layers"
	"github.com/aretw0/isoscene/pkg/ports"
	"github.com/aretw0/isoscene/pkg/scene"
	"github.com/aretw0/isoscene/pkg/state"
)

// Editor wires layers, state and objects for one scene.
type Editor struct {
	layers  *layers.Store
	state   *state.AppState
	objects *scene.Table

	store     ports.SnapshotStore
	key       string
	logger    *slog.Logger
	now       func() time.Time
	stateOpts []state.Option
}

// Option configures an Editor.
type Option func(*Editor)

// WithKey sets the key the state is persisted under. Scene documents are stored under
// keys derived from it.
func WithKey(key string) Option {
	return func(e *Editor) {
		e.key = key
	}
}

// WithLogger configures a logger, shared with the application state.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithClock overrides the clock used for frames, documents and sessions.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// WithStateOptions passes extra options to the application state.
func WithStateOptions(opts ...state.Option) Option {
	return func(e *Editor) {
		e.stateOpts = append(e.stateOpts, opts...)
	}
}

// New restores the state stored under the configured key and, when present, the autosaved
// scene. A missing or broken autosave leaves an empty scene with one default layer.
func New(ctx context.Context, store ports.SnapshotStore, opts ...Option) *Editor {
	e := &Editor{
		layers:  layers.NewStore(),
		objects: scene.NewTable(),
		store:   store,
		key:     state.DefaultKey,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	stateOpts := append([]state.Option{
		state.WithKey(e.key),
		state.WithLogger(e.logger),
		state.WithClock(e.now),
	}, e.stateOpts...)
	e.state = state.New(ctx, store, stateOpts...)
	// state.New falls back to an in-memory store; share it so documents land next to the state.
	if e.store == nil {
		e.store = e.state.Store()
	}

	if doc, err := e.readDocument(ctx, e.autosaveKey()); err == nil {
		if err := e.apply(doc); err != nil {
			e.logger.Warn("Ignoring invalid autosave", "err", err)
		}
	}
	return e
}

// State exposes the application state for reads and subscriptions.
func (e *Editor) State() *state.AppState {
	return e.state
}

// Layers returns copies of every layer in display order.
func (e *Editor) Layers() []layers.Layer {
	return e.layers.Layers()
}

// Layer returns a copy of the layer with id.
func (e *Editor) Layer(id int) (layers.Layer, bool) {
	return e.layers.Layer(id)
}

// CurrentLayerID returns the layer new objects are added to.
func (e *Editor) CurrentLayerID() int {
	return e.layers.CurrentLayerID()
}

// Objects returns copies of every object ordered by id.
func (e *Editor) Objects() []domain.Object {
	return e.objects.All()
}

// Object returns a copy of the object with id.
func (e *Editor) Object(id domain.ObjectID) (domain.Object, bool) {
	return e.objects.Get(id)
}

// VisibleObjects returns the handles the render pass draws, in layer order.
func (e *Editor) VisibleObjects() []domain.ObjectID {
	return e.layers.VisibleObjects()
}

// Undo pops the last action off the log. Reverting the scene is left to the caller.
func (e *Editor) Undo(ctx context.Context) (domain.Action, bool) {
	return e.state.Undo(ctx)
}

// Redo re-pushes the last undone action.
func (e *Editor) Redo(ctx context.Context) (domain.Action, bool) {
	return e.state.Redo(ctx)
}

// commit runs fn inside one state mutation, mirrors the layer store into the tree and
// counts the user action.
func (e *Editor) commit(ctx context.Context, op string, fn func(t *domain.Tree) error) error {
	err := e.state.Mutate(ctx, op, func(t *domain.Tree) error {
		if fn != nil {
			if err := fn(t); err != nil {
				return err
			}
		}
		t.Layers.CurrentLayerID = e.layers.CurrentLayerID()
		t.Layers.LayerCount = e.layers.Len()
		t.Objects.ObjectCount = e.objects.Len()
		t.Session.ActionCount++
		return nil
	})
	if err != nil {
		return err
	}
	e.autosave(ctx)
	return nil
}

// record appends action to the history log. Failures are logged.
func (e *Editor) record(ctx context.Context, action domain.Action) {
	if err := e.state.AddToHistory(ctx, action); err != nil {
		e.logger.Error("Failed to record action", "action", action.Kind, "err", err)
	}
}
