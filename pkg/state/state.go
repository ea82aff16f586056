package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/aretw0/isoscene/internal/logging"
	"github.com/aretw0/isoscene/pkg/adapters/memory"
	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/ports"
	"github.com/google/uuid"
)

// DefaultKey is the key the tree is persisted under.
const DefaultKey = "isoscene-state"

// Listener receives a copy of the full tree after every successful mutation.
type Listener func(tree domain.Tree)

type subscription struct {
	id int
	fn Listener
}

// AppState is the single mutable source of truth for session, UI, tool and preference data.
// Safe for concurrent use; listeners run outside the internal lock.
type AppState struct {
	mu   sync.Mutex
	tree domain.Tree

	store  ports.SnapshotStore
	key    string
	logger *slog.Logger
	hooks  domain.StateHooks
	now    func() time.Time
	newID  func() string
	// maxHistory overrides the default history bound when positive.
	maxHistory int

	subsMu  sync.Mutex
	subs    []subscription
	nextSub int
}

// Option configures an AppState.
type Option func(*AppState)

// WithKey sets the snapshot key (default "isoscene-state").
func WithKey(key string) Option {
	return func(s *AppState) {
		s.key = key
	}
}

// WithLogger configures a logger for persistence and listener failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *AppState) {
		s.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.StateHooks) Option {
	return func(s *AppState) {
		s.hooks = hooks
	}
}

// WithClock overrides the clock used to stamp new sessions.
func WithClock(now func() time.Time) Option {
	return func(s *AppState) {
		s.now = now
	}
}

// WithSessionIDGenerator overrides the session id generator (default: random UUID).
func WithSessionIDGenerator(gen func() string) Option {
	return func(s *AppState) {
		s.newID = gen
	}
}

// WithMaxHistorySize bounds the undo log of new sessions at n entries. A stored tree with a
// different bound is updated on load. n <= 0 keeps the default.
func WithMaxHistorySize(n int) Option {
	return func(s *AppState) {
		s.maxHistory = n
	}
}

// New builds an AppState from the snapshot stored under the configured key.
// A missing or unreadable snapshot silently falls back to the default tree.
// A nil store keeps the state in memory only.
func New(ctx context.Context, store ports.SnapshotStore, opts ...Option) *AppState {
	s := &AppState{
		store:  store,
		key:    DefaultKey,
		logger: logging.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}
	s.logger = s.logger.With("state_key", s.key)

	if tree, ok := s.load(ctx); ok {
		s.tree = tree
		if s.maxHistory > 0 && tree.History.MaxHistorySize != s.maxHistory {
			_ = s.Mutate(ctx, "history:size", func(t *domain.Tree) error {
				t.History.MaxHistorySize = s.maxHistory
				return nil
			})
		}
	} else {
		s.tree = s.defaults()
	}
	return s
}

// load reads and decodes the stored snapshot. The document is decoded onto a zero tree
// so the in-memory tree equals what was persisted.
func (s *AppState) load(ctx context.Context) (domain.Tree, bool) {
	data, err := s.store.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			s.logger.Debug("No stored state, using defaults")
		} else {
			s.logger.Warn("Failed to read stored state, using defaults", "err", err)
		}
		return domain.Tree{}, false
	}

	var tree domain.Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		s.logger.Warn("Stored state is unreadable, using defaults", "err", err)
		return domain.Tree{}, false
	}
	return tree, true
}

// defaults returns the default tree stamped with a new session.
func (s *AppState) defaults() domain.Tree {
	tree := domain.DefaultTree()
	tree.Session.ID = s.newID()
	tree.Session.StartTime = s.now().UnixMilli()
	if s.maxHistory > 0 {
		tree.History.MaxHistorySize = s.maxHistory
	}
	return tree
}

// Key returns the snapshot key.
func (s *AppState) Key() string {
	return s.key
}

// Store returns the snapshot store the tree is persisted to.
func (s *AppState) Store() ports.SnapshotStore {
	return s.store
}

// Snapshot returns a deep copy of the current tree.
func (s *AppState) Snapshot() domain.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Clone()
}

// GetStateProperty resolves a dotted path. ok is false when any segment is missing.
func (s *AppState) GetStateProperty(path string) (value any, ok bool) {
	segments, valid := splitPath(path)
	if !valid {
		return nil, false
	}
	tree := s.Snapshot()
	v, found := resolve(reflect.ValueOf(&tree).Elem(), segments)
	if !found || !v.CanInterface() {
		return nil, false
	}
	return v.Interface(), true
}

// SetStateProperty assigns value at path, then persists and notifies once.
// Intermediate containers must already exist (ErrPathNotFound otherwise) and value must
// convert to the field type (ErrTypeMismatch otherwise). A rejected write changes nothing.
func (s *AppState) SetStateProperty(ctx context.Context, path string, value any) error {
	segments, ok := splitPath(path)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrPathNotFound, path)
	}
	return s.Mutate(ctx, "set:"+path, func(t *domain.Tree) error {
		// Work on a copy so a failed conversion leaves the tree untouched.
		draft := t.Clone()
		root := reflect.ValueOf(&draft).Elem()
		parent, found := resolve(root, segments[:len(segments)-1])
		if !found {
			return fmt.Errorf("%w: %q", domain.ErrPathNotFound, path)
		}
		if err := assign(parent, segments[len(segments)-1], value); err != nil {
			return fmt.Errorf("set %q: %w", path, err)
		}
		if segments[0] == "history" {
			if err := draft.History.Validate(); err != nil {
				return fmt.Errorf("set %q: %w", path, err)
			}
		}
		*t = draft
		return nil
	})
}

// UpdateState replaces every top-level section named in partial, then persists and notifies once.
// Sections not mentioned are untouched. Unknown sections or undecodable values reject the
// whole update.
func (s *AppState) UpdateState(ctx context.Context, partial map[string]any) error {
	return s.Mutate(ctx, "update", func(t *domain.Tree) error {
		draft := t.Clone()
		root := reflect.ValueOf(&draft).Elem()
		for name, value := range partial {
			section, ok := child(root, name)
			if !ok {
				return fmt.Errorf("%w: section %q", domain.ErrPathNotFound, name)
			}
			converted, err := convert(value, section.Type())
			if err != nil {
				return fmt.Errorf("update %q: %w", name, err)
			}
			section.Set(converted)
		}
		if _, ok := partial["history"]; ok {
			if err := draft.History.Validate(); err != nil {
				return fmt.Errorf("update %q: %w", "history", err)
			}
		}
		*t = draft
		return nil
	})
}

// Reset replaces the tree with defaults for a new session, persists and notifies.
func (s *AppState) Reset(ctx context.Context) {
	_ = s.Mutate(ctx, "reset", func(t *domain.Tree) error {
		*t = s.defaults()
		return nil
	})
}

// Clear deletes the stored snapshot and resets the tree in memory without persisting it,
// so the next load falls back to defaults again. Listeners are notified.
func (s *AppState) Clear(ctx context.Context) {
	s.mu.Lock()
	if err := s.store.Delete(ctx, s.key); err != nil {
		s.logger.Error("Failed to delete stored state", "err", err)
		if s.hooks.OnPersistError != nil {
			s.hooks.OnPersistError(ctx, err)
		}
	}
	s.tree = s.defaults()
	snapshot := s.tree.Clone()
	s.mu.Unlock()

	if s.hooks.OnMutation != nil {
		s.hooks.OnMutation(ctx, "clear")
	}
	s.notify(snapshot)
}

// Mutate applies fn to the tree as one operation: on success the tree is persisted once
// and listeners are notified once. If fn returns an error the tree must be left unchanged
// by fn; nothing is persisted and the error is returned.
func (s *AppState) Mutate(ctx context.Context, op string, fn func(t *domain.Tree) error) error {
	s.mu.Lock()
	if err := fn(&s.tree); err != nil {
		s.mu.Unlock()
		return err
	}
	s.tree.Normalize()
	s.persist(ctx)
	snapshot := s.tree.Clone()
	s.mu.Unlock()

	if s.hooks.OnMutation != nil {
		s.hooks.OnMutation(ctx, op)
	}
	s.notify(snapshot)
	return nil
}

// persist writes the whole tree. Callers hold s.mu.
func (s *AppState) persist(ctx context.Context) {
	data, err := json.Marshal(s.tree)
	if err == nil {
		err = s.store.Save(ctx, s.key, data)
	}
	if err != nil {
		s.logger.Error("Failed to persist state", "err", err)
		if s.hooks.OnPersistError != nil {
			s.hooks.OnPersistError(ctx, err)
		}
		return
	}
	if s.hooks.OnPersist != nil {
		s.hooks.OnPersist(ctx, len(data))
	}
}

// Subscribe registers fn for change notifications. The returned function removes it;
// calling it more than once is harmless.
func (s *AppState) Subscribe(fn Listener) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// notify calls listeners in registration order. A panicking listener is logged and
// does not prevent the others from running.
func (s *AppState) notify(tree domain.Tree) {
	s.subsMu.Lock()
	subs := append([]subscription(nil), s.subs...)
	s.subsMu.Unlock()

	for _, sub := range subs {
		s.call(sub, tree.Clone())
	}
}

func (s *AppState) call(sub subscription, tree domain.Tree) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("State listener panicked", "listener", sub.id, "panic", r)
		}
	}()
	sub.fn(tree)
}
