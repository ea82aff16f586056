package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/isoscene/internal/logging"
	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/editor"
	"github.com/aretw0/isoscene/pkg/ports"
	"github.com/aretw0/isoscene/pkg/state"
	"github.com/google/uuid"
)

// keyPrefix namespaces workspace keys in the snapshot store.
const keyPrefix = "ws:"

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// OpenHook is called once per workspace, right after its editor was built.
type OpenHook func(id string, e *editor.Editor)

// Manager orchestrates workspace access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu      sync.Mutex            // guards locks and editors
	locks   map[string]*lockEntry // active locks
	editors map[string]*editor.Editor

	locker     ports.DistributedLocker
	lockTTL    time.Duration
	logger     *slog.Logger
	editorOpts []editor.Option
	hooksFor   func(id string) domain.StateHooks
	onOpen     []OpenHook
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager and its editors.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEditorOptions passes options to every editor the manager builds.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(m *Manager) {
		m.editorOpts = append(m.editorOpts, opts...)
	}
}

// WithStateHooks installs per-workspace state hooks, e.g. metrics labelled by workspace id.
func WithStateHooks(hooksFor func(id string) domain.StateHooks) Option {
	return func(m *Manager) {
		m.hooksFor = hooksFor
	}
}

// WithOpenHook registers a callback for newly opened workspaces.
func WithOpenHook(hook OpenHook) Option {
	return func(m *Manager) {
		m.onOpen = append(m.onOpen, hook)
	}
}

// OnOpen registers hook for workspaces opened from now on.
func (m *Manager) OnOpen(hook OpenHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOpen = append(m.onOpen, hook)
}

// NewManager creates a workspace manager over store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		editors: make(map[string]*editor.Editor),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ValidateID rejects ids that would collide with the key layout.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, ": /") {
		return fmt.Errorf("%w: %q", domain.ErrInvalidWorkspaceID, id)
	}
	return nil
}

// Key returns the state key of workspace id.
func Key(id string) string {
	return keyPrefix + id
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Create opens a workspace with a fresh random id.
func (m *Manager) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	return id, m.WithLock(ctx, id, func(context.Context, *editor.Editor) error { return nil })
}

// WithLock runs fn with exclusive access to the editor of workspace id, opening it on
// first use.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context, *editor.Editor) error) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, Key(id), m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"workspace", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx, m.editor(ctx, id))
}

// editor returns the cached editor of id or builds it. Callers hold the workspace lock.
func (m *Manager) editor(ctx context.Context, id string) *editor.Editor {
	m.mu.Lock()
	e, ok := m.editors[id]
	m.mu.Unlock()
	if ok {
		return e
	}

	opts := append([]editor.Option{
		editor.WithKey(Key(id)),
		editor.WithLogger(m.logger.With("workspace", id)),
	}, m.editorOpts...)
	if m.hooksFor != nil {
		opts = append(opts, editor.WithStateOptions(state.WithHooks(m.hooksFor(id))))
	}
	e = editor.New(ctx, m.store, opts...)

	m.mu.Lock()
	m.editors[id] = e
	hooks := slices.Clone(m.onOpen)
	m.mu.Unlock()

	m.logger.Debug("Workspace opened", "workspace", id)
	for _, hook := range hooks {
		hook(id, e)
	}
	return e
}

// Exists reports whether workspace id is open or has persisted state.
func (m *Manager) Exists(ctx context.Context, id string) (bool, error) {
	if err := ValidateID(id); err != nil {
		return false, err
	}
	m.mu.Lock()
	_, open := m.editors[id]
	m.mu.Unlock()
	if open {
		return true, nil
	}
	_, err := m.store.Load(ctx, Key(id))
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return false, nil
	}
	return err == nil, err
}

// List returns the ids of open and persisted workspaces, sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	keys, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		id, ok := strings.CutPrefix(k, keyPrefix)
		if ok && !strings.Contains(id, ":") {
			ids = append(ids, id)
		}
	}
	m.mu.Lock()
	for id := range m.editors {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// Drop forgets workspace id and deletes every key it persisted, saved scenes included.
func (m *Manager) Drop(ctx context.Context, id string) error {
	exists, err := m.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, id)
	}

	return m.WithLock(ctx, id, func(ctx context.Context, e *editor.Editor) error {
		keys, err := m.store.List(ctx)
		if err != nil {
			return err
		}
		prefix := Key(id)
		for _, k := range keys {
			if k == prefix || strings.HasPrefix(k, prefix+":") {
				if err := m.store.Delete(ctx, k); err != nil {
					return fmt.Errorf("drop %s: %w", k, err)
				}
			}
		}
		m.mu.Lock()
		delete(m.editors, id)
		m.mu.Unlock()
		return nil
	})
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}
