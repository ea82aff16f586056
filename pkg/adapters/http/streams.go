package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/isoscene/internal/logging"
	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/editor"
	"github.com/go-chi/chi/v5"
)

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // WorkspaceID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

func (sm *StreamManager) Subscribe(workspaceID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[workspaceID]; !ok {
		sm.subscribers[workspaceID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[workspaceID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[workspaceID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, workspaceID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(workspaceID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("StreamManager: Broadcasting", "workspace_id", workspaceID, "payload_size", len(msg))

	for ch := range sm.subscribers[workspaceID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "workspace_id", workspaceID)
		}
	}
}

// Attach publishes every state change of e as a section diff on the workspace stream.
// It has the workspace.OpenHook signature.
func (sm *StreamManager) Attach(workspaceID string, e *editor.Editor) {
	var mu sync.Mutex
	prev := e.State().Snapshot()

	e.State().Subscribe(func(tree domain.Tree) {
		mu.Lock()
		diff := domain.Diff(&prev, &tree)
		prev = tree
		mu.Unlock()

		if diff.IsEmpty() {
			return
		}
		payload, err := json.Marshal(diff)
		if err != nil {
			sm.logger.Error("SSE: Failed to encode diff", "workspace_id", workspaceID, "err", err)
			return
		}
		sm.Broadcast(workspaceID, string(payload))
	})
}

// SubscribeEvents handles GET /workspaces/{ws}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	workspaceID := chi.URLParam(r, "ws")
	exists, err := s.Workspaces.Exists(r.Context(), workspaceID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !exists {
		s.writeError(w, fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, workspaceID))
		return
	}
	// Opening the editor attaches it to the stream.
	if err := s.Workspaces.WithLock(r.Context(), workspaceID, func(context.Context, *editor.Editor) error { return nil }); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to workspace updates", "workspace_id", workspaceID)
	ch, cancel := s.Streams.Subscribe(workspaceID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		for _, field := range strings.Split(watch, ",") {
			if field = strings.TrimSpace(field); field != "" {
				watchList = append(watchList, field)
			}
		}
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "workspace_id", workspaceID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !touchesAny(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// touchesAny reports whether the encoded diff changes one of the watched sections.
// Messages that cannot be decoded are let through.
func touchesAny(msg string, sections []string) bool {
	var diff domain.TreeDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, section := range sections {
		if diff.Touches(section) {
			return true
		}
	}
	return false
}
