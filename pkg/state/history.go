package state

import (
	"context"
	"errors"

	"github.com/aretw0/isoscene/pkg/domain"
)

var errEmptyStack = errors.New("history stack is empty")

// maxHistory returns the effective history bound.
func maxHistory(h domain.HistorySection) int {
	if h.MaxHistorySize <= 0 {
		return domain.DefaultMaxHistorySize
	}
	return h.MaxHistorySize
}

// AddToHistory appends action to the undo log, evicting the oldest entries beyond the
// bound, and empties the redo log.
func (s *AppState) AddToHistory(ctx context.Context, action domain.Action) error {
	if err := action.Validate(); err != nil {
		return err
	}
	action = action.Clone()

	var undoDepth int
	err := s.Mutate(ctx, "history:add", func(t *domain.Tree) error {
		h := &t.History
		h.UndoStack = append(h.UndoStack, action)
		if limit := maxHistory(*h); len(h.UndoStack) > limit {
			h.UndoStack = append([]domain.Action{}, h.UndoStack[len(h.UndoStack)-limit:]...)
		}
		h.RedoStack = []domain.Action{}
		undoDepth = len(h.UndoStack)
		return nil
	})
	if err != nil {
		return err
	}
	if s.hooks.OnHistory != nil {
		s.hooks.OnHistory(ctx, "add", undoDepth, 0)
	}
	return nil
}

// Undo moves the most recent entry from the undo log to the redo log and returns it.
// ok is false, and nothing changes, when the undo log is empty.
func (s *AppState) Undo(ctx context.Context) (action domain.Action, ok bool) {
	return s.shift(ctx, "undo", func(h *domain.HistorySection) (*[]domain.Action, *[]domain.Action) {
		return &h.UndoStack, &h.RedoStack
	})
}

// Redo moves the most recent entry from the redo log back to the undo log and returns it.
func (s *AppState) Redo(ctx context.Context) (action domain.Action, ok bool) {
	return s.shift(ctx, "redo", func(h *domain.HistorySection) (*[]domain.Action, *[]domain.Action) {
		return &h.RedoStack, &h.UndoStack
	})
}

// shift pops from one stack and pushes onto the other as a single mutation.
func (s *AppState) shift(ctx context.Context, op string, stacks func(*domain.HistorySection) (from, to *[]domain.Action)) (domain.Action, bool) {
	var (
		moved      domain.Action
		undo, redo int
	)
	err := s.Mutate(ctx, "history:"+op, func(t *domain.Tree) error {
		from, to := stacks(&t.History)
		n := len(*from)
		if n == 0 {
			return errEmptyStack
		}
		moved = (*from)[n-1]
		*from = (*from)[:n-1:n-1]
		*to = append(*to, moved)
		undo, redo = len(t.History.UndoStack), len(t.History.RedoStack)
		return nil
	})
	if err != nil {
		return domain.Action{}, false
	}
	if s.hooks.OnHistory != nil {
		s.hooks.OnHistory(ctx, op, undo, redo)
	}
	return moved.Clone(), true
}

// CanUndo reports whether the undo log has entries.
func (s *AppState) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tree.History.UndoStack) > 0
}

// CanRedo reports whether the redo log has entries.
func (s *AppState) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tree.History.RedoStack) > 0
}

// History returns copies of both logs, oldest entry first.
func (s *AppState) History() (undo, redo []domain.Action) {
	tree := s.Snapshot()
	return tree.History.UndoStack, tree.History.RedoStack
}
