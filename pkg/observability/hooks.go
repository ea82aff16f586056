package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/isoscene/pkg/domain"
)

// LoggingHooks logs every state event at debug level, persistence failures at warn.
func LoggingHooks(logger *slog.Logger) domain.StateHooks {
	return domain.StateHooks{
		OnMutation: func(ctx context.Context, op string) {
			logger.DebugContext(ctx, "state_mutation", "op", op)
		},
		OnPersist: func(ctx context.Context, size int) {
			logger.DebugContext(ctx, "state_persist", "bytes", size)
		},
		OnPersistError: func(ctx context.Context, err error) {
			logger.WarnContext(ctx, "state_persist_failed", "err", err)
		},
		OnHistory: func(ctx context.Context, op string, undo, redo int) {
			logger.DebugContext(ctx, "history", "op", op, "undo_depth", undo, "redo_depth", redo)
		},
	}
}

// CombineHooks fans every event out to all hs, in order. Nil fields are skipped.
func CombineHooks(hs ...domain.StateHooks) domain.StateHooks {
	return domain.StateHooks{
		OnMutation: func(ctx context.Context, op string) {
			for _, h := range hs {
				if h.OnMutation != nil {
					h.OnMutation(ctx, op)
				}
			}
		},
		OnPersist: func(ctx context.Context, size int) {
			for _, h := range hs {
				if h.OnPersist != nil {
					h.OnPersist(ctx, size)
				}
			}
		},
		OnPersistError: func(ctx context.Context, err error) {
			for _, h := range hs {
				if h.OnPersistError != nil {
					h.OnPersistError(ctx, err)
				}
			}
		},
		OnHistory: func(ctx context.Context, op string, undo, redo int) {
			for _, h := range hs {
				if h.OnHistory != nil {
					h.OnHistory(ctx, op, undo, redo)
				}
			}
		},
	}
}
