package main

import (
	"context"
	"fmt"

	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/editor"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and step through the undo log",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
			undo, redo := e.State().History()
			return printJSON(cmd.OutOrStdout(), map[string][]domain.Action{"undo": undo, "redo": redo})
		})
	},
}

func historyStep(name, short string, step func(*editor.Editor) func(context.Context) (domain.Action, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
				action, ok := step(e)(ctx)
				if !ok {
					return fmt.Errorf("nothing to %s", name)
				}
				return printJSON(cmd.OutOrStdout(), action)
			})
		},
	}
}

func init() {
	historyCmd.AddCommand(
		historyStep("undo", "Move the newest history entry to the redo log", func(e *editor.Editor) func(context.Context) (domain.Action, bool) { return e.Undo }),
		historyStep("redo", "Move the newest redo entry back to the history", func(e *editor.Editor) func(context.Context) (domain.Action, bool) { return e.Redo }),
	)
	rootCmd.AddCommand(historyCmd)
}
