package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/isoscene/internal/presentation/tui"
	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/editor"
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Read and write the workspace state tree",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Summarise the scene",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
			out, err := tui.NewRenderer(os.Stdout)(tui.Summary(e))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		})
	},
}

var stateGetCmd = &cobra.Command{
	Use:   "get [path]",
	Short: "Print the tree, or the value at a dotted path",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
			if len(args) == 0 {
				return printJSON(cmd.OutOrStdout(), e.State().Snapshot())
			}
			v, ok := e.State().GetStateProperty(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrPathNotFound, args[0])
			}
			return printJSON(cmd.OutOrStdout(), v)
		})
	},
}

var stateSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set the value at a dotted path (JSON, or a bare string)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
			if err := e.State().SetStateProperty(ctx, args[0], parseValue(args[1])); err != nil {
				return err
			}
			v, _ := e.State().GetStateProperty(args[0])
			return printJSON(cmd.OutOrStdout(), v)
		})
	},
}

var stateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the state with defaults for a new session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
			e.State().Reset(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "State reset.")
			return nil
		})
	},
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the persisted state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
			e.State().Clear(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "State cleared.")
			return nil
		})
	},
}

func init() {
	stateCmd.AddCommand(stateShowCmd, stateGetCmd, stateSetCmd, stateResetCmd, stateClearCmd)
	rootCmd.AddCommand(stateCmd)
}
