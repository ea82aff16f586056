package main

import (
	"context"
	"fmt"

	"github.com/aretw0/isoscene/pkg/editor"
	"github.com/spf13/cobra"
)

var scenesCmd = &cobra.Command{
	Use:   "scenes",
	Short: "Save and open named scenes in the workspace",
}

var scenesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List saved scenes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
			names, err := e.ListScenes(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved scenes.")
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), "- "+n)
			}
			return nil
		})
	},
}

func sceneOp(use, short, done string, op func(e *editor.Editor, ctx context.Context, name string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
				if err := op(e, ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s '%s'\n", done, args[0])
				return nil
			})
		},
	}
}

func init() {
	scenesCmd.AddCommand(
		scenesLsCmd,
		sceneOp("save <name>", "Save the current scene", "Saved", (*editor.Editor).SaveScene),
		sceneOp("open <name>", "Replace the current scene with a saved one", "Opened", (*editor.Editor).OpenScene),
		sceneOp("rm <name>", "Delete a saved scene", "Removed", (*editor.Editor).DeleteScene),
	)
	rootCmd.AddCommand(scenesCmd)
}
