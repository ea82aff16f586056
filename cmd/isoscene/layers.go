package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/isoscene/pkg/editor"
	"github.com/spf13/cobra"
)

var layersCmd = &cobra.Command{
	Use:     "layers",
	Aliases: []string{"layer"},
	Short:   "Manage the layers of a scene",
}

func printLayers(cmd *cobra.Command, e *editor.Editor) {
	current := e.CurrentLayerID()
	for _, l := range e.Layers() {
		marker := " "
		if l.ID == current {
			marker = "*"
		}
		visible := "visible"
		if !l.Visible {
			visible = "hidden"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d\t%s\t%s\t%d objects\n", marker, l.ID, l.Name, visible, len(l.Objects))
	}
}

var layersLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List layers in render order (* marks the current layer)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
			printLayers(cmd, e)
			return nil
		})
	},
}

var layersAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Append a layer and make it current",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
			l := e.AddLayer(ctx, strings.Join(args, ""))
			fmt.Fprintf(cmd.OutOrStdout(), "Added layer %d (%s)\n", l.ID, l.Name)
			return nil
		})
	},
}

// layerOp builds a command that applies op to one layer id.
func layerOp(use, short string, op func(ctx context.Context, e *editor.Editor, id int, args []string) bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "layer")
			if err != nil {
				return err
			}
			return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
				if !op(ctx, e, id, args[1:]) {
					return fmt.Errorf("%s: rejected for layer %d", cmd.Name(), id)
				}
				printLayers(cmd, e)
				return nil
			})
		},
	}
}

func init() {
	layersCmd.AddCommand(
		layersLsCmd,
		layersAddCmd,
		layerOp("rm <id>", "Remove a layer and its objects", func(ctx context.Context, e *editor.Editor, id int, _ []string) bool {
			return e.RemoveLayer(ctx, id)
		}),
		layerOp("rename <id> <name>", "Rename a layer", func(ctx context.Context, e *editor.Editor, id int, rest []string) bool {
			return len(rest) > 0 && e.RenameLayer(ctx, id, strings.Join(rest, " "))
		}),
		layerOp("up <id>", "Move a layer one position towards the front", func(ctx context.Context, e *editor.Editor, id int, _ []string) bool {
			return e.MoveLayerUp(ctx, id)
		}),
		layerOp("down <id>", "Move a layer one position towards the back", func(ctx context.Context, e *editor.Editor, id int, _ []string) bool {
			return e.MoveLayerDown(ctx, id)
		}),
		layerOp("toggle <id>", "Toggle layer visibility", func(ctx context.Context, e *editor.Editor, id int, _ []string) bool {
			_, ok := e.ToggleLayerVisibility(ctx, id)
			return ok
		}),
		layerOp("use <id>", "Make a layer current", func(ctx context.Context, e *editor.Editor, id int, _ []string) bool {
			return e.SetCurrentLayer(ctx, id)
		}),
	)
	rootCmd.AddCommand(layersCmd)
}
