package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/editor"
	"github.com/spf13/cobra"
)

var objectsCmd = &cobra.Command{
	Use:     "objects",
	Aliases: []string{"object", "obj"},
	Short:   "Manage the objects of a scene",
}

var objectsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List objects by id",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
			return printJSON(cmd.OutOrStdout(), e.Objects())
		})
	},
}

func parseVec(args []string) (domain.Vec3, error) {
	var xyz [3]float64
	for i, raw := range args {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Vec3{}, fmt.Errorf("invalid coordinate %q", raw)
		}
		xyz[i] = v
	}
	return domain.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

var objectsAddCmd = &cobra.Command{
	Use:   "add <kind> [x y z]",
	Short: "Add an object (cube, sphere, cylinder, ramp) to the current layer",
	Args:  cobra.RangeArgs(1, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parseVec(args[1:])
		if err != nil {
			return err
		}
		return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
			obj, err := e.AddObject(ctx, domain.Kind(args[0]), pos)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), obj)
		})
	},
}

var objectsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "object")
		if err != nil {
			return err
		}
		return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
			return e.DeleteObject(ctx, domain.ObjectID(id))
		})
	},
}

var objectsMoveCmd = &cobra.Command{
	Use:   "move <id> <dx> [dy dz]",
	Short: "Move an object by a delta, snapping to the grid when enabled",
	Args:  cobra.RangeArgs(2, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "object")
		if err != nil {
			return err
		}
		delta, err := parseVec(args[1:])
		if err != nil {
			return err
		}
		return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
			obj, err := e.MoveObject(ctx, domain.ObjectID(id), delta)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), obj)
		})
	},
}

var objectsLayerCmd = &cobra.Command{
	Use:   "layer <id> <layer-id>",
	Short: "Move an object onto another layer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "object")
		if err != nil {
			return err
		}
		layerID, err := parseID(args[1], "layer")
		if err != nil {
			return err
		}
		return withEditor(cmd, func(ctx context.Context, e *editor.Editor) error {
			if !e.MoveObjectToLayer(ctx, domain.ObjectID(id), layerID) {
				return fmt.Errorf("cannot move object %d to layer %d", id, layerID)
			}
			return nil
		})
	},
}

func init() {
	objectsCmd.AddCommand(objectsLsCmd, objectsAddCmd, objectsRmCmd, objectsMoveCmd, objectsLayerCmd)
	rootCmd.AddCommand(objectsCmd)
}
