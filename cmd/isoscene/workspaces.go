package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var workspacesCmd = &cobra.Command{
	Use:     "workspaces",
	Aliases: []string{"ws"},
	Short:   "Manage persisted workspaces",
}

var workspacesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List workspaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.mgr.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No workspaces found.")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), "- "+id)
		}
		return nil
	},
}

var workspacesRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Remove workspaces and their saved scenes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var failed bool
		for _, id := range args {
			if err := a.mgr.Drop(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
				failed = true
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed workspace '%s'\n", id)
		}
		if failed {
			return fmt.Errorf("some workspaces could not be removed")
		}
		return nil
	},
}

func init() {
	workspacesCmd.AddCommand(workspacesLsCmd, workspacesRmCmd)
	rootCmd.AddCommand(workspacesCmd)
}
