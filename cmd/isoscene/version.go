package main

import (
	"fmt"

	"github.com/aretw0/isoscene"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of isoscene",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "isoscene version %s\n", isoscene.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
