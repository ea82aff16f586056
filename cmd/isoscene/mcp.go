package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/isoscene/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes workspaces as MCP tools so agents can inspect and edit scenes.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		srv := mcp.NewServer(a.mgr, mcp.WithLogger(a.logger))

		switch transport {
		case "stdio":
			a.logger.Info("Starting isoscene MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ServeSSE(ctx, port)
		}
		return fmt.Errorf("unknown transport %q (use stdio or sse)", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport to use: stdio or sse")
	mcpCmd.Flags().IntP("port", "p", 8081, "Port for the SSE transport")
}
