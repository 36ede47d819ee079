package main

import (
	"os"

	"github.com/spf13/cobra"

	bcmcp "github.com/bashclaw/bashclaw/internal/mcp"
)

// buildMCPCmd exposes the wired tool registry over stdio via the MCP
// bridge (spec §4.6): the process's stdin/stdout become the NDJSON
// JSON-RPC transport, so this subcommand is meant to be launched by an
// MCP client, not a human at a terminal.
func buildMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the tool registry over stdio as an MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			server := bcmcp.NewServer(a.Runtime.Registry, a.Logger)
			return server.Serve(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
}
