// Package main provides the CLI entry point for bashclaw, a
// multi-channel AI agent runtime: a provider-neutral message protocol,
// a bounded iterative tool loop, an append-only JSONL session store,
// and a tool registry reachable both directly and through an MCP
// stdio bridge.
//
// # Basic usage
//
//	bashclaw serve --config bashclaw.json5
//	bashclaw run --agent main --text "summarize this session"
//	bashclaw mcp --config bashclaw.json5
//	bashclaw sessions list --state-dir ./state
//	bashclaw memory get --state-dir ./state notes
//
// # Environment variables
//
//   - ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY: provider credentials
//   - BASHCLAW_CONFIG: default config path
//   - BASHCLAW_STATE_DIR: default state directory root
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	root := buildRootCmd()
	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bashclaw",
		Short:        "bashclaw - multi-channel AI agent runtime",
		Long:         "bashclaw runs a provider-neutral agent loop over a bounded tool-use protocol, backed by an append-only JSONL session store.",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", os.Getenv("BASHCLAW_CONFIG"), "path to a JSON/JSON5 config file")
	root.PersistentFlags().String("state-dir", envOr("BASHCLAW_STATE_DIR", "./state"), "root directory for session logs, memory, and spawned job records")

	root.AddCommand(
		buildServeCmd(),
		buildRunCmd(),
		buildMCPCmd(),
		buildSessionsCmd(),
		buildMemoryCmd(),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
