package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// buildServeCmd runs an interactive read-eval loop against the wired
// runtime: one line of stdin per turn, echoed as agent "main" on the
// "cli" channel. Channel adapters (Telegram/Slack/etc.) are out of
// scope (spec.md Non-goals); this is the runtime's own front door.
func buildServeCmd() *cobra.Command {
	var agentID, sender string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the agent loop interactively over stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 64*1024), 1<<20)
			fmt.Fprintf(os.Stderr, "bashclaw serve: agent=%s, ctrl-d to exit\n", agentID)

			for scanner.Scan() {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				line := scanner.Text()
				if line == "" {
					continue
				}
				reply, err := a.Runtime.Run(ctx, agentID, line, "cli", sender)
				if err != nil {
					a.Logger.Error("turn failed", "error", err)
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					continue
				}
				fmt.Println(reply)
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&agentID, "agent", "main", "agent id to run")
	cmd.Flags().StringVar(&sender, "sender", "local", "sender identity for session scoping")
	return cmd
}

// buildRunCmd runs exactly one turn non-interactively, for scripting.
func buildRunCmd() *cobra.Command {
	var agentID, channel, sender, text string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single agent turn and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" {
				return fmt.Errorf("--text is required")
			}
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			reply, err := a.Runtime.Run(context.Background(), agentID, text, channel, sender)
			if err != nil {
				return err
			}
			fmt.Println(reply)
			return nil
		},
	}
	cmd.Flags().StringVar(&agentID, "agent", "main", "agent id to run")
	cmd.Flags().StringVar(&channel, "channel", "cli", "channel identity for session scoping")
	cmd.Flags().StringVar(&sender, "sender", "local", "sender identity for session scoping")
	cmd.Flags().StringVar(&text, "text", "", "user message text")
	return cmd
}
