package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// buildSessionsCmd exposes the session store as an operator CLI, the
// same surface the sessions_list/session_status tools give the model.
func buildSessionsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect session logs",
	}
	root.AddCommand(buildSessionsListCmd(), buildSessionsShowCmd(), buildSessionsClearCmd())
	return root
}

func buildSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known session files",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			infos, err := a.Sessions.List()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(infos)
		},
	}
}

func buildSessionsShowCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Print the last n entries of a session file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			entries, err := a.Sessions.Load(args[0], n)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		},
	}
	cmd.Flags().IntVar(&n, "last", 0, "only show the last n entries (0 = all)")
	return cmd
}

func buildSessionsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <path>",
		Short: "Truncate a session file to zero entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			if err := a.Sessions.Clear(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cleared", args[0])
			return nil
		},
	}
}
