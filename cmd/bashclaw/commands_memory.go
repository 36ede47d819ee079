package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bashclaw/bashclaw/internal/tools/memory"
)

// buildMemoryCmd is a thin operator CLI over the memory tool, for
// inspecting or seeding an agent's stored facts without going through
// a model turn.
func buildMemoryCmd() *cobra.Command {
	root := &cobra.Command{Use: "memory", Short: "Inspect the memory tool's key/value store"}
	root.AddCommand(
		buildMemoryActionCmd("get", "Print a stored value"),
		buildMemoryActionCmd("delete", "Delete a stored key"),
		buildMemoryActionCmd("list", "List all stored keys"),
	)
	root.AddCommand(buildMemorySetCmd())
	root.AddCommand(buildMemorySearchCmd())
	return root
}

func openMemoryTool(cmd *cobra.Command) (*memory.Tool, error) {
	stateDir, _ := cmd.Flags().GetString("state-dir")
	if stateDir == "" {
		stateDir = "./state"
	}
	return memory.New(filepath.Join(stateDir, "memory")), nil
}

func buildMemoryActionCmd(action, short string) *cobra.Command {
	use := action
	if action != "list" {
		use = action + " <key>"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args: func(c *cobra.Command, args []string) error {
			if action == "list" {
				return cobra.NoArgs(c, args)
			}
			return cobra.ExactArgs(1)(c, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, err := openMemoryTool(cmd)
			if err != nil {
				return err
			}
			input := map[string]string{"action": action}
			if len(args) == 1 {
				input["key"] = args[0]
			}
			return runMemoryTool(cmd, tool, input)
		},
	}
	return cmd
}

func buildMemorySetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <json-value>",
		Short: "Store a value under a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, err := openMemoryTool(cmd)
			if err != nil {
				return err
			}
			params, err := json.Marshal(map[string]json.RawMessage{
				"action": json.RawMessage(`"set"`),
				"key":    mustJSONString(args[0]),
				"value":  json.RawMessage(args[1]),
			})
			if err != nil {
				return err
			}
			result, err := tool.Execute(context.Background(), params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Content)
			return nil
		},
	}
}

func buildMemorySearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored values by substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, err := openMemoryTool(cmd)
			if err != nil {
				return err
			}
			return runMemoryTool(cmd, tool, map[string]string{"action": "search", "query": args[0]})
		},
	}
}

func runMemoryTool(cmd *cobra.Command, tool *memory.Tool, input map[string]string) error {
	params, err := json.Marshal(input)
	if err != nil {
		return err
	}
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Content)
	return nil
}

func mustJSONString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
