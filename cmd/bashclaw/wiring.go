package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bashclaw/bashclaw/internal/agent"
	"github.com/bashclaw/bashclaw/internal/agent/providers"
	"github.com/bashclaw/bashclaw/internal/audit"
	"github.com/bashclaw/bashclaw/internal/catalog"
	"github.com/bashclaw/bashclaw/internal/config"
	croncore "github.com/bashclaw/bashclaw/internal/cron"
	"github.com/bashclaw/bashclaw/internal/jobs"
	"github.com/bashclaw/bashclaw/internal/session"
	"github.com/bashclaw/bashclaw/internal/tools/cron"
	execmgr "github.com/bashclaw/bashclaw/internal/tools/exec"
	"github.com/bashclaw/bashclaw/internal/tools/files"
	"github.com/bashclaw/bashclaw/internal/tools/introspect"
	"github.com/bashclaw/bashclaw/internal/tools/memory"
	"github.com/bashclaw/bashclaw/internal/tools/message"
	"github.com/bashclaw/bashclaw/internal/tools/policy"
	"github.com/bashclaw/bashclaw/internal/tools/spawn"
	"github.com/bashclaw/bashclaw/internal/tools/websearch"
)

// app bundles the wired dependencies every subcommand needs.
type app struct {
	Config   *config.Config
	Sessions *session.Store
	Runtime  *agent.Runtime
	Logger   *slog.Logger
	StateDir string
}

// buildApp loads config, constructs the tool registry described by
// SPEC_FULL.md's domain stack, and wires it into a Runtime. Every
// subcommand shares this so "bashclaw run" and "bashclaw mcp" see the
// exact same effective tool set as "bashclaw serve".
func buildApp(cmd *cobra.Command) (*app, error) {
	logger := slog.Default()

	configPath, _ := cmd.Flags().GetString("config")
	stateDir, _ := cmd.Flags().GetString("state-dir")
	if stateDir == "" {
		stateDir = "./state"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	for _, dir := range []string{stateDir, filepath.Join(stateDir, "sessions"), filepath.Join(stateDir, "memory"), filepath.Join(stateDir, "spawn"), filepath.Join(stateDir, "workspace")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	sessions := session.New(filepath.Join(stateDir, "sessions"), logger)
	cat := catalog.New()
	registry := agent.NewRegistry(logger)

	workspace := filepath.Join(stateDir, "workspace")
	filesCfg := files.Config{Workspace: workspace, MaxReadBytes: 1 << 20}
	execManager := execmgr.NewManager(workspace)
	scheduler := croncore.NewScheduler(shellExecutor{manager: execManager})
	scheduler.Start(context.Background())

	jobStore, err := jobs.NewFileStore(filepath.Join(stateDir, "spawn"))
	if err != nil {
		return nil, fmt.Errorf("opening job store: %w", err)
	}

	auditCfg := audit.DefaultConfig()
	auditCfg.Enabled = true
	auditCfg.Output = "stderr"
	auditCfg.IncludeToolInput = true
	auditCfg.IncludeToolOutput = true
	auditLogger, err := audit.NewLogger(auditCfg)
	if err != nil {
		return nil, fmt.Errorf("starting audit logger: %w", err)
	}

	providerFactory := agent.ProviderFactory(func(p catalog.Provider, apiKey string) agent.Provider {
		switch p.APIFormat {
		case catalog.FormatOpenAI:
			return providers.NewOpenAIProvider(p, apiKey)
		case catalog.FormatGoogle:
			return providers.NewGoogleProvider(p, apiKey)
		default:
			return providers.NewAnthropicProvider(p, apiKey)
		}
	})

	rt := &agent.Runtime{
		Catalog:   cat,
		Sessions:  sessions,
		Config:    cfg,
		Registry:  registry,
		Resolver:  policy.NewResolver(),
		Providers: providerFactory,
		LookupEnv: os.Getenv,
		MaxIters:  agent.DefaultMaxIters,
		Logger:    logger,
		Audit:     auditLogger,
	}

	registerTools(registry, cfg, sessions, filesCfg, execManager, scheduler, jobStore, stateDir, rt)

	return &app{Config: cfg, Sessions: sessions, Runtime: rt, Logger: logger, StateDir: stateDir}, nil
}

// registerTools builds and registers every tool named in SPEC_FULL.md's
// domain stack. A registration failure is only possible for a malformed
// schema, which would be a programmer error here, so it panics rather
// than threading an error through every Register call.
func registerTools(registry *agent.Registry, cfg *config.Config, sessions *session.Store, filesCfg files.Config, execManager *execmgr.Manager, scheduler *croncore.Scheduler, jobStore jobs.Store, stateDir string, rt *agent.Runtime) {
	must := func(t agent.Tool) {
		if err := registry.Register(t); err != nil {
			panic(fmt.Sprintf("registering tool %s: %v", t.Name(), err))
		}
	}

	must(files.NewReadTool(filesCfg))
	must(files.NewWriteTool(filesCfg))
	must(files.NewListTool(filesCfg))
	must(files.NewSearchTool(filesCfg))
	must(files.NewEditTool(filesCfg))
	must(files.NewApplyPatchTool(filesCfg))

	must(execmgr.NewExecTool("shell", execManager))
	must(execmgr.NewProcessTool(execManager))

	must(memory.New(filepath.Join(stateDir, "memory")))

	must(websearch.NewWebSearchTool(&websearch.Config{
		SearXNGURL:     os.Getenv("BASHCLAW_SEARXNG_URL"),
		BraveAPIKey:    os.Getenv("BRAVE_API_KEY"),
		DefaultBackend: websearch.BackendSearXNG,
	}))
	must(websearch.NewWebFetchTool(&websearch.FetchConfig{MaxChars: 20000}))

	must(cron.NewTool(scheduler))

	must(message.NewTool("message", map[string]message.Sender{
		"stdout": message.SenderFunc(func(ctx context.Context, target, text string) (string, error) {
			fmt.Fprintf(os.Stdout, "[message -> %s] %s\n", target, text)
			return uuid.NewString(), nil
		}),
	}))

	spawnRunner := spawn.RunnerFunc(func(ctx context.Context, agentID, task string) (string, error) {
		if agentID == "" {
			agentID = "main"
		}
		return rt.Run(ctx, agentID, task, "spawn", agentID)
	})
	must(spawn.NewSpawnTool(jobStore, spawnRunner, "main"))
	must(spawn.NewStatusTool(jobStore))

	must(introspect.NewAgentsListTool(cfg))
	must(introspect.NewSessionsListTool(sessions))
	must(introspect.NewSessionStatusTool(sessions))
	must(introspect.NewAgentMessageTool(cfg, sessions))
}

// shellExecutor adapts internal/tools/exec's Manager to croncore's
// Executor interface, so scheduled jobs run through the same sandboxed
// command path as the shell tool rather than a second exec.Command
// call site.
type shellExecutor struct {
	manager *execmgr.Manager
}

func (s shellExecutor) Run(ctx context.Context, command string) (string, error) {
	result, err := s.manager.RunCommand(ctx, command, "", nil, "", 2*time.Minute)
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return result.Stdout + result.Stderr, fmt.Errorf("command exited %d: %s", result.ExitCode, result.Stderr)
	}
	return result.Stdout, nil
}
