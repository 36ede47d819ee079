package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bashclaw/bashclaw/internal/audit"
	"github.com/bashclaw/bashclaw/internal/catalog"
	"github.com/bashclaw/bashclaw/internal/config"
	"github.com/bashclaw/bashclaw/internal/session"
	"github.com/bashclaw/bashclaw/internal/tools/policy"
	"github.com/bashclaw/bashclaw/pkg/models"
)

// DefaultMaxIters is the model-call budget used when Runtime.MaxIters is
// zero or negative; a MaxIters of 1 allows only one model call before
// FINALIZE.
const DefaultMaxIters = 10

// DefaultToolResultCap truncates tool_result content at this many bytes
// (§4.5 step 6), appending a truncation marker.
const DefaultToolResultCap = 16 * 1024

// ProviderFactory builds a Provider for a resolved catalog provider and
// its credential. Runtime takes this as a dependency instead of
// importing internal/agent/providers directly, since that package
// imports agent for the Provider/Tool contracts.
type ProviderFactory func(p catalog.Provider, apiKey string) Provider

// ExternalEngine runs one turn against an external CLI-driven engine
// (claude, codex) per §4.5.1.
type ExternalEngine interface {
	Run(ctx context.Context, engine, agentID, userText, resumeID string) (result ExternalResult, err error)
}

// ExternalResult is what an external engine invocation yields.
type ExternalResult struct {
	Text      string
	SessionID string
	IsError   bool
	Usage     models.Usage
}

// Runtime is the agent runtime (§4.5): it owns no state itself beyond
// its dependencies, so one Runtime serves every agent/session.
type Runtime struct {
	Catalog   *catalog.Catalog
	Sessions  *session.Store
	Config    *config.Config
	Registry  *Registry
	Resolver  *policy.Resolver
	Providers ProviderFactory
	External  ExternalEngine
	LookupEnv func(string) string
	MaxIters  int
	Logger    *slog.Logger

	// Audit records every tool invocation to a structured, append-only
	// log (§13 SUPPLEMENTED). Nil disables audit logging entirely.
	Audit *audit.Logger

	sessionLocksMu sync.Mutex
	sessionLocks   map[string]*turnLock
}

// turnLock is a refcounted mutex keyed by session path, the same
// pattern session.Store uses per-operation (internal/session/store.go),
// scoped instead to a whole turn: PREPARE through FINALIZE must run as
// one critical section per session (§4.5's scheduling model), not one
// per file operation.
type turnLock struct {
	mu   sync.Mutex
	refs int
}

func (r *Runtime) lockSession(path string) func() {
	r.sessionLocksMu.Lock()
	if r.sessionLocks == nil {
		r.sessionLocks = map[string]*turnLock{}
	}
	l := r.sessionLocks[path]
	if l == nil {
		l = &turnLock{}
		r.sessionLocks[path] = l
	}
	l.refs++
	r.sessionLocksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		r.sessionLocksMu.Lock()
		l.refs--
		if l.refs <= 0 {
			delete(r.sessionLocks, path)
		}
		r.sessionLocksMu.Unlock()
	}
}

func (r *Runtime) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runtime) maxIters() int {
	if r.MaxIters > 0 {
		return r.MaxIters
	}
	return DefaultMaxIters
}

func (r *Runtime) lookupEnv(key string) string {
	if r.LookupEnv != nil {
		return r.LookupEnv(key)
	}
	return ""
}

// Run executes one full turn of the tool loop (§4.5) and returns the
// final assistant text. It never returns an error to the caller for
// provider or tool failures -- those are folded into the assistant text
// per §7's error contract; Run's own error return is reserved for
// setup failures the caller cannot recover a reply from (e.g. no
// session root configured).
func (r *Runtime) Run(ctx context.Context, agentID, userText, channel, sender string) (string, error) {
	// 1. INIT
	agentCfg := r.Config.Resolve(agentID)
	engine := agentCfg.Engine
	if engine == "" {
		engine = "builtin"
	}
	if engine != "builtin" && engine != "auto" {
		return r.runExternal(ctx, engine, agentID, userText)
	}

	// 2. PREPARE
	scope := r.Config.Session.Scope
	path := session.Path(r.Sessions.Root(), agentID, channel, sender, scope)
	unlock := r.lockSession(path)
	defer unlock()

	if _, err := r.Sessions.CheckIdleReset(path, r.Config.Session.IdleResetMinutes); err != nil {
		r.logger().Warn("idle reset check failed", "path", path, "error", err)
	}

	now := time.Now().UnixMilli()
	userText = r.stripUnsupportedVision(agentCfg, userText)
	if err := r.Sessions.Append(path, models.NewUserEntry(userText, now)); err != nil {
		return "", fmt.Errorf("agent: appending user entry: %w", err)
	}

	history, err := r.Sessions.Load(path, r.Config.Session.MaxHistory)
	if err != nil {
		return "", fmt.Errorf("agent: loading history: %w", err)
	}
	messages := session.ProjectMessages(history)

	toolNames := r.effectiveTools(agentCfg)
	toolSpecs := r.Registry.Specs(toolNames)

	modelID := agentCfg.Model
	if modelID == "" {
		modelID = r.Config.Agents.Defaults.Model
	}
	if v := r.lookupEnv("MODEL_ID"); v != "" {
		modelID = v
	}

	systemPrompt := agentCfg.SystemPrompt

	provider, err := r.resolveProvider(modelID)
	if err != nil {
		text := fmt.Sprintf("provider error: %v", err)
		_ = r.Sessions.Append(path, models.NewAssistantEntry(text, time.Now().UnixMilli()))
		return text, nil
	}

	maxTokens := agentCfg.MaxTokens
	temperature := 1.0
	if agentCfg.Temperature != nil {
		temperature = *agentCfg.Temperature
	}

	// 3-7. CALL_MODEL / DISPATCH_TOOLS loop
	for iter := 0; ; iter++ {
		if r.Audit != nil {
			r.Audit.LogRuntimeEvent(ctx, path, &models.RuntimeEvent{Type: models.EventIterationStart, Iteration: iter})
		}
		req := CompletionRequest{
			Model:       modelID,
			System:      systemPrompt,
			Messages:    messages,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			Tools:       toolSpecs,
		}

		resp, err := provider.Complete(ctx, req)
		if err != nil {
			text := fmt.Sprintf("provider error: %v", err)
			_ = r.Sessions.Append(path, models.NewAssistantEntry(text, time.Now().UnixMilli()))
			return r.finalize(path, agentCfg, text)
		}

		assistantText := resp.Text()
		_ = r.Sessions.Append(path, models.NewAssistantEntry(assistantText, time.Now().UnixMilli()))
		toolUses := resp.ToolUses()
		for _, tu := range toolUses {
			_ = r.Sessions.Append(path, models.NewToolCallEntry(tu.ID, tu.Name, tu.Input, time.Now().UnixMilli()))
		}

		if resp.StopReason == models.StopEndTurn || resp.StopReason == models.StopMaxTokens {
			return r.finalize(path, agentCfg, assistantText)
		}
		if iter+1 >= r.maxIters() {
			budgetText := "tool-loop budget exhausted"
			_ = r.Sessions.Append(path, models.NewAssistantEntry(budgetText, time.Now().UnixMilli()))
			return r.finalize(path, agentCfg, budgetText)
		}
		if resp.StopReason != models.StopToolUse {
			return r.finalize(path, agentCfg, assistantText)
		}

		// 6. DISPATCH_TOOLS
		effective := make(map[string]bool, len(toolNames))
		for _, n := range toolNames {
			effective[n] = true
		}
		for _, tu := range toolUses {
			if r.Audit != nil {
				r.Audit.LogRuntimeEvent(ctx, path, models.NewToolEvent(models.EventToolQueued, tu.Name, tu.ID))
			}
			result := r.dispatchTool(ctx, effective, tu, path)
			_ = r.Sessions.Append(path, models.NewToolResultEntry(tu.ID, result.Content, result.IsError, time.Now().UnixMilli()))
			if r.Audit != nil {
				doneType := models.EventToolCompleted
				if result.IsError {
					doneType = models.EventToolFailed
				}
				r.Audit.LogRuntimeEvent(ctx, path, models.NewToolEvent(doneType, tu.Name, tu.ID))
			}
		}

		if r.Audit != nil {
			r.Audit.LogRuntimeEvent(ctx, path, &models.RuntimeEvent{Type: models.EventIterationEnd, Iteration: iter})
		}

		// 7. next user-role message (all tool_result blocks, order
		// preserved), loop to CALL_MODEL. Reloading and re-projecting
		// naturally merges the tool_call/tool_result entries just
		// appended into one user-role message (session.ProjectMessages).
		messages = session.ProjectMessages(mustReload(r, path))
	}
}

func mustReload(r *Runtime, path string) []models.Entry {
	entries, err := r.Sessions.Load(path, r.Config.Session.MaxHistory)
	if err != nil {
		return nil
	}
	return entries
}

// dispatchTool validates and executes one tool_use block, truncating
// its result content to DefaultToolResultCap. sessionKey correlates the
// audit trail (§13) with the session that requested the call.
func (r *Runtime) dispatchTool(ctx context.Context, effective map[string]bool, tu models.Block, sessionKey string) *ToolResult {
	if !effective[tu.Name] {
		if r.Audit != nil {
			r.Audit.LogToolDenied(ctx, tu.Name, tu.ID, "not in effective tool set", "", sessionKey)
		}
		return &ToolResult{Content: fmt.Sprintf("tool %q is not in the agent's effective tool set", tu.Name), IsError: true}
	}

	if r.Audit != nil {
		r.Audit.LogToolInvocation(ctx, tu.Name, tu.ID, tu.Input, sessionKey)
		r.Audit.LogRuntimeEvent(ctx, sessionKey, models.NewToolEvent(models.EventToolStarted, tu.Name, tu.ID))
	}
	start := time.Now()
	res, err := r.Registry.Execute(ctx, tu.Name, tu.Input)
	if err != nil {
		res = &ToolResult{Content: err.Error(), IsError: true}
	} else if res == nil {
		res = &ToolResult{Content: "tool produced no result", IsError: true}
	}
	res = truncateResult(res)
	if r.Audit != nil {
		r.Audit.LogToolCompletion(ctx, tu.Name, tu.ID, !res.IsError, res.Content, time.Since(start), sessionKey)
	}
	return res
}

func truncateResult(res *ToolResult) *ToolResult {
	if len(res.Content) <= DefaultToolResultCap {
		return res
	}
	marker := "\n...[truncated]"
	cut := DefaultToolResultCap - len(marker)
	if cut < 0 {
		cut = 0
	}
	return &ToolResult{Content: res.Content[:cut] + marker, IsError: res.IsError}
}

// effectiveTools computes spec §4.3's set algebra for one resolved
// agent config.
func (r *Runtime) effectiveTools(agentCfg config.AgentConfig) []string {
	pol := &policy.Policy{Profile: policy.Profile(agentCfg.Profile), Allow: agentCfg.ToolAllow, Deny: agentCfg.ToolDeny}
	if pol.Profile == "" {
		pol.Profile = policy.ProfileFull
	}

	all := r.Registry.All()
	infos := make([]policy.ToolInfo, 0, len(all))
	unavailable := map[string]bool{}
	for _, t := range all {
		infos = append(infos, policy.ToolInfo{Name: t.Name(), Optional: t.Optional()})
		if u, ok := t.(interface{ Unavailable() bool }); ok && u.Unavailable() {
			unavailable[t.Name()] = true
		}
	}
	return r.Resolver.Effective(pol, infos, unavailable)
}

func (r *Runtime) resolveProvider(modelID string) (Provider, error) {
	cp, ok := r.Catalog.ResolveProvider(modelID, r.lookupEnv)
	if !ok {
		return nil, fmt.Errorf("no provider resolves model %q", modelID)
	}
	apiKey := r.lookupEnv(cp.APIKeyEnv)
	if r.Providers == nil {
		return nil, fmt.Errorf("no provider factory configured")
	}
	return r.Providers(cp, apiKey), nil
}

func (r *Runtime) finalize(path string, agentCfg config.AgentConfig, text string) (string, error) {
	if err := r.Sessions.Prune(path, r.Config.Session.MaxHistory); err != nil {
		r.logger().Warn("session prune failed", "path", path, "error", err)
	}
	return text, nil
}

// stripUnsupportedVision returns userText unchanged. Run takes plain
// text only, so no image blocks reach it; nothing is stripped and no
// omission note is added, whatever the model's vision support.
func (r *Runtime) stripUnsupportedVision(agentCfg config.AgentConfig, userText string) string {
	return userText
}

func (r *Runtime) runExternal(ctx context.Context, engine, agentID, userText string) (string, error) {
	if r.External == nil {
		return "", fmt.Errorf("agent: engine %q configured but no external engine runner set", engine)
	}
	res, err := r.External.Run(ctx, engine, agentID, userText, "")
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
