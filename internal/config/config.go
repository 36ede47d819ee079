// Package config loads the bashclaw configuration file: a JSON (or
// JSON5-with-comments) document describing per-agent defaults and
// session policy, with $VAR environment expansion applied before
// parsing.
package config

// Config is the root configuration document (§6).
type Config struct {
	Agents  AgentsConfig  `json:"agents"`
	Session SessionConfig `json:"session"`
}

// AgentsConfig holds the default agent shape plus any per-agent
// overrides, keyed by agent_id.
type AgentsConfig struct {
	Defaults AgentConfig            `json:"defaults"`
	ByID     map[string]AgentConfig `json:"-"`
}

// AgentConfig is one agent's configuration. Fields left zero-valued are
// resolved from AgentsConfig.Defaults by Resolve.
type AgentConfig struct {
	Model        string   `json:"model,omitempty"`
	SystemPrompt string   `json:"systemPrompt,omitempty"`
	MaxTokens    int      `json:"maxTokens,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	Tools        []string `json:"tools,omitempty"`
	Engine       string   `json:"engine,omitempty"`
	Profile      string   `json:"profile,omitempty"`
	ToolAllow    []string `json:"toolAllow,omitempty"`
	ToolDeny     []string `json:"toolDeny,omitempty"`
}

// Scope is the session partitioning strategy.
type Scope string

const (
	ScopePerSender  Scope = "per-sender"
	ScopePerChannel Scope = "per-channel"
	ScopeGlobal     Scope = "global"
)

// SessionConfig controls session scoping, history truncation and
// idle-reset behavior (§4.4).
type SessionConfig struct {
	Scope            Scope `json:"scope"`
	MaxHistory       int   `json:"maxHistory"`
	IdleResetMinutes int   `json:"idleResetMinutes"`
}

// Default returns the built-in configuration used when no config file is
// supplied: agent "main" with a builtin engine, per-sender sessions, and
// no idle reset.
func Default() *Config {
	return &Config{
		Agents: AgentsConfig{
			Defaults: AgentConfig{
				Engine:     "builtin",
				MaxTokens:  4096,
				Profile:    "full",
				ToolAllow:  nil,
				ToolDeny:   nil,
			},
			ByID: map[string]AgentConfig{},
		},
		Session: SessionConfig{
			Scope:            ScopePerSender,
			MaxHistory:       200,
			IdleResetMinutes: 0,
		},
	}
}

// Resolve merges an agent's own config on top of the defaults. Unknown
// agent ids fall back to "main", and "main" itself falls back to
// Defaults, per spec §3.
func (c *Config) Resolve(agentID string) AgentConfig {
	base := c.Agents.Defaults
	agent, ok := c.Agents.ByID[agentID]
	if !ok {
		agent, ok = c.Agents.ByID["main"]
		if !ok {
			return base
		}
	}
	return mergeAgent(base, agent)
}

func mergeAgent(base, override AgentConfig) AgentConfig {
	out := base
	if override.Model != "" {
		out.Model = override.Model
	}
	if override.SystemPrompt != "" {
		out.SystemPrompt = override.SystemPrompt
	}
	if override.MaxTokens != 0 {
		out.MaxTokens = override.MaxTokens
	}
	if override.Temperature != nil {
		out.Temperature = override.Temperature
	}
	if override.Tools != nil {
		out.Tools = override.Tools
	}
	if override.Engine != "" {
		out.Engine = override.Engine
	}
	if override.Profile != "" {
		out.Profile = override.Profile
	}
	if override.ToolAllow != nil {
		out.ToolAllow = override.ToolAllow
	}
	if override.ToolDeny != nil {
		out.ToolDeny = override.ToolDeny
	}
	return out
}
