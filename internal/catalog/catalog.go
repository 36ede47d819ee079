// Package catalog holds the static, data-only description of LLM
// providers and models: wire format, default base URL, credential env
// var, and per-model capability flags. Nothing here does I/O; adapters
// and the agent runtime consult it to resolve behavior from data rather
// than branching on provider name.
package catalog

import "strings"

// APIFormat identifies which of the three wire encodings a provider uses.
type APIFormat string

const (
	FormatAnthropic APIFormat = "anthropic"
	FormatOpenAI    APIFormat = "openai"
	FormatGoogle    APIFormat = "google"
)

// Provider is the static description of one LLM backend.
type Provider struct {
	ID         string
	APIFormat  APIFormat
	BaseURL    string
	APIKeyEnv  string
	APIVersion string // anthropic only; empty otherwise
}

// Model is the static description of one model offered by a Provider.
type Model struct {
	ID             string
	ProviderID     string
	ContextWindow  int
	MaxOutput      int
	SupportsTools  bool
	SupportsVision bool
	Streaming      bool
	Reasoning      bool
}

// unknownModelDefaults is the safe capability set returned for any
// model_id the catalog has never heard of, per spec: tools=true,
// vision=false.
var unknownModelDefaults = Model{
	SupportsTools:  true,
	SupportsVision: false,
	MaxOutput:      4096,
	ContextWindow:  128000,
}

// Catalog is the immutable, process-wide provider/model table.
type Catalog struct {
	providers map[string]Provider
	models    map[string]Model
}

// New builds a Catalog from the built-in provider/model table. It never
// fails: providers with an unset API key are still registered, since
// credential availability is a tool-visibility concern (§4.3), not a
// catalog concern.
func New() *Catalog {
	c := &Catalog{
		providers: map[string]Provider{},
		models:    map[string]Model{},
	}
	for _, p := range builtinProviders {
		c.providers[p.ID] = p
	}
	for _, m := range builtinModels {
		c.models[m.ID] = m
	}
	return c
}

var builtinProviders = []Provider{
	{ID: "anthropic", APIFormat: FormatAnthropic, BaseURL: "https://api.anthropic.com", APIKeyEnv: "ANTHROPIC_API_KEY", APIVersion: "2023-06-01"},
	{ID: "openai", APIFormat: FormatOpenAI, BaseURL: "https://api.openai.com/v1", APIKeyEnv: "OPENAI_API_KEY"},
	{ID: "google", APIFormat: FormatGoogle, BaseURL: "https://generativelanguage.googleapis.com/v1beta", APIKeyEnv: "GEMINI_API_KEY"},
	{ID: "deepseek", APIFormat: FormatOpenAI, BaseURL: "https://api.deepseek.com/v1", APIKeyEnv: "DEEPSEEK_API_KEY"},
	{ID: "xiaomi", APIFormat: FormatOpenAI, BaseURL: "https://api.xiaomi.com/v1", APIKeyEnv: "XIAOMI_API_KEY"},
}

var builtinModels = []Model{
	{ID: "claude-opus-4-1-20250805", ProviderID: "anthropic", ContextWindow: 200000, MaxOutput: 8192, SupportsTools: true, SupportsVision: true},
	{ID: "claude-sonnet-4-20250514", ProviderID: "anthropic", ContextWindow: 200000, MaxOutput: 8192, SupportsTools: true, SupportsVision: true},
	{ID: "gpt-5", ProviderID: "openai", ContextWindow: 400000, MaxOutput: 16384, SupportsTools: true, SupportsVision: true, Reasoning: true},
	{ID: "gpt-5-mini", ProviderID: "openai", ContextWindow: 400000, MaxOutput: 16384, SupportsTools: true, SupportsVision: true},
	{ID: "gemini-2.5-pro", ProviderID: "google", ContextWindow: 1000000, MaxOutput: 8192, SupportsTools: true, SupportsVision: true},
	{ID: "gemini-2.5-flash", ProviderID: "google", ContextWindow: 1000000, MaxOutput: 8192, SupportsTools: true, SupportsVision: true},
	{ID: "deepseek-chat", ProviderID: "deepseek", ContextWindow: 64000, MaxOutput: 8192, SupportsTools: true},
}

// Provider returns the provider record for id, and whether it is known.
func (c *Catalog) Provider(id string) (Provider, bool) {
	p, ok := c.providers[id]
	return p, ok
}

// Model returns the model record for id. Unknown ids resolve to
// unknownModelDefaults with ID and ProviderID left as given, so the
// resolved provider (guessed from the id's registered provider, if any)
// is still consulted by ResolveProvider.
func (c *Catalog) Model(id string) Model {
	if m, ok := c.models[id]; ok {
		return m
	}
	m := unknownModelDefaults
	m.ID = id
	return m
}

// ResolveProvider returns the Provider that serves modelID, applying the
// ANTHROPIC_BASE_URL proxy override (§4.2) when the resolved provider's
// api_format is anthropic.
func (c *Catalog) ResolveProvider(modelID string, lookupEnv func(string) string) (Provider, bool) {
	m, ok := c.models[modelID]
	if !ok {
		// Unknown models with a recognizable "provider/model" prefix
		// resolve to that provider; otherwise fall back to anthropic
		// so the tool loop still has somewhere to send the request.
		if idx := strings.IndexByte(modelID, '/'); idx > 0 {
			if p, ok := c.providers[modelID[:idx]]; ok {
				return applyOverride(p, lookupEnv), true
			}
		}
		p, ok := c.providers["anthropic"]
		return applyOverride(p, lookupEnv), ok
	}
	p, ok := c.providers[m.ProviderID]
	if !ok {
		return Provider{}, false
	}
	return applyOverride(p, lookupEnv), true
}

func applyOverride(p Provider, lookupEnv func(string) string) Provider {
	if lookupEnv == nil || p.APIFormat != FormatAnthropic {
		return p
	}
	if v := lookupEnv("ANTHROPIC_BASE_URL"); v != "" {
		p.BaseURL = v
	}
	return p
}
