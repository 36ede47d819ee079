package catalog

import "testing"

func TestUnknownModelSafeDefaults(t *testing.T) {
	c := New()
	m := c.Model("some-brand-new-model")
	if !m.SupportsTools || m.SupportsVision {
		t.Fatalf("unknown model defaults = %+v, want tools=true vision=false", m)
	}
}

func TestResolveProviderAnthropicOverride(t *testing.T) {
	c := New()
	env := map[string]string{"ANTHROPIC_BASE_URL": "https://proxy.internal"}
	p, ok := c.ResolveProvider("claude-sonnet-4-6", func(k string) string { return env[k] })
	if !ok {
		t.Fatal("expected provider resolution to succeed")
	}
	if p.BaseURL != "https://proxy.internal" {
		t.Fatalf("BaseURL = %q, want override applied", p.BaseURL)
	}
}

func TestResolveProviderNoOverrideForOpenAI(t *testing.T) {
	c := New()
	env := map[string]string{"ANTHROPIC_BASE_URL": "https://proxy.internal"}
	p, ok := c.ResolveProvider("gpt-5", func(k string) string { return env[k] })
	if !ok {
		t.Fatal("expected provider resolution to succeed")
	}
	if p.BaseURL == "https://proxy.internal" {
		t.Fatalf("override should not apply to non-anthropic provider")
	}
}
