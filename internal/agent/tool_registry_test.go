package agent

import (
	"context"
	"encoding/json"
	"testing"
)

type fakeTool struct {
	name     string
	schema   string
	optional bool
	bridge   bool
	fn       func(json.RawMessage) (*ToolResult, error)
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake tool" }
func (f *fakeTool) Schema() json.RawMessage {
	if f.schema == "" {
		return nil
	}
	return json.RawMessage(f.schema)
}
func (f *fakeTool) Optional() bool      { return f.optional }
func (f *fakeTool) BridgeExposed() bool { return f.bridge }
func (f *fakeTool) Execute(ctx context.Context, input json.RawMessage) (*ToolResult, error) {
	if f.fn != nil {
		return f.fn(input)
	}
	return &ToolResult{Content: "ok"}, nil
}

func TestRegisterCompilesSchemaAndValidates(t *testing.T) {
	r := NewRegistry(nil)
	tool := &fakeTool{name: "memory", schema: `{"type":"object","required":["action"],"properties":{"action":{"type":"string"}}}`}
	if err := r.Register(tool); err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := r.Execute(context.Background(), "memory", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected schema validation to reject missing required field")
	}

	res, err = r.Execute(context.Background(), "memory", json.RawMessage(`{"action":"get"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.IsError {
		t.Fatalf("expected valid input to pass, got error: %s", res.Content)
	}
}

func TestExecuteUnknownToolReturnsErrorResult(t *testing.T) {
	r := NewRegistry(nil)
	res, err := r.Execute(context.Background(), "nope", nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected error result for unknown tool")
	}
}

func TestExecuteRecoversPanic(t *testing.T) {
	r := NewRegistry(nil)
	tool := &fakeTool{name: "boom", fn: func(json.RawMessage) (*ToolResult, error) {
		panic("kaboom")
	}}
	_ = r.Register(tool)

	res, err := r.Execute(context.Background(), "boom", json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("expected panic to surface as an error")
	}
	if res != nil {
		t.Fatalf("expected nil result on panic, got %+v", res)
	}
}

func TestSpecsFiltersToNamedTools(t *testing.T) {
	r := NewRegistry(nil)
	_ = r.Register(&fakeTool{name: "a"})
	_ = r.Register(&fakeTool{name: "b"})

	specs := r.Specs([]string{"b", "missing"})
	if len(specs) != 1 || specs[0].Name != "b" {
		t.Fatalf("Specs = %+v", specs)
	}
}

func TestBridgeExposedFiltersFlag(t *testing.T) {
	r := NewRegistry(nil)
	_ = r.Register(&fakeTool{name: "hidden"})
	_ = r.Register(&fakeTool{name: "shown", bridge: true})

	exposed := r.BridgeExposed()
	if len(exposed) != 1 || exposed[0].Name() != "shown" {
		t.Fatalf("BridgeExposed = %+v", exposed)
	}
}
