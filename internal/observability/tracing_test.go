package observability

import (
	"context"
	"testing"
)

func TestGetTraceIDNoActiveSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Fatalf("expected empty trace id, got %q", id)
	}
}

func TestGetSpanIDNoActiveSpan(t *testing.T) {
	if id := GetSpanID(context.Background()); id != "" {
		t.Fatalf("expected empty span id, got %q", id)
	}
}
