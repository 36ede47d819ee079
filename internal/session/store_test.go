package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bashclaw/bashclaw/internal/config"
	"github.com/bashclaw/bashclaw/pkg/models"
)

func TestPathScopes(t *testing.T) {
	cases := []struct {
		scope config.Scope
		want  string
	}{
		{config.ScopePerSender, filepath.Join("root", "main", "web", "alice.jsonl")},
		{config.ScopePerChannel, filepath.Join("root", "main", "web.jsonl")},
		{config.ScopeGlobal, filepath.Join("root", "main.jsonl")},
	}
	for _, c := range cases {
		got := Path("root", "main", "web", "alice", c.scope)
		if got != c.want {
			t.Errorf("Path(%s) = %q, want %q", c.scope, got, c.want)
		}
	}
}

func TestAppendLoadLastEntry(t *testing.T) {
	s := New(t.TempDir(), nil)
	path := filepath.Join(s.Root(), "main.jsonl")

	x := models.NewUserEntry("hello", 1000)
	if err := s.Append(path, x); err != nil {
		t.Fatalf("Append: %v", err)
	}
	entries, err := s.Load(path, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 1 || entries[len(entries)-1].Content != "hello" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestClearThenLoadEmptyIdempotent(t *testing.T) {
	s := New(t.TempDir(), nil)
	path := filepath.Join(s.Root(), "main.jsonl")
	_ = s.Append(path, models.NewUserEntry("hi", 1))

	if err := s.Clear(path); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, _ := s.Load(path, 0)
	if len(entries) != 0 {
		t.Fatalf("entries after clear = %+v", entries)
	}
	if err := s.Clear(path); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestPruneKeepsLastKAndOrder(t *testing.T) {
	s := New(t.TempDir(), nil)
	path := filepath.Join(s.Root(), "main.jsonl")
	for i := 0; i < 5; i++ {
		_ = s.Append(path, models.NewUserEntry(string(rune('a'+i)), int64(i)))
	}
	if err := s.Prune(path, 2); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	entries, _ := s.Load(path, 0)
	if len(entries) != 2 || entries[0].Content != "d" || entries[1].Content != "e" {
		t.Fatalf("entries after prune = %+v", entries)
	}
}

func TestIdleResetZeroMinutesNeverFires(t *testing.T) {
	s := New(t.TempDir(), nil)
	path := filepath.Join(s.Root(), "main.jsonl")
	_ = s.Append(path, models.NewUserEntry("hi", time.Now().Add(-time.Hour).UnixMilli()))

	fired, err := s.CheckIdleReset(path, 0)
	if err != nil {
		t.Fatalf("CheckIdleReset: %v", err)
	}
	if fired {
		t.Fatal("idle reset fired with minutes=0")
	}
}

func TestIdleResetFiresWhenStale(t *testing.T) {
	s := New(t.TempDir(), nil)
	path := filepath.Join(s.Root(), "main.jsonl")
	_ = s.Append(path, models.NewUserEntry("hi", time.Now().Add(-2*time.Hour).UnixMilli()))

	fired, err := s.CheckIdleReset(path, 30)
	if err != nil {
		t.Fatalf("CheckIdleReset: %v", err)
	}
	if !fired {
		t.Fatal("expected idle reset to fire")
	}
	entries, _ := s.Load(path, 0)
	if len(entries) != 0 {
		t.Fatalf("expected clear after idle reset, got %+v", entries)
	}
}

func TestSkipsUnparseableTrailingLine(t *testing.T) {
	s := New(t.TempDir(), nil)
	path := filepath.Join(s.Root(), "main.jsonl")
	_ = s.Append(path, models.NewUserEntry("good", 1))
	appendRaw(t, path, "not json\n")

	entries, err := s.Load(path, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %+v, want the corrupt trailing line skipped", entries)
	}
}

func TestProjectMessagesDropsOrphanToolCall(t *testing.T) {
	entries := []models.Entry{
		models.NewUserEntry("go", 1),
		models.NewAssistantEntry("", 2),
		models.NewToolCallEntry("t1", "memory", nil, 2),
		models.NewAssistantEntry("done", 3),
	}
	msgs := ProjectMessages(entries)
	for _, m := range msgs {
		for _, b := range m.Content {
			if b.Type == models.BlockToolUse {
				t.Fatalf("orphan tool_use leaked into projected messages: %+v", b)
			}
		}
	}
}

func appendRaw(t *testing.T, path, s string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(s); err != nil {
		t.Fatal(err)
	}
}
