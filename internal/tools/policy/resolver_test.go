package policy

import (
	"reflect"
	"sort"
	"testing"
)

func TestIsAllowedProfileFullIgnoresTable(t *testing.T) {
	r := NewResolver()
	p := &Policy{Profile: ProfileFull, Deny: []string{"shell"}}
	if !r.IsAllowed(p, "anything_not_in_any_table") {
		t.Fatal("full profile should allow tools absent from the profile table")
	}
	if r.IsAllowed(p, "shell") {
		t.Fatal("deny must win over full profile")
	}
}

func TestIsAllowedCodingProfile(t *testing.T) {
	r := NewResolver()
	p := &Policy{Profile: ProfileCoding}
	if !r.IsAllowed(p, "shell") {
		t.Fatal("coding profile should allow shell")
	}
	if r.IsAllowed(p, "message") {
		t.Fatal("coding profile should not allow message")
	}
}

func TestEffectiveIncludesNonOptionalEvenWithEmptyAllow(t *testing.T) {
	r := NewResolver()
	p := &Policy{Profile: ProfileMinimal}
	tools := []ToolInfo{
		{Name: "session_status", Optional: false},
		{Name: "shell", Optional: true},
	}
	got := r.Effective(p, tools, nil)
	sort.Strings(got)
	want := []string{"session_status"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Effective = %v, want %v", got, want)
	}
}

func TestEffectiveDenyBeatsAllow(t *testing.T) {
	r := NewResolver()
	p := &Policy{Profile: ProfileCoding, Allow: []string{"message"}, Deny: []string{"shell", "message"}}
	tools := []ToolInfo{
		{Name: "shell", Optional: true},
		{Name: "message", Optional: true},
		{Name: "read_file", Optional: true},
	}
	got := r.Effective(p, tools, nil)
	sort.Strings(got)
	want := []string{"read_file"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Effective = %v, want %v", got, want)
	}
}

func TestEffectiveUnavailableExcludesEvenNonOptional(t *testing.T) {
	r := NewResolver()
	p := &Policy{Profile: ProfileFull}
	tools := []ToolInfo{{Name: "web_search", Optional: false}}
	got := r.Effective(p, tools, map[string]bool{"web_search": true})
	if len(got) != 0 {
		t.Fatalf("Effective = %v, want empty (unavailable)", got)
	}
}
