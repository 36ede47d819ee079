package security

import (
	"testing"
)

func TestContainsShellMetacharacters(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"hello", false},
		{"hello world", false},
		{"hello;world", true},
		{"hello|world", true},
		{"hello>world", true},
		{"hello<world", true},
		{"hello&world", true},
		{"hello`world", true},
		{"hello$world", true},
		{"hello(world", true},
		{"hello)world", true},
		{"hello{world", true},
		{"hello}world", true},
		{"hello[world", true},
		{"hello]world", true},
		{"hello*world", true},
		{"hello?world", true},
		{"hello!world", true},
		{"hello#world", true},
		{"hello~world", true},
		{"hello=world", true},
		{"hello%world", true},
		{"hello^world", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ContainsShellMetacharacters(tt.input); got != tt.want {
				t.Errorf("ContainsShellMetacharacters(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidFilename(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"main.py", true},
		{"test_file.txt", true},
		{"data-2024.csv", true},
		{"", false},
		{".", false},
		{"..", false},
		{".hidden", false},
		{"path/to/file", false},
		{"path\\to\\file", false},
		{"file;name", false},
		{"file|name", false},
		{"file>name", false},
		{"file<name", false},
		{"file&name", false},
		{"file`name", false},
		{"file$name", false},
		{"file(name", false},
		{"file*name", false},
		{"file?name", false},
		{"file\x00name", false}, // null byte
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidFilename(tt.name); got != tt.valid {
				t.Errorf("IsValidFilename(%q) = %v, want %v", tt.name, got, tt.valid)
			}
		})
	}
}
