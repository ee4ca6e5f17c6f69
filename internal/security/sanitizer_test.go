package security

import (
	"strings"
	"testing"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"removes null bytes", "he\x00llo", "hello"},
		{"keeps plain text", "Château Margaux", "Château Margaux"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeString(tt.input); got != tt.want {
				t.Errorf("SanitizeString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeStringLimitsLength(t *testing.T) {
	long := strings.Repeat("x", 2000)
	if got := SanitizeString(long); len(got) != 1000 {
		t.Errorf("length = %d, want 1000", len(got))
	}
}

func TestSanitizeHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips tags", "<b>bold</b>", "bold"},
		{"strips script", "<script>alert(1)</script>wine", "wine"},
		{"plain text untouched", "pinot noir", "pinot noir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeHTML(tt.input); got != tt.want {
				t.Errorf("SanitizeHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeDisplayName(t *testing.T) {
	got := SanitizeDisplayName("  <i>Alice</i> ")
	if got != "Alice" {
		t.Errorf("SanitizeDisplayName() = %q, want %q", got, "Alice")
	}
}

func TestValidateOptionKey(t *testing.T) {
	for _, key := range []string{"a", "b", "c", "d"} {
		if !ValidateOptionKey(key) {
			t.Errorf("ValidateOptionKey(%q) = false", key)
		}
	}
	for _, key := range []string{"", "e", "A", "ab", "1"} {
		if ValidateOptionKey(key) {
			t.Errorf("ValidateOptionKey(%q) = true", key)
		}
	}
}
