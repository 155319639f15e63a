package logging

import (
	"errors"
	"strings"
	"testing"
)

func TestRedactor_RedactString(t *testing.T) {
	r := NewRedactor()

	tests := []struct {
		name    string
		input   string
		want    string
		notWant string
	}{
		{
			name:    "openai key",
			input:   "key sk-abc123def456 rejected",
			want:    "key sk-*** rejected",
			notWant: "abc123",
		},
		{
			name:    "project key with dashes",
			input:   "using sk-proj-Ab_cd-EF12",
			want:    "using sk-***",
			notWant: "proj",
		},
		{
			name:    "bearer header",
			input:   "Authorization: Bearer sk-abc123def456",
			want:    "Authorization: Bearer ***",
			notWant: "abc123",
		},
		{
			name:  "plain text untouched",
			input: "feline coronavirus titer 1:1600",
			want:  "feline coronavirus titer 1:1600",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.RedactString(tt.input)
			if got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if tt.notWant != "" && strings.Contains(got, tt.notWant) {
				t.Errorf("result still contains %q", tt.notWant)
			}
		})
	}
}

func TestRedactor_Secrets(t *testing.T) {
	r := NewRedactor("org-held-key-9876")

	got := r.RedactString("dial failed with org-held-key-9876 in url")
	if strings.Contains(got, "org-held-key-9876") {
		t.Errorf("registered secret not masked: %q", got)
	}

	got = r.RedactSecrets("bad key zz-caller-key", "zz-caller-key")
	if strings.Contains(got, "zz-caller-key") {
		t.Errorf("per-call secret not masked: %q", got)
	}

	// Short values would mask ordinary text.
	r.AddSecret("ab")
	if got := r.RedactString("abc"); got != "abc" {
		t.Errorf("short secret should be ignored, got %q", got)
	}
}

func TestRedactor_RedactArgs(t *testing.T) {
	r := NewRedactor()

	args := r.RedactArgs(
		"api_key", "sk-abcdef123456",
		"message", "call with sk-abcdef123456 failed",
		"error", errors.New("Bearer sk-abcdef123456 rejected"),
		"status", 401,
	)

	if args[1] != "sk-a***" {
		t.Errorf("sensitive key value = %v", args[1])
	}
	if s, _ := args[3].(string); strings.Contains(s, "abcdef") {
		t.Errorf("message not redacted: %v", args[3])
	}
	if s, _ := args[5].(string); strings.Contains(s, "abcdef") {
		t.Errorf("error not redacted: %v", args[5])
	}
	if args[7] != 401 {
		t.Errorf("non-string value changed: %v", args[7])
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := map[string]bool{
		"api_key":       true,
		"APIKey":        true,
		"Authorization": true,
		"client_secret": true,
		"access_token":  true,
		"model":         false,
		"status":        false,
	}
	for key, want := range tests {
		if got := isSensitiveKey(key); got != want {
			t.Errorf("isSensitiveKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestRedactAPIKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"sk-1234567890", "sk-1***"},
		{"abc", "***"},
		{"", "***"},
	}
	for _, tt := range tests {
		if got := RedactAPIKey(tt.input); got != tt.want {
			t.Errorf("RedactAPIKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
