package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPromptUser(t *testing.T) {
	in := strings.NewReader("  alice \nalice@example.com\nhunter2hunter2\n")
	var out bytes.Buffer

	u, err := promptUser(in, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Username != "alice" || u.Email != "alice@example.com" || u.Password != "hunter2hunter2" {
		t.Errorf("unexpected user: %+v", u)
	}
	if !strings.Contains(out.String(), "Password: ") {
		t.Errorf("expected prompts on output, got %q", out.String())
	}
}

func TestPromptUser_MissingFinalNewline(t *testing.T) {
	u, err := promptUser(strings.NewReader("bob\nbob@example.com\nlongenough"), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Password != "longenough" {
		t.Errorf("expected password read without trailing newline, got %q", u.Password)
	}
}

func TestNewUserValidate(t *testing.T) {
	tests := []struct {
		name string
		u    newUser
		ok   bool
	}{
		{"valid", newUser{"alice", "a@example.com", "12345678"}, true},
		{"blank username", newUser{"", "a@example.com", "12345678"}, false},
		{"space in username", newUser{"al ice", "a@example.com", "12345678"}, false},
		{"bad email", newUser{"alice", "example.com", "12345678"}, false},
		{"short password", newUser{"alice", "a@example.com", "1234567"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.u.validate()
			if (err == nil) != tt.ok {
				t.Errorf("validate() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
