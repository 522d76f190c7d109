package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, want string, args ...string) {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	if !strings.Contains(out, want) {
		t.Errorf("%v output %q, want it to contain %q", args, out, want)
	}
}

func TestMigrate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "data", "fintrack.db")

	mustRun(t, "schema version 2 (clean)", "migrate", "--db", db)
	mustRun(t, "schema version 2", "migrate", "version", "--db", db)
}

func TestUsers(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fintrack.db")

	mustRun(t, "registered Ann@Example.com", "users", "add", "--db", db,
		"--email", "Ann@Example.com", "--username", "ann", "--name", "Ann Lee", "--password", "secret1")

	failing := [][]string{
		{"users", "add", "--db", db, "--email", "ann@example.com", "--username", "ann2", "--password", "secret1"},
		{"users", "add", "--db", db, "--email", "bob@example.com", "--username", "bob", "--password", "123"},
		{"users", "enable", "--db", db, "nobody@example.com"},
	}
	for _, args := range failing {
		if _, err := run(t, args...); err == nil {
			t.Errorf("%v succeeded", args)
		}
	}

	mustRun(t, "disabled ann@example.com", "users", "disable", "--db", db, "ANN@example.com")

	out, err := run(t, "users", "list", "--db", db)
	if err != nil {
		t.Fatalf("users list: %v", err)
	}
	if !strings.Contains(out, "ann@example.com") || !strings.Contains(out, "false") {
		t.Errorf("users list output %q", out)
	}

	mustRun(t, "WHEN", "users", "activity", "--db", db, "ann@example.com")
}

func TestRootCommand(t *testing.T) {
	names := map[string]bool{}
	for _, c := range NewRootCommand().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "users"} {
		if !names[want] {
			t.Errorf("missing %q subcommand", want)
		}
	}
}
