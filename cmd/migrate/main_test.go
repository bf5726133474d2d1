package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDescriptionFromFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2026-10-01-005-create-food-logs.sql", "create food logs"},
		{"2026-10-01-001-create-migrations.sql", "create migrations"},
		{"no-prefix.sql", "no prefix"},
	}
	for _, tt := range tests {
		if got := descriptionFromFilename(tt.in); got != tt.want {
			t.Errorf("descriptionFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMigrationFiles_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"2026-10-02-001-b.sql",
		"2026-10-01-002-a.sql",
		"notes.sql",
		"2026-10-01-001-readme.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := migrationFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "2026-10-01-002-a.sql"),
		filepath.Join(dir, "2026-10-02-001-b.sql"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMigrationFiles_EmptyDir(t *testing.T) {
	if _, err := migrationFiles(t.TempDir()); err == nil {
		t.Error("expected error for a directory with no migrations")
	}
}

func TestPending(t *testing.T) {
	files := []string{"db/2026-10-01-001-a.sql", "db/2026-10-01-002-b.sql", "db/2026-10-01-003-c.sql"}
	applied := map[string]bool{"2026-10-01-002-b.sql": true}

	got := pending(files, applied)
	want := []string{"db/2026-10-01-001-a.sql", "db/2026-10-01-003-c.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRepoMigrationsAreWellFormed(t *testing.T) {
	files, err := migrationFiles(filepath.Join("..", "..", "db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(files[0]) != "2026-10-01-001-create-migrations.sql" {
		t.Errorf("migrations table must be created first, got %s", files[0])
	}
}
