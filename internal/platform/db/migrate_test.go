package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMigrationsOrdersByVersion(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"002_ledger.sql":  "CREATE TABLE appointment_count (id int);",
		"001_core.sql":    "CREATE TABLE branch (id int);",
		"010_catalog.sql": "CREATE TABLE appointment_service (id int);",
		"README.md":       "not a migration",
		"notes_v2.sql":    "no numeric prefix",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	wantVersions := []int{1, 2, 10}
	for i, mig := range migrations {
		if mig.Version != wantVersions[i] {
			t.Errorf("migration %d: version = %d, want %d", i, mig.Version, wantVersions[i])
		}
	}
	if migrations[0].SQL != files["001_core.sql"] {
		t.Errorf("migration SQL not loaded")
	}
}

func TestLoadMigrationsMissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
