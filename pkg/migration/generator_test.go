package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateVersion(t *testing.T) {
	version := GenerateVersion()

	if len(version) != 14 {
		t.Errorf("Expected version length 14, got %d", len(version))
	}
	for _, c := range version {
		if c < '0' || c > '9' {
			t.Errorf("Expected numeric version, got %s", version)
			break
		}
	}
}

func TestGenerateFileName(t *testing.T) {
	tests := []struct {
		version   string
		name      string
		direction string
		expected  string
	}{
		{"20240101120000", "create_schema", "up", "20240101120000_create_schema.up.sql"},
		{"20240101120000", "create_schema", "down", "20240101120000_create_schema.down.sql"},
		{"20240215153045", "add_vehicle_index", "up", "20240215153045_add_vehicle_index.up.sql"},
	}

	for _, test := range tests {
		result := GenerateFileName(test.version, test.name, test.direction)
		if result != test.expected {
			t.Errorf("GenerateFileName(%s, %s, %s) = %s, expected %s",
				test.version, test.name, test.direction, result, test.expected)
		}
	}
}

func TestGeneratorGenerate(t *testing.T) {
	tmpDir := t.TempDir()
	generator := NewGenerator(filepath.Join(tmpDir, "migrations"))

	migrationFile, err := generator.Generate("create_schema", orderedTables(t))
	if err != nil {
		t.Fatalf("Failed to generate migration: %v", err)
	}

	if migrationFile.Name != "create_schema" {
		t.Errorf("Expected name 'create_schema', got %s", migrationFile.Name)
	}
	if len(migrationFile.Version) != 14 {
		t.Errorf("Expected version length 14, got %d", len(migrationFile.Version))
	}

	upContent, err := os.ReadFile(migrationFile.UpPath)
	if err != nil {
		t.Fatalf("Failed to read up migration: %v", err)
	}
	if !strings.Contains(string(upContent), `CREATE TABLE IF NOT EXISTS "favorite"`) {
		t.Errorf("Expected CREATE TABLE in up migration, got: %s", upContent)
	}

	downContent, err := os.ReadFile(migrationFile.DownPath)
	if err != nil {
		t.Fatalf("Failed to read down migration: %v", err)
	}
	if !strings.Contains(string(downContent), `DROP TABLE IF EXISTS "user"`) {
		t.Errorf("Expected DROP TABLE in down migration, got: %s", downContent)
	}
}

func TestGeneratorGenerateErrors(t *testing.T) {
	generator := NewGenerator(t.TempDir())

	if _, err := generator.Generate("create_schema", nil); err == nil {
		t.Error("Expected error for empty table list")
	}
	if _, err := generator.GenerateEmpty("../escape"); err == nil {
		t.Error("Expected error for name containing a path")
	}
	if _, err := generator.GenerateEmpty(""); err == nil {
		t.Error("Expected error for empty name")
	}
}

func TestGeneratorGenerateEmpty(t *testing.T) {
	generator := NewGenerator(t.TempDir())

	migrationFile, err := generator.GenerateEmpty("backfill_planets")
	if err != nil {
		t.Fatalf("Failed to generate empty migration: %v", err)
	}

	upContent, err := os.ReadFile(migrationFile.UpPath)
	if err != nil {
		t.Fatalf("Failed to read up migration: %v", err)
	}
	if !strings.Contains(string(upContent), "-- Migration: backfill_planets") {
		t.Errorf("Expected migration comment, got: %s", upContent)
	}

	// Comment-only scripts execute nothing.
	if stmts := splitSQL(string(upContent)); len(stmts) != 0 {
		t.Errorf("Expected no statements, got %v", stmts)
	}
}

func TestGeneratorListMigrations(t *testing.T) {
	tmpDir := t.TempDir()
	generator := NewGenerator(tmpDir)

	migrations := []struct {
		version string
		name    string
	}{
		{"20240103160000", "add_indexes"},
		{"20240101120000", "create_schema"},
		{"20240102140000", "add_vehicles"},
	}
	for _, m := range migrations {
		writeMigration(t, tmpDir, m.version, m.name, "-- up", "-- down")
	}
	// Incomplete pair and unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(tmpDir, "20240104000000_incomplete.up.sql"), []byte("-- up"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "README.md"), []byte("notes"), 0644); err != nil {
		t.Fatal(err)
	}

	listed, err := generator.ListMigrations()
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("Expected 3 migrations, got %d", len(listed))
	}

	wantOrder := []string{"20240101120000", "20240102140000", "20240103160000"}
	for i, want := range wantOrder {
		if listed[i].Version != want {
			t.Errorf("listed[%d].Version = %s, want %s", i, listed[i].Version, want)
		}
	}
	if listed[0].Name != "create_schema" {
		t.Errorf("Expected name 'create_schema', got %s", listed[0].Name)
	}
}

func TestGeneratorListMigrationsNonExistentDir(t *testing.T) {
	generator := NewGenerator(filepath.Join(t.TempDir(), "missing"))

	listed, err := generator.ListMigrations()
	if err != nil {
		t.Fatalf("Expected no error for non-existent directory, got: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("Expected 0 migrations, got %d", len(listed))
	}
}

func TestGeneratorLoadAll(t *testing.T) {
	tmpDir := t.TempDir()
	generator := NewGenerator(tmpDir)

	writeMigration(t, tmpDir, "20240101120000", "create_planet", `CREATE TABLE "planet" (id serial);`, `DROP TABLE "planet";`)
	writeMigration(t, tmpDir, "20240102120000", "seed_planet", `INSERT INTO "planet" DEFAULT VALUES;`, `DELETE FROM "planet";`)

	loaded, err := generator.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 migrations, got %d", len(loaded))
	}
	if loaded[0].UpSQL != `CREATE TABLE "planet" (id serial);` {
		t.Errorf("unexpected up SQL %q", loaded[0].UpSQL)
	}
	if loaded[1].DownSQL != `DELETE FROM "planet";` {
		t.Errorf("unexpected down SQL %q", loaded[1].DownSQL)
	}
}

func writeMigration(t *testing.T, dir, version, name, up, down string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, GenerateFileName(version, name, "up")), []byte(up), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, GenerateFileName(version, name, "down")), []byte(down), 0644); err != nil {
		t.Fatal(err)
	}
}
