package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/marshallshelly/starfaves/pkg/schema"
)

// Generator writes and reads migration files.
type Generator struct {
	migrationsDir string
	planner       *Planner
}

// NewGenerator creates a new migration file generator.
func NewGenerator(migrationsDir string) *Generator {
	return &Generator{
		migrationsDir: migrationsDir,
		planner:       NewPlanner(),
	}
}

// Dir returns the migrations directory.
func (g *Generator) Dir() string {
	return g.migrationsDir
}

// Generate writes a migration pair that creates tables (parents first) and
// drops them again.
func (g *Generator) Generate(name string, tables []*schema.TableMetadata) (*MigrationFile, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables to generate migration %s from", name)
	}
	upSQL, downSQL := g.planner.CreateSchema(tables)
	return g.write(name, upSQL, downSQL)
}

// GenerateEmpty creates empty migration files for manual editing.
func (g *Generator) GenerateEmpty(name string) (*MigrationFile, error) {
	version := GenerateVersion()
	upSQL := fmt.Sprintf("-- Migration: %s\n-- Created at: %s\n\n-- Write your UP migration here\n", name, version)
	downSQL := fmt.Sprintf("-- Migration: %s\n-- Created at: %s\n\n-- Write your DOWN migration here\n", name, version)
	return g.writeVersion(version, name, upSQL, downSQL)
}

func (g *Generator) write(name, upSQL, downSQL string) (*MigrationFile, error) {
	return g.writeVersion(GenerateVersion(), name, upSQL, downSQL)
}

func (g *Generator) writeVersion(version, name, upSQL, downSQL string) (*MigrationFile, error) {
	if name == "" || strings.ContainsAny(name, `/\. `) {
		return nil, fmt.Errorf("invalid migration name %q", name)
	}
	if err := os.MkdirAll(g.migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	migrationFile := &MigrationFile{
		Version:  version,
		Name:     name,
		UpPath:   filepath.Join(g.migrationsDir, GenerateFileName(version, name, "up")),
		DownPath: filepath.Join(g.migrationsDir, GenerateFileName(version, name, "down")),
	}

	if _, err := os.Stat(migrationFile.UpPath); err == nil {
		return nil, fmt.Errorf("migration %s already exists", migrationFile.UpPath)
	}

	if err := os.WriteFile(migrationFile.UpPath, []byte(upSQL), 0644); err != nil {
		return nil, fmt.Errorf("failed to write up migration: %w", err)
	}
	if err := os.WriteFile(migrationFile.DownPath, []byte(downSQL), 0644); err != nil {
		return nil, fmt.Errorf("failed to write down migration: %w", err)
	}

	return migrationFile, nil
}

// ListMigrations lists the complete migration pairs in the migrations
// directory, oldest first. A missing directory yields no migrations.
func (g *Generator) ListMigrations() ([]MigrationFile, error) {
	entries, err := os.ReadDir(g.migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []MigrationFile{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	fileMap := make(map[string]*MigrationFile)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()

		// {version}_{name}.{direction}.sql
		version, rest, ok := strings.Cut(fileName, "_")
		if !ok {
			continue
		}

		var name string
		var up bool
		if before, ok := strings.CutSuffix(rest, ".up.sql"); ok {
			name, up = before, true
		} else if before, ok := strings.CutSuffix(rest, ".down.sql"); ok {
			name = before
		} else {
			continue
		}

		mf, exists := fileMap[version]
		if !exists {
			mf = &MigrationFile{Version: version, Name: name}
			fileMap[version] = mf
		}
		if up {
			mf.UpPath = filepath.Join(g.migrationsDir, fileName)
		} else {
			mf.DownPath = filepath.Join(g.migrationsDir, fileName)
		}
	}

	migrations := make([]MigrationFile, 0, len(fileMap))
	for _, mf := range fileMap {
		if mf.UpPath != "" && mf.DownPath != "" {
			migrations = append(migrations, *mf)
		}
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// ReadMigration reads the SQL content of a migration file pair.
func (g *Generator) ReadMigration(file MigrationFile) (*Migration, error) {
	upSQL, err := os.ReadFile(file.UpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read up migration: %w", err)
	}
	downSQL, err := os.ReadFile(file.DownPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read down migration: %w", err)
	}

	return &Migration{
		Version: file.Version,
		Name:    file.Name,
		UpSQL:   string(upSQL),
		DownSQL: string(downSQL),
	}, nil
}

// LoadAll lists and reads every migration, oldest first.
func (g *Generator) LoadAll() ([]Migration, error) {
	files, err := g.ListMigrations()
	if err != nil {
		return nil, err
	}
	migrations := make([]Migration, 0, len(files))
	for _, file := range files {
		m, err := g.ReadMigration(file)
		if err != nil {
			return nil, fmt.Errorf("migration %s: %w", file.Version, err)
		}
		migrations = append(migrations, *m)
	}
	return migrations, nil
}
