package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/marshallshelly/starfaves/cmd/starfaves/output"
	"github.com/marshallshelly/starfaves/internal/models"
	"github.com/marshallshelly/starfaves/pkg/migration"
	"github.com/spf13/cobra"
)

var (
	// Migrate flags
	dryRun bool
	steps  int
	empty  bool
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
	Long: `Generate, apply and roll back database migrations.

Subcommands:
  generate - Write a migration that creates the schema
  up       - Apply pending migrations
  down     - Rollback migrations
  status   - Show migration status`,
}

// migrateGenerateCmd writes a migration pair
var migrateGenerateCmd = &cobra.Command{
	Use:   "generate NAME",
	Short: "Generate migration files",
	Long: `Write timestamped up/down SQL files that create and drop every table.

Examples:
  starfaves migrate generate create_schema        # Schema from the models
  starfaves migrate generate backfill --empty     # Empty files to edit by hand`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateGenerate(args[0])
	},
}

// migrateUpCmd applies pending migrations
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Long: `Apply every pending migration, oldest first, each in its own transaction.

Examples:
  starfaves migrate up             # Apply all pending migrations
  starfaves migrate up --dry-run   # Preview migrations without applying`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateUp(cmd.Context())
	},
}

// migrateDownCmd rolls back migrations
var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback migrations",
	Long: `Rollback applied migrations, newest first.

Examples:
  starfaves migrate down             # Rollback last migration
  starfaves migrate down --steps 2   # Rollback the last two
  starfaves migrate down --dry-run   # Preview rollback without executing`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateDown(cmd.Context())
	},
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long: `Show the status of all migrations (pending, applied, failed).

Examples:
  starfaves migrate status           # Show migration status
  starfaves migrate status --json    # Output in JSON format`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateStatus(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateGenerateCmd, migrateUpCmd, migrateDownCmd, migrateStatusCmd)

	migrateGenerateCmd.Flags().BoolVar(&empty, "empty", false, "Generate empty migration for manual editing")

	migrateUpCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview migrations without applying")

	migrateDownCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview rollback without executing")
	migrateDownCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to rollback")
}

func runMigrateGenerate(name string) error {
	generator := migration.NewGenerator(cfg.MigrationsDir)

	var (
		file *migration.MigrationFile
		err  error
	)
	if empty {
		file, err = generator.GenerateEmpty(name)
	} else {
		reg, regErr := models.NewRegistry()
		if regErr != nil {
			return regErr
		}
		tables, orderErr := reg.Ordered()
		if orderErr != nil {
			return orderErr
		}
		file, err = generator.Generate(name, tables)
	}
	if err != nil {
		return fmt.Errorf("failed to generate migration: %w", err)
	}

	if jsonOutput {
		return output.JSON(file)
	}
	output.Success("Created migration: %s", file.Version)
	output.Muted("  Up:   %s", file.UpPath)
	output.Muted("  Down: %s", file.DownPath)
	return nil
}

// openExecutor connects, prepares schema_migrations and loads the migration
// files. The returned function closes the connection.
func openExecutor(ctx context.Context) (*migration.Executor, []migration.Migration, func(), error) {
	migrations, err := migration.NewGenerator(cfg.MigrationsDir).LoadAll()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	db, err := openDB(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	executor, err := migration.NewExecutor(db)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	if err := executor.Initialize(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize migrations: %w", err)
	}
	return executor, migrations, db.Close, nil
}

func runMigrateUp(ctx context.Context) error {
	executor, migrations, closeDB, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	if len(migrations) == 0 {
		output.Warning("No migrations found in %s", cfg.MigrationsDir)
		return nil
	}

	applied, err := executor.ApplyAll(ctx, migrations, dryRun)
	if jsonOutput {
		if encErr := output.JSON(migrationSummary(applied, dryRun)); encErr != nil {
			return encErr
		}
		return err
	}

	if dryRun {
		output.Section("DRY RUN - Preview")
		if len(applied) == 0 {
			output.Info("No pending migrations")
			return err
		}
		output.Info("The following migrations would be applied:")
	} else if len(applied) > 0 {
		output.Section("Applied Migrations")
	}
	for _, m := range applied {
		_, _ = fmt.Fprintf(output.Stdout, "  %s %s - %s\n", output.StatusIcon(upIcon(dryRun)), m.Version, m.Name)
	}
	if err != nil {
		return err
	}

	if !dryRun {
		if len(applied) == 0 {
			output.Info("No pending migrations")
		} else {
			output.Success("Successfully applied %d migration(s)", len(applied))
		}
	}
	return nil
}

func runMigrateDown(ctx context.Context) error {
	executor, migrations, closeDB, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	rolledBack, err := executor.RollbackSteps(ctx, migrations, steps, dryRun)
	if jsonOutput {
		if encErr := output.JSON(migrationSummary(rolledBack, dryRun)); encErr != nil {
			return encErr
		}
		return err
	}

	if dryRun {
		output.Section("DRY RUN - Preview")
		output.Info("The following migrations would be rolled back:")
	} else if len(rolledBack) > 0 {
		output.Section("Rolled Back Migrations")
	}
	for _, m := range rolledBack {
		_, _ = fmt.Fprintf(output.Stdout, "  %s %s - %s\n", output.StatusIcon(string(migration.StatusPending)), m.Version, m.Name)
	}
	if err != nil {
		return err
	}

	if len(rolledBack) == 0 {
		output.Info("No migrations to rollback")
	} else if !dryRun {
		output.Success("Successfully rolled back %d migration(s)", len(rolledBack))
	}
	return nil
}

func runMigrateStatus(ctx context.Context) error {
	executor, migrations, closeDB, err := openExecutor(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	status, err := executor.GetStatus(ctx, migrations)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	if jsonOutput {
		return output.JSON(status)
	}

	if len(status) == 0 {
		output.Warning("No migrations found in %s", cfg.MigrationsDir)
		return nil
	}

	w := tabwriter.NewWriter(output.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
	_, _ = fmt.Fprintln(w, "-------\t----\t------\t----------")

	var applied, pending, failed int
	for _, record := range status {
		appliedAt := "N/A"
		if record.AppliedAt != nil {
			appliedAt = record.AppliedAt.Format("2006-01-02 15:04:05")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\n",
			record.Version,
			record.Name,
			output.StatusIcon(string(record.Status)),
			record.Status,
			appliedAt,
		)

		switch record.Status {
		case migration.StatusApplied:
			applied++
		case migration.StatusPending:
			pending++
		case migration.StatusFailed:
			failed++
		}
	}
	_ = w.Flush()

	summary := fmt.Sprintf("\nSummary: %d applied, %d pending", applied, pending)
	if failed > 0 {
		summary += fmt.Sprintf(", %d failed", failed)
	}
	_, _ = fmt.Fprintln(output.Stdout, summary)

	// Files deleted after being applied cannot be rolled back.
	if err := executor.Validate(ctx, migrations); err != nil {
		output.Warning("%v", err)
	}
	return nil
}

type migrationResult struct {
	DryRun     bool           `json:"dry_run"`
	Migrations []migrationRef `json:"migrations"`
}

type migrationRef struct {
	Version string `json:"version"`
	Name    string `json:"name"`
}

func migrationSummary(migrations []migration.Migration, dryRun bool) migrationResult {
	out := migrationResult{DryRun: dryRun, Migrations: make([]migrationRef, 0, len(migrations))}
	for _, m := range migrations {
		out.Migrations = append(out.Migrations, migrationRef{Version: m.Version, Name: m.Name})
	}
	return out
}

func upIcon(dryRun bool) string {
	if dryRun {
		return string(migration.StatusPending)
	}
	return string(migration.StatusApplied)
}
