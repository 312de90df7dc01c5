package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marshallshelly/starfaves/pkg/runtime"
)

// DefaultLockID is the advisory lock key held while migrations run.
const DefaultLockID int64 = 7201355401

// Executor executes and tracks database migrations.
type Executor struct {
	pool   *pgxpool.Pool
	lockID int64
}

// NewExecutor creates a migration executor on db's pool.
func NewExecutor(db *runtime.DB) (*Executor, error) {
	if db == nil || db.Pool() == nil {
		return nil, runtime.ErrNoConnection
	}
	return &Executor{
		pool:   db.Pool(),
		lockID: DefaultLockID,
	}, nil
}

// WithLockID sets a custom advisory lock ID.
func (e *Executor) WithLockID(lockID int64) *Executor {
	e.lockID = lockID
	return e
}

// Initialize creates the schema_migrations table if it doesn't exist.
func (e *Executor) Initialize(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(14) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			applied_at TIMESTAMPTZ,
			error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_schema_migrations_status
		ON schema_migrations(status);
	`

	if _, err := e.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// WithLock runs fn while holding the migration advisory lock. The lock is
// session scoped, so it is taken and released on one dedicated connection.
func (e *Executor) WithLock(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", e.lockID); err != nil {
		conn.Release()
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	defer func() {
		var released bool
		unlockErr := conn.QueryRow(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", e.lockID).Scan(&released)
		if unlockErr != nil || !released {
			// Never hand a connection that may still hold the lock back to the pool.
			_ = conn.Hijack().Close(context.WithoutCancel(ctx))
			if unlockErr == nil {
				unlockErr = errors.New("lock was not held")
			}
			err = errors.Join(err, fmt.Errorf("failed to release migration lock: %w", unlockErr))
			return
		}
		conn.Release()
	}()

	return fn(ctx)
}

// GetAppliedMigrations returns all migrations that have been applied.
func (e *Executor) GetAppliedMigrations(ctx context.Context) ([]MigrationRecord, error) {
	return e.queryRecords(ctx, `
		SELECT version, name, status, applied_at, error
		FROM schema_migrations
		WHERE status = 'applied'
		ORDER BY version ASC
	`)
}

// GetAllMigrations returns all migration records.
func (e *Executor) GetAllMigrations(ctx context.Context) ([]MigrationRecord, error) {
	return e.queryRecords(ctx, `
		SELECT version, name, status, applied_at, error
		FROM schema_migrations
		ORDER BY version ASC
	`)
}

func (e *Executor) queryRecords(ctx context.Context, query string) ([]MigrationRecord, error) {
	rows, err := e.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	var records []MigrationRecord
	for rows.Next() {
		var record MigrationRecord
		var status string
		if err := rows.Scan(&record.Version, &record.Name, &status, &record.AppliedAt, &record.Error); err != nil {
			return nil, fmt.Errorf("failed to scan migration record: %w", err)
		}
		record.Status = MigrationStatus(status)
		records = append(records, record)
	}

	return records, rows.Err()
}

// IsMigrationApplied checks if a specific migration has been applied.
func (e *Executor) IsMigrationApplied(ctx context.Context, version string) (bool, error) {
	var count int
	err := e.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = $1 AND status = 'applied'",
		version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return count > 0, nil
}

// Apply executes a migration's up SQL in a transaction. When a statement
// fails the transaction is rolled back and the failure is recorded.
func (e *Executor) Apply(ctx context.Context, migration Migration, dryRun bool) error {
	applied, err := e.IsMigrationApplied(ctx, migration.Version)
	if err != nil {
		return err
	}
	if applied {
		return fmt.Errorf("migration %s is already applied", migration.Version)
	}
	if dryRun {
		return nil
	}

	err = e.inTx(ctx, func(tx pgx.Tx) error {
		if err := execStatements(ctx, tx, migration.Version, migration.UpSQL); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO schema_migrations (version, name, status, applied_at, error)
			VALUES ($1, $2, 'applied', $3, NULL)
			ON CONFLICT (version) DO UPDATE
			SET name = EXCLUDED.name, status = 'applied', applied_at = EXCLUDED.applied_at, error = NULL`,
			migration.Version, migration.Name, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		return nil
	})
	if err != nil {
		var migErr *runtime.MigrationError
		if errors.As(err, &migErr) {
			e.recordFailure(ctx, migration, migErr)
		}
		return err
	}
	return nil
}

func (e *Executor) recordFailure(ctx context.Context, migration Migration, cause error) {
	_, _ = e.pool.Exec(context.WithoutCancel(ctx), `
		INSERT INTO schema_migrations (version, name, status, error)
		VALUES ($1, $2, 'failed', $3)
		ON CONFLICT (version) DO UPDATE SET status = 'failed', error = EXCLUDED.error`,
		migration.Version, migration.Name, cause.Error(),
	)
}

// Rollback executes a migration's down SQL and removes its record.
func (e *Executor) Rollback(ctx context.Context, migration Migration, dryRun bool) error {
	applied, err := e.IsMigrationApplied(ctx, migration.Version)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("migration %s is not applied", migration.Version)
	}
	if dryRun {
		return nil
	}

	return e.inTx(ctx, func(tx pgx.Tx) error {
		if err := execStatements(ctx, tx, migration.Version, migration.DownSQL); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", migration.Version); err != nil {
			return fmt.Errorf("failed to delete migration record: %w", err)
		}
		return nil
	})
}

// ApplyAll applies every pending migration in order under the advisory
// lock and returns the ones applied (or, on a dry run, the ones that would
// be).
func (e *Executor) ApplyAll(ctx context.Context, migrations []Migration, dryRun bool) ([]Migration, error) {
	var done []Migration
	err := e.WithLock(ctx, func(ctx context.Context) error {
		applied, err := e.GetAppliedMigrations(ctx)
		if err != nil {
			return err
		}
		appliedMap := make(map[string]bool, len(applied))
		for _, m := range applied {
			appliedMap[m.Version] = true
		}

		for _, migration := range migrations {
			if appliedMap[migration.Version] {
				continue
			}
			if err := e.Apply(ctx, migration, dryRun); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
			}
			done = append(done, migration)
		}
		return nil
	})
	return done, err
}

// RollbackSteps rolls back the last steps applied migrations, newest first,
// under the advisory lock.
func (e *Executor) RollbackSteps(ctx context.Context, migrations []Migration, steps int, dryRun bool) ([]Migration, error) {
	if steps < 1 {
		return nil, fmt.Errorf("steps must be at least 1, got %d", steps)
	}

	migrationMap := make(map[string]Migration, len(migrations))
	for _, m := range migrations {
		migrationMap[m.Version] = m
	}

	var done []Migration
	err := e.WithLock(ctx, func(ctx context.Context) error {
		applied, err := e.GetAppliedMigrations(ctx)
		if err != nil {
			return err
		}

		for i := len(applied) - 1; i >= 0 && len(done) < steps; i-- {
			record := applied[i]
			migration, exists := migrationMap[record.Version]
			if !exists {
				return fmt.Errorf("migration file not found for version %s", record.Version)
			}
			if err := e.Rollback(ctx, migration, dryRun); err != nil {
				return fmt.Errorf("failed to rollback migration %s: %w", record.Version, err)
			}
			done = append(done, migration)
		}
		return nil
	})
	return done, err
}

// GetStatus returns the status of every known migration, tracked or not.
func (e *Executor) GetStatus(ctx context.Context, migrations []Migration) ([]MigrationRecord, error) {
	recorded, err := e.GetAllMigrations(ctx)
	if err != nil {
		return nil, err
	}
	return mergeStatus(migrations, recorded), nil
}

func mergeStatus(migrations []Migration, recorded []MigrationRecord) []MigrationRecord {
	recordMap := make(map[string]MigrationRecord, len(recorded))
	for _, r := range recorded {
		recordMap[r.Version] = r
	}

	records := make([]MigrationRecord, 0, len(migrations))
	for _, migration := range migrations {
		if record, exists := recordMap[migration.Version]; exists {
			records = append(records, record)
			continue
		}
		records = append(records, MigrationRecord{
			Version: migration.Version,
			Name:    migration.Name,
			Status:  StatusPending,
		})
	}
	return records
}

// Validate checks that all migrations in the database have corresponding files.
func (e *Executor) Validate(ctx context.Context, migrations []Migration) error {
	recorded, err := e.GetAllMigrations(ctx)
	if err != nil {
		return err
	}
	return missingFiles(migrations, recorded)
}

func missingFiles(migrations []Migration, recorded []MigrationRecord) error {
	known := make(map[string]bool, len(migrations))
	for _, m := range migrations {
		known[m.Version] = true
	}

	var missing []string
	for _, record := range recorded {
		if !known[record.Version] {
			missing = append(missing, record.Version)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing migration files: %v", missing)
	}
	return nil
}

func (e *Executor) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func execStatements(ctx context.Context, tx pgx.Tx, version, sql string) error {
	for i, stmt := range splitSQL(sql) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return &runtime.MigrationError{
				Version: version,
				Message: fmt.Sprintf("statement %d failed", i+1),
				Err:     runtime.TranslateError(err),
			}
		}
	}
	return nil
}

// splitSQL splits a SQL script into statements on semicolons outside
// quotes. Line comments are dropped.
func splitSQL(sql string) []string {
	var (
		statements []string
		current    strings.Builder
		quote      rune
	)

	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			current.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			current.WriteRune(r)
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			current.WriteRune('\n')
		case r == ';':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return statements
}
