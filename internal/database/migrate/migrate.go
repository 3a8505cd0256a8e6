// Package migrate applies versioned schema migrations and records them in a
// `migrations` tracking table.
//
// Migrations run in lexical name order, so names carry a timestamp prefix
// (20251006145000_create_users_table). Every migration applied by one Run
// shares a batch number: one more than the highest batch already recorded.
//
// Re-run safety comes from the tracking table, not from the statements: a
// migration that fails stops the run, and the ones applied before it stay
// recorded. Each migration should therefore guard itself (CREATE TABLE IF
// NOT EXISTS, existence checks before seeding).
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sakif/altarie/internal/database"
)

// Migration is one named schema step. Down is optional; a migration
// without one cannot be rolled back.
type Migration struct {
	Name string
	Up   func(ctx context.Context, db *sql.DB) error
	Down func(ctx context.Context, db *sql.DB) error
}

// Record is one row of the tracking table.
type Record struct {
	ID         int64
	Name       string
	Batch      int
	MigratedAt string
}

// Runner applies a fixed set of migrations against a database.
type Runner struct {
	db         database.Provider
	migrations []Migration
	logger     *slog.Logger
	now        func() time.Time
}

// NewRunner returns a Runner. The migrations are copied and sorted by name.
func NewRunner(db database.Provider, migrations []Migration, logger *slog.Logger) *Runner {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	return &Runner{
		db:         db,
		migrations: sorted,
		logger:     logger,
		now:        time.Now,
	}
}

// Names lists the migration names in the order they run.
func (r *Runner) Names() []string {
	names := make([]string, len(r.migrations))
	for i, m := range r.migrations {
		names[i] = m.Name
	}
	return names
}

const createTable = `
	CREATE TABLE IF NOT EXISTS migrations (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE,
		batch       INTEGER NOT NULL,
		migrated_at TEXT NOT NULL
	);
`

// Run applies every unrecorded migration under a new batch number and
// returns the names it applied. Nothing applied means the batch number is
// never used.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	conn, err := r.db.Connection()
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if _, err := conn.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("migrate: creating migrations table: %w", err)
	}

	applied, err := r.appliedNames(ctx, conn)
	if err != nil {
		return nil, err
	}

	var maxBatch int
	if err := conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(batch), 0) FROM migrations`,
	).Scan(&maxBatch); err != nil {
		return nil, fmt.Errorf("migrate: reading current batch: %w", err)
	}
	batch := maxBatch + 1
	migratedAt := r.now().UTC().Format(time.RFC3339Nano)

	var ran []string
	for _, m := range r.migrations {
		if applied[m.Name] {
			continue
		}
		if m.Up == nil {
			continue
		}
		if err := m.Up(ctx, conn); err != nil {
			return ran, fmt.Errorf("migrate: %s: %w", m.Name, err)
		}
		if _, err := conn.ExecContext(ctx,
			`INSERT INTO migrations (name, batch, migrated_at) VALUES (?, ?, ?)`,
			m.Name, batch, migratedAt,
		); err != nil {
			return ran, fmt.Errorf("migrate: recording %s: %w", m.Name, err)
		}
		r.logger.Info("migrated", slog.String("migration", m.Name), slog.Int("batch", batch))
		ran = append(ran, m.Name)
	}

	return ran, nil
}

// Rollback reverts the most recent batch, newest migration first, and
// returns the names it reverted. A recorded migration that is unknown to
// the runner or has no Down aborts the rollback.
func (r *Runner) Rollback(ctx context.Context) ([]string, error) {
	conn, err := r.db.Connection()
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if _, err := conn.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("migrate: creating migrations table: %w", err)
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT id, name FROM migrations
		WHERE batch = (SELECT MAX(batch) FROM migrations)
		ORDER BY name DESC`)
	if err != nil {
		return nil, fmt.Errorf("migrate: reading last batch: %w", err)
	}
	type row struct {
		id   int64
		name string
	}
	var last []row
	for rows.Next() {
		var rw row
		if err := rows.Scan(&rw.id, &rw.name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("migrate: scanning last batch: %w", err)
		}
		last = append(last, rw)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("migrate: reading last batch: %w", err)
	}

	byName := make(map[string]Migration, len(r.migrations))
	for _, m := range r.migrations {
		byName[m.Name] = m
	}

	var reverted []string
	for _, rw := range last {
		m, ok := byName[rw.name]
		if !ok || m.Down == nil {
			return reverted, fmt.Errorf("migrate: %s cannot be rolled back", rw.name)
		}
		if err := m.Down(ctx, conn); err != nil {
			return reverted, fmt.Errorf("migrate: rolling back %s: %w", rw.name, err)
		}
		if _, err := conn.ExecContext(ctx, `DELETE FROM migrations WHERE id = ?`, rw.id); err != nil {
			return reverted, fmt.Errorf("migrate: unrecording %s: %w", rw.name, err)
		}
		r.logger.Info("rolled back", slog.String("migration", rw.name))
		reverted = append(reverted, rw.name)
	}
	return reverted, nil
}

// Status returns the tracking table in application order.
func (r *Runner) Status(ctx context.Context) ([]Record, error) {
	conn, err := r.db.Connection()
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if _, err := conn.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("migrate: creating migrations table: %w", err)
	}

	rows, err := conn.QueryContext(ctx,
		`SELECT id, name, batch, migrated_at FROM migrations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("migrate: listing migrations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Batch, &rec.MigratedAt); err != nil {
			return nil, fmt.Errorf("migrate: scanning migration: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Pending lists the migrations that Run would apply.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	records, err := r.Status(ctx)
	if err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(records))
	for _, rec := range records {
		applied[rec.Name] = true
	}
	var pending []string
	for _, m := range r.migrations {
		if !applied[m.Name] {
			pending = append(pending, m.Name)
		}
	}
	return pending, nil
}

func (r *Runner) appliedNames(ctx context.Context, conn *sql.DB) (map[string]bool, error) {
	rows, err := conn.QueryContext(ctx, `SELECT name FROM migrations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("migrate: listing applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("migrate: scanning applied migration: %w", err)
		}
		applied[name] = true
	}
	return applied, rows.Err()
}
