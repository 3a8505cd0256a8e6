// Package sqlite implements the repository interfaces on the shared SQLite
// handle from internal/database.
//
// MODELS:
// Each store wraps a fixed set of parameterized statements, one statement
// per method. Stores do not keep the *sql.DB; they borrow it from the
// Provider on every call, so closing and reopening the connector between
// calls is safe.
//
// TIMESTAMPS:
// Timestamps are TEXT columns holding RFC 3339 UTC strings. They are parsed
// on read; an unparseable value comes back as the zero time.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/altarie/internal/database"
)

// DB groups the stores that share one connection provider.
type DB struct {
	provider database.Provider
	now      func() time.Time
}

// New creates the model stores over provider.
func New(provider database.Provider) *DB {
	return &DB{provider: provider, now: time.Now}
}

// WithClock replaces the time source used for created_at and expiry.
func (db *DB) WithClock(now func() time.Time) *DB {
	db.now = now
	return db
}

func (db *DB) Users() *UserStore       { return &UserStore{db: db} }
func (db *DB) Sessions() *SessionStore { return &SessionStore{db: db} }
func (db *DB) Products() *ProductStore { return &ProductStore{db: db} }
func (db *DB) Posts() *PostStore       { return &PostStore{db: db} }

func (db *DB) conn() (*sql.DB, error) {
	conn, err := db.provider.Connection()
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return conn, nil
}

// count runs a SELECT COUNT(1) query.
func (db *DB) count(ctx context.Context, table string) (int, error) {
	conn, err := db.conn()
	if err != nil {
		return 0, err
	}
	var n int
	// table is one of our own constants, never user input.
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(1) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting %s: %w", table, err)
	}
	return n, nil
}

// FormatTime is the on-disk timestamp format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime reads a stored timestamp; malformed input yields the zero time.
func ParseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
