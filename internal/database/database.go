// Package database owns the application's single SQLite handle.
//
// CONNECTION LIFECYCLE:
// The handle is opened lazily on the first Connection() call and reused
// until Close(). Close clears it, so the next Connection() reopens the same
// file. Models never hold on to the handle; they borrow it per call through
// the Provider interface.
//
// modernc.org/sqlite is a pure Go SQLite, so the binary builds without CGo.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// Provider hands out the shared connection. *Connector satisfies it, and so
// does the package-level singleton through Default().
type Provider interface {
	Connection() (*sql.DB, error)
}

// Connector lazily opens one SQLite file.
type Connector struct {
	path string

	mu   sync.Mutex
	conn *sql.DB
}

// NewConnector returns a Connector for the database file at path.
// Nothing is opened until Connection is called.
func NewConnector(path string) *Connector {
	return &Connector{path: path}
}

// Path is the database file this connector opens.
func (c *Connector) Path() string {
	return c.path
}

// Connection returns the open handle, opening it on first use.
//
// On first use it:
//  1. creates the containing directory (like `mkdir -p`)
//  2. opens the file, which SQLite creates if missing
//  3. pins the pool to a single connection, so per-connection PRAGMAs hold
//  4. applies journal_mode=WAL and synchronous=NORMAL
func (c *Connector) Connection() (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}

	if dir := filepath.Dir(c.path); dir != "" && c.path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("database: creating directory %s: %w", dir, err)
		}
	}

	conn, err := sql.Open("sqlite", c.path)
	if err != nil {
		return nil, fmt.Errorf("database: opening %s: %w", c.path, err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	// sql.Open is lazy; Ping surfaces a bad path or permissions now.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database: pinging %s: %w", c.path, err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database: setting synchronous mode: %w", err)
	}

	c.conn = conn
	return conn, nil
}

// Close releases the handle. Closing an unopened connector is a no-op.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	if err != nil {
		return fmt.Errorf("database: closing %s: %w", c.path, err)
	}
	return nil
}

// === process-wide singleton ===

var (
	defaultMu        sync.Mutex
	defaultConnector = NewConnector(filepath.Join("storage", "database.sqlite"))
)

// Configure points the process-wide connector at path. An open handle on a
// different path is closed first.
func Configure(path string) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultConnector.Path() == path {
		return nil
	}
	if err := defaultConnector.Close(); err != nil {
		return err
	}
	defaultConnector = NewConnector(path)
	return nil
}

// Default returns the process-wide connector.
func Default() *Connector {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultConnector
}

// Connection returns the process-wide handle.
func Connection() (*sql.DB, error) {
	return Default().Connection()
}

// Close releases the process-wide handle.
func Close() error {
	return Default().Close()
}
