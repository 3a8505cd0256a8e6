// Package migrations holds the company-profile schema and seed data.
package migrations

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/altarie/internal/auth"
	"github.com/sakif/altarie/internal/config"
	"github.com/sakif/altarie/internal/database"
	"github.com/sakif/altarie/internal/database/migrate"
)

// NewRunner returns a runner over every migration, seeding the admin from
// cfg with the hasher PASSWORD_HASHER and ADMIN_SALT select.
func NewRunner(cfg *config.Config, provider database.Provider, logger *slog.Logger) *migrate.Runner {
	hasher := auth.NewHasher(cfg.PasswordHasher, cfg.Admin.Salt)
	return migrate.NewRunner(provider, All(cfg.Admin, hasher), logger)
}

// All returns every migration of the site. admin and hasher feed the
// admin-user seed.
func All(admin config.Admin, hasher auth.Hasher) []migrate.Migration {
	return []migrate.Migration{
		CreateUsers(),
		exec("20251006145100_create_products_table", `
			CREATE TABLE IF NOT EXISTS products (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				slug       TEXT NOT NULL UNIQUE,
				name       TEXT NOT NULL,
				summary    TEXT,
				features   TEXT, -- JSON array string
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);`,
			`DROP TABLE IF EXISTS products;`),
		exec("20251006145200_create_posts_table", `
			CREATE TABLE IF NOT EXISTS posts (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				slug       TEXT NOT NULL UNIQUE,
				title      TEXT NOT NULL,
				excerpt    TEXT,
				body       TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);`,
			`DROP TABLE IF EXISTS posts;`),
		{
			Name: "20251006145300_seed_initial_data",
			Up:   seedInitialData,
			Down: func(ctx context.Context, db *sql.DB) error {
				if _, err := db.ExecContext(ctx, `DELETE FROM posts`); err != nil {
					return err
				}
				_, err := db.ExecContext(ctx, `DELETE FROM products`)
				return err
			},
		},
		exec("20251006145400_create_sessions_table", `
			CREATE TABLE IF NOT EXISTS sessions (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id    INTEGER NOT NULL,
				token      TEXT NOT NULL UNIQUE,
				created_at TEXT NOT NULL,
				expires_at TEXT NOT NULL,
				FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
			);`,
			`DROP TABLE IF EXISTS sessions;`),
		{
			Name: "20251006145500_seed_admin_user",
			Up: func(ctx context.Context, db *sql.DB) error {
				return seedAdmin(ctx, db, admin, hasher)
			},
			Down: func(ctx context.Context, db *sql.DB) error {
				_, err := db.ExecContext(ctx, `DELETE FROM users WHERE email = ?`, admin.Email)
				return err
			},
		},
	}
}

// CreateUsers is the users table on its own, for apps that need accounts
// without the site's content tables.
func CreateUsers() migrate.Migration {
	return exec("20251006145000_create_users_table", `
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		);`,
		`DROP TABLE IF EXISTS users;`)
}

func exec(name, up, down string) migrate.Migration {
	return migrate.Migration{
		Name: name,
		Up: func(ctx context.Context, db *sql.DB) error {
			_, err := db.ExecContext(ctx, up)
			return err
		},
		Down: func(ctx context.Context, db *sql.DB) error {
			_, err := db.ExecContext(ctx, down)
			return err
		},
	}
}

type productSeed struct {
	Slug, Name, Summary string
	Features            []string
}

type postSeed struct {
	Slug, Title, Excerpt, Body string
}

var products = []productSeed{
	{"altarie-site-starter", "Altarie Site Starter", "Production-ready starter with routing, views, and SQLite.",
		[]string{"chi router", "html/template views", "SQLite"}},
	{"altarie-admin-dash", "Admin Dashboard", "Role-based panels, charts, and CRUD using Altarie.",
		[]string{"Auth middleware", "Charts", "CRUD scaffolding"}},
	{"altarie-blog-kit", "Blog Kit", "Simple blog with categories, tags, and search.",
		[]string{"Posts & tags", "Search", "Friendly URLs"}},
}

var posts = []postSeed{
	{"launching-altarie-studio", "Launching Altarie Studio",
		"Introducing our studio and what we build with Altarie.",
		"Altarie Studio focuses on practical products built with Altarie. This is a demo post for the company profile example."},
	{"why-choose-altarie", "Why choose Altarie",
		"Clean structure, great DX, and production-ready features.",
		"With explicit route modules, view helpers, and detailed error pages in development, Altarie keeps your team productive."},
}

// seedInitialData fills products and posts, each only when its table is
// empty. Each table's rows go in within one transaction.
func seedInitialData(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	empty, err := isEmpty(ctx, db, "products")
	if err != nil {
		return err
	}
	if empty {
		err := inTx(ctx, db, func(tx *sql.Tx) error {
			for _, p := range products {
				features, err := json.Marshal(p.Features)
				if err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO products (slug, name, summary, features, created_at, updated_at)
					 VALUES (?, ?, ?, ?, ?, ?)`,
					p.Slug, p.Name, p.Summary, string(features), now, now,
				); err != nil {
					return fmt.Errorf("inserting product %s: %w", p.Slug, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	empty, err = isEmpty(ctx, db, "posts")
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}
	return inTx(ctx, db, func(tx *sql.Tx) error {
		for _, p := range posts {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO posts (slug, title, excerpt, body, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				p.Slug, p.Title, p.Excerpt, p.Body, now, now,
			); err != nil {
				return fmt.Errorf("inserting post %s: %w", p.Slug, err)
			}
		}
		return nil
	})
}

// seedAdmin creates the admin account unless a user with that email exists.
func seedAdmin(ctx context.Context, db *sql.DB, admin config.Admin, hasher auth.Hasher) error {
	var exists int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE email = ?`, admin.Email,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking admin user: %w", err)
	}
	if exists > 0 {
		return nil
	}

	hash, err := hasher.Hash(admin.Password)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		admin.Name, admin.Email, hash, now, now,
	)
	if err != nil {
		return fmt.Errorf("inserting admin user: %w", err)
	}
	return nil
}

func isEmpty(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM `+table).Scan(&n); err != nil {
		return false, fmt.Errorf("counting %s: %w", table, err)
	}
	return n == 0, nil
}

func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
