package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/sakif/altarie/internal/apperror"
	"github.com/sakif/altarie/internal/model"
	"github.com/sakif/altarie/internal/repository"
)

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// UserStore is the users model.
type UserStore struct {
	db *DB
}

const userColumns = `id, name, email, password_hash, created_at, updated_at`

func scanUser(s scanner) (*model.User, error) {
	var (
		u                    model.User
		hash                 sql.NullString
		createdAt, updatedAt string
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &hash, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.PasswordHash = hash.String
	u.CreatedAt = ParseTime(createdAt)
	u.UpdatedAt = ParseTime(updatedAt)
	return &u, nil
}

// All returns every user, newest first. Password hashes are not selected.
func (s *UserStore) All(ctx context.Context) ([]model.User, error) {
	conn, err := s.db.conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx,
		`SELECT id, name, email, NULL, created_at, updated_at FROM users ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

// Find returns the user with id, without the password hash.
func (s *UserStore) Find(ctx context.Context, id int64) (*model.User, error) {
	conn, err := s.db.conn()
	if err != nil {
		return nil, err
	}

	u, err := scanUser(conn.QueryRowContext(ctx,
		`SELECT id, name, email, NULL, created_at, updated_at FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: finding user %d: %w", id, err)
	}
	return u, nil
}

// FindByEmail returns the user including the password hash; it is the
// lookup used for signing in.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	conn, err := s.db.conn()
	if err != nil {
		return nil, err
	}

	u, err := scanUser(conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: finding user by email: %w", err)
	}
	return u, nil
}

// Create inserts a user without a password.
func (s *UserStore) Create(ctx context.Context, name, email string) (*model.User, error) {
	return s.insert(ctx, name, email, sql.NullString{})
}

// CreateWithPassword inserts a user with an already hashed password.
func (s *UserStore) CreateWithPassword(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	return s.insert(ctx, name, email, sql.NullString{String: passwordHash, Valid: passwordHash != ""})
}

func (s *UserStore) insert(ctx context.Context, name, email string, hash sql.NullString) (*model.User, error) {
	conn, err := s.db.conn()
	if err != nil {
		return nil, err
	}

	now := FormatTime(s.db.now())
	res, err := conn.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		name, email, hash, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict("user", email)
		}
		return nil, fmt.Errorf("sqlite: inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	return s.Find(ctx, id)
}

func (s *UserStore) Count(ctx context.Context) (int, error) {
	return s.db.count(ctx, "users")
}
