package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/altarie/internal/apperror"
	"github.com/sakif/altarie/internal/auth"
	"github.com/sakif/altarie/internal/model"
	"github.com/sakif/altarie/internal/repository"
)

var _ repository.SessionRepository = (*SessionStore)(nil)

// DefaultSessionTTL is how long a login lasts.
const DefaultSessionTTL = 24 * time.Hour

// SessionStore is the sessions model.
type SessionStore struct {
	db *DB
}

// Create issues a new random token for userID, valid for ttl (DefaultSessionTTL when ttl <= 0).
func (s *SessionStore) Create(ctx context.Context, userID int64, ttl time.Duration) (*model.Session, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	conn, err := s.db.conn()
	if err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken(auth.DefaultTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	now := s.db.now().UTC()
	session := &model.Session{
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	res, err := conn.ExecContext(ctx,
		`INSERT INTO sessions (user_id, token, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		session.UserID, session.Token, FormatTime(session.CreatedAt), FormatTime(session.ExpiresAt),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting session for user %d: %w", userID, err)
	}
	if session.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("sqlite: reading new session id: %w", err)
	}
	return session, nil
}

// FindByToken returns the session for token whether or not it has expired;
// callers decide what expiry means.
func (s *SessionStore) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	conn, err := s.db.conn()
	if err != nil {
		return nil, err
	}

	var (
		session              model.Session
		createdAt, expiresAt string
	)
	err = conn.QueryRowContext(ctx,
		`SELECT id, user_id, token, created_at, expires_at FROM sessions WHERE token = ?`, token,
	).Scan(&session.ID, &session.UserID, &session.Token, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("session", "token")
		}
		return nil, fmt.Errorf("sqlite: finding session: %w", err)
	}
	session.CreatedAt = ParseTime(createdAt)
	session.ExpiresAt = ParseTime(expiresAt)
	return &session, nil
}

// DeleteByToken removes the session for token. An unknown token is not an error.
func (s *SessionStore) DeleteByToken(ctx context.Context, token string) error {
	conn, err := s.db.conn()
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("sqlite: deleting session by token: %w", err)
	}
	return nil
}

// Delete removes the session with id.
func (s *SessionStore) Delete(ctx context.Context, id int64) error {
	conn, err := s.db.conn()
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting session %d: %w", id, err)
	}
	return nil
}
