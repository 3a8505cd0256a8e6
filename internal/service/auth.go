// Package service holds the business rules between the HTTP handlers and
// the models:
//
//	handler (HTTP) → service (rules) → repository (SQL)
//
// Services never read requests or write responses; handlers never run SQL.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/altarie/internal/apperror"
	"github.com/sakif/altarie/internal/auth"
	"github.com/sakif/altarie/internal/model"
	"github.com/sakif/altarie/internal/repository"
)

// ErrInvalidCredentials is returned for an unknown email, a user without a
// password, or a wrong password. The three cases are indistinguishable to
// the caller.
var ErrInvalidCredentials = apperror.Unauthorized("Invalid credentials")

// AuthService signs admins in and out with database-backed sessions.
type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	hasher   auth.Hasher
	ttl      time.Duration
	logger   *slog.Logger
}

// NewAuthService wires the login flow. ttl <= 0 uses the session store's default.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	hasher auth.Hasher,
	ttl time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		ttl:      ttl,
		logger:   logger,
	}
}

// LoginResult is what a successful login hands back to the handler, which
// turns the session token into the sid cookie.
type LoginResult struct {
	User    *model.User
	Session *model.Session
}

// Login checks email and password and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service/auth: finding user: %w", err)
	}
	if !user.HasPassword() {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Warn("password verification failed",
				slog.Int64("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, user.ID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("service/auth: opening session for user %d: %w", user.ID, err)
	}

	user.PasswordHash = ""
	s.logger.Info("admin signed in", slog.Int64("userID", user.ID))
	return &LoginResult{User: user, Session: session}, nil
}

// Logout ends the session behind token. An empty or unknown token is fine.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("service/auth: ending session: %w", err)
	}
	return nil
}

// SessionTTL is how long a new session lasts, for the cookie's Max-Age.
func (s *AuthService) SessionTTL() time.Duration {
	if s.ttl <= 0 {
		return 24 * time.Hour
	}
	return s.ttl
}
