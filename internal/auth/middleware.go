package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/altarie/internal/apperror"
	"github.com/sakif/altarie/internal/model"
)

// contextKey is unexported so only this package can read or write its values.
type contextKey string

const (
	userKey    contextKey = "user"
	sessionKey contextKey = "session"
)

// SessionStore is the slice of the session model the guard needs.
type SessionStore interface {
	FindByToken(ctx context.Context, token string) (*model.Session, error)
	Delete(ctx context.Context, id int64) error
}

// UserFinder loads the user a session belongs to.
type UserFinder interface {
	Find(ctx context.Context, id int64) (*model.User, error)
}

// Guard validates the sid cookie against the sessions table.
//
// VALIDATION:
//  1. read the sid cookie
//  2. look the token up
//  3. compare expires_at with the current time; expired rows are deleted
//  4. load the session's user
//
// Any failure on a protected route clears the cookie and redirects to the
// login page; it never renders an error.
type Guard struct {
	sessions  SessionStore
	users     UserFinder
	logger    *slog.Logger
	loginPath string
	now       func() time.Time
}

// NewGuard creates a Guard redirecting to /admin/login.
func NewGuard(sessions SessionStore, users UserFinder, logger *slog.Logger) *Guard {
	return &Guard{
		sessions:  sessions,
		users:     users,
		logger:    logger,
		loginPath: "/admin/login",
		now:       time.Now,
	}
}

// WithLoginPath changes where rejected requests are redirected.
func (g *Guard) WithLoginPath(path string) *Guard {
	g.loginPath = path
	return g
}

// WithClock replaces the time source. Tests use it to move past expiry.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// LoginPath is the redirect target for rejected requests.
func (g *Guard) LoginPath() string {
	return g.loginPath
}

// Authenticate resolves a token to its user and session. An expired
// session is deleted before ErrUnauthorized is returned.
func (g *Guard) Authenticate(ctx context.Context, token string) (*model.User, *model.Session, error) {
	if token == "" {
		return nil, nil, apperror.Unauthorized("no session")
	}

	session, err := g.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil, apperror.Unauthorized("unknown session")
		}
		return nil, nil, err
	}

	if session.ExpiresAt.IsZero() || session.Expired(g.now()) {
		if err := g.sessions.Delete(ctx, session.ID); err != nil {
			g.logger.Warn("deleting expired session failed",
				slog.Int64("sessionID", session.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, nil, apperror.Unauthorized("session expired")
	}

	user, err := g.users.Find(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil, apperror.Unauthorized("session user missing")
		}
		return nil, nil, err
	}

	return user, session, nil
}

// Require is the "auth" middleware: it lets the request through with the
// user and session attached, or redirects to the login page.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, session, err := g.Authenticate(r.Context(), SessionToken(r))
		if err != nil {
			if !errors.Is(err, apperror.ErrUnauthorized) {
				g.logger.Error("session lookup failed", slog.String("error", err.Error()))
			}
			ClearSessionCookie(w)
			http.Redirect(w, r, g.loginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, session)))
	})
}

// Optional attaches the user when the cookie is valid and never blocks.
func (g *Guard) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := SessionToken(r); token != "" {
			if user, session, err := g.Authenticate(r.Context(), token); err == nil {
				r = r.WithContext(WithUser(r.Context(), user, session))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser stores the authenticated user and session in ctx.
func WithUser(ctx context.Context, user *model.User, session *model.Session) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, sessionKey, session)
}

// UserFromContext returns the signed-in user, or (nil, false) for anonymous requests.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// SessionFromContext returns the session that authenticated the request.
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*model.Session)
	return s, ok && s != nil
}
