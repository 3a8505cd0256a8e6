package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/altarie/internal/apperror"
	"github.com/sakif/altarie/internal/auth"
	"github.com/sakif/altarie/internal/service"
	"github.com/sakif/altarie/internal/view"
)

// AuthHandler signs admins in and out.
//
//	GET  /admin/login   form; signed-in users go straight to /admin
//	POST /admin/login   check credentials, set the sid cookie
//	GET  /admin/logout  end the session, clear the cookie
//
// The login page must run behind the "session" middleware so a valid
// cookie is visible here.
type AuthHandler struct {
	auth         *service.AuthService
	views        Renderer
	company      Company
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. secureCookie marks sid as Secure,
// which production needs.
func NewAuthHandler(
	authService *service.AuthService,
	views Renderer,
	company Company,
	secureCookie bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:         authService,
		views:        views,
		company:      company,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) error {
	if _, ok := auth.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return nil
	}
	return h.renderLogin(w, r, http.StatusOK, "", "")
}

// Login handles the form post. Wrong credentials re-render the form with
// "Invalid credentials"; only unexpected failures become errors.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return apperror.WithStatus(http.StatusBadRequest, "Invalid form body")
	}
	email := r.PostFormValue("email")

	res, err := h.auth.Login(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Info("admin sign-in rejected", slog.String("email", email))
			return h.renderLogin(w, r, http.StatusOK, email, "Invalid credentials")
		}
		return err
	}

	auth.SetSessionCookie(w, res.Session.Token, h.auth.SessionTTL(), h.secureCookie)
	http.Redirect(w, r, "/admin", http.StatusFound)
	return nil
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	if err := h.auth.Logout(r.Context(), auth.SessionToken(r)); err != nil {
		return err
	}
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusFound)
	return nil
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, email, message string) error {
	return h.views.Render(w, r, status, "admin/login", page(h.company, r, view.Data{
		"Title": "Sign in",
		"Email": email,
		"Error": message,
	}))
}
