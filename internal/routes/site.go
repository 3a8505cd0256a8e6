// Package routes holds the route modules of the company-profile site.
//
// MODULES (registered in this order by cmd/server):
//
//	Web    public pages and /dashboard
//	API    /api/health
//	Admin  /admin sign-in and dashboard
//
// Handlers are built inside each module because they render through the
// App the module receives.
package routes

import (
	"errors"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/altarie/bootstrap"
	"github.com/sakif/altarie/internal/auth"
	"github.com/sakif/altarie/internal/handler"
	"github.com/sakif/altarie/internal/repository/sqlite"
	"github.com/sakif/altarie/internal/service"
)

// ErrNoAuthAlias is returned when a module needs the "auth" middleware and
// WithMiddleware never registered it.
var ErrNoAuthAlias = errors.New("routes: the auth middleware alias is not registered")

// Site is the company-profile application: its services and the guard
// behind the "auth" and "session" aliases.
type Site struct {
	Content *service.ContentService
	Auth    *service.AuthService
	Guard   *auth.Guard
	Company handler.Company
}

// NewSite wires services and the session guard over db.
func NewSite(db *sqlite.DB, hasher auth.Hasher, logger *slog.Logger) *Site {
	users := db.Users()
	sessions := db.Sessions()
	return &Site{
		Content: service.NewContentService(db.Products(), db.Posts(), users),
		Auth:    service.NewAuthService(users, sessions, hasher, sqlite.DefaultSessionTTL, logger),
		Guard:   auth.NewGuard(sessions, users, logger),
		Company: handler.DefaultCompany,
	}
}

// Aliases are the middleware names the modules resolve.
//
//	auth     redirect to /admin/login without a valid session
//	session  attach the user when the cookie is valid, never block
func (s *Site) Aliases() map[string]bootstrap.MiddlewareFunc {
	return map[string]bootstrap.MiddlewareFunc{
		"auth":    s.Guard.Require,
		"session": s.Guard.Optional,
	}
}

// Web registers the public pages.
func (s *Site) Web(app *bootstrap.App, r chi.Router) error {
	requireAuth := app.Resolve("auth")
	if len(requireAuth) == 0 {
		return ErrNoAuthAlias
	}
	pages := handler.NewPageHandler(s.Content, app, s.Company)

	r.Group(func(r chi.Router) {
		r.Use(app.Resolve("session")...)
		r.Get("/", app.Handle(pages.Home))
		r.Get("/products", app.Handle(pages.Products))
		r.Get("/products/{slug}", app.Handle(pages.Product))
		r.Get("/blog", app.Handle(pages.Blog))
		r.Get("/blog/{slug}", app.Handle(pages.Post))
	})
	r.With(requireAuth...).Get("/dashboard", app.Handle(pages.Dashboard))
	return nil
}

// API registers the JSON endpoints.
func (s *Site) API(app *bootstrap.App, r chi.Router) error {
	api := handler.NewAPIHandler(app.Config.Name, app.Config.Env)
	r.Get("/api/health", api.Health)
	return nil
}

// Admin registers sign-in, sign-out and the admin dashboard.
func (s *Site) Admin(app *bootstrap.App, r chi.Router) error {
	requireAuth := app.Resolve("auth")
	if len(requireAuth) == 0 {
		return ErrNoAuthAlias
	}
	login := handler.NewAuthHandler(s.Auth, app, s.Company, app.Config.IsProduction(), app.Logger)
	admin := handler.NewAdminHandler(s.Content, app, s.Company)

	r.Route("/admin", func(r chi.Router) {
		r.With(app.Resolve("session")...).Get("/login", app.Handle(login.ShowLogin))
		r.Post("/login", app.Handle(login.Login))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth...)
			r.Use(app.Group("admin")...)
			r.Get("/", app.Handle(admin.Dashboard))
			r.Get("/logout", app.Handle(login.Logout))
		})
	})
	return nil
}
