package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/altarie/internal/auth"
	"github.com/sakif/altarie/internal/config"
	"github.com/sakif/altarie/internal/respond"
	"github.com/sakif/altarie/internal/server"
	"github.com/sakif/altarie/internal/view"
)

// ErrNoViews is returned by Render when the app has no templates directory.
var ErrNoViews = errors.New("bootstrap: views are not configured")

// Data is what handlers pass to Render.
type Data = view.Data

// HandlerFunc is a handler that reports failure by returning an error.
// App.Handle adapts it to http.HandlerFunc.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// App is a created application.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	BasePath string

	router     *chi.Mux
	views      *view.Engine
	middleware *Middleware
	onError    ErrorHandler
	onShutdown []func() error
}

// Handler is the root router. Tests drive it with httptest.
func (a *App) Handler() http.Handler {
	return a.router
}

// Router is the root router, for providers that add routes.
func (a *App) Router() chi.Router {
	return a.router
}

// Views is the template engine, or nil when the app has no templates.
func (a *App) Views() *view.Engine {
	return a.views
}

// Handle adapts fn; a returned error goes to the error handler.
func (a *App) Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			a.HandleError(w, r, err)
		}
	}
}

// HandleError sends err through the configured error handler.
func (a *App) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	handler := a.onError
	if handler == nil {
		handler = DefaultErrorHandler
	}
	handler(a, w, r, err)
}

// Render writes template name with status. data is merged over the
// values every page gets:
//
//	App          application name
//	Env          NODE_ENV
//	Path         request path
//	CurrentUser  signed-in user, or nil
func (a *App) Render(w http.ResponseWriter, r *http.Request, status int, name string, data view.Data) error {
	if a.views == nil {
		return ErrNoViews
	}

	page := view.Data{
		"App":  a.Config.Name,
		"Env":  a.Config.Env,
		"Path": r.URL.Path,
	}
	if user, ok := auth.UserFromContext(r.Context()); ok {
		page["CurrentUser"] = user
	}
	for k, v := range data {
		page[k] = v
	}

	// Nothing is written until the page rendered, so a template error can
	// still produce a clean error response.
	var buf bytes.Buffer
	if err := a.views.Render(&buf, name, page); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Resolve maps alias names and middleware functions to middleware.
// Unknown names and unsupported values are skipped.
func (a *App) Resolve(items ...any) []MiddlewareFunc {
	return a.middleware.resolve(items)
}

// Group returns the middleware of a named group, resolved.
func (a *App) Group(name string) []MiddlewareFunc {
	return a.middleware.resolve(a.middleware.groups[name])
}

// OnShutdown registers fn to run when Listen returns.
func (a *App) OnShutdown(fn func() error) {
	a.onShutdown = append(a.onShutdown, fn)
}

// Listen serves the app on APP_PORT until ctx is cancelled or the process
// receives SIGINT/SIGTERM.
func (a *App) Listen(ctx context.Context) error {
	srv := server.New(server.DefaultConfig(a.Config.Addr()), a.router, a.Logger)
	for _, fn := range a.onShutdown {
		srv.OnShutdown(fn)
	}
	a.Logger.Info(fmt.Sprintf("%s running at http://localhost:%d", a.Config.Name, a.Config.Port))
	return srv.Start(ctx)
}

// WriteJSON sends data as JSON with status. Encoding failures are logged.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	respond.JSON(w, status, data)
}
