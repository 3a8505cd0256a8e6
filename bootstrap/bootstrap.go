// Package bootstrap assembles an application from its parts: config,
// request plumbing, security headers, CORS, rate limiting, views, routes,
// error pages and providers.
//
// USAGE:
//
//	app, err := bootstrap.Configure(basePath).
//	    WithRouting(bootstrap.Routing{Web: site.Web, API: site.API, Health: "/up"}).
//	    WithMiddleware(func(m *bootstrap.Middleware) {
//	        m.Alias(map[string]bootstrap.MiddlewareFunc{"auth": guard.Require})
//	    }).
//	    WithExceptions(func(e *bootstrap.Exceptions) {
//	        e.NotFound("errors/404")
//	    }).
//	    Create(ctx)
//
// REGISTRATION ORDER (Create):
//  1. request id, real IP (TRUST_PROXY), request logger, panic recovery
//  2. static files under /static/
//  3. security headers
//  4. CORS
//  5. views
//  6. rate limiting (RATE_LIMIT_ENABLED)
//  7. global middleware from WithMiddleware
//  8. route modules, explicit or autoloaded
//  9. error handler
//  10. not-found handler, also used for a path served under other methods
//  11. providers
//  12. development inspection endpoints
//
// Steps 1-7 are middleware and therefore all run before any route, which
// is also what chi requires.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/altarie/internal/config"
	"github.com/sakif/altarie/internal/devtools"
	"github.com/sakif/altarie/internal/logger"
	"github.com/sakif/altarie/internal/middleware"
	"github.com/sakif/altarie/internal/view"
)

// RouteModule registers a group of routes. It receives the app for
// Handle, Render and Resolve.
type RouteModule func(app *App, r chi.Router) error

// Provider runs after routes are registered; it may add routes of its own
// or set up application services.
type Provider func(ctx context.Context, app *App) error

// Routing lists the route modules in registration order. When Web, API and
// Extra are all empty, the modules added with RegisterRoutes are used.
type Routing struct {
	Web    RouteModule
	API    RouteModule
	Extra  []RouteModule
	Health string
}

func (r Routing) explicit() []RouteModule {
	var out []RouteModule
	if r.Web != nil {
		out = append(out, r.Web)
	}
	if r.API != nil {
		out = append(out, r.API)
	}
	for _, m := range r.Extra {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Builder collects the application's configuration. Nothing is built until
// Create.
type Builder struct {
	basePath   string
	cfg        *config.Config
	logger     *slog.Logger
	routing    Routing
	middleware *Middleware
	exceptions *Exceptions
	providers  []Provider
	templates  string
	static     string
}

// Configure starts a builder rooted at basePath. An empty basePath means
// the working directory.
func Configure(basePath string) *Builder {
	if basePath == "" {
		basePath, _ = os.Getwd()
	}
	return &Builder{
		basePath:   basePath,
		middleware: newMiddleware(),
		exceptions: &Exceptions{},
		templates:  filepath.Join(basePath, "web", "templates"),
		static:     filepath.Join(basePath, "web", "static"),
	}
}

func (b *Builder) WithRouting(routing Routing) *Builder {
	b.routing = routing
	return b
}

// WithMiddleware calls configure with the middleware registry. Calls
// accumulate.
func (b *Builder) WithMiddleware(configure func(m *Middleware)) *Builder {
	if configure != nil {
		configure(b.middleware)
	}
	return b
}

func (b *Builder) WithExceptions(configure func(e *Exceptions)) *Builder {
	if configure != nil {
		configure(b.exceptions)
	}
	return b
}

func (b *Builder) WithProviders(providers ...Provider) *Builder {
	b.providers = append(b.providers, providers...)
	return b
}

// WithConfig skips environment loading and uses cfg as is.
func (b *Builder) WithConfig(cfg *config.Config) *Builder {
	b.cfg = cfg
	return b
}

// WithLogger replaces the logger built from the config.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithViews overrides where templates and static files are read from.
// An empty argument keeps the default under <base>/web.
func (b *Builder) WithViews(templatesDir, staticDir string) *Builder {
	if templatesDir != "" {
		b.templates = templatesDir
	}
	if staticDir != "" {
		b.static = staticDir
	}
	return b
}

// Create resolves the environment and builds the application.
func (b *Builder) Create(ctx context.Context) (*App, error) {
	cfg := b.cfg
	if cfg == nil {
		cfg = config.Load(b.basePath)
	}
	log := b.logger
	if log == nil {
		log = logger.New(cfg)
	}

	app := &App{
		Config:     cfg,
		Logger:     log,
		BasePath:   b.basePath,
		router:     chi.NewRouter(),
		middleware: b.middleware,
		onError:    b.exceptions.handler,
	}
	r := app.router

	// 1. request plumbing
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recover(app.HandleError))

	// 2. static files
	if isDir(b.static) {
		r.Use(staticFiles("/static/", b.static))
	}

	// 3, 4. security headers and CORS
	r.Use(securityHeaders(cfg))
	r.Use(corsHandler(cfg))

	// 5. views
	if isDir(b.templates) {
		app.views = view.New(os.DirFS(b.templates), view.Options{Cache: !cfg.IsDevelopment()})
		if err := app.views.Load(); err != nil {
			return nil, fmt.Errorf("bootstrap: loading templates: %w", err)
		}
	}

	// 6. rate limiting
	if cfg.RateLimit.Enabled {
		r.Use(rateLimiter(cfg.RateLimit))
	}

	// 7. global middleware
	for _, mw := range b.middleware.global {
		r.Use(mw)
	}

	// 8. routes
	modules := b.routing.explicit()
	if len(modules) == 0 {
		modules = registeredRoutes()
	}
	for _, module := range modules {
		if err := module(app, r); err != nil {
			return nil, fmt.Errorf("bootstrap: registering routes: %w", err)
		}
	}
	if b.routing.Health != "" {
		app.registerHealth(b.routing.Health)
	}

	// 9, 10. error and not-found handlers
	if app.onError == nil {
		app.onError = DefaultErrorHandler
	}
	notFound := b.exceptions.notFoundHandler(app)
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	// 11. providers
	for _, provider := range b.providers {
		if err := provider(ctx, app); err != nil {
			return nil, fmt.Errorf("bootstrap: provider: %w", err)
		}
	}

	// 12. development tools
	if cfg.IsDevelopment() {
		devtools.Register(r, r, os.Environ)
	}

	log.Debug("application created",
		slog.String("env", cfg.Env),
		slog.String("base", b.basePath),
		slog.Int("modules", len(modules)),
	)
	return app, nil
}

// registerHealth adds the liveness route. A bad pattern is logged, never fatal.
func (a *App) registerHealth(pattern string) {
	defer func() {
		if rec := recover(); rec != nil {
			a.Logger.Warn("health route not registered",
				slog.String("pattern", pattern),
				slog.Any("error", rec),
			)
		}
	}()
	a.router.Get(pattern, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"name":   a.Config.Name,
			"time":   time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
