// Command server runs the company-profile and blog site.
//
// The process reads .env from the base directory (the working directory
// unless --base is given), opens the SQLite database and serves until
// SIGINT or SIGTERM. Schema changes are applied with cmd/migrate; the
// server only warns when migrations are pending.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/akamensky/argparse"

	"github.com/sakif/altarie/bootstrap"
	"github.com/sakif/altarie/internal/auth"
	"github.com/sakif/altarie/internal/config"
	"github.com/sakif/altarie/internal/database"
	"github.com/sakif/altarie/internal/database/migrations"
	"github.com/sakif/altarie/internal/logger"
	"github.com/sakif/altarie/internal/repository/sqlite"
	"github.com/sakif/altarie/internal/routes"
)

func main() {
	parser := argparse.NewParser("server", "Run the Altarie company-profile site")
	base := parser.String("b", "base", &argparse.Options{Help: "Application base directory", Default: ""})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	if err := run(context.Background(), *base); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, base string) error {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		base = wd
	}

	cfg := config.Load(base)
	log := logger.New(cfg)

	if err := database.Configure(cfg.DBPath); err != nil {
		return fmt.Errorf("configuring database: %w", err)
	}
	defer database.Close()

	hasher := auth.NewHasher(cfg.PasswordHasher, cfg.Admin.Salt)
	site := routes.NewSite(sqlite.New(database.Default()), hasher, log)

	app, err := bootstrap.Configure(base).
		WithConfig(cfg).
		WithLogger(log).
		WithMiddleware(func(m *bootstrap.Middleware) {
			m.Alias(site.Aliases())
		}).
		WithRouting(bootstrap.Routing{
			Web:    site.Web,
			API:    site.API,
			Extra:  []bootstrap.RouteModule{site.Admin},
			Health: "/up",
		}).
		WithExceptions(func(e *bootstrap.Exceptions) {
			e.NotFound("errors/404")
		}).
		WithProviders(warnPendingMigrations).
		Create(ctx)
	if err != nil {
		return err
	}

	app.OnShutdown(database.Close)
	return app.Listen(ctx)
}

// warnPendingMigrations logs migrations that cmd/migrate has not applied yet.
func warnPendingMigrations(ctx context.Context, app *bootstrap.App) error {
	pending, err := migrations.NewRunner(app.Config, database.Default(), app.Logger).Pending(ctx)
	if err != nil {
		return fmt.Errorf("checking migrations: %w", err)
	}
	if len(pending) > 0 {
		app.Logger.Warn("database has pending migrations; run cmd/migrate",
			slog.Int("count", len(pending)),
			slog.Any("names", pending),
		)
	}
	return nil
}
