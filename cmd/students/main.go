// Command students runs the student-management demo API.
//
// It creates its users table on start, so no separate migrate step is
// needed. Routes are autoloaded; errors go through students.HandleError.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/akamensky/argparse"

	"github.com/sakif/altarie/bootstrap"
	"github.com/sakif/altarie/internal/config"
	"github.com/sakif/altarie/internal/database"
	"github.com/sakif/altarie/internal/database/migrate"
	"github.com/sakif/altarie/internal/database/migrations"
	"github.com/sakif/altarie/internal/logger"
	"github.com/sakif/altarie/internal/repository/sqlite"
	"github.com/sakif/altarie/internal/students"
)

func main() {
	parser := argparse.NewParser("students", "Run the student-management demo API")
	base := parser.String("b", "base", &argparse.Options{Help: "Application base directory", Default: ""})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	if err := run(context.Background(), *base); err != nil {
		slog.Error("students stopped", slog.String("error", err.Error()))
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

	if os.Getenv("APP_NAME") == "" {
		os.Setenv("APP_NAME", students.Name)
	}
	cfg := config.Load(base)
	log := logger.New(cfg)

	if err := database.Configure(cfg.DBPath); err != nil {
		return fmt.Errorf("configuring database: %w", err)
	}
	defer database.Close()

	schema := migrate.NewRunner(database.Default(), []migrate.Migration{migrations.CreateUsers()}, log)
	if _, err := schema.Run(ctx); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	students.Register(sqlite.New(database.Default()).Users())

	app, err := bootstrap.Configure(base).
		WithConfig(cfg).
		WithLogger(log).
		WithExceptions(func(e *bootstrap.Exceptions) {
			e.Handler(students.HandleError)
		}).
		Create(ctx)
	if err != nil {
		return err
	}

	app.OnShutdown(database.Close)
	return app.Listen(ctx)
}
