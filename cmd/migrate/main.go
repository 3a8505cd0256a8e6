// Command migrate applies, rolls back or lists the site's database
// migrations.
//
//	migrate             apply pending migrations as a new batch
//	migrate --rollback  revert the latest batch
//	migrate --status    list applied and pending migrations
//
// Any failure closes the database and exits with status 1.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/akamensky/argparse"

	"github.com/sakif/altarie/internal/config"
	"github.com/sakif/altarie/internal/database"
	"github.com/sakif/altarie/internal/database/migrations"
	"github.com/sakif/altarie/internal/logger"
)

type options struct {
	rollback bool
	status   bool
}

func main() {
	parser := argparse.NewParser("migrate", "Run the database migrations")
	rollback := parser.Flag("r", "rollback", &argparse.Options{Help: "Revert the latest batch", Default: false})
	status := parser.Flag("s", "status", &argparse.Options{Help: "List applied and pending migrations", Default: false})
	base := parser.String("b", "base", &argparse.Options{Help: "Application base directory", Default: ""})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	dir := *base
	if dir == "" {
		dir, _ = os.Getwd()
	}
	cfg := config.Load(dir)
	log := logger.New(cfg)

	if err := database.Configure(cfg.DBPath); err != nil {
		log.Error("configuring database failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err := run(context.Background(), cfg, database.Default(), options{rollback: *rollback, status: *status}, os.Stdout, log)
	closeErr := database.Close()
	if err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if closeErr != nil {
		log.Error("closing database failed", slog.String("error", closeErr.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, db database.Provider, opts options, out io.Writer, log *slog.Logger) error {
	runner := migrations.NewRunner(cfg, db, log)

	switch {
	case opts.status:
		records, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		pending, err := runner.Pending(ctx)
		if err != nil {
			return err
		}
		for _, rec := range records {
			fmt.Fprintf(out, "[x] %-45s batch %d  %s\n", rec.Name, rec.Batch, rec.MigratedAt)
		}
		for _, name := range pending {
			fmt.Fprintf(out, "[ ] %s\n", name)
		}
		return nil

	case opts.rollback:
		reverted, err := runner.Rollback(ctx)
		if err != nil {
			return err
		}
		if len(reverted) == 0 {
			fmt.Fprintln(out, "Nothing to roll back.")
			return nil
		}
		for _, name := range reverted {
			fmt.Fprintf(out, "Rolled back: %s\n", name)
		}
		return nil

	default:
		applied, err := runner.Run(ctx)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(out, "Nothing to migrate.")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintf(out, "Migrated: %s\n", name)
		}
		return nil
	}
}
