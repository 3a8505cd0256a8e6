// Command altarie creates new Altarie projects.
//
//	altarie new <project-name> [--module path] [--framework-version v] [--framework-path dir] [--skip-install]
//
// Generated projects require github.com/sakif/altarie at the version this
// binary was built from. --framework-path points go.mod at a local checkout
// instead.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/akamensky/argparse"

	"github.com/sakif/altarie/internal/scaffold"
)

func main() {
	parser := argparse.NewParser("altarie", "Altarie project tools")
	newCmd := parser.NewCommand("new", "Create a new project in ./<project-name>")
	name := newCmd.StringPositional(&argparse.Options{Help: "Project name"})
	module := newCmd.String("m", "module", &argparse.Options{Help: "Go module path (defaults to the project name)", Default: ""})
	fwVersion := newCmd.String("", "framework-version", &argparse.Options{Help: "Version of github.com/sakif/altarie to require", Default: ""})
	fwPath := newCmd.String("", "framework-path", &argparse.Options{Help: "Local altarie checkout to use through a replace directive", Default: ""})
	skipInstall := newCmd.Flag("", "skip-install", &argparse.Options{Help: "Do not run go mod tidy", Default: false})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}
	if !newCmd.Happened() {
		fmt.Print(parser.Usage(nil))
		os.Exit(1)
	}
	if *name == "" {
		fmt.Println("Usage: altarie new <project-name>")
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	fmt.Printf("Creating new Altarie project in %s...\n", *name)
	dir, err := scaffold.New(context.Background(), cwd, *name, scaffold.Options{
		Module:           *module,
		FrameworkVersion: *fwVersion,
		FrameworkPath:    *fwPath,
		SkipInstall:      *skipInstall,
		Logger:           logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("Project %s created in %s\n", *name, dir)
	fmt.Println("Next steps:")
	fmt.Printf("  cd %s\n", *name)
	fmt.Println("  cp .env.example .env")
	fmt.Println("  go run ./cmd/server")
}
