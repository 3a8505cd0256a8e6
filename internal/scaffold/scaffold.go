// Package scaffold creates a new application from the embedded project
// template.
//
// TEMPLATE:
// Files under template/ are copied into the new directory. Files ending in
// .tmpl lose the suffix and are executed with text/template against a
// Project, so go.mod.tmpl becomes go.mod with the chosen module path. Go
// sources carry the suffix too, which keeps them out of this module's build.
//
// The generated server is built with the bootstrap package, so go.mod
// requires this module. A local checkout can stand in for a published
// version through Options.FrameworkPath, which adds a replace directive.
package scaffold

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"regexp"
	"runtime/debug"
	"strings"
	"text/template"
)

//go:embed all:template
var embedded embed.FS

// Template is the embedded project template.
func Template() fs.FS {
	sub, err := fs.Sub(embedded, "template")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	return sub
}

// FrameworkModule is the module path generated projects require.
const FrameworkModule = "github.com/sakif/altarie"

// unversioned is required when the framework is replaced by a local path.
const unversioned = "v0.0.0"

var (
	ErrInvalidName   = errors.New("scaffold: project name may contain letters, digits, '-', '_' and '.', and must not start with '.' or '-'")
	ErrTargetExists  = errors.New("scaffold: target directory exists and is not empty")
	ErrFrameworkPath = errors.New("scaffold: framework path has no go.mod")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._-]*$`)

// ValidateName checks a project name before it becomes a directory.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Project is the data .tmpl files are executed with.
type Project struct {
	Name      string
	Module    string
	Framework Framework
}

// Framework is the altarie dependency written to the project's go.mod.
type Framework struct {
	Module  string
	Version string
	// Path, when set, is an absolute directory that replaces Module.
	Path string
}

// FrameworkVersion is the version of this module the running binary was
// built from, or "" for a development build.
func FrameworkVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Path != FrameworkModule {
		return ""
	}
	if v := info.Main.Version; strings.HasPrefix(v, "v") {
		return v
	}
	return ""
}

// framework resolves the dependency from opts. A path wins over a version.
func framework(opts Options) (Framework, error) {
	fw := Framework{Module: FrameworkModule, Version: opts.FrameworkVersion}
	if opts.FrameworkPath != "" {
		abs, err := filepath.Abs(opts.FrameworkPath)
		if err != nil {
			return fw, fmt.Errorf("scaffold: framework path: %w", err)
		}
		if _, err := os.Stat(filepath.Join(abs, "go.mod")); err != nil {
			return fw, fmt.Errorf("%w: %s", ErrFrameworkPath, abs)
		}
		fw.Path = filepath.ToSlash(abs)
		fw.Version = unversioned
		return fw, nil
	}
	if fw.Version == "" {
		fw.Version = FrameworkVersion()
	}
	if fw.Version == "" {
		fw.Version = unversioned
	}
	return fw, nil
}

// Installer fetches the new project's dependencies.
type Installer interface {
	Install(ctx context.Context, dir string) error
}

// GoModTidy runs `go mod tidy` in the project directory.
type GoModTidy struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (g GoModTidy) Install(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, "go", "mod", "tidy")
	cmd.Dir = dir
	cmd.Stdout = g.Stdout
	cmd.Stderr = g.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("scaffold: go mod tidy: %w", err)
	}
	return nil
}

// Options tune New. The zero value uses the project name as module path,
// requires the framework version this binary was built from and installs
// with GoModTidy writing to stdout and stderr.
type Options struct {
	Module           string
	FrameworkVersion string
	FrameworkPath    string
	SkipInstall      bool
	Installer        Installer
	Template         fs.FS
	Logger           *slog.Logger
}

// New creates <parent>/<name> from the template and returns its path.
func New(ctx context.Context, parent, name string, opts Options) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	target := filepath.Join(parent, name)
	empty, err := isEmptyOrMissing(target)
	if err != nil {
		return "", err
	}
	if !empty {
		return "", fmt.Errorf("%w: %s", ErrTargetExists, target)
	}

	fw, err := framework(opts)
	if err != nil {
		return "", err
	}
	project := Project{Name: name, Module: opts.Module, Framework: fw}
	if project.Module == "" {
		project.Module = name
	}
	tmpl := opts.Template
	if tmpl == nil {
		tmpl = Template()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	log.Info("creating project",
		slog.String("dir", target),
		slog.String("module", project.Module),
		slog.String("framework", fw.Module+"@"+fw.Version),
	)
	if fw.Version == unversioned && fw.Path == "" {
		log.Warn("framework version unknown; set a version or a local framework path before installing")
	}
	if err := Render(tmpl, target, project); err != nil {
		return "", err
	}

	if opts.SkipInstall {
		return target, nil
	}
	installer := opts.Installer
	if installer == nil {
		installer = GoModTidy{Stdout: os.Stdout, Stderr: os.Stderr}
	}
	log.Info("installing dependencies", slog.String("dir", target))
	if err := installer.Install(ctx, target); err != nil {
		return target, err
	}
	return target, nil
}

// Render writes every file of fsys below target.
func Render(fsys fs.FS, target string, project Project) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dest := filepath.Join(target, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("scaffold: reading %s: %w", p, err)
		}
		if path.Ext(p) == ".tmpl" {
			dest = strings.TrimSuffix(dest, ".tmpl")
			if data, err = execute(p, data, project); err != nil {
				return err
			}
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("scaffold: writing %s: %w", dest, err)
		}
		return nil
	})
}

func execute(name string, data []byte, project Project) ([]byte, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("scaffold: parsing %s: %w", name, err)
	}
	var b strings.Builder
	if err := t.Execute(&b, project); err != nil {
		return nil, fmt.Errorf("scaffold: executing %s: %w", name, err)
	}
	return []byte(b.String()), nil
}

func isEmptyOrMissing(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("scaffold: reading %s: %w", dir, err)
	}
	return len(entries) == 0, nil
}
