// Package view renders html/template pages inside a shared layout.
//
// TEMPLATE COMPOSITION:
// Every page is parsed together with the layout, the same way a base page
// and its content page are parsed as one set:
//   - layout.html defines {{define "layout"}} and calls {{template "content" .}}
//   - pages/home.html defines {{define "content"}}...{{end}}
//   - partials/*.html are shared snippets available to every page
//
// A page is addressed by its path without the extension: "home",
// "admin/login", "errors/404".
//
// CACHING:
// Parsed sets are cached per page name. With caching off (development) each
// Render re-reads the files, so template edits show up without a restart.
package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a page has no template file.
var ErrNotFound = errors.New("view: template not found")

// Data is what handlers pass to a page.
type Data map[string]any

// Options configure an Engine.
type Options struct {
	// Layout is the layout file name; "layout.html" when empty.
	Layout string
	// Cache keeps parsed templates between renders.
	Cache bool
	// Funcs are added to the default helpers.
	Funcs template.FuncMap
}

// Engine loads templates from an fs.FS.
type Engine struct {
	fsys   fs.FS
	layout string
	cache  bool
	funcs  template.FuncMap

	mu  sync.RWMutex
	set map[string]*template.Template
}

// New creates an Engine over fsys. Nothing is parsed until Load or Render.
func New(fsys fs.FS, opts Options) *Engine {
	layout := opts.Layout
	if layout == "" {
		layout = "layout.html"
	}

	funcs := template.FuncMap{
		"year": func() int { return time.Now().Year() },
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"join":  strings.Join,
		"upper": strings.ToUpper,
	}
	for name, fn := range opts.Funcs {
		funcs[name] = fn
	}

	return &Engine{
		fsys:   fsys,
		layout: layout,
		cache:  opts.Cache,
		funcs:  funcs,
		set:    make(map[string]*template.Template),
	}
}

// Exists reports whether name has a template file.
func (e *Engine) Exists(name string) bool {
	_, err := fs.Stat(e.fsys, e.file(name))
	return err == nil
}

// Pages lists every page name the engine can render, sorted.
func (e *Engine) Pages() ([]string, error) {
	var names []string
	err := fs.WalkDir(e.fsys, "pages", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" {
			return nil
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(p, "pages/"), ".html"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view: listing pages: %w", err)
	}
	return names, nil
}

// Load parses every page once, so a broken template fails startup instead
// of the first request that uses it.
func (e *Engine) Load() error {
	names, err := e.Pages()
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := e.lookup(name); err != nil {
			return err
		}
	}
	return nil
}

// Render executes page name into w. Output is buffered, so a failing
// template writes nothing.
func (e *Engine) Render(w io.Writer, name string, data any) error {
	tmpl, err := e.lookup(name)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	entry := "content"
	if tmpl.Lookup("layout") != nil {
		entry = "layout"
	}
	if err := tmpl.ExecuteTemplate(&buf, entry, data); err != nil {
		return fmt.Errorf("view: rendering %s: %w", name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func (e *Engine) file(name string) string {
	return path.Join("pages", strings.TrimPrefix(name, "/")+".html")
}

func (e *Engine) lookup(name string) (*template.Template, error) {
	if e.cache {
		e.mu.RLock()
		tmpl, ok := e.set[name]
		e.mu.RUnlock()
		if ok {
			return tmpl, nil
		}
	}

	tmpl, err := e.parse(name)
	if err != nil {
		return nil, err
	}

	if e.cache {
		e.mu.Lock()
		e.set[name] = tmpl
		e.mu.Unlock()
	}
	return tmpl, nil
}

func (e *Engine) parse(name string) (*template.Template, error) {
	page := e.file(name)
	if _, err := fs.Stat(e.fsys, page); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	files := []string{}
	if _, err := fs.Stat(e.fsys, e.layout); err == nil {
		files = append(files, e.layout)
	}
	partials, err := fs.Glob(e.fsys, "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("view: listing partials: %w", err)
	}
	files = append(files, partials...)
	files = append(files, page)

	tmpl, err := template.New(path.Base(page)).Funcs(e.funcs).ParseFS(e.fsys, files...)
	if err != nil {
		return nil, fmt.Errorf("view: parsing %s: %w", name, err)
	}
	return tmpl, nil
}
