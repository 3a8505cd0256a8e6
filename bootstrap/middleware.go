package bootstrap

import "net/http"

// MiddlewareFunc is the standard net/http middleware shape, the same one
// chi's Use and With take.
type MiddlewareFunc = func(http.Handler) http.Handler

// Middleware is the registry WithMiddleware configures:
//   - aliases name middleware so routes can ask for "auth"
//   - global middleware wraps every request
//   - groups bundle aliases or functions under a name
type Middleware struct {
	aliases map[string]MiddlewareFunc
	global  []MiddlewareFunc
	groups  map[string][]any
}

func newMiddleware() *Middleware {
	return &Middleware{
		aliases: make(map[string]MiddlewareFunc),
		groups:  make(map[string][]any),
	}
}

// Alias adds named middleware. A later alias with the same name wins.
func (m *Middleware) Alias(aliases map[string]MiddlewareFunc) {
	for name, fn := range aliases {
		if fn != nil {
			m.aliases[name] = fn
		}
	}
}

// Append adds global middleware.
func (m *Middleware) Append(fns ...MiddlewareFunc) {
	for _, fn := range fns {
		if fn != nil {
			m.global = append(m.global, fn)
		}
	}
}

// Group adds items (alias names or MiddlewareFunc values) to the named
// group. Repeated calls accumulate.
func (m *Middleware) Group(name string, items ...any) {
	if name == "" {
		return
	}
	for _, item := range items {
		if item != nil {
			m.groups[name] = append(m.groups[name], item)
		}
	}
}

func (m *Middleware) resolve(items []any) []MiddlewareFunc {
	out := []MiddlewareFunc{}
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if fn, ok := m.aliases[v]; ok {
				out = append(out, fn)
			}
		case MiddlewareFunc:
			if v != nil {
				out = append(out, v)
			}
		case []string:
			for _, name := range v {
				if fn, ok := m.aliases[name]; ok {
					out = append(out, fn)
				}
			}
		}
	}
	return out
}
