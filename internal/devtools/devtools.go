// Package devtools serves inspection endpoints for development:
//
//	GET /_altarie/routes   every registered route with its middleware
//	GET /_altarie/env      the process environment with secrets masked
//
// They are registered only when NODE_ENV is development.
package devtools

import (
	"net/http"
	"reflect"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/altarie/internal/respond"
)

const (
	RoutesPath = "/_altarie/routes"
	EnvPath    = "/_altarie/env"
)

// Route is one entry of the routes listing.
type Route struct {
	Method      string   `json:"method"`
	URL         string   `json:"url"`
	Middlewares []string `json:"middlewares"`
}

var sensitiveKey = regexp.MustCompile(`(?i)KEY|TOKEN|SECRET|PASS|PWD`)

// Register adds the endpoints to r. routes is walked on every request, so
// routes added later are listed too. environ supplies KEY=VALUE pairs,
// normally os.Environ.
func Register(r chi.Router, routes chi.Routes, environ func() []string) {
	r.Get(RoutesPath, func(w http.ResponseWriter, req *http.Request) {
		list, err := Routes(routes)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]any{"routes": list})
	})

	r.Get(EnvPath, func(w http.ResponseWriter, req *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]any{"env": MaskedEnv(environ())})
	})
}

// Routes lists every route in routes, sorted by URL then method.
func Routes(routes chi.Routes) ([]Route, error) {
	list := []Route{}
	err := chi.Walk(routes, func(method, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		names := make([]string, 0, len(middlewares))
		for _, mw := range middlewares {
			names = append(names, funcName(mw))
		}
		list = append(list, Route{
			Method:      method,
			URL:         strings.Replace(route, "/*/", "/", -1),
			Middlewares: names,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].URL != list[j].URL {
			return list[i].URL < list[j].URL
		}
		return list[i].Method < list[j].Method
	})
	return list, nil
}

// MaskedEnv turns KEY=VALUE pairs into a map, masking values whose key
// looks secret.
func MaskedEnv(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		if sensitiveKey.MatchString(key) {
			value = Mask(value)
		}
		out[key] = value
	}
	return out
}

// Mask hides a secret: up to 4 characters become all '*', longer values
// keep their first and last two characters around "***".
func Mask(value string) string {
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + "***" + string(runes[len(runes)-2:])
}

func funcName(fn any) string {
	name := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
