package bootstrap

import (
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/sakif/altarie/internal/config"
)

// ContentSecurityPolicy builds the policy header from HELMET_CSP,
// CSP_CONNECT_SRC and CSP_SCRIPT_INLINE. It returns "" when CSP is off.
func ContentSecurityPolicy(cfg *config.Config) string {
	if !cfg.HelmetCSP {
		return ""
	}

	scriptSrc := []string{"'self'"}
	if cfg.CSPScriptInline {
		scriptSrc = append(scriptSrc, "'unsafe-inline'")
	}
	connectSrc := append([]string{"'self'"}, cfg.CSPConnectSrc...)

	directives := []string{
		"default-src 'self'",
		"base-uri 'self'",
		"font-src 'self' https: data:",
		"form-action 'self'",
		"frame-ancestors 'self'",
		"img-src 'self' data:",
		"object-src 'none'",
		"script-src " + strings.Join(scriptSrc, " "),
		"script-src-attr 'none'",
		"style-src 'self' https: 'unsafe-inline'",
		"connect-src " + strings.Join(connectSrc, " "),
	}
	return strings.Join(directives, "; ")
}

func securityHeaders(cfg *config.Config) MiddlewareFunc {
	s := secure.New(secure.Options{
		ContentSecurityPolicy:   ContentSecurityPolicy(cfg),
		CustomFrameOptionsValue: "SAMEORIGIN",
		ContentTypeNosniff:      true,
		ReferrerPolicy:          "no-referrer",
		STSSeconds:              15552000,
		STSIncludeSubdomains:    true,
		IsDevelopment:           cfg.IsDevelopment(),
	})
	return s.Handler
}

// corsHandler allows the CORS_ORIGIN list. "*" or "true" allows any origin.
func corsHandler(cfg *config.Config) MiddlewareFunc {
	opts := cors.Options{
		AllowedMethods: []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}

	origins := cfg.CORSOrigins
	anyOrigin := len(origins) == 0
	for _, o := range origins {
		if o == "*" || strings.EqualFold(o, "true") {
			anyOrigin = true
		}
	}
	if anyOrigin {
		opts.AllowedOrigins = []string{"*"}
	} else {
		opts.AllowedOrigins = origins
		opts.AllowCredentials = true
	}
	return cors.Handler(opts)
}

// rateLimiter limits each client IP to rl.Max requests per rl.Window.
// Addresses on the allowlist are never limited.
func rateLimiter(rl config.RateLimit) MiddlewareFunc {
	allow := make(map[string]bool, len(rl.Allowlist))
	for _, ip := range rl.Allowlist {
		allow[ip] = true
	}

	limit := httprate.Limit(rl.Max, rl.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			WriteJSON(w, http.StatusTooManyRequests, ErrorPayload{
				Message:    "Too Many Requests",
				StatusCode: http.StatusTooManyRequests,
			})
		}),
	)

	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allow[clientIP(r)] {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// staticFiles serves existing files under dir for GET and HEAD requests
// below prefix. Anything else, missing files included, falls through.
func staticFiles(prefix, dir string) MiddlewareFunc {
	fileServer := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if (r.Method != http.MethodGet && r.Method != http.MethodHead) ||
				!strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			rel := path.Clean("/" + strings.TrimPrefix(r.URL.Path, prefix))
			info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
			if err != nil || info.IsDir() {
				next.ServeHTTP(w, r)
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	}
}
