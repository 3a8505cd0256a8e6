package bootstrap

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/xid"

	"github.com/sakif/altarie/internal/apperror"
	"github.com/sakif/altarie/internal/view"
)

// ErrorHandler writes the response for an error returned by a handler or
// recovered from a panic.
type ErrorHandler func(app *App, w http.ResponseWriter, r *http.Request, err error)

// Exceptions is configured through WithExceptions.
type Exceptions struct {
	handler      ErrorHandler
	notFound     http.HandlerFunc
	notFoundView string
}

// Handler replaces the default error handler.
func (e *Exceptions) Handler(h ErrorHandler) {
	e.handler = h
}

// NotFound renders template name for unmatched routes (when the client does
// not ask for JSON).
func (e *Exceptions) NotFound(name string) {
	e.notFoundView = name
}

// NotFoundHandler replaces not-found handling entirely.
func (e *Exceptions) NotFoundHandler(h http.HandlerFunc) {
	e.notFound = h
}

func (e *Exceptions) notFoundHandler(app *App) http.HandlerFunc {
	if e.notFound != nil {
		return e.notFound
	}
	name := e.notFoundView
	if name == "" {
		name = "errors/404"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		app.NotFound(w, r, name)
	}
}

// NotFound answers 404. JSON clients get {message, statusCode}; everyone
// else gets the template, or plain text when the template is missing.
func (a *App) NotFound(w http.ResponseWriter, r *http.Request, name string) {
	if WantsJSON(r) {
		WriteJSON(w, http.StatusNotFound, ErrorPayload{
			Message:    "Not Found",
			StatusCode: http.StatusNotFound,
		})
		return
	}

	if a.views != nil && a.views.Exists(name) {
		err := a.Render(w, r, http.StatusNotFound, name, view.Data{
			"Title": "Not Found",
			"URL":   r.URL.RequestURI(),
		})
		if err == nil {
			return
		}
		a.Logger.Error("rendering not-found page failed", slog.String("error", err.Error()))
	}
	http.Error(w, "Not Found", http.StatusNotFound)
}

// ErrorPayload is the JSON error body.
type ErrorPayload struct {
	Message    string   `json:"message"`
	StatusCode int      `json:"statusCode"`
	Ref        string   `json:"ref,omitempty"`
	Stack      []string `json:"stack,omitempty"`
}

// DefaultErrorHandler is used when WithExceptions sets no handler.
//
// RESPONSE:
//   - development and an HTML Accept header: an HTML page with the stack
//   - otherwise JSON ErrorPayload; Stack only in development
//
// Server errors get an xid reference that is logged with the error and
// returned as ref. In production their message is always
// "Internal Server Error".
func DefaultErrorHandler(app *App, w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.StatusCode(err)
	dev := app.Config.IsDevelopment()

	payload := ErrorPayload{
		Message:    Message(err, dev),
		StatusCode: status,
	}
	if status >= http.StatusInternalServerError {
		payload.Ref = xid.New().String()
		app.Logger.Error("request failed",
			slog.String("ref", payload.Ref),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("requestID", chimiddleware.GetReqID(r.Context())),
			slog.String("error", err.Error()),
		)
		if !dev {
			payload.Message = "Internal Server Error"
		}
	}
	if dev {
		payload.Stack = StackLines(err)
	}

	if dev && WantsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if err := errorPage.Execute(w, payload); err != nil {
			app.Logger.Error("rendering error page failed", slog.String("error", err.Error()))
		}
		return
	}
	WriteJSON(w, status, payload)
}

// Message is the client-facing text for err. Typed errors expose their own
// message; in development so does everything else.
func Message(err error, dev bool) string {
	var appErr *apperror.AppError
	var httpErr *apperror.HTTPError
	if dev && !errors.As(err, &appErr) && !errors.As(err, &httpErr) {
		return err.Error()
	}
	return apperror.PublicMessage(err)
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// StackLines returns the message followed by one line per frame of the
// deepest stack trace in err's chain. Errors without a recorded stack
// yield just the message.
func StackLines(err error) []string {
	lines := []string{err.Error()}

	var deepest stackTracer
	for e := err; e != nil; e = errors.Unwrap(e) {
		if st, ok := e.(stackTracer); ok {
			deepest = st
		}
	}
	if deepest == nil {
		return lines
	}
	for _, f := range deepest.StackTrace() {
		lines = append(lines, fmt.Sprintf("at %n (%s:%d)", f, f, f))
	}
	return lines
}

// WantsJSON reports whether the Accept header asks for JSON.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "json")
}

// WantsHTML reports whether the Accept header includes text/html.
func WantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

var errorPage = template.Must(template.New("error").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.StatusCode}} {{.Message}}</title>
<style>
body{font-family:ui-monospace,Menlo,Consolas,monospace;margin:0;background:#111827;color:#e5e7eb}
header{padding:24px 32px;background:#7f1d1d}
h1{margin:0;font-size:20px}
p{margin:8px 0 0;opacity:.8}
ol{margin:0;padding:24px 48px;line-height:1.6}
li:first-child{color:#fca5a5}
</style>
</head>
<body>
<header>
<h1>{{.StatusCode}} · {{.Message}}</h1>
{{if .Ref}}<p>ref {{.Ref}}</p>{{end}}
</header>
<ol>{{range .Stack}}<li>{{.}}</li>{{end}}</ol>
</body>
</html>
`))
