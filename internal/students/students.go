// Package students is the student-management demo: a JSON API over the
// users table, built with route autoloading, a custom error handler and
// the default not-found handler.
//
//	GET  /api/health          liveness
//	GET  /api/students        every student, newest first
//	POST /api/students        {name, email} → 201 with the new student
//	GET  /api/students/{id}   one student
package students

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/altarie/bootstrap"
	"github.com/sakif/altarie/internal/apperror"
	"github.com/sakif/altarie/internal/repository"
)

// Name is the application name the demo reports.
const Name = "altarie-students"

// Register adds the demo's API module to the autoload set.
func Register(users repository.UserRepository) {
	bootstrap.RegisterRoutes("api", API(users))
}

// API returns the route module serving students from users.
func API(users repository.UserRepository) bootstrap.RouteModule {
	return func(app *bootstrap.App, r chi.Router) error {
		h := &handler{users: users}

		r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
			bootstrap.WriteJSON(w, http.StatusOK, map[string]any{
				"status": "ok",
				"name":   app.Config.Name,
				"env":    app.Config.Env,
				"time":   time.Now().UTC().Format(time.RFC3339Nano),
			})
		})
		r.Route("/api/students", func(r chi.Router) {
			r.Get("/", app.Handle(h.list))
			r.Post("/", app.Handle(h.create))
			r.Get("/{id}", app.Handle(h.show))
		})
		return nil
	}
}

type handler struct {
	users repository.UserRepository
}

// createRequest is the body of POST /api/students.
type createRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) error {
	students, err := h.users.All(r.Context())
	if err != nil {
		return err
	}
	bootstrap.WriteJSON(w, http.StatusOK, map[string]any{"students": students})
	return nil
}

func (h *handler) show(w http.ResponseWriter, r *http.Request) error {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return apperror.NotFound("student", raw)
	}
	student, err := h.users.Find(r.Context(), id)
	if err != nil {
		return err
	}
	bootstrap.WriteJSON(w, http.StatusOK, student)
	return nil
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) error {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperror.ValidationFailed("body", "request body must be JSON")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if req.Name == "" {
		return apperror.ValidationFailed("name", "name is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return apperror.ValidationFailed("email", "email must be a valid address")
	}

	student, err := h.users.Create(r.Context(), req.Name, req.Email)
	if err != nil {
		return err
	}
	bootstrap.WriteJSON(w, http.StatusCreated, student)
	return nil
}

// ErrorBody is what HandleError sends to JSON clients.
type ErrorBody struct {
	Message    string   `json:"message"`
	StatusCode int      `json:"statusCode"`
	Field      string   `json:"field,omitempty"`
	Stack      []string `json:"stack,omitempty"`
}

// HandleError is the demo's error handler. Development requests that
// accept HTML get the framework's detailed page; everything else gets
// ErrorBody, with the stack only in development.
func HandleError(app *bootstrap.App, w http.ResponseWriter, r *http.Request, err error) {
	dev := app.Config.IsDevelopment()
	if dev && bootstrap.WantsHTML(r) {
		bootstrap.DefaultErrorHandler(app, w, r, err)
		return
	}

	status := apperror.StatusCode(err)
	body := ErrorBody{
		Message:    bootstrap.Message(err, dev),
		StatusCode: status,
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		body.Field = appErr.Field
	}
	if dev {
		body.Stack = bootstrap.StackLines(err)
	}
	if status >= http.StatusInternalServerError {
		app.Logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	bootstrap.WriteJSON(w, status, body)
}
