package students_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/altarie/bootstrap"
	"github.com/sakif/altarie/internal/config"
	"github.com/sakif/altarie/internal/database"
	"github.com/sakif/altarie/internal/database/migrate"
	"github.com/sakif/altarie/internal/database/migrations"
	"github.com/sakif/altarie/internal/logger"
	"github.com/sakif/altarie/internal/repository/sqlite"
	"github.com/sakif/altarie/internal/students"
)

func newApp(t *testing.T, env string) *bootstrap.App {
	t.Helper()

	c := database.NewConnector(filepath.Join(t.TempDir(), "students.sqlite"))
	t.Cleanup(func() { c.Close() })
	runner := migrate.NewRunner(c, []migrate.Migration{migrations.CreateUsers()}, logger.Discard())
	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	app, err := bootstrap.Configure(t.TempDir()).
		WithConfig(&config.Config{Name: students.Name, Env: env, CORSOrigins: []string{"*"}}).
		WithLogger(logger.Discard()).
		WithRouting(bootstrap.Routing{API: students.API(sqlite.New(c).Users())}).
		WithExceptions(func(e *bootstrap.Exceptions) { e.Handler(students.HandleError) }).
		Create(context.Background())
	require.NoError(t, err)
	return app
}

func call(app *bootstrap.App, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	app := newApp(t, config.EnvTest)

	rec := call(app, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, students.Name, body["name"])
}

func TestCreateListShow(t *testing.T) {
	app := newApp(t, config.EnvTest)

	rec := call(app, http.MethodPost, "/api/students", `{"name":"Ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	decode(t, rec, &created)
	assert.Equal(t, "Ada", created.Name)
	require.NotZero(t, created.ID)

	rec = call(app, http.MethodGet, "/api/students", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Students []map[string]any `json:"students"`
	}
	decode(t, rec, &list)
	assert.Len(t, list.Students, 1)

	rec = call(app, http.MethodGet, "/api/students/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestErrors(t *testing.T) {
	app := newApp(t, config.EnvTest)
	require.Equal(t, http.StatusCreated,
		call(app, http.MethodPost, "/api/students", `{"name":"Ada","email":"ada@example.com"}`).Code)

	tests := []struct {
		name, method, target, body string
		status                     int
		field                      string
	}{
		{"bad json", http.MethodPost, "/api/students", `{`, http.StatusBadRequest, "body"},
		{"missing name", http.MethodPost, "/api/students", `{"email":"x@example.com"}`, http.StatusBadRequest, "name"},
		{"bad email", http.MethodPost, "/api/students", `{"name":"X","email":"nope"}`, http.StatusBadRequest, "email"},
		{"duplicate", http.MethodPost, "/api/students", `{"name":"Ada","email":"ada@example.com"}`, http.StatusConflict, ""},
		{"unknown id", http.MethodGet, "/api/students/99", "", http.StatusNotFound, ""},
		{"bad id", http.MethodGet, "/api/students/abc", "", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(app, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			var body students.ErrorBody
			decode(t, rec, &body)
			assert.Equal(t, tt.status, body.StatusCode)
			assert.Equal(t, tt.field, body.Field)
			assert.Empty(t, body.Stack)
		})
	}
}

func TestErrors_DevelopmentIncludesStack(t *testing.T) {
	app := newApp(t, config.EnvDevelopment)

	rec := call(app, http.MethodPost, "/api/students", `{`, "Accept", "application/json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body students.ErrorBody
	decode(t, rec, &body)
	assert.NotEmpty(t, body.Stack)

	rec = call(app, http.MethodPost, "/api/students", `{`, "Accept", "text/html")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestDefaultNotFound(t *testing.T) {
	app := newApp(t, config.EnvTest)

	rec := call(app, http.MethodGet, "/nowhere", "", "Accept", "application/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body bootstrap.ErrorPayload
	decode(t, rec, &body)
	assert.Equal(t, "Not Found", body.Message)
}

func TestRegister_Autoloads(t *testing.T) {
	c := database.NewConnector(filepath.Join(t.TempDir(), "auto.sqlite"))
	t.Cleanup(func() { c.Close() })

	students.Register(sqlite.New(c).Users())
	assert.Contains(t, bootstrap.RegisteredRoutes(), "api")
}
