package handler

import (
	"net/http"
	"time"

	"github.com/sakif/altarie/internal/respond"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	Name   string `json:"name"`
	Env    string `json:"env"`
	Time   string `json:"time"`
}

// APIHandler serves the JSON API.
type APIHandler struct {
	name string
	env  string
	now  func() time.Time
}

func NewAPIHandler(name, env string) *APIHandler {
	return &APIHandler{name: name, env: env, now: time.Now}
}

// Health reports liveness with the app name and environment.
//
// HTTP: GET /api/health
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Name:   h.name,
		Env:    h.env,
		Time:   h.now().UTC().Format(time.RFC3339Nano),
	})
}
