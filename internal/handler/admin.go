package handler

import (
	"net/http"

	"github.com/sakif/altarie/internal/auth"
	"github.com/sakif/altarie/internal/service"
	"github.com/sakif/altarie/internal/view"
)

// AdminHandler serves the signed-in area. Every route runs behind "auth".
type AdminHandler struct {
	content *service.ContentService
	views   Renderer
	company Company
}

func NewAdminHandler(content *service.ContentService, views Renderer, company Company) *AdminHandler {
	return &AdminHandler{content: content, views: views, company: company}
}

// Dashboard shows the product, post and user counters with both lists.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) error {
	d, err := h.content.Dashboard(r.Context())
	if err != nil {
		return err
	}
	user, _ := auth.UserFromContext(r.Context())
	return h.views.Render(w, r, http.StatusOK, "admin/dashboard", page(h.company, r, view.Data{
		"Title":    "Admin",
		"User":     user,
		"Stats":    d.Stats,
		"Products": d.Products,
		"Posts":    d.Posts,
	}))
}
