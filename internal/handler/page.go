package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/altarie/internal/service"
	"github.com/sakif/altarie/internal/view"
)

// PageHandler serves the public company-profile pages.
//
//	GET /                 home: company, recent products and posts
//	GET /dashboard        signed-in landing page
//	GET /products         catalogue
//	GET /products/{slug}  product detail
//	GET /blog             article list
//	GET /blog/{slug}      article
type PageHandler struct {
	content *service.ContentService
	views   Renderer
	company Company
}

func NewPageHandler(content *service.ContentService, views Renderer, company Company) *PageHandler {
	return &PageHandler{content: content, views: views, company: company}
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) error {
	home, err := h.content.Home(r.Context())
	if err != nil {
		return err
	}
	return h.views.Render(w, r, http.StatusOK, "home", page(h.company, r, view.Data{
		"Title":    h.company.Name,
		"Products": home.Products,
		"Posts":    home.Posts,
	}))
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) error {
	return h.views.Render(w, r, http.StatusOK, "dashboard", page(h.company, r, view.Data{
		"Title": "Dashboard",
	}))
}

func (h *PageHandler) Products(w http.ResponseWriter, r *http.Request) error {
	products, err := h.content.Products(r.Context())
	if err != nil {
		return err
	}
	return h.views.Render(w, r, http.StatusOK, "products", page(h.company, r, view.Data{
		"Title":    "Products",
		"Products": products,
	}))
}

func (h *PageHandler) Product(w http.ResponseWriter, r *http.Request) error {
	product, err := h.content.Product(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return renderNotFound(h.views, h.company, w, r, err)
	}
	return h.views.Render(w, r, http.StatusOK, "product", page(h.company, r, view.Data{
		"Title":   product.Name,
		"Product": product,
	}))
}

func (h *PageHandler) Blog(w http.ResponseWriter, r *http.Request) error {
	posts, err := h.content.Posts(r.Context())
	if err != nil {
		return err
	}
	return h.views.Render(w, r, http.StatusOK, "blog", page(h.company, r, view.Data{
		"Title": "Blog",
		"Posts": posts,
	}))
}

func (h *PageHandler) Post(w http.ResponseWriter, r *http.Request) error {
	post, err := h.content.Post(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return renderNotFound(h.views, h.company, w, r, err)
	}
	return h.views.Render(w, r, http.StatusOK, "post", page(h.company, r, view.Data{
		"Title": post.Title,
		"Post":  post,
	}))
}
