package handler

// RESPONSE HELPERS:
// Page handlers return errors instead of writing them. The router adapts
// them with App.Handle, so a failed lookup ends up in the application's
// error handler with the right status code:
//
//	apperror.NotFound(...)  → 404
//	anything untyped        → 500 with an error reference
//
// Missing slugs are the exception: they render the errors/404 page
// directly, with the requested URL, like any other page.

import (
	"errors"
	"net/http"

	"github.com/sakif/altarie/internal/apperror"
	"github.com/sakif/altarie/internal/view"
)

// Renderer writes a named template. bootstrap.App satisfies it.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name string, data view.Data) error
}

// Company is the profile shown in every page header and footer.
type Company struct {
	Name        string
	Tagline     string
	Description string
}

// DefaultCompany is the demo site's company.
var DefaultCompany = Company{
	Name:        "Altarie Studio",
	Tagline:     "Laravel-like DX. Go simplicity.",
	Description: "We craft fast, maintainable web products powered by Altarie.",
}

// page builds the data every site page gets on top of what the renderer adds.
func page(c Company, r *http.Request, extra view.Data) view.Data {
	data := view.Data{
		"Company":    c,
		"CurrentURL": r.URL.RequestURI(),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// renderNotFound renders errors/404 with status 404 when err is a not-found
// error. Other errors are returned unchanged.
func renderNotFound(v Renderer, c Company, w http.ResponseWriter, r *http.Request, err error) error {
	if !errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	return v.Render(w, r, http.StatusNotFound, "errors/404", page(c, r, view.Data{
		"Title": "Not Found",
		"URL":   r.URL.RequestURI(),
	}))
}
