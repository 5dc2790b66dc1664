// Package render renders the server-side HTML pages from templates
// embedded in the binary.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eco-stations/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Renderer implements echo.Renderer.  Every page template is parsed
// together with the shared layout.  Data passed as echo.Map gets the
// current principal under "User" unless the handler set one itself.
type Renderer struct {
	pages     map[string]*template.Template
	principal func(echo.Context) *model.Principal
}

// New parses all embedded templates.  principal resolves the signed-in
// user for the page header and may be nil.
func New(principal func(echo.Context) *model.Principal) (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template), principal: principal}
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		t, err := template.New(path.Base(f)).Funcs(funcs).ParseFS(templateFS, layoutFile, f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.pages[path.Base(f)] = t
	}
	return r, nil
}

// Render executes the page called name ("station.html", ...).
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	if m, ok := data.(echo.Map); ok {
		if _, set := m["User"]; !set && r.principal != nil && c != nil {
			m["User"] = r.principal(c)
		}
	}
	return t.ExecuteTemplate(w, "layout", data)
}

var funcs = template.FuncMap{
	"date":     formatDate,
	"datetime": formatDateTime,
	"deref":    derefFloat,
	"stars":    stars,
}

// formatDate renders dd.mm.yyyy for time.Time and *time.Time; nil and
// zero times render as a dash.
func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if !t.IsZero() {
			return t.Format("02.01.2006")
		}
	case *time.Time:
		if t != nil && !t.IsZero() {
			return t.Format("02.01.2006")
		}
	}
	return "-"
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}

func derefFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *p)
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > model.MaxRating {
		rating = model.MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", model.MaxRating-rating)
}
