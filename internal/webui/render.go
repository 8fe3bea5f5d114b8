package webui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageNames = []string{
	"landing",
	"notfound",
	"intro",
	"symptoms",
	"severity",
	"duration",
	"result",
}

// page is the value every template executes against.
type page struct {
	CSRFToken string
	Notice    string
	Data      any
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

func staticHandler() (http.Handler, error) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static fs: %w", err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub))), nil
}

// render executes the named page into a buffer so a template failure can
// still produce a clean 500.
func (u *UI) render(w http.ResponseWriter, r *http.Request, status int, name, notice string, data any) {
	t, ok := u.pages[name]
	if !ok {
		u.logger.Error(r.Context(), fmt.Errorf("unknown page %q", name), "render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	err := t.ExecuteTemplate(&buf, "layout", page{
		CSRFToken: csrfToken(r.Context()),
		Notice:    notice,
		Data:      data,
	})
	if err != nil {
		u.logger.Error(r.Context(), err, "render failed", "page", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
