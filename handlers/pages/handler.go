// Package pages serves the HTML user interface. The pages call the JSON API from the browser.
package pages

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
)

//go:embed templates/*.html
var templates embed.FS

// Pages that can be requested by name. Anything else renders the index.
var Pages = []string{"notes", "documents", "web_clip", "search", "ai_query"}

const indexPage = "index"

var titles = map[string]string{
	indexPage:   "Knowledge Base",
	"notes":     "Notes",
	"documents": "Documents",
	"web_clip":  "Web Clips",
	"search":    "Search",
	"ai_query":  "Ask",
}

func New(log *slog.Logger, version string) (h Handler, err error) {
	h = Handler{
		log:       log,
		version:   version,
		templates: make(map[string]*template.Template),
	}
	for _, name := range append([]string{indexPage}, Pages...) {
		t, err := template.ParseFS(templates, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return h, fmt.Errorf("pages: failed to parse %s template: %w", name, err)
		}
		h.templates[name] = t
	}
	return h, nil
}

type Handler struct {
	log       *slog.Logger
	version   string
	templates map[string]*template.Template
}

type data struct {
	Page    string
	Title   string
	Version string
	Pages   []string
	Titles  map[string]string
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page := r.PathValue("page")
	if !slices.Contains(Pages, page) {
		page = indexPage
	}
	d := data{
		Page:    page,
		Title:   titles[page],
		Version: h.version,
		Pages:   Pages,
		Titles:  titles,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates[page].ExecuteTemplate(w, "layout", d); err != nil {
		h.log.Error("failed to render page", slog.String("page", page), slog.Any("error", err))
	}
}
