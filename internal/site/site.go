// Package site renders the course as HTML, either served live or written
// out as a static tree.
package site

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/learnclj/internal/apperr"
	"github.com/starford/learnclj/internal/courseservice"
	"github.com/starford/learnclj/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Site renders course pages through html/template.
type Site struct {
	svc    *courseservice.Service
	pages  map[string]*template.Template
	live   bool
	strict bool
	logger *slog.Logger
}

// Option configures a Site.
type Option func(*Site)

// WithLiveReload makes pages subscribe to /api/events and reload when
// their content changes.
func WithLiveReload(enabled bool) Option {
	return func(s *Site) { s.live = enabled }
}

// WithStrict makes Build fail with ErrProblems, before writing anything,
// when documents were left out of the tree.
func WithStrict(enabled bool) Option {
	return func(s *Site) { s.strict = enabled }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Site) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New parses the embedded templates.
func New(svc *courseservice.Service, opts ...Option) (*Site, error) {
	s := &Site{svc: svc, logger: slog.Default(), pages: make(map[string]*template.Template)}
	for _, opt := range opts {
		opt(s)
	}

	base, err := template.New("layout").Funcs(template.FuncMap{
		// Prose HTML comes from the markdown renderer.
		"trusted": func(s string) template.HTML { return template.HTML(s) }, //nolint:gosec
	}).ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("site: parse layout: %w", err)
	}
	for _, name := range []string{"index", "page", "error"} {
		t, err := template.Must(base.Clone()).ParseFS(templatesFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("site: parse %s: %w", name, err)
		}
		s.pages[name] = t
	}
	return s, nil
}

type view struct {
	Title   string
	Chapter string
	Tree    courseservice.TreeView
	Page    *models.Page
	Message string
	Live    bool
}

func (s *Site) render(name string, v view) ([]byte, error) {
	v.Live = s.live
	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", v); err != nil {
		return nil, fmt.Errorf("site: render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (s *Site) renderIndex(tree *models.Tree) ([]byte, error) {
	return s.render("index", view{Tree: courseservice.ViewOf(tree)})
}

func (s *Site) renderPage(tree *models.Tree, p models.DocPath) ([]byte, error) {
	page, err := s.svc.PageFromTree(tree, p)
	if err != nil {
		return nil, err
	}
	return s.render("page", view{
		Title:   page.Title,
		Chapter: page.Path.Chapter,
		Tree:    courseservice.ViewOf(tree),
		Page:    page,
	})
}

func (s *Site) renderError(tree *models.Tree, title, msg string) ([]byte, error) {
	v := view{Title: title, Message: msg}
	if tree != nil {
		v.Tree = courseservice.ViewOf(tree)
	}
	return s.render("error", v)
}

// Handler serves / (chapter list), /{chapter} and /{chapter}/{part}.
func (s *Site) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.serveIndex)
	r.Get("/{chapter}", s.servePage)
	r.Get("/{chapter}/{part}", s.servePage)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.serveError(w, r, nil, &apperr.NotFoundError{Path: r.URL.Path})
	})
	return r
}

func (s *Site) serveIndex(w http.ResponseWriter, r *http.Request) {
	tree, err := s.svc.Tree(r.Context())
	if err != nil {
		s.serveError(w, r, nil, err)
		return
	}
	body, err := s.renderIndex(tree)
	if err != nil {
		s.serveError(w, r, tree, err)
		return
	}
	writeHTML(w, http.StatusOK, body)
}

func (s *Site) servePage(w http.ResponseWriter, r *http.Request) {
	tree, err := s.svc.Tree(r.Context())
	if err != nil {
		s.serveError(w, r, nil, err)
		return
	}
	body, err := s.renderPage(tree, models.NewDocPath(chi.URLParam(r, "chapter"), chi.URLParam(r, "part")))
	if err != nil {
		s.serveError(w, r, tree, err)
		return
	}
	writeHTML(w, http.StatusOK, body)
}

func (s *Site) serveError(w http.ResponseWriter, r *http.Request, tree *models.Tree, err error) {
	status, title, msg := http.StatusInternalServerError, "Something went wrong", "The page could not be rendered."
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		status, title, msg = http.StatusNotFound, "Page not found", "There is no lesson at "+r.URL.Path+"."
	case errors.Is(err, apperr.ErrMalformedHeader):
		status, title, msg = http.StatusUnprocessableEntity, "Broken lesson", err.Error()
	default:
		s.logger.Error("site: request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	body, rerr := s.renderError(tree, title, msg)
	if rerr != nil {
		http.Error(w, title, status)
		return
	}
	writeHTML(w, status, body)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
