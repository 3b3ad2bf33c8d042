package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/learnclj/internal/courseservice"
	"github.com/starford/learnclj/internal/index"
)

// NewRouter creates a chi router with all API routes mounted.
// Reading the course is public; authEnabled guards the /admin routes only.
// sseHandler, if non-nil, is mounted at GET /events. notify, if non-nil,
// receives every change made by an admin reindex.
func NewRouter(svc *courseservice.Service, authEnabled bool, token string, sseHandler http.Handler, notify index.EventCallback) chi.Router {
	h := NewHandler(svc, notify)

	r := chi.NewRouter()

	r.Get("/tree", h.Tree)
	r.Get("/pages/{chapter}", h.Page)
	r.Get("/pages/{chapter}/{part}", h.Page)
	r.Get("/search", h.Search)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))
		r.Post("/admin/reindex", h.Reindex)
	})

	return r
}
