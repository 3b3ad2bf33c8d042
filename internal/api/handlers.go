package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/learnclj/internal/courseservice"
	"github.com/starford/learnclj/internal/index"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *courseservice.Service
	notify index.EventCallback
}

// NewHandler creates a new Handler.
func NewHandler(svc *courseservice.Service, notify index.EventCallback) *Handler {
	return &Handler{svc: svc, notify: notify}
}

// Tree handles GET /api/tree.
//
//	@Summary		Course navigation tree
//	@Tags			course
//	@Produce		json
//	@Success		200	{object}	TreeResponse
//	@Router			/tree [get]
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.Tree(r.Context())
	if err != nil {
		writeError(w, "tree", err)
		return
	}
	writeJSON(w, http.StatusOK, courseservice.ViewOf(tree))
}

// Page handles GET /api/pages/{chapter} and GET /api/pages/{chapter}/{part}.
//
//	@Summary		Rendered page with prose and code segments
//	@Tags			course
//	@Produce		json
//	@Param			chapter	path		string	true	"Chapter id"
//	@Param			part	path		string	false	"Part id, chapter index when omitted"
//	@Success		200		{object}	PageResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Router			/pages/{chapter}/{part} [get]
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Page(r.Context(), chi.URLParam(r, "chapter"), chi.URLParam(r, "part"))
	if err != nil {
		writeError(w, "page", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across the course
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Reindex handles POST /api/admin/reindex.
//
//	@Summary		Re-sync the search index with the content root
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	ReindexResponse
//	@Failure		401	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/reindex [post]
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Reindex(r.Context())
	if err != nil {
		writeError(w, "reindex", err)
		return
	}
	if h.notify != nil {
		for _, c := range rep.Changes {
			h.notify(c.Kind, c.Path)
		}
	}
	writeJSON(w, http.StatusOK, reindexResponse(rep))
}
