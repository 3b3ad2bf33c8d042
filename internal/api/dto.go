package api

import (
	"github.com/starford/learnclj/internal/courseservice"
	"github.com/starford/learnclj/internal/index"
	"github.com/starford/learnclj/internal/models"
)

// TreeResponse is the course navigation returned by GET /tree.
type TreeResponse = courseservice.TreeView

// PageResponse is a rendered page returned by GET /pages/...
type PageResponse = models.Page

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// ReindexResponse summarises an admin reindex.
type ReindexResponse struct {
	Indexed   int `json:"indexed" example:"3"`
	Unchanged int `json:"unchanged" example:"12"`
	Removed   int `json:"removed" example:"1"`
	Problems  int `json:"problems" example:"0"`
}

func reindexResponse(rep index.SyncReport) ReindexResponse {
	return ReindexResponse{
		Indexed:   rep.Indexed,
		Unchanged: rep.Unchanged,
		Removed:   rep.Removed,
		Problems:  len(rep.Problems),
	}
}
