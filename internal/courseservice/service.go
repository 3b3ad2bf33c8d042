// Package courseservice assembles rendered course pages from the content
// loader, the segmenter and the search index.
package courseservice

import (
	"context"
	"log/slog"

	"github.com/starford/learnclj/internal/apperr"
	"github.com/starford/learnclj/internal/content"
	"github.com/starford/learnclj/internal/index"
	"github.com/starford/learnclj/internal/models"
	"github.com/starford/learnclj/internal/render"
	"github.com/starford/learnclj/internal/segment"
)

// MaxSearchLimit caps the number of results a single search returns.
const MaxSearchLimit = 100

// Service coordinates content, segmentation and index operations.
type Service struct {
	loader    *content.Loader
	segmenter *segment.Segmenter
	db        index.DocumentIndex
	logger    *slog.Logger
}

// NewService creates a new course service. db may be nil, in which case
// Search returns no results and Reindex is a no-op.
func NewService(loader *content.Loader, segmenter *segment.Segmenter, db index.DocumentIndex, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{loader: loader, segmenter: segmenter, db: db, logger: logger}
}

// Tree returns the ordered course tree.
func (s *Service) Tree(ctx context.Context) (*models.Tree, error) {
	return s.loader.BuildTree(ctx)
}

// Page renders the document at (chapterID, partID). An empty partID
// selects the chapter index.
func (s *Service) Page(ctx context.Context, chapterID, partID string) (*models.Page, error) {
	tree, err := s.loader.BuildTree(ctx)
	if err != nil {
		return nil, err
	}
	return s.PageFromTree(tree, models.NewDocPath(chapterID, partID))
}

// PageFromTree renders p using an already built tree. Documents left out of
// the tree report the reason they were left out.
func (s *Service) PageFromTree(tree *models.Tree, p models.DocPath) (*models.Page, error) {
	d, ok := tree.Find(p)
	if !ok {
		for _, pr := range tree.Problems {
			if pr.Path == p {
				return nil, pr.Err
			}
		}
		return nil, &apperr.NotFoundError{Path: p.String()}
	}
	ch, _ := tree.Chapter(p.Chapter)

	segs := s.segmenter.Segment(d.Body)
	var prose []string
	for _, sg := range segs {
		if !sg.IsCode() {
			prose = append(prose, sg.HTML)
		}
	}
	prev, next := tree.Neighbours(d.Path)

	return &models.Page{
		Path:     d.Path,
		Title:    d.Title,
		Sequence: d.Sequence,
		URL:      d.Path.URL(),
		Chapter:  *models.LinkTo(ch.Index),
		Segments: segs,
		Outline:  render.Outline(prose...),
		Prev:     prev,
		Next:     next,
	}, nil
}

// Search delegates full-text search to the index. limit is capped at
// MaxSearchLimit.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.db == nil {
		return []index.SearchResult{}, nil
	}
	limit = min(limit, MaxSearchLimit)
	res, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []index.SearchResult{}
	}
	return res, nil
}

// Reindex brings the search index up to date with the content root.
func (s *Service) Reindex(ctx context.Context) (index.SyncReport, error) {
	if s.db == nil {
		return index.SyncReport{}, nil
	}
	return index.Sync(ctx, s.db, s.loader, s.logger)
}
