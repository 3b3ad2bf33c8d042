// Package content discovers course files and assembles them into an
// ordered chapter/part tree.
package content

import (
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/learnclj/internal/apperr"
	"github.com/starford/learnclj/internal/models"
	"github.com/starford/learnclj/internal/parser"
	"github.com/starford/learnclj/internal/storage"
)

const defaultConcurrency = 8

// Loader reads documents from a storage.Provider. It keeps no state between
// calls: every call re-reads the provider.
type Loader struct {
	store       storage.Provider
	logger      *slog.Logger
	concurrency int
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithConcurrency bounds the number of files parsed at once by DiscoverAll.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// NewLoader creates a Loader over store.
func NewLoader(store storage.Provider, opts ...Option) *Loader {
	l := &Loader{
		store:       store,
		logger:      slog.Default(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Ext returns the content file extension, dot included.
func (l *Loader) Ext() string { return l.store.Ext() }

// LoadDocument reads and parses the file for (chapterID, partID). An empty
// partID selects the chapter index.
func (l *Loader) LoadDocument(ctx context.Context, chapterID, partID string) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := models.NewDocPath(chapterID, partID)
	if !validID(p.Chapter) || !validID(p.Part) {
		return nil, &apperr.NotFoundError{Path: p.String()}
	}

	data, err := l.store.Read(p.Chapter + "/" + p.Part + l.store.Ext())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &apperr.NotFoundError{Path: p.String()}
		}
		return nil, fmt.Errorf("content: load %s: %w", p, err)
	}
	return parseDocument(p, data)
}

// DiscoverAll loads every document found under the content root. The result
// follows discovery order. Documents that fail to load are returned as
// problems and do not affect their siblings; only a listing failure or a
// cancelled ctx produces an error.
func (l *Loader) DiscoverAll(ctx context.Context) ([]models.Document, []models.Problem, error) {
	metas, err := l.store.List()
	if err != nil {
		return nil, nil, fmt.Errorf("content: discover: %w", err)
	}

	var paths []models.DocPath
	for _, m := range metas {
		p, ok := resolvePath(m.Path, l.store.Ext())
		if !ok {
			l.logger.Debug("content: ignoring file outside chapter layout", slog.String("path", m.Path))
			continue
		}
		paths = append(paths, p)
	}

	docs := make([]*models.Document, len(paths))
	errs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, p := range paths {
		g.Go(func() error {
			docs[i], errs[i] = l.LoadDocument(ctx, p.Chapter, p.Part)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	out := make([]models.Document, 0, len(paths))
	var problems []models.Problem
	for i, p := range paths {
		if errs[i] != nil {
			l.logger.Warn("content: document skipped",
				slog.String("path", p.String()),
				slog.String("error", errs[i].Error()))
			problems = append(problems, models.NewProblem(p, errs[i]))
			continue
		}
		out = append(out, *docs[i])
	}
	return out, problems, nil
}

// BuildTree assembles the ordered chapter tree. Parts are sorted by
// sequence within their chapter and chapters by their index sequence; ties
// keep discovery order. A chapter without a loadable index is left out and
// each of its documents is reported in Tree.Problems.
func (l *Loader) BuildTree(ctx context.Context) (*models.Tree, error) {
	docs, problems, err := l.DiscoverAll(ctx)
	if err != nil {
		return nil, err
	}

	type group struct {
		index *models.Document
		parts []models.Document
	}
	var order []string
	groups := make(map[string]*group)
	for _, d := range docs {
		g, ok := groups[d.Path.Chapter]
		if !ok {
			g = &group{parts: []models.Document{}}
			groups[d.Path.Chapter] = g
			order = append(order, d.Path.Chapter)
		}
		if d.Path.IsIndex() {
			g.index = &d
			continue
		}
		g.parts = append(g.parts, d)
	}

	chapters := make([]models.Chapter, 0, len(order))
	for _, id := range order {
		g := groups[id]
		if g.index == nil {
			problems = l.omitChapter(id, g.parts, problems)
			continue
		}
		slices.SortStableFunc(g.parts, func(a, b models.Document) int {
			return cmp.Compare(a.Sequence, b.Sequence)
		})
		chapters = append(chapters, models.Chapter{Index: *g.index, Parts: g.parts})
	}
	slices.SortStableFunc(chapters, func(a, b models.Chapter) int {
		return cmp.Compare(a.Sequence(), b.Sequence())
	})

	return &models.Tree{Chapters: chapters, Problems: problems}, nil
}

// omitChapter records why a chapter without an index was dropped.
func (l *Loader) omitChapter(id string, parts []models.Document, problems []models.Problem) []models.Problem {
	indexPath := models.NewDocPath(id, models.IndexPart)
	var cause error
	for _, pr := range problems {
		if pr.Path == indexPath {
			cause = pr.Err
			break
		}
	}
	if cause == nil {
		cause = &apperr.NotFoundError{Path: indexPath.String()}
		problems = append(problems, models.NewProblem(indexPath, &apperr.MissingIndexError{Chapter: id, Cause: cause}))
	}

	l.logger.Warn("content: chapter omitted, index unavailable",
		slog.String("chapter", id),
		slog.Int("parts", len(parts)),
		slog.String("error", cause.Error()))

	for _, d := range parts {
		problems = append(problems, models.NewProblem(d.Path, &apperr.MissingIndexError{Chapter: id, Cause: cause}))
	}
	return problems
}

func parseDocument(p models.DocPath, data []byte) (*models.Document, error) {
	res, err := parser.Parse(data)
	if err != nil {
		var mh *apperr.MalformedHeaderError
		if errors.As(err, &mh) {
			mh.Path = p.String()
			return nil, mh
		}
		return nil, fmt.Errorf("content: parse %s: %w", p, err)
	}
	sum := sha256.Sum256(data)
	return &models.Document{
		Path:     p,
		Title:    res.Title,
		Sequence: res.Sequence,
		Body:     res.Body,
		Checksum: hex.EncodeToString(sum[:]),
		Meta:     res.Meta,
	}, nil
}

// resolvePath maps "chapter/part.ext" to a DocPath. Files at the root or
// nested deeper than one directory are not part of the course layout.
func resolvePath(rel, ext string) (models.DocPath, bool) {
	parts := strings.Split(rel, "/")
	if len(parts) != 2 {
		return models.DocPath{}, false
	}
	name, ok := strings.CutSuffix(parts[1], ext)
	if !ok || !validID(parts[0]) || !validID(name) {
		return models.DocPath{}, false
	}
	return models.DocPath{Chapter: parts[0], Part: name}, true
}

func validID(id string) bool {
	if id == "" || strings.HasPrefix(id, ".") {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}
