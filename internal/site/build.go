package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/starford/learnclj/internal/courseservice"
	"github.com/starford/learnclj/internal/models"
)

const buildConcurrency = 8

// ErrProblems is returned by a strict Build when documents were left out of
// the tree.
var ErrProblems = errors.New("site: course has problems")

// BuildReport summarises a static build.
type BuildReport struct {
	Pages    int
	Problems []models.Problem
}

// Build renders the whole course into outDir:
//
//	index.html
//	404.html
//	tree.json
//	<chapter>/index.html
//	<chapter>/<part>/index.html
//
// Pages are rendered concurrently. Any render or write failure aborts the
// build. Documents left out of the tree are reported, and are fatal only
// with WithStrict, checked against the same tree that is written.
func (s *Site) Build(ctx context.Context, outDir string) (BuildReport, error) {
	var rep BuildReport

	tree, err := s.svc.Tree(ctx)
	if err != nil {
		return rep, err
	}
	rep.Problems = tree.Problems
	if s.strict && len(rep.Problems) > 0 {
		return rep, fmt.Errorf("%w: %d document(s) left out", ErrProblems, len(rep.Problems))
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return rep, fmt.Errorf("site: create output dir: %w", err)
	}

	index, err := s.renderIndex(tree)
	if err != nil {
		return rep, err
	}
	if err := writeFile(outDir, "index.html", index); err != nil {
		return rep, err
	}
	notFound, err := s.renderError(tree, "Page not found", "There is no lesson at this address.")
	if err != nil {
		return rep, err
	}
	if err := writeFile(outDir, "404.html", notFound); err != nil {
		return rep, err
	}
	treeJSON, err := json.MarshalIndent(courseservice.ViewOf(tree), "", "  ")
	if err != nil {
		return rep, fmt.Errorf("site: encode tree: %w", err)
	}
	if err := writeFile(outDir, "tree.json", treeJSON); err != nil {
		return rep, err
	}

	paths := tree.Paths()
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)
	for _, p := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			body, err := s.renderPage(tree, p)
			if err != nil {
				return fmt.Errorf("site: build %s: %w", p, err)
			}
			return writeFile(outDir, pageFile(p), body)
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}
	rep.Pages = len(paths)

	s.logger.Info("site: build done",
		slog.String("out", outDir),
		slog.Int("pages", rep.Pages),
		slog.Int("problems", len(rep.Problems)))
	return rep, nil
}

// pageFile maps a document to its file under the output root so that its
// URL resolves on a static file server.
func pageFile(p models.DocPath) string {
	if p.IsIndex() {
		return filepath.Join(p.Chapter, "index.html")
	}
	return filepath.Join(p.Chapter, p.Part, "index.html")
}

func writeFile(outDir, rel string, data []byte) error {
	path := filepath.Join(outDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("site: create dir for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("site: write %s: %w", rel, err)
	}
	return nil
}
