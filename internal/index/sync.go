package index

import (
	"context"
	"log/slog"

	"github.com/starford/learnclj/internal/content"
	"github.com/starford/learnclj/internal/models"
)

// Change kinds reported by Sync and Watch.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// Change is one index mutation performed by Sync.
type Change struct {
	Kind string
	Path string
}

// SyncReport summarises a Sync pass.
type SyncReport struct {
	Indexed   int
	Unchanged int
	Removed   int
	Problems  []models.Problem
	Changes   []Change
}

// Sync loads the course tree and brings the index up to date:
//   - documents reachable from the tree are upserted when their checksum changed
//   - indexed documents no longer in the tree are deleted
//
// Documents of omitted chapters are not indexed, so search never links to a
// page that cannot be served.
func Sync(ctx context.Context, db DocumentIndex, loader *content.Loader, logger *slog.Logger) (SyncReport, error) {
	var rep SyncReport

	tree, err := loader.BuildTree(ctx)
	if err != nil {
		return rep, err
	}
	rep.Problems = tree.Problems

	checksums, err := db.AllChecksums()
	if err != nil {
		return rep, err
	}

	seen := make(map[string]struct{}, len(checksums))
	for _, d := range tree.Documents() {
		key := d.Path.String()
		seen[key] = struct{}{}

		old, indexed := checksums[key]
		if indexed && old == d.Checksum {
			rep.Unchanged++
			continue
		}
		if err := db.UpsertDocument(RowFor(d), d.Body); err != nil {
			logger.Warn("sync: index failed", slog.String("path", key), slog.String("error", err.Error()))
			continue
		}
		kind := KindUpdated
		if !indexed {
			kind = KindCreated
		}
		rep.Indexed++
		rep.Changes = append(rep.Changes, Change{Kind: kind, Path: key})
		logger.Debug("sync: indexed", slog.String("path", key), slog.String("op", kind))
	}

	for p := range checksums {
		if _, ok := seen[p]; ok {
			continue
		}
		if err := db.DeleteDocument(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		rep.Removed++
		rep.Changes = append(rep.Changes, Change{Kind: KindDeleted, Path: p})
		logger.Debug("sync: removed stale", slog.String("path", p))
	}

	logger.Info("sync: done",
		slog.Int("indexed", rep.Indexed),
		slog.Int("unchanged", rep.Unchanged),
		slog.Int("removed", rep.Removed),
		slog.Int("problems", len(rep.Problems)))
	return rep, nil
}
