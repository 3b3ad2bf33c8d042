//go:build !sqlite_fts5

package index

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

func initFTS(_ *sqlx.DB) error {
	// FTS5 not available; search uses LIKE on documents.title/body.
	return nil
}

func ftsUpsert(_ *sqlx.Tx, _, _, _ string) error { return nil }

func ftsDelete(_ *sqlx.Tx, _ string) error { return nil }

// Search performs a LIKE-based search (fallback when FTS5 is not compiled
// in). Title matches rank before body matches, then reading order.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	like := "%" + query + "%"
	var out []SearchResult
	err := db.conn.Select(&out, `
		SELECT path, chapter, part, title, substr(body, 1, 200) AS snippet
		FROM documents
		WHERE title LIKE ? OR body LIKE ?
		ORDER BY (title LIKE ?) DESC, chapter, sequence
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return withURLs(out), nil
}
