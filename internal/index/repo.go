package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/learnclj/internal/models"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Path      string    `db:"path"`
	Chapter   string    `db:"chapter"`
	Part      string    `db:"part"`
	Title     string    `db:"title"`
	Sequence  int       `db:"sequence"`
	Checksum  string    `db:"checksum"`
	UpdatedAt time.Time `db:"updated_at"`
}

// RowFor builds the index row of a loaded document.
func RowFor(d models.Document) DocumentRow {
	return DocumentRow{
		Path:      d.Path.String(),
		Chapter:   d.Path.Chapter,
		Part:      d.Path.Part,
		Title:     d.Title,
		Sequence:  d.Sequence,
		Checksum:  d.Checksum,
		UpdatedAt: time.Now().UTC(),
	}
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `db:"path" json:"path"`
	Chapter string `db:"chapter" json:"chapter"`
	Part    string `db:"part" json:"part"`
	Title   string `db:"title" json:"title"`
	Snippet string `db:"snippet" json:"snippet"`
	URL     string `db:"-" json:"url"`
}

func withURLs(results []SearchResult) []SearchResult {
	for i := range results {
		results[i].URL = models.NewDocPath(results[i].Chapter, results[i].Part).URL()
	}
	return results
}

// UpsertDocument inserts or replaces a document and its FTS entry within a
// transaction.
func (db *DB) UpsertDocument(d DocumentRow, body string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(`
		INSERT INTO documents (path, chapter, part, title, sequence, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			chapter    = excluded.chapter,
			part       = excluded.part,
			title      = excluded.title,
			sequence   = excluded.sequence,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, d.Path, d.Chapter, d.Part, d.Title, d.Sequence, d.Checksum, body, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	if err := ftsUpsert(tx, d.Path, d.Title, body); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteDocument removes a document and its FTS entry.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or "" if it is
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.Get(&cs, `SELECT checksum FROM documents WHERE path = ?`, path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path -> checksum for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	var rows []struct {
		Path     string `db:"path"`
		Checksum string `db:"checksum"`
	}
	if err := db.conn.Select(&rows, `SELECT path, checksum FROM documents`); err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Path] = r.Checksum
	}
	return out, nil
}

// Count returns the number of indexed documents.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.Get(&n, `SELECT count(*) FROM documents`); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
