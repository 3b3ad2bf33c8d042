// Package testutil provides shared test helpers for setting up courses and databases.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/learnclj/internal/content"
	"github.com/starford/learnclj/internal/index"
	"github.com/starford/learnclj/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "learnclj-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Page returns a content file with a title/sequence header.
func Page(title string, sequence int, body string) string {
	return fmt.Sprintf("---\ntitle: %s\nsequence: %d\n---\n\n%s", title, sequence, body)
}

// WriteCourse creates a temporary content root holding files (slash paths
// relative to the root) and returns the root.
func WriteCourse(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// Loader returns a content loader over root.
func Loader(t *testing.T, root string) *content.Loader {
	t.Helper()
	store, err := storage.NewFS(root, storage.DefaultExt)
	if err != nil {
		t.Fatal(err)
	}
	return content.NewLoader(store, content.WithLogger(Logger()))
}

// SampleCourse is a small two-chapter course used across packages.
func SampleCourse() map[string]string {
	return map[string]string{
		"intro/readme.md": Page("Introduction", 1, "Welcome to the course.\n\n## First steps\n\nTry it:\n\n```clojure\n(+ 1 2)\n```\n"),
		"intro/repl.md":   Page("The REPL", 2, "## Starting\n\n```clojurenoeval\n(System/exit 0)\n```\n\nDone.\n"),
		"data/readme.md":  Page("Data", 2, "Vectors and maps.\n\n```clojure\n[1 2 3]\n```\n"),
	}
}
