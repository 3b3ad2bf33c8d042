package index

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/learnclj/internal/content"
	"github.com/starford/learnclj/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "learnclj-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func page(title string, seq int, body string) string {
	return fmt.Sprintf("---\ntitle: %s\nsequence: %d\n---\n\n%s", title, seq, body)
}

func courseLoader(t *testing.T, root string) *content.Loader {
	t.Helper()
	store, err := storage.NewFS(root, ".md")
	if err != nil {
		t.Fatal(err)
	}
	return content.NewLoader(store, content.WithLogger(quietLogger()))
}

func row(path, title, cs string) DocumentRow {
	return DocumentRow{Path: path, Chapter: "intro", Part: filepath.Base(path), Title: title, Checksum: cs, UpdatedAt: time.Now()}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.Get(&count, `SELECT count(*) FROM documents`); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertDocument(row("intro/basics", "Basics", "abc123"), "Some body."); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	cs, err := db.GetChecksum("intro/basics")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
	n, err := db.Count()
	if err != nil || n != 1 {
		t.Errorf("Count = %d, %v; want 1", n, err)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(row("intro/up", "Old", "1"), "old body")
	_ = db.UpsertDocument(row("intro/up", "New", "2"), "new body")

	all, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(all) != 1 || all["intro/up"] != "2" {
		t.Errorf("checksums = %v", all)
	}
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(row("intro/del", "Del", "x"), "body")
	if err := db.DeleteDocument("intro/del"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	cs, _ := db.GetChecksum("intro/del")
	if cs != "" {
		t.Errorf("deleted document still has checksum %q", cs)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nope/nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{Path: "intro/readme", Chapter: "intro", Part: "readme", Title: "Search Me", Checksum: "1", UpdatedAt: time.Now()}, "uniqueword appears here")

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "intro/readme" {
		t.Fatalf("search results = %+v, want 1 hit for intro/readme", results)
	}
	if results[0].URL != "/intro" {
		t.Errorf("url = %q, want /intro", results[0].URL)
	}
}

func TestSync_IndexesTreeAndRemovesStale(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "intro/readme.md", page("Intro", 1, "Welcome."))
	writeFile(t, root, "intro/basics.md", page("Basics", 2, "Basics."))
	writeFile(t, root, "orphan/lesson.md", page("Lesson", 1, "No index."))

	db := testDB(t)
	loader := courseLoader(t, root)
	ctx := context.Background()

	rep, err := Sync(ctx, db, loader, quietLogger())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if rep.Indexed != 2 || rep.Removed != 0 {
		t.Errorf("report = %+v, want 2 indexed", rep)
	}
	if len(rep.Problems) == 0 {
		t.Error("orphan chapter should be reported as a problem")
	}
	if cs, _ := db.GetChecksum("orphan/lesson"); cs != "" {
		t.Error("omitted chapter must not be indexed")
	}

	rep, err = Sync(ctx, db, loader, quietLogger())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if rep.Unchanged != 2 || rep.Indexed != 0 || len(rep.Changes) != 0 {
		t.Errorf("second pass = %+v, want all unchanged", rep)
	}

	if err := os.Remove(filepath.Join(root, "intro", "basics.md")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, root, "intro/readme.md", page("Intro", 1, "Welcome back."))

	rep, err = Sync(ctx, db, loader, quietLogger())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	want := map[Change]bool{
		{Kind: KindUpdated, Path: "intro/readme"}: true,
		{Kind: KindDeleted, Path: "intro/basics"}: true,
	}
	if len(rep.Changes) != len(want) {
		t.Fatalf("changes = %+v", rep.Changes)
	}
	for _, c := range rep.Changes {
		if !want[c] {
			t.Errorf("unexpected change %+v", c)
		}
	}
}
