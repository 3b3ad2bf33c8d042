package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/learnclj/internal/apperr"
	"github.com/starford/learnclj/internal/models"
	"github.com/starford/learnclj/internal/storage"
)

func doc(title string, seq int, body string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(fmt.Sprintf("---\ntitle: %s\nsequence: %d\n---\n\n%s", title, seq, body))}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLoader(files fstest.MapFS) *Loader {
	return NewLoader(storage.New(files, ".md"), WithLogger(quietLogger()))
}

// orderedProvider lists files in a caller-chosen order.
type orderedProvider struct {
	files fstest.MapFS
	order []string
}

func (p *orderedProvider) List() ([]models.FileMeta, error) {
	out := make([]models.FileMeta, len(p.order))
	for i, name := range p.order {
		out[i] = models.FileMeta{Path: name}
	}
	return out, nil
}

func (p *orderedProvider) Read(path string) ([]byte, error) {
	return fs.ReadFile(p.files, path)
}

func (p *orderedProvider) Ext() string { return ".md" }

func TestLoadDocument(t *testing.T) {
	l := newLoader(fstest.MapFS{
		"intro/readme.md": doc("Intro", 1, "Welcome.\n"),
		"intro/basics.md": doc("Basics", 2, "Basics.\n"),
	})
	ctx := context.Background()

	d, err := l.LoadDocument(ctx, "intro", "")
	require.NoError(t, err)
	assert.Equal(t, models.DocPath{Chapter: "intro", Part: "readme"}, d.Path)
	assert.Equal(t, "Intro", d.Title)
	assert.Equal(t, 1, d.Sequence)
	assert.Equal(t, "Welcome.\n", d.Body)
	assert.Len(t, d.Checksum, 64)

	d, err = l.LoadDocument(ctx, "intro", "basics")
	require.NoError(t, err)
	assert.Equal(t, "Basics", d.Title)
}

func TestLoadDocument_NotFoundIsolated(t *testing.T) {
	l := newLoader(fstest.MapFS{
		"intro/readme.md": doc("Intro", 1, ""),
	})
	ctx := context.Background()

	_, err := l.LoadDocument(ctx, "intro", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "intro/missing", nf.Path)

	d, err := l.LoadDocument(ctx, "intro", "readme")
	require.NoError(t, err)
	assert.Equal(t, "Intro", d.Title)
}

func TestLoadDocument_InvalidIDs(t *testing.T) {
	l := newLoader(fstest.MapFS{"intro/readme.md": doc("Intro", 1, "")})
	for _, tc := range [][2]string{{"", ""}, {"..", "readme"}, {"intro", "../intro/readme"}, {"intro", ".hidden"}} {
		_, err := l.LoadDocument(context.Background(), tc[0], tc[1])
		assert.ErrorIs(t, err, apperr.ErrNotFound, "ids %q", tc)
	}
}

func TestLoadDocument_MalformedHeader(t *testing.T) {
	l := newLoader(fstest.MapFS{
		"intro/readme.md": {Data: []byte("---\ntitle: Intro\n---\nno sequence")},
	})
	_, err := l.LoadDocument(context.Background(), "intro", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrMalformedHeader)
	var mh *apperr.MalformedHeaderError
	require.ErrorAs(t, err, &mh)
	assert.Equal(t, "intro/readme", mh.Path)
}

func TestDiscoverAll_SkipsOutsideLayoutAndCollectsProblems(t *testing.T) {
	l := newLoader(fstest.MapFS{
		"readme.md":             doc("Root", 0, ""),
		"intro/readme.md":       doc("Intro", 1, ""),
		"intro/broken.md":       {Data: []byte("no header at all")},
		"intro/deep/nested.md":  doc("Nested", 3, ""),
		"intro/basics.md":       doc("Basics", 2, ""),
		"intro/image.png":       {Data: []byte{0x89}},
		"functions/readme.md":   doc("Functions", 2, ""),
		"functions/closures.md": doc("Closures", 1, ""),
	})

	docs, problems, err := l.DiscoverAll(context.Background())
	require.NoError(t, err)

	var got []string
	for _, d := range docs {
		got = append(got, d.Path.String())
	}
	assert.Equal(t, []string{
		"functions/closures",
		"functions/readme",
		"intro/basics",
		"intro/readme",
	}, got)

	require.Len(t, problems, 1)
	assert.Equal(t, "intro/broken", problems[0].Path.String())
	assert.ErrorIs(t, problems[0], apperr.ErrMalformedHeader)
}

func TestDiscoverAll_Cancelled(t *testing.T) {
	l := newLoader(fstest.MapFS{"intro/readme.md": doc("Intro", 1, "")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := l.DiscoverAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildTree_EndToEnd(t *testing.T) {
	l := newLoader(fstest.MapFS{
		"intro/readme.md": doc("Intro", 1, "Welcome"),
		"intro/basics.md": doc("Basics", 2, "Basics"),
	})
	tree, err := l.BuildTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree.Chapters, 1)
	ch := tree.Chapters[0]
	assert.Equal(t, "Intro", ch.Title())
	require.Len(t, ch.Parts, 1)
	assert.Equal(t, "Basics", ch.Parts[0].Title)
	assert.Empty(t, tree.Problems)
}

func TestBuildTree_SortsBySequence(t *testing.T) {
	l := newLoader(fstest.MapFS{
		"zeta/readme.md":  doc("Zeta", 0, ""),
		"zeta/a.md":       doc("Seq two", 2, ""),
		"zeta/b.md":       doc("Seq one", 1, ""),
		"alpha/readme.md": doc("Alpha", 5, ""),
	})
	tree, err := l.BuildTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree.Chapters, 2)

	assert.Equal(t, "zeta", tree.Chapters[0].ID())
	assert.Equal(t, "alpha", tree.Chapters[1].ID())

	parts := tree.Chapters[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "Seq one", parts[0].Title)
	assert.Equal(t, "Seq two", parts[1].Title)
}

func TestBuildTree_IndependentOfEnumerationOrder(t *testing.T) {
	files := fstest.MapFS{
		"c/readme.md": doc("C", 0, ""),
		"c/one.md":    doc("One", 1, ""),
		"c/two.md":    doc("Two", 2, ""),
	}
	orders := [][]string{
		{"c/readme.md", "c/one.md", "c/two.md"},
		{"c/two.md", "c/readme.md", "c/one.md"},
		{"c/two.md", "c/one.md", "c/readme.md"},
	}
	for _, order := range orders {
		l := NewLoader(&orderedProvider{files: files, order: order}, WithLogger(quietLogger()))
		tree, err := l.BuildTree(context.Background())
		require.NoError(t, err)
		require.Len(t, tree.Chapters, 1)
		parts := tree.Chapters[0].Parts
		require.Len(t, parts, 2)
		assert.Equal(t, "One", parts[0].Title, "order %v", order)
		assert.Equal(t, "Two", parts[1].Title, "order %v", order)
	}
}

func TestBuildTree_TiesKeepDiscoveryOrder(t *testing.T) {
	files := fstest.MapFS{
		"c/readme.md": doc("C", 0, ""),
		"c/x.md":      doc("X", 3, ""),
		"c/y.md":      doc("Y", 3, ""),
		"c/z.md":      doc("Z", 3, ""),
		"d/readme.md": doc("D", 0, ""),
	}
	l := NewLoader(&orderedProvider{
		files: files,
		order: []string{"d/readme.md", "c/z.md", "c/readme.md", "c/x.md", "c/y.md"},
	}, WithLogger(quietLogger()), WithConcurrency(1))

	tree, err := l.BuildTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree.Chapters, 2)
	assert.Equal(t, "d", tree.Chapters[0].ID(), "equal chapter sequences keep discovery order")

	c := tree.Chapters[1]
	var titles []string
	for _, p := range c.Parts {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"Z", "X", "Y"}, titles)
}

func TestBuildTree_MissingIndexOmitsChapter(t *testing.T) {
	l := newLoader(fstest.MapFS{
		"intro/readme.md":  doc("Intro", 1, ""),
		"orphan/lesson.md": doc("Lesson", 1, ""),
		"bad/readme.md":    {Data: []byte("---\nsequence: 2\n---\n")},
		"bad/part.md":      doc("Part", 1, ""),
	})
	tree, err := l.BuildTree(context.Background())
	require.NoError(t, err)

	require.Len(t, tree.Chapters, 1)
	assert.Equal(t, "intro", tree.Chapters[0].ID())

	byPath := map[string]models.Problem{}
	for _, p := range tree.Problems {
		byPath[p.Path.String()] = p
	}
	require.Contains(t, byPath, "orphan/readme")
	require.Contains(t, byPath, "orphan/lesson")
	require.Contains(t, byPath, "bad/readme")
	require.Contains(t, byPath, "bad/part")

	var mi *apperr.MissingIndexError
	require.ErrorAs(t, byPath["orphan/lesson"].Err, &mi)
	assert.Equal(t, "orphan", mi.Chapter)
	assert.ErrorIs(t, byPath["orphan/lesson"], apperr.ErrNotFound)

	assert.ErrorIs(t, byPath["bad/readme"], apperr.ErrMalformedHeader)
	assert.ErrorIs(t, byPath["bad/part"], apperr.ErrMalformedHeader, "part problem carries the index cause")
}

func TestBuildTree_EmptyRoot(t *testing.T) {
	tree, err := newLoader(fstest.MapFS{}).BuildTree(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tree.Chapters)
	assert.Empty(t, tree.Problems)
}
