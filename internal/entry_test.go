package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/learnclj/internal/testutil"
)

func testConfig(t *testing.T, files map[string]string) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Content.Root = testutil.WriteCourse(t, files)
	cfg.Build.OutputDir = filepath.Join(t.TempDir(), "public")
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "learnclj.db")
	return cfg
}

func TestPrintTree(t *testing.T) {
	files := testutil.SampleCourse()
	files["orphan/lesson.md"] = testutil.Page("Lesson", 1, "x")

	var out bytes.Buffer
	err := PrintTree(context.Background(),
		WithConfig(testConfig(t, files)), WithOutput(&out), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("PrintTree: %v", err)
	}
	s := out.String()
	intro := strings.Index(s, "Introduction")
	repl := strings.Index(s, "The REPL")
	data := strings.Index(s, "Data")
	if intro < 0 || repl < intro || data < repl {
		t.Errorf("tree out of order:\n%s", s)
	}
	if !strings.Contains(s, "orphan/lesson") {
		t.Errorf("problems not listed:\n%s", s)
	}
}

func TestBuild_WritesSite(t *testing.T) {
	cfg := testConfig(t, testutil.SampleCourse())
	var out bytes.Buffer
	if err := Build(context.Background(), WithConfig(cfg), WithOutput(&out), WithLogOutput(io.Discard)); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Build.OutputDir, "intro", "repl", "index.html")); err != nil {
		t.Errorf("page not built: %v", err)
	}
	if !strings.Contains(out.String(), "built 3 pages") {
		t.Errorf("output = %q", out.String())
	}
}

func TestBuild_StrictFailsOnProblems(t *testing.T) {
	files := testutil.SampleCourse()
	files["intro/broken.md"] = "no header"
	cfg := testConfig(t, files)
	cfg.Build.Strict = true

	err := Build(context.Background(), WithConfig(cfg), WithOutput(io.Discard), WithLogOutput(io.Discard))
	if !errors.Is(err, ErrStrictBuild) {
		t.Fatalf("err = %v, want ErrStrictBuild", err)
	}
	if _, statErr := os.Stat(cfg.Build.OutputDir); !os.IsNotExist(statErr) {
		t.Error("strict build should not write output")
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Error("expected error without config")
	}
}
