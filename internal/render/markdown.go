// Package render holds the markdown renderer handed to the segmenter and
// helpers that inspect its HTML output.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/starford/learnclj/internal/segment"
)

// Markdown renders prose spans with goldmark. It is safe for concurrent use.
type Markdown struct {
	md goldmark.Markdown
}

// MarkdownOption configures Markdown.
type MarkdownOption func(*markdownConfig)

type markdownConfig struct {
	unsafe bool
}

// WithUnsafeHTML lets raw HTML in the source through to the output.
func WithUnsafeHTML(enabled bool) MarkdownOption {
	return func(c *markdownConfig) { c.unsafe = enabled }
}

// NewMarkdown creates a GitHub-flavoured markdown renderer that assigns ids
// to headings.
func NewMarkdown(opts ...MarkdownOption) *Markdown {
	var cfg markdownConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	rendererOpts := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if cfg.unsafe {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	return &Markdown{md: goldmark.New(rendererOpts...)}
}

// Render converts markdown to HTML. Heading ids are unique within src only.
func (m *Markdown) Render(src string) (string, error) {
	return convert(m.md, src)
}

// ForPage returns a renderer whose heading ids stay unique across every
// fragment it renders. It is not safe for concurrent use.
func (m *Markdown) ForPage() segment.Renderer {
	return &pageMarkdown{md: m.md, ids: newHeadingIDs()}
}

type pageMarkdown struct {
	md  goldmark.Markdown
	ids *headingIDs
}

func (p *pageMarkdown) Render(src string) (string, error) {
	ctx := parser.NewContext(parser.WithIDs(p.ids))
	return convert(p.md, src, parser.WithContext(ctx))
}

func convert(md goldmark.Markdown, src string, opts ...parser.ParseOption) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf, opts...); err != nil {
		return "", fmt.Errorf("render: markdown: %w", err)
	}
	return buf.String(), nil
}
