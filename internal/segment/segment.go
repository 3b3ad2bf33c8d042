// Package segment splits a markdown body into alternating prose and code
// segments. Prose spans go through a Renderer; fenced code blocks are kept
// verbatim and tagged with their language and whether they may be run.
package segment

import (
	"errors"
	"html"
	"log/slog"
	"strings"

	"github.com/starford/learnclj/internal/apperr"
	"github.com/starford/learnclj/internal/models"
)

const fence = "```"

// Renderer turns a markdown fragment into HTML.
type Renderer interface {
	Render(markdown string) (string, error)
}

// PageRenderer is a Renderer that keeps state across the prose spans of one
// body. Segment calls ForPage once per body and renders every span of that
// body through the returned Renderer.
type PageRenderer interface {
	Renderer
	ForPage() Renderer
}

// RenderFunc adapts a plain function to Renderer.
type RenderFunc func(markdown string) (string, error)

// Render calls f.
func (f RenderFunc) Render(markdown string) (string, error) { return f(markdown) }

// Fence is one fenced code block located by Split. Start and End are the
// byte offsets of the opening and one past the closing delimiter.
type Fence struct {
	Tag   string
	Raw   string
	Start int
	End   int
}

// Segmenter splits document bodies. It holds no per-call state and is safe
// for concurrent use.
type Segmenter struct {
	renderer     Renderer
	noEvalLang   string
	noEvalSuffix string
	logger       *slog.Logger
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithNoEvalMarker sets the reserved display-only tag to language+suffix.
// Blocks with that exact tag are shown as language and are not runnable.
func WithNoEvalMarker(language, suffix string) Option {
	return func(s *Segmenter) {
		if language != "" && suffix != "" {
			s.noEvalLang = language
			s.noEvalSuffix = suffix
		}
	}
}

// WithLogger sets the logger used for degraded input.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Segmenter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Segmenter rendering prose through r.
func New(r Renderer, opts ...Option) *Segmenter {
	s := &Segmenter{
		renderer:     r,
		noEvalLang:   "clojure",
		noEvalSuffix: "noeval",
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NoEvalTag returns the reserved display-only tag.
func (s *Segmenter) NoEvalTag() string { return s.noEvalLang + s.noEvalSuffix }

// Split locates every fenced block in body in a single left-to-right pass.
// It returns len(fences)+1 prose spans: prose[i] precedes fences[i] and
// prose[i+1] follows it. An opening fence with no closing one ends the scan;
// the remainder, fence included, is kept as the last prose span and err is
// an *apperr.MalformedFenceError. The spans and fences are valid either way.
func Split(body string) (prose []string, fences []Fence, err error) {
	pos := 0
	for {
		rel := strings.Index(body[pos:], fence)
		if rel < 0 {
			break
		}
		open := pos + rel

		tagEnd := open + len(fence)
		for tagEnd < len(body) && body[tagEnd] >= 'a' && body[tagEnd] <= 'z' {
			tagEnd++
		}

		closeRel := strings.Index(body[tagEnd:], fence)
		if closeRel < 0 {
			err = &apperr.MalformedFenceError{
				Offset: open,
				Line:   strings.Count(body[:open], "\n") + 1,
			}
			break
		}
		closeAt := tagEnd + closeRel

		prose = append(prose, body[pos:open])
		fences = append(fences, Fence{
			Tag:   body[open+len(fence) : tagEnd],
			Raw:   body[tagEnd:closeAt],
			Start: open,
			End:   closeAt + len(fence),
		})
		pos = closeAt + len(fence)
	}
	prose = append(prose, body[pos:])
	return prose, fences, err
}

// Segment splits body into prose and code segments. The result always
// starts and ends with a prose segment and alternates in between; prose
// between adjacent fences is kept as an empty segment. Segment never fails:
// malformed fences and renderer errors degrade to prose.
func (s *Segmenter) Segment(body string) []models.Segment {
	prose, fences, err := Split(body)
	if err != nil {
		var mf *apperr.MalformedFenceError
		if errors.As(err, &mf) {
			s.logger.Warn("segment: unterminated code fence kept as prose",
				slog.Int("line", mf.Line),
				slog.Int("offset", mf.Offset))
		}
	}

	r := s.renderer
	if pr, ok := r.(PageRenderer); ok {
		r = pr.ForPage()
	}

	out := make([]models.Segment, 0, len(prose)+len(fences))
	for i, span := range prose {
		out = append(out, models.Prose(s.render(r, span)))
		if i < len(fences) {
			out = append(out, models.Code(s.Block(fences[i])))
		}
	}
	return out
}

// Block derives the presented code block from a located fence.
func (s *Segmenter) Block(f Fence) models.CodeBlock {
	lang, evaluable := f.Tag, true
	if f.Tag == s.NoEvalTag() {
		lang, evaluable = s.noEvalLang, false
	}
	return models.CodeBlock{
		Lang:      lang,
		Content:   strings.TrimSpace(f.Raw),
		Evaluable: evaluable,
	}
}

func (s *Segmenter) render(r Renderer, span string) string {
	if strings.TrimSpace(span) == "" {
		return ""
	}
	out, err := r.Render(span)
	if err != nil {
		s.logger.Warn("segment: render failed, falling back to escaped text",
			slog.String("error", err.Error()))
		return "<pre>" + html.EscapeString(span) + "</pre>"
	}
	return out
}
