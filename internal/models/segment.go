package models

import "encoding/json"

// SegmentKind tags a Segment.
type SegmentKind string

const (
	KindProse SegmentKind = "prose"
	KindCode  SegmentKind = "code"
)

// CodeBlock is a fenced block taken verbatim from the body.
type CodeBlock struct {
	Lang      string `json:"lang"`
	Content   string `json:"content"`
	Evaluable bool   `json:"evaluable"`
}

// Segment is one unit of a segmented body: rendered prose or a code block.
type Segment struct {
	Kind SegmentKind
	HTML string
	Code *CodeBlock
}

// Prose returns a prose segment.
func Prose(html string) Segment {
	return Segment{Kind: KindProse, HTML: html}
}

// Code returns a code segment.
func Code(block CodeBlock) Segment {
	return Segment{Kind: KindCode, Code: &block}
}

// IsCode reports whether s is a code segment.
func (s Segment) IsCode() bool { return s.Kind == KindCode && s.Code != nil }

// MarshalJSON emits {"html": ...} for prose and {"code": {...}} for code.
// Empty prose still carries its html key.
func (s Segment) MarshalJSON() ([]byte, error) {
	if s.IsCode() {
		return json.Marshal(struct {
			Code *CodeBlock `json:"code"`
		}{s.Code})
	}
	return json.Marshal(struct {
		HTML string `json:"html"`
	}{s.HTML})
}

// UnmarshalJSON reverses MarshalJSON.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var raw struct {
		HTML *string    `json:"html"`
		Code *CodeBlock `json:"code"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Code != nil {
		*s = Code(*raw.Code)
		return nil
	}
	html := ""
	if raw.HTML != nil {
		html = *raw.HTML
	}
	*s = Prose(html)
	return nil
}

// OutlineEntry is a heading anchor inside a rendered page.
type OutlineEntry struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}

// Page is a fully rendered document ready for presentation.
type Page struct {
	Path     DocPath        `json:"path"`
	Title    string         `json:"title"`
	Sequence int            `json:"sequence"`
	URL      string         `json:"url"`
	Chapter  NavLink        `json:"chapter"`
	Segments []Segment      `json:"segments"`
	Outline  []OutlineEntry `json:"outline"`
	Prev     *NavLink       `json:"prev,omitempty"`
	Next     *NavLink       `json:"next,omitempty"`
}
