// Package models defines the domain types for the course content tree.
package models

import "time"

// IndexPart is the part identifier of a chapter's landing page.
const IndexPart = "readme"

// DocPath identifies a document by chapter and part.
type DocPath struct {
	Chapter string `json:"chapter"`
	Part    string `json:"part"`
}

// NewDocPath returns a DocPath, defaulting an empty part to IndexPart.
func NewDocPath(chapter, part string) DocPath {
	if part == "" {
		part = IndexPart
	}
	return DocPath{Chapter: chapter, Part: part}
}

// IsIndex reports whether the path names a chapter landing page.
func (p DocPath) IsIndex() bool {
	return p.Part == IndexPart || p.Part == ""
}

// String returns "chapter/part".
func (p DocPath) String() string {
	part := p.Part
	if part == "" {
		part = IndexPart
	}
	return p.Chapter + "/" + part
}

// URL returns the site route of the document. Index documents live at the
// chapter root.
func (p DocPath) URL() string {
	if p.IsIndex() {
		return "/" + p.Chapter
	}
	return "/" + p.Chapter + "/" + p.Part
}

// Document is one parsed content file.
type Document struct {
	Path     DocPath        `json:"path"`
	Title    string         `json:"title"`
	Sequence int            `json:"sequence"`
	Body     string         `json:"-"`
	Checksum string         `json:"checksum"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// FileMeta describes a content file found under the content root.
type FileMeta struct {
	Path      string    `json:"path"` // slash-separated, relative to the content root
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Problem records a document left out of the tree and why.
type Problem struct {
	Path   DocPath `json:"path"`
	Reason string  `json:"reason"`
	Err    error   `json:"-"`
}

// NewProblem wraps err for the document at path.
func NewProblem(path DocPath, err error) Problem {
	return Problem{Path: path, Reason: err.Error(), Err: err}
}

// Error implements error so a Problem can be logged or joined directly.
func (p Problem) Error() string {
	return p.Path.String() + ": " + p.Reason
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (p Problem) Unwrap() error { return p.Err }
