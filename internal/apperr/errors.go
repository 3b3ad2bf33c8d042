// Package apperr defines the error taxonomy shared by the loader, the
// segmenter and the outer surfaces.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrMalformedHeader = errors.New("malformed header")
	ErrMalformedFence  = errors.New("malformed code fence")
)

// NotFoundError is returned when a chapter/part pair has no file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %s: not found", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MissingIndexError marks a document whose chapter has no usable index.
type MissingIndexError struct {
	Chapter string
	Cause   error
}

func (e *MissingIndexError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("chapter %s: index unavailable: %v", e.Chapter, e.Cause)
	}
	return fmt.Sprintf("chapter %s: index unavailable", e.Chapter)
}

func (e *MissingIndexError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *MissingIndexError) Unwrap() error { return e.Cause }

// MalformedHeaderError is returned when the front matter of a file is
// missing, unparsable, or lacks a required field.
type MalformedHeaderError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedHeaderError) Error() string {
	msg := "malformed header"
	if e.Path != "" {
		msg = fmt.Sprintf("document %s: malformed header", e.Path)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedHeaderError) Is(target error) bool {
	return target == ErrMalformedHeader
}

func (e *MalformedHeaderError) Unwrap() error { return e.Err }

// MalformedFenceError reports an opening ``` without a closing one.
// Offset is the byte offset of the opening fence, Line its 1-based line.
type MalformedFenceError struct {
	Offset int
	Line   int
}

func (e *MalformedFenceError) Error() string {
	return fmt.Sprintf("unterminated code fence at line %d (offset %d)", e.Line, e.Offset)
}

func (e *MalformedFenceError) Is(target error) bool {
	return target == ErrMalformedFence
}
