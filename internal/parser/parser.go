// Package parser splits course files into their YAML front matter and
// markdown body.
package parser

import (
	"bytes"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/learnclj/internal/apperr"
)

const delim = "---"

// Header holds the required front matter fields.
type Header struct {
	Title    string `json:"title" yaml:"title"`
	Sequence *int   `json:"sequence" yaml:"sequence"`
}

// Validate checks that every required field is present.
func (h *Header) Validate() error {
	return validation.ValidateStruct(h,
		validation.Field(&h.Title, validation.Required),
		validation.Field(&h.Sequence, validation.NotNil),
	)
}

// Result holds the output of parsing a course file.
type Result struct {
	Title    string
	Sequence int
	Meta     map[string]any
	Body     string
}

// Parse extracts the header and body from raw file bytes. Any problem with
// the header is reported as *apperr.MalformedHeaderError; the caller fills
// in the path.
func Parse(data []byte) (*Result, error) {
	block, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	var h Header
	if err := yaml.Unmarshal(block, &h); err != nil {
		return nil, &apperr.MalformedHeaderError{Reason: "invalid yaml", Err: err}
	}
	h.Title = strings.TrimSpace(h.Title)
	if err := h.Validate(); err != nil {
		return nil, &apperr.MalformedHeaderError{Reason: err.Error()}
	}

	var meta map[string]any
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return nil, &apperr.MalformedHeaderError{Reason: "invalid yaml", Err: err}
	}
	delete(meta, "title")
	delete(meta, "sequence")
	if len(meta) == 0 {
		meta = nil
	}

	return &Result{
		Title:    h.Title,
		Sequence: *h.Sequence,
		Meta:     meta,
		Body:     body,
	}, nil
}

// splitFrontmatter separates the YAML block between the leading --- lines
// from the body. The header is mandatory.
func splitFrontmatter(data []byte) ([]byte, string, error) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	trimmed := bytes.TrimLeft(data, "\n")

	first, rest, _ := bytes.Cut(trimmed, []byte("\n"))
	if string(bytes.TrimRight(first, " \t")) != delim {
		return nil, "", &apperr.MalformedHeaderError{Reason: "missing opening --- delimiter"}
	}

	// The header ends at the first line that is exactly ---; lines such as
	// ---- or "--- x" belong to the YAML block.
	for off := 0; ; {
		line, _, found := bytes.Cut(rest[off:], []byte("\n"))
		if string(bytes.TrimRight(line, " \t")) == delim {
			var body string
			if found {
				body = strings.TrimLeft(string(rest[off+len(line)+1:]), "\n")
			}
			return rest[:off], body, nil
		}
		if !found {
			return nil, "", &apperr.MalformedHeaderError{Reason: "missing closing --- delimiter"}
		}
		off += len(line) + 1
	}
}
