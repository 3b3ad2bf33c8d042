package render

import (
	"bytes"
	"strconv"

	"github.com/yuin/goldmark/ast"
)

// headingIDs implements goldmark's parser.IDs with goldmark's own slug rules
// so one registry can be shared by several Convert calls.
type headingIDs struct {
	used map[string]bool
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{used: make(map[string]bool)}
}

// Generate slugs value to lowercase ASCII letters and digits, with spaces,
// '-' and '_' turned into '-'. A taken slug gets the first free -N suffix.
func (h *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	value = bytes.TrimSpace(value)
	slug := make([]byte, 0, len(value))
	for _, c := range value {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			slug = append(slug, c)
		case c >= 'A' && c <= 'Z':
			slug = append(slug, c+'a'-'A')
		case c == ' ' || c == '\t' || c == '-' || c == '_':
			slug = append(slug, '-')
		}
	}
	if len(slug) == 0 {
		if kind == ast.KindHeading {
			slug = []byte("heading")
		} else {
			slug = []byte("id")
		}
	}

	id := string(slug)
	for i := 1; h.used[id]; i++ {
		id = string(slug) + "-" + strconv.Itoa(i)
	}
	h.used[id] = true
	return []byte(id)
}

// Put reserves an explicitly assigned id.
func (h *headingIDs) Put(value []byte) {
	h.used[string(value)] = true
}
