package models

// Chapter is a directory of documents with a landing page.
type Chapter struct {
	Index Document   `json:"index"`
	Parts []Document `json:"parts"`
}

// ID returns the chapter identifier.
func (c Chapter) ID() string { return c.Index.Path.Chapter }

// Title returns the title of the chapter's index document.
func (c Chapter) Title() string { return c.Index.Title }

// Sequence returns the sequence of the chapter's index document.
func (c Chapter) Sequence() int { return c.Index.Sequence }

// Tree is the whole course: chapters in reading order plus the documents
// that could not be placed in it.
type Tree struct {
	Chapters []Chapter `json:"chapters"`
	Problems []Problem `json:"problems,omitempty"`
}

// NavLink points at another document.
type NavLink struct {
	Path  DocPath `json:"path"`
	Title string  `json:"title"`
	URL   string  `json:"url"`
}

// LinkTo builds a NavLink for d.
func LinkTo(d Document) *NavLink {
	return &NavLink{Path: d.Path, Title: d.Title, URL: d.Path.URL()}
}

// Documents returns every document in reading order: each chapter's index
// followed by its parts.
func (t *Tree) Documents() []Document {
	var out []Document
	for _, ch := range t.Chapters {
		out = append(out, ch.Index)
		out = append(out, ch.Parts...)
	}
	return out
}

// Paths enumerates every routable document path.
func (t *Tree) Paths() []DocPath {
	docs := t.Documents()
	out := make([]DocPath, len(docs))
	for i, d := range docs {
		out[i] = d.Path
	}
	return out
}

// Chapter returns the chapter with the given id.
func (t *Tree) Chapter(id string) (*Chapter, bool) {
	for i := range t.Chapters {
		if t.Chapters[i].ID() == id {
			return &t.Chapters[i], true
		}
	}
	return nil, false
}

// Find returns the document at p.
func (t *Tree) Find(p DocPath) (*Document, bool) {
	p = NewDocPath(p.Chapter, p.Part)
	ch, ok := t.Chapter(p.Chapter)
	if !ok {
		return nil, false
	}
	if p.IsIndex() {
		return &ch.Index, true
	}
	for i := range ch.Parts {
		if ch.Parts[i].Path.Part == p.Part {
			return &ch.Parts[i], true
		}
	}
	return nil, false
}

// Neighbours returns the previous and next documents in reading order.
// Either may be nil at the ends of the course or when p is unknown.
func (t *Tree) Neighbours(p DocPath) (prev, next *NavLink) {
	p = NewDocPath(p.Chapter, p.Part)
	docs := t.Documents()
	for i, d := range docs {
		if d.Path != p {
			continue
		}
		if i > 0 {
			prev = LinkTo(docs[i-1])
		}
		if i+1 < len(docs) {
			next = LinkTo(docs[i+1])
		}
		return prev, next
	}
	return nil, nil
}
