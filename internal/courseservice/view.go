package courseservice

import "github.com/starford/learnclj/internal/models"

// TreeView is the navigation shape of the course: ids, titles and routes
// without document bodies.
type TreeView struct {
	Chapters []ChapterView `json:"chapters"`
	Problems []ProblemView `json:"problems"`
}

// ChapterView is one chapter in a TreeView.
type ChapterView struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Sequence int        `json:"sequence"`
	URL      string     `json:"url"`
	Parts    []PartView `json:"parts"`
}

// PartView is one non-index document in a ChapterView.
type PartView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Sequence int    `json:"sequence"`
	URL      string `json:"url"`
}

// ProblemView reports a document left out of the tree.
type ProblemView struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ViewOf projects tree into a TreeView. Slices are never nil.
func ViewOf(tree *models.Tree) TreeView {
	v := TreeView{
		Chapters: make([]ChapterView, 0, len(tree.Chapters)),
		Problems: make([]ProblemView, 0, len(tree.Problems)),
	}
	for _, ch := range tree.Chapters {
		cv := ChapterView{
			ID:       ch.ID(),
			Title:    ch.Title(),
			Sequence: ch.Sequence(),
			URL:      ch.Index.Path.URL(),
			Parts:    make([]PartView, 0, len(ch.Parts)),
		}
		for _, p := range ch.Parts {
			cv.Parts = append(cv.Parts, PartView{
				ID:       p.Path.Part,
				Title:    p.Title,
				Sequence: p.Sequence,
				URL:      p.Path.URL(),
			})
		}
		v.Chapters = append(v.Chapters, cv)
	}
	for _, p := range tree.Problems {
		v.Problems = append(v.Problems, ProblemView{Path: p.Path.String(), Reason: p.Reason})
	}
	return v
}
