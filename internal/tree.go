package internal

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/starford/learnclj/internal/courseservice"
)

// writeTree prints one row per page in reading order, parts indented under
// their chapter.
func writeTree(w io.Writer, v courseservice.TreeView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, ch := range v.Chapters {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", ch.Sequence, ch.ID, ch.Title, ch.URL)
		for _, p := range ch.Parts {
			fmt.Fprintf(tw, "  %d\t  %s\t  %s\t%s\n", p.Sequence, p.ID, p.Title, p.URL)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(v.Problems) > 0 {
		fmt.Fprintf(w, "\n%d problem(s):\n", len(v.Problems))
		for _, p := range v.Problems {
			fmt.Fprintf(w, "  %s: %s\n", p.Path, p.Reason)
		}
	}
	return nil
}
