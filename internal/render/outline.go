package render

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/starford/learnclj/internal/models"
)

var headingSel = cascadia.MustCompile("h2, h3")

// Outline lists the h2/h3 headings of rendered HTML in document order.
// Headings without an id cannot be linked to and are skipped.
func Outline(fragments ...string) []models.OutlineEntry {
	out := []models.OutlineEntry{}
	for _, frag := range fragments {
		if strings.TrimSpace(frag) == "" {
			continue
		}
		doc, err := html.Parse(strings.NewReader(frag))
		if err != nil {
			continue
		}
		for _, n := range headingSel.MatchAll(doc) {
			id := attr(n, "id")
			if id == "" {
				continue
			}
			out = append(out, models.OutlineEntry{
				Level: int(n.Data[1] - '0'),
				ID:    id,
				Text:  textContent(n),
			})
		}
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}
