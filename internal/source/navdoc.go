package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/dctremblay/pagemill/internal/book"
	"github.com/dctremblay/pagemill/internal/nav"
	"golang.org/x/net/html"
)

// ParseNavDoc extracts TOC entries from a reader navigation document: an
// HTML page whose <nav> holds nested <ol>/<li> lists, each item an anchor
// with the section label followed by a position indicator such as
// "Page 12 of 300". Nesting depth becomes entry depth; items without a
// recognizable indicator are skipped.
func ParseNavDoc(r io.Reader) ([]book.TocItem, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse nav document: %w", err)
	}

	root := findNav(doc)
	if root == nil {
		root = doc
	}

	var items []book.TocItem
	var position int64
	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "ol", "ul":
				walk(c, depth)
			case "li":
				label, indicator := splitListItem(c)
				if label != "" {
					if pos := nav.Parse(indicator); pos != nil {
						position++
						items = append(items, book.TocItem{
							Label:      label,
							Depth:      depth,
							PositionID: position,
							Page:       pos.Page,
							Location:   pos.Location,
						})
					}
				}
				// Nested lists inside the item are one level deeper.
				for g := c.FirstChild; g != nil; g = g.NextSibling {
					if g.Type == html.ElementNode && (g.Data == "ol" || g.Data == "ul") {
						walk(g, depth+1)
					}
				}
			default:
				walk(c, depth)
			}
		}
	}
	walk(root, 0)

	if len(items) == 0 {
		return nil, ErrNoToc
	}
	return items, nil
}

// splitListItem returns the anchor text (the label) and the remaining direct
// text of a <li>, which carries the position indicator.
func splitListItem(li *html.Node) (label, indicator string) {
	var rest strings.Builder
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.ElementNode && c.Data == "a" && label == "":
			label = textContent(c)
		case c.Type == html.ElementNode && (c.Data == "ol" || c.Data == "ul"):
			// Nested list, handled by the caller.
		case c.Type == html.TextNode:
			rest.WriteString(c.Data)
		case c.Type == html.ElementNode:
			rest.WriteString(textContent(c))
		}
	}
	return strings.TrimSpace(label), strings.TrimSpace(rest.String())
}

func findNav(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "nav" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNav(c); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}
