package render

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/dctremblay/pagemill/internal/book"
	"github.com/fumiama/go-docx"
)

// Heading run sizes by TOC depth, in half-points.
var headingSizes = []string{"36", "32", "28"}

// DOCX writes the book as a Word document: a title page, an outline of the
// chapter labels, then each chapter with its heading sized by TOC depth.
func DOCX(w io.Writer, meta book.Meta, chapters iter.Seq[book.Chapter]) error {
	doc := docx.New().WithDefaultTheme()

	if meta.Title != "" {
		doc.AddParagraph().AddText(meta.Title).Size("44")
	}
	if len(meta.Authors) > 0 {
		doc.AddParagraph().AddText("by " + strings.Join(meta.Authors, ", ")).Size("24")
	}

	var all []book.Chapter
	for ch := range chapters {
		all = append(all, ch)
	}

	if len(all) > 0 {
		doc.AddParagraph().AddText("Contents").Size("32")
		for _, ch := range all {
			indent := strings.Repeat("    ", ch.TocItem.Depth)
			doc.AddParagraph().AddText(indent + ch.TocItem.Label)
		}
	}

	for _, ch := range all {
		doc.AddParagraph().AddText(ch.TocItem.Label).Size(headingSize(ch.TocItem.Depth))
		for _, para := range strings.Split(ch.Text, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			doc.AddParagraph().AddText(para)
		}
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func headingSize(depth int) string {
	if depth >= len(headingSizes) {
		depth = len(headingSizes) - 1
	}
	return headingSizes[depth]
}
