// Package render turns assembled chapters into output documents. Renderers
// consume only the TOC label, depth, and chapter text.
package render

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/dctremblay/pagemill/internal/book"
)

// Markdown writes the book as a single markdown document: title, author
// line, a generated table of contents, then one heading+body per chapter.
func Markdown(w io.Writer, meta book.Meta, chapters iter.Seq[book.Chapter]) error {
	var sb strings.Builder

	if meta.Title != "" {
		sb.WriteString("# " + meta.Title + "\n\n")
	}
	if len(meta.Authors) > 0 {
		sb.WriteString("*by " + strings.Join(meta.Authors, ", ") + "*\n\n")
	}

	// Materialize once; the sequence is restartable but chapters are needed
	// twice (contents list, then bodies).
	var all []book.Chapter
	for ch := range chapters {
		all = append(all, ch)
	}

	if len(all) > 0 {
		sb.WriteString("## Contents\n\n")
		for _, ch := range all {
			indent := strings.Repeat("  ", ch.TocItem.Depth)
			sb.WriteString(fmt.Sprintf("%s- [%s](#%s)\n", indent, ch.TocItem.Label, anchor(ch.TocItem.Label)))
		}
		sb.WriteString("\n")
	}

	for _, ch := range all {
		sb.WriteString(headingMarker(ch.TocItem.Depth) + " " + ch.TocItem.Label + "\n\n")
		if ch.Text != "" {
			sb.WriteString(ch.Text + "\n\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// headingMarker maps TOC depth to a markdown heading level, starting at h2
// (h1 is the book title) and capped at h6.
func headingMarker(depth int) string {
	level := depth + 2
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level)
}

// anchor converts a label to a GitHub-style heading anchor.
func anchor(label string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-':
			sb.WriteByte('-')
		}
	}
	return sb.String()
}
