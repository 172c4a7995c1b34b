package render

import (
	"bytes"
	"fmt"
	"io"
	"iter"

	"github.com/dctremblay/pagemill/internal/book"
	"github.com/yuin/goldmark"
)

// HTML writes the book as an HTML document by rendering the markdown output
// through goldmark.
func HTML(w io.Writer, meta book.Meta, chapters iter.Seq[book.Chapter]) error {
	var md bytes.Buffer
	if err := Markdown(&md, meta, chapters); err != nil {
		return err
	}
	if err := goldmark.Convert(md.Bytes(), w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
