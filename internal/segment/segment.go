// Package segment pairs table-of-contents entries with the transcribed
// content-chunk stream to produce chapters.
package segment

import (
	"iter"
	"strings"

	"github.com/dctremblay/pagemill/internal/book"
)

// Chapters returns a lazy sequence of chapters derived from the TOC and the
// page-indexed chunk stream. The sequence is restartable: every range over it
// re-derives from the inputs, and the inputs are never mutated.
//
// Only page-bearing TOC entries participate. Each consecutive pair (A, B) of
// such entries yields one chapter anchored at A containing every chunk whose
// page satisfies A.Page <= page < B.Page; the final page-bearing entry only
// closes the preceding chapter. Chapter text is the chunk texts joined with a
// single space, in chunk emission order.
func Chapters(toc []book.TocItem, chunks []book.ContentChunk) iter.Seq[book.Chapter] {
	return func(yield func(book.Chapter) bool) {
		paged := pagedEntries(toc)
		cursor := 0
		for i := 0; i+1 < len(paged); i++ {
			start, end := paged[i].Page, paged[i+1].Page
			for cursor < len(chunks) && chunks[cursor].Page < start {
				cursor++
			}
			var parts []string
			var members []book.ContentChunk
			for cursor < len(chunks) && chunks[cursor].Page < end {
				members = append(members, chunks[cursor])
				parts = append(parts, chunks[cursor].Text)
				cursor++
			}
			ch := book.Chapter{
				TocItem: paged[i],
				Text:    strings.Join(parts, " "),
				Chunks:  members,
			}
			if !yield(ch) {
				return
			}
		}
	}
}

// Collect materializes the chapter sequence into a slice.
func Collect(toc []book.TocItem, chunks []book.ContentChunk) []book.Chapter {
	var out []book.Chapter
	for ch := range Chapters(toc, chunks) {
		out = append(out, ch)
	}
	return out
}

func pagedEntries(toc []book.TocItem) []book.TocItem {
	out := make([]book.TocItem, 0, len(toc))
	for _, it := range toc {
		if it.HasPage() {
			out = append(out, it)
		}
	}
	return out
}
