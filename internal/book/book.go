// Package book holds the shared data model: table-of-contents entries,
// per-page capture manifests, transcribed content chunks, and the chapters
// derived from them.
package book

// TocItem is one table-of-contents entry. Exactly one of Page or Location is
// set by producers; zero means absent. PositionID is an opaque ordering
// anchor within the source document and is never used for arithmetic.
type TocItem struct {
	Label      string `json:"label"`
	Depth      int    `json:"depth"`
	PositionID int64  `json:"position_id"`
	Page       int    `json:"page,omitempty"`
	Location   int    `json:"location,omitempty"`
}

// HasPage reports whether the entry carries a physical page number.
func (t TocItem) HasPage() bool {
	return t.Page > 0
}

// PageCapture is one entry in the capture manifest: a page awaiting
// transcription. Screenshot is an opaque reference (a file path in this
// implementation) to the captured image.
type PageCapture struct {
	Index      int    `json:"index"`
	Page       int    `json:"page"`
	Screenshot string `json:"screenshot"`
}

// ContentChunk is one transcribed page. Index values are contiguous from 0
// and strictly increasing; Page values are non-decreasing across the
// sequence. A page whose transcription permanently fails produces no chunk.
type ContentChunk struct {
	Index      int    `json:"index"`
	Page       int    `json:"page"`
	Text       string `json:"text"`
	Screenshot string `json:"screenshot,omitempty"`
}

// Chapter is a derived view pairing a TOC entry with the chunks it spans.
// Chapters are produced on demand and never persisted.
type Chapter struct {
	TocItem TocItem
	Text    string
	Chunks  []ContentChunk
}

// Meta is the book-level descriptive metadata.
type Meta struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
}

// Metadata aggregates everything known about a book before transcription.
type Metadata struct {
	Meta          Meta          `json:"meta"`
	Toc           []TocItem     `json:"toc"`
	Pages         []PageCapture `json:"pages"`
	TotalNumPages int           `json:"total_num_pages"`
}

// TocByPage builds a page-number → section-label lookup. The first entry for
// a page wins. The map is built once and shared read-only across workers.
func TocByPage(toc []TocItem) map[int]string {
	m := make(map[int]string, len(toc))
	for _, it := range toc {
		if !it.HasPage() {
			continue
		}
		if _, ok := m[it.Page]; !ok {
			m[it.Page] = it.Label
		}
	}
	return m
}
