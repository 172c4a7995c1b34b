// Package source loads book metadata and page manifests from their various
// origins: reader-exported JSON, HTML navigation documents, EPUB editions,
// and born-digital PDFs.
package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dctremblay/pagemill/internal/book"
)

// Structural input problems are fatal: downstream segmentation cannot proceed
// meaningfully without a TOC or content, so they abort the run at startup.
var (
	ErrNoToc   = errors.New("metadata has no table of contents")
	ErrNoPages = errors.New("metadata has no pages to transcribe")
)

// LoadMetadata decodes and validates book metadata from JSON.
func LoadMetadata(r io.Reader) (*book.Metadata, error) {
	var md book.Metadata
	dec := json.NewDecoder(r)
	if err := dec.Decode(&md); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if err := Validate(&md); err != nil {
		return nil, err
	}
	return &md, nil
}

// Validate checks the structural invariants of book metadata: a non-empty
// TOC in document order (strictly increasing position ids, each entry
// carrying exactly one of page or location), a non-empty page manifest with
// contiguous indices, and a usable total page count. TotalNumPages is
// inferred from the manifest when absent.
func Validate(md *book.Metadata) error {
	if len(md.Toc) == 0 {
		return ErrNoToc
	}
	if len(md.Pages) == 0 {
		return ErrNoPages
	}

	var lastPos int64 = -1
	for i, it := range md.Toc {
		if it.PositionID <= lastPos {
			return fmt.Errorf("toc entry %d (%q): position id %d not strictly increasing", i, it.Label, it.PositionID)
		}
		lastPos = it.PositionID
		if it.Page > 0 && it.Location > 0 {
			return fmt.Errorf("toc entry %d (%q): carries both page and location", i, it.Label)
		}
		if it.Page == 0 && it.Location == 0 {
			return fmt.Errorf("toc entry %d (%q): carries neither page nor location", i, it.Label)
		}
	}

	maxPage := 0
	for i, pg := range md.Pages {
		if pg.Index != i {
			return fmt.Errorf("page manifest entry %d has index %d", i, pg.Index)
		}
		if pg.Page > maxPage {
			maxPage = pg.Page
		}
	}
	if md.TotalNumPages <= 0 {
		md.TotalNumPages = maxPage
	}
	if md.TotalNumPages <= 0 {
		return fmt.Errorf("total page count unknown and not derivable from the manifest")
	}
	return nil
}
