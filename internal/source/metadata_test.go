package source

import (
	"errors"
	"strings"
	"testing"

	"github.com/dctremblay/pagemill/internal/book"
)

const validMetadataJSON = `{
	"meta": {"title": "A Study of Tides", "authors": ["M. Harlow"]},
	"toc": [
		{"label": "Preface", "depth": 0, "position_id": 10, "location": 4},
		{"label": "Chapter 1", "depth": 0, "position_id": 20, "page": 1},
		{"label": "Chapter 2", "depth": 0, "position_id": 30, "page": 12}
	],
	"pages": [
		{"index": 0, "page": 1, "screenshot": "pages/0001.png"},
		{"index": 1, "page": 2, "screenshot": "pages/0002.png"}
	],
	"total_num_pages": 200
}`

func TestLoadMetadata_Valid(t *testing.T) {
	md, err := LoadMetadata(strings.NewReader(validMetadataJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md.Meta.Title != "A Study of Tides" {
		t.Errorf("expected title, got %q", md.Meta.Title)
	}
	if len(md.Toc) != 3 {
		t.Errorf("expected 3 toc entries, got %d", len(md.Toc))
	}
	if len(md.Pages) != 2 {
		t.Errorf("expected 2 pages, got %d", len(md.Pages))
	}
	if md.TotalNumPages != 200 {
		t.Errorf("expected 200 total pages, got %d", md.TotalNumPages)
	}
}

func TestLoadMetadata_MalformedJSON(t *testing.T) {
	if _, err := LoadMetadata(strings.NewReader("{not json")); err == nil {
		t.Error("expected decode error")
	}
}

func TestValidate_NoToc(t *testing.T) {
	md := &book.Metadata{
		Pages: []book.PageCapture{{Index: 0, Page: 1, Screenshot: "x"}},
	}
	if err := Validate(md); !errors.Is(err, ErrNoToc) {
		t.Errorf("expected ErrNoToc, got %v", err)
	}
}

func TestValidate_NoPages(t *testing.T) {
	md := &book.Metadata{
		Toc: []book.TocItem{{Label: "Ch 1", PositionID: 1, Page: 1}},
	}
	if err := Validate(md); !errors.Is(err, ErrNoPages) {
		t.Errorf("expected ErrNoPages, got %v", err)
	}
}

func TestValidate_PositionIDsMustIncrease(t *testing.T) {
	md := &book.Metadata{
		Toc: []book.TocItem{
			{Label: "A", PositionID: 20, Page: 1},
			{Label: "B", PositionID: 10, Page: 5},
		},
		Pages:         []book.PageCapture{{Index: 0, Page: 1, Screenshot: "x"}},
		TotalNumPages: 10,
	}
	if err := Validate(md); err == nil {
		t.Error("expected ordering error")
	}
}

func TestValidate_ExactlyOneOfPageOrLocation(t *testing.T) {
	base := func() *book.Metadata {
		return &book.Metadata{
			Pages:         []book.PageCapture{{Index: 0, Page: 1, Screenshot: "x"}},
			TotalNumPages: 10,
		}
	}

	md := base()
	md.Toc = []book.TocItem{{Label: "A", PositionID: 1, Page: 2, Location: 3}}
	if err := Validate(md); err == nil {
		t.Error("expected error for entry with both page and location")
	}

	md = base()
	md.Toc = []book.TocItem{{Label: "A", PositionID: 1}}
	if err := Validate(md); err == nil {
		t.Error("expected error for entry with neither page nor location")
	}
}

func TestValidate_TotalPagesInferredFromManifest(t *testing.T) {
	md := &book.Metadata{
		Toc: []book.TocItem{{Label: "A", PositionID: 1, Page: 1}},
		Pages: []book.PageCapture{
			{Index: 0, Page: 3, Screenshot: "x"},
			{Index: 1, Page: 7, Screenshot: "y"},
		},
	}
	if err := Validate(md); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md.TotalNumPages != 7 {
		t.Errorf("expected inferred total 7, got %d", md.TotalNumPages)
	}
}

func TestValidate_ManifestIndicesContiguous(t *testing.T) {
	md := &book.Metadata{
		Toc: []book.TocItem{{Label: "A", PositionID: 1, Page: 1}},
		Pages: []book.PageCapture{
			{Index: 0, Page: 1, Screenshot: "x"},
			{Index: 2, Page: 2, Screenshot: "y"},
		},
		TotalNumPages: 10,
	}
	if err := Validate(md); err == nil {
		t.Error("expected error for non-contiguous manifest indices")
	}
}
