package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dctremblay/pagemill/internal/book"
	"github.com/dctremblay/pagemill/internal/segment"
)

func testMeta() book.Meta {
	return book.Meta{Title: "A Study of Tides", Authors: []string{"M. Harlow"}}
}

func testChapterInputs() ([]book.TocItem, []book.ContentChunk) {
	toc := []book.TocItem{
		{Label: "Chapter 1", Depth: 0, PositionID: 1, Page: 1},
		{Label: "The Spring Tide", Depth: 1, PositionID: 2, Page: 3},
		{Label: "Chapter 2", Depth: 0, PositionID: 3, Page: 5},
	}
	chunks := []book.ContentChunk{
		{Index: 0, Page: 1, Text: "The sea rises."},
		{Index: 1, Page: 3, Text: "It falls again."},
	}
	return toc, chunks
}

func TestMarkdown_Structure(t *testing.T) {
	toc, chunks := testChapterInputs()
	var buf bytes.Buffer
	if err := Markdown(&buf, testMeta(), segment.Chapters(toc, chunks)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# A Study of Tides",
		"*by M. Harlow*",
		"## Contents",
		"- [Chapter 1](#chapter-1)",
		"  - [The Spring Tide](#the-spring-tide)",
		"## Chapter 1",
		"### The Spring Tide",
		"The sea rises.",
		"It falls again.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q\n---\n%s", want, out)
		}
	}
}

func TestMarkdown_EmptyChapters(t *testing.T) {
	var buf bytes.Buffer
	err := Markdown(&buf, testMeta(), segment.Chapters(nil, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "## Contents") {
		t.Error("expected no contents list when there are no chapters")
	}
	if !strings.Contains(out, "# A Study of Tides") {
		t.Error("expected title even without chapters")
	}
}

func TestHTML_RendersHeadings(t *testing.T) {
	toc, chunks := testChapterInputs()
	var buf bytes.Buffer
	if err := HTML(&buf, testMeta(), segment.Chapters(toc, chunks)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "A Study of Tides") {
		t.Errorf("expected h1 title in html output:\n%s", out)
	}
	if !strings.Contains(out, "<h2") {
		t.Errorf("expected chapter headings in html output:\n%s", out)
	}
}

func TestDOCX_ProducesArchive(t *testing.T) {
	toc, chunks := testChapterInputs()
	var buf bytes.Buffer
	if err := DOCX(&buf, testMeta(), segment.Chapters(toc, chunks)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// DOCX files are ZIP archives.
	if buf.Len() < 4 || !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Errorf("expected a zip archive, got %d bytes", buf.Len())
	}
}

func TestHeadingMarker_Capped(t *testing.T) {
	if got := headingMarker(0); got != "##" {
		t.Errorf("depth 0: expected ##, got %q", got)
	}
	if got := headingMarker(10); got != "######" {
		t.Errorf("deep nesting: expected ######, got %q", got)
	}
}
