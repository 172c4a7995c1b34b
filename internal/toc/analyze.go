// Package toc classifies table-of-contents entries to locate the frontier
// between front matter, narrative content, and back matter.
package toc

import (
	"strings"

	"github.com/dctremblay/pagemill/internal/book"
)

// BackMatterLabels is the closed vocabulary of section labels that mark the
// start of back matter. Labels are matched case-insensitively, as whole
// labels or label prefixes ("Appendix" matches "Appendix A"). Kept as data
// rather than inline logic: it is the most likely source of false positives
// and negatives, and extending it should not require touching the scan.
// Narrative sections that merely appear late in the book ("Epilogue") are
// deliberately absent.
var BackMatterLabels = []string{
	"Acknowledgements",
	"About the Author",
	"Appendix",
	"Bibliography",
	"Index",
	"Notes",
	"Glossary",
}

// Analysis is the result of classifying a table of contents.
type Analysis struct {
	// FirstContent is the first entry that precedes the back-matter region.
	// Absent stronger signals this is the first page-bearing entry.
	FirstContent *book.TocItem

	// FirstPostContent is the first entry, in document order, that starts the
	// back matter, or nil when no entry qualifies.
	FirstPostContent *book.TocItem
}

// Analyze classifies the TOC entries of a book with totalNumPages physical
// pages. It is a pure pass over the entries: the input is never mutated.
//
// An entry qualifies as post-content only when its label matches
// BackMatterLabels and its page falls within the trailing ~10% of the book.
// Lateness alone is never sufficient.
func Analyze(toc []book.TocItem, totalNumPages int) Analysis {
	var a Analysis
	for i := range toc {
		if toc[i].HasPage() {
			a.FirstContent = &toc[i]
			break
		}
	}

	threshold := totalNumPages - totalNumPages/10
	for i := range toc {
		it := &toc[i]
		if !it.HasPage() || it.Page < threshold {
			continue
		}
		if IsBackMatterLabel(it.Label) {
			a.FirstPostContent = it
			break
		}
	}
	return a
}

// IsBackMatterLabel reports whether a section label belongs to the
// back-matter vocabulary, matched case-insensitively as a whole label or a
// prefix of the label.
func IsBackMatterLabel(label string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	for _, v := range BackMatterLabels {
		if strings.HasPrefix(label, strings.ToLower(v)) {
			return true
		}
	}
	return false
}
