package source

import (
	"errors"
	"strings"
	"testing"
)

const navDocHTML = `<!DOCTYPE html>
<html><head><title>Contents</title></head><body>
<nav>
  <ol>
    <li><a href="#p1">Preface</a> <span>Page iv of 300</span></li>
    <li><a href="#p2">Chapter 1</a> <span>Page 1 of 300</span>
      <ol>
        <li><a href="#p3">A Beginning</a> <span>Page 2 of 300</span></li>
      </ol>
    </li>
    <li><a href="#p4">Chapter 2</a> <span>Page 20 of 300</span></li>
    <li><a href="#p5">Unplaced Section</a></li>
  </ol>
</nav>
</body></html>`

func TestParseNavDoc_ExtractsEntries(t *testing.T) {
	items, err := ParseNavDoc(strings.NewReader(navDocHTML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 entries (unplaced skipped), got %d", len(items))
	}

	if items[0].Label != "Preface" || items[0].Location != 4 || items[0].Page != 0 {
		t.Errorf("entry 0: expected roman front matter as location 4, got %+v", items[0])
	}
	if items[1].Label != "Chapter 1" || items[1].Page != 1 {
		t.Errorf("entry 1: expected Chapter 1 @ page 1, got %+v", items[1])
	}
	if items[2].Label != "A Beginning" || items[2].Depth != 1 {
		t.Errorf("entry 2: expected nested entry at depth 1, got %+v", items[2])
	}
	if items[3].Label != "Chapter 2" || items[3].Page != 20 {
		t.Errorf("entry 3: expected Chapter 2 @ page 20, got %+v", items[3])
	}
}

func TestParseNavDoc_PositionIDsStrictlyIncreasing(t *testing.T) {
	items, err := ParseNavDoc(strings.NewReader(navDocHTML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var last int64 = -1
	for i, it := range items {
		if it.PositionID <= last {
			t.Errorf("entry %d: position id %d not strictly increasing", i, it.PositionID)
		}
		last = it.PositionID
	}
}

func TestParseNavDoc_NoEntries(t *testing.T) {
	_, err := ParseNavDoc(strings.NewReader("<html><body><p>nothing here</p></body></html>"))
	if !errors.Is(err, ErrNoToc) {
		t.Errorf("expected ErrNoToc, got %v", err)
	}
}
