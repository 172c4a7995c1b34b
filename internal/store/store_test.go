package store

import (
	"path/filepath"
	"testing"

	"github.com/dctremblay/pagemill/internal/book"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "pagemill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutGetBook(t *testing.T) {
	s := openTestStore(t)

	md := &book.Metadata{
		Meta: book.Meta{Title: "A Study of Tides", Authors: []string{"M. Harlow"}},
		Toc: []book.TocItem{
			{Label: "Chapter 1", PositionID: 1, Page: 1},
		},
		TotalNumPages: 200,
	}
	if err := s.PutBook("tides", md); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.GetBook("tides")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored book")
	}
	if got.Meta.Title != md.Meta.Title {
		t.Errorf("expected title %q, got %q", md.Meta.Title, got.Meta.Title)
	}
	if len(got.Toc) != 1 || got.Toc[0].Label != "Chapter 1" {
		t.Errorf("toc did not round-trip: %+v", got.Toc)
	}
}

func TestStore_GetMissingBook(t *testing.T) {
	s := openTestStore(t)
	got, err := s.GetBook("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing book, got %+v", got)
	}
}

func TestStore_PutGetChunks(t *testing.T) {
	s := openTestStore(t)

	chunks := []book.ContentChunk{
		{Index: 0, Page: 1, Text: "one"},
		{Index: 1, Page: 2, Text: "two"},
	}
	if err := s.PutChunks("tides", chunks); err != nil {
		t.Fatalf("put chunks: %v", err)
	}

	got, err := s.GetChunks("tides")
	if err != nil {
		t.Fatalf("get chunks: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if got[0].Text != "one" || got[1].Page != 2 {
		t.Errorf("chunks did not round-trip: %+v", got)
	}
}

func TestStore_GetMissingChunks(t *testing.T) {
	s := openTestStore(t)
	got, err := s.GetChunks("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing chunks, got %+v", got)
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	s := openTestStore(t)

	for _, id := range []string{"alpha", "beta"} {
		if err := s.PutBook(id, &book.Metadata{Meta: book.Meta{Title: id}}); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	ids, err := s.ListBooks()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 books, got %v", ids)
	}

	if err := s.DeleteBook("alpha"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ids, err = s.ListBooks()
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(ids) != 1 || ids[0] != "beta" {
		t.Errorf("expected [beta], got %v", ids)
	}
}
