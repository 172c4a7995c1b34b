package pipeline

import (
	"testing"
	"time"

	"github.com/dctremblay/pagemill/internal/book"
)

func testMetadata() *book.Metadata {
	return &book.Metadata{
		Meta: book.Meta{Title: "A Study of Tides"},
		Toc: []book.TocItem{
			{Label: "Chapter 1", PositionID: 1, Page: 1},
			{Label: "Chapter 2", PositionID: 2, Page: 5},
		},
		Pages: []book.PageCapture{
			{Index: 0, Page: 1, Screenshot: "p1.png"},
		},
		TotalNumPages: 10,
	}
}

func TestNewJob_InitialState(t *testing.T) {
	job := NewJob("tides", testMetadata())
	if job.ID == "" {
		t.Error("expected a generated job id")
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if job.Title != "A Study of Tides" {
		t.Errorf("expected title from metadata, got %q", job.Title)
	}
	if job.PDFPath() != "" {
		t.Errorf("capture job must have no pdf path, got %q", job.PDFPath())
	}
}

func TestNewJob_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewJob("b", testMetadata()).ID
		if seen[id] {
			t.Fatalf("duplicate job id %q", id)
		}
		seen[id] = true
	}
}

func TestNewPDFJob(t *testing.T) {
	job := NewPDFJob("tides", testMetadata(), "/books/tides.pdf")
	if job.PDFPath() != "/books/tides.pdf" {
		t.Errorf("expected pdf path, got %q", job.PDFPath())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("tides", testMetadata())

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusValidating, "validating"},
		{StatusTranscribing, "transcribing"},
		{StatusSegmenting, "segmenting"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_PageDone(t *testing.T) {
	job := NewJob("tides", testMetadata())
	job.SetTotalPages(3)
	job.PageDone(true)
	job.PageDone(true)
	job.PageDone(false)

	snap := job.Snapshot()
	if snap.Progress.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", snap.Progress.TotalPages)
	}
	if snap.Progress.PagesTranscribed != 2 {
		t.Errorf("expected 2 transcribed, got %d", snap.Progress.PagesTranscribed)
	}
	if snap.Progress.PagesDropped != 1 {
		t.Errorf("expected 1 dropped, got %d", snap.Progress.PagesDropped)
	}
}

func TestJob_AddError(t *testing.T) {
	job := NewJob("tides", testMetadata())
	job.AddError("page 3 dropped")
	job.AddError("page 9 dropped")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "page 3 dropped" {
		t.Errorf("expected first error preserved, got %q", snap.Progress.Errors[0])
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := NewJob("tides", testMetadata())
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("tides", testMetadata())
	store.Put(job)

	got := store.Get(job.ID)
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.BookID != "tides" {
		t.Errorf("expected book id %q, got %q", "tides", got.BookID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := NewJob("old", testMetadata())
	store.Put(expired)

	time.Sleep(100 * time.Millisecond)

	fresh := NewJob("new", testMetadata())
	store.Put(fresh)

	store.Cleanup()

	if store.Get(expired.ID) != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}
