package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dctremblay/pagemill/internal/book"
	"github.com/dctremblay/pagemill/internal/segment"
	"github.com/dctremblay/pagemill/internal/source"
	"github.com/dctremblay/pagemill/internal/store"
	"github.com/dctremblay/pagemill/internal/toc"
	"github.com/dctremblay/pagemill/internal/transcribe"
)

// Worker processes a single book job end to end.
type Worker struct {
	client transcribe.Client
	images transcribe.ImageLoader
	st     *store.Store
	log    *slog.Logger
	cfg    transcribe.Config
}

func NewWorker(client transcribe.Client, images transcribe.ImageLoader, st *store.Store, log *slog.Logger, cfg transcribe.Config) *Worker {
	return &Worker{
		client: client,
		images: images,
		st:     st,
		log:    log,
		cfg:    cfg,
	}
}

// Process runs the full pipeline for a job: validate, transcribe, segment,
// persist. Page-level failures are absorbed by the transcription pipeline;
// everything surfacing here fails the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "book_id", job.BookID)

	md := job.Metadata()

	// Phase 1: structural validation. Malformed metadata is not recoverable.
	job.SetStatus(StatusValidating, "validating")
	if err := source.Validate(md); err != nil {
		log.Error("invalid book metadata", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "validating")
		return
	}

	var chunks []book.ContentChunk
	var dropped int

	if pdfPath := job.PDFPath(); pdfPath != "" {
		// Born-digital source: per-page text comes straight from the PDF.
		job.SetStatus(StatusTranscribing, "extracting pdf text")
		var err error
		chunks, err = source.PDFChunks(pdfPath)
		if err != nil {
			log.Error("pdf extraction failed", "path", pdfPath, "error", err)
			job.AddError(fmt.Sprintf("pdf: %s", err))
			job.SetStatus(StatusFailed, "extracting pdf text")
			return
		}
		job.SetTotalPages(len(chunks))
	} else {
		// Phase 2: classify the TOC and narrow the manifest to the span
		// between the first content page and the start of back matter.
		analysis := toc.Analyze(md.Toc, md.TotalNumPages)
		pages := contentPages(md.Pages, analysis)
		job.SetTotalPages(len(pages))
		if analysis.FirstContent != nil {
			log.Info("content span resolved",
				"first_content", analysis.FirstContent.Label,
				"pages", len(pages),
				"skipped", len(md.Pages)-len(pages))
		}

		job.SetStatus(StatusTranscribing, "transcribing")
		cfg := w.cfg
		cfg.OnPage = func(_ int, ok bool) { job.PageDone(ok) }
		pipe := transcribe.NewPipeline(w.client, w.images, w.log, cfg)
		chunks, dropped = pipe.Run(ctx, pages, book.TocByPage(md.Toc))
	}

	if len(chunks) == 0 {
		log.Error("no pages transcribed")
		job.AddError("no pages could be transcribed")
		job.SetStatus(StatusFailed, "transcribing")
		return
	}

	// Phase 3: derive chapters for reporting. Renderers re-derive on demand.
	job.SetStatus(StatusSegmenting, "segmenting")
	chapterCount := 0
	for range segment.Chapters(md.Toc, chunks) {
		chapterCount++
	}
	job.SetChapters(chapterCount)
	log.Info("segmented", "chapters", chapterCount, "chunks", len(chunks))

	// Phase 4: persist. Chunk data is written only after the whole pass.
	job.SetStatus(StatusStoring, "storing")
	if err := w.st.PutBook(job.BookID, md); err != nil {
		log.Error("store book failed", "error", err)
		job.AddError(fmt.Sprintf("store book: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}
	if err := w.st.PutChunks(job.BookID, chunks); err != nil {
		log.Error("store chunks failed", "error", err)
		job.AddError(fmt.Sprintf("store chunks: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	if dropped > 0 {
		job.AddError(fmt.Sprintf("%d of %d pages dropped", dropped, len(chunks)+dropped))
		job.SetStatus(StatusPartial, "done")
		return
	}
	job.SetStatus(StatusCompleted, "done")
}

// contentPages narrows the capture manifest to the content span identified
// by TOC analysis: pages before the first content page or at/after the first
// post-content page are excluded.
func contentPages(pages []book.PageCapture, a toc.Analysis) []book.PageCapture {
	out := make([]book.PageCapture, 0, len(pages))
	for _, pg := range pages {
		if a.FirstContent != nil && pg.Page < a.FirstContent.Page {
			continue
		}
		if a.FirstPostContent != nil && pg.Page >= a.FirstPostContent.Page {
			continue
		}
		out = append(out, pg)
	}
	return out
}
