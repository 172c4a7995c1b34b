package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dctremblay/pagemill/internal/render"
	"github.com/dctremblay/pagemill/internal/segment"
	"github.com/go-chi/chi/v5"
)

// handleListBooks lists all stored book ids.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	ids, err := s.orchestrator.Store().ListBooks()
	if err != nil {
		jsonError(w, "failed to list books: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"books": ids})
}

// handleBookChunks returns the stored per-page transcriptions for a book.
func (s *Server) handleBookChunks(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	chunks, err := s.orchestrator.Store().GetChunks(bookID)
	if err != nil {
		jsonError(w, "failed to load chunks: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if chunks == nil {
		jsonError(w, "book not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"book_id": bookID,
		"chunks":  chunks,
	})
}

// handleExport renders a stored book into the requested format. Chapters are
// derived on demand from the stored TOC and chunk list.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	format := chi.URLParam(r, "format")

	md, err := s.orchestrator.Store().GetBook(bookID)
	if err != nil {
		jsonError(w, "failed to load book: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if md == nil {
		jsonError(w, "book not found", http.StatusNotFound)
		return
	}
	chunks, err := s.orchestrator.Store().GetChunks(bookID)
	if err != nil {
		jsonError(w, "failed to load chunks: "+err.Error(), http.StatusInternalServerError)
		return
	}

	chapters := segment.Chapters(md.Toc, chunks)

	switch format {
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment(bookID, "md"))
		err = render.Markdown(w, md.Meta, chapters)
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = render.HTML(w, md.Meta, chapters)
	case "docx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		w.Header().Set("Content-Disposition", attachment(bookID, "docx"))
		err = render.DOCX(w, md.Meta, chapters)
	default:
		jsonError(w, fmt.Sprintf("unknown export format %q", format), http.StatusBadRequest)
		return
	}
	if err != nil {
		// Headers are already out; all we can do is log.
		s.log.Error("export failed", "book_id", bookID, "format", format, "error", err)
	}
}

// handleDeleteBook removes a book's metadata and chunks from the store.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	if err := s.orchestrator.Store().DeleteBook(bookID); err != nil {
		jsonError(w, "failed to delete book: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"deleted": bookID})
}

func attachment(bookID, ext string) string {
	return fmt.Sprintf(`attachment; filename="%s.%s"`, bookID, ext)
}
