package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/dctremblay/pagemill/internal/book"
	"github.com/dctremblay/pagemill/internal/pipeline"
	"github.com/dctremblay/pagemill/internal/source"
	"github.com/go-chi/chi/v5"
)

// submitRequest is the body of POST /api/books. PDFPath, when set, switches
// the job to direct text extraction instead of page recognition.
type submitRequest struct {
	BookID   string         `json:"book_id"`
	PDFPath  string         `json:"pdf_path,omitempty"`
	Metadata *book.Metadata `json:"metadata"`
}

func (s *Server) handleSubmitBook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 32<<20)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Metadata == nil {
		jsonError(w, "metadata is required", http.StatusBadRequest)
		return
	}
	if err := source.Validate(req.Metadata); err != nil {
		jsonError(w, "invalid metadata: "+err.Error(), http.StatusBadRequest)
		return
	}

	bookID := req.BookID
	if bookID == "" {
		bookID = slugify(req.Metadata.Meta.Title)
	}
	if bookID == "" {
		jsonError(w, "book_id is required when the metadata has no title", http.StatusBadRequest)
		return
	}

	var job *pipeline.Job
	if req.PDFPath != "" {
		if _, err := os.Stat(req.PDFPath); err != nil {
			jsonError(w, "pdf_path is not readable: "+err.Error(), http.StatusBadRequest)
			return
		}
		job = pipeline.NewPDFJob(bookID, req.Metadata, req.PDFPath)
	} else {
		job = pipeline.NewJob(bookID, req.Metadata)
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"book_id":  job.BookID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = slugRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
