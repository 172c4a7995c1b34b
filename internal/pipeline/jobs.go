package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/dctremblay/pagemill/internal/book"
)

// JobStatus represents the state of a book transcription job.
type JobStatus string

const (
	StatusQueued       JobStatus = "queued"
	StatusValidating   JobStatus = "validating"
	StatusTranscribing JobStatus = "transcribing"
	StatusSegmenting   JobStatus = "segmenting"
	StatusStoring      JobStatus = "storing"
	StatusCompleted    JobStatus = "completed"
	StatusPartial      JobStatus = "partial"
	StatusFailed       JobStatus = "failed"
)

// Job tracks the state of a single book transcription run.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	BookID string `json:"book_id"`
	Title  string `json:"title"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	metadata *book.Metadata
	pdfPath  string
	errors   []string
}

// Progress tracks per-page and chapter counts for a running job.
type Progress struct {
	TotalPages       int      `json:"total_pages"`
	PagesTranscribed int      `json:"pages_transcribed"`
	PagesDropped     int      `json:"pages_dropped"`
	Chapters         int      `json:"chapters"`
	Errors           []string `json:"errors"`
}

// NewJob creates a queued job for transcribing a captured book.
func NewJob(bookID string, md *book.Metadata) *Job {
	now := time.Now()
	return &Job{
		ID:        newJobID(),
		BookID:    bookID,
		Title:     md.Meta.Title,
		Status:    StatusQueued,
		Phase:     "queued",
		metadata:  md,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewPDFJob creates a queued job that extracts text directly from a
// born-digital PDF instead of running recognition.
func NewPDFJob(bookID string, md *book.Metadata, pdfPath string) *Job {
	j := NewJob(bookID, md)
	j.pdfPath = pdfPath
	return j
}

// newJobID returns a time-prefixed random id, sortable by creation time.
func newJobID() string {
	var b [8]byte
	rand.Read(b[:])
	return fmt.Sprintf("%013x-%s", time.Now().UnixMilli(), hex.EncodeToString(b[:]))
}

// Metadata returns the book metadata this job was created with.
func (j *Job) Metadata() *book.Metadata {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.metadata
}

// PDFPath returns the direct-extraction source path, empty for capture jobs.
func (j *Job) PDFPath() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pdfPath
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error message.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalPages records how many pages the run will attempt.
func (j *Job) SetTotalPages(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalPages = n
	j.UpdatedAt = time.Now()
}

// PageDone records the outcome of one page. Safe for concurrent use by
// pipeline workers.
func (j *Job) PageDone(ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if ok {
		j.Progress.PagesTranscribed++
	} else {
		j.Progress.PagesDropped++
	}
	j.UpdatedAt = time.Now()
}

// SetChapters records the number of chapters derived from the run.
func (j *Job) SetChapters(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Chapters = n
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	BookID   string    `json:"book_id"`
	Title    string    `json:"title"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:     j.ID,
		BookID: j.BookID,
		Title:  j.Title,
		Status: j.Status,
		Phase:  j.Phase,
		Progress: Progress{
			TotalPages:       j.Progress.TotalPages,
			PagesTranscribed: j.Progress.PagesTranscribed,
			PagesDropped:     j.Progress.PagesDropped,
			Chapters:         j.Progress.Chapters,
			Errors:           errs,
		},
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes jobs idle past the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
