package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dctremblay/pagemill/internal/book"
)

// Config bounds the pipeline. It is passed explicitly to the constructor so
// tests can run with deterministic, fast settings.
type Config struct {
	// MaxConcurrent is the number of pages in flight at once.
	MaxConcurrent int
	// MaxDispatchAttempts bounds transient-failure retries per dispatch.
	MaxDispatchAttempts int
	// MaxRefusalRetries bounds re-dispatches after refusals or failed
	// dispatches. A page is attempted at most MaxRefusalRetries+1 times.
	MaxRefusalRetries int
	// BackoffBase is the first backoff delay; it doubles per attempt.
	BackoffBase time.Duration
	// EscalatedTemperature replaces temperature 0 after the first two
	// attempts at a page, to diversify sampling past a refusal.
	EscalatedTemperature float64
	// IsRefusal overrides DefaultRefusalDetector when set.
	IsRefusal RefusalDetector
	// OnPage, when set, is called once per finished page. Called from worker
	// goroutines; implementations must be safe for concurrent use.
	OnPage func(page int, ok bool)
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 16
	}
	if c.MaxDispatchAttempts <= 0 {
		c.MaxDispatchAttempts = 3
	}
	if c.MaxRefusalRetries <= 0 {
		c.MaxRefusalRetries = 4
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.EscalatedTemperature <= 0 {
		c.EscalatedTemperature = 0.8
	}
	if c.IsRefusal == nil {
		c.IsRefusal = DefaultRefusalDetector
	}
	return c
}

// Pipeline drives transcription of a page manifest.
type Pipeline struct {
	client Client
	load   ImageLoader
	log    *slog.Logger
	cfg    Config
}

func NewPipeline(client Client, load ImageLoader, log *slog.Logger, cfg Config) *Pipeline {
	if load == nil {
		load = LoadImageFile
	}
	return &Pipeline{
		client: client,
		load:   load,
		log:    log,
		cfg:    cfg.withDefaults(),
	}
}

// Run transcribes every page in the manifest under bounded concurrency and
// returns the surviving chunks in manifest order, re-indexed contiguously
// from 0, along with the number of dropped pages. Failures of any kind for
// one page never abort processing of sibling pages; each worker writes only
// to its own output slot.
func (p *Pipeline) Run(ctx context.Context, pages []book.PageCapture, tocByPage map[int]string) ([]book.ContentChunk, int) {
	results := make([]*book.ContentChunk, len(pages))
	sem := make(chan struct{}, p.cfg.MaxConcurrent)
	var wg sync.WaitGroup

	for i := range pages {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			pg := pages[i]
			defer func() {
				if r := recover(); r != nil {
					p.log.Error("page transcription panicked", "page", pg.Page, "panic", r)
					p.pageDone(pg.Page, false)
				}
			}()

			text, err := p.transcribePage(ctx, pg)
			if err != nil {
				p.log.Warn("page dropped", "page", pg.Page, "index", pg.Index, "error", err)
				p.pageDone(pg.Page, false)
				return
			}

			text = normalizeWhitespace(text)
			if firstOfSection(pages, i) {
				if label, ok := tocByPage[pg.Page]; ok {
					text = stripLeadingHeading(text, label)
				}
			}
			results[i] = &book.ContentChunk{
				Page:       pg.Page,
				Text:       text,
				Screenshot: pg.Screenshot,
			}
			p.pageDone(pg.Page, true)
		}(i)
	}
	wg.Wait()

	chunks := make([]book.ContentChunk, 0, len(pages))
	for _, r := range results {
		if r == nil {
			continue
		}
		r.Index = len(chunks)
		chunks = append(chunks, *r)
	}
	dropped := len(pages) - len(chunks)
	if dropped > 0 {
		p.log.Warn("pages dropped from transcription", "dropped", dropped, "total", len(pages))
	}
	return chunks, dropped
}

func (p *Pipeline) pageDone(page int, ok bool) {
	if p.cfg.OnPage != nil {
		p.cfg.OnPage(page, ok)
	}
}

// transcribePage runs the per-page state machine: dispatch, then inspect for
// refusal, re-dispatching with escalated temperature up to the refusal
// budget. A failed dispatch (non-retryable error or exhausted transient
// retries) consumes one unit of the same budget.
func (p *Pipeline) transcribePage(ctx context.Context, pg book.PageCapture) (string, error) {
	img, mediaType, err := p.load(pg.Screenshot)
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt <= p.cfg.MaxRefusalRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		temperature := 0.0
		if attempt >= 2 {
			temperature = p.cfg.EscalatedTemperature
		}
		text, err := p.dispatch(ctx, Request{Image: img, MediaType: mediaType, Temperature: temperature})
		if err != nil {
			lastErr = err
			continue
		}
		if p.cfg.IsRefusal(text) {
			lastErr = &RefusalError{Page: pg.Page, Text: text}
			p.log.Warn("recognition refused, re-dispatching", "page", pg.Page, "attempt", attempt, "temperature", temperature)
			continue
		}
		return text, nil
	}
	return "", fmt.Errorf("page %d: budget exhausted after %d attempts: %w", pg.Page, p.cfg.MaxRefusalRetries+1, lastErr)
}

// dispatch submits one request, retrying transient failures with exponential
// backoff. The backoff delay suspends only the worker handling this page.
func (p *Pipeline) dispatch(ctx context.Context, req Request) (string, error) {
	var text string
	var lastErr error
	for attempt := range p.cfg.MaxDispatchAttempts {
		text, lastErr = p.client.Transcribe(ctx, req)
		if lastErr == nil || !IsTransient(lastErr) {
			break
		}
		p.log.Warn("transient recognition error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt, p.cfg.BackoffBase)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return text, nil
}

// firstOfSection reports whether manifest entry i is the first capture unit
// of its page, i.e. a candidate for heading de-duplication.
func firstOfSection(pages []book.PageCapture, i int) bool {
	return i == 0 || pages[i-1].Page != pages[i].Page
}

// stripLeadingHeading removes a leading occurrence of the section label from
// the transcribed text. The recognition capability sometimes echoes the
// visible heading verbatim at the top of the page.
func stripLeadingHeading(text, label string) string {
	if label == "" || len(text) < len(label) {
		return text
	}
	if !strings.EqualFold(text[:len(label)], label) {
		return text
	}
	return strings.TrimLeft(text[len(label):], " \t\r\n")
}

var (
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	newlineRunRe = regexp.MustCompile(`\n{3,}`)
)

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = newlineRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
