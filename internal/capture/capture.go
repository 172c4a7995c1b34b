// Package capture drives a headless browser through a web-based book reader,
// screenshotting each page and recording its navigation position. The output
// manifest feeds the transcription pipeline.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/dctremblay/pagemill/internal/book"
	"github.com/dctremblay/pagemill/internal/nav"
)

// Options configures a capture run.
type Options struct {
	// ReaderURL is the web reader page to open.
	ReaderURL string
	// IndicatorSelector locates the "Page X of Y" element in the reader.
	IndicatorSelector string
	// OutputDir receives one PNG per captured page.
	OutputDir string
	// MaxPages bounds the run independently of the reader's own total.
	MaxPages int
	// SettleDelay is how long to wait after a page turn before reading the
	// indicator, letting the reader finish its render.
	SettleDelay time.Duration

	ChromedpOptions []chromedp.ExecAllocatorOption
}

func DefaultOptions(readerURL, outputDir string) Options {
	return Options{
		ReaderURL:         readerURL,
		IndicatorSelector: `[aria-label*="Page"], .page-indicator, #pageIndicator`,
		OutputDir:         outputDir,
		MaxPages:          2000,
		SettleDelay:       400 * time.Millisecond,
		ChromedpOptions: append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.DisableGPU,
			chromedp.NoSandbox,
			chromedp.Headless,
			chromedp.WindowSize(1280, 1800),
		),
	}
}

// Capturer pages through a reader and screenshots every position.
type Capturer struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options, log *slog.Logger) *Capturer {
	return &Capturer{opts: opts, log: log}
}

// Run opens the reader and advances page by page until the indicator stops
// changing, the reader's total is reached, or MaxPages is hit. Every position
// yields a PageCapture; indicator strings that fail to parse are captured
// with Index only so the pipeline can still isolate them.
func (c *Capturer) Run(ctx context.Context) ([]book.PageCapture, error) {
	if err := os.MkdirAll(c.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, c.opts.ChromedpOptions...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	c.log.Info("opening reader", "url", c.opts.ReaderURL)
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(c.opts.ReaderURL),
		chromedp.WaitVisible("body"),
	)
	if err != nil {
		return nil, fmt.Errorf("open reader: %w", err)
	}

	var captures []book.PageCapture
	lastIndicator := ""
	for i := 0; i < c.opts.MaxPages; i++ {
		if err := ctx.Err(); err != nil {
			return captures, err
		}

		indicator, err := c.readIndicator(taskCtx)
		if err != nil {
			return captures, fmt.Errorf("read position indicator: %w", err)
		}
		if indicator == lastIndicator && i > 0 {
			// The reader refused to advance: end of book.
			break
		}
		lastIndicator = indicator

		shot, err := c.screenshot(taskCtx, i)
		if err != nil {
			return captures, fmt.Errorf("screenshot page %d: %w", i, err)
		}

		pc := book.PageCapture{Index: i, Screenshot: shot}
		atEnd := false
		if pos := nav.Parse(indicator); pos != nil {
			pc.Page = pos.Page
			if pos.Total > 0 {
				atEnd = pos.Page >= pos.Total ||
					(pos.Page == 0 && pos.Location >= pos.Total)
			}
		} else {
			c.log.Warn("unparseable position indicator", "index", i, "text", indicator)
		}
		captures = append(captures, pc)
		if atEnd {
			break
		}

		if err := c.turnPage(taskCtx); err != nil {
			return captures, fmt.Errorf("turn page after %d: %w", i, err)
		}
	}

	c.log.Info("capture complete", "pages", len(captures))
	return captures, nil
}

func (c *Capturer) readIndicator(ctx context.Context) (string, error) {
	var text string
	err := chromedp.Run(ctx,
		chromedp.Text(c.opts.IndicatorSelector, &text, chromedp.AtLeast(0)),
	)
	return text, err
}

func (c *Capturer) screenshot(ctx context.Context, index int) (string, error) {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return "", err
	}
	path := filepath.Join(c.opts.OutputDir, fmt.Sprintf("page_%04d.png", index))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (c *Capturer) turnPage(ctx context.Context) error {
	if err := chromedp.Run(ctx, chromedp.KeyEvent(kb.ArrowRight)); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.opts.SettleDelay):
	}
	return nil
}
