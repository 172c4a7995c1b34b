// Command capture walks a web reader with a headless browser, screenshots
// every page, and writes a book metadata manifest ready for submission to the
// pagemill API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dctremblay/pagemill/internal/book"
	"github.com/dctremblay/pagemill/internal/capture"
	"github.com/dctremblay/pagemill/internal/source"
)

func main() {
	var (
		readerURL = flag.String("url", "", "web reader URL to capture")
		outDir    = flag.String("out", "capture", "output directory for screenshots and manifest")
		selector  = flag.String("selector", "", "CSS selector for the page position indicator")
		maxPages  = flag.Int("max-pages", 2000, "hard limit on pages to capture")
		settle    = flag.Duration("settle", 400*time.Millisecond, "delay after each page turn")
		tocPath   = flag.String("toc", "", "navigation document (XHTML) or EPUB to read the TOC from")
		title     = flag.String("title", "", "book title for the manifest")
		authors   = flag.String("authors", "", "comma-separated author list")
	)
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if *readerURL == "" {
		log.Error("-url is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	md := &book.Metadata{
		Meta: book.Meta{Title: *title},
	}
	if *authors != "" {
		for _, a := range strings.Split(*authors, ",") {
			if a = strings.TrimSpace(a); a != "" {
				md.Meta.Authors = append(md.Meta.Authors, a)
			}
		}
	}

	if *tocPath != "" {
		toc, meta, err := loadToc(*tocPath)
		if err != nil {
			log.Error("load toc", "path", *tocPath, "error", err)
			os.Exit(1)
		}
		md.Toc = toc
		if md.Meta.Title == "" {
			md.Meta = meta
		}
	}

	opts := capture.DefaultOptions(*readerURL, *outDir)
	opts.MaxPages = *maxPages
	opts.SettleDelay = *settle
	if *selector != "" {
		opts.IndicatorSelector = *selector
	}

	pages, err := capture.New(opts, log).Run(ctx)
	if err != nil {
		log.Error("capture failed", "error", err, "pages_captured", len(pages))
		if len(pages) == 0 {
			os.Exit(1)
		}
		// A partial capture is still worth a manifest.
	}
	md.Pages = pages
	for _, pg := range pages {
		if pg.Page > md.TotalNumPages {
			md.TotalNumPages = pg.Page
		}
	}

	manifest := filepath.Join(*outDir, "metadata.json")
	f, err := os.Create(manifest)
	if err != nil {
		log.Error("write manifest", "path", manifest, "error", err)
		os.Exit(1)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(md); err != nil {
		log.Error("encode manifest", "error", err)
		os.Exit(1)
	}

	log.Info("manifest written", "path", manifest, "pages", len(pages), "toc_entries", len(md.Toc))
}

// loadToc reads TOC entries from either an EPUB (NCX) or a standalone
// navigation document.
func loadToc(path string) ([]book.TocItem, book.Meta, error) {
	if strings.EqualFold(filepath.Ext(path), ".epub") {
		md, err := source.FromEPUB(path)
		if err != nil {
			return nil, book.Meta{}, err
		}
		return md.Toc, md.Meta, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, book.Meta{}, err
	}
	defer f.Close()
	toc, err := source.ParseNavDoc(f)
	return toc, book.Meta{}, err
}
