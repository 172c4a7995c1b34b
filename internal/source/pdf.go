package source

import (
	"fmt"
	"strings"

	"github.com/dctremblay/pagemill/internal/book"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFChunks extracts per-page text directly from a born-digital PDF,
// bypassing screenshot capture and recognition entirely. Pages with no
// extractable text are skipped, mirroring how permanently failed pages are
// dropped from the transcription pipeline.
func PDFChunks(path string) ([]book.ContentChunk, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var chunks []book.ContentChunk
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		chunks = append(chunks, book.ContentChunk{
			Index: len(chunks),
			Page:  i,
			Text:  text,
		})
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", path)
	}
	return chunks, nil
}
