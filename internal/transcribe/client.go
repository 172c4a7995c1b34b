// Package transcribe extracts text from page screenshots through an external
// recognition capability, with bounded concurrency, transient-failure retry,
// and refusal handling.
package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Request is a single page-image transcription request.
type Request struct {
	Image       []byte
	MediaType   string
	Temperature float64
}

// Client is the external text-recognition capability. Implementations return
// the extracted text or an error; transient transport failures are reported
// as *TransientError so callers can retry with backoff.
type Client interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}

// ImageLoader resolves an opaque screenshot reference to image bytes and a
// media type.
type ImageLoader func(ref string) ([]byte, string, error)

// LoadImageFile is the default ImageLoader: it treats the reference as a file
// path and derives the media type from the extension.
func LoadImageFile(ref string) ([]byte, string, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, "", fmt.Errorf("read screenshot %s: %w", ref, err)
	}
	return data, mediaTypeFor(ref), nil
}

func mediaTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
