package source

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dctremblay/pagemill/internal/book"
	"github.com/taylorskalyo/goreader/epub"
)

// NCX XML structures for parsing toc.ncx.
type ncx struct {
	DocTitle  ncxText   `xml:"docTitle"`
	DocAuthor ncxText   `xml:"docAuthor"`
	NavMap    ncxNavMap `xml:"navMap"`
}

type ncxText struct {
	Text string `xml:"text"`
}

type ncxNavMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     navLabel   `xml:"navLabel"`
	Content   navContent `xml:"content"`
	Children  []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// FromEPUB imports title, author, and the table of contents from an EPUB
// edition of the book. EPUBs have no stable physical pages, so every entry is
// emitted with a location (its reading-order position); pages are resolved
// later against the captured manifest.
func FromEPUB(filename string) (*book.Metadata, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles found in epub")
	}
	rootfile := rc.Rootfiles[0]

	ncxData, err := findAndReadNCX(filename, rootfile)
	if err != nil {
		return nil, err
	}

	var toc ncx
	if err := xml.Unmarshal(ncxData, &toc); err != nil {
		return nil, fmt.Errorf("parse ncx: %w", err)
	}

	md := &book.Metadata{
		Meta: book.Meta{Title: strings.TrimSpace(toc.DocTitle.Text)},
	}
	if author := strings.TrimSpace(toc.DocAuthor.Text); author != "" {
		md.Meta.Authors = []string{author}
	}

	order := 0
	md.Toc = flattenNavPoints(toc.NavMap.NavPoints, 0, &order)
	if len(md.Toc) == 0 {
		return nil, ErrNoToc
	}
	return md, nil
}

func flattenNavPoints(points []navPoint, depth int, order *int) []book.TocItem {
	var items []book.TocItem
	for _, np := range points {
		*order++
		pos := *order
		if np.PlayOrder > 0 {
			pos = np.PlayOrder
		}
		items = append(items, book.TocItem{
			Label:      strings.TrimSpace(np.Label.Text),
			Depth:      depth,
			PositionID: int64(*order),
			Location:   pos,
		})
		if len(np.Children) > 0 {
			items = append(items, flattenNavPoints(np.Children, depth+1, order)...)
		}
	}
	return items
}

// findAndReadNCX locates the NCX file through the manifest, falling back to
// an extension scan of the archive.
func findAndReadNCX(filename string, rootfile *epub.Rootfile) ([]byte, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var ncxPath string
	for _, item := range rootfile.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			ncxPath = item.HREF
			break
		}
	}
	if ncxPath == "" {
		for _, f := range zr.File {
			if strings.HasSuffix(strings.ToLower(f.Name), ".ncx") {
				ncxPath = f.Name
				break
			}
		}
	}
	if ncxPath == "" {
		return nil, fmt.Errorf("no ncx file found in epub")
	}

	for _, f := range zr.File {
		if f.Name == ncxPath || strings.HasSuffix(f.Name, "/"+ncxPath) || path.Base(f.Name) == path.Base(ncxPath) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("ncx file %s not found in archive", ncxPath)
}
