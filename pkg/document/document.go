// Package document lays acquired card images out on A4 print sheets.
//
// Images fill the cells of a [layout.Format] left to right, top to bottom,
// and a new page starts whenever a page's cells are used up. An image that
// cannot be placed is logged and its cell left empty; the document is
// produced anyway.
package document

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/decksmith/pkg/archive"
	"github.com/matzehuels/decksmith/pkg/errors"
	"github.com/matzehuels/decksmith/pkg/layout"
	"github.com/matzehuels/decksmith/pkg/progress"
)

// ContentType is the MIME type of built documents.
const ContentType = "application/pdf"

// Image is one encoded JPEG to place.
//
// Images sharing a non-empty Key are embedded once and referenced from
// every cell they occupy.
type Image struct {
	Key   string
	Label string
	Data  []byte
}

// Report describes a build.
type Report struct {
	Placed  int
	Skipped []string // labels of images that could not be placed
	Pages   int
}

// Name returns the document file name for a deck and format.
func Name(deckName, formatID string) string {
	return archive.SnakeCase(deckName) + "_deck_" + formatID + "_a4.pdf"
}

// Builder writes paginated documents.
type Builder struct {
	logger   *log.Logger
	created  time.Time
	progress progress.Func
}

// NewBuilder creates a Builder. A nil logger discards output.
func NewBuilder(logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{logger: logger}
}

// WithCreationDate fixes the document's creation date.
func (b *Builder) WithCreationDate(t time.Time) *Builder {
	b.created = t
	return b
}

// WithProgress reports each placed cell.
func (b *Builder) WithProgress(fn progress.Func) *Builder {
	b.progress = fn
	return b
}

// Build lays images out in format f and returns the encoded document.
// Zero images is an *errors.EmptyArtifactError.
func (b *Builder) Build(ctx context.Context, images []Image, f layout.Format) ([]byte, Report, error) {
	var rep Report
	if len(images) == 0 {
		return nil, rep, &errors.EmptyArtifactError{Artifact: "document"}
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if !b.created.IsZero() {
		pdf.SetCreationDate(b.created)
		pdf.SetModificationDate(b.created)
	}
	pdf.SetCreator("decksmith", true)

	w := &sheet{pdf: pdf, format: f, registered: make(map[string]bool), page: -1}
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, rep, err
		}
		if err := w.place(img, i); err != nil {
			b.logger.Warn("skipping image", "label", img.Label, "error", err)
			rep.Skipped = append(rep.Skipped, img.Label)
		} else {
			rep.Placed++
		}
		b.progress.Emit(progress.Progress{Current: i + 1, Total: len(images), Label: img.Label})
	}

	rep.Pages = w.page + 1

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, rep, errors.Wrap(errors.ErrCodeInternal, err, "write pdf")
	}
	b.logger.Debug("document built", "format", f.ID, "placed", rep.Placed, "skipped", len(rep.Skipped), "pages", rep.Pages)
	return buf.Bytes(), rep, nil
}

// sheet tracks the write position within a document.
type sheet struct {
	pdf        *fpdf.Fpdf
	format     layout.Format
	registered map[string]bool
	page       int
}

var jpegOptions = fpdf.ImageOptions{ImageType: "JPG"}

// place puts img into cell i. A failed image leaves its cell empty.
func (s *sheet) place(img Image, i int) error {
	r := layout.Cell(s.format, i)
	for s.page < r.Page {
		s.pdf.AddPage()
		s.page++
	}

	name := img.Key
	if name == "" {
		name = "img" + strconv.Itoa(i)
	}
	if !s.registered[name] {
		if err := checkJPEG(img.Data); err != nil {
			return err
		}
		s.pdf.RegisterImageOptionsReader(name, jpegOptions, bytes.NewReader(img.Data))
		if err := s.takeError(); err != nil {
			return err
		}
		s.registered[name] = true
	}
	s.pdf.ImageOptions(name, r.X, r.Y, r.W, r.H, false, jpegOptions, 0, "")
	return s.takeError()
}

// takeError returns and clears the writer's sticky error.
func (s *sheet) takeError() error {
	if !s.pdf.Err() {
		return nil
	}
	err := s.pdf.Error()
	s.pdf.ClearError()
	return err
}

func checkJPEG(data []byte) error {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if format != "jpeg" {
		return errors.New(errors.ErrCodeInvalidInput, "expected jpeg image, got %s", format)
	}
	return nil
}
