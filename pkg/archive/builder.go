package archive

import (
	"archive/zip"
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/decksmith/pkg/errors"
)

// ContentType is the MIME type of built archives.
const ContentType = "application/zip"

// Builder accumulates named entries and produces a zip archive.
// Entries appear in the order they were added.
type Builder struct {
	buf      bytes.Buffer
	w        *zip.Writer
	names    map[string]bool
	modified time.Time
	closed   bool
}

// NewBuilder returns an empty Builder. Every entry is stamped with modified.
func NewBuilder(modified time.Time) *Builder {
	b := &Builder{names: make(map[string]bool), modified: modified}
	b.w = zip.NewWriter(&b.buf)
	return b
}

// Add appends an entry. Duplicate names are rejected.
func (b *Builder) Add(name string, data []byte) error {
	if b.closed {
		return errors.New(errors.ErrCodeInternal, "archive already finalized")
	}
	if b.names[name] {
		return errors.New(errors.ErrCodeInternal, "duplicate archive entry %q", name)
	}
	// JPEG data does not compress further.
	w, err := b.w.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store, Modified: b.modified})
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	b.names[name] = true
	return nil
}

// Has reports whether an entry with name was added.
func (b *Builder) Has(name string) bool { return b.names[name] }

// Unique returns name, or name with "_2", "_3", ... inserted before the
// extension when an entry of that name already exists.
func (b *Builder) Unique(name string) string {
	if !b.names[name] {
		return name
	}
	ext := ""
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name, ext = name[:i], name[i:]
	}
	for n := 2; ; n++ {
		candidate := name + "_" + strconv.Itoa(n) + ext
		if !b.names[candidate] {
			return candidate
		}
	}
}

// Len returns the number of entries.
func (b *Builder) Len() int { return len(b.names) }

// Bytes finalizes the archive and returns its contents.
// No entries can be added afterwards.
func (b *Builder) Bytes() ([]byte, error) {
	if !b.closed {
		if err := b.w.Close(); err != nil {
			return nil, err
		}
		b.closed = true
	}
	return b.buf.Bytes(), nil
}
