package document

import (
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Point is the PDF user-space unit in millimetres.
const Point = 25.4 / 72

// Info summarizes an existing document.
type Info struct {
	Pages int
	Sizes []PageSize // per page, in millimetres
}

// PageSize is the size of one page.
type PageSize struct {
	Width  float64
	Height float64
}

var disableConfig sync.Once

// Inspect reads page count and page sizes from a PDF.
func Inspect(rs io.ReadSeeker) (Info, error) {
	disableConfig.Do(api.DisableConfigDir)

	dims, err := api.PageDims(rs, nil)
	if err != nil {
		return Info{}, err
	}
	info := Info{Pages: len(dims), Sizes: make([]PageSize, len(dims))}
	for i, d := range dims {
		info.Sizes[i] = PageSize{Width: d.Width * Point, Height: d.Height * Point}
	}
	return info, nil
}
