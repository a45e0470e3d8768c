// Package layout computes print sheet geometry for the built-in card formats.
//
// All measurements are millimetres on a portrait A4 page. Cells are filled
// left to right, top to bottom, and a new page starts every Cols*Rows cells.
package layout

import (
	"fmt"

	"github.com/matzehuels/decksmith/pkg/errors"
)

// Page dimensions and the gap between adjacent cells.
const (
	PageWidth  = 210.0
	PageHeight = 297.0
	Gap        = 0.3
)

// Format is a print sheet grid.
type Format struct {
	ID          string
	Label       string
	Description string
	Cols        int
	Rows        int
	CellWidth   float64
	CellHeight  float64
	// Rotate means images must be turned 90 degrees clockwise to fit a cell.
	Rotate bool
}

var formats = []Format{
	{ID: "3x3", Label: "3x3 (63x88mm)", Description: "9 cards - 3x3", Cols: 3, Rows: 3, CellWidth: 63, CellHeight: 88},
	{ID: "4x4", Label: "4x4 (50x69mm)", Description: "16 cards - 4x4", Cols: 4, Rows: 4, CellWidth: 50, CellHeight: 69},
	{ID: "3x6", Label: "3x6 (66x47mm)", Description: "18 cards - 3x6", Cols: 3, Rows: 6, CellWidth: 66, CellHeight: 47, Rotate: true},
}

// DefaultFormat is the format used when none is requested.
const DefaultFormat = "3x3"

// Formats returns the built-in formats.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// Lookup returns the built-in format with the given ID.
func Lookup(id string) (Format, error) {
	for _, f := range formats {
		if f.ID == id {
			return f, nil
		}
	}
	return Format{}, errors.New(errors.ErrCodeInvalidFormat, "unknown print format %q", id)
}

// IDs returns the IDs of the built-in formats.
func IDs() []string {
	ids := make([]string, len(formats))
	for i, f := range formats {
		ids[i] = f.ID
	}
	return ids
}

func (f Format) String() string {
	return fmt.Sprintf("%s: %s", f.ID, f.Description)
}

// CellsPerPage returns the number of cells on one page.
func CellsPerPage(f Format) int {
	return f.Cols * f.Rows
}

// GridSize returns the width and height of the cell grid including gaps.
func GridSize(f Format) (w, h float64) {
	w = float64(f.Cols)*f.CellWidth + float64(f.Cols-1)*Gap
	h = float64(f.Rows)*f.CellHeight + float64(f.Rows-1)*Gap
	return w, h
}

// Margins returns the left and top margins that center the grid on the page.
func Margins(f Format) (x, y float64) {
	w, h := GridSize(f)
	return (PageWidth - w) / 2, (PageHeight - h) / 2
}

// Rect is the placement of one cell.
type Rect struct {
	Page int // 0-based
	X, Y float64
	W, H float64
}

// Cell returns the placement of the i-th unit.
func Cell(f Format, i int) Rect {
	per := CellsPerPage(f)
	mx, my := Margins(f)
	pos := i % per
	col, row := pos%f.Cols, pos/f.Cols
	return Rect{
		Page: i / per,
		X:    mx + float64(col)*(f.CellWidth+Gap),
		Y:    my + float64(row)*(f.CellHeight+Gap),
		W:    f.CellWidth,
		H:    f.CellHeight,
	}
}

// Pages returns the number of pages needed for n units.
func Pages(n int, f Format) int {
	per := CellsPerPage(f)
	if n <= 0 || per <= 0 {
		return 0
	}
	return (n + per - 1) / per
}

// Backfill extends units so the last page is full, cycling through fillers.
// It returns units unchanged when the last page is already full or there
// are no fillers.
func Backfill[T any](units []T, f Format, fillers []T) []T {
	per := CellsPerPage(f)
	rem := len(units) % per
	if rem == 0 || len(fillers) == 0 {
		return units
	}
	missing := per - rem
	out := make([]T, len(units), len(units)+missing)
	copy(out, units)
	for i := 0; i < missing; i++ {
		out = append(out, fillers[i%len(fillers)])
	}
	return out
}
