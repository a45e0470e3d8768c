// Package compose acquires card images and composites dual-faced cards.
//
// A [Compositor] performs the pixel operations; [Raster] implements it with
// disintegration/imaging. An [Acquirer] drives a Compositor to turn image
// references into encoded JPEG data:
//
//	acq := compose.NewAcquirer(compose.NewRaster(compose.NewLoader()), logger)
//	px, err := acq.Acquire(ctx, ref, false)
//	px, err = acq.CompositeDualFace(ctx, front, back, true)
//
// A dual-faced composite has the front face's dimensions. Each face is
// squeezed into half of the canvas and turned 90 degrees clockwise, front on
// top and back below, so the pair prints as one card. When the target cell
// is landscape the whole composite is turned once more.
package compose

import (
	"bytes"
	"context"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// DefaultQuality is the JPEG quality of encoded images.
const DefaultQuality = 92

// Compositor loads, transforms and encodes images.
type Compositor interface {
	Load(ctx context.Context, ref string) (image.Image, error)
	// Rotate90 turns img 90 degrees clockwise.
	Rotate90(img image.Image) image.Image
	// Stack places front over back on a canvas the size of front.
	Stack(front, back image.Image) image.Image
	Encode(img image.Image) ([]byte, error)
}

// Raster is the imaging-backed Compositor.
type Raster struct {
	loader  *Loader
	quality int
}

// NewRaster creates a Raster reading images through loader.
func NewRaster(loader *Loader) *Raster {
	return &Raster{loader: loader, quality: DefaultQuality}
}

// WithQuality returns a copy of r encoding at quality q (1-100).
func (r *Raster) WithQuality(q int) *Raster {
	if q < 1 || q > 100 {
		q = DefaultQuality
	}
	return &Raster{loader: r.loader, quality: q}
}

func (r *Raster) Load(ctx context.Context, ref string) (image.Image, error) {
	return r.loader.Load(ctx, ref)
}

// imaging.Rotate270 rotates counter-clockwise by 270, which is 90 clockwise.
func (r *Raster) Rotate90(img image.Image) image.Image {
	return imaging.Rotate270(img)
}

func (r *Raster) Stack(front, back image.Image) image.Image {
	b := front.Bounds()
	w, h := b.Dx(), b.Dy()
	half := h / 2

	top := imaging.Rotate270(imaging.Resize(front, half, w, imaging.Lanczos))
	bottom := imaging.Rotate270(imaging.Resize(back, half, w, imaging.Lanczos))

	canvas := imaging.New(w, h, color.White)
	canvas = imaging.Paste(canvas, top, image.Pt(0, 0))
	return imaging.Paste(canvas, bottom, image.Pt(0, half))
}

func (r *Raster) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(r.quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
