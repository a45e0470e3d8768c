package compose

import (
	"context"
	"image"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/decksmith/pkg/errors"
)

// Pixels is an encoded image with its dimensions.
type Pixels struct {
	Data   []byte
	Width  int
	Height int
}

// Acquirer turns image references into encoded images.
type Acquirer struct {
	c      Compositor
	logger *log.Logger
}

// NewAcquirer creates an Acquirer. A nil logger discards output.
func NewAcquirer(c Compositor, logger *log.Logger) *Acquirer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Acquirer{c: c, logger: logger}
}

// Acquire loads ref, optionally rotating it 90 degrees clockwise, and encodes it.
// Load failures are returned as *errors.FetchError; cancellation is returned as is.
func (a *Acquirer) Acquire(ctx context.Context, ref string, rotate bool) (*Pixels, error) {
	img, err := a.c.Load(ctx, ref)
	if err != nil {
		return nil, fetchErr(ctx, ref, err)
	}
	if rotate {
		img = a.c.Rotate90(img)
	}
	return a.encode(ctx, ref, img)
}

// CompositeDualFace loads both faces concurrently and stacks them into one
// image. With rotate the composite is turned 90 degrees clockwise, giving
// an image of the face's height by its width.
func (a *Acquirer) CompositeDualFace(ctx context.Context, front, back string, rotate bool) (*Pixels, error) {
	var frontImg, backImg image.Image
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := a.c.Load(gctx, front)
		if err != nil {
			return fetchErr(gctx, front, err)
		}
		frontImg = img
		return nil
	})
	g.Go(func() error {
		img, err := a.c.Load(gctx, back)
		if err != nil {
			return fetchErr(gctx, back, err)
		}
		backImg = img
		return nil
	})
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	img := a.c.Stack(frontImg, backImg)
	if rotate {
		img = a.c.Rotate90(img)
	}
	a.logger.Debug("composited dual-faced card", "front", front, "back", back, "rotate", rotate)
	return a.encode(ctx, front, img)
}

func (a *Acquirer) encode(ctx context.Context, ref string, img image.Image) (*Pixels, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := a.c.Encode(img)
	if err != nil {
		return nil, errors.Fetch(ref, err)
	}
	b := img.Bounds()
	return &Pixels{Data: data, Width: b.Dx(), Height: b.Dy()}, nil
}

func fetchErr(ctx context.Context, ref string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var fe *errors.FetchError
	if errors.As(err, &fe) {
		return err
	}
	return errors.Fetch(ref, err)
}
