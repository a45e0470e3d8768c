package compose

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/decksmith/pkg/buildinfo"
	"github.com/matzehuels/decksmith/pkg/cache"
	"github.com/matzehuels/decksmith/pkg/display"
	"github.com/matzehuels/decksmith/pkg/errors"
	"github.com/matzehuels/decksmith/pkg/httputil"
	"github.com/matzehuels/decksmith/pkg/observability"
)

// Card back dimensions match the catalog's "normal" image size.
const (
	CardBackWidth  = 488
	CardBackHeight = 680
)

// Loader reads image bytes from http(s) URLs and local files.
//
// Remote references get a fresh "_t=<unix ms>" query token on every request
// so intermediaries never serve a stale image. When a cache is configured,
// responses are stored under the reference without that token.
type Loader struct {
	client    *http.Client
	userAgent string
	cache     cache.Cache
	keyer     cache.Keyer
	ttl       time.Duration
	now       func() time.Time
	logger    *log.Logger

	remoteOnly bool
	hosts      []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the client used for remote images.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) { l.client = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) { l.client = httputil.NewHTTPClient(d) }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) LoaderOption {
	return func(l *Loader) { l.userAgent = ua }
}

// WithCache stores downloaded images in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) LoaderOption {
	return func(l *Loader) { l.cache, l.ttl = c, ttl }
}

// WithKeyer sets the cache key layout.
func WithKeyer(k cache.Keyer) LoaderOption {
	return func(l *Loader) { l.keyer = k }
}

// WithRemoteOnly refuses local files and, when hosts is non-empty, any
// remote host outside hosts and their subdomains.
func WithRemoteOnly(hosts []string) LoaderOption {
	return func(l *Loader) { l.remoteOnly, l.hosts = true, hosts }
}

// WithClock sets the clock used for cache-busting tokens.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client:    httputil.NewHTTPClient(0),
		userAgent: buildinfo.UserAgent(),
		cache:     cache.NewNullCache(),
		keyer:     cache.NewDefaultKeyer(),
		now:       time.Now,
		logger:    log.New(io.Discard),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Fetch returns the raw bytes behind ref.
func (l *Loader) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.remoteOnly {
		if err := errors.ValidateRemoteImageRef(ref, l.hosts); err != nil {
			return nil, err
		}
	}
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetchRemote(ctx, ref)
	case strings.HasPrefix(ref, "asset:"):
		return nil, errors.New(errors.ErrCodeInvalidRef, "unknown asset %q", ref)
	case strings.HasPrefix(ref, "file://"):
		return os.ReadFile(strings.TrimPrefix(ref, "file://"))
	case strings.Contains(ref, "://"):
		return nil, errors.New(errors.ErrCodeInvalidRef, "unsupported image reference %q", ref)
	default:
		return os.ReadFile(ref)
	}
}

// Load decodes the image behind ref. [display.Placeholder] yields a
// synthetic card back.
func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	if ref == display.Placeholder {
		return CardBack(), nil
	}
	data, err := l.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "decode image")
	}
	return img, nil
}

func (l *Loader) fetchRemote(ctx context.Context, ref string) ([]byte, error) {
	key := l.keyer.ImageKey(ref)
	if data, ok, err := l.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "image")
		return data, nil
	} else if err != nil {
		l.logger.Debug("image cache read failed", "ref", ref, "error", err)
	}
	observability.Cache().OnCacheMiss(ctx, "image")

	data, err := httputil.Fetch(ctx, l.client, httputil.CacheBust(ref, l.now()), map[string]string{
		"User-Agent": l.userAgent,
		"Accept":     "image/*",
	})
	if err != nil {
		return nil, err
	}
	if err := l.cache.Set(ctx, key, data, l.ttl); err != nil {
		l.logger.Debug("image cache write failed", "ref", ref, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "image", len(data))
	}
	return data, nil
}

// CardBack draws the stand-in used for cards without artwork: a dark frame
// around a brown panel.
func CardBack() image.Image {
	img := imaging.New(CardBackWidth, CardBackHeight, color.NRGBA{R: 24, G: 16, B: 12, A: 255})
	panel := imaging.New(CardBackWidth-48, CardBackHeight-48, color.NRGBA{R: 110, G: 70, B: 40, A: 255})
	inner := imaging.New(CardBackWidth-120, CardBackHeight-200, color.NRGBA{R: 150, G: 98, B: 52, A: 255})
	img = imaging.Paste(img, panel, image.Pt(24, 24))
	return imaging.Paste(img, inner, image.Pt(60, 100))
}
