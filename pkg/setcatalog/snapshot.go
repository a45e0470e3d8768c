package setcatalog

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/decksmith/pkg/httputil"
)

const snapshotKey = "sets"

// SnapshotLoader keeps the set list on disk between runs.
//
// A fresh snapshot is served without calling the inner loader. When the
// snapshot is stale the inner loader is asked first, and the stale copy is
// only used if that fails.
type SnapshotLoader struct {
	inner  Loader
	cache  *httputil.Cache
	logger *log.Logger
}

// NewSnapshotLoader wraps inner with the file cache c.
func NewSnapshotLoader(inner Loader, c *httputil.Cache, logger *log.Logger) *SnapshotLoader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SnapshotLoader{inner: inner, cache: c.Namespace("setcatalog:"), logger: logger}
}

// LoadSets implements Loader.
func (l *SnapshotLoader) LoadSets(ctx context.Context) ([]Set, error) {
	var snap []Set
	ok, err := l.cache.Get(snapshotKey, &snap)
	switch {
	case ok && err == nil:
		return snap, nil
	case err != nil && !stderrors.Is(err, httputil.ErrExpired):
		l.logger.Debug("set snapshot unreadable", "error", err)
	}
	stale := ok

	sets, ferr := l.inner.LoadSets(ctx)
	if ferr != nil {
		if stale && ctx.Err() == nil {
			l.logger.Warn("using stale set list", "error", ferr)
			return snap, nil
		}
		return nil, ferr
	}
	if err := l.cache.Set(snapshotKey, sets); err != nil {
		l.logger.Debug("set snapshot not saved", "error", err)
	}
	return sets, nil
}

// Invalidate removes the snapshot.
func (l *SnapshotLoader) Invalidate() error {
	return l.cache.Delete(snapshotKey)
}
