package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/decksmith/pkg/batch"
	"github.com/matzehuels/decksmith/pkg/compose"
	"github.com/matzehuels/decksmith/pkg/deck"
	"github.com/matzehuels/decksmith/pkg/errors"
	"github.com/matzehuels/decksmith/pkg/observability"
	"github.com/matzehuels/decksmith/pkg/sink"
)

// Runner executes export and import runs.
//
// The Runner holds no per-run state; one Runner may serve concurrent runs.
type Runner struct {
	Acquirer *compose.Acquirer
	Lookup   batch.Lookup
	Sink     sink.Sink // optional upload destination
	Logger   *log.Logger

	// Now stamps artifacts and new decks. Defaults to time.Now.
	Now func() time.Time

	// Sleep replaces the wait between catalog calls in tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(acq *compose.Acquirer, lookup batch.Lookup, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Acquirer: acq, Lookup: lookup, Logger: logger}
}

// WithSink sets the upload destination.
func (r *Runner) WithSink(s sink.Sink) *Runner {
	r.Sink = s
	return r
}

// Export builds the artifact selected by opts.Format and uploads it when
// opts.Upload is set.
func (r *Runner) Export(ctx context.Context, d *deck.Deck, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Upload && r.Sink == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "upload requested but no upload destination is configured")
	}

	var res *Result
	var err error
	if opts.IsArchive() {
		res, err = r.ExportArchive(ctx, d, opts)
	} else {
		res, err = r.ExportDocument(ctx, d, opts.Format, opts)
	}
	if err != nil {
		return nil, err
	}

	if opts.Upload {
		loc, err := r.Sink.Put(ctx, res.Name, res.ContentType, res.Data)
		if err != nil {
			return nil, err
		}
		res.Location = loc
		r.Logger.Info("uploaded artifact", "name", res.Name, "location", loc)
	}
	return res, nil
}

// finish records the end of an export run.
func (r *Runner) finish(ctx context.Context, kind string, start time.Time, res *Result, err error) {
	acquired := 0
	if res != nil {
		res.Stats.Duration = r.now().Sub(start)
		acquired = res.Stats.Acquired
	}
	observability.Pipeline().OnExportComplete(ctx, kind, acquired, r.now().Sub(start), err)
}

// failed records a unit that could not be acquired.
func (r *Runner) failed(ctx context.Context, label string, err error) {
	r.Logger.Warn("could not acquire image", "unit", label, "error", err)
	observability.Pipeline().OnUnitFailed(ctx, label, err)
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
