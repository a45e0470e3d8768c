// Package pipeline turns decks into export artifacts and card lists into decks.
//
// This package ties the single-purpose packages together so the CLI and the
// HTTP API share one implementation of every run:
//
//  1. Export: aggregate -> acquire -> archive, or
//     aggregate -> acquire -> layout -> document
//  2. Import: parse -> throttled batch fetch -> deck
//
// # Usage
//
//	runner := pipeline.NewRunner(acquirer, catalog, logger)
//	res, err := runner.Export(ctx, d, pipeline.Options{Format: "3x3"})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(res.Name, res.Data, 0o644)
//
// A unit that cannot be acquired is logged, recorded in [Result.Failures] and
// skipped. A run in which every unit fails returns *errors.EmptyArtifactError.
package pipeline

import (
	"time"

	"github.com/matzehuels/decksmith/pkg/deck"
	"github.com/matzehuels/decksmith/pkg/layout"
	"github.com/matzehuels/decksmith/pkg/progress"
)

// FormatArchive selects the image archive instead of a print format.
const FormatArchive = "zip"

// Options configures an export run.
type Options struct {
	// Format is FormatArchive or a print format id ("3x3", "4x4", "3x6").
	Format string `json:"format"`

	// Unique acquires one archive entry per line item instead of one per
	// copy. Print documents always expand quantities.
	Unique bool `json:"unique,omitempty"`

	// Upload stores the artifact through the runner's sink.
	Upload bool `json:"upload,omitempty"`

	Progress progress.Func `json:"-"`
}

// ValidateAndSetDefaults fills in the default format and rejects unknown ones.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = layout.DefaultFormat
	}
	if o.IsArchive() {
		return nil
	}
	_, err := layout.Lookup(o.Format)
	return err
}

// IsArchive reports whether the run builds the image archive.
func (o Options) IsArchive() bool {
	return o.Format == FormatArchive
}

// Result is a built artifact.
type Result struct {
	Name        string   `json:"name"`
	ContentType string   `json:"content_type"`
	Data        []byte   `json:"-"`
	Location    string   `json:"location,omitempty"` // set when uploaded
	Failures    []string `json:"failures,omitempty"` // labels of units that were skipped
	Stats       Stats    `json:"stats"`
}

// Stats describes an export run.
type Stats struct {
	Units    int           `json:"units"`
	Acquired int           `json:"acquired"`
	Failed   int           `json:"failed"`
	Pages    int           `json:"pages,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ImportOptions configures an import run.
type ImportOptions struct {
	// PreferredSet re-resolves cards and tokens in that set when possible.
	PreferredSet *deck.PreferredSet

	// NoTokens skips resolving the tokens each card creates.
	NoTokens bool

	// Delay between catalog calls. Zero uses the default; negative disables it.
	Delay time.Duration

	Progress progress.Func
}

// ImportResult is the outcome of an import run. Deck is nil when no card
// resolved.
type ImportResult struct {
	Deck       *deck.Deck    `json:"deck,omitempty"`
	Unresolved []string      `json:"unresolved"`
	Requested  int           `json:"requested"`
	Duration   time.Duration `json:"duration"`
}
