package pipeline

import (
	"context"

	"github.com/matzehuels/decksmith/pkg/aggregate"
	"github.com/matzehuels/decksmith/pkg/compose"
	"github.com/matzehuels/decksmith/pkg/deck"
	"github.com/matzehuels/decksmith/pkg/display"
	"github.com/matzehuels/decksmith/pkg/document"
	"github.com/matzehuels/decksmith/pkg/errors"
	"github.com/matzehuels/decksmith/pkg/layout"
	"github.com/matzehuels/decksmith/pkg/observability"
	"github.com/matzehuels/decksmith/pkg/progress"
)

// printJob is one image to acquire for a print document.
type printJob struct {
	label    string
	front    string
	back     string // empty unless dual-faced
	quantity int
	token    bool
}

func (j printJob) key() string {
	if j.back == "" {
		return j.front
	}
	return j.front + "\x00" + j.back
}

// printJobs lists one job per line item, grouped by name, then one per token.
func printJobs(d *deck.Deck) []printJob {
	var jobs []printJob
	for _, g := range aggregate.GroupItems(d) {
		for _, it := range g.Items {
			if it.Quantity <= 0 {
				continue
			}
			j := printJob{label: g.Name, front: display.ItemFront(it), quantity: it.Quantity}
			if back, ok := display.ItemBack(it); ok {
				j.back = back
			}
			jobs = append(jobs, j)
		}
	}
	for _, g := range aggregate.CollectTokens(d) {
		for _, u := range aggregate.ExpandTokens(g) {
			jobs = append(jobs, printJob{
				label:    "Token: " + u.Name,
				front:    display.TokenImage(u.Token),
				quantity: 1,
				token:    true,
			})
		}
	}
	return jobs
}

// ExportDocument acquires one image per line item and token of d and lays
// them out on A4 sheets in the given print format.
//
// Dual-faced printings are composited into a single cell. Images are
// pre-rotated when the format's cells are landscape. Line items repeat by
// quantity, tokens appear once, and the empty cells of the last page are
// filled with token images in turn.
func (r *Runner) ExportDocument(ctx context.Context, d *deck.Deck, formatID string, opts Options) (res *Result, err error) {
	f, err := layout.Lookup(formatID)
	if err != nil {
		return nil, err
	}
	start := r.now()
	jobs := printJobs(d)
	observability.Pipeline().OnExportStart(ctx, f.ID, len(jobs))
	defer func() { r.finish(ctx, f.ID, start, res, err) }()

	r.Logger.Info("exporting document", "deck", d.Name, "format", f.ID, "images", len(jobs))

	memo := newImageMemo()
	var cards, tokens []document.Image
	var failures []string

	for i, j := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		px, err := memo.get(j.key(), func() (*compose.Pixels, error) {
			if j.back != "" {
				return r.Acquirer.CompositeDualFace(ctx, j.front, j.back, f.Rotate)
			}
			return r.Acquirer.Acquire(ctx, j.front, f.Rotate)
		})
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			failures = append(failures, j.label)
			r.failed(ctx, j.label, err)
		default:
			img := document.Image{Key: j.key(), Label: j.label, Data: px.Data}
			for c := 0; c < j.quantity; c++ {
				cards = append(cards, img)
			}
			if j.token {
				tokens = append(tokens, img)
			}
		}
		opts.Progress.Emit(progress.Progress{Current: i + 1, Total: len(jobs), Label: j.label})
	}

	if len(cards) == 0 {
		return nil, &errors.EmptyArtifactError{Artifact: "document", Failures: failures}
	}
	acquired := len(jobs) - len(failures)
	images := layout.Backfill(cards, f, tokens)

	data, rep, err := document.NewBuilder(r.Logger).WithCreationDate(start).Build(ctx, images, f)
	if err != nil {
		return nil, err
	}
	failures = append(failures, rep.Skipped...)

	return &Result{
		Name:        document.Name(d.Name, f.ID),
		ContentType: document.ContentType,
		Data:        data,
		Failures:    failures,
		Stats: Stats{
			Units:    len(jobs),
			Acquired: acquired,
			Failed:   len(failures),
			Pages:    rep.Pages,
		},
	}, nil
}
