package pipeline

import (
	"context"
	"strings"

	"github.com/matzehuels/decksmith/pkg/batch"
	"github.com/matzehuels/decksmith/pkg/deck"
	"github.com/matzehuels/decksmith/pkg/errors"
	"github.com/matzehuels/decksmith/pkg/observability"
)

// Import parses a pasted card list, resolves it against the catalog one
// request at a time and builds a deck named name from what was found.
//
// Nothing resolving is not an error: the result has a nil Deck and every
// request listed as unresolved.
func (r *Runner) Import(ctx context.Context, name, text string, opts ImportOptions) (*ImportResult, error) {
	name = strings.TrimSpace(name)
	if err := errors.ValidateDeckName(name); err != nil {
		return nil, err
	}
	if r.Lookup == nil {
		return nil, errors.New(errors.ErrCodeInternal, "runner has no card lookup")
	}
	reqs := batch.Parse(text)
	if len(reqs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "card list is empty")
	}

	start := r.now()
	observability.Pipeline().OnImportStart(ctx, len(reqs))

	f := batch.NewFetcher(r.Lookup)
	switch {
	case opts.Delay > 0:
		f.Delay = opts.Delay
	case opts.Delay < 0:
		f.Delay = 0
	}
	f.Tokens = !opts.NoTokens
	if opts.PreferredSet != nil {
		f.PreferredSet = opts.PreferredSet.Code
	}
	f.Logger = r.Logger
	f.Sleep = r.Sleep

	r.Logger.Info("importing card list", "deck", name, "requests", len(reqs), "cards", batch.Total(reqs))
	out, err := f.Run(ctx, reqs, opts.Progress)
	duration := r.now().Sub(start)
	observability.Pipeline().OnImportComplete(ctx, len(out.Resolved), len(out.Unresolved), duration)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{
		Unresolved: out.Unresolved,
		Requested:  len(reqs),
		Duration:   duration,
	}
	if len(out.Resolved) > 0 {
		res.Deck = deck.New(name, mergeByPrinting(out.Resolved), opts.PreferredSet, deck.WithClock(r.now))
	}
	r.Logger.Info("import finished", "found", len(out.Resolved), "not_found", len(out.Unresolved))
	return res, nil
}

// mergeByPrinting folds line items resolving to the same printing into the
// first one, summing quantities.
func mergeByPrinting(items []deck.LineItem) []deck.LineItem {
	var out []deck.LineItem
	index := make(map[string]int)
	for _, it := range items {
		if i, ok := index[it.Printing.ID]; ok && it.Printing.ID != "" {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.Printing.ID] = len(out)
		out = append(out, it)
	}
	return out
}
