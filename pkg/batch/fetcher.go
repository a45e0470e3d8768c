// Package batch resolves pasted card lists against the catalog, one request
// at a time.
//
// Requests are strictly sequential and separated by a fixed delay so the
// catalog's rate limit is respected even when lookups are fast. A request that
// cannot be resolved is recorded and the run moves on; only cancellation
// stops it early.
package batch

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/decksmith/pkg/deck"
	"github.com/matzehuels/decksmith/pkg/progress"
)

// DefaultDelay is the pause after every catalog call.
const DefaultDelay = 100 * time.Millisecond

// Lookup resolves card references.
type Lookup interface {
	ByName(ctx context.Context, name string) (deck.Printing, error)
	ByNameInSet(ctx context.Context, name, setCode string) (deck.Printing, error)
	ByID(ctx context.Context, id string) (deck.Printing, error)
}

// Outcome is the result of a run. Resolved items carry the requested
// quantity; Unresolved holds request labels such as "4x Opt".
type Outcome struct {
	Resolved   []deck.LineItem
	Unresolved []string
}

// Fetcher resolves requests through a Lookup.
type Fetcher struct {
	Lookup Lookup

	// Delay is waited after every catalog call. Zero disables waiting.
	Delay time.Duration

	// PreferredSet, when set, re-resolves cards and tokens in that set,
	// keeping the original printing when it has no match.
	PreferredSet string

	// Tokens resolves the tokens each card creates.
	Tokens bool

	Logger *log.Logger

	// Sleep waits d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher returns a Fetcher with the default delay that resolves tokens.
func NewFetcher(l Lookup) *Fetcher {
	return &Fetcher{Lookup: l, Delay: DefaultDelay, Tokens: true}
}

// Run resolves reqs in order and reports progress after each one. Progress
// counts card copies: Current grows by the request quantity and the final
// snapshot has Current == Total.
//
// A run where nothing resolves returns an empty Outcome and no error. The
// only error is the context's, returned with the partial outcome.
func (f *Fetcher) Run(ctx context.Context, reqs []Request, onProgress progress.Func) (Outcome, error) {
	logger := f.logger()
	var out Outcome
	total := Total(reqs)
	current := 0

	for _, r := range reqs {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		item, err := f.resolve(ctx, r)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, ctxErr
			}
			logger.Debug("card not found", "name", r.Name, "error", err)
			out.Unresolved = append(out.Unresolved, r.Label())
		} else {
			out.Resolved = append(out.Resolved, item)
		}

		if err := f.wait(ctx); err != nil {
			return out, err
		}
		current += r.Quantity
		onProgress.Emit(progress.Progress{Current: current, Total: total, Label: r.Name})
	}
	return out, nil
}

// resolve looks up one request. Only the primary lookup can fail it.
func (f *Fetcher) resolve(ctx context.Context, r Request) (deck.LineItem, error) {
	original, err := f.Lookup.ByName(ctx, r.Name)
	if err != nil {
		return deck.LineItem{}, err
	}
	chosen := original

	if f.PreferredSet != "" {
		p, err := f.Lookup.ByNameInSet(ctx, original.Name, f.PreferredSet)
		if err == nil {
			chosen = p
		} else {
			f.logger().Debug("no printing in preferred set", "name", original.Name, "set", f.PreferredSet, "error", err)
		}
		if err := f.wait(ctx); err != nil {
			return deck.LineItem{}, err
		}
	}

	item := deck.LineItem{Printing: chosen, Quantity: r.Quantity}
	if f.Tokens {
		source := chosen
		if len(source.Parts) == 0 {
			source = original
		}
		tokens, err := f.tokens(ctx, source)
		if err != nil {
			return deck.LineItem{}, err
		}
		item.Tokens = tokens
	}
	return item, nil
}

// tokens resolves the token parts of p. Only cancellation is an error;
// tokens that fail to resolve are left out.
func (f *Fetcher) tokens(ctx context.Context, p deck.Printing) ([]deck.Token, error) {
	var out []deck.Token
	for _, part := range p.TokenParts() {
		tok, err := f.Lookup.ByID(ctx, part.ID)
		if werr := f.wait(ctx); werr != nil {
			return nil, werr
		}
		if err != nil {
			f.logger().Debug("token not found", "name", part.Name, "error", err)
			continue
		}

		if f.PreferredSet != "" {
			if p, err := f.Lookup.ByNameInSet(ctx, tok.Name, f.PreferredSet); err == nil {
				tok = p
			}
			if err := f.wait(ctx); err != nil {
				return nil, err
			}
		}
		out = append(out, deck.Token{Printing: tok})
	}
	return out, nil
}

func (f *Fetcher) wait(ctx context.Context) error {
	if f.Sleep != nil {
		return f.Sleep(ctx, f.Delay)
	}
	return Sleep(ctx, f.Delay)
}

func (f *Fetcher) logger() *log.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return discard
}

var discard = log.New(io.Discard)

// Sleep waits d or until ctx is done, returning the context's error in the
// latter case.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
