package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/decksmith/pkg/deck"
	"github.com/matzehuels/decksmith/pkg/errors"
)

type catalog map[string]deck.Printing

func (c catalog) ByName(_ context.Context, name string) (deck.Printing, error) {
	if p, ok := c[name]; ok {
		return p, nil
	}
	return deck.Printing{}, errors.New(errors.ErrCodeNotFound, "no card named %q", name)
}

func (c catalog) ByNameInSet(_ context.Context, name, set string) (deck.Printing, error) {
	if p, ok := c[name+"@"+set]; ok {
		return p, nil
	}
	return deck.Printing{}, errors.New(errors.ErrCodeNotFound, "no %q in %s", name, set)
}

func (c catalog) ByID(_ context.Context, id string) (deck.Printing, error) {
	for _, p := range c {
		if p.ID == id {
			return p, nil
		}
	}
	return deck.Printing{}, errors.New(errors.ErrCodeNotFound, "no card %s", id)
}

func importRunner(c catalog) (*Runner, *[]time.Duration) {
	r := testRunner()
	r.Lookup = c
	var waits []time.Duration
	r.Sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return r, &waits
}

func TestImport(t *testing.T) {
	c := catalog{
		"Opt":            {ID: "opt-eld", OracleID: "o-opt", Name: "Opt", SetCode: "eld"},
		"Opt@mh3":        {ID: "opt-mh3", OracleID: "o-opt", Name: "Opt", SetCode: "mh3"},
		"Lightning Bolt": {ID: "bolt", OracleID: "o-bolt", Name: "Lightning Bolt", SetCode: "m10"},
	}
	r, waits := importRunner(c)
	res, err := r.Import(context.Background(), " Tempo ", "4x Opt\n\n2 Lightning Bolt\nBlack Lotus\nOpt\n", ImportOptions{
		PreferredSet: deck.NewPreferredSet("MH3", "Modern Horizons 3"),
		NoTokens:     true,
	})
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if res.Deck == nil {
		t.Fatal("Import() returned no deck")
	}
	if res.Deck.Name != "Tempo" || res.Deck.PreferredSet.Code != "mh3" {
		t.Errorf("deck = %q %+v", res.Deck.Name, res.Deck.PreferredSet)
	}
	if len(res.Deck.Cards) != 2 {
		t.Fatalf("deck has %d line items, want 2", len(res.Deck.Cards))
	}
	if it := res.Deck.Cards[0]; it.Printing.ID != "opt-mh3" || it.Quantity != 5 {
		t.Errorf("first item = %s x%d, want opt-mh3 x5", it.Printing.ID, it.Quantity)
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0] != "Black Lotus" {
		t.Errorf("Unresolved = %v", res.Unresolved)
	}
	if res.Requested != 4 {
		t.Errorf("Requested = %d, want 4", res.Requested)
	}
	for _, w := range *waits {
		if w != 100*time.Millisecond {
			t.Errorf("waited %v, want default 100ms", w)
		}
	}
}

func TestImportNothingFound(t *testing.T) {
	r, _ := importRunner(catalog{})
	res, err := r.Import(context.Background(), "Empty", "Black Lotus\n3x Mox Pearl", ImportOptions{Delay: -1})
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if res.Deck != nil {
		t.Error("Import() should not build a deck when nothing resolved")
	}
	if len(res.Unresolved) != 2 || res.Unresolved[1] != "3x Mox Pearl" {
		t.Errorf("Unresolved = %v", res.Unresolved)
	}
}

func TestImportRejects(t *testing.T) {
	r, _ := importRunner(catalog{})
	if _, err := r.Import(context.Background(), "  ", "Opt", ImportOptions{}); !errors.Is(err, errors.ErrCodeInvalidDeck) {
		t.Errorf("empty name error = %v, want INVALID_DECK", err)
	}
	if _, err := r.Import(context.Background(), "Deck", "\n  \n", ImportOptions{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty list error = %v, want INVALID_INPUT", err)
	}
}

func TestMergeByPrinting(t *testing.T) {
	items := []deck.LineItem{
		{Printing: deck.Printing{ID: "a"}, Quantity: 2},
		{Printing: deck.Printing{ID: "b"}, Quantity: 1},
		{Printing: deck.Printing{ID: "a"}, Quantity: 3},
	}
	got := mergeByPrinting(items)
	if len(got) != 2 || got[0].Quantity != 5 || got[1].Printing.ID != "b" {
		t.Errorf("mergeByPrinting() = %+v", got)
	}
}
