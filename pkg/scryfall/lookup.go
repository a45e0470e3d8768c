package scryfall

import (
	"context"

	"github.com/matzehuels/decksmith/pkg/deck"
)

// ByName resolves a fuzzy name into a printing.
func (c *Client) ByName(ctx context.Context, name string) (deck.Printing, error) {
	card, err := c.CardByName(ctx, name)
	if err != nil {
		return deck.Printing{}, err
	}
	return card.Printing(), nil
}

// ByNameInSet resolves an exact name within a set into a printing.
func (c *Client) ByNameInSet(ctx context.Context, name, setCode string) (deck.Printing, error) {
	card, err := c.CardByNameInSet(ctx, name, setCode)
	if err != nil {
		return deck.Printing{}, err
	}
	return card.Printing(), nil
}

// ByID fetches a printing by catalog ID.
func (c *Client) ByID(ctx context.Context, id string) (deck.Printing, error) {
	card, err := c.CardByID(ctx, id)
	if err != nil {
		return deck.Printing{}, err
	}
	return card.Printing(), nil
}

// Printings converts a result page into printings.
func (l *CardList) Printings() []deck.Printing {
	out := make([]deck.Printing, len(l.Data))
	for i := range l.Data {
		out[i] = l.Data[i].Printing()
	}
	return out
}
