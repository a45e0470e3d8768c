// Package aggregate groups a deck's line items by card name and expands them
// into per-copy acquisition units.
//
// Line items that share a name (alternate printings of the same card) are
// disambiguated by a 1-based version ordinal. A name with a single line item
// gets no ordinal.
package aggregate

import "github.com/matzehuels/decksmith/pkg/deck"

// Group is the set of line items sharing one printing name, in deck order.
type Group struct {
	Name  string
	Items []deck.LineItem
}

// Unit is one copy of one line item to acquire.
type Unit struct {
	Name      string
	Item      deck.LineItem
	ItemIndex int // position of Item within its group
	Copy      int // 1-based copy number within the line item
	Ordinal   int // 1-based version ordinal, 0 when the name is unambiguous
}

// TokenGroup is the set of tokens sharing one name across the whole deck.
type TokenGroup struct {
	Name   string
	Tokens []deck.Token
}

// TokenUnit is one token to acquire. Tokens are always acquired once.
type TokenUnit struct {
	Name    string
	Token   deck.Token
	Index   int
	Ordinal int
}

// GroupItems returns the deck's line items grouped by printing name, in order of
// first appearance. Item order within a group is preserved.
func GroupItems(d *deck.Deck) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, it := range d.Cards {
		name := it.Printing.Name
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Name: name})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// Expand returns one unit per copy of each item in g.
func Expand(g Group) []Unit {
	var units []Unit
	for i, it := range g.Items {
		ord := ordinal(i, len(g.Items))
		for c := 1; c <= it.Quantity; c++ {
			units = append(units, Unit{Name: g.Name, Item: it, ItemIndex: i, Copy: c, Ordinal: ord})
		}
	}
	return units
}

// ExpandUnique returns one unit per item in g, ignoring quantities.
func ExpandUnique(g Group) []Unit {
	units := make([]Unit, 0, len(g.Items))
	for i, it := range g.Items {
		if it.Quantity <= 0 {
			continue
		}
		units = append(units, Unit{Name: g.Name, Item: it, ItemIndex: i, Copy: 1, Ordinal: ordinal(i, len(g.Items))})
	}
	return units
}

// Units expands every group of d.
func Units(d *deck.Deck) []Unit {
	var units []Unit
	for _, g := range GroupItems(d) {
		units = append(units, Expand(g)...)
	}
	return units
}

// CollectTokens groups the tokens of all line items by name in encounter
// order. Each token of each line item is a member once, whatever the owning
// quantity.
func CollectTokens(d *deck.Deck) []TokenGroup {
	var groups []TokenGroup
	index := make(map[string]int)
	for _, it := range d.Cards {
		for _, tok := range it.Tokens {
			name := tok.Printing.Name
			i, ok := index[name]
			if !ok {
				i = len(groups)
				index[name] = i
				groups = append(groups, TokenGroup{Name: name})
			}
			groups[i].Tokens = append(groups[i].Tokens, tok)
		}
	}
	return groups
}

// ExpandTokens returns one unit per member of g.
func ExpandTokens(g TokenGroup) []TokenUnit {
	units := make([]TokenUnit, len(g.Tokens))
	for i, tok := range g.Tokens {
		units[i] = TokenUnit{Name: g.Name, Token: tok, Index: i, Ordinal: ordinal(i, len(g.Tokens))}
	}
	return units
}

// Count returns the number of units an export of d acquires: the sum of
// quantities plus one per token group member.
func Count(d *deck.Deck) int {
	n := d.CardCount()
	for _, g := range CollectTokens(d) {
		n += len(g.Tokens)
	}
	return n
}

func ordinal(i, n int) int {
	if n > 1 {
		return i + 1
	}
	return 0
}
