package deck

import (
	"strings"

	"github.com/matzehuels/decksmith/pkg/errors"
)

// Add adds quantity copies of p with the given tokens.
//
// Copies merge by oracle identity: if a line item for the same card (any
// printing) exists, its quantity grows and its printing and tokens are kept.
// Otherwise a new line item is appended.
func (d *Deck) Add(p Printing, quantity int, tokens []Token) error {
	if quantity <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "quantity must be positive, got %d", quantity)
	}
	if it, ok := d.FindByOracle(p.OracleID); ok {
		it.Quantity += quantity
		d.touch()
		return nil
	}
	if it, ok := d.Find(p.ID); ok {
		it.Quantity += quantity
		d.touch()
		return nil
	}
	d.Cards = append(d.Cards, LineItem{Printing: p, Quantity: quantity, Tokens: tokens})
	d.touch()
	return nil
}

// SetQuantity sets the quantity of a line item. Zero removes it.
func (d *Deck) SetQuantity(printingID string, q int) error {
	if q < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "quantity cannot be negative, got %d", q)
	}
	if q == 0 {
		return d.Remove(printingID)
	}
	it, ok := d.Find(printingID)
	if !ok {
		return notFound(printingID)
	}
	it.Quantity = q
	d.touch()
	return nil
}

// Remove deletes the line item for printingID. A removed cover is cleared.
func (d *Deck) Remove(printingID string) error {
	i := d.Index(printingID)
	if i < 0 {
		return notFound(printingID)
	}
	d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
	if d.CoverCardID == printingID {
		d.CoverCardID = ""
	}
	d.touch()
	return nil
}

// Rename changes the deck name.
func (d *Deck) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := errors.ValidateDeckName(name); err != nil {
		return err
	}
	d.Name = name
	d.touch()
	return nil
}

// SetCover marks the line item for printingID as the deck cover.
func (d *Deck) SetCover(printingID string) error {
	if _, ok := d.Find(printingID); !ok {
		return notFound(printingID)
	}
	d.CoverCardID = printingID
	d.touch()
	return nil
}

// ReplacePrinting swaps the printing of a line item for an alternate one,
// keeping quantity, tokens and overrides. The deck keeps at most one line
// item per printing, so replacing onto a printing already present fails.
func (d *Deck) ReplacePrinting(printingID string, p Printing) error {
	it, ok := d.Find(printingID)
	if !ok {
		return notFound(printingID)
	}
	if p.ID != printingID {
		if _, dup := d.Find(p.ID); dup {
			return errors.New(errors.ErrCodeInvalidDeck, "printing %s is already in the deck", p.ID)
		}
	}
	it.Printing = p
	if d.CoverCardID == printingID {
		d.CoverCardID = p.ID
	}
	d.touch()
	return nil
}

// SetCustomArt sets the front artwork override of a line item.
func (d *Deck) SetCustomArt(printingID, ref string) error {
	return d.edit(printingID, ref, func(it *LineItem) { it.CustomImage = ref })
}

// ClearCustomArt removes the front artwork override.
func (d *Deck) ClearCustomArt(printingID string) error {
	return d.edit(printingID, "", func(it *LineItem) { it.CustomImage = "" })
}

// SetCustomBackArt sets the back artwork override of a line item.
// It only affects rendering for dual-faced printings.
func (d *Deck) SetCustomBackArt(printingID, ref string) error {
	return d.edit(printingID, ref, func(it *LineItem) { it.CustomBackImage = ref })
}

// ClearCustomBackArt removes the back artwork override.
func (d *Deck) ClearCustomBackArt(printingID string) error {
	return d.edit(printingID, "", func(it *LineItem) { it.CustomBackImage = "" })
}

// SetTokenCustomArt sets the artwork override of the token at tokenIndex.
// An out-of-range index leaves the deck unchanged.
func (d *Deck) SetTokenCustomArt(printingID string, tokenIndex int, ref string) error {
	return d.edit(printingID, ref, func(it *LineItem) {
		if tokenIndex >= 0 && tokenIndex < len(it.Tokens) {
			it.Tokens[tokenIndex].CustomImage = ref
		}
	})
}

// ClearTokenCustomArt removes the artwork override of the token at tokenIndex.
func (d *Deck) ClearTokenCustomArt(printingID string, tokenIndex int) error {
	return d.edit(printingID, "", func(it *LineItem) {
		if tokenIndex >= 0 && tokenIndex < len(it.Tokens) {
			it.Tokens[tokenIndex].CustomImage = ""
		}
	})
}

// ReplaceToken swaps the printing of the token at tokenIndex, keeping its
// override. An out-of-range index leaves the deck unchanged.
func (d *Deck) ReplaceToken(printingID string, tokenIndex int, p Printing) error {
	return d.edit(printingID, "", func(it *LineItem) {
		if tokenIndex >= 0 && tokenIndex < len(it.Tokens) {
			it.Tokens[tokenIndex].Printing = p
		}
	})
}

func (d *Deck) edit(printingID, ref string, fn func(*LineItem)) error {
	if ref != "" {
		if err := errors.ValidateImageRef(ref); err != nil {
			return err
		}
	}
	it, ok := d.Find(printingID)
	if !ok {
		return notFound(printingID)
	}
	fn(it)
	d.touch()
	return nil
}

func notFound(printingID string) error {
	return errors.New(errors.ErrCodeNotFound, "no card %s in deck", printingID)
}
