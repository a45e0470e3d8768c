package deck

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/decksmith/pkg/errors"
)

// File extensions understood by the codec.
const (
	ExtJSON = ".json"
	ExtTOML = ".toml"
)

// Load reads a deck file. The format is chosen by extension.
func Load(path string) (*Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, filepath.Ext(path))
}

// Save writes d to path atomically. The format is chosen by extension.
func Save(path string, d *Deck) error {
	var buf bytes.Buffer
	if err := Encode(&buf, d, filepath.Ext(path)); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Import decodes a deck exported elsewhere and reissues it with a fresh ID
// and timestamps.
func Import(r io.Reader, ext string) (*Deck, error) {
	d, err := Decode(r, ext)
	if err != nil {
		return nil, err
	}
	d.Reissue()
	return d, nil
}

// Decode reads a deck in the format named by ext and checks its invariants.
// Zero-quantity line items are dropped.
func Decode(r io.Reader, ext string) (*Deck, error) {
	var d Deck
	switch strings.ToLower(ext) {
	case ExtJSON:
		if err := json.NewDecoder(r).Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDeck, err, "decode deck json")
		}
	case ExtTOML:
		if _, err := toml.NewDecoder(r).Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDeck, err, "decode deck toml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported deck file extension %q", ext)
	}
	return &d, d.normalize()
}

// Encode writes d in the format named by ext.
func Encode(w io.Writer, d *Deck, ext string) error {
	switch strings.ToLower(ext) {
	case ExtJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case ExtTOML:
		return toml.NewEncoder(w).Encode(d)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported deck file extension %q", ext)
	}
}

func (d *Deck) normalize() error {
	if d.PreferredSet != nil {
		d.PreferredSet.Code = strings.ToLower(d.PreferredSet.Code)
	}
	kept := d.Cards[:0]
	seen := make(map[string]bool, len(d.Cards))
	for _, it := range d.Cards {
		if it.Quantity < 0 {
			return errors.New(errors.ErrCodeInvalidDeck, "card %q has negative quantity", it.Printing.Name)
		}
		if it.Quantity == 0 {
			continue
		}
		if seen[it.Printing.ID] {
			return errors.New(errors.ErrCodeInvalidDeck, "card %s appears more than once", it.Printing.ID)
		}
		seen[it.Printing.ID] = true
		kept = append(kept, it)
	}
	d.Cards = kept
	return nil
}
