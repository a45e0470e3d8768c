// Package deck defines the deck data model and its edit operations.
//
// A [Deck] is an ordered list of [LineItem] values, each pointing at one
// catalog [Printing] with a quantity, the tokens the card creates and
// optional artwork overrides. Image references for display are not stored
// on the printing; they are derived by package display.
//
// Decks are plain values. Callers decide where and when to persist them;
// see [Load] and [Save] for the JSON and TOML file formats.
package deck

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Face is one face of a multi-faced printing.
type Face struct {
	Name     string `json:"name" toml:"name"`
	ImageURI string `json:"imageUri,omitempty" toml:"image_uri,omitempty"`
}

// Part is a card related to a printing, such as a token it creates.
type Part struct {
	ID        string `json:"id" toml:"id"`
	Name      string `json:"name" toml:"name"`
	Component string `json:"component" toml:"component"`
}

// ComponentToken is the Part component used for tokens.
const ComponentToken = "token"

// Printing is one specific catalog version of a card.
type Printing struct {
	ID              string `json:"id" toml:"id"`
	OracleID        string `json:"oracleId,omitempty" toml:"oracle_id,omitempty"`
	Name            string `json:"name" toml:"name"`
	SetCode         string `json:"setCode,omitempty" toml:"set_code,omitempty"`
	SetName         string `json:"setName,omitempty" toml:"set_name,omitempty"`
	CollectorNumber string `json:"collectorNumber,omitempty" toml:"collector_number,omitempty"`
	Layout          string `json:"layout,omitempty" toml:"layout,omitempty"`
	ImageURI        string `json:"imageUri,omitempty" toml:"image_uri,omitempty"`
	Faces           []Face `json:"faces,omitempty" toml:"faces,omitempty"`
	TypeLine        string `json:"typeLine,omitempty" toml:"type_line,omitempty"`
	Parts           []Part `json:"parts,omitempty" toml:"parts,omitempty"`
}

// TokenParts returns the related parts that are tokens, deduplicated by name
// in encounter order.
func (p Printing) TokenParts() []Part {
	var out []Part
	seen := make(map[string]bool)
	for _, part := range p.Parts {
		if part.Component != ComponentToken || seen[part.Name] {
			continue
		}
		seen[part.Name] = true
		out = append(out, part)
	}
	return out
}

// Token is a token created by a line item, with an optional artwork override.
type Token struct {
	Printing    Printing `json:"card" toml:"card"`
	CustomImage string   `json:"customImageUri,omitempty" toml:"custom_image,omitempty"`
}

// LineItem is one entry of a deck.
type LineItem struct {
	Printing        Printing `json:"card" toml:"card"`
	Quantity        int      `json:"quantity" toml:"quantity"`
	Tokens          []Token  `json:"tokensData,omitempty" toml:"tokens,omitempty"`
	CustomImage     string   `json:"customImageUri,omitempty" toml:"custom_image,omitempty"`
	CustomBackImage string   `json:"customBackImageUri,omitempty" toml:"custom_back_image,omitempty"`
}

// PreferredSet is the collection imports try to resolve printings from.
type PreferredSet struct {
	Code string `json:"code" toml:"code"`
	Name string `json:"name" toml:"name"`
}

// NewPreferredSet returns a PreferredSet with the code lowercased.
func NewPreferredSet(code, name string) *PreferredSet {
	return &PreferredSet{Code: strings.ToLower(code), Name: name}
}

// Deck is a named, ordered collection of line items.
//
// A deck holds at most one line item per printing ID.
type Deck struct {
	ID           string        `json:"id" toml:"id"`
	Name         string        `json:"name" toml:"name"`
	Cards        []LineItem    `json:"cards" toml:"cards"`
	PreferredSet *PreferredSet `json:"preferredSet,omitempty" toml:"preferred_set,omitempty"`
	CoverCardID  string        `json:"coverCardId,omitempty" toml:"cover_card_id,omitempty"`
	CreatedAt    time.Time     `json:"createdAt" toml:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" toml:"updated_at"`

	now func() time.Time
}

// Option configures a new Deck.
type Option func(*Deck)

// WithClock sets the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Deck) { d.now = now }
}

// WithID sets the deck ID instead of generating one.
func WithID(id string) Option {
	return func(d *Deck) { d.ID = id }
}

// New creates a deck with a fresh ID and creation timestamps.
// Items with a zero quantity are dropped.
func New(name string, items []LineItem, preferred *PreferredSet, opts ...Option) *Deck {
	d := &Deck{Name: name, PreferredSet: preferred}
	for _, o := range opts {
		o(d)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	for _, it := range items {
		if it.Quantity > 0 {
			d.Cards = append(d.Cards, it)
		}
	}
	d.CreatedAt = d.clock()
	d.UpdatedAt = d.CreatedAt
	return d
}

// UseClock replaces the clock used by edit operations.
func (d *Deck) UseClock(now func() time.Time) { d.now = now }

// Reissue gives the deck a new ID and resets both timestamps. It is applied
// to decks imported from a file so they never collide with the original.
func (d *Deck) Reissue() {
	d.ID = uuid.NewString()
	d.CreatedAt = d.clock()
	d.UpdatedAt = d.CreatedAt
}

// CardCount returns the sum of line item quantities.
func (d *Deck) CardCount() int {
	n := 0
	for _, it := range d.Cards {
		n += it.Quantity
	}
	return n
}

// Index returns the position of the line item for printingID, or -1.
func (d *Deck) Index(printingID string) int {
	for i, it := range d.Cards {
		if it.Printing.ID == printingID {
			return i
		}
	}
	return -1
}

// Find returns the line item for printingID.
func (d *Deck) Find(printingID string) (*LineItem, bool) {
	if i := d.Index(printingID); i >= 0 {
		return &d.Cards[i], true
	}
	return nil, false
}

// FindByOracle returns the first line item whose printing shares oracleID.
func (d *Deck) FindByOracle(oracleID string) (*LineItem, bool) {
	if oracleID == "" {
		return nil, false
	}
	for i := range d.Cards {
		if d.Cards[i].Printing.OracleID == oracleID {
			return &d.Cards[i], true
		}
	}
	return nil, false
}

// Cover returns the cover line item: the one named by CoverCardID, else the
// first card.
func (d *Deck) Cover() (*LineItem, bool) {
	if d.CoverCardID != "" {
		if it, ok := d.Find(d.CoverCardID); ok {
			return it, true
		}
	}
	if len(d.Cards) == 0 {
		return nil, false
	}
	return &d.Cards[0], true
}

func (d *Deck) clock() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}

func (d *Deck) touch() {
	d.UpdatedAt = d.clock()
}
