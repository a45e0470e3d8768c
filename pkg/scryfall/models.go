package scryfall

import (
	"strings"

	"github.com/matzehuels/decksmith/pkg/deck"
)

// Card is a card object as returned by the catalog.
type Card struct {
	ID              string        `json:"id"`
	OracleID        string        `json:"oracle_id"`
	Name            string        `json:"name"`
	Lang            string        `json:"lang,omitempty"`
	Layout          string        `json:"layout"`
	ImageURIs       *ImageURIs    `json:"image_uris,omitempty"`
	ManaCost        string        `json:"mana_cost,omitempty"`
	TypeLine        string        `json:"type_line"`
	SetCode         string        `json:"set"`
	SetName         string        `json:"set_name"`
	CollectorNumber string        `json:"collector_number"`
	Rarity          string        `json:"rarity,omitempty"`
	ReleasedAt      string        `json:"released_at,omitempty"`
	CardFaces       []CardFace    `json:"card_faces,omitempty"`
	AllParts        []RelatedCard `json:"all_parts,omitempty"`
}

// CardFace is one face of a multi-faced card.
type CardFace struct {
	Name      string     `json:"name"`
	ManaCost  string     `json:"mana_cost,omitempty"`
	TypeLine  string     `json:"type_line,omitempty"`
	ImageURIs *ImageURIs `json:"image_uris,omitempty"`
}

// ImageURIs contains URLs for card images in various sizes.
type ImageURIs struct {
	Small      string `json:"small,omitempty"`
	Normal     string `json:"normal,omitempty"`
	Large      string `json:"large,omitempty"`
	PNG        string `json:"png,omitempty"`
	ArtCrop    string `json:"art_crop,omitempty"`
	BorderCrop string `json:"border_crop,omitempty"`
}

// RelatedCard is an entry of a card's all_parts list.
type RelatedCard struct {
	ID        string `json:"id"`
	Component string `json:"component"`
	Name      string `json:"name"`
	TypeLine  string `json:"type_line,omitempty"`
}

// Set is a card collection.
type Set struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	SetType    string `json:"set_type,omitempty"`
	ReleasedAt string `json:"released_at,omitempty"`
	CardCount  int    `json:"card_count"`
	Digital    bool   `json:"digital,omitempty"`
	IconSVGURI string `json:"icon_svg_uri,omitempty"`
}

// SetList is the response of the sets endpoint.
type SetList struct {
	Object  string `json:"object"`
	HasMore bool   `json:"has_more"`
	Data    []Set  `json:"data"`
}

// CardList is one page of search results.
type CardList struct {
	Object     string `json:"object"`
	TotalCards int    `json:"total_cards"`
	HasMore    bool   `json:"has_more"`
	NextPage   string `json:"next_page,omitempty"`
	Data       []Card `json:"data"`
}

// APIError is the catalog's error object.
type APIError struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Details
}

func normal(u *ImageURIs) string {
	if u == nil {
		return ""
	}
	return u.Normal
}

// Printing converts a card into the deck model.
func (c *Card) Printing() deck.Printing {
	p := deck.Printing{
		ID:              c.ID,
		OracleID:        c.OracleID,
		Name:            c.Name,
		SetCode:         strings.ToLower(c.SetCode),
		SetName:         c.SetName,
		CollectorNumber: c.CollectorNumber,
		Layout:          c.Layout,
		ImageURI:        normal(c.ImageURIs),
		TypeLine:        c.TypeLine,
	}
	for _, f := range c.CardFaces {
		p.Faces = append(p.Faces, deck.Face{Name: f.Name, ImageURI: normal(f.ImageURIs)})
	}
	for _, part := range c.AllParts {
		p.Parts = append(p.Parts, deck.Part{ID: part.ID, Name: part.Name, Component: part.Component})
	}
	return p
}
