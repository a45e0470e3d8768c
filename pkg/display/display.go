// Package display resolves which image a line item or token shows.
//
// Resolution is pure: it looks only at the printing data and the override
// references stored on the deck.
package display

import "github.com/matzehuels/decksmith/pkg/deck"

// Placeholder is the image reference used when a printing has no artwork.
// Image loaders synthesize a card back for it instead of fetching.
const Placeholder = "asset:card-back"

// dualFacedLayouts are the layouts whose second face is a separate card side.
var dualFacedLayouts = map[string]bool{
	"transform":          true,
	"modal_dfc":          true,
	"double_faced_token": true,
	"reversible_card":    true,
	"art_series":         true,
}

// IsDualFaced reports whether a layout has a printed back face.
// Split, flip and adventure cards have several faces on one side and are not
// dual-faced.
func IsDualFaced(layout string) bool {
	return dualFacedLayouts[layout]
}

// Front returns the front image reference.
//
// Order: the override, the printing's top-level image, the first face with
// an image, then [Placeholder].
func Front(p deck.Printing, override string) string {
	if override != "" {
		return override
	}
	if p.ImageURI != "" {
		return p.ImageURI
	}
	if i := firstFaceWithImage(p, 0); i >= 0 {
		return p.Faces[i].ImageURI
	}
	return Placeholder
}

// Back returns the back image reference. It is absent for printings that are
// not dual-faced. The override wins; otherwise the back is the next face with
// an image after the front one.
func Back(p deck.Printing, override string) (string, bool) {
	if !IsDualFaced(p.Layout) {
		return "", false
	}
	if override != "" {
		return override, true
	}
	front := firstFaceWithImage(p, 0)
	if front < 0 {
		return "", false
	}
	if i := firstFaceWithImage(p, front+1); i >= 0 {
		return p.Faces[i].ImageURI, true
	}
	return "", false
}

// ItemFront resolves the front of a line item.
func ItemFront(it deck.LineItem) string {
	return Front(it.Printing, it.CustomImage)
}

// ItemBack resolves the back of a line item.
func ItemBack(it deck.LineItem) (string, bool) {
	return Back(it.Printing, it.CustomBackImage)
}

// TokenImage resolves the image of a token.
func TokenImage(t deck.Token) string {
	return Front(t.Printing, t.CustomImage)
}

func firstFaceWithImage(p deck.Printing, from int) int {
	for i := from; i < len(p.Faces); i++ {
		if p.Faces[i].ImageURI != "" {
			return i
		}
	}
	return -1
}
