package display

import (
	"testing"

	"github.com/matzehuels/decksmith/pkg/deck"
)

func TestFront(t *testing.T) {
	faces := []deck.Face{{Name: "A"}, {Name: "B", ImageURI: "face-b"}, {Name: "C", ImageURI: "face-c"}}
	tests := []struct {
		name     string
		p        deck.Printing
		override string
		want     string
	}{
		{"override wins", deck.Printing{ImageURI: "top"}, "custom", "custom"},
		{"top level beats faces", deck.Printing{ImageURI: "top", Faces: faces}, "", "top"},
		{"first face with image", deck.Printing{Faces: faces}, "", "face-b"},
		{"placeholder", deck.Printing{Faces: []deck.Face{{Name: "A"}}}, "", Placeholder},
		{"no faces", deck.Printing{}, "", Placeholder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Front(tt.p, tt.override); got != tt.want {
				t.Errorf("Front() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBack(t *testing.T) {
	dfc := []deck.Face{{Name: "Front", ImageURI: "f"}, {Name: "Back", ImageURI: "b"}}
	tests := []struct {
		name     string
		p        deck.Printing
		override string
		want     string
		ok       bool
	}{
		{"transform", deck.Printing{Layout: "transform", Faces: dfc}, "", "b", true},
		{"override", deck.Printing{Layout: "modal_dfc", Faces: dfc}, "custom", "custom", true},
		{"split is single sided", deck.Printing{Layout: "split", Faces: dfc}, "custom", "", false},
		{"normal", deck.Printing{Layout: "normal", ImageURI: "x"}, "", "", false},
		{"dfc missing back image", deck.Printing{Layout: "transform", Faces: []deck.Face{{ImageURI: "f"}, {}}}, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Back(tt.p, tt.override)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Back() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestIsDualFaced(t *testing.T) {
	for _, l := range []string{"transform", "modal_dfc", "double_faced_token", "reversible_card", "art_series"} {
		if !IsDualFaced(l) {
			t.Errorf("IsDualFaced(%q) = false", l)
		}
	}
	for _, l := range []string{"normal", "split", "flip", "adventure", ""} {
		if IsDualFaced(l) {
			t.Errorf("IsDualFaced(%q) = true", l)
		}
	}
}

func TestItemHelpers(t *testing.T) {
	it := deck.LineItem{
		Printing:        deck.Printing{Layout: "transform", Faces: []deck.Face{{ImageURI: "f"}, {ImageURI: "b"}}},
		CustomBackImage: "cb",
	}
	if got := ItemFront(it); got != "f" {
		t.Errorf("ItemFront() = %q", got)
	}
	if got, _ := ItemBack(it); got != "cb" {
		t.Errorf("ItemBack() = %q", got)
	}
	tok := deck.Token{Printing: deck.Printing{ImageURI: "tok"}}
	if got := TokenImage(tok); got != "tok" {
		t.Errorf("TokenImage() = %q", got)
	}
}
