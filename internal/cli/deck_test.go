package cli

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/decksmith/pkg/deck"
	"github.com/matzehuels/decksmith/pkg/errors"
)

func sampleCLIDeck() *deck.Deck {
	return deck.New("Tempo", []deck.LineItem{
		{Printing: deck.Printing{ID: "bolt-m10", OracleID: "bolt", Name: "Lightning Bolt", SetCode: "m10", Layout: "normal", ImageURI: "https://img.example/bolt.jpg"}, Quantity: 4},
		{
			Printing: deck.Printing{ID: "delver-isd", OracleID: "delver", Name: "Delver of Secrets", SetCode: "isd", Layout: "transform",
				Faces: []deck.Face{{Name: "Delver of Secrets", ImageURI: "https://img.example/d1.jpg"}, {Name: "Insectile Aberration", ImageURI: "https://img.example/d2.jpg"}}},
			Quantity: 2,
		},
		{
			Printing: deck.Printing{ID: "pyro-emn", OracleID: "pyro", Name: "Young Pyromancer", SetCode: "m14", Layout: "normal", ImageURI: "https://img.example/yp.jpg"},
			Quantity: 1,
			Tokens:   []deck.Token{{Printing: deck.Printing{ID: "elemental", Name: "Elemental", ImageURI: "https://img.example/el.jpg"}}},
		},
	}, nil)
}

func writeDeck(t *testing.T, d *deck.Deck) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tempo.toml")
	if err := deck.Save(path, d); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	return path
}

func TestFindItem(t *testing.T) {
	d := sampleCLIDeck()
	tests := []struct {
		ref     string
		wantID  string
		wantErr errors.Code
	}{
		{"bolt-m10", "bolt-m10", ""},
		{"lightning bolt", "bolt-m10", ""},
		{"DELVER OF SECRETS", "delver-isd", ""},
		{"Counterspell", "", errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		it, err := findItem(d, tt.ref)
		if tt.wantErr != "" {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("findItem(%q) error = %v, want %s", tt.ref, err, tt.wantErr)
			}
			continue
		}
		if err != nil || it.Printing.ID != tt.wantID {
			t.Errorf("findItem(%q) = %v, %v, want %s", tt.ref, it, err, tt.wantID)
		}
	}
}

func TestFindItemAmbiguous(t *testing.T) {
	d := sampleCLIDeck()
	d.Cards = append(d.Cards, deck.LineItem{Printing: deck.Printing{ID: "bolt-2x2", Name: "Lightning Bolt"}, Quantity: 1})
	if _, err := findItem(d, "Lightning Bolt"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("findItem() error = %v, want INVALID_INPUT for an ambiguous name", err)
	}
}

func TestApplyArt(t *testing.T) {
	tests := []struct {
		name    string
		card    string
		back    bool
		token   int
		check   func(*deck.Deck) string
		wantErr bool
	}{
		{name: "front", card: "bolt-m10", check: func(d *deck.Deck) string { return d.Cards[0].CustomImage }},
		{name: "back", card: "delver-isd", back: true, check: func(d *deck.Deck) string { return d.Cards[1].CustomBackImage }},
		{name: "token", card: "pyro-emn", token: 1, check: func(d *deck.Deck) string { return d.Cards[2].Tokens[0].CustomImage }},
		{name: "back of single-faced", card: "bolt-m10", back: true, wantErr: true},
		{name: "token out of range", card: "pyro-emn", token: 2, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sampleCLIDeck()
			it, _ := d.Find(tt.card)
			err := applyArt(d, it, "art/custom.png", tt.back, tt.token)
			if tt.wantErr {
				if err == nil {
					t.Error("applyArt() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("applyArt() error: %v", err)
			}
			if got := tt.check(d); got != "art/custom.png" {
				t.Errorf("override = %q, want %q", got, "art/custom.png")
			}

			it, _ = d.Find(tt.card)
			if err := applyArt(d, it, "", tt.back, tt.token); err != nil {
				t.Fatalf("clear error: %v", err)
			}
			if got := tt.check(d); got != "" {
				t.Errorf("override after clear = %q, want empty", got)
			}
		})
	}
}

func TestDeckEditCommands(t *testing.T) {
	path := writeDeck(t, sampleCLIDeck())
	c := New(io.Discard, LogInfo)

	steps := [][]string{
		{"deck", "qty", path, "Lightning Bolt", "3"},
		{"deck", "qty", path, "delver-isd", "0"},
		{"deck", "rename", path, "  Izzet Tempo "},
		{"deck", "cover", path, "young pyromancer"},
		{"deck", "art", path, "Lightning Bolt", "https://img.example/alt-bolt.jpg"},
	}
	for _, args := range steps {
		if err := execute(t, c, args...); err != nil {
			t.Fatalf("%s error: %v", strings.Join(args, " "), err)
		}
	}

	d, err := deck.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if d.Name != "Izzet Tempo" {
		t.Errorf("Name = %q, want %q", d.Name, "Izzet Tempo")
	}
	if len(d.Cards) != 2 || d.Cards[0].Quantity != 3 {
		t.Errorf("cards = %+v, want bolt x3 and pyromancer", d.Cards)
	}
	if d.CoverCardID != "pyro-emn" {
		t.Errorf("CoverCardID = %q, want pyro-emn", d.CoverCardID)
	}
	if d.Cards[0].CustomImage != "https://img.example/alt-bolt.jpg" {
		t.Errorf("CustomImage = %q", d.Cards[0].CustomImage)
	}
}

func TestDeckArtRejects(t *testing.T) {
	path := writeDeck(t, sampleCLIDeck())
	c := New(io.Discard, LogInfo)

	tests := [][]string{
		{"deck", "art", path, "Lightning Bolt"},
		{"deck", "art", path, "Lightning Bolt", "x.png", "--clear"},
		{"deck", "art", path, "Lightning Bolt", "../secret.png"},
		{"deck", "art", path, "Young Pyromancer", "x.png", "--back", "--token", "1"},
	}
	for _, args := range tests {
		if err := execute(t, c, args...); err == nil {
			t.Errorf("%s: error = nil, want error", strings.Join(args, " "))
		}
	}
}

func TestDeckTable(t *testing.T) {
	d := sampleCLIDeck()
	d.CoverCardID = "delver-isd"
	out := deckTable(d)
	for _, want := range []string{"★ Delver of Secrets", "dual-faced", "1 token", "M10"} {
		if !strings.Contains(out, want) {
			t.Errorf("deck table missing %q:\n%s", want, out)
		}
	}
}

func TestLoadOrCreate(t *testing.T) {
	dir := t.TempDir()
	d, err := loadOrCreate(filepath.Join(dir, "new-deck.json"))
	if err != nil {
		t.Fatalf("loadOrCreate() error: %v", err)
	}
	if d.Name != "new deck" || len(d.Cards) != 0 {
		t.Errorf("loadOrCreate() = %q with %d cards, want empty deck %q", d.Name, len(d.Cards), "new deck")
	}
	if _, err := loadOrCreate(filepath.Join(dir, "deck.yaml")); err == nil {
		t.Error("loadOrCreate() should reject unknown extensions")
	}
}

func TestPrintingTargetAndReplace(t *testing.T) {
	d := sampleCLIDeck()
	pyro, _ := d.Find("pyro-emn")

	got, err := printingTarget(pyro, 0)
	if err != nil || got.ID != "pyro-emn" {
		t.Errorf("printingTarget(0) = %v, %v, want pyro-emn", got.ID, err)
	}
	got, err = printingTarget(pyro, 1)
	if err != nil || got.ID != "elemental" {
		t.Errorf("printingTarget(1) = %v, %v, want elemental", got.ID, err)
	}
	if _, err := printingTarget(pyro, 2); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("printingTarget(2) error = %v, want INVALID_INPUT", err)
	}

	alt := deck.Printing{ID: "elemental-alt", Name: "Elemental", ImageURI: "https://img.example/el2.jpg"}
	if err := replacePrinting(d, "pyro-emn", 1, alt); err != nil {
		t.Fatalf("replacePrinting() error: %v", err)
	}
	pyro, _ = d.Find("pyro-emn")
	if pyro.Tokens[0].Printing.ID != "elemental-alt" {
		t.Errorf("token printing = %q, want elemental-alt", pyro.Tokens[0].Printing.ID)
	}
	if pyro.Printing.ID != "pyro-emn" {
		t.Errorf("owner printing = %q, want pyro-emn", pyro.Printing.ID)
	}
}
