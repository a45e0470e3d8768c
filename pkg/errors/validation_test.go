package errors

import (
	"strings"
	"testing"
)

func TestValidateDeckName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Mono Red Burn", false},
		{"accents", "Lim-Dûl's Legion", false},

		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too long", strings.Repeat("a", 201), true},
		{"control char", "deck\x01", true},
		{"newline", "deck\nname", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDeckName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDeckName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDeck) {
				t.Errorf("ValidateDeckName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidDeck)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://api.scryfall.com", false},
		{"http://localhost:8080", false},
		{"", true},
		{"ftp://example.com", true},
		{"api.scryfall.com", true},
	}

	for _, tt := range tests {
		if err := ValidateURL(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateImageRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://cards.scryfall.io/normal/front/a/b/ab.jpg", false},
		{"file url", "file:///home/me/art.png", false},
		{"relative path", "art/custom.jpg", false},
		{"asset", "asset:card-back", false},

		{"empty", "", true},
		{"traversal", "../secret.png", true},
		{"data scheme", "ftp://host/x.png", true},
		{"null byte", "art\x00.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateImageRef(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("ValidateImageRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSetCode(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"mh3", false},
		{"MH3", false},
		{"plst", false},
		{"", true},
		{"m", true},
		{"m h3", true},
		{"toolongcode", true},
	}

	for _, tt := range tests {
		if err := ValidateSetCode(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateSetCode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateRemoteImageRef(t *testing.T) {
	hosts := []string{"scryfall.io"}
	tests := []struct {
		name    string
		ref     string
		hosts   []string
		wantErr bool
	}{
		{"any host", "http://127.0.0.1:8080/a.png", nil, false},
		{"allowed host", "https://scryfall.io/a.jpg", hosts, false},
		{"allowed subdomain", "https://cards.scryfall.io/normal/a.jpg", hosts, false},

		{"absolute path", "/etc/private.png", nil, true},
		{"file url", "file:///etc/private.png", nil, true},
		{"relative path", "art/bolt.png", nil, true},
		{"asset", "asset:card-back", nil, true},
		{"other host", "http://169.254.169.254/latest", hosts, true},
		{"suffix without dot", "https://evilscryfall.io/a.jpg", hosts, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRemoteImageRef(tt.ref, tt.hosts)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRemoteImageRef(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRef) {
				t.Errorf("ValidateRemoteImageRef(%q) code = %v, want %v", tt.ref, GetCode(err), ErrCodeInvalidRef)
			}
		})
	}
}
