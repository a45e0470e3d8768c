// Package archive names acquired card images and packs them into a zip file.
//
// File names are built from the card name in snake case plus markers for
// tokens, alternate printings, extra copies and back faces, in that order:
//
//	_token_treasure_version_2.jpg
//	delver_of_secrets_insectile_aberration_copy_3_back.jpg
//
// Distinct acquisition units of one export always get distinct names.
package archive

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Extension is the file extension of every image entry.
const Extension = ".jpg"

var (
	nonWord     = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace  = regexp.MustCompile(`\s+`)
	underscores = regexp.MustCompile(`_+`)
)

// SnakeCase converts s to a lowercase, filesystem-safe identifier. Accents
// are folded to their base letter before other punctuation is stripped.
func SnakeCase(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = nonWord.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "_")
	s = underscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// NameOptions qualifies a file name.
type NameOptions struct {
	Token   bool
	Ordinal int // version ordinal among same-named printings, 0 for none
	Copy    int // 1-based copy number, suffixed only from 2 on
	Back    bool
}

// FileName returns the entry name of one image. Names without any letter or
// digit fall back to "card".
func FileName(name string, opts NameOptions) string {
	var b strings.Builder
	if opts.Token {
		b.WriteString("_token_")
	}
	base := SnakeCase(name)
	if base == "" {
		base = "card"
	}
	b.WriteString(base)
	if opts.Ordinal > 0 {
		b.WriteString("_version_")
		b.WriteString(strconv.Itoa(opts.Ordinal))
	}
	if opts.Copy > 1 {
		b.WriteString("_copy_")
		b.WriteString(strconv.Itoa(opts.Copy))
	}
	if opts.Back {
		b.WriteString("_back")
	}
	b.WriteString(Extension)
	return b.String()
}

// Name returns the archive file name for a deck.
func Name(deckName string) string {
	return SnakeCase(deckName) + "_deck.zip"
}
