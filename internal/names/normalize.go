// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package names turns free-text author names into stable "X. Surname"
// identities and builds the arXiv queries used to look those authors up.
package names

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidName is matched by every *InvalidNameError.
var ErrInvalidName = errors.New("invalid author name")

// InvalidNameError reports a name with no usable tokens.
type InvalidNameError struct {
	Raw string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid author name %q: no tokens after transliteration", e.Raw)
}

func (e *InvalidNameError) Unwrap() error { return ErrInvalidName }

// DefaultOverrides corrects identities that arXiv metadata gets wrong.
// Keys are computed identities, values the corrected form.
var DefaultOverrides = map[string]string{
	"P. Kazienkol": "P. Kazienko",
}

// Transliterate returns an ASCII approximation of s. Diacritics are
// stripped first, unicode spaces become ASCII spaces, and every other
// non-ASCII rune is spelled out by its unidecode transliteration, so
// "Иван Петров" becomes "Ivan Petrov" and "李明" becomes "Li Ming ".
// Runes with no transliteration vanish.
func Transliterate(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r < utf8.RuneSelf:
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		default:
			b.WriteString(unidecode.Unidecode(string(r)))
		}
	}
	return b.String()
}

// Normalizer canonicalizes names and applies an override table afterwards.
type Normalizer struct {
	overrides map[string]string
}

// NewNormalizer returns a Normalizer using DefaultOverrides plus extra.
// Entries in extra win over defaults with the same key.
func NewNormalizer(extra map[string]string) *Normalizer {
	o := make(map[string]string, len(DefaultOverrides)+len(extra))
	for k, v := range DefaultOverrides {
		o[k] = v
	}
	for k, v := range extra {
		o[k] = v
	}
	return &Normalizer{overrides: o}
}

var defaultNormalizer = NewNormalizer(nil)

// Normalize canonicalizes raw with the default override table.
func Normalize(raw string) (string, error) {
	return defaultNormalizer.Normalize(raw)
}

// Normalize returns "X. Surname": the upper-cased first letter of the first
// token, a period and space, and the title-cased last token. Title-casing and
// initial extraction are applied unconditionally, so feeding the result back
// in is not guaranteed to be a no-op.
func (n *Normalizer) Normalize(raw string) (string, error) {
	tokens := strings.Fields(Transliterate(raw))
	if len(tokens) == 0 {
		return "", &InvalidNameError{Raw: raw}
	}

	first, _ := utf8.DecodeRuneInString(tokens[0])
	out := string(unicode.ToUpper(first)) + ". " + titleCase(tokens[len(tokens)-1])

	if fixed, ok := n.overrides[out]; ok {
		return fixed, nil
	}
	return out, nil
}

// titleCase upper-cases every letter that follows a non-letter and
// lower-cases the rest, so "o'brien" becomes "O'Brien".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
