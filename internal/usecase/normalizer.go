package usecase

import (
	"strings"
	"unicode"

	"github.com/spf13/cast"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented letters and drops the combining marks (é -> e)
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalizer turns arbitrary text into a canonical brand key.
// The result only contains a-z, 0-9 and single spaces, with no leading or trailing space.
type Normalizer struct {
	foldDiacritics bool
}

// NewNormalizer creates a normalizer. With foldDiacritics set, accented letters are
// reduced to their base letter instead of being dropped.
func NewNormalizer(foldDiacritics bool) *Normalizer {
	return &Normalizer{foldDiacritics: foldDiacritics}
}

// Normalize returns the canonical form of text
func (n *Normalizer) Normalize(text string) string {
	if n != nil && n.foldDiacritics {
		if folded, _, err := transform.String(stripMarks, text); err == nil {
			text = folded
		}
	}
	return Normalize(text)
}

// NormalizeValue coerces v to text before normalizing it. nil yields "".
func (n *Normalizer) NormalizeValue(v any) string {
	return n.Normalize(cast.ToString(v))
}

// Normalize lower-cases text, drops everything outside [a-z0-9] and whitespace,
// collapses whitespace runs to a single space and trims the ends.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range strings.ToLower(text) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}

	return b.String()
}
