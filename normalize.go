package rowcalc

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Normalizer cleans up expression text typed by a user before evaluation.
type Normalizer struct {
	// DecimalComma maps ',' to '.' so "1,5" reads as 1.5.
	DecimalComma bool
	// GroupSeparators are dropped when they appear inside a numeric literal.
	GroupSeparators string
}

// DefaultNormalizer accepts a decimal comma and '_' digit grouping.
func DefaultNormalizer() Normalizer {
	return Normalizer{DecimalComma: true, GroupSeparators: "_"}
}

// Normalize folds full-width characters to their narrow forms, trims
// surrounding space, and rewrites decimal and grouping separators.
// Underscores inside identifiers are left alone.
func (n Normalizer) Normalize(s string) string {
	s = strings.TrimSpace(width.Fold.String(s))
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	inIdent, inNumber := false, false
	for _, r := range s {
		switch {
		case inIdent && isIdentRune(r):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			inNumber = true
			b.WriteRune(r)
		case inNumber && strings.ContainsRune(n.GroupSeparators, r):
		case r == ',' && n.DecimalComma:
			b.WriteByte('.')
		case r == '.':
			b.WriteRune(r)
		case unicode.IsLetter(r) || r == '_':
			inIdent, inNumber = true, false
			b.WriteRune(r)
		default:
			inIdent, inNumber = false, false
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
