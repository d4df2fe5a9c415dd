package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxNoteLength caps free-text notes on orders and line items.
const MaxNoteLength = 250

var (
	angleBrackets = regexp.MustCompile(`[<>]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	referenceOK   = regexp.MustCompile(`^[A-Z0-9-]{4,20}$`)
	nonReference  = regexp.MustCompile(`[^A-Z0-9-]`)
)

// SanitizeText strips angle brackets and collapses whitespace runs.
func SanitizeText(s string) string {
	s = angleBrackets.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SanitizeNote sanitizes free text and truncates it to MaxNoteLength.
func SanitizeNote(s string) string {
	s = SanitizeText(s)
	if utf8.RuneCountInString(s) > MaxNoteLength {
		runes := []rune(s)
		s = string(runes[:MaxNoteLength])
	}
	return s
}

// NormalizeReference uppercases a payment reference and drops anything
// outside [A-Z0-9-].
func NormalizeReference(s string) string {
	s = strings.ToUpper(SanitizeText(s))
	return nonReference.ReplaceAllString(s, "")
}

// IsValidReference reports whether a normalized payment reference is
// acceptable (4-20 chars of [A-Z0-9-]).
func IsValidReference(s string) bool {
	return referenceOK.MatchString(s)
}
