package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// \s is ASCII-only in RE2; \p{Z} adds NBSP, thin space and friends.
	whitespaceRegex = regexp.MustCompile(`[\s\p{Z}]+`)
	tagRegex        = regexp.MustCompile(`<[^>]+>`)
)

// VisibleText canonicalizes text read from a page: NFC, whitespace runs
// collapsed to one space, ends trimmed. Applying it twice is a no-op.
func VisibleText(s string) string {
	s = norm.NFC.String(s)
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// FoldText lowercases and strips diacritics so "ZUSTIMMEN" matches "Zustimmen"
// and "Alle akzeptieren" matches "alle Akzeptieren".
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(VisibleText(result))
}

// HTMLToText decodes entities, drops tags and normalizes whitespace.
// Entities are decoded first so escaped markup ("&lt;p&gt;") is stripped too.
func HTMLToText(s string) string {
	return VisibleText(tagRegex.ReplaceAllString(html.UnescapeString(s), " "))
}
