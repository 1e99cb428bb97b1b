// Package declaration reconciles the commercial invoice of one purchase order
// against its packing lists and builds customs declaration rows and
// GTIP x type summaries.
//
// Everything in this package is a pure in-memory computation. Callers fetch
// the records, call Reconcile once per order and discard the Pool afterwards.
package declaration

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var zeroWidth = runes.Predicate(func(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\u2060', '\uFEFF':
		return true
	}
	return false
})

// NormalizeKey canonicalizes a free-text product identifier: NFKC,
// zero-width and BOM marks removed, whitespace runs collapsed, upper case.
// Punctuation is kept, so "ABC-123" and "ABC123" stay distinct keys.
func NormalizeKey(s string) string {
	s = norm.NFKC.String(s)
	if out, _, err := transform.String(runes.Remove(zeroWidth), s); err == nil {
		s = out
	}
	s = norm.NFKC.String(strings.ToUpper(s))
	return strings.Join(strings.Fields(s), " ")
}

// foldName lowers s and strips diacritics so that "TİP", "Tip" and "tip"
// compare equal, as do "Ağırlık" and "agirlik".
func foldName(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			if r == 'ı' {
				return 'i'
			}
			return r
		}),
		norm.NFC,
	)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}

var numberPattern = regexp.MustCompile(`[-+]?\d[\d.,]*`)

// parseNumber reads the first number in s. Both "2,5" and "2.5" are accepted;
// when both separators appear the last one is the decimal separator.
func parseNumber(s string) (float64, bool) {
	raw := numberPattern.FindString(strings.ReplaceAll(s, " ", ""))
	if raw == "" {
		return 0, false
	}
	raw = strings.TrimRight(raw, ".,")

	lastDot := strings.LastIndex(raw, ".")
	lastComma := strings.LastIndex(raw, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(raw, ",") > 1 {
			return 0, false
		}
		raw = strings.Replace(raw, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
