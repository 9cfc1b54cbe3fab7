// Package normalize converts scraped Nepali market text into canonical forms.
package normalize

import "strings"

var devanagariDigits = map[rune]rune{
	'०': '0',
	'१': '1',
	'२': '2',
	'३': '3',
	'४': '4',
	'५': '5',
	'६': '6',
	'७': '7',
	'८': '8',
	'९': '9',
}

// Numeral converts Devanagari digit glyphs to ASCII and strips thousands
// separators and the रू currency marker. Already-canonical input passes
// through unchanged, so the function is idempotent. It never fails; callers
// decide whether the result parses as a number.
func Numeral(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if d, ok := devanagariDigits[r]; ok {
			b.WriteRune(d)
			continue
		}
		if r == ',' {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.ReplaceAll(b.String(), "रू", "")
	return strings.TrimSpace(out)
}

// Clean collapses all whitespace runs, including newlines and control
// artifacts left by page rendering, into single spaces and trims the ends.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
