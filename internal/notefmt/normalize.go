// Package notefmt turns raw notes into the files written by the organizer:
// typographic cleanup, target filenames and frontmatter documents.
package notefmt

import "strings"

var typographic = strings.NewReplacer(
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2018", "'",
	"\u2019", "'",
	"\u2013", "-", // en dash
	"\u2014", "-", // em dash
)

// Normalize replaces curly quotes and en/em dashes with their ASCII forms.
// Output never contains a replaced rune, so Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	return typographic.Replace(text)
}
