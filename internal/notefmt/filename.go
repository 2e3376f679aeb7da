package notefmt

import (
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultExtension is the extension given to every output document
const DefaultExtension = ".md"

var (
	// Keep Takeout appends the export time to each note name
	timestampPattern = regexp.MustCompile(`-\d{4}-\d{2}-\d{2}T\d{2}_\d{2}_\d{2}Z`)
	disallowedChars  = regexp.MustCompile(`[\\/*"<>:|?]`)
)

// TargetName maps a source file name to the flat output name: embedded
// export timestamps are removed, the extension is replaced by ext and
// characters that vaults refuse in names become underscores.
//
// Distinct sources may map to the same name; callers decide who wins.
func TargetName(source, ext string) string {
	name := disallowedChars.ReplaceAllString(filepath.Base(source), "_")

	// a removal can splice a new timestamp together
	for timestampPattern.MatchString(name) {
		name = timestampPattern.ReplaceAllString(name, "")
	}

	name = strings.TrimSuffix(name, filepath.Ext(name))
	if ext == "" {
		ext = DefaultExtension
	}
	return name + ext
}
