package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	// Trailing hide/reveal UI captions left behind by the accessibility
	// widgets; everything from the first match to the end goes.
	revealRe = regexp.MustCompile(`(?is)(hide\s*/\s*reveal|reveal\s+description).*$`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// Normalize cleans extracted text: mojibake repair, reveal-caption
// stripping, whitespace collapse. Normalizing already-normalized text is
// a no-op.
func Normalize(s string) string {
	s = repairEncoding(s)
	s = revealRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// repairEncoding recovers UTF-8 text that was mis-decoded as Windows-1252
// somewhere upstream. Re-encoding such text yields the original UTF-8
// bytes; the repair is kept only when those bytes are themselves valid
// UTF-8, so correctly-decoded text always passes through unchanged.
func repairEncoding(s string) string {
	b, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return s
	}
	if !utf8.Valid(b) {
		return s
	}
	return string(b)
}
