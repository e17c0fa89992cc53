package textscan

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF     = regexp.MustCompile(`\r\n?`)
	reTabs     = regexp.MustCompile(`\t+`)
	reBoxNoise = regexp.MustCompile(`(?m)^ *[_\-=|]{3,} *$`)
)

// Normalize folds OCR output into a form the extractors can scan reliably:
// NFKC (full-width digits, ligatures, non-breaking spaces), unix line endings,
// tabs as spaces, no trailing blanks and ruler lines blanked out.
// Line count is preserved so anchor windows stay aligned with the source.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFKC.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reBoxNoise.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "  ")
	}
	return strings.Join(lines, "\n")
}
