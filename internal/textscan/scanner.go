// Package textscan splits OCR text into lines and exposes bounded windows of
// lines around an anchor so extractors can search locally instead of across
// the whole document.
package textscan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/po-tracker/internal/common"
)

// ErrInvalidWindow is returned for negative window sizes.
var ErrInvalidWindow = common.ErrInvalidConfig

// Text is an immutable, line-split view of one document.
type Text struct {
	raw   string
	lines []string
	upper []string
}

// New splits s into lines. CRLF and bare CR are treated as line breaks.
func New(s string) *Text {
	s = reCRLF.ReplaceAllString(s, "\n")
	lines := strings.Split(s, "\n")
	upper := make([]string, len(lines))
	for i, ln := range lines {
		upper[i] = strings.ToUpper(ln)
	}
	return &Text{raw: s, lines: lines, upper: upper}
}

// Raw returns the text with normalized line endings.
func (t *Text) Raw() string { return t.raw }

// Lines returns the document lines. The slice must not be modified.
func (t *Text) Lines() []string { return t.lines }

// Len is the number of lines.
func (t *Text) Len() int { return len(t.lines) }

// Line returns line i, or "" when i is out of range.
func (t *Text) Line(i int) string {
	if i < 0 || i >= len(t.lines) {
		return ""
	}
	return t.lines[i]
}

// Upper returns line i uppercased, or "" when out of range.
func (t *Text) Upper(i int) string {
	if i < 0 || i >= len(t.upper) {
		return ""
	}
	return t.upper[i]
}

// Empty reports whether the text has no non-blank content.
func (t *Text) Empty() bool {
	return strings.TrimSpace(t.raw) == ""
}

// Anchor matches a single line.
type Anchor interface {
	Match(line string) bool
	String() string
}

type substring string

func (s substring) Match(line string) bool { return strings.Contains(line, string(s)) }
func (s substring) String() string         { return fmt.Sprintf("substring(%q)", string(s)) }

type label string

func (l label) Match(line string) bool {
	return strings.Contains(strings.ToUpper(line), string(l))
}
func (l label) String() string { return fmt.Sprintf("label(%q)", string(l)) }

type pattern struct{ re *regexp.Regexp }

func (p pattern) Match(line string) bool { return p.re.MatchString(line) }
func (p pattern) String() string         { return fmt.Sprintf("pattern(%s)", p.re) }

// Substring anchors on a literal, case-sensitive substring.
func Substring(s string) Anchor { return substring(s) }

// Label anchors on a case-insensitive label such as "Payment terms".
func Label(s string) Anchor { return label(strings.ToUpper(s)) }

// Pattern anchors on a regular expression match.
func Pattern(re *regexp.Regexp) Anchor { return pattern{re: re} }

// Locate returns the index of the first line matching a, or -1.
func (t *Text) Locate(a Anchor) int {
	for i, ln := range t.lines {
		if a.Match(ln) {
			return i
		}
	}
	return -1
}

// LocateAll returns the indices of every line matching a.
func (t *Text) LocateAll(a Anchor) []int {
	var out []int
	for i, ln := range t.lines {
		if a.Match(ln) {
			out = append(out, i)
		}
	}
	return out
}

// Window is a contiguous run of lines around an anchor line.
type Window struct {
	Anchor int // index of the anchor line in the document
	Start  int // index of Lines[0] in the document
	Lines  []string
}

// End is the document index one past the last window line.
func (w Window) End() int { return w.Start + len(w.Lines) }

// Joined returns the window lines separated by newlines.
func (w Window) Joined() string { return strings.Join(w.Lines, "\n") }

// Offset converts a document line index to an index into Lines, or -1.
func (w Window) Offset(doc int) int {
	if doc < w.Start || doc >= w.End() {
		return -1
	}
	return doc - w.Start
}

func checkSizes(before, after int) error {
	if before < 0 || after < 0 {
		return common.NewAppError(common.CodeConfig,
			fmt.Sprintf("window sizes must not be negative (before=%d after=%d)", before, after), ErrInvalidWindow)
	}
	return nil
}

// WindowAt returns up to before lines above idx and after lines below it,
// clamped to the document. Negative sizes are a programmer error.
func (t *Text) WindowAt(idx, before, after int) (Window, error) {
	if err := checkSizes(before, after); err != nil {
		return Window{}, err
	}
	if idx < 0 || idx >= len(t.lines) {
		return Window{Anchor: idx}, nil
	}
	start := max(idx-before, 0)
	end := min(idx+after+1, len(t.lines))
	return Window{Anchor: idx, Start: start, Lines: t.lines[start:end]}, nil
}

// Around locates the first line matching a and returns the window around it.
// ok is false when the anchor is not present.
func (t *Text) Around(a Anchor, before, after int) (Window, bool, error) {
	if err := checkSizes(before, after); err != nil {
		return Window{}, false, err
	}
	idx := t.Locate(a)
	if idx < 0 {
		return Window{Anchor: -1}, false, nil
	}
	w, err := t.WindowAt(idx, before, after)
	return w, true, err
}
