package catalog

import "fmt"

// ConfusablePairs are characters OCR commonly reads as each other.
// Each pair applies in both directions.
var ConfusablePairs = [][2]rune{
	{'Q', '9'},
	{'O', '0'},
	{'I', '1'},
	{'S', '5'},
	{'Z', '2'},
	{'G', '6'},
	{'B', '8'},
}

var confusions = func() map[rune][]rune {
	m := make(map[rune][]rune, 2*len(ConfusablePairs))
	for _, p := range ConfusablePairs {
		m[p[0]] = append(m[p[0]], p[1])
		m[p[1]] = append(m[p[1]], p[0])
	}
	return m
}()

// DigitLike reports whether r is a digit or a letter OCR confuses with one.
func DigitLike(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	for _, p := range ConfusablePairs {
		if r == p[0] || r == p[1] {
			return true
		}
	}
	return false
}

// Substitution is one single-character OCR correction of a base.
type Substitution struct {
	Value string
	Pos   int
	From  rune
	To    rune
}

// Label renders the substitution the way rationales show it, e.g. "Q→9".
func (s Substitution) Label() string {
	return fmt.Sprintf("%c→%c", s.From, s.To)
}

// ConfusionCandidates returns every string obtained by replacing exactly one
// confusable character of Key(s). Candidates are ordered by position, then by
// pair table order, so the result is deterministic.
func ConfusionCandidates(s string) []Substitution {
	runes := []rune(Key(s))
	var out []Substitution
	for i, r := range runes {
		for _, to := range confusions[r] {
			cand := make([]rune, len(runes))
			copy(cand, runes)
			cand[i] = to
			out = append(out, Substitution{Value: string(cand), Pos: i, From: r, To: to})
		}
	}
	return out
}

// Correct returns the first confusion candidate of s present in the catalog.
func (c *Catalog) Correct(s string) (Substitution, bool) {
	if !c.Loaded() {
		return Substitution{}, false
	}
	for _, cand := range ConfusionCandidates(s) {
		if c.Contains(cand.Value) {
			return cand, true
		}
	}
	return Substitution{}, false
}
