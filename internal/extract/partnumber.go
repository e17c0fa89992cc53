package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/po-tracker/internal/catalog"
	"github.com/joseph-ayodele/po-tracker/internal/partnumber"
	"github.com/joseph-ayodele/po-tracker/internal/textscan"
)

var (
	// alphanumeric base, a dash and a short dash number; plausibility is
	// checked by partShaped so OCR-damaged digits still reach the resolver
	rePartToken = regexp.MustCompile(`(?i)\b([A-Z0-9]{3,10})[-_]([A-Z0-9]{1,3})\b`)
	reSixDigit  = regexp.MustCompile(`\b(\d{6})\b`)
	reOperation = regexp.MustCompile(`(?i)\bOP\s?(\d{1,3})\b`)
)

// PartNumber is the located raw token and its catalog resolution.
type PartNumber struct {
	Raw        string
	Resolution partnumber.Result
}

// minBaseDigits is how many real digits a base needs; the remaining
// digit positions may hold confusable letters.
const (
	minBaseDigits    = 2
	minBaseDigitLike = 3
)

// partShaped reports whether base and dash look like a part number read
// through OCR: enough digits in the base and a dash number made only of
// digits or confusable letters.
func partShaped(base, dash string) bool {
	digits, like := 0, 0
	for _, r := range base {
		if r >= '0' && r <= '9' {
			digits++
		}
		if catalog.DigitLike(r) {
			like++
		}
	}
	if digits < minBaseDigits || like < minBaseDigitLike {
		return false
	}
	for _, r := range dash {
		if !catalog.DigitLike(r) {
			return false
		}
	}
	return true
}

// runJoiner reports whether b ties a token into a longer run such as a
// phone number or a decimal.
func runJoiner(b byte) bool { return b == '-' || b == '/' || b == '.' }

// partTokens returns dash-delimited part tokens on line, skipping pieces of
// longer runs such as phone numbers.
func partTokens(line string) []string {
	var out []string
	for _, loc := range rePartToken.FindAllStringSubmatchIndex(line, -1) {
		if loc[0] > 0 && runJoiner(line[loc[0]-1]) {
			continue
		}
		if loc[1] < len(line) && (line[loc[1]] == '-' || line[loc[1]] == '/') {
			continue
		}
		base := strings.ToUpper(line[loc[2]:loc[3]])
		dash := strings.ToUpper(line[loc[4]:loc[5]])
		if !partShaped(base, dash) {
			continue
		}
		out = append(out, base+"-"+dash)
	}
	return out
}

func operationIn(line string) (string, bool) {
	m := reOperation.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return "OP" + m[1], true
}

// locatePart searches w for a part token and its operation, in order:
// token with an operation on the same line, token with an operation within
// OpSearchLines below, six-digit number followed by an operation, then the
// first token with any operation in the window or the default operation.
func (e *Extractor) locatePart(w textscan.Window) (string, string, bool) {
	for i, ln := range w.Lines {
		toks := partTokens(ln)
		if len(toks) == 0 {
			continue
		}
		if op, ok := operationIn(ln); ok {
			return toks[0] + "*" + op, "part_op_same_line", true
		}
		for j := i + 1; j <= i+e.cfg.OpSearchLines && j < len(w.Lines); j++ {
			if op, ok := operationIn(w.Lines[j]); ok {
				return toks[0] + "*" + op, "part_op_nearby", true
			}
		}
	}

	joined := w.Joined()
	for _, m := range reSixDigit.FindAllStringSubmatchIndex(joined, -1) {
		// a dash after the digits makes it the base of a (damaged) dash token
		if m[1] < len(joined) && (joined[m[1]] == '-' || joined[m[1]] == '_') {
			continue
		}
		if op, ok := operationIn(joined[m[1]:]); ok {
			return joined[m[2]:m[3]] + "*" + op, "six_digit_op", true
		}
	}

	for _, ln := range w.Lines {
		if toks := partTokens(ln); len(toks) > 0 {
			op := e.cfg.DefaultOperation
			if found, ok := operationIn(joined); ok {
				op = found
			}
			return toks[0] + "*" + op, "part_default_op", true
		}
	}
	return "", "", false
}

// PartNumber locates the part number near the production order line (or a
// "Part" label when there is no production order), appends its operation and
// resolves it against the catalog.
func (e *Extractor) PartNumber(t *textscan.Text, productionOrder string) (Candidate[PartNumber], bool) {
	var anchors []textscan.Anchor
	if productionOrder != "" {
		anchors = append(anchors, textscan.Substring(productionOrder))
	}
	anchors = append(anchors, textscan.Label("PART NUMBER"), textscan.Label("PART NO"), textscan.Label("PART #"))

	for _, a := range anchors {
		w, ok, err := t.Around(a, e.cfg.PartWindowBefore, e.cfg.PartWindowAfter)
		if err != nil || !ok {
			continue
		}
		raw, strategy, found := e.locatePart(w)
		if !found {
			continue
		}
		res := e.resolver.Resolve(raw)
		e.logger.Debug("part number resolved",
			"raw", raw,
			"part_number", res.Value,
			"confidence", res.Confidence,
			"rationale", res.Rationale,
		)
		return Candidate[PartNumber]{
			Value:      PartNumber{Raw: raw, Resolution: res},
			Strategy:   strategy,
			Confidence: res.Confidence,
		}, true
	}
	e.logField("part_number", "", false)
	return Candidate[PartNumber]{}, false
}
