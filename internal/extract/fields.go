package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/po-tracker/internal/textscan"
)

var (
	reVendorOrder  = regexp.MustCompile(`\b12\d{7}\b`)
	reGenericOrder = regexp.MustCompile(`\b[1-9]\d{8}\b`)
	reLabeledOrder = []*regexp.Regexp{
		regexp.MustCompile(`(?i)production\s+order\s*(?:no\.?|number|#)?[:\s#]*(\d{8,10})\b`),
		regexp.MustCompile(`(?i)\bPO\s*(?:no\.?|#)?[:\s#]+(\d{8,10})\b`),
		regexp.MustCompile(`(?i)\bWO\s*(?:no\.?|#)?[:\s#]+(\d{8,10})\b`),
	}

	reRevToken = regexp.MustCompile(`(?i)\bREV(\.?[\s:]*)([A-Z0-9]+)`)
	reRevLabel = regexp.MustCompile(`(?i)\bREVISION\s*(?:LEVEL)?([\s:.#]+)([A-Z0-9]+)`)

	reDPAS   = regexp.MustCompile(`D[OX][AC]\d+`)
	reQCode  = regexp.MustCompile(`Q\d+`)
	reQStart = regexp.MustCompile(`^Q\d+`)

	rePages = []*regexp.Regexp{
		regexp.MustCompile(`(?i)page\s+\d+\s+of\s+(\d+)`),
		regexp.MustCompile(`(?i)page\s+[l1!itI]?\s*of\s*(\d+)`),
		regexp.MustCompile(`(?i)page\s+\S+\s+of\s+(\d+)`),
		regexp.MustCompile(`\b[l1!itI]\s*of\s*(\d+)\b`),
	}
)

// repeatedDigit reports whether s is one digit repeated, an OCR artifact.
func repeatedDigit(s string) bool {
	if len(s) < 2 {
		return false
	}
	return strings.Count(s, s[:1]) == len(s)
}

func firstValidOrder(matches []string) (string, bool) {
	for _, m := range matches {
		if !repeatedDigit(m) {
			return m, true
		}
	}
	return "", false
}

func findAllIn(re *regexp.Regexp) func(t *textscan.Text) (string, bool) {
	return func(t *textscan.Text) (string, bool) {
		return firstValidOrder(re.FindAllString(t.Raw(), -1))
	}
}

func submatchesOf(re *regexp.Regexp, s string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		out = append(out, m[1])
	}
	return out
}

func (e *Extractor) productionOrderStrategies() []Strategy[string] {
	strategies := []Strategy[string]{
		{Name: "vendor_pattern", Confidence: 0.95, Find: findAllIn(reVendorOrder)},
		{Name: "nine_digit", Confidence: 0.8, Find: findAllIn(reGenericOrder)},
	}
	names := []string{"production_order_label", "po_label", "wo_label"}
	for i, re := range reLabeledOrder {
		re := re
		strategies = append(strategies, Strategy[string]{
			Name:       names[i],
			Confidence: 0.7,
			Find: func(t *textscan.Text) (string, bool) {
				return firstValidOrder(submatchesOf(re, t.Raw()))
			},
		})
	}
	return strategies
}

// ProductionOrder finds the production (work) order number.
func (e *Extractor) ProductionOrder(t *textscan.Text) (Candidate[string], bool) {
	c, ok := Cascade(t, e.productionOrder)
	e.logField("production_order", c.Strategy, ok)
	return c, ok
}

// maxRevisionLen is the longest revision kept; longer reads are trimmed.
const maxRevisionLen = 2

// revisionValue trims a revision match. A token glued to the label with
// no separator and longer than maxRevisionLen is the rest of a word such as
// REVIEW or REVISION, not a revision.
func revisionValue(sep, tok string) (string, bool) {
	if sep == "" && len(tok) > maxRevisionLen {
		return "", false
	}
	return strings.ToUpper(tok[:min(len(tok), maxRevisionLen)]), true
}

func revisionStrategies() []Strategy[string] {
	perLine := func(re *regexp.Regexp) func(t *textscan.Text) (string, bool) {
		return func(t *textscan.Text) (string, bool) {
			for _, ln := range t.Lines() {
				for _, m := range re.FindAllStringSubmatch(ln, -1) {
					if v, ok := revisionValue(m[1], m[2]); ok {
						return v, true
					}
				}
			}
			return "", false
		}
	}
	return []Strategy[string]{
		{Name: "rev_token", Confidence: 0.9, Find: perLine(reRevToken)},
		{Name: "revision_label", Confidence: 0.8, Find: perLine(reRevLabel)},
	}
}

// Revision finds the revision following "REV", trimmed to two characters.
func (e *Extractor) Revision(t *textscan.Text) (Candidate[string], bool) {
	c, ok := Cascade(t, e.revision)
	e.logField("revision", c.Strategy, ok)
	return c, ok
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// DPASRatings returns the distinct DPAS rating codes in order of appearance.
// The "DPAS ... RATING" block is searched first, then the whole document.
func (e *Extractor) DPASRatings(t *textscan.Text) (Candidate[[]string], bool) {
	for i := 0; i < t.Len(); i++ {
		up := t.Upper(i)
		if !strings.Contains(up, "DPAS") || !strings.Contains(up, "RATING") {
			continue
		}
		block := strings.Join([]string{up, t.Upper(i + 1), t.Upper(i + 2)}, " ")
		if found := dedupe(reDPAS.FindAllString(block, -1)); len(found) > 0 {
			e.logField("dpas_ratings", "dpas_block", true)
			return Candidate[[]string]{Value: found, Strategy: "dpas_block", Confidence: 0.95}, true
		}
		break
	}
	found := dedupe(reDPAS.FindAllString(strings.ToUpper(t.Raw()), -1))
	if len(found) == 0 {
		e.logField("dpas_ratings", "", false)
		return Candidate[[]string]{}, false
	}
	e.logField("dpas_ratings", "document_scan", true)
	return Candidate[[]string]{Value: found, Strategy: "document_scan", Confidence: 0.8}, true
}

// QualityClauseCodes returns the distinct Q-clause codes in order of first
// appearance.
func (e *Extractor) QualityClauseCodes(t *textscan.Text) []string {
	return dedupe(reQCode.FindAllString(strings.ToUpper(t.Raw()), -1))
}

// QualityClauses maps each detected code to its description: the rule table
// text for known codes, otherwise the text following the code on its line
// plus up to two short continuation lines. Codes are returned in order.
func (e *Extractor) QualityClauses(t *textscan.Text) ([]string, map[string]string) {
	codes := e.QualityClauseCodes(t)
	if len(codes) == 0 {
		return nil, nil
	}
	desc := make(map[string]string, len(codes))
	for _, code := range codes {
		if d, ok := e.rules.Description(code); ok {
			desc[code] = d
			continue
		}
		desc[code] = contextDescription(t, code)
	}
	e.logger.Debug("quality clauses found", "count", len(codes))
	return codes, desc
}

func contextDescription(t *textscan.Text, code string) string {
	reCode := regexp.MustCompile(regexp.QuoteMeta(code) + `(?:\D|$)`)
	for i := 0; i < t.Len(); i++ {
		up := t.Upper(i)
		loc := reCode.FindStringIndex(up)
		if loc == nil {
			continue
		}
		var parts []string
		// the match may have consumed one separator character
		after := strings.TrimSpace(t.Line(i)[min(loc[0]+len(code), len(t.Line(i))):])
		after = strings.TrimSpace(strings.TrimLeft(after, ":-.)"))
		if after != "" {
			parts = append(parts, after)
		}
		for j := i + 1; j < i+3 && j < t.Len(); j++ {
			next := strings.TrimSpace(t.Line(j))
			if next == "" || reQStart.MatchString(strings.ToUpper(next)) || len(next) >= 60 {
				break
			}
			parts = append(parts, next)
		}
		return strings.Join(parts, " ")
	}
	return ""
}

func purchaseOrderPattern(prefix string) *regexp.Regexp {
	if prefix == "" || len(prefix) >= 10 {
		return nil
	}
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(prefix) + `\d{` + strconv.Itoa(10-len(prefix)) + `}\b`)
}

// PurchaseOrderNumber finds the ten-digit purchase order number carrying the
// configured prefix.
func (e *Extractor) PurchaseOrderNumber(t *textscan.Text) (Candidate[string], bool) {
	if e.rePurchaseOrder == nil {
		return Candidate[string]{}, false
	}
	m := e.rePurchaseOrder.FindString(t.Raw())
	e.logField("purchase_order_number", "prefix_pattern", m != "")
	if m == "" {
		return Candidate[string]{}, false
	}
	return Candidate[string]{Value: m, Strategy: "prefix_pattern", Confidence: 0.9}, true
}

// PageCount reads "Page X of Y", tolerating OCR damage to X.
func (e *Extractor) PageCount(t *textscan.Text) (Candidate[int], bool) {
	for i, re := range rePages {
		for _, m := range re.FindAllStringSubmatch(t.Raw(), -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 || n > e.cfg.MaxPageCount {
				continue
			}
			name := "page_of"
			if i > 0 {
				name = "page_of_ocr"
			}
			e.logField("page_count", name, true)
			return Candidate[int]{Value: n, Strategy: name, Confidence: 1 - 0.1*float64(i)}, true
		}
	}
	e.logField("page_count", "", false)
	return Candidate[int]{}, false
}
