package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/po-tracker/internal/textscan"
)

// PaymentTerms is the extracted terms text with its non-standard flag.
type PaymentTerms struct {
	Terms       string
	NonStandard bool
}

var (
	rePaymentLabel = regexp.MustCompile(`(?i)payment\s+terms?[:\s]*([^\n]+)`)
	reSpaces       = regexp.MustCompile(`\s+`)

	reCompany     = regexp.MustCompile(`([A-Z &,.]{10,50}(?:INC|LLC|CORP|LTD|COMPANY|ENTERPRISES)[A-Z ,.]*)`)
	reConfirmed   = regexp.MustCompile(`(?i)confirmed\s+with\s+([A-Za-z &,.]+)`)
	reAddrLead    = regexp.MustCompile(`^\d+\s+`)
	reVendorLabel = regexp.MustCompile(`(?i)\b(?:vendor|supplier)\s*(?:name)?\s*:\s*(.+)$`)
	reVendorPre   = regexp.MustCompile(`(?i)^(?:to:|from:|ship to:|bill to:)\s*`)

	reBuyerLabel = regexp.MustCompile(`(?i)\bbuyer(?:\s*/\s*phone)?\s*[:\-]?\s*(.*)$`)
	reEmailName  = regexp.MustCompile(`([A-Za-z][A-Za-z .]*?)\s*[<(]?[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	reNameLabel  = regexp.MustCompile(`(?i)(?:name|contact|buyer)\s*:\s*([A-Za-z .\-]{5,30})`)
	reTwoCaps    = regexp.MustCompile(`\b[A-Z][a-z]+[ \t]+[A-Z][a-z]+\b`)
	reNameShape  = regexp.MustCompile(`^[A-Za-z][A-Za-z .'\-]*$`)
)

func collapse(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// startsStandardTerms matches a line that may begin the standard phrase.
func startsStandardTerms(lower string) bool {
	return strings.Contains(lower, "30") && strings.Contains(lower, "days") && strings.Contains(lower, "from")
}

func (e *Extractor) paymentTermsStrategies() []Strategy[PaymentTerms] {
	standard := e.cfg.StandardPaymentTerms
	phrase := strings.ToLower(collapse(standard))

	return []Strategy[PaymentTerms]{
		{
			// the phrase is often broken over up to four OCR lines
			Name:       "standard_phrase",
			Confidence: 0.95,
			Find: func(t *textscan.Text) (PaymentTerms, bool) {
				for i := 0; i < t.Len(); i++ {
					if !startsStandardTerms(strings.ToLower(t.Line(i))) {
						continue
					}
					joined := []string{t.Line(i)}
					for j := i + 1; j < t.Len() && len(joined) < 4; j++ {
						if ln := strings.TrimSpace(t.Line(j)); ln != "" {
							joined = append(joined, ln)
						}
					}
					if strings.Contains(strings.ToLower(collapse(strings.Join(joined, " "))), phrase) {
						return PaymentTerms{Terms: standard}, true
					}
				}
				return PaymentTerms{}, false
			},
		},
		{
			Name:       "payment_terms_label",
			Confidence: 0.85,
			Find: func(t *textscan.Text) (PaymentTerms, bool) {
				m := rePaymentLabel.FindStringSubmatch(t.Raw())
				if m == nil {
					return PaymentTerms{}, false
				}
				terms := collapse(m[1])
				if terms == "" {
					return PaymentTerms{}, false
				}
				return PaymentTerms{
					Terms:       terms,
					NonStandard: !strings.Contains(strings.ToLower(terms), phrase),
				}, true
			},
		},
		{
			Name:       "payment_terms_line",
			Confidence: 0.6,
			Find: func(t *textscan.Text) (PaymentTerms, bool) {
				for _, ln := range t.Lines() {
					lower := strings.ToLower(ln)
					if strings.Contains(lower, "payment") && strings.Contains(lower, "terms") {
						return PaymentTerms{Terms: collapse(ln), NonStandard: true}, true
					}
				}
				return PaymentTerms{}, false
			},
		},
		{
			Name:       "partial_standard_phrase",
			Confidence: 0.5,
			Find: func(t *textscan.Text) (PaymentTerms, bool) {
				for _, ln := range t.Lines() {
					if startsStandardTerms(strings.ToLower(ln)) {
						return PaymentTerms{Terms: standard}, true
					}
				}
				return PaymentTerms{}, false
			},
		},
	}
}

// PaymentTerms extracts the payment terms. ok=false means no terms were
// found; callers flag that case as non-standard.
func (e *Extractor) PaymentTerms(t *textscan.Text) (Candidate[PaymentTerms], bool) {
	c, ok := Cascade(t, e.paymentTerms)
	e.logField("payment_terms", c.Strategy, ok)
	return c, ok
}

func (e *Extractor) vendorStrategies() []Strategy[string] {
	return []Strategy[string]{
		{
			Name:       "known_vendor",
			Confidence: 1.0,
			Find: func(t *textscan.Text) (string, bool) {
				up := strings.ToUpper(t.Raw())
				for _, kv := range e.cfg.KnownVendors {
					if strings.Contains(up, strings.ToUpper(kv.Match)) {
						return kv.Name, true
					}
				}
				return "", false
			},
		},
		{
			Name:       "vendor_label",
			Confidence: 0.7,
			Find: func(t *textscan.Text) (string, bool) {
				for i := 0; i < t.Len(); i++ {
					if !containsAny(t.Upper(i), "VENDOR", "SUPPLIER", "FROM:") {
						continue
					}
					if m := reVendorLabel.FindStringSubmatch(t.Line(i)); m != nil {
						if name, ok := vendorLine(m[1]); ok {
							return name, true
						}
					}
					for j := i + 1; j <= i+3 && j < t.Len(); j++ {
						if name, ok := vendorLine(t.Line(j)); ok {
							return name, true
						}
					}
				}
				return "", false
			},
		},
		{
			Name:       "company_suffix",
			Confidence: 0.6,
			Find: func(t *textscan.Text) (string, bool) {
				for _, ln := range t.Lines() {
					for _, m := range reCompany.FindAllString(ln, -1) {
						m = strings.TrimSpace(m)
						if len(m) > 10 && !containsAny(strings.ToLower(m), "purchase", "order", "agreement", "terms") {
							return m, true
						}
					}
				}
				return "", false
			},
		},
		{
			Name:       "confirmed_with",
			Confidence: 0.5,
			Find: func(t *textscan.Text) (string, bool) {
				for _, ln := range t.Lines() {
					if m := reConfirmed.FindStringSubmatch(ln); m != nil {
						if name := strings.Trim(strings.TrimSpace(m[1]), ",."); name != "" {
							return name, true
						}
					}
				}
				return "", false
			},
		},
	}
}

func vendorLine(line string) (string, bool) {
	ln := strings.TrimSpace(line)
	if len(ln) <= 5 || reAddrLead.MatchString(ln) || isDigits(ln) {
		return "", false
	}
	if containsAny(strings.ToLower(ln), "address", "phone", "fax", "number", "email") {
		return "", false
	}
	ln = strings.TrimSpace(reVendorPre.ReplaceAllString(ln, ""))
	return ln, ln != ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// canonicalVendor maps any known vendor substring onto its canonical name.
func (e *Extractor) canonicalVendor(name string) string {
	up := strings.ToUpper(name)
	for _, kv := range e.cfg.KnownVendors {
		if strings.Contains(up, strings.ToUpper(kv.Match)) {
			return kv.Name
		}
	}
	return name
}

// NonBaselineVendor reports whether name is anything other than the baseline
// vendor. An absent vendor counts as non-baseline.
func (e *Extractor) NonBaselineVendor(name string, found bool) bool {
	if !found || e.cfg.BaselineVendor == "" {
		return true
	}
	return !strings.Contains(strings.ToUpper(name), strings.ToUpper(e.cfg.BaselineVendor))
}

// Vendor extracts the vendor name, normalized to the canonical spelling when
// a known vendor is recognized.
func (e *Extractor) Vendor(t *textscan.Text) (Candidate[string], bool) {
	c, ok := Cascade(t, e.vendor)
	if ok {
		c.Value = e.canonicalVendor(c.Value)
	}
	e.logField("vendor_name", c.Strategy, ok)
	return c, ok
}

func (e *Extractor) denied(name string) bool {
	lower := strings.ToLower(name)
	for _, w := range e.cfg.BuyerDenylist {
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// personName accepts letters-only strings of at least two words.
func (e *Extractor) personName(s string) (string, bool) {
	s = collapse(strings.Trim(s, " .-,"))
	if !reNameShape.MatchString(s) || len(strings.Fields(s)) < 2 || e.denied(s) {
		return "", false
	}
	return s, true
}

func (e *Extractor) buyerStrategies() []Strategy[string] {
	return []Strategy[string]{
		{
			Name:       "known_buyer",
			Confidence: 1.0,
			Find: func(t *textscan.Text) (string, bool) {
				lower := strings.ToLower(t.Raw())
				for _, b := range e.cfg.KnownBuyers {
					if strings.Contains(lower, strings.ToLower(b)) {
						return b, true
					}
				}
				return "", false
			},
		},
		{
			// "Buyer/phone: Jane Doe / 555-0100", or the name on a following line
			Name:       "buyer_label",
			Confidence: 0.8,
			Find: func(t *textscan.Text) (string, bool) {
				for i := 0; i < t.Len(); i++ {
					m := reBuyerLabel.FindStringSubmatch(t.Line(i))
					if m == nil {
						continue
					}
					rest, _, _ := strings.Cut(m[1], "/")
					if name, ok := e.personName(rest); ok {
						return name, true
					}
					for j := i + 1; j <= i+3 && j < t.Len(); j++ {
						next := strings.TrimSpace(t.Line(j))
						if len(next) <= 2 || containsAny(strings.ToLower(next), "fax", "email", "phone", "number") {
							continue
						}
						next, _, _ = strings.Cut(next, "/")
						if name, ok := e.personName(next); ok {
							return name, true
						}
					}
				}
				return "", false
			},
		},
		{
			Name:       "email_adjacent",
			Confidence: 0.6,
			Find: func(t *textscan.Text) (string, bool) {
				for _, ln := range t.Lines() {
					for _, m := range reEmailName.FindAllStringSubmatch(ln, -1) {
						name := strings.TrimSpace(m[1])
						if len(name) <= 5 {
							continue
						}
						if n, ok := e.personName(name); ok {
							return n, true
						}
					}
				}
				return "", false
			},
		},
		{
			Name:       "name_label",
			Confidence: 0.5,
			Find: func(t *textscan.Text) (string, bool) {
				for _, ln := range t.Lines() {
					if m := reNameLabel.FindStringSubmatch(ln); m != nil {
						if name := collapse(m[1]); name != "" && !e.denied(name) {
							return name, true
						}
					}
				}
				return "", false
			},
		},
		{
			Name:       "frequent_name",
			Confidence: 0.3,
			Find: func(t *textscan.Text) (string, bool) {
				counts := map[string]int{}
				var order []string
				for _, ln := range t.Lines() {
					for _, m := range reTwoCaps.FindAllString(ln, -1) {
						m = collapse(m)
						if e.denied(m) {
							continue
						}
						if counts[m] == 0 {
							order = append(order, m)
						}
						counts[m]++
					}
				}
				best := ""
				for _, name := range order {
					if counts[name] > counts[best] {
						best = name
					}
				}
				return best, best != ""
			},
		},
	}
}

// Buyer extracts the buyer's name.
func (e *Extractor) Buyer(t *textscan.Text) (Candidate[string], bool) {
	c, ok := Cascade(t, e.buyer)
	e.logField("buyer_name", c.Strategy, ok)
	return c, ok
}
