// Package partnumber repairs and validates OCR-read part numbers against the
// reference catalog.
package partnumber

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/joseph-ayodele/po-tracker/internal/catalog"
)

// Confidence bands.
const (
	ConfidenceExact          = 1.0
	ConfidenceOCRCorrection  = 0.95
	ConfidenceFuzzy          = 0.8
	ConfidencePatternOnly    = 0.7
	ConfidenceNoCatalogShape = 0.5
	ConfidenceUnmatched      = 0.4
	ConfidenceUnresolved     = 0.3

	DefaultFuzzyThreshold      = 0.85
	DefaultSuggestionThreshold = 0.6
)

// Method names the step that produced a Result.
type Method string

const (
	MethodExact      Method = "exact"
	MethodOCR        Method = "ocr_correction"
	MethodFuzzy      Method = "fuzzy"
	MethodPattern    Method = "pattern"
	MethodUnresolved Method = "unresolved"
)

// Result is a corrected part number with its confidence and a short rationale.
type Result struct {
	Value      string  `json:"value"`
	Original   string  `json:"original"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
	Method     Method  `json:"method"`
	Matched    string  `json:"matched,omitempty"`
}

// Suggestion is a ranked catalog candidate offered for manual review.
type Suggestion struct {
	Value  string  `json:"value"`
	Score  float64 `json:"score"`
	Method Method  `json:"method"`
}

var shapes = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z]{2}\d{3,4}-\d+$`),
	regexp.MustCompile(`^\d{6}-\d{1,3}$`),
	regexp.MustCompile(`^[A-Z]+\d+-\d+$`),
	regexp.MustCompile(`^\d{6}$`),
}

// ValidShape reports whether base looks like a part number.
func ValidShape(base string) bool {
	base = strings.ToUpper(strings.TrimSpace(base))
	for _, re := range shapes {
		if re.MatchString(base) {
			return true
		}
	}
	return false
}

// Split separates "BASE*OPn" into its base and the verbatim suffix ("*OPn").
// Inputs without '*' have an empty suffix.
func Split(raw string) (base, suffix string) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '*'); i >= 0 {
		return strings.TrimSpace(raw[:i]), raw[i:]
	}
	return raw, ""
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFuzzyThreshold overrides the minimum similarity for a fuzzy match.
func WithFuzzyThreshold(th float64) Option {
	return func(r *Resolver) { r.fuzzyThreshold = th }
}

// Resolver corrects part numbers against an immutable catalog. It holds no
// mutable state and is safe for concurrent use.
type Resolver struct {
	catalog        *catalog.Catalog
	fuzzyThreshold float64
	logger         *slog.Logger
}

func NewResolver(cat *catalog.Catalog, logger *slog.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if cat == nil {
		cat = catalog.Empty()
	}
	r := &Resolver{catalog: cat, fuzzyThreshold: DefaultFuzzyThreshold, logger: logger}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Catalog returns the catalog the resolver validates against.
func (r *Resolver) Catalog() *catalog.Catalog { return r.catalog }

// Resolve runs exact, OCR-substitution and fuzzy matching in that order. The
// operation suffix of raw is always carried over unchanged. When nothing
// matches, the input is returned as-is with a low confidence.
func (r *Resolver) Resolve(raw string) Result {
	original := strings.TrimSpace(raw)
	base, suffix := Split(original)
	if base == "" {
		return Result{
			Value:      original,
			Original:   original,
			Confidence: ConfidenceUnresolved,
			Rationale:  "Empty input",
			Method:     MethodUnresolved,
		}
	}

	if !r.catalog.Loaded() {
		conf := ConfidenceUnresolved
		if ValidShape(base) {
			conf = ConfidenceNoCatalogShape
		}
		return Result{
			Value:      original,
			Original:   original,
			Confidence: conf,
			Rationale:  "Catalog unavailable",
			Method:     MethodUnresolved,
		}
	}

	if canon, ok := r.catalog.Canonical(base); ok {
		full, _ := r.catalog.Full(base)
		return Result{
			Value:      canon + suffix,
			Original:   original,
			Confidence: ConfidenceExact,
			Rationale:  "Exact match",
			Method:     MethodExact,
			Matched:    full,
		}
	}

	if sub, ok := r.catalog.Correct(base); ok {
		canon, _ := r.catalog.Canonical(sub.Value)
		full, _ := r.catalog.Full(sub.Value)
		r.logger.Debug("part number corrected",
			"original", original,
			"corrected", canon+suffix,
			"substitution", sub.Label(),
		)
		return Result{
			Value:      canon + suffix,
			Original:   original,
			Confidence: ConfidenceOCRCorrection,
			Rationale:  "OCR correction: " + sub.Label(),
			Method:     MethodOCR,
			Matched:    full,
		}
	}

	if key, score, ok := r.bestFuzzy(base); ok {
		canon, _ := r.catalog.Canonical(key)
		full, _ := r.catalog.Full(key)
		return Result{
			Value:      canon + suffix,
			Original:   original,
			Confidence: ConfidenceFuzzy,
			Rationale:  fmt.Sprintf("Fuzzy match (%.2f)", score),
			Method:     MethodFuzzy,
			Matched:    full,
		}
	}

	if ValidShape(base) {
		return Result{
			Value:      original,
			Original:   original,
			Confidence: ConfidencePatternOnly,
			Rationale:  "No match found",
			Method:     MethodPattern,
		}
	}
	return Result{
		Value:      original,
		Original:   original,
		Confidence: ConfidenceUnmatched,
		Rationale:  "No match found",
		Method:     MethodUnresolved,
	}
}

// bestFuzzy returns the most similar catalog key at or above the threshold.
// Keys are visited in sorted order, so equal scores resolve to the smallest key.
func (r *Resolver) bestFuzzy(base string) (string, float64, bool) {
	key := catalog.Key(base)
	best, bestScore := "", 0.0
	for _, k := range r.catalog.Keys() {
		s := levenshtein.Similarity(key, k, nil)
		if s > bestScore {
			best, bestScore = k, s
		}
	}
	if best == "" || bestScore < r.fuzzyThreshold {
		return "", 0, false
	}
	return best, bestScore, true
}

// Suggestions returns up to n catalog candidates for raw, best first: single
// OCR substitutions that hit the catalog, then fuzzy matches scoring at least
// 0.6. The raw suffix is appended to each suggestion.
func (r *Resolver) Suggestions(raw string, n int) []Suggestion {
	base, suffix := Split(raw)
	if base == "" || n <= 0 || !r.catalog.Loaded() {
		return nil
	}
	key := catalog.Key(base)

	seen := make(map[string]int)
	var out []Suggestion
	add := func(k string, score float64, m Method) {
		canon, _ := r.catalog.Canonical(k)
		v := canon + suffix
		if i, ok := seen[v]; ok {
			if score > out[i].Score {
				out[i].Score, out[i].Method = score, m
			}
			return
		}
		seen[v] = len(out)
		out = append(out, Suggestion{Value: v, Score: score, Method: m})
	}

	if r.catalog.Contains(key) {
		add(key, ConfidenceExact, MethodExact)
	}
	for _, cand := range catalog.ConfusionCandidates(key) {
		if r.catalog.Contains(cand.Value) {
			add(cand.Value, ConfidenceOCRCorrection, MethodOCR)
		}
	}
	for _, k := range r.catalog.Keys() {
		if s := levenshtein.Similarity(key, k, nil); s >= DefaultSuggestionThreshold {
			add(k, s, MethodFuzzy)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
