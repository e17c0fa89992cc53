package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
	reAmount = regexp.MustCompile(`\b\d{1,3}(,\d{3})*\.\d{2}\b`)
	reHeader = regexp.MustCompile(`purchase\s+order|p\.?o\.?\s*(no|number|#)`)
	reUnit   = regexp.MustCompile(`\b(ea|each|lbs?|pcs?)\b`)
)

// heuristicConfidence scores decoded text by the purchase-order artifacts it
// contains. Each hit adds a fixed amount on top of a small base.
func heuristicConfidence(txt string) float32 {
	l := strings.ToLower(txt)
	score := float32(0.2)
	if reHeader.MatchString(l) {
		score += 0.2
	}
	if reDate.MatchString(l) {
		score += 0.15
	}
	if reAmount.MatchString(l) {
		score += 0.15
	}
	if reUnit.MatchString(l) {
		score += 0.1
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
