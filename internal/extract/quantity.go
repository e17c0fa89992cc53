package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/po-tracker/internal/textscan"
)

var (
	reDecimal = regexp.MustCompile(`^\$?(\d{1,3}(?:,\d{3})+|\d+)\.(\d{2})$`)
	reInteger = regexp.MustCompile(`^\d{1,4}$`)
	reDate    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)

	unitTokens = map[string]struct{}{
		"EA": {}, "EACH": {}, "LB": {}, "LBS": {},
		"PC": {}, "PCS": {}, "PIECE": {}, "PIECES": {},
	}
)

const dateLayout = "01/02/2006"

// QuantityDockDate is the outcome of the quantity cascade. Either field may
// be nil independently.
type QuantityDockDate struct {
	Quantity         *int
	DockDate         *string
	QuantityStrategy string
	DockDateStrategy string
}

// rowHit is what a quantity strategy yields: a quantity and, when the same
// row or block carried one, a date.
type rowHit struct {
	qty  int
	date string
}

func isUnit(tok string) bool {
	_, ok := unitTokens[strings.ToUpper(strings.Trim(tok, ".,:;"))]
	return ok
}

func unitIndex(toks []string) int {
	for i, tok := range toks {
		if isUnit(tok) {
			return i
		}
	}
	return -1
}

// parseDecimal splits "1,250.00" into 1250 and "00".
func parseDecimal(tok string) (int, string, bool) {
	m := reDecimal.FindStringSubmatch(strings.TrimRight(tok, ",;"))
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, "", false
	}
	return n, m[2], true
}

func wholeDecimal(tok string) (int, bool) {
	n, cents, ok := parseDecimal(tok)
	return n, ok && cents == "00"
}

func hasDecimal(toks []string) bool {
	for _, tok := range toks {
		if _, _, ok := parseDecimal(tok); ok {
			return true
		}
	}
	return false
}

// regionQuantity picks the quantity out of the tokens of a row region.
// Quantity precedes price and total columns, so the leftmost decimal token
// decides: a whole ".00" value in range is the quantity, anything else means
// the row has no usable quantity. Regions without decimals fall back to the
// rightmost integer in range.
func regionQuantity(toks []string, r Range) (int, bool) {
	for _, tok := range toks {
		n, cents, ok := parseDecimal(tok)
		if !ok {
			continue
		}
		if cents == "00" && r.Contains(n) {
			return n, true
		}
		return 0, false
	}
	for i := len(toks) - 1; i >= 0; i-- {
		if !reInteger.MatchString(toks[i]) {
			continue
		}
		if n, err := strconv.Atoi(toks[i]); err == nil && r.Contains(n) {
			return n, true
		}
	}
	return 0, false
}

// parseDate validates a M/D/YYYY match and returns it zero-padded.
func parseDate(m []string) (string, time.Time, bool) {
	mo, _ := strconv.Atoi(m[1])
	d, _ := strconv.Atoi(m[2])
	y, _ := strconv.Atoi(m[3])
	ts := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if ts.Year() != y || int(ts.Month()) != mo || ts.Day() != d {
		return "", time.Time{}, false
	}
	return ts.Format(dateLayout), ts, true
}

func datesIn(line string) []string {
	var out []string
	for _, m := range reDate.FindAllStringSubmatch(line, -1) {
		if s, _, ok := parseDate(m); ok {
			out = append(out, s)
		}
	}
	return out
}

func firstDate(lines ...string) string {
	for _, ln := range lines {
		if ds := datesIn(ln); len(ds) > 0 {
			return ds[0]
		}
	}
	return ""
}

// daysFrom returns the whole days between today and the MM/DD/YYYY date s.
func daysFrom(today time.Time, s string) int {
	ts, err := time.Parse(dateLayout, s)
	if err != nil {
		return 0
	}
	return int(ts.Sub(today).Hours() / 24)
}

func (e *Extractor) quantityStrategies() []Strategy[rowHit] {
	q := e.cfg.Quantity
	return []Strategy[rowHit]{
		{Name: "item_anchored", Confidence: 0.95, Find: e.itemAnchored},
		{
			Name:       "row_oriented",
			Confidence: 0.85,
			Find: func(t *textscan.Text) (rowHit, bool) {
				for _, ln := range t.Lines() {
					toks := strings.Fields(ln)
					u := unitIndex(toks)
					if u < 0 {
						continue
					}
					date := firstDate(ln)
					if date == "" {
						continue
					}
					if n, ok := regionQuantity(toks[max(0, u-q.RowLookback):u], q.RowOriented); ok {
						return rowHit{qty: n, date: date}, true
					}
				}
				return rowHit{}, false
			},
		},
		{Name: "vertical", Confidence: 0.7, Find: e.vertical},
		{
			Name:       "part_anchored",
			Confidence: 0.5,
			Find: func(t *textscan.Text) (rowHit, bool) {
				today := e.today()
				for i, ln := range t.Lines() {
					if len(partTokens(ln)) == 0 {
						continue
					}
					best := 0
					for _, tok := range strings.Fields(ln) {
						if n, ok := wholeDecimal(tok); ok && q.PartAnchored.Contains(n) && (best == 0 || n < best) {
							best = n
						}
					}
					if best == 0 {
						continue
					}
					hit := rowHit{qty: best}
					for j := i - 1; j <= i+2 && hit.date == ""; j++ {
						for _, d := range datesIn(t.Line(j)) {
							if daysFrom(today, d) >= -e.cfg.DockDate.PastDays {
								hit.date = d
								break
							}
						}
					}
					return hit, true
				}
				return rowHit{}, false
			},
		},
		{
			Name:       "global",
			Confidence: 0.3,
			Find: func(t *textscan.Text) (rowHit, bool) {
				best := 0
				for _, ln := range t.Lines() {
					toks := strings.Fields(ln)
					if unitIndex(toks) < 0 {
						continue
					}
					for _, tok := range toks {
						if n, ok := wholeDecimal(tok); ok && q.Global.Contains(n) && (best == 0 || n < best) {
							best = n
						}
					}
				}
				return rowHit{qty: best}, best != 0
			},
		},
	}
}

// itemAnchored reads the row that starts with a known line-item number.
// The region searched runs from after the item number up to the unit token,
// or up to "NET" or the first dollar amount when there is no unit.
func (e *Extractor) itemAnchored(t *textscan.Text) (rowHit, bool) {
	for _, item := range e.cfg.LineItems {
		for _, ln := range t.Lines() {
			toks := strings.Fields(ln)
			if len(toks) < 2 || toks[0] != item {
				continue
			}
			end := unitIndex(toks)
			if end < 0 {
				if !hasDecimal(toks) {
					continue
				}
				end = len(toks)
				for i := 1; i < len(toks); i++ {
					if strings.EqualFold(toks[i], "NET") || strings.HasPrefix(toks[i], "$") {
						end = i
						break
					}
				}
			}
			if n, ok := regionQuantity(toks[1:end], e.cfg.Quantity.ItemAnchored); ok {
				return rowHit{qty: n, date: firstDate(ln)}, true
			}
		}
	}
	return rowHit{}, false
}

// vertical handles rows OCR split over several lines: the unit token sits on
// its own line and the quantity is the first lone decimal within the window.
func (e *Extractor) vertical(t *textscan.Text) (rowHit, bool) {
	q := e.cfg.Quantity
	for i := 0; i < t.Len(); i++ {
		line := strings.TrimSpace(t.Line(i))
		if !isUnit(line) || len(strings.Fields(line)) != 1 {
			continue
		}
		w, err := t.WindowAt(i, q.VerticalWindow, q.VerticalWindow)
		if err != nil {
			return rowHit{}, false
		}
		for _, ln := range w.Lines {
			n, cents, ok := parseDecimal(strings.TrimSpace(ln))
			if !ok {
				continue
			}
			if cents == "00" && q.Vertical.Contains(n) {
				return rowHit{qty: n, date: firstDate(w.Lines...)}, true
			}
			break
		}
	}
	return rowHit{}, false
}

// inWindow reports whether d lies within the configured dock-date window
// around today.
func (e *Extractor) inWindow(today time.Time, d string) bool {
	days := daysFrom(today, d)
	return days >= -e.cfg.DockDate.PastDays && days <= e.cfg.DockDate.FutureDays
}

// unitRowDate is the first in-window date on a line that also carries a
// unit token.
func (e *Extractor) unitRowDate(t *textscan.Text) string {
	today := e.today()
	for _, ln := range t.Lines() {
		if unitIndex(strings.Fields(ln)) < 0 {
			continue
		}
		for _, d := range datesIn(ln) {
			if e.inWindow(today, d) {
				return d
			}
		}
	}
	return ""
}

// fallbackDate picks the first date in the document within the configured
// window around today; delivery dates lie ahead, order dates behind.
func (e *Extractor) fallbackDate(t *textscan.Text) string {
	today := e.today()
	for _, d := range datesIn(t.Raw()) {
		if e.inWindow(today, d) {
			return d
		}
	}
	return ""
}

// QuantityAndDockDate runs the quantity cascade (item-anchored, row-oriented,
// vertical, part-anchored, global). The dock date comes from the winning
// strategy when it saw one, else from the first unit row carrying a date,
// else from the date-window fallback.
func (e *Extractor) QuantityAndDockDate(t *textscan.Text) QuantityDockDate {
	var out QuantityDockDate

	c, ok := Cascade(t, e.quantity)
	if ok && c.Value.qty >= 1 && c.Value.qty <= MaxQuantity {
		n := c.Value.qty
		out.Quantity = &n
		out.QuantityStrategy = c.Strategy
		if c.Value.date != "" {
			d := c.Value.date
			out.DockDate = &d
			out.DockDateStrategy = c.Strategy
		}
	}
	e.logField("quantity", out.QuantityStrategy, out.Quantity != nil)

	if out.DockDate == nil {
		if d := e.unitRowDate(t); d != "" {
			out.DockDate, out.DockDateStrategy = &d, "unit_row"
		} else if d := e.fallbackDate(t); d != "" {
			out.DockDate, out.DockDateStrategy = &d, "date_window"
		}
	}
	e.logField("dock_date", out.DockDateStrategy, out.DockDate != nil)
	return out
}
