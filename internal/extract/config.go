package extract

import (
	"fmt"

	"github.com/joseph-ayodele/po-tracker/internal/common"
)

// MaxQuantity is the hard ceiling for any extracted quantity.
const MaxQuantity = 2000

// Range is an inclusive integer interval.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether n lies in r.
func (r Range) Contains(n int) bool { return n >= r.Min && n <= r.Max }

func (r Range) String() string { return fmt.Sprintf("[%d, %d]", r.Min, r.Max) }

// KnownVendor maps a substring seen in the text to the vendor's canonical name.
type KnownVendor struct {
	Match string
	Name  string
}

// QuantityConfig holds the bounds of each quantity strategy. Bounds narrow as
// strategies get less anchored.
type QuantityConfig struct {
	ItemAnchored   Range
	RowOriented    Range
	Vertical       Range
	PartAnchored   Range
	Global         Range
	RowLookback    int // tokens before the unit examined by the row strategy
	VerticalWindow int // lines above and below a lone unit token
}

// DateWindow bounds the date-only fallback relative to now, in days.
type DateWindow struct {
	PastDays   int
	FutureDays int
}

// Config centralizes the thresholds, windows and lists the extractors use.
type Config struct {
	PartWindowBefore int
	PartWindowAfter  int
	OpSearchLines    int
	DefaultOperation string

	LineItems []string
	Quantity  QuantityConfig
	DockDate  DateWindow

	KnownVendors   []KnownVendor
	BaselineVendor string // vendor_non_tek_flag is false only for this vendor

	KnownBuyers   []string
	BuyerDenylist []string

	StandardPaymentTerms string
	PurchaseOrderPrefix  string
	MaxPageCount         int
}

// DefaultConfig returns the tuned production defaults.
func DefaultConfig() Config {
	return Config{
		PartWindowBefore: 10,
		PartWindowAfter:  5,
		OpSearchLines:    4,
		DefaultOperation: "OP20",

		LineItems: []string{"10", "20"},
		Quantity: QuantityConfig{
			ItemAnchored:   Range{Min: 1, Max: 2000},
			RowOriented:    Range{Min: 1, Max: 1000},
			Vertical:       Range{Min: 1, Max: 1000},
			PartAnchored:   Range{Min: 1, Max: 100},
			Global:         Range{Min: 1, Max: 50},
			RowLookback:    3,
			VerticalWindow: 6,
		},
		DockDate: DateWindow{PastDays: 7, FutureDays: 365},

		KnownVendors: []KnownVendor{
			{Match: "TEK ENTERPRISES", Name: "TEK ENTERPRISES, INC."},
		},
		BaselineVendor: "TEK ENTERPRISES",

		KnownBuyers: []string{"Nataly Hernandez", "Daniel Rodriguez"},
		BuyerDenylist: []string{
			"street", "avenue", "road", "drive", "california", "hollywood",
			"north", "meggitt", "enterprises", "currency", "buyer",
			"purchase", "order", "page",
		},

		StandardPaymentTerms: "30 Days from Date of Invoice",
		PurchaseOrderPrefix:  "455",
		MaxPageCount:         200,
	}
}

// Validate rejects configurations no extractor can run with. These are
// programmer errors and are reported as CONFIG_ERROR.
func (c Config) Validate() error {
	v := common.NewValidator()
	v.Field("part_window_before", c.PartWindowBefore, common.NonNegative).
		Field("part_window_after", c.PartWindowAfter, common.NonNegative).
		Field("op_search_lines", c.OpSearchLines, common.NonNegative).
		Field("default_operation", c.DefaultOperation, common.Required).
		Field("line_items", c.LineItems, common.Required).
		Field("quantity.row_lookback", c.Quantity.RowLookback, common.Positive).
		Field("quantity.vertical_window", c.Quantity.VerticalWindow, common.NonNegative).
		Field("dock_date.past_days", c.DockDate.PastDays, common.NonNegative).
		Field("dock_date.future_days", c.DockDate.FutureDays, common.NonNegative).
		Field("max_page_count", c.MaxPageCount, common.Positive)

	ranges := []struct {
		name string
		r    Range
	}{
		{"quantity.item_anchored", c.Quantity.ItemAnchored},
		{"quantity.row_oriented", c.Quantity.RowOriented},
		{"quantity.vertical", c.Quantity.Vertical},
		{"quantity.part_anchored", c.Quantity.PartAnchored},
		{"quantity.global", c.Quantity.Global},
	}
	for _, r := range ranges {
		v.Check(r.r.Min >= 1, r.name, r.r, "min must be at least 1")
		v.Check(r.r.Max <= MaxQuantity, r.name, r.r, fmt.Sprintf("max must not exceed %d", MaxQuantity))
		v.Check(r.r.Min <= r.r.Max, r.name, r.r, "min must not exceed max")
	}
	for i, kv := range c.KnownVendors {
		v.Check(kv.Match != "" && kv.Name != "", fmt.Sprintf("known_vendors[%d]", i), kv, "match and name are required")
	}

	if v.HasErrors() {
		return common.NewAppError(common.CodeConfig, v.ErrorMessage(), common.ErrInvalidConfig)
	}
	return nil
}
