package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/po-tracker/internal/catalog"
	"github.com/joseph-ayodele/po-tracker/internal/common"
	"github.com/joseph-ayodele/po-tracker/internal/partnumber"
	"github.com/joseph-ayodele/po-tracker/internal/textscan"
)

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "negative window", mutate: func(c *Config) { c.PartWindowBefore = -1 }},
		{name: "inverted range", mutate: func(c *Config) { c.Quantity.Global = Range{Min: 5, Max: 2} }},
		{name: "range above ceiling", mutate: func(c *Config) { c.Quantity.ItemAnchored.Max = 3000 }},
		{name: "zero minimum", mutate: func(c *Config) { c.Quantity.Vertical.Min = 0 }},
		{name: "no default operation", mutate: func(c *Config) { c.DefaultOperation = "" }},
		{name: "incomplete vendor", mutate: func(c *Config) { c.KnownVendors = []KnownVendor{{Match: "X"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := New(cfg, nil, nil, nil)
			require.Error(t, err)
			assert.True(t, common.HasCode(err, common.CodeConfig))
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestProductionOrder(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     string
		strategy string
	}{
		{name: "vendor pattern", text: "WORK ORDER 123456789", want: "123456789", strategy: "vendor_pattern"},
		{name: "nine digits", text: "Order 987654321", want: "987654321", strategy: "nine_digit"},
		{name: "repeated digits skipped", text: "111111111 then 987654321", want: "987654321", strategy: "nine_digit"},
		{name: "labeled eight digits", text: "Production Order No: 12345678", want: "12345678", strategy: "production_order_label"},
		{name: "absent", text: "nothing to see"},
	}
	e := newTestExtractor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := e.ProductionOrder(textscan.New(tt.text))
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, c.Value)
			assert.Equal(t, tt.strategy, c.Strategy)
		})
	}
}

func TestRevision(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     string
		strategy string
	}{
		{name: "rev token", text: "PART 157710-30 REV B", want: "B", strategy: "rev_token"},
		{name: "lowercase with dot", text: "Rev. a1", want: "A1", strategy: "rev_token"},
		{name: "revision label", text: "Revision Level: C", want: "C", strategy: "revision_label"},
		{name: "review is not a revision", text: "FOR REVIEW ONLY"},
		{name: "long token trimmed", text: "REV ABC", want: "AB", strategy: "rev_token"},
		{name: "numeric revision trimmed", text: "REV 003", want: "00", strategy: "rev_token"},
		{name: "colon separator", text: "REV: NC1", want: "NC", strategy: "rev_token"},
		{name: "glued short token", text: "REVB", want: "B", strategy: "rev_token"},
		{name: "revised is not a revision", text: "REVISED DRAWING"},
		{name: "label value trimmed", text: "Revision Level: ABC", want: "AB", strategy: "revision_label"},
		{name: "review before revision", text: "REVIEWED BY QA REV C", want: "C", strategy: "rev_token"},
	}
	e := newTestExtractor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := e.Revision(textscan.New(tt.text))
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, c.Value)
			assert.Equal(t, tt.strategy, c.Strategy)
		})
	}
}

func TestDPASRatings(t *testing.T) {
	e := newTestExtractor(t)

	c, ok := e.DPASRatings(textscan.New("DPAS RATING:\nDOA5 DXC9\nDOA5"))
	require.True(t, ok)
	assert.Equal(t, []string{"DOA5", "DXC9"}, c.Value)
	assert.Equal(t, "dpas_block", c.Strategy)

	c, ok = e.DPASRatings(textscan.New("This order is rated doa3 under DPAS"))
	require.True(t, ok)
	assert.Equal(t, []string{"DOA3"}, c.Value)
	assert.Equal(t, "document_scan", c.Strategy)

	_, ok = e.DPASRatings(textscan.New("no ratings"))
	assert.False(t, ok)
}

func TestQualityClauses(t *testing.T) {
	e := newTestExtractor(t)
	text := textscan.New("Q1 ACCEPTED\nQ15 FOO\nQ99 Special handling per drawing\nsee note 4\n\nq1 again")

	codes, desc := e.QualityClauses(text)
	assert.Equal(t, []string{"Q1", "Q15", "Q99"}, codes)

	q1, ok := e.Rules().Description("Q1")
	require.True(t, ok)
	assert.Equal(t, q1, desc["Q1"])
	assert.Equal(t, "Special handling per drawing see note 4", desc["Q99"])

	codes, desc = e.QualityClauses(textscan.New("no clauses"))
	assert.Empty(t, codes)
	assert.Empty(t, desc)
}

func TestPurchaseOrderNumber(t *testing.T) {
	e := newTestExtractor(t)

	c, ok := e.PurchaseOrderNumber(textscan.New("PO 4551234567 dated"))
	require.True(t, ok)
	assert.Equal(t, "4551234567", c.Value)

	_, ok = e.PurchaseOrderNumber(textscan.New("PO 4561234567"))
	assert.False(t, ok)
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     int
		strategy string
	}{
		{name: "plain", text: "Page 1 of 3", want: 3, strategy: "page_of"},
		{name: "ocr damaged page number", text: "Page l of 2", want: 2, strategy: "page_of_ocr"},
		{name: "too many pages", text: "Page 1 of 900"},
		{name: "absent", text: "no pages"},
	}
	e := newTestExtractor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := e.PageCount(textscan.New(tt.text))
			assert.Equal(t, tt.want != 0, ok)
			assert.Equal(t, tt.want, c.Value)
			assert.Equal(t, tt.strategy, c.Strategy)
		})
	}
}

func TestPaymentTerms(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		want        string
		nonStandard bool
		strategy    string
	}{
		{
			name:     "standard phrase split over lines",
			text:     "Payment Terms:\n30 Days from\n\nDate of Invoice",
			want:     "30 Days from Date of Invoice",
			strategy: "standard_phrase",
		},
		{
			name:        "labeled non-standard",
			text:        "Payment Terms: Net 45",
			want:        "Net 45",
			nonStandard: true,
			strategy:    "payment_terms_label",
		},
		{
			name:     "partial standard phrase",
			text:     "30 days from receipt",
			want:     "30 Days from Date of Invoice",
			strategy: "partial_standard_phrase",
		},
		{name: "absent", text: "nothing"},
	}
	e := newTestExtractor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := e.PaymentTerms(textscan.New(tt.text))
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, c.Value.Terms)
			assert.Equal(t, tt.nonStandard, c.Value.NonStandard)
			assert.Equal(t, tt.strategy, c.Strategy)
		})
	}
}

func TestVendor(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		want        string
		strategy    string
		nonBaseline bool
	}{
		{name: "known vendor", text: "Vendor: Tek Enterprises Inc", want: "TEK ENTERPRISES, INC.", strategy: "known_vendor"},
		{name: "vendor label", text: "Vendor: Acme Machining Co", want: "Acme Machining Co", strategy: "vendor_label", nonBaseline: true},
		{
			name:        "label with name on next line",
			text:        "SUPPLIER\n1200 Main Street\nAcme Machining Co",
			want:        "Acme Machining Co",
			strategy:    "vendor_label",
			nonBaseline: true,
		},
		{name: "company suffix", text: "ACME PRECISION PARTS INC", want: "ACME PRECISION PARTS INC", strategy: "company_suffix", nonBaseline: true},
		{name: "absent", text: "nothing", nonBaseline: true},
	}
	e := newTestExtractor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := e.Vendor(textscan.New(tt.text))
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, c.Value)
			assert.Equal(t, tt.strategy, c.Strategy)
			assert.Equal(t, tt.nonBaseline, e.NonBaselineVendor(c.Value, ok))
		})
	}
}

func TestBuyer(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     string
		strategy string
	}{
		{name: "known buyer", text: "buyer: NATALY HERNANDEZ", want: "Nataly Hernandez", strategy: "known_buyer"},
		{name: "buyer label", text: "Buyer/phone: Jane Doe / 555-0100", want: "Jane Doe", strategy: "buyer_label"},
		{name: "buyer on next line", text: "BUYER\nPhone 555-0100\nJane Doe", want: "Jane Doe", strategy: "buyer_label"},
		{name: "email adjacent", text: "Jane Doe <jane.doe@acme.com>", want: "Jane Doe", strategy: "email_adjacent"},
		{name: "most frequent name", text: "Mary Lane\nShip Via\nMary Lane", want: "Mary Lane", strategy: "frequent_name"},
		{name: "denylisted names ignored", text: "Purchase Order\nHollywood Road"},
	}
	e := newTestExtractor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := e.Buyer(textscan.New(tt.text))
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, c.Value)
			assert.Equal(t, tt.strategy, c.Strategy)
		})
	}
}

func TestPartNumber(t *testing.T) {
	cat := catalog.New([]string{"157710-30*OP20", "AB1234-56", "WA904-8"})
	e, err := New(DefaultConfig(), partnumber.NewResolver(cat, nil), nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name       string
		text       string
		order      string
		raw        string
		want       string
		strategy   string
		confidence float64
	}{
		{
			name:       "operation on the same line",
			text:       "PRODUCTION ORDER 123456789\n10   157710-30   OP 20",
			order:      "123456789",
			raw:        "157710-30*OP20",
			want:       "157710-30*OP20",
			strategy:   "part_op_same_line",
			confidence: partnumber.ConfidenceExact,
		},
		{
			name:       "ocr correction near part label",
			text:       "PART NUMBER\nI57710-30\nOP20",
			raw:        "I57710-30*OP20",
			want:       "157710-30*OP20",
			strategy:   "part_op_nearby",
			confidence: partnumber.ConfidenceOCRCorrection,
		},
		{
			name:       "default operation",
			text:       "123456789\nPN ab1234-56",
			order:      "123456789",
			raw:        "AB1234-56*OP20",
			want:       "AB1234-56*OP20",
			strategy:   "part_default_op",
			confidence: partnumber.ConfidenceExact,
		},
		{
			name:       "confusable letter inside the digits",
			text:       "WAQ04-8 OP20\n125157207",
			order:      "125157207",
			raw:        "WAQ04-8*OP20",
			want:       "WA904-8*OP20",
			strategy:   "part_op_same_line",
			confidence: partnumber.ConfidenceOCRCorrection,
		},
		{
			name:       "confusable letter after part label",
			text:       "Part Number: WAQ04-8*OP20",
			raw:        "WAQ04-8*OP20",
			want:       "WA904-8*OP20",
			strategy:   "part_op_same_line",
			confidence: partnumber.ConfidenceOCRCorrection,
		},
		{
			name:       "confusable letter in the dash number",
			text:       "157710-3O OP30\n125157207",
			order:      "125157207",
			raw:        "157710-3O*OP30",
			want:       "157710-30*OP30",
			strategy:   "part_op_same_line",
			confidence: partnumber.ConfidenceOCRCorrection,
		},
		{
			name:       "six digit base",
			text:       "123456789\n157710 OP 30",
			order:      "123456789",
			raw:        "157710*OP30",
			want:       "157710*OP30",
			strategy:   "six_digit_op",
			confidence: partnumber.ConfidencePatternOnly,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := e.PartNumber(textscan.New(tt.text), tt.order)
			require.True(t, ok)
			assert.Equal(t, tt.raw, c.Value.Raw)
			assert.Equal(t, tt.want, c.Value.Resolution.Value)
			assert.Equal(t, tt.strategy, c.Strategy)
			assert.InDelta(t, tt.confidence, c.Confidence, 1e-9)
		})
	}

	_, ok := e.PartNumber(textscan.New("no part here"), "")
	assert.False(t, ok)
}

func TestPartTokens(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{name: "plain", line: "10   157710-30   OP 20", want: []string{"157710-30"}},
		{name: "lowercase prefix", line: "PN ab1234-56", want: []string{"AB1234-56"}},
		{name: "confusable in base", line: "WAQ04-8*OP20", want: []string{"WAQ04-8"}},
		{name: "confusable in dash number", line: "157710-3O OP30", want: []string{"157710-3O"}},
		{name: "phone number", line: "Buyer/phone: Jane Doe / 555-0100"},
		{name: "iso date", line: "Due 2025-09-03"},
		{name: "clause after decimal", line: "FAR 52.204-10 applies"},
		{name: "standard name", line: "ISO-9001 COVID-19"},
		{name: "letter dash number", line: "AS9100-D certified"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, partTokens(tt.line))
		})
	}
}
