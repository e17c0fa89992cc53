package record

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/po-tracker/internal/extract"
	"github.com/joseph-ayodele/po-tracker/internal/qclause"
	"github.com/joseph-ayodele/po-tracker/internal/textscan"
)

// Assembler runs every extractor over one text and builds the Record.
// It holds no per-document state and may be shared between goroutines.
type Assembler struct {
	ext        *extract.Extractor
	classifier *qclause.Classifier
	logger     *slog.Logger
}

// NewAssembler wires an extractor and classifier. A nil classifier uses the
// extractor's rule table so descriptions and buckets come from one source.
func NewAssembler(ext *extract.Extractor, classifier *qclause.Classifier, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if classifier == nil {
		classifier = qclause.NewClassifier(ext.Rules(), logger)
	}
	return &Assembler{ext: ext, classifier: classifier, logger: logger}
}

// Assemble extracts a Record from raw OCR text. It never fails: fields that
// cannot be found are left nil.
func (a *Assembler) Assemble(text string) *Record {
	start := time.Now()
	t := textscan.New(textscan.Normalize(text))
	rec := &Record{ExtractionStrategies: map[string]string{}}
	used := func(field, strategy string) { rec.ExtractionStrategies[field] = strategy }

	if c, ok := a.ext.ProductionOrder(t); ok {
		rec.ProductionOrder = ptr(c.Value)
		used("production_order", c.Strategy)
	}
	if c, ok := a.ext.Revision(t); ok {
		rec.Revision = ptr(c.Value)
		used("revision", c.Strategy)
	}
	if c, ok := a.ext.PartNumber(t, deref(rec.ProductionOrder)); ok {
		res := c.Value.Resolution
		rec.PartNumber = ptr(res.Value)
		rec.PartNumberValidation = &res
		used("part_number", c.Strategy)
	}

	qd := a.ext.QuantityAndDockDate(t)
	rec.Quantity, rec.DockDate = qd.Quantity, qd.DockDate
	if qd.Quantity != nil {
		used("quantity", qd.QuantityStrategy)
	}
	if qd.DockDate != nil {
		used("dock_date", qd.DockDateStrategy)
	}

	rec.PaymentTermsNonStandardFlag = true
	if c, ok := a.ext.PaymentTerms(t); ok {
		rec.PaymentTerms = ptr(c.Value.Terms)
		rec.PaymentTermsNonStandardFlag = c.Value.NonStandard
		used("payment_terms", c.Strategy)
	}

	vendor, vendorOK := a.ext.Vendor(t)
	if vendorOK {
		rec.VendorName = ptr(vendor.Value)
		used("vendor_name", vendor.Strategy)
	}
	rec.VendorNonTEKFlag = a.ext.NonBaselineVendor(vendor.Value, vendorOK)

	if c, ok := a.ext.Buyer(t); ok {
		rec.BuyerName = ptr(c.Value)
		used("buyer_name", c.Strategy)
	}
	if c, ok := a.ext.DPASRatings(t); ok {
		rec.DPASRatings = c.Value
		used("dpas_ratings", c.Strategy)
	}

	codes, desc := a.ext.QualityClauses(t)
	if len(codes) > 0 {
		rec.QualityClauses = desc
	}
	rec.QualityClausesAnalysis = a.classifier.Classify(codes, desc)

	if c, ok := a.ext.PurchaseOrderNumber(t); ok {
		rec.PurchaseOrderNumber = ptr(c.Value)
		used("purchase_order_number", c.Strategy)
	}
	if c, ok := a.ext.PageCount(t); ok {
		rec.PageCount = ptr(c.Value)
		used("page_count", c.Strategy)
	}

	a.logger.Info("record assembled",
		append(rec.Summary(), "elapsed_ms", time.Since(start).Milliseconds())...)
	return rec
}

// AssembleFile acquires the text of path from src and assembles it. When the
// text carries no "Page X of Y" marker the page count of the source is used.
func (a *Assembler) AssembleFile(ctx context.Context, src extract.TextSource, path string) (*Record, extract.SourceText, error) {
	st, err := src.Extract(ctx, path)
	if err != nil {
		a.logger.Error("text acquisition failed", "path", path, "error", err)
		return nil, st, err
	}
	rec := a.Assemble(st.Text)
	if rec.PageCount == nil && st.Pages > 0 {
		rec.PageCount = ptr(st.Pages)
		rec.ExtractionStrategies["page_count"] = "source_pages"
	}
	return rec, st, nil
}
