// Package extract holds the heuristic field extractors for OCR'd purchase
// orders. Every extractor is an ordered cascade of strategies; the first
// strategy producing a valid value wins and a miss is reported as ok=false,
// never as an error.
package extract

import (
	"log/slog"
	"regexp"
	"time"

	"github.com/joseph-ayodele/po-tracker/internal/partnumber"
	"github.com/joseph-ayodele/po-tracker/internal/qclause"
)

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock pins "now" for the date-window rules.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// Extractor runs the field cascades over one document at a time. It keeps no
// per-document state and is safe for concurrent use.
type Extractor struct {
	cfg      Config
	resolver *partnumber.Resolver
	rules    *qclause.RuleTable
	logger   *slog.Logger
	now      func() time.Time

	productionOrder []Strategy[string]
	revision        []Strategy[string]
	paymentTerms    []Strategy[PaymentTerms]
	vendor          []Strategy[string]
	buyer           []Strategy[string]
	quantity        []Strategy[rowHit]

	rePurchaseOrder *regexp.Regexp
}

// New validates cfg and builds an Extractor. A nil resolver resolves against
// an empty catalog; nil rules use the built-in clause table.
func New(cfg Config, resolver *partnumber.Resolver, rules *qclause.RuleTable, logger *slog.Logger, opts ...Option) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = partnumber.NewResolver(nil, logger)
	}
	if rules == nil {
		rules = qclause.DefaultRuleTable()
	}
	e := &Extractor{
		cfg:      cfg,
		resolver: resolver,
		rules:    rules,
		logger:   logger,
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}

	e.productionOrder = e.productionOrderStrategies()
	e.revision = revisionStrategies()
	e.paymentTerms = e.paymentTermsStrategies()
	e.vendor = e.vendorStrategies()
	e.buyer = e.buyerStrategies()
	e.quantity = e.quantityStrategies()
	e.rePurchaseOrder = purchaseOrderPattern(cfg.PurchaseOrderPrefix)
	return e, nil
}

// Config returns the configuration the extractor was built with.
func (e *Extractor) Config() Config { return e.cfg }

// Resolver returns the part-number resolver.
func (e *Extractor) Resolver() *partnumber.Resolver { return e.resolver }

// Rules returns the quality clause table used for descriptions.
func (e *Extractor) Rules() *qclause.RuleTable { return e.rules }

func (e *Extractor) today() time.Time {
	n := e.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (e *Extractor) logField(field, strategy string, ok bool) {
	if !ok {
		e.logger.Debug("field not found", "field", field)
		return
	}
	e.logger.Debug("field extracted", "field", field, "strategy", strategy)
}
