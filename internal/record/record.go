// Package record assembles the extractor outputs into the purchase-order
// record handed to storage, export and the gRPC service.
package record

import (
	"github.com/joseph-ayodele/po-tracker/internal/partnumber"
	"github.com/joseph-ayodele/po-tracker/internal/qclause"
)

// Record is one purchase order. The JSON names are a stable contract; absent
// fields are serialized as null, never omitted.
type Record struct {
	ProductionOrder             *string            `json:"production_order"`
	Revision                    *string            `json:"revision"`
	PartNumber                  *string            `json:"part_number"`
	PartNumberValidation        *partnumber.Result `json:"part_number_validation"`
	Quantity                    *int               `json:"quantity"`
	DockDate                    *string            `json:"dock_date"`
	PaymentTerms                *string            `json:"payment_terms"`
	PaymentTermsNonStandardFlag bool               `json:"payment_terms_non_standard_flag"`
	VendorName                  *string            `json:"vendor_name"`
	VendorNonTEKFlag            bool               `json:"vendor_non_tek_flag"`
	BuyerName                   *string            `json:"buyer_name"`
	DPASRatings                 []string           `json:"dpas_ratings"`
	QualityClauses              map[string]string  `json:"quality_clauses"`
	QualityClausesAnalysis      qclause.Analysis   `json:"quality_clauses_analysis"`
	PurchaseOrderNumber         *string            `json:"purchase_order_number"`
	PageCount                   *int               `json:"page_count"`
	ExtractionStrategies        map[string]string  `json:"extraction_strategies"`
}

// Summary returns the handful of attributes worth logging for a record.
func (r *Record) Summary() []any {
	return []any{
		"production_order", deref(r.ProductionOrder),
		"part_number", deref(r.PartNumber),
		"quantity", derefInt(r.Quantity),
		"dock_date", deref(r.DockDate),
		"vendor_name", deref(r.VendorName),
		"q_clauses", r.QualityClausesAnalysis.TotalClauses,
	}
}

func ptr[T any](v T) *T { return &v }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
