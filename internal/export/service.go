package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/po-tracker/internal/record"
	"github.com/joseph-ayodele/po-tracker/internal/repository"
)

// SheetName is the worksheet holding the records.
const SheetName = "Purchase Orders"

// Headers are the workbook columns, in order.
var Headers = []string{
	"Source",
	"Production Order",
	"Revision",
	"Part Number",
	"Part Number Confidence",
	"Quantity",
	"Dock Date",
	"Payment Terms",
	"Non-Standard Terms",
	"Vendor",
	"Non-TEK Vendor",
	"Buyer",
	"DPAS Ratings",
	"Q_Clauses_Accept",
	"Q_Clauses_Review",
	"Q_Clauses_Object",
	"Q_Clauses_Status",
	"Q_Timesheet_Impact",
	"Q_Action_Required",
	"Purchase Order Number",
	"Pages",
}

// Row is one record and the document it came from.
type Row struct {
	Source string
	Record *record.Record
}

// Service produces XLSX bytes for record exports.
type Service struct {
	repo   repository.RecordRepository
	logger *slog.Logger
}

// NewService builds an export service. repo may be nil when only
// RecordsXLSX is used.
func NewService(repo repository.RecordRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportStoredXLSX exports up to limit of the most recent stored records.
func (s *Service) ExportStoredXLSX(ctx context.Context, limit int) ([]byte, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("export: no record store configured")
	}
	stored, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	rows := make([]Row, 0, len(stored))
	for _, st := range stored {
		rows = append(rows, Row{Source: st.Source, Record: st.Record})
	}
	return s.RecordsXLSX(rows)
}

// RecordsXLSX returns a workbook with a header row and one row per record.
func (s *Service) RecordsXLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, ptrTo(values(row))); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 40) // source
	_ = f.SetColWidth(SheetName, "B", "E", 18)
	_ = f.SetColWidth(SheetName, "H", "H", 32) // terms
	_ = f.SetColWidth(SheetName, "J", "J", 28) // vendor
	_ = f.SetColWidth(SheetName, "N", "P", 20) // clauses

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func ptrTo(v []any) *[]any { return &v }

func str(s *string) any {
	if s == nil {
		return ""
	}
	return *s
}

func num(n *int) any {
	if n == nil {
		return ""
	}
	return *n
}

func values(row Row) []any {
	r := row.Record
	if r == nil {
		r = &record.Record{}
	}
	var conf any = ""
	if r.PartNumberValidation != nil {
		conf = r.PartNumberValidation.Confidence
	}
	q := r.QualityClausesAnalysis.TrackingFields()
	return []any{
		row.Source,
		str(r.ProductionOrder),
		str(r.Revision),
		str(r.PartNumber),
		conf,
		num(r.Quantity),
		str(r.DockDate),
		str(r.PaymentTerms),
		r.PaymentTermsNonStandardFlag,
		str(r.VendorName),
		r.VendorNonTEKFlag,
		str(r.BuyerName),
		strings.Join(r.DPASRatings, ", "),
		q["Q_Clauses_Accept"],
		q["Q_Clauses_Review"],
		q["Q_Clauses_Object"],
		q["Q_Clauses_Status"],
		q["Q_Timesheet_Impact"],
		q["Q_Action_Required"],
		str(r.PurchaseOrderNumber),
		num(r.PageCount),
	}
}
