package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/po-tracker/constants"
	"github.com/joseph-ayodele/po-tracker/internal/common"
)

// HeaderPartNumber is the column read from tabular catalogs.
const HeaderPartNumber = "Part Number"

// Load reads a catalog file. XLSX workbooks are read from their first sheet;
// CSV and TXT files are read as delimited rows. When a "Part Number" header
// is present that column is used, otherwise the first column.
func Load(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	if path == "" {
		return nil, unavailable("no catalog path configured", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, unavailable(fmt.Sprintf("stat %s", path), err)
	}

	var (
		rows [][]string
		err  error
	)
	switch ext := constants.NormalizeExt(filepath.Ext(path)); ext {
	case "xlsx", "xlsm":
		rows, err = readWorkbook(path)
	case "csv":
		rows, err = readDelimited(path, ',')
	case "txt", "tsv":
		rows, err = readDelimited(path, '\t')
	default:
		return nil, unavailable(fmt.Sprintf("unsupported catalog format %q", ext), nil)
	}
	if err != nil {
		return nil, unavailable(fmt.Sprintf("read %s", path), err)
	}

	c := New(partColumn(rows))
	if !c.Loaded() {
		return nil, unavailable(fmt.Sprintf("%s contains no part numbers", path), nil)
	}
	c.source = path

	logger.Info("catalog.loaded",
		"path", path,
		"parts", c.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return c, nil
}

// LoadOrEmpty loads the catalog or, on any failure, logs a single warning and
// returns an empty catalog so part-number resolution runs in pass-through mode.
func LoadOrEmpty(path string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c, err := Load(path, logger)
	if err != nil {
		logger.Warn("catalog unavailable, part numbers will not be validated",
			"path", path,
			"error", err,
		)
		return Empty()
	}
	return c
}

func unavailable(msg string, cause error) error {
	if cause == nil {
		cause = common.ErrCatalogUnavailable
	} else {
		cause = fmt.Errorf("%w: %w", common.ErrCatalogUnavailable, cause)
	}
	return common.NewAppError(common.CodeCatalog, msg, cause)
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readDelimited(path string, comma rune) ([][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()

	r := csv.NewReader(fh)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// partColumn picks the part-number column out of raw rows.
func partColumn(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	col, body := 0, rows
	for i, cell := range rows[0] {
		if isPartHeader(cell) {
			col, body = i, rows[1:]
			break
		}
	}

	out := make([]string, 0, len(body))
	for _, row := range body {
		if col < len(row) {
			out = append(out, row[col])
		}
	}
	return out
}

func isPartHeader(cell string) bool {
	h := strings.ToLower(strings.TrimSpace(cell))
	h = strings.NewReplacer("_", " ", "-", " ").Replace(h)
	return h == strings.ToLower(HeaderPartNumber) || h == "partnumber" || h == "part no" || h == "part #"
}
