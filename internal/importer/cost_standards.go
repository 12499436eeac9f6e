// Package importer reads and writes cost standards as .xlsx workbooks.
package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/validation"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the importer looks for first.
const SheetName = "cost_standards"

// Columns is the header row, in export order.
var Columns = []string{
	"business_category",
	"location_district",
	"cost_type",
	"cost_name",
	"unit",
	"min_price",
	"max_price",
	"avg_price",
}

// RowError reports a bad spreadsheet row. Row is 1-based as shown in Excel.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// ParseCostStandards reads the cost_standards sheet (or the first sheet) of
// an .xlsx workbook. The first row must be a header naming every column in
// Columns, in any order. Blank rows are skipped.
func ParseCostStandards(r io.Reader) ([]model.CostStandard, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("importer: open workbook: %w", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("importer: read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("importer: sheet %q is empty", sheet)
	}

	col, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var out []model.CostStandard
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		s, err := parseRow(row, col)
		if err != nil {
			return nil, &RowError{Row: i + 2, Err: err}
		}
		if err := validation.Struct(s); err != nil {
			return nil, &RowError{Row: i + 2, Err: err}
		}
		out = append(out, s)
	}
	return out, nil
}

func headerIndex(header []string) (map[string]int, error) {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range Columns {
		if _, ok := col[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("importer: header missing columns: %s", strings.Join(missing, ", "))
	}
	return col, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string, col map[string]int) (model.CostStandard, error) {
	s := model.CostStandard{
		BusinessCategory: cell(row, col["business_category"]),
		LocationDistrict: cell(row, col["location_district"]),
		CostType:         cell(row, col["cost_type"]),
		CostName:         cell(row, col["cost_name"]),
		Unit:             model.CostUnit(cell(row, col["unit"])),
	}
	var err error
	if s.MinPrice, err = parsePrice(cell(row, col["min_price"])); err != nil {
		return s, fmt.Errorf("min_price: %w", err)
	}
	if s.MaxPrice, err = parsePrice(cell(row, col["max_price"])); err != nil {
		return s, fmt.Errorf("max_price: %w", err)
	}
	if s.AvgPrice, err = parsePrice(cell(row, col["avg_price"])); err != nil {
		return s, fmt.Errorf("avg_price: %w", err)
	}
	return s, nil
}

// parsePrice accepts thousands separators ("1,500,000").
func parsePrice(v string) (decimal.Decimal, error) {
	v = strings.ReplaceAll(v, ",", "")
	if v == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(v)
}

// WriteCostStandards writes standards as a workbook that ParseCostStandards
// reads back.
func WriteCostStandards(w io.Writer, standards []*model.CostStandard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("importer: rename sheet: %w", err)
	}
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("importer: write header: %w", err)
	}
	for i, s := range standards {
		cellName, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			s.BusinessCategory, s.LocationDistrict, s.CostType, s.CostName, string(s.Unit),
			s.MinPrice.InexactFloat64(), s.MaxPrice.InexactFloat64(), s.AvgPrice.InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetName, cellName, &row); err != nil {
			return fmt.Errorf("importer: write row %d: %w", i+2, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}
