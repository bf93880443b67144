package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/gw-dashboard-api/pkg/tabular"
)

// DefaultSheetName is the sheet used for merged dataset exports.
const DefaultSheetName = "Merged Data"

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct{}

// NewXLSXExporter builds a workbook exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes the header and records to one sheet. Numbers are stored as
// numeric cells, strings as text and nulls are left empty.
func (e *XLSXExporter) Render(data tabular.Dataset, sheet string) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one column")
	}
	if sheet == "" {
		sheet = DefaultSheetName
	}
	book := excelize.NewFile()
	defer book.Close() //nolint:errcheck

	if err := book.SetSheetName(book.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(data.Columns))
	for i, col := range data.Columns {
		header[i] = col
	}
	if err := book.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write xlsx headers: %w", err)
	}

	for r, rec := range data.Records {
		for c, col := range data.Columns {
			v := rec.Get(col)
			if v.IsNull() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("resolve cell: %w", err)
			}
			var value interface{} = v.Text()
			if f, ok := v.Float(); ok {
				value = f
			}
			if err := book.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("write xlsx cell %s: %w", cell, err)
			}
		}
	}

	buf, err := book.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
