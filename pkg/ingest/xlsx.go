package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/gw-dashboard-api/pkg/tabular"
)

func decodeXLSX(content []byte) (tabular.Dataset, error) {
	book, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return tabular.Dataset{}, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close() //nolint:errcheck

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return tabular.Dataset{}, errors.New("workbook has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return tabular.Dataset{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	raw, err := book.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return tabular.Dataset{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	restorePrecision(rows, raw)

	start := 0
	for start < len(rows) && blankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return tabular.Dataset{}, errors.New("no columns to parse")
	}
	return buildDataset(rows[start], rows[start+1:])
}

// restorePrecision swaps in the stored value for cells whose display is a
// plain number, since General format rounds to 15 significant digits. Dates,
// currencies and percentages keep their formatted text.
func restorePrecision(formatted, raw [][]string) {
	for r := range formatted {
		if r >= len(raw) {
			return
		}
		for c, shown := range formatted[r] {
			if c >= len(raw[r]) || shown == raw[r][c] {
				continue
			}
			if isNumeric(shown) && isNumeric(raw[r][c]) {
				formatted[r][c] = raw[r][c]
			}
		}
	}
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
