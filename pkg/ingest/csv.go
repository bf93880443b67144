package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/noah-isme/gw-dashboard-api/pkg/tabular"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decodeCSV(content []byte) (tabular.Dataset, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return tabular.Dataset{}, errors.New("no columns to parse")
		}
		return tabular.Dataset{}, fmt.Errorf("read csv header: %w", err)
	}

	rows := make([][]string, 0, 64)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return tabular.Dataset{}, fmt.Errorf("read csv row: %w", err)
		}
		rows = append(rows, row)
	}
	return buildDataset(header, rows)
}
