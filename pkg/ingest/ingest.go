package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/noah-isme/gw-dashboard-api/pkg/tabular"
)

// Format identifies an upload encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for extensions without a decoder.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseError reports why a single upload could not be decoded.
type ParseError struct {
	File string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// DetectFormat infers the format from the file extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Decode parses content according to format. Failures are wrapped in *ParseError.
func Decode(filename string, format Format, content []byte) (tabular.Dataset, error) {
	var (
		ds  tabular.Dataset
		err error
	)
	switch format {
	case FormatCSV:
		ds, err = decodeCSV(content)
	case FormatXLSX:
		ds, err = decodeXLSX(content)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return tabular.Dataset{}, &ParseError{File: filename, Err: err}
	}
	ds.Name = filename
	return ds, nil
}

// DecodeFile detects the format from filename and decodes content.
func DecodeFile(filename string, content []byte) (tabular.Dataset, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return tabular.Dataset{}, &ParseError{File: filename, Err: err}
	}
	return Decode(filename, format, content)
}

// buildDataset turns a header row plus cell rows into a dataset. Blank header
// cells become "Unnamed: <i>" and repeated names get a ".<n>" suffix.
func buildDataset(header []string, rows [][]string) (tabular.Dataset, error) {
	if len(header) == 0 {
		return tabular.Dataset{}, errors.New("no columns to parse")
	}
	columns := normalizeHeader(header)
	records := make([]tabular.Record, 0, len(rows))
	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		rec := make(tabular.Record, len(columns))
		for i, col := range columns {
			if i < len(row) {
				rec[col] = tabular.Parse(row[i])
			} else {
				rec[col] = tabular.Null()
			}
		}
		records = append(records, rec)
	}
	return tabular.Dataset{Columns: columns, Records: records}, nil
}

func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	suffix := make(map[string]int)
	for i, raw := range header {
		name := strings.TrimPrefix(strings.TrimSpace(raw), "\ufeff")
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if _, taken := seen[name]; taken {
			base := name
			for n := suffix[base] + 1; ; n++ {
				candidate := base + "." + strconv.Itoa(n)
				if _, exists := seen[candidate]; !exists {
					suffix[base] = n
					name = candidate
					break
				}
			}
		}
		seen[name] = struct{}{}
		columns[i] = name
	}
	return columns
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
