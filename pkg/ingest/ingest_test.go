package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	format, err := DetectFormat("Issues.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	format, err = DetectFormat("term1.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)

	_, err = DetectFormat("legacy.xls")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestDecodeCSV(t *testing.T) {
	content := "\xEF\xBB\xBFClass,Subject,,Subject\n6A,Maths,x,dup\n\n7B,Hindi\n"
	ds, err := Decode("issues.csv", FormatCSV, []byte(content))
	require.NoError(t, err)

	assert.Equal(t, "issues.csv", ds.Name)
	assert.Equal(t, []string{"Class", "Subject", "Unnamed: 2", "Subject.1"}, ds.Columns)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "dup", ds.Records[0].Text("Subject.1"))
	assert.True(t, ds.Records[1].Get("Subject.1").IsNull())
}

func TestDecodeCSVEmptyIsParseError(t *testing.T) {
	_, err := Decode("empty.csv", FormatCSV, nil)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "empty.csv", parseErr.File)
}

func TestDecodeFileUnsupported(t *testing.T) {
	_, err := DecodeFile("old.xls", []byte("whatever"))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeXLSXFirstSheet(t *testing.T) {
	book := excelize.NewFile()
	first := book.GetSheetName(0)
	require.NoError(t, book.SetSheetRow(first, "A1", &[]interface{}{"Issue In Class", "Issue Type"}))
	require.NoError(t, book.SetSheetRow(first, "A2", &[]interface{}{"6A", "Discipline"}))
	require.NoError(t, book.SetSheetRow(first, "A3", &[]interface{}{9, "Academic"}))
	_, err := book.NewSheet("Ignored")
	require.NoError(t, err)
	require.NoError(t, book.SetSheetRow("Ignored", "A1", &[]interface{}{"Other"}))
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)

	ds, err := Decode("issues.xlsx", FormatXLSX, buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"Issue In Class", "Issue Type"}, ds.Columns)
	require.Equal(t, 2, ds.Len())
	v, ok := ds.Records[1].Get("Issue In Class").Float()
	assert.True(t, ok)
	assert.Equal(t, float64(9), v)
}

func TestDecodeXLSXKeepsFullPrecision(t *testing.T) {
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	require.NoError(t, book.SetSheetRow(sheet, "A1", &[]interface{}{"Score", "Due"}))
	require.NoError(t, book.SetCellValue(sheet, "A2", 0.1+0.2))
	require.NoError(t, book.SetCellValue(sheet, "B2", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)

	ds, err := Decode("scores.xlsx", FormatXLSX, buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	score, ok := ds.Records[0].Get("Score").Float()
	require.True(t, ok)
	assert.Equal(t, 0.1+0.2, score)
	assert.Equal(t, "0.30000000000000004", ds.Records[0].Get("Score").Text())

	due := ds.Records[0].Get("Due").Text()
	assert.NotEmpty(t, due)
	assert.False(t, isNumeric(due), "date cells keep their formatted text, got %q", due)
}

func TestDecodeXLSXCorrupt(t *testing.T) {
	_, err := Decode("broken.xlsx", FormatXLSX, []byte("not a zip"))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
