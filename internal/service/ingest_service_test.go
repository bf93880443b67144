package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/gw-dashboard-api/internal/models"
	"github.com/noah-isme/gw-dashboard-api/internal/repository"
	appErrors "github.com/noah-isme/gw-dashboard-api/pkg/errors"
	"github.com/noah-isme/gw-dashboard-api/pkg/ingest"
)

const studentCSV = "Student,Class,Subject,Resolver Teacher\nAsha,5,Maths,Rao\nVikram,5,English,Iyer\n"

func newIngestForTest(cfg IngestConfig) (*IngestService, *MetricsService) {
	metrics := NewMetricsService()
	cache := NewCacheService(repository.NewMemoryCacheRepository(), metrics, "test", time.Minute, zap.NewNop(), true)
	return NewIngestService(NewParseCache(cache, time.Minute, zap.NewNop()), metrics, cfg, zap.NewNop()), metrics
}

func TestIngestIsolatesFailedFiles(t *testing.T) {
	svc, metrics := newIngestForTest(IngestConfig{})
	res, err := svc.Ingest(context.Background(), []Upload{
		{Filename: "a.csv", Content: []byte(studentCSV)},
		{Filename: "notes.txt", Content: []byte("hello")},
		{Filename: "broken.xlsx", Content: []byte("not a workbook")},
		{Filename: "b.csv", Content: []byte("Student,Class\nMeera,6\n")},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Parsed)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 3, res.Merged.Len())
	assert.Equal(t, []string{"Student", "Class", "Subject", "Resolver Teacher"}, res.Merged.Columns)
	assert.True(t, res.Merged.Records[2].Get("Subject").IsNull())

	require.Len(t, res.Sources, 4)
	assert.Equal(t, models.SourceParsed, res.Sources[0].Status)
	assert.Equal(t, 2, res.Sources[0].Rows)
	assert.Equal(t, models.SourceFailed, res.Sources[1].Status)
	assert.Equal(t, models.SourceFailed, res.Sources[2].Status)
	assert.Equal(t, "xlsx", res.Sources[2].Format)
	assert.Equal(t, 4, res.Sources[3].Index)

	require.Len(t, res.Diagnostics, 2)
	for _, d := range res.Diagnostics {
		assert.Equal(t, models.DiagnosticParseError, d.Kind)
	}
	assert.Equal(t, "notes.txt", res.Diagnostics[0].Scope)
	assert.Contains(t, res.Diagnostics[0].Message, "notes.txt")

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(2), snap.FilesParsed)
	assert.Equal(t, uint64(2), snap.FilesFailed)
}

func TestIngestKeepsDuplicateRows(t *testing.T) {
	svc, _ := newIngestForTest(IngestConfig{})
	res, err := svc.Ingest(context.Background(), []Upload{
		{Filename: "a.csv", Content: []byte(studentCSV)},
		{Filename: "copy.csv", Content: []byte(studentCSV)},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Merged.Len())
	assert.False(t, res.Sources[0].Cached)
	assert.True(t, res.Sources[1].Cached)
}

func TestIngestRejectsEmptyAndOversizedBatches(t *testing.T) {
	svc, _ := newIngestForTest(IngestConfig{MaxFiles: 1, MaxFileSize: 16})

	_, err := svc.Ingest(context.Background(), nil)
	require.ErrorIs(t, err, appErrors.ErrNoFiles)

	_, err = svc.Ingest(context.Background(), []Upload{{Filename: "a.csv"}, {Filename: "b.csv"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	res, err := svc.Ingest(context.Background(), []Upload{{Filename: "a.csv", Content: []byte(studentCSV)}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Parsed)
	assert.Contains(t, res.Sources[0].Error, "limit is 16 B")
}

func TestIngestAllFailedStillMerges(t *testing.T) {
	svc, _ := newIngestForTest(IngestConfig{})
	res, err := svc.Ingest(context.Background(), []Upload{{Filename: "x.pdf", Content: []byte("%PDF")}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Parsed)
	assert.Equal(t, 0, res.Merged.Len())
	assert.Empty(t, res.Merged.Columns)
}

func TestParseCacheHitsOnSecondDecode(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(repository.NewMemoryCacheRepository(), metrics, "test", time.Minute, zap.NewNop(), true)
	pc := NewParseCache(cache, time.Minute, zap.NewNop())
	ctx := context.Background()

	first, cached, err := pc.Decode(ctx, "first.csv", ingest.FormatCSV, []byte(studentCSV))
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "first.csv", first.Name)

	second, cached, err := pc.Decode(ctx, "second.csv", ingest.FormatCSV, []byte(studentCSV))
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "second.csv", second.Name)
	assert.Equal(t, first.Columns, second.Columns)
	assert.Equal(t, first.Len(), second.Len())
	assert.Equal(t, "5", second.Records[0].Text("Class"))

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
}

func TestParseCacheDoesNotCacheFailures(t *testing.T) {
	pc := NewParseCache(nil, 0, nil)
	_, _, err := pc.Decode(context.Background(), "bad.xlsx", ingest.FormatXLSX, []byte("garbage"))
	require.Error(t, err)
	var parseErr *ingest.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "bad.xlsx", parseErr.File)
	assert.True(t, strings.HasPrefix(err.Error(), "parse bad.xlsx"))
}
