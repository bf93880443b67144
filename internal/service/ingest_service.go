package service

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/noah-isme/gw-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/gw-dashboard-api/pkg/errors"
	"github.com/noah-isme/gw-dashboard-api/pkg/ingest"
	"github.com/noah-isme/gw-dashboard-api/pkg/tabular"
)

// Upload is one file of a batch, in upload order.
type Upload struct {
	Filename string
	Content  []byte
}

// IngestResult is the merged dataset plus per-file outcomes. Parsed == 0
// means every file failed, as opposed to an empty batch which is an error.
type IngestResult struct {
	Merged      tabular.Dataset
	Sources     []models.SourceReport
	Parsed      int
	Failed      int
	Diagnostics []models.Diagnostic
}

// IngestConfig bounds a batch.
type IngestConfig struct {
	MaxFileSize int64
	MaxFiles    int
}

type datasetDecoder interface {
	Decode(ctx context.Context, filename string, format ingest.Format, content []byte) (tabular.Dataset, bool, error)
}

// IngestService parses upload batches with per-file error isolation.
type IngestService struct {
	decoder datasetDecoder
	metrics *MetricsService
	cfg     IngestConfig
	logger  *zap.Logger
}

// NewIngestService constructs the service. A nil decoder parses without memoization.
func NewIngestService(decoder datasetDecoder, metrics *MetricsService, cfg IngestConfig, logger *zap.Logger) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if decoder == nil {
		decoder = NewParseCache(nil, 0, logger)
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 << 20
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 20
	}
	return &IngestService{decoder: decoder, metrics: metrics, cfg: cfg, logger: logger}
}

// Ingest parses each upload independently and concatenates the successes in
// upload order.
func (s *IngestService) Ingest(ctx context.Context, uploads []Upload) (*IngestResult, error) {
	if len(uploads) == 0 {
		return nil, appErrors.ErrNoFiles
	}
	if len(uploads) > s.cfg.MaxFiles {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d files per upload", s.cfg.MaxFiles))
	}

	result := &IngestResult{Sources: make([]models.SourceReport, 0, len(uploads))}
	parsed := make([]tabular.Dataset, 0, len(uploads))
	for i, up := range uploads {
		report := models.SourceReport{Index: i + 1, File: up.Filename, Size: int64(len(up.Content))}
		ds, cached, err := s.parseOne(ctx, up, &report)
		if err != nil {
			report.Status = models.SourceFailed
			report.Error = err.Error()
			result.Failed++
			result.Diagnostics = append(result.Diagnostics, models.Diagnostic{
				Kind:    models.DiagnosticParseError,
				Level:   models.LevelError,
				Scope:   up.Filename,
				Message: err.Error(),
			})
			s.logger.Warn("upload rejected", zap.String("file", up.Filename), zap.Int("index", i+1), zap.Error(err))
			s.metrics.RecordIngestFile(false, 0)
			result.Sources = append(result.Sources, report)
			continue
		}
		report.Status = models.SourceParsed
		report.Rows = ds.Len()
		report.Columns = ds.Columns
		report.Cached = cached
		result.Parsed++
		parsed = append(parsed, ds)
		s.metrics.RecordIngestFile(true, ds.Len())
		result.Sources = append(result.Sources, report)
	}

	result.Merged = tabular.Concat("merged", parsed...)
	s.logger.Info("upload batch merged",
		zap.Int("files", len(uploads)),
		zap.Int("parsed", result.Parsed),
		zap.Int("failed", result.Failed),
		zap.Int("rows", result.Merged.Len()),
	)
	return result, nil
}

func (s *IngestService) parseOne(ctx context.Context, up Upload, report *models.SourceReport) (tabular.Dataset, bool, error) {
	if int64(len(up.Content)) > s.cfg.MaxFileSize {
		return tabular.Dataset{}, false, &ingest.ParseError{
			File: up.Filename,
			Err: fmt.Errorf("file is %s, limit is %s",
				humanize.Bytes(uint64(len(up.Content))), humanize.Bytes(uint64(s.cfg.MaxFileSize))),
		}
	}
	format, err := ingest.DetectFormat(up.Filename)
	if err != nil {
		return tabular.Dataset{}, false, &ingest.ParseError{File: up.Filename, Err: err}
	}
	report.Format = string(format)
	return s.decoder.Decode(ctx, up.Filename, format, up.Content)
}
