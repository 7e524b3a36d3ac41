package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/tradecsv/internal/config"
	"github.com/JonMunkholm/tradecsv/internal/extract"
	"github.com/JonMunkholm/tradecsv/internal/logging"
	"github.com/JonMunkholm/tradecsv/internal/metrics"
)

// TableExtractor reads the raw tables of a staged document.
type TableExtractor interface {
	Extract(ctx context.Context, path string) ([]extract.Table, error)
}

// Service runs upload batches through staging, extraction, normalization,
// and CSV output.
type Service struct {
	extractor  TableExtractor
	staging    *StagingArea
	limiter    *BatchLimiter
	outputFile string
	metrics    *metrics.Metrics
}

// NewService creates a Service from cfg. The staging directory is created if
// absent. m may be nil.
func NewService(extractor TableExtractor, cfg *config.Config, m *metrics.Metrics) (*Service, error) {
	staging, err := NewStagingArea(cfg.Upload.StagingDir)
	if err != nil {
		return nil, err
	}

	return &Service{
		extractor:  extractor,
		staging:    staging,
		limiter:    NewBatchLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		outputFile: cfg.Output.File,
		metrics:    m,
	}, nil
}

// OutputFile returns the path written by non-empty batches.
func (s *Service) OutputFile() string {
	return s.outputFile
}

// StagingDir returns the root directory uploads are staged under.
func (s *Service) StagingDir() string {
	return s.staging.Dir()
}

// Limiter exposes the batch limiter for health reporting and shutdown draining.
func (s *Service) Limiter() *BatchLimiter {
	return s.limiter
}

// ProcessBatch extracts trades from every upload, in order, and writes the
// combined CSV when at least one trade was found. The first failing upload
// aborts the batch with a *FileError and nothing is written.
func (s *Service) ProcessBatch(ctx context.Context, uploads []Upload) (*BatchResult, error) {
	if err := validateUploads(uploads); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()
	batchID := uuid.New()
	log := logging.WithFields(ctx, "batch_id", batchID.String(), "files", len(uploads))

	result, err := s.runBatch(ctx, batchID, uploads, log)
	if err != nil {
		s.metrics.ObserveBatch("error", time.Since(start))
		log.Warn("batch failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	outcome := "empty"
	if result.OutputFile != "" {
		outcome = "ok"
	}
	s.metrics.ObserveBatch(outcome, time.Since(start))
	s.metrics.TradesExtracted(result.TotalTrades())
	log.Info("batch processed",
		"trades", result.TotalTrades(),
		"output", result.OutputFile,
		"duration", time.Since(start),
	)
	return result, nil
}

func (s *Service) runBatch(ctx context.Context, batchID uuid.UUID, uploads []Upload, log *slog.Logger) (*BatchResult, error) {
	batch, err := s.staging.Begin(batchID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := batch.Close(); err != nil {
			log.Error("staging cleanup failed", "error", err)
		}
	}()

	var records []TradeRecord
	for _, up := range uploads {
		if err := ctx.Err(); err != nil {
			return nil, &FileError{File: up.Filename, Err: err}
		}

		recs, err := s.processFile(ctx, batch, up)
		if err != nil {
			s.metrics.FileProcessed("error")
			return nil, &FileError{File: up.Filename, Err: err}
		}
		s.metrics.FileProcessed("ok")
		log.Debug("file processed", "file", up.Filename, "trades", len(recs))
		records = append(records, recs...)
	}

	result := &BatchResult{
		BatchID: batchID.String(),
		Files:   len(uploads),
		Records: records,
	}
	if len(records) == 0 {
		return result, nil
	}

	if err := WriteCSV(s.outputFile, records); err != nil {
		return nil, fmt.Errorf("write %s: %w", s.outputFile, err)
	}
	result.OutputFile = s.outputFile
	return result, nil
}

// processFile stages, extracts, and normalizes one upload. The staged copy
// is removed whether or not processing succeeds.
func (s *Service) processFile(ctx context.Context, batch *StagedBatch, up Upload) ([]TradeRecord, error) {
	rc, err := up.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	path, err := batch.Stage(ctx, up.Filename, rc)
	rc.Close()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := batch.Remove(path); err != nil {
			logging.FromContext(ctx).Error("remove staged file", "path", path, "error", err)
		}
	}()

	tables, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return Normalize(tables, up.Filename), nil
}

// validateUploads rejects the batch before anything is staged. The suffix
// check is case-sensitive: "SCAN.PDF" is rejected.
func validateUploads(uploads []Upload) error {
	if len(uploads) == 0 {
		return ErrNoFiles
	}
	for _, up := range uploads {
		if !strings.HasSuffix(up.Filename, ".pdf") {
			return &NotPDFError{File: up.Filename}
		}
	}
	return nil
}
