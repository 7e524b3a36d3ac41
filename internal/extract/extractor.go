package extract

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/JonMunkholm/tradecsv/internal/logging"
	"github.com/JonMunkholm/tradecsv/internal/metrics"
)

// DefaultAttempts is the order in which flavors are tried.
var DefaultAttempts = []Flavor{Lattice, Stream}

// Extractor selects a detection strategy per document.
type Extractor struct {
	engine   Engine
	attempts []Flavor
	metrics  *metrics.Metrics
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithAttempts overrides the flavor order.
func WithAttempts(flavors ...Flavor) Option {
	return func(e *Extractor) {
		e.attempts = append([]Flavor(nil), flavors...)
	}
}

// WithMetrics records attempt outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Extractor) {
		e.metrics = m
	}
}

// NewExtractor creates an Extractor over engine trying DefaultAttempts.
func NewExtractor(engine Engine, opts ...Option) *Extractor {
	e := &Extractor{
		engine:   engine,
		attempts: DefaultAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the tables of the PDF at path.
//
// Every attempt except the last moves on when it fails or finds nothing. The
// last attempt is authoritative: its error is returned wrapped in
// ErrExtraction, and an empty result is returned as-is.
func (e *Extractor) Extract(ctx context.Context, path string) ([]Table, error) {
	if len(e.attempts) == 0 {
		return nil, fmt.Errorf("%w: no strategies configured", ErrExtraction)
	}

	logger := logging.WithFields(ctx, "file", filepath.Base(path))

	for i, flavor := range e.attempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		last := i == len(e.attempts)-1

		tables, err := e.engine.ReadTables(ctx, path, flavor)
		switch {
		case err != nil:
			e.metrics.ExtractionAttempt(string(flavor), "error")
			if last {
				return nil, fmt.Errorf("%w (%s): %w", ErrExtraction, flavor, err)
			}
			logger.Warn("extraction failed, falling back",
				"flavor", flavor,
				"next", e.attempts[i+1],
				"error", err,
			)

		case len(tables) == 0:
			e.metrics.ExtractionAttempt(string(flavor), "empty")
			if last {
				logger.Info("no tables found", "flavor", flavor)
				return tables, nil
			}
			logger.Debug("no tables found, falling back",
				"flavor", flavor,
				"next", e.attempts[i+1],
			)

		default:
			e.metrics.ExtractionAttempt(string(flavor), "ok")
			logger.Debug("tables extracted", "flavor", flavor, "tables", len(tables))
			return tables, nil
		}
	}

	// unreachable: the last attempt always returns
	return nil, ErrExtraction
}
