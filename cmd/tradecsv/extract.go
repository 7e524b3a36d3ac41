package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tradecsv/internal/config"
	"github.com/JonMunkholm/tradecsv/internal/core"
	"github.com/JonMunkholm/tradecsv/internal/extract"
	"github.com/JonMunkholm/tradecsv/internal/metrics"
)

var (
	outFile     string
	metricsFile string
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract trades from PDFs into one CSV",
	Long: `Extract runs every PDF through table detection (lattice, then stream)
and writes the combined trades to --out. The date column is the first
whitespace-separated word of each file name.`,
	Example: `  tradecsv extract "01 Jan Contract.pdf" "02 Jan Contract.pdf" --out trades.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if outFile != "" {
			cfg.Output.File = outFile
		}

		var m *metrics.Metrics
		if metricsFile != "" {
			m = metrics.New()
		}

		ex, err := newExtractor(cfg, m)
		if err != nil {
			return err
		}

		runErr := runExtract(cmd.Context(), cfg, ex, m, args, cmd.OutOrStdout())
		if m != nil {
			if err := writeMetrics(metricsFile, m); err != nil && runErr == nil {
				return err
			}
		}
		return runErr
	},
}

func init() {
	extractCmd.Flags().StringVarP(&outFile, "out", "O", "", "output CSV path (default: $OUTPUT_FILE or trades_data.csv)")
	extractCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write run metrics in prometheus text format to this path")
}

// newExtractor builds the PDF extractor described by cfg.
func newExtractor(cfg *config.Config, m *metrics.Metrics) (*extract.Extractor, error) {
	flavors, err := extract.ParseFlavors(cfg.Extract.Flavors)
	if err != nil {
		return nil, err
	}
	engine := extract.NewPDFEngine(extract.EngineConfig{
		LineTolerance: cfg.Extract.LineTolerance,
		TextTolerance: cfg.Extract.TextTolerance,
	})
	return extract.NewExtractor(engine, extract.WithAttempts(flavors...), extract.WithMetrics(m)), nil
}

// writeMetrics dumps the registry for a node_exporter textfile collector.
func writeMetrics(path string, m *metrics.Metrics) error {
	if err := prometheus.WriteToTextfile(path, m.Registry()); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// summary is printed after a run.
type summary struct {
	Files       int    `json:"files"`
	TotalTrades int    `json:"total_trades"`
	OutputFile  string `json:"output_file,omitempty"`
}

// runExtract processes paths as one batch, staging under a private
// temporary directory, and prints a JSON summary to w.
func runExtract(ctx context.Context, cfg *config.Config, ex core.TableExtractor, m *metrics.Metrics, paths []string, w io.Writer) error {
	staging, err := os.MkdirTemp("", "tradecsv-*")
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)
	cfg.Upload.StagingDir = staging

	svc, err := core.NewService(ex, cfg, m)
	if err != nil {
		return err
	}

	uploads := make([]core.Upload, 0, len(paths))
	for _, p := range paths {
		uploads = append(uploads, core.Upload{
			Filename: filepath.Base(p),
			Open: func() (io.ReadCloser, error) {
				return os.Open(p)
			},
		})
	}

	result, err := svc.ProcessBatch(ctx, uploads)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary{
		Files:       result.Files,
		TotalTrades: result.TotalTrades(),
		OutputFile:  result.OutputFile,
	})
}
