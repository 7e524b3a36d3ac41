package core

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tradecsv/internal/config"
	"github.com/JonMunkholm/tradecsv/internal/extract"
	"github.com/JonMunkholm/tradecsv/internal/extract/extracttest"
	"github.com/JonMunkholm/tradecsv/internal/metrics"
)

// fakeExtractor returns canned tables per staged file name and records
// whether each staged file existed when it was read.
type fakeExtractor struct {
	tables  map[string][]extract.Table
	errs    map[string]error
	paths   []string
	existed []bool
}

func (f *fakeExtractor) Extract(_ context.Context, path string) ([]extract.Table, error) {
	f.paths = append(f.paths, path)
	_, err := os.Stat(path)
	f.existed = append(f.existed, err == nil)

	name := filepath.Base(path)
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	return f.tables[name], nil
}

func newTestService(t *testing.T, ex TableExtractor) (*Service, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Upload.StagingDir = filepath.Join(dir, "uploads")
	cfg.Upload.MaxWaitTime = 200 * time.Millisecond
	cfg.Output.File = filepath.Join(dir, "trades_data.csv")

	svc, err := NewService(ex, cfg, metrics.New())
	require.NoError(t, err)
	return svc, cfg
}

func upload(name, body string) Upload {
	return Upload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func tradeTable(orderNos ...string) []extract.Table {
	rows := [][]string{{"Order No.", "Order Time"}}
	for _, n := range orderNos {
		rows = append(rows, []string{n, "10:00"})
	}
	return []extract.Table{{Page: 1, Flavor: extract.Lattice, Rows: rows}}
}

func assertStagingEmpty(t *testing.T, cfg *config.Config) {
	t.Helper()
	entries, err := os.ReadDir(cfg.Upload.StagingDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging directory should be empty")
}

func TestProcessBatch_WritesCombinedCSV(t *testing.T) {
	ex := &fakeExtractor{tables: map[string][]extract.Table{
		"01 Jan Contract.pdf": tradeTable("1", "2"),
		"02 Jan Contract.pdf": tradeTable("3"),
	}}
	svc, cfg := newTestService(t, ex)

	result, err := svc.ProcessBatch(context.Background(), []Upload{
		upload("01 Jan Contract.pdf", "%PDF-1"),
		upload("02 Jan Contract.pdf", "%PDF-2"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 3, result.TotalTrades())
	assert.Equal(t, cfg.Output.File, result.OutputFile)
	assert.NotEmpty(t, result.BatchID)

	f, err := os.Open(cfg.Output.File)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4)
	assert.Equal(t, Header(), rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "01 Jan Contract.pdf", rows[1][14])
	assert.Equal(t, "01", rows[1][15])
	assert.Equal(t, "3", rows[3][0])
	assert.Equal(t, "02", rows[3][15])

	assert.Equal(t, []bool{true, true}, ex.existed, "files are staged before extraction")
	assertStagingEmpty(t, cfg)
}

func TestProcessBatch_RealPDF(t *testing.T) {
	page := extracttest.Grid(50, 700, 80, 20,
		[]string{"Order No.", "Order Time", "Trade No.", "Trade Time", "Security"},
		[]string{"123", "09:15", "T1", "09:16", "ABC LTD"},
	)
	ex := extract.NewExtractor(extract.NewPDFEngine(extract.DefaultEngineConfig))
	svc, cfg := newTestService(t, ex)

	result, err := svc.ProcessBatch(context.Background(), []Upload{
		upload("01 Jan Contract.pdf", string(extracttest.Bytes(page))),
	})

	require.NoError(t, err)
	require.Equal(t, 1, result.TotalTrades())

	f, err := os.Open(cfg.Output.File)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	want := []string{"123", "09:15", "T1", "09:16", "ABC LTD", "", "", "", "", "", "", "", "", "", "01 Jan Contract.pdf", "01"}
	assert.Equal(t, want, rows[1])
	assertStagingEmpty(t, cfg)
}

func TestProcessBatch_NoFiles(t *testing.T) {
	ex := &fakeExtractor{}
	svc, cfg := newTestService(t, ex)

	_, err := svc.ProcessBatch(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNoFiles)
	assert.Empty(t, ex.paths)
	assertStagingEmpty(t, cfg)
}

func TestProcessBatch_RejectsNonPDFBeforeExtraction(t *testing.T) {
	ex := &fakeExtractor{tables: map[string][]extract.Table{"a.pdf": tradeTable("1")}}
	svc, cfg := newTestService(t, ex)

	_, err := svc.ProcessBatch(context.Background(), []Upload{
		upload("a.pdf", "x"),
		upload("notes.txt", "y"),
	})

	var notPDF *NotPDFError
	require.ErrorAs(t, err, &notPDF)
	assert.Equal(t, "notes.txt", notPDF.File)
	assert.Empty(t, ex.paths, "no file may be extracted when any name is rejected")
	assertStagingEmpty(t, cfg)
	assert.NoFileExists(t, cfg.Output.File)
}

func TestProcessBatch_RejectsUppercaseExtension(t *testing.T) {
	ex := &fakeExtractor{tables: map[string][]extract.Table{"SCAN.PDF": tradeTable("1")}}
	svc, cfg := newTestService(t, ex)

	result, err := svc.ProcessBatch(context.Background(), []Upload{upload("SCAN.PDF", "x")})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNotPDF)
	assert.Equal(t, "File SCAN.PDF is not a PDF", Detail(err))
	assert.Empty(t, ex.paths)
	assertStagingEmpty(t, cfg)
}

func TestService_StagingDir(t *testing.T) {
	svc, cfg := newTestService(t, &fakeExtractor{})
	assert.Equal(t, cfg.Upload.StagingDir, svc.StagingDir())
	assert.DirExists(t, svc.StagingDir())
}

func TestProcessBatch_FailureAbortsAndCleansUp(t *testing.T) {
	cause := errors.New("broken xref table")
	ex := &fakeExtractor{
		tables: map[string][]extract.Table{"a.pdf": tradeTable("1")},
		errs:   map[string]error{"b.pdf": cause},
	}
	svc, cfg := newTestService(t, ex)

	result, err := svc.ProcessBatch(context.Background(), []Upload{
		upload("a.pdf", "x"),
		upload("b.pdf", "y"),
		upload("c.pdf", "z"),
	})

	assert.Nil(t, result)
	var fileErr *FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, "b.pdf", fileErr.File)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Error processing b.pdf: broken xref table", Detail(err))

	assert.Len(t, ex.paths, 2, "processing stops at the failing file")
	assertStagingEmpty(t, cfg)
	assert.NoFileExists(t, cfg.Output.File, "earlier records are discarded")
}

func TestProcessBatch_EmptyAggregateWritesNothing(t *testing.T) {
	ex := &fakeExtractor{tables: map[string][]extract.Table{
		"a.pdf": {{Rows: [][]string{{"Order No."}, {"", " "}}}},
	}}
	svc, cfg := newTestService(t, ex)

	result, err := svc.ProcessBatch(context.Background(), []Upload{upload("a.pdf", "x")})

	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalTrades())
	assert.Empty(t, result.OutputFile)
	assert.NoFileExists(t, cfg.Output.File)
}

func TestProcessBatch_EmptyBatchKeepsPreviousOutput(t *testing.T) {
	ex := &fakeExtractor{tables: map[string][]extract.Table{"a.pdf": tradeTable("1")}}
	svc, cfg := newTestService(t, ex)

	_, err := svc.ProcessBatch(context.Background(), []Upload{upload("a.pdf", "x")})
	require.NoError(t, err)
	before, err := os.ReadFile(cfg.Output.File)
	require.NoError(t, err)

	_, err = svc.ProcessBatch(context.Background(), []Upload{upload("empty.pdf", "x")})
	require.NoError(t, err)

	after, err := os.ReadFile(cfg.Output.File)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestProcessBatch_DuplicateNamesInOneBatch(t *testing.T) {
	ex := &fakeExtractor{tables: map[string][]extract.Table{"a.pdf": tradeTable("1")}}
	svc, cfg := newTestService(t, ex)

	result, err := svc.ProcessBatch(context.Background(), []Upload{
		upload("a.pdf", "x"),
		upload("a.pdf", "y"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalTrades())
	assertStagingEmpty(t, cfg)
}

func TestProcessBatch_StripsDirectoryFromName(t *testing.T) {
	ex := &fakeExtractor{tables: map[string][]extract.Table{"evil.pdf": tradeTable("1")}}
	svc, cfg := newTestService(t, ex)

	_, err := svc.ProcessBatch(context.Background(), []Upload{upload("../../evil.pdf", "x")})

	require.NoError(t, err)
	require.Len(t, ex.paths, 1)
	assert.True(t, strings.HasPrefix(ex.paths[0], cfg.Upload.StagingDir))
}

func TestProcessBatch_OpenFailure(t *testing.T) {
	ex := &fakeExtractor{}
	svc, cfg := newTestService(t, ex)

	bad := Upload{Filename: "a.pdf", Open: func() (io.ReadCloser, error) {
		return nil, errors.New("multipart part gone")
	}}
	_, err := svc.ProcessBatch(context.Background(), []Upload{bad})

	var fileErr *FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Empty(t, ex.paths)
	assertStagingEmpty(t, cfg)
}

func TestProcessBatch_CancelledContext(t *testing.T) {
	ex := &fakeExtractor{}
	svc, cfg := newTestService(t, ex)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ProcessBatch(ctx, []Upload{upload("a.pdf", "x")})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ex.paths)
	assertStagingEmpty(t, cfg)
}

func TestProcessBatch_BusyLimiter(t *testing.T) {
	svc, _ := newTestService(t, &fakeExtractor{})
	require.NoError(t, svc.Limiter().Acquire(context.Background()))
	defer svc.Limiter().Release()

	_, err := svc.ProcessBatch(context.Background(), []Upload{upload("a.pdf", "x")})

	assert.ErrorIs(t, err, ErrTooManyBatches)
}

func TestWriteCSV_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trades.csv")

	require.NoError(t, WriteCSV(path, []TradeRecord{{OrderNo: "1"}, {OrderNo: "2"}}))
	require.NoError(t, WriteCSV(path, []TradeRecord{{OrderNo: "3", Remark: "a,b"}}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "3", rows[1][0])
	assert.Equal(t, "a,b", rows[1][13])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a.pdf", sanitizeFilename("a.pdf"))
	assert.Equal(t, "b.pdf", sanitizeFilename("dir/b.pdf"))
	assert.Equal(t, "c.pdf", sanitizeFilename(`C:\tmp\c.pdf`))
	assert.Equal(t, "upload.pdf", sanitizeFilename(".."))
}
