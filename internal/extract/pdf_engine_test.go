package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tradecsv/internal/extract/extracttest"
)

var (
	contractHeader = []string{"Order No.", "Order Time", "Trade No.", "Trade Time", "Security"}
	contractRow    = []string{"123", "09:15", "T1", "09:16", "ABC LTD"}
)

func ruledContract() extracttest.Page {
	return extracttest.Grid(50, 700, 80, 20, contractHeader, contractRow)
}

func unruledLines() extracttest.Page {
	return extracttest.Unruled(50, 700, 150, 20,
		[]string{"ABC", "12"},
		[]string{"DEF", "34"},
		[]string{"GHI", "56"},
	)
}

func TestPDFEngine_LatticeReadsRuledTable(t *testing.T) {
	path := extracttest.Write(t, t.TempDir(), "01 Jan Contract.pdf", ruledContract())

	tables, err := NewPDFEngine(DefaultEngineConfig).ReadTables(context.Background(), path, Lattice)

	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, 1, tables[0].Page)
	assert.Equal(t, Lattice, tables[0].Flavor)
	assert.Equal(t, [][]string{contractHeader, contractRow}, tables[0].Rows)
}

func TestPDFEngine_LatticeFindsNothingOnUnruledPage(t *testing.T) {
	path := extracttest.Write(t, t.TempDir(), "plain.pdf", unruledLines())

	tables, err := NewPDFEngine(DefaultEngineConfig).ReadTables(context.Background(), path, Lattice)

	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestPDFEngine_StreamReadsUnruledPage(t *testing.T) {
	path := extracttest.Write(t, t.TempDir(), "plain.pdf", unruledLines())

	tables, err := NewPDFEngine(DefaultEngineConfig).ReadTables(context.Background(), path, Stream)

	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{{"ABC", "12"}, {"DEF", "34"}, {"GHI", "56"}}, tables[0].Rows)
}

func TestExtractor_FallsBackToStreamOnUnruledPDF(t *testing.T) {
	path := extracttest.Write(t, t.TempDir(), "plain.pdf", unruledLines())

	tables, err := NewExtractor(NewPDFEngine(DefaultEngineConfig)).Extract(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, Stream, tables[0].Flavor)
	assert.Len(t, tables[0].Rows, 3)
}

func TestExtractor_PrefersLatticeOnRuledPDF(t *testing.T) {
	path := extracttest.Write(t, t.TempDir(), "ruled.pdf", ruledContract())

	tables, err := NewExtractor(NewPDFEngine(DefaultEngineConfig)).Extract(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, Lattice, tables[0].Flavor)
}

func TestPDFEngine_WordSpacesWithoutFontWidths(t *testing.T) {
	page := extracttest.Grid(50, 700, 80, 20, []string{"ABC LTD", "X"}, []string{"1", "2"})
	page.NoWidths = true
	path := extracttest.Write(t, t.TempDir(), "nowidths.pdf", page)

	tables, err := NewPDFEngine(DefaultEngineConfig).ReadTables(context.Background(), path, Lattice)

	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{{"ABC LTD", "X"}, {"1", "2"}}, tables[0].Rows)
}

func TestPDFEngine_LeavesUserConfigDirAlone(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	path := extracttest.Write(t, t.TempDir(), "ruled.pdf", ruledContract())

	_, err := NewPDFEngine(DefaultEngineConfig).ReadTables(context.Background(), path, Lattice)
	require.NoError(t, err)

	entries, err := os.ReadDir(home)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPDFEngine_CancelledContext(t *testing.T) {
	path := extracttest.Write(t, t.TempDir(), "ruled.pdf", ruledContract())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPDFEngine(DefaultEngineConfig).ReadTables(ctx, path, Lattice)

	assert.ErrorIs(t, err, context.Canceled)
}
