package extract

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// EngineConfig tunes PDFEngine geometry.
type EngineConfig struct {
	// LineTolerance is the snap distance for ruling lines, in points.
	LineTolerance float64
	// TextTolerance is the baseline distance still treated as one line, in points.
	TextTolerance float64
}

// DefaultEngineConfig matches the config package defaults.
var DefaultEngineConfig = EngineConfig{LineTolerance: 2, TextTolerance: 2}

// PDFEngine reads tables from the text layer of a PDF. pdfcpu validates the
// document and ledongthuc/pdf supplies glyph positions and drawn rectangles.
type PDFEngine struct {
	cfg EngineConfig
}

var _ Engine = (*PDFEngine)(nil)

// NewPDFEngine creates an engine, substituting defaults for non-positive tolerances.
func NewPDFEngine(cfg EngineConfig) *PDFEngine {
	if cfg.LineTolerance <= 0 {
		cfg.LineTolerance = DefaultEngineConfig.LineTolerance
	}
	if cfg.TextTolerance <= 0 {
		cfg.TextTolerance = DefaultEngineConfig.TextTolerance
	}
	return &PDFEngine{cfg: cfg}
}

// ReadTables returns at most one table per page, across all pages.
func (e *PDFEngine) ReadTables(ctx context.Context, path string, flavor Flavor) (tables []Table, err error) {
	if flavor != Lattice && flavor != Stream {
		return nil, fmt.Errorf("unknown flavor %q", flavor)
	}

	pages, err := pageCount(path)
	if err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrUnreadablePDF, err)
	}
	defer f.Close()

	// ledongthuc/pdf panics on malformed content streams
	defer func() {
		if rec := recover(); rec != nil {
			tables = nil
			err = fmt.Errorf("%w: malformed content: %v", ErrUnreadablePDF, rec)
		}
	}()

	if n := r.NumPage(); n < pages {
		pages = n
	}

	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		var rows [][]string
		objs := toPage(p.Content())
		if flavor == Lattice {
			rows = latticeTable(objs, e.cfg.LineTolerance, e.cfg.TextTolerance)
		} else {
			rows = streamTable(objs, e.cfg.TextTolerance)
		}
		if len(rows) > 0 {
			tables = append(tables, Table{Page: i, Flavor: flavor, Rows: rows})
		}
	}

	return tables, nil
}

// disableConfigDir stops pdfcpu from creating its config directory under
// the user's home on first use.
var disableConfigDir sync.Once

// pageCount validates the file with pdfcpu and returns its page count.
func pageCount(path string) (int, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	n, err := api.PageCount(f, model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnreadablePDF, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: document has no pages", ErrUnreadablePDF)
	}
	return n, nil
}

// toPage converts ledongthuc content into engine geometry. Whitespace glyphs
// are kept as word separators: fonts without /Widths report zero advance, so
// the gap between words is not visible geometrically.
func toPage(c pdf.Content) page {
	p := page{
		glyphs: make([]glyph, 0, len(c.Text)),
		rects:  make([]rect, 0, len(c.Rect)),
	}
	for _, t := range c.Text {
		if t.S == "" {
			continue
		}
		p.glyphs = append(p.glyphs, glyph{x: t.X, y: t.Y, w: t.W, size: t.FontSize, s: t.S})
	}
	for _, r := range c.Rect {
		p.rects = append(p.rects, rect{x0: r.Min.X, y0: r.Min.Y, x1: r.Max.X, y1: r.Max.Y})
	}
	return p
}
