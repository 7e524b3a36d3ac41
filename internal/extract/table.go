// Package extract turns trade-confirmation PDFs into raw tables.
//
// Detection runs in two flavors. Lattice relies on the ruling lines a
// contract note draws around its cells; stream infers columns from how text
// lines up when no rulings exist. The Extractor tries lattice first and falls
// back to stream.
package extract

import (
	"context"
	"errors"
	"fmt"
)

// Flavor names a table detection strategy.
type Flavor string

const (
	// Lattice builds cells from visible ruling lines.
	Lattice Flavor = "lattice"
	// Stream infers columns from whitespace and text alignment.
	Stream Flavor = "stream"
)

// ParseFlavors converts configured flavor names, keeping their order.
func ParseFlavors(names []string) ([]Flavor, error) {
	out := make([]Flavor, 0, len(names))
	for _, n := range names {
		f := Flavor(n)
		if f != Lattice && f != Stream {
			return nil, fmt.Errorf("unknown flavor %q", n)
		}
		out = append(out, f)
	}
	return out, nil
}

var (
	// ErrExtraction wraps the failure of the last extraction strategy.
	ErrExtraction = errors.New("table extraction failed")

	// ErrUnreadablePDF is returned when the file is not a structurally valid PDF.
	ErrUnreadablePDF = errors.New("unreadable pdf")
)

// Table is one detected table region on one page: a grid of cell strings,
// rows top to bottom.
type Table struct {
	Page   int
	Flavor Flavor
	Rows   [][]string
}

// Engine reads every table of a PDF with a single flavor.
type Engine interface {
	ReadTables(ctx context.Context, path string, flavor Flavor) ([]Table, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, path string, flavor Flavor) ([]Table, error)

// ReadTables calls f.
func (f EngineFunc) ReadTables(ctx context.Context, path string, flavor Flavor) ([]Table, error) {
	return f(ctx, path, flavor)
}
