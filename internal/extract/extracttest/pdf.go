// Package extracttest writes small single-page PDFs for extraction tests.
//
// The documents use the standard Helvetica font and stroked rectangles, the
// same primitives contract-note generators emit, so they exercise the real
// parsers end to end.
package extracttest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// GlyphWidth is the advance of every character, in thousandths of an em,
// when the font carries a /Widths array.
const GlyphWidth = 500

// Rect is a rectangle in PDF user space, origin bottom left.
type Rect struct {
	X, Y, W, H float64
}

// Text is a string drawn with its baseline starting at X, Y.
type Text struct {
	X, Y float64
	S    string
}

// Page describes the content of the single page.
type Page struct {
	Rects []Rect
	Texts []Text

	// FontSize defaults to 10.
	FontSize float64

	// NoWidths omits /FirstChar, /LastChar and /Widths from the font, which
	// PDF allows for the standard 14 fonts.
	NoWidths bool
}

// Grid lays rows out as a ruled table: every cell is a colW by rowH
// rectangle, the first row's top edge at top, and each value is drawn
// inside its cell.
func Grid(x, top, colW, rowH float64, rows ...[]string) Page {
	var p Page
	for r, row := range rows {
		y0 := top - float64(r+1)*rowH
		for c, s := range row {
			x0 := x + float64(c)*colW
			p.Rects = append(p.Rects, Rect{X: x0, Y: y0, W: colW, H: rowH})
			if s != "" {
				p.Texts = append(p.Texts, Text{X: x0 + 4, Y: y0 + 6, S: s})
			}
		}
	}
	return p
}

// Unruled lays rows out as plain text lines, lineH apart, with column c
// starting at x + c*colW.
func Unruled(x, top, colW, lineH float64, rows ...[]string) Page {
	var p Page
	for r, row := range rows {
		y := top - float64(r)*lineH
		for c, s := range row {
			if s != "" {
				p.Texts = append(p.Texts, Text{X: x + float64(c)*colW, Y: y, S: s})
			}
		}
	}
	return p
}

// Bytes renders p as a complete PDF document.
func Bytes(p Page) []byte {
	size := p.FontSize
	if size == 0 {
		size = 10
	}

	var content bytes.Buffer
	content.WriteString("0.5 w\n")
	for _, r := range p.Rects {
		fmt.Fprintf(&content, "%s %s %s %s re S\n", num(r.X), num(r.Y), num(r.W), num(r.H))
	}
	for _, t := range p.Texts {
		fmt.Fprintf(&content, "BT /F1 %s Tf %s %s Td (%s) Tj ET\n", num(size), num(t.X), num(t.Y), escape(t.S))
	}

	font := "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding"
	if !p.NoWidths {
		widths := make([]string, 126-32+1)
		for i := range widths {
			widths[i] = strconv.Itoa(GlyphWidth)
		}
		font += " /FirstChar 32 /LastChar 126 /Widths [" + strings.Join(widths, " ") + "]"
	}
	font += " >>"

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		font,
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	// xref entries are exactly 20 bytes each
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// Write renders p to dir/name and returns the path.
func Write(t testing.TB, dir, name string, p Page) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Bytes(p), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var escaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

func escape(s string) string {
	return escaper.Replace(s)
}
