package extract

import (
	"math"
	"sort"
	"strings"
)

// Gap thresholds relative to font size. A gap wider than spaceRatio inserts a
// space between glyphs, one wider than chunkRatio starts a new text chunk.
const (
	spaceRatio = 0.15
	chunkRatio = 1.0
)

// glyph is a positioned piece of text in PDF user space (origin bottom left).
type glyph struct {
	x, y float64 // baseline start
	w    float64
	size float64
	s    string
}

func (g glyph) right() float64   { return g.x + g.w }
func (g glyph) blank() bool      { return strings.TrimSpace(g.s) == "" }
func (g glyph) centerX() float64 { return g.x + g.w/2 }

// centerY approximates the vertical middle of the glyph from its baseline.
func (g glyph) centerY() float64 { return g.y + g.size/3 }

// rect is an axis-aligned rectangle drawn on the page.
type rect struct {
	x0, y0, x1, y1 float64
}

// page holds the objects the flavors work from.
type page struct {
	glyphs []glyph
	rects  []rect
}

// chunk is a run of glyphs close enough to belong to one cell.
type chunk struct {
	x0, x1 float64
	text   string
}

// groupLines clusters glyphs into text lines by baseline, top line first,
// each line ordered left to right.
func groupLines(glyphs []glyph, tol float64) [][]glyph {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].y > sorted[j].y })

	var lines [][]glyph
	current := []glyph{sorted[0]}
	anchor := sorted[0].y
	for _, g := range sorted[1:] {
		if math.Abs(anchor-g.y) <= tol {
			current = append(current, g)
			continue
		}
		lines = append(lines, current)
		current = []glyph{g}
		anchor = g.y
	}
	lines = append(lines, current)

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].x < line[j].x })
	}
	return lines
}

// chunks splits one left-to-right line into text chunks. Blank glyphs never
// start a chunk; inside one they force a space before the next glyph.
func chunks(line []glyph, tol float64) []chunk {
	var out []chunk
	var b strings.Builder
	var cur chunk
	open, space := false, false

	for _, g := range line {
		if g.blank() {
			space = open
			continue
		}
		if !open {
			cur = chunk{x0: g.x, x1: g.right()}
			b.WriteString(g.s)
			open, space = true, false
			continue
		}
		gap := g.x - cur.x1
		if gap > math.Max(g.size*chunkRatio, tol) {
			cur.text = strings.TrimSpace(b.String())
			out = append(out, cur)
			b.Reset()
			cur = chunk{x0: g.x, x1: g.right()}
			b.WriteString(g.s)
			space = false
			continue
		}
		if space || gap > g.size*spaceRatio {
			b.WriteByte(' ')
		}
		space = false
		b.WriteString(g.s)
		cur.x1 = math.Max(cur.x1, g.right())
	}
	if open {
		cur.text = strings.TrimSpace(b.String())
		out = append(out, cur)
	}
	return out
}

// joinText renders the glyphs of one cell, lines separated by newlines.
func joinText(glyphs []glyph, tol float64) string {
	lines := groupLines(glyphs, tol)
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		var b strings.Builder
		var prev glyph
		space := false
		for _, g := range line {
			if g.blank() {
				space = b.Len() > 0
				continue
			}
			if b.Len() > 0 && (space || g.x-prev.right() > g.size*spaceRatio) {
				b.WriteByte(' ')
			}
			b.WriteString(g.s)
			prev, space = g, false
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// snap sorts values and merges those within tol of the previous kept value.
func snap(values []float64, tol float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	out := []float64{sorted[0]}
	for _, v := range sorted[1:] {
		if v-out[len(out)-1] > tol {
			out = append(out, v)
		}
	}
	return out
}

// band returns i such that edges[i] <= v < edges[i+1], or -1.
// edges must be ascending.
func band(edges []float64, v float64) int {
	i := sort.SearchFloat64s(edges, v)
	if i < len(edges) && edges[i] == v {
		i++
	}
	i--
	if i < 0 || i >= len(edges)-1 {
		return -1
	}
	return i
}
