package extract

import "sort"

// span is a column's horizontal extent.
type span struct {
	x0, x1 float64
}

// columnSpans merges the x-intervals of chunks on multi-chunk lines into
// column spans. Single-chunk lines (titles, footers) do not shape columns.
func columnSpans(lines [][]chunk, tol float64) []span {
	var spans []span
	for _, line := range lines {
		if len(line) < 2 {
			continue
		}
		for _, c := range line {
			spans = append(spans, span{c.x0, c.x1})
		}
	}
	if len(spans) == 0 {
		return nil
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].x0 < spans[j].x0 })

	merged := []span{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.x0 <= last.x1+tol {
			if s.x1 > last.x1 {
				last.x1 = s.x1
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// columnFor returns the span containing x, or the nearest one.
func columnFor(spans []span, x float64) int {
	best, bestDist := 0, -1.0
	for i, s := range spans {
		if x >= s.x0 && x <= s.x1 {
			return i
		}
		d := s.x0 - x
		if x > s.x1 {
			d = x - s.x1
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// streamTable lays every text line of a page out over inferred columns.
// Returns nil when the page has fewer than two non-blank lines or two columns.
func streamTable(p page, textTol float64) [][]string {
	var chunked [][]chunk
	for _, line := range groupLines(p.glyphs, textTol) {
		if cs := chunks(line, textTol); len(cs) > 0 {
			chunked = append(chunked, cs)
		}
	}
	if len(chunked) < 2 {
		return nil
	}

	spans := columnSpans(chunked, textTol)
	if len(spans) < 2 {
		return nil
	}

	rows := make([][]string, 0, len(chunked))
	for _, line := range chunked {
		row := make([]string, len(spans))
		for _, c := range line {
			col := columnFor(spans, (c.x0+c.x1)/2)
			if row[col] != "" {
				row[col] += " "
			}
			row[col] += c.text
		}
		rows = append(rows, row)
	}
	return rows
}
