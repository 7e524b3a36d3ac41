package extract

// rulings derives the x positions of vertical rulings and the y positions of
// horizontal rulings from the rectangles on a page. A rectangle thinner than
// tol is a drawn line; anything larger contributes its four edges.
func rulings(rects []rect, tol float64) (xs, ys []float64) {
	for _, r := range rects {
		x0, x1 := ordered(r.x0, r.x1)
		y0, y1 := ordered(r.y0, r.y1)
		w, h := x1-x0, y1-y0

		switch {
		case w <= tol && h <= tol:
			// a dot, not a ruling
		case h <= tol:
			ys = append(ys, (y0+y1)/2)
		case w <= tol:
			xs = append(xs, (x0+x1)/2)
		default:
			xs = append(xs, x0, x1)
			ys = append(ys, y0, y1)
		}
	}
	return snap(xs, tol), snap(ys, tol)
}

// latticeTable builds the grid bounded by the page rulings and fills each
// cell with the glyphs whose centre falls inside it. Returns nil when the
// page has fewer than two rulings in either direction.
func latticeTable(p page, lineTol, textTol float64) [][]string {
	xs, ys := rulings(p.rects, lineTol)
	if len(xs) < 2 || len(ys) < 2 {
		return nil
	}

	nrows, ncols := len(ys)-1, len(xs)-1
	cells := make([][][]glyph, nrows)
	for i := range cells {
		cells[i] = make([][]glyph, ncols)
	}

	for _, g := range p.glyphs {
		c := band(xs, g.centerX())
		r := band(ys, g.centerY())
		if c < 0 || r < 0 {
			continue
		}
		// ys ascend bottom to top; rows run top to bottom
		row := nrows - 1 - r
		cells[row][c] = append(cells[row][c], g)
	}

	rows := make([][]string, nrows)
	for i, row := range cells {
		rows[i] = make([]string, ncols)
		for j, gs := range row {
			rows[i][j] = joinText(gs, textTol)
		}
	}
	return rows
}

func ordered(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}
