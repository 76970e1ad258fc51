package universe

//Area is the square grid of cells in row-major order, indexed by row*Side+col
type Area struct {
	Side  int
	Cells []Cell
}

//GenerationSummary aggregates the heights of one generation
type GenerationSummary struct {
	TotalHeight uint64
	MaxHeight   uint16
	Changed     bool
}

//merge folds the summary of another part of the same generation into s
func (s *GenerationSummary) merge(o GenerationSummary) {
	s.TotalHeight += o.TotalHeight
	if o.MaxHeight > s.MaxHeight {
		s.MaxHeight = o.MaxHeight
	}
	s.Changed = s.Changed || o.Changed
}

//createArea allocates the area with positioned cells of height 0
func createArea(side int) Area {
	a := Area{Side: side, Cells: make([]Cell, side*side)}
	for i := range a.Cells {
		a.Cells[i].Row = uint16(i / side)
		a.Cells[i].Col = uint16(i % side)
	}
	return a
}

//Index returns the linear index of the cell at row, col
func (a Area) Index(row int, col int) int {
	return row*a.Side + col
}

//Contains reports whether row, col is inside the area
func (a Area) Contains(row int, col int) bool {
	return row >= 0 && col >= 0 && row < a.Side && col < a.Side
}

//Height returns the height at row, col
func (a Area) Height(row int, col int) uint16 {
	return a.Cells[a.Index(row, col)].Height
}

//Summarize computes the totals of the whole area
func (a Area) Summarize() (s GenerationSummary) {
	for _, c := range a.Cells {
		s.TotalHeight += uint64(c.Height)
		if c.Height > s.MaxHeight {
			s.MaxHeight = c.Height
		}
	}
	return
}

//Pixels writes one byte per cell (the height) into dst and returns it
//dst is reallocated when it is too short
func (a Area) Pixels(dst []byte) []byte {
	if cap(dst) < len(a.Cells) {
		dst = make([]byte, len(a.Cells))
	}
	dst = dst[:len(a.Cells)]
	for i, c := range a.Cells {
		dst[i] = byte(c.Height)
	}
	return dst
}

//clone returns a deep copy of the area
func (a Area) clone() Area {
	return Area{Side: a.Side, Cells: append([]Cell(nil), a.Cells...)}
}

//window returns a copy of the top-left n x n corner of the area, n is clamped to the side
func (a Area) window(n int) Area {
	if n > a.Side {
		n = a.Side
	}
	if n < 0 {
		n = 0
	}
	w := Area{Side: n, Cells: make([]Cell, 0, n*n)}
	for row := 0; row < n; row++ {
		start := a.Index(row, 0)
		w.Cells = append(w.Cells, a.Cells[start:start+n]...)
	}
	return w
}
