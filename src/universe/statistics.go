package universe

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	//InitialMaxHeight is recorded as the maximum of generation 0 whatever the seeded grid holds
	InitialMaxHeight = 1.0
	//DefHistogramBins is the bin count of the max height histogram
	DefHistogramBins = 10
)

//Point is the position of a max point, X is the column and Y the row
type Point struct {
	X float64
	Y float64
}

//Bin is one bucket of the max height histogram, covering [Lower, Upper)
//the last bin also holds Upper
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

//Statistics are the series accumulated over a run, one entry per generation including 0
type Statistics struct {
	TotalHeights []float64
	MaxHeights   []float64
	MaxPoints    []Point
	Histogram    []Bin
}

//Collector records the statistics of every generation
type Collector struct {
	threshold int
	onlyNew   bool
	bins      int
	stats     Statistics
}

//NewCollector creates the collector
//max points are recorded when the generation maximum reaches threshold,
//with onlyNew only for cells that were lower on the previous generation
func NewCollector(threshold int, onlyNew bool, bins int) *Collector {
	if bins <= 0 {
		bins = DefHistogramBins
	}
	return &Collector{threshold: threshold, onlyNew: onlyNew, bins: bins}
}

//Begin drops the series and records generation 0 of a
func (c *Collector) Begin(a Area) {
	c.stats = Statistics{}
	s := a.Summarize()
	c.stats.TotalHeights = append(c.stats.TotalHeights, float64(s.TotalHeight))
	c.stats.MaxHeights = append(c.stats.MaxHeights, InitialMaxHeight)
}

//Record appends the generation cur, computed from prev, to the series
func (c *Collector) Record(prev Area, cur Area, s GenerationSummary) {
	c.stats.TotalHeights = append(c.stats.TotalHeights, float64(s.TotalHeight))
	c.stats.MaxHeights = append(c.stats.MaxHeights, float64(s.MaxHeight))
	if int(s.MaxHeight) < c.threshold {
		return
	}
	for i, cell := range cur.Cells {
		if cell.Height != s.MaxHeight {
			continue
		}
		if c.onlyNew && prev.Cells[i].Height >= cell.Height {
			continue
		}
		c.stats.MaxPoints = append(c.stats.MaxPoints, Point{X: float64(cell.Col), Y: float64(cell.Row)})
	}
}

//Generations returns the number of recorded generations
func (c *Collector) Generations() int {
	return len(c.stats.MaxHeights)
}

//MaxPoints returns the number of max points recorded so far
func (c *Collector) MaxPoints() int {
	return len(c.stats.MaxPoints)
}

//Snapshot returns a copy of the series recorded so far, without histogram
func (c *Collector) Snapshot() Statistics {
	return Statistics{
		TotalHeights: append([]float64(nil), c.stats.TotalHeights...),
		MaxHeights:   append([]float64(nil), c.stats.MaxHeights...),
		MaxPoints:    append([]Point(nil), c.stats.MaxPoints...),
	}
}

//Finish builds the histogram and returns the final statistics
func (c *Collector) Finish() Statistics {
	st := c.Snapshot()
	st.Histogram = Histogram(st.MaxHeights, c.bins)
	return st
}

//Histogram buckets values into bins equal-width bins spanning [min, max]
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	lo, hi := floats.Min(sorted), floats.Max(sorted)
	if hi == lo {
		hi = lo + 1
	}
	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	//stat.Histogram bins are half-open, the maximum belongs to the last bin
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	out[bins-1].Upper = hi
	return out
}
