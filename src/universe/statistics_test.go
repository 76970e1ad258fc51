package universe

import "testing"

func TestHistogram(t *testing.T) {
	values := []float64{9, 0, 1, 2, 3, 4, 5, 6, 7, 8}
	bins := Histogram(values, 10)
	if len(bins) != 10 {
		t.Fatalf("got %d bins, want 10", len(bins))
	}
	for i, b := range bins {
		if b.Count != 1 {
			t.Errorf("bin %d [%v, %v) holds %d values, want 1", i, b.Lower, b.Upper, b.Count)
		}
	}
	if bins[0].Lower != 0 || bins[9].Upper != 9 {
		t.Errorf("histogram spans [%v, %v], want [0, 9]", bins[0].Lower, bins[9].Upper)
	}
}

func TestHistogramCountsEveryValue(t *testing.T) {
	values := []float64{1, 1, 2, 5, 5, 5, 3, 4, 5, 2, 1}
	total := 0
	for _, b := range Histogram(values, 3) {
		total += b.Count
	}
	if total != len(values) {
		t.Errorf("histogram counts %d values, want %d", total, len(values))
	}
}

func TestHistogramSingleValue(t *testing.T) {
	bins := Histogram([]float64{3, 3, 3}, 4)
	if bins[0].Count != 3 {
		t.Errorf("first bin holds %d values, want 3", bins[0].Count)
	}
	if bins[0].Lower != 3 || bins[3].Upper != 4 {
		t.Errorf("histogram spans [%v, %v], want [3, 4]", bins[0].Lower, bins[3].Upper)
	}
	if Histogram(nil, 4) != nil {
		t.Error("histogram of no values is not empty")
	}
}

func TestCollectorBegin(t *testing.T) {
	a := createArea(3)
	a.Cells[4].Height = 3
	c := NewCollector(2, false, 0)
	c.Begin(a)
	st := c.Snapshot()
	if len(st.MaxHeights) != 1 || st.MaxHeights[0] != InitialMaxHeight {
		t.Errorf("generation 0 max heights = %v, want [%v]", st.MaxHeights, InitialMaxHeight)
	}
	if len(st.TotalHeights) != 1 || st.TotalHeights[0] != 3 {
		t.Errorf("generation 0 total heights = %v, want [3]", st.TotalHeights)
	}
}

func TestCollectorMaxPoints(t *testing.T) {
	prev := createArea(3)
	prev.Cells[prev.Index(0, 0)].Height = 2
	cur := createArea(3)
	cur.Cells[cur.Index(0, 0)].Height = 2
	cur.Cells[cur.Index(1, 2)].Height = 2
	cur.Cells[cur.Index(2, 2)].Height = 1

	tests := []struct {
		name      string
		threshold int
		onlyNew   bool
		want      []Point
	}{
		{"all maxima", 2, false, []Point{{X: 0, Y: 0}, {X: 2, Y: 1}}},
		{"new maxima", 2, true, []Point{{X: 2, Y: 1}}},
		{"below threshold", 3, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector(tt.threshold, tt.onlyNew, 0)
			c.Begin(prev)
			c.Record(prev, cur, cur.Summarize())
			st := c.Finish()
			if len(st.MaxPoints) != len(tt.want) {
				t.Fatalf("max points = %v, want %v", st.MaxPoints, tt.want)
			}
			for i := range tt.want {
				if st.MaxPoints[i] != tt.want[i] {
					t.Errorf("max point %d = %v, want %v", i, st.MaxPoints[i], tt.want[i])
				}
			}
			if c.Generations() != 2 || st.MaxHeights[1] != 2 || st.TotalHeights[1] != 5 {
				t.Errorf("series = %v / %v, want 2 generations", st.MaxHeights, st.TotalHeights)
			}
			if len(st.Histogram) != DefHistogramBins {
				t.Errorf("histogram has %d bins, want %d", len(st.Histogram), DefHistogramBins)
			}
		})
	}
}
