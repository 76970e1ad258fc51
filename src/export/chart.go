package export

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"

	"bacteria/src/universe"
)

const (
	DefChartWidth  = 1024
	DefChartHeight = 400
)

//ChartWriter renders the series and the histogram of the finished run as PNG charts
type ChartWriter struct {
	seriesPath    string
	histogramPath string
	Width         int
	Height        int
}

func NewChartWriter(seriesPath string, histogramPath string) *ChartWriter {
	return &ChartWriter{
		seriesPath:    seriesPath,
		histogramPath: histogramPath,
		Width:         DefChartWidth,
		Height:        DefChartHeight,
	}
}

func (w *ChartWriter) WriteDataset(info universe.RunInfo, stats universe.Statistics) error {
	if len(stats.MaxHeights) == 0 {
		return nil
	}
	if err := writeFile(w.seriesPath, func(out io.Writer) error {
		return w.renderSeries(out, info, stats)
	}); err != nil {
		return err
	}
	return writeFile(w.histogramPath, func(out io.Writer) error {
		return w.renderHistogram(out, stats.Histogram)
	})
}

func (w *ChartWriter) Paths() []string {
	return []string{w.seriesPath, w.histogramPath}
}

//renderSeries draws the total heights on the left axis and the max heights on the right one
func (w *ChartWriter) renderSeries(out io.Writer, info universe.RunInfo, stats universe.Statistics) error {
	generations := make([]float64, len(stats.MaxHeights))
	for i := range generations {
		generations[i] = float64(i)
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%dx%d, p=%g, rule %s", info.Side, info.Side, info.SeedProbability, info.ColonyRule),
		Width:  w.Width,
		Height: w.Height,
		XAxis: chart.XAxis{
			Name:  "Generation",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
			Range: &chart.ContinuousRange{Min: 0, Max: max(1, generations[len(generations)-1])},
		},
		YAxis: chart.YAxis{
			Name:  "Total height",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: max(1, floats.Max(stats.TotalHeights))},
		},
		YAxisSecondary: chart.YAxis{
			Name:  "Max height",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: max(1, floats.Max(stats.MaxHeights))},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Total height",
				XValues: generations,
				YValues: stats.TotalHeights,
				Style:   chart.Style{StrokeColor: drawing.Color{R: 0x1C, G: 0x3D, B: 0x1E, A: 255}, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "Max height",
				YAxis:   chart.YAxisSecondary,
				XValues: generations,
				YValues: stats.MaxHeights,
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2.0},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, out)
}

func (w *ChartWriter) renderHistogram(out io.Writer, bins []universe.Bin) error {
	if len(bins) == 0 {
		return nil
	}
	bars := make([]chart.Value, len(bins))
	top := 1.0
	for i, b := range bins {
		bars[i] = chart.Value{Value: float64(b.Count), Label: fmt.Sprintf("%.1f", b.Lower)}
		top = max(top, float64(b.Count))
	}
	graph := chart.BarChart{
		Title:    "Max height distribution",
		Width:    w.Width,
		Height:   w.Height,
		BarWidth: max(4, w.Width/(2*len(bins))),
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, out)
}
