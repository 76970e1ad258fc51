package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"bacteria/src/universe"
)

//SeriesCSVWriter writes the per-generation series as CSV rows
type SeriesCSVWriter struct {
	path string
}

func NewSeriesCSVWriter(path string) *SeriesCSVWriter {
	return &SeriesCSVWriter{path: path}
}

func (w *SeriesCSVWriter) WriteDataset(_ universe.RunInfo, stats universe.Statistics) error {
	return writeFile(w.path, func(out io.Writer) error {
		cw := csv.NewWriter(out)
		if err := cw.Write([]string{"generation", "total_height", "max_height"}); err != nil {
			return err
		}
		for i := range stats.MaxHeights {
			row := []string{
				strconv.Itoa(i),
				strconv.FormatFloat(stats.TotalHeights[i], 'f', -1, 64),
				strconv.FormatFloat(stats.MaxHeights[i], 'f', -1, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func (w *SeriesCSVWriter) Path() string { return w.path }
