package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"bacteria/src/universe"
)

//DatasetName is the title of every written dataset
const DatasetName = "Bacteria Data"

//Format is the serialization of a dataset file
type Format string

const (
	FormatMsgpack Format = "msgpack"
	FormatJSON    Format = "json"
)

//ParseFormat accepts a format name, "msg" is an alias of msgpack
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "msgpack", "msg":
		return FormatMsgpack, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown dataset format %q", s)
}

//Ext returns the file extension of the format
func (f Format) Ext() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".msg"
}

type runRecord struct {
	Engine          string  `json:"engine" msgpack:"engine"`
	BoardSize       int     `json:"board_size" msgpack:"board_size"`
	SeedProbability float64 `json:"seed_probability" msgpack:"seed_probability"`
	Steps           int     `json:"steps" msgpack:"steps"`
	MaxColonyHeight int     `json:"max_colony_height" msgpack:"max_colony_height"`
	ColonyRule      string  `json:"colony_rule" msgpack:"colony_rule"`
	GrowthThreshold int     `json:"growth_threshold" msgpack:"growth_threshold"`
	OnlyNewMaxima   bool    `json:"only_new_maxima" msgpack:"only_new_maxima"`
	Seed            int64   `json:"seed" msgpack:"seed"`
}

type pointRecord struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

type binRecord struct {
	Lower float64 `json:"lower" msgpack:"lower"`
	Upper float64 `json:"upper" msgpack:"upper"`
	Count int     `json:"count" msgpack:"count"`
}

//Dataset is the document written at the end of a run
type Dataset struct {
	Name         string        `json:"name" msgpack:"name"`
	Run          runRecord     `json:"run" msgpack:"run"`
	MaxHeights   []float64     `json:"max_heights" msgpack:"max_heights"`
	MaxPoints    []pointRecord `json:"max_points" msgpack:"max_points"`
	TotalHeights []float64     `json:"total_heights" msgpack:"total_heights"`
	HeightDists  []binRecord   `json:"height_dists" msgpack:"height_dists"`
}

//NewDataset converts the statistics of a run into its dataset document
func NewDataset(info universe.RunInfo, stats universe.Statistics) Dataset {
	d := Dataset{
		Name: DatasetName,
		Run: runRecord{
			Engine:          info.Engine,
			BoardSize:       info.Side,
			SeedProbability: info.SeedProbability,
			Steps:           info.Steps,
			MaxColonyHeight: info.MaxColonyHeight,
			ColonyRule:      info.ColonyRule,
			GrowthThreshold: info.GrowthThreshold,
			OnlyNewMaxima:   info.OnlyNewMaxima,
			Seed:            info.Seed,
		},
		MaxHeights:   stats.MaxHeights,
		TotalHeights: stats.TotalHeights,
		MaxPoints:    make([]pointRecord, len(stats.MaxPoints)),
		HeightDists:  make([]binRecord, len(stats.Histogram)),
	}
	for i, p := range stats.MaxPoints {
		d.MaxPoints[i] = pointRecord{X: p.X, Y: p.Y}
	}
	for i, b := range stats.Histogram {
		d.HeightDists[i] = binRecord{Lower: b.Lower, Upper: b.Upper, Count: b.Count}
	}
	return d
}

//Encode writes the dataset to w in format f
func (d Dataset) Encode(w io.Writer, f Format) error {
	if f == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	return msgpack.NewEncoder(w).Encode(d)
}

//DatasetWriter writes the statistics of the finished run into a file
type DatasetWriter struct {
	path   string
	format Format
}

func NewDatasetWriter(path string, format Format) *DatasetWriter {
	return &DatasetWriter{path: path, format: format}
}

func (w *DatasetWriter) WriteDataset(info universe.RunInfo, stats universe.Statistics) error {
	return writeFile(w.path, func(out io.Writer) error {
		return NewDataset(info, stats).Encode(out, w.format)
	})
}

func (w *DatasetWriter) Path() string { return w.path }

//writeFile creates path and fills it with fn, the file is removed when fn fails
func writeFile(path string, fn func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
			err = fmt.Errorf("write %s: %w", path, err)
		}
	}()
	return fn(f)
}
