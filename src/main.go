package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/integrii/flaggy"

	"bacteria/src/export"
	"bacteria/src/universe"
	"bacteria/src/view"
)

type EnvOptions struct {
	interactive   bool
	engine        string
	preset        string
	template      string
	outDir        string
	name          string
	frames        string
	dataset       string
	csv           bool
	chart         bool
	delay         int
	fps           int
	progressEvery int
}

//overrides holds the flags replacing preset values, zero (NaN for floats) means unset
type overrides struct {
	side      int
	density   float64
	steps     int
	maxHeight int
	rule      string
	threshold int
	maxima    string
	bins      int
	workers   int
	seed      int64
	interval  time.Duration
}

//frameFile is a frame sink backed by a file finished on Close
type frameFile interface {
	universe.FrameSink
	Close() error
	Path() string
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	eo, uo := initOptions()
	if err := run(eo, uo, logger); err != nil {
		logger.Error("simulation failed", "err", err)
		os.Exit(1)
	}
}

func run(eo *EnvOptions, uo *universe.Options, logger *slog.Logger) error {
	var stateCh chan universe.Status

	if !eo.interactive {
		stateCh = make(chan universe.Status, 10) //the buffered channel to getting the universe status
	}

	u, err := universe.Engines[eo.engine](uo, stateCh)
	if err != nil {
		return err
	}

	if eo.interactive {
		if err := settle(u, eo.template); err != nil {
			u.Close()
			return err
		}
		v := view.NewViewTerminal()
		u.RegisterViewer(v)
		v.Start()
		u.Close()
		return nil
	}

	o := u.Options()
	if err := os.MkdirAll(eo.outDir, 0o755); err != nil {
		u.Close()
		return err
	}
	frames, artifacts, err := attachSinks(u, eo, &o, logger)
	if err != nil {
		u.Close()
		return err
	}

	out := view.NewConsoleOutTo(os.Stdout, eo.progressEvery)
	u.RegisterViewer(out)
	if err := settle(u, eo.template); err != nil {
		u.Close()
		closeFrames(frames, logger)
		discard(artifacts, logger)
		return err
	}
	out.Start()
	u.Run()
	var st universe.Status
	for {
		st = <-stateCh
		if st.RunningMode == universe.RunningStateFinished || st.RunningMode == universe.RunningStateFailed {
			break
		}
	}
	u.Close()

	runErr := st.Err
	for _, f := range frames {
		if err := f.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}
	if runErr != nil {
		discard(artifacts, logger)
		return runErr
	}
	for _, p := range artifacts {
		logger.Info("artifact written", "path", p)
	}
	return nil
}

//settle seeds the universe with the template, or at random when no template is given
func settle(u universe.Universe, template string) error {
	if template == "" {
		u.SettleWithRandomData()
		return nil
	}
	if err := u.SettleTemplate(template); err != nil {
		return fmt.Errorf("%w %q", err, template)
	}
	return nil
}

//attachSinks creates the export files of a batch run and registers them on the universe
//nothing is left on disk when it fails
func attachSinks(u universe.Universe, eo *EnvOptions, o *universe.Options, logger *slog.Logger) ([]frameFile, []string, error) {
	var (
		frames    []frameFile
		artifacts []string
		datasets  []universe.DatasetSink
	)
	fail := func(err error) ([]frameFile, []string, error) {
		closeFrames(frames, logger)
		discard(artifacts, logger)
		return nil, nil, err
	}
	base := filepath.Join(eo.outDir, eo.name)
	palette := export.Palette(o.MaxColonyHeight)

	switch frameFormat(eo.frames, o, logger) {
	case "gif":
		frames = append(frames, export.NewGIFWriter(base+".gif", o.Side, palette, eo.delay))
	case "mjpeg":
		w, err := export.NewMJPEGWriter(base+".avi", o.Side, palette, eo.fps)
		if err != nil {
			return fail(err)
		}
		frames = append(frames, w)
	case "none":
	default:
		return fail(fmt.Errorf("unknown frame format %q", eo.frames))
	}
	for _, f := range frames {
		artifacts = append(artifacts, f.Path())
	}

	if eo.dataset != "none" {
		format, err := export.ParseFormat(eo.dataset)
		if err != nil {
			return fail(err)
		}
		w := export.NewDatasetWriter(base+format.Ext(), format)
		datasets = append(datasets, w)
		artifacts = append(artifacts, w.Path())
	}
	if eo.csv {
		w := export.NewSeriesCSVWriter(base + "_series.csv")
		datasets = append(datasets, w)
		artifacts = append(artifacts, w.Path())
	}
	if eo.chart {
		w := export.NewChartWriter(base+"_series.png", base+"_histogram.png")
		datasets = append(datasets, w)
		artifacts = append(artifacts, w.Paths()...)
	}

	for _, f := range frames {
		u.AddFrameSink(f)
	}
	for _, d := range datasets {
		u.AddDatasetSink(d)
	}
	return frames, artifacts, nil
}

//frameFormat resolves "auto" to gif, or to mjpeg when the animation would not fit in memory
func frameFormat(name string, o *universe.Options, logger *slog.Logger) string {
	switch name {
	case "avi":
		return "mjpeg"
	case "auto", "gif":
	default:
		return name
	}
	size := export.GIFMemory(o.Side, o.MaxSteps+1)
	if size <= export.MaxGIFMemory {
		return "gif"
	}
	if name == "auto" {
		logger.Info("animation too large for gif, writing mjpeg", "bytes", size)
		return "mjpeg"
	}
	logger.Warn("gif frames are kept in memory until the run ends", "bytes", size)
	return "gif"
}

//closeFrames finishes the frame files, so that nothing but the artifacts stays on disk
func closeFrames(frames []frameFile, logger *slog.Logger) {
	for _, f := range frames {
		if err := f.Close(); err != nil {
			logger.Warn("cannot close frame file", "path", f.Path(), "err", err)
		}
	}
}

//discard removes whatever a failed run managed to write
func discard(artifacts []string, logger *slog.Logger) {
	for _, p := range artifacts {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("cannot remove artifact", "path", p, "err", err)
		}
	}
}

func initOptions() (eo *EnvOptions, uo *universe.Options) {

	engineNames := universe.EngineNames()
	presetNames := universe.PresetNames()
	eo = &EnvOptions{
		engine:        "multithreaded",
		preset:        "classic",
		outDir:        "scratch",
		name:          "bacteria",
		frames:        "auto",
		dataset:       "msgpack",
		chart:         true,
		delay:         export.DefFrameDelay,
		fps:           export.DefFrameRate,
		progressEvery: view.DefProgressEvery,
	}
	ov := &overrides{density: math.NaN()}

	flaggy.SetName("bacteria")
	flaggy.SetDescription("Bacteria colony growth simulation on a square plate")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.String(&eo.preset, "p", "preset", "Parameter preset ["+strings.Join(presetNames, "|")+"]")
	flaggy.Int(&ov.side, "x", "side", "Side of the square plate")
	flaggy.Float64(&ov.density, "d", "density", "Probability of a cell to be seeded")
	flaggy.Int(&ov.steps, "s", "maxSteps", "Number of generations to simulate")
	flaggy.Int(&ov.maxHeight, "m", "maxHeight", "Maximum colony height")
	flaggy.String(&ov.rule, "r", "rule", "Colony rule [threshold|relative] (or a|b)")
	flaggy.Int(&ov.threshold, "t", "threshold", "Minimal generation maximum recorded as max points")
	flaggy.String(&ov.maxima, "", "maxima", "Max points to record [all|new]")
	flaggy.Int(&ov.bins, "b", "bins", "Bin count of the max height histogram")
	flaggy.Int(&ov.workers, "w", "workers", "Workers of the multithreaded engine")
	flaggy.Int64(&ov.seed, "", "seed", "Random seed")
	flaggy.Duration(&ov.interval, "i", "interval", "Interval between the steps, for example 150ms")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.String(&eo.engine, "e", "engine", "Engine to use ["+strings.Join(engineNames, "|")+"]")
	flaggy.String(&eo.template, "", "template", "Seed with a template instead of random data")
	flaggy.String(&eo.outDir, "o", "out", "Output directory")
	flaggy.String(&eo.name, "", "name", "Base name of the output files")
	flaggy.String(&eo.frames, "f", "frames", "Frame export [auto|gif|mjpeg|none]")
	flaggy.String(&eo.dataset, "", "dataset", "Dataset export [msgpack|json|none]")
	flaggy.Bool(&eo.csv, "", "csv", "Write the per-generation series as CSV")
	flaggy.Bool(&eo.chart, "", "chart", "Render the series and histogram charts")
	flaggy.Int(&eo.delay, "", "delay", "GIF frame delay in hundredths of a second")
	flaggy.Int(&eo.fps, "", "fps", "Frame rate of the video export")
	flaggy.Int(&eo.progressEvery, "", "progress", "Print the progress every N generations")

	flaggy.Parse()

	if _, ok := universe.Engines[eo.engine]; !ok {
		flaggy.ShowHelpAndExit("unknown engine")
	}
	preset, ok := universe.Presets[eo.preset]
	if !ok {
		flaggy.ShowHelpAndExit("unknown preset")
	}
	if err := ov.apply(&preset); err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}
	if eo.interactive && preset.Interval == 0 {
		preset.Interval = time.Millisecond * 100
	}
	uo = &preset
	return
}

//apply writes the flags that were given over the preset
func (ov *overrides) apply(o *universe.Options) error {
	if ov.side != 0 {
		o.Side = ov.side
	}
	if !math.IsNaN(ov.density) {
		o.SeedProbability = ov.density
	}
	if ov.steps != 0 {
		o.MaxSteps = ov.steps
	}
	if ov.maxHeight != 0 {
		o.MaxColonyHeight = ov.maxHeight
	}
	if ov.rule != "" {
		r, err := universe.ParseColonyRule(ov.rule)
		if err != nil {
			return err
		}
		o.ColonyRule = r
	}
	if ov.threshold != 0 {
		o.GrowthThreshold = ov.threshold
	}
	switch ov.maxima {
	case "":
	case "all":
		o.OnlyNewMaxima = false
	case "new":
		o.OnlyNewMaxima = true
	default:
		return fmt.Errorf("unknown max points mode %q", ov.maxima)
	}
	if ov.bins != 0 {
		o.HistogramBins = ov.bins
	}
	if ov.workers != 0 {
		o.Workers = ov.workers
	}
	if ov.seed != 0 {
		o.Seed = ov.seed
	}
	if ov.interval != 0 {
		o.Interval = ov.interval
	}
	return nil
}
