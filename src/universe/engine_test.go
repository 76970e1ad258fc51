package universe

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

const waitTimeout = 10 * time.Second

func testOptions(side int, steps int) *Options {
	o := DefaultUniverseOptions
	o.Side = side
	o.MaxSteps = steps
	o.Seed = 42
	o.Interval = 0
	return &o
}

func newTestUniverse(t *testing.T, engine string, o *Options) (Universe, chan Status) {
	t.Helper()
	stateCh := make(chan Status, 100)
	u, err := Engines[engine](o, stateCh)
	if err != nil {
		t.Fatalf("%s: %v", engine, err)
	}
	t.Cleanup(u.Close)
	return u, stateCh
}

//waitFor reads the status updates until one of the modes is reached
func waitFor(t *testing.T, stateCh chan Status, modes ...RunningState) Status {
	t.Helper()
	timeout := time.After(waitTimeout)
	for {
		select {
		case st := <-stateCh:
			for _, m := range modes {
				if st.RunningMode == m {
					return st
				}
			}
		case <-timeout:
			t.Fatalf("no status in %v within %v", modes, waitTimeout)
		}
	}
}

func heights(a Area) []uint16 {
	h := make([]uint16, len(a.Cells))
	for i, c := range a.Cells {
		h[i] = c.Height
	}
	return h
}

func liveCells(a Area) [][2]int {
	var cells [][2]int
	for _, c := range a.Cells {
		if c.Height > 0 {
			cells = append(cells, [2]int{int(c.Row), int(c.Col)})
		}
	}
	return cells
}

func TestBlinker(t *testing.T) {
	horizontal := [][2]int{{1, 1}, {1, 2}, {1, 3}}
	vertical := [][2]int{{0, 2}, {1, 2}, {2, 2}}
	for _, e := range EngineNames() {
		t.Run(e, func(t *testing.T) {
			u, stateCh := newTestUniverse(t, e, testOptions(4, 10))
			if err := u.SettleTemplate("blinker"); err != nil {
				t.Fatal(err)
			}
			if got := liveCells(u.Area()); fmt.Sprint(got) != fmt.Sprint(horizontal) {
				t.Fatalf("settled cells = %v, want %v", got, horizontal)
			}
			for gen, want := range [][][2]int{vertical, horizontal, vertical} {
				u.Step()
				st := waitFor(t, stateCh, RunningStateManual)
				if st.Generation != gen+1 {
					t.Errorf("generation = %d, want %d", st.Generation, gen+1)
				}
				if got := liveCells(u.Area()); fmt.Sprint(got) != fmt.Sprint(want) {
					t.Errorf("generation %d cells = %v, want %v", gen+1, got, want)
				}
				if st.TotalHeight != 3 || st.MaxHeight != 1 {
					t.Errorf("generation %d total %d max %d, want 3 and 1", gen+1, st.TotalHeight, st.MaxHeight)
				}
			}
		})
	}
}

func TestRingRaisesColonySeed(t *testing.T) {
	u, stateCh := newTestUniverse(t, "base", testOptions(5, 10))
	if err := u.SettleTemplate("ring"); err != nil {
		t.Fatal(err)
	}
	u.Step()
	waitFor(t, stateCh, RunningStateManual)
	if h := u.Area().Height(2, 2); h != 1 {
		t.Errorf("ring center height = %d, want 1", h)
	}
}

func TestEnginesAgree(t *testing.T) {
	for _, rule := range []ColonyRule{ColonyRuleThreshold, ColonyRuleRelative} {
		t.Run(rule.String(), func(t *testing.T) {
			var want []uint16
			var wantStats Statistics
			for _, e := range EngineNames() {
				o := testOptions(48, 30)
				o.SeedProbability = 0.3
				o.ColonyRule = rule
				o.Workers = 5
				u, stateCh := newTestUniverse(t, e, o)
				u.SettleWithRandomData()
				u.Run()
				st := waitFor(t, stateCh, RunningStateFinished, RunningStateFailed)
				if st.RunningMode != RunningStateFinished {
					t.Fatalf("%s: run failed: %v", e, st.Err)
				}
				got := heights(u.Area())
				stats := u.Statistics()
				if want == nil {
					want, wantStats = got, stats
					continue
				}
				if fmt.Sprint(got) != fmt.Sprint(want) {
					t.Errorf("%s: final grid differs from %s", e, EngineNames()[0])
				}
				if fmt.Sprint(stats) != fmt.Sprint(wantStats) {
					t.Errorf("%s: statistics differ from %s", e, EngineNames()[0])
				}
			}
		})
	}
}

func TestRunIsDeterministic(t *testing.T) {
	var grids [2][]uint16
	for i := range grids {
		o := testOptions(32, 20)
		o.SeedProbability = 0.25
		u, stateCh := newTestUniverse(t, "multithreaded", o)
		u.SettleWithRandomData()
		u.Run()
		waitFor(t, stateCh, RunningStateFinished)
		grids[i] = heights(u.Area())
	}
	if fmt.Sprint(grids[0]) != fmt.Sprint(grids[1]) {
		t.Error("runs with the same seed ended on different grids")
	}
}

func TestHeightsStayBounded(t *testing.T) {
	for _, m := range []int{2, 3, 5} {
		for _, rule := range []ColonyRule{ColonyRuleThreshold, ColonyRuleRelative} {
			o := testOptions(40, 60)
			o.SeedProbability = 0.4
			o.MaxColonyHeight = m
			o.ColonyRule = rule
			u, stateCh := newTestUniverse(t, "simple", o)
			u.SettleWithRandomData()
			u.Run()
			waitFor(t, stateCh, RunningStateFinished)
			limit := float64(max(m, 2))
			for gen, h := range u.Statistics().MaxHeights {
				if h > limit {
					t.Errorf("M=%d %v: generation %d reached height %v", m, rule, gen, h)
				}
			}
		}
	}
}

func TestEmptyPlate(t *testing.T) {
	o := testOptions(8, 1)
	o.SeedProbability = 0
	u, stateCh := newTestUniverse(t, "simple", o)
	u.SettleWithRandomData()
	u.Run()
	st := waitFor(t, stateCh, RunningStateFinished)
	if st.Generation != 1 {
		t.Errorf("finished at generation %d, want 1", st.Generation)
	}
	stats := u.Statistics()
	if fmt.Sprint(stats.TotalHeights) != "[0 0]" {
		t.Errorf("total heights = %v, want [0 0]", stats.TotalHeights)
	}
	if fmt.Sprint(stats.MaxHeights) != "[1 0]" {
		t.Errorf("max heights = %v, want [1 0]", stats.MaxHeights)
	}
	if len(stats.MaxPoints) != 0 {
		t.Errorf("max points = %v, want none", stats.MaxPoints)
	}
	if len(stats.Histogram) == 0 {
		t.Error("finished run has no histogram")
	}
}

func TestFinishedRunIgnoresSteps(t *testing.T) {
	u, stateCh := newTestUniverse(t, "base", testOptions(4, 1))
	u.Step()
	waitFor(t, stateCh, RunningStateFinished)
	u.Step()
	u.Run()
	u.Clear()
	st := waitFor(t, stateCh, RunningStateManual)
	if st.Generation != 0 {
		t.Errorf("generation after clear = %d, want 0", st.Generation)
	}
}

func TestStop(t *testing.T) {
	o := testOptions(16, 100000)
	o.Interval = time.Millisecond
	u, stateCh := newTestUniverse(t, "simple", o)
	u.SettleWithRandomData()
	u.Run()
	waitFor(t, stateCh, RunningStateRun)
	u.Stop()
	waitFor(t, stateCh, RunningStateManual)
	time.Sleep(20 * time.Millisecond)
	gen := u.Status().Generation
	time.Sleep(20 * time.Millisecond)
	if st := u.Status(); st.Generation != gen || st.RunningMode != RunningStateManual {
		t.Errorf("stopped universe moved on to generation %d in mode %v", st.Generation, st.RunningMode)
	}
}

type recordingSink struct {
	sync.Mutex
	generations []int
	frames      [][]byte
	failAt      int
}

var errSink = errors.New("sink is full")

func (s *recordingSink) WriteFrame(generation int, pixels []byte) error {
	s.Lock()
	defer s.Unlock()
	if s.failAt > 0 && generation == s.failAt {
		return errSink
	}
	s.generations = append(s.generations, generation)
	s.frames = append(s.frames, append([]byte(nil), pixels...))
	return nil
}

type datasetRecorder struct {
	info  RunInfo
	stats Statistics
	calls int
}

func (d *datasetRecorder) WriteDataset(info RunInfo, stats Statistics) error {
	d.info, d.stats = info, stats
	d.calls++
	return nil
}

func TestSinks(t *testing.T) {
	u, stateCh := newTestUniverse(t, "multithreaded", testOptions(4, 3))
	frames := &recordingSink{}
	dataset := &datasetRecorder{}
	u.AddFrameSink(frames)
	u.AddDatasetSink(dataset)
	if err := u.SettleTemplate("blinker"); err != nil {
		t.Fatal(err)
	}
	u.Run()
	waitFor(t, stateCh, RunningStateFinished)

	frames.Lock()
	defer frames.Unlock()
	if fmt.Sprint(frames.generations) != "[0 1 2 3]" {
		t.Errorf("frames of generations %v, want [0 1 2 3]", frames.generations)
	}
	if got := frames.frames[0]; len(got) != 16 || got[4+1] != 1 || got[4+2] != 1 || got[4+3] != 1 {
		t.Errorf("first frame = %v, want the horizontal blinker", got)
	}
	if dataset.calls != 1 {
		t.Fatalf("dataset written %d times, want 1", dataset.calls)
	}
	if dataset.info.Engine != "multithreaded" || dataset.info.Side != 4 || dataset.info.Steps != 3 {
		t.Errorf("run info = %+v", dataset.info)
	}
	if len(dataset.stats.MaxHeights) != 4 || len(dataset.stats.Histogram) == 0 {
		t.Errorf("dataset statistics = %+v", dataset.stats)
	}
}

func TestFailingSinkFailsTheRun(t *testing.T) {
	u, stateCh := newTestUniverse(t, "simple", testOptions(4, 10))
	u.AddFrameSink(&recordingSink{failAt: 2})
	if err := u.SettleTemplate("blinker"); err != nil {
		t.Fatal(err)
	}
	u.Run()
	st := waitFor(t, stateCh, RunningStateFailed, RunningStateFinished)
	if st.RunningMode != RunningStateFailed {
		t.Fatalf("run ended in mode %v, want failed", st.RunningMode)
	}
	if !errors.Is(st.Err, errSink) {
		t.Errorf("run error = %v, want %v", st.Err, errSink)
	}
	if st.Generation != 2 {
		t.Errorf("run failed at generation %d, want 2", st.Generation)
	}
}

func TestUnknownTemplate(t *testing.T) {
	u, _ := newTestUniverse(t, "base", testOptions(4, 1))
	if err := u.SettleTemplate("glider"); !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("SettleTemplate(glider) error = %v, want ErrUnknownTemplate", err)
	}
}

func TestInverseCell(t *testing.T) {
	u, _ := newTestUniverse(t, "base", testOptions(4, 1))
	u.InverseCell(3, 1)
	if h := u.Area().Height(1, 3); h != 1 {
		t.Errorf("planted cell height = %d, want 1", h)
	}
	if st := u.Status(); st.TotalHeight != 1 {
		t.Errorf("total height = %d, want 1", st.TotalHeight)
	}
	u.InverseCell(3, 1)
	u.InverseCell(7, 7)
	if h := u.Area().Height(1, 3); h != 0 {
		t.Errorf("removed cell height = %d, want 0", h)
	}
}

func TestAreaWindowFollowsGenerations(t *testing.T) {
	u, stateCh := newTestUniverse(t, "simple", testOptions(6, 10))
	if err := u.SettleTemplate("blinker"); err != nil {
		t.Fatal(err)
	}
	u.Step()
	waitFor(t, stateCh, RunningStateManual)
	w := u.AreaWindow(3)
	if w.Side != 3 {
		t.Fatalf("window side = %d, want 3", w.Side)
	}
	if got := liveCells(w); fmt.Sprint(got) != "[[0 2] [1 2] [2 2]]" {
		t.Errorf("window cells = %v, want the vertical blinker", got)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(o *Options)
	}{
		{"zero side", func(o *Options) { o.Side = 0 }},
		{"huge side", func(o *Options) { o.Side = MaxSide + 1 }},
		{"negative probability", func(o *Options) { o.SeedProbability = -0.1 }},
		{"probability above one", func(o *Options) { o.SeedProbability = 1.5 }},
		{"no steps", func(o *Options) { o.MaxSteps = 0 }},
		{"colony height too low", func(o *Options) { o.MaxColonyHeight = 1 }},
		{"colony height too high", func(o *Options) { o.MaxColonyHeight = MaxColonyHeightLimit + 1 }},
		{"negative threshold", func(o *Options) { o.GrowthThreshold = -1 }},
		{"negative workers", func(o *Options) { o.Workers = -2 }},
		{"unknown rule", func(o *Options) { o.ColonyRule = ColonyRule(7) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultUniverseOptions
			tt.modify(&o)
			if err := o.Validate(); !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("Validate() = %v, want ErrInvalidOptions", err)
			}
			for _, e := range EngineNames() {
				if u, err := Engines[e](&o, nil); err == nil || u != nil {
					t.Errorf("%s accepted invalid options", e)
				}
			}
		})
	}
	for _, name := range PresetNames() {
		o := Presets[name]
		if err := o.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestOptionsThreshold(t *testing.T) {
	o := DefaultUniverseOptions
	o.MaxColonyHeight = 8
	o.GrowthThreshold = 0
	if got := o.Threshold(); got != 7 {
		t.Errorf("Threshold() = %d, want 7", got)
	}
	o.GrowthThreshold = 3
	if got := o.Threshold(); got != 3 {
		t.Errorf("Threshold() = %d, want 3", got)
	}
}
