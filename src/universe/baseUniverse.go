package universe

import (
	"math/rand"
	"sync"
	"time"
)

//Status represents the status of the Universe at concrete moment
type Status struct {
	Generation    int
	RunningMode   RunningState
	TotalHeight   uint64
	MaxHeight     uint16
	MaxPoints     int
	IterationTime time.Duration
	Err           error                  //set when the run failed
	Details       map[string]interface{} //advanced details (engine specific)
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(u Universe)
	Start()
}

//Template represent the seeding template which can used to settle the universe with predefined data
type Template struct {
	Name        string  //template name
	Descr       string  //template descr
	Coordinates [][]int //array of [x,y] coordinates
}

//The universe running status at the concrete moment
type RunningState int

const (
	RunningStateManual   = 0x0
	RunningStateStep     = 0x1
	RunningStateRun      = 0x2
	RunningStateFinished = 0x3
	RunningStateFailed   = 0x4
)

//BaseUniverse is the base universe's engine
//implements Universe interface
//can be used to create different implementations by redefining nextIteration func
type BaseUniverse struct {
	options Options
	rules   Rules
	rnd     *rand.Rand
	state   struct {
		Status
		sync.Mutex
	}
	runID int //guarded by the state lock
	area  struct {
		Area
		sync.Mutex
	}
	collector     *Collector
	pixels        []byte
	stateCh       chan Status
	views         []Viewer
	frameSinks    []FrameSink
	datasetSinks  []DatasetSink
	templates     map[string]Template
	controlCh     chan func()
	closeCh       chan bool
	nextIteration func() (prev Area, summary GenerationSummary)
}

//NewBaseUniverse creates the BaseUniverse instance
func NewBaseUniverse(o *Options, stateCh chan Status) (*BaseUniverse, error) {
	if o == nil {
		o = &DefaultUniverseOptions
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	u := BaseUniverse{
		options:   *o,
		rules:     o.Rules(),
		controlCh: make(chan func(), 1),
		closeCh:   make(chan bool, 1),
		stateCh:   stateCh,
		templates: map[string]Template{},
		collector: NewCollector(o.Threshold(), o.OnlyNewMaxima, o.HistogramBins),
	}
	if u.options.Seed == 0 {
		u.options.Seed = time.Now().UnixNano()
	}
	u.rnd = rand.New(rand.NewSource(u.options.Seed))
	u.options.Advanced = map[string]interface{}{
		"engine":      "base",
		"colony rule": u.options.ColonyRule.String(),
	}
	//nextIteration can be implemented by successor
	u.nextIteration = u._nextIteration
	u.state.Details = make(map[string]interface{})

	u.area.Area = createArea(o.Side)
	for _, tmpl := range DefaultTemplates {
		u.AddTemplate(tmpl)
	}
	u.restart()
	go u.mainLoop()
	return &u, nil
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (u *BaseUniverse) AddTemplate(tmpl Template) {
	u.templates[tmpl.Name] = tmpl
}

//Settle settles the universe with data and starts it over from generation 0
//vc - array of x,y coordinates
func (u *BaseUniverse) Settle(vc [][]int) {
	u.area.Lock()
	u.settle(vc, 1)
	u.area.Unlock()
	u.restart()
	u.refreshView()
}

//SettleTemplate populates the universe with the seeding template
func (u *BaseUniverse) SettleTemplate(name string) error {
	tmpl, ok := u.templates[name]
	if !ok {
		return ErrUnknownTemplate
	}
	u.Settle(tmpl.Coordinates)
	return nil
}

//SettleWithRandomData replaces the universe with a randomly seeded one, returns immediately
func (u *BaseUniverse) SettleWithRandomData() {
	u.controlCh <- func() {
		if m := u.runningMode(); m == RunningStateRun || m == RunningStateStep {
			return
		}
		u.area.Lock()
		p := u.options.SeedProbability
		for i := range u.area.Cells {
			u.area.Cells[i] = SeedCell(i/u.area.Side, i%u.area.Side, p, u.rnd)
		}
		u.area.Unlock()
		u.restart()
		u.refreshView()
	}
}

//InverseCell plants a single-cell bacterium at point x, y or removes whatever grows there
func (u *BaseUniverse) InverseCell(x int, y int) {
	u.area.Lock()
	if !u.area.Contains(y, x) {
		u.area.Unlock()
		return
	}
	c := &u.area.Cells[u.area.Index(y, x)]
	if c.Height == 0 {
		c.Height = 1
	} else {
		c.Height = 0
	}
	s := u.area.Summarize()
	u.area.Unlock()
	u.state.Lock()
	u.state.TotalHeight, u.state.MaxHeight = s.TotalHeight, s.MaxHeight
	u.state.Unlock()
	u.refreshView()
}

//RegisterViewer registers the viewer - the universe will call the viewer when the state is changed
func (u *BaseUniverse) RegisterViewer(v Viewer) {
	u.views = append(u.views, v)
	v.Register(u)
}

//AddFrameSink registers the sink for the frames of the following generations
func (u *BaseUniverse) AddFrameSink(s FrameSink) {
	u.area.Lock()
	u.frameSinks = append(u.frameSinks, s)
	u.area.Unlock()
}

//AddDatasetSink registers the sink for the statistics of the finished run
func (u *BaseUniverse) AddDatasetSink(s DatasetSink) {
	u.area.Lock()
	u.datasetSinks = append(u.datasetSinks, s)
	u.area.Unlock()
}

//StateCh returns the channel with the universe's status updates
func (u *BaseUniverse) StateCh() chan Status {
	return u.stateCh
}

//Status returns current universe status represented by Status struct
func (u *BaseUniverse) Status() Status {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.Status
}

//Options returns current universe configuration represented by Options struct
func (u *BaseUniverse) Options() Options {
	return u.options
}

//Area returns a snapshot of the current universe area
func (u *BaseUniverse) Area() Area {
	u.area.Lock()
	defer u.area.Unlock()
	return u.area.clone()
}

//AreaWindow returns a snapshot of the top-left n x n corner of the current area
func (u *BaseUniverse) AreaWindow(n int) Area {
	u.area.Lock()
	defer u.area.Unlock()
	return u.area.window(n)
}

//Statistics returns the series recorded so far, with the histogram once the run is finished
func (u *BaseUniverse) Statistics() Statistics {
	u.area.Lock()
	defer u.area.Unlock()
	if u.runningMode() == RunningStateFinished {
		return u.collector.Finish()
	}
	return u.collector.Snapshot()
}

//RunInfo describes the current run
func (u *BaseUniverse) RunInfo() RunInfo {
	engine, _ := u.options.Advanced["engine"].(string)
	return RunInfo{
		Engine:          engine,
		Side:            u.options.Side,
		SeedProbability: u.options.SeedProbability,
		Steps:           u.options.MaxSteps,
		MaxColonyHeight: u.options.MaxColonyHeight,
		ColonyRule:      u.options.ColonyRule.String(),
		GrowthThreshold: u.options.Threshold(),
		OnlyNewMaxima:   u.options.OnlyNewMaxima,
		Seed:            u.options.Seed,
	}
}

//Run starts the universe simulation, returns immediately
func (u *BaseUniverse) Run() {
	u.controlCh <- u.run
}

//Stop stops the universe simulation, returns immediately
//the Status struct will be written the stateCh on finish
func (u *BaseUniverse) Stop() {
	u.controlCh <- u.stop
}

//Step do one simulation step, returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (u *BaseUniverse) Step() {
	u.controlCh <- u.step
}

//Clear clears the universe (kill all cells and reset all counters), returns immediately
//the Status struct will be written to the stateCh on finish
func (u *BaseUniverse) Clear() {
	u.controlCh <- u.clear
}

//Close stops the main loop, close the channels, returns immediately
func (u *BaseUniverse) Close() {
	u.closeCh <- true
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (u *BaseUniverse) mainLoop() {
	var c = false
	for !c {
		select {
		case cmd := <-u.controlCh:
			cmd()
		case c = <-u.closeCh:

		}
	}
	close(u.closeCh)
	close(u.controlCh)
}

//settle sets the height at every x,y position
func (u *BaseUniverse) settle(vc [][]int, height uint16) {
	for _, v := range vc {
		if len(v) < 2 || !u.area.Contains(v[1], v[0]) {
			continue
		}
		u.area.Cells[u.area.Index(v[1], v[0])].Height = height
	}
}

//restart makes the current area generation 0: the series start over and the first frame is exported
func (u *BaseUniverse) restart() {
	u.area.Lock()
	u.collector.Begin(u.area.Area)
	s := u.area.Summarize()
	err := u.exportFrame(0)
	u.area.Unlock()

	u.state.Lock()
	u.state.Generation = 0
	u.state.TotalHeight = s.TotalHeight
	u.state.MaxHeight = s.MaxHeight
	u.state.MaxPoints = 0
	u.state.IterationTime = 0
	u.state.Err = nil
	if u.state.RunningMode == RunningStateFinished || u.state.RunningMode == RunningStateFailed {
		u.state.RunningMode = RunningStateManual
	}
	u.state.Unlock()
	if err != nil {
		u.fail(err)
	}
}

//runningMode returns the current running mode
func (u *BaseUniverse) runningMode() RunningState {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.RunningMode
}

//switchRunningState switch the state of the universe to RunningState
//also writes the new state to the stateCh to signal upper control software
func (u *BaseUniverse) switchRunningState(to RunningState) {
	u.state.Lock()
	u.state.RunningMode = to
	st := u.state.Status
	u.state.Unlock()
	if u.stateCh != nil {
		u.stateCh <- st
	}
}

//endStep switches to the state reached by a step
//views are refreshed before the status is published so they never lag behind the control software
func (u *BaseUniverse) endStep(to RunningState) {
	u.state.Lock()
	u.state.RunningMode = to
	u.state.Unlock()
	u.refreshView()
	u.switchRunningState(to)
}

//fail aborts the run with err
func (u *BaseUniverse) fail(err error) {
	u.state.Lock()
	u.state.Err = err
	u.state.Unlock()
	u.endStep(RunningStateFailed)
}

//run starts the universe simulation
//simulation will stop on Stop() calling or when the step count is reached
func (u *BaseUniverse) run() {
	u.state.Lock()
	if u.state.RunningMode != RunningStateManual {
		u.state.Unlock()
		return
	}
	u.runID++
	id := u.runID
	u.state.Unlock()
	u.switchRunningState(RunningStateRun)
	go func() {
		skipped := 0
		done := make(chan bool)
		defer close(done)
		for {
			mode, current := u.runState(id)
			if !current || (mode != RunningStateRun && mode != RunningStateStep) {
				break
			}
			if skipped > u.options.MaxSkippedTicks {
				u.controlCh <- u.stop
				break
			}
			//skip the tick if the universe is still in the calculation mode
			if mode != RunningStateStep {
				skipped = 0
				u.controlCh <- func() {
					if mode, current := u.runState(id); current && mode == RunningStateRun {
						u.step()
					}
					done <- true
				}
				<-done
			} else {
				skipped++
			}
			if u.options.Interval > 0 {
				time.Sleep(u.options.Interval)
			}
		}
	}()
}

//runState returns the running mode and whether the run id is still the latest one
func (u *BaseUniverse) runState(id int) (RunningState, bool) {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.RunningMode, u.runID == id
}

//stop stops the universe running cycle
func (u *BaseUniverse) stop() {
	if u.runningMode() == RunningStateRun {
		u.switchRunningState(RunningStateManual)
	}
}

//step computes the next generation of the entire universe
func (u *BaseUniverse) step() {
	rm := u.runningMode()
	if rm == RunningStateFinished || rm == RunningStateFailed || rm == RunningStateStep {
		return
	}
	u.switchRunningState(RunningStateStep)

	if err := u.advance(); err != nil {
		u.fail(err)
		return
	}
	if u.Status().Generation < u.options.MaxSteps {
		u.endStep(rm)
		return
	}
	if err := u.finish(); err != nil {
		u.fail(err)
		return
	}
	u.endStep(RunningStateFinished)
}

//advance computes one generation, records its statistics and exports its frame
func (u *BaseUniverse) advance() error {
	u.area.Lock()
	defer u.area.Unlock()
	start := time.Now()
	prev, summary := u.nextIteration()
	u.collector.Record(prev, u.area.Area, summary)
	elapsed := time.Since(start)

	u.state.Lock()
	u.state.Generation++
	u.state.TotalHeight = summary.TotalHeight
	u.state.MaxHeight = summary.MaxHeight
	u.state.MaxPoints = u.collector.MaxPoints()
	u.state.IterationTime = elapsed
	gen := u.state.Generation
	u.state.Unlock()

	return u.exportFrame(gen)
}

//exportFrame hands the current area to every frame sink, the area lock must be held
func (u *BaseUniverse) exportFrame(generation int) error {
	if len(u.frameSinks) == 0 {
		return nil
	}
	u.pixels = u.area.Pixels(u.pixels)
	for _, s := range u.frameSinks {
		if err := s.WriteFrame(generation, u.pixels); err != nil {
			return err
		}
	}
	return nil
}

//finish builds the final statistics and hands them to every dataset sink
func (u *BaseUniverse) finish() error {
	u.area.Lock()
	stats := u.collector.Finish()
	sinks := u.datasetSinks
	u.area.Unlock()
	info := u.RunInfo()
	for _, s := range sinks {
		if err := s.WriteDataset(info, stats); err != nil {
			return err
		}
	}
	return nil
}

//clear clears the unvierse data, reset all counters
func (u *BaseUniverse) clear() {
	u.area.Lock()
	for i := range u.area.Cells {
		u.area.Cells[i].Height = 0
	}
	u.area.Unlock()
	u.state.Lock()
	u.state.RunningMode = RunningStateManual
	u.state.Unlock()
	u.restart()
	u.switchRunningState(RunningStateManual)
	u.refreshView()
}

//_nextIteration does one simulation cycle
//the simplest implementation: creates the new area buffer with full size on each call
//neighbors of all cells are resolved from the current area first, then every cell of the new area is ticked
//the new area replaces the current one, the displaced area is returned for the statistics and dropped afterwards
func (u *BaseUniverse) _nextIteration() (prev Area, summary GenerationSummary) {
	prev = u.area.Area
	next := Area{Side: prev.Side, Cells: make([]Cell, len(prev.Cells))}
	u.resolveRange(prev, next, 0, len(prev.Cells))
	summary = u.tickRange(next, 0, len(next.Cells))
	u.area.Area = next
	return
}

//resolveRange copies the cells [from, to) of src into dst with their neighbors resolved from src
func (u *BaseUniverse) resolveRange(src Area, dst Area, from int, to int) {
	for i := from; i < to; i++ {
		c := src.Cells[i]
		c.neighbors = ResolveNeighbors(c, src)
		dst.Cells[i] = c
	}
}

//tickRange applies the rules to the cells [from, to) of a using their cached neighbors
func (u *BaseUniverse) tickRange(a Area, from int, to int) (s GenerationSummary) {
	for i := from; i < to; i++ {
		c := &a.Cells[i]
		h := u.rules.Next(c.Height, &c.neighbors)
		s.Changed = s.Changed || h != c.Height
		c.Height = h
		s.TotalHeight += uint64(h)
		if h > s.MaxHeight {
			s.MaxHeight = h
		}
	}
	return
}

//refreshView calls Refresh event for all registered views
func (u *BaseUniverse) refreshView() {
	for _, v := range u.views {
		v.Refresh()
	}
}
