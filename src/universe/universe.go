package universe

import "sort"

type Universe interface {
	Status() Status
	Options() Options
	Area() Area
	AreaWindow(n int) Area
	Statistics() Statistics
	StateCh() chan Status
	AddTemplate(tmpl Template)
	SettleTemplate(name string) error
	SettleWithRandomData()
	Settle(vc [][]int)
	InverseCell(x int, y int)
	RegisterViewer(v Viewer)
	AddFrameSink(s FrameSink)
	AddDatasetSink(s DatasetSink)
	Run()
	Stop()
	Step()
	Clear()
	Close()
}

//FrameSink receives one frame per generation, generation 0 included, in order
//pixels holds one byte per cell in row-major order, the value is the cell height
type FrameSink interface {
	WriteFrame(generation int, pixels []byte) error
}

//DatasetSink receives the statistics once the run is finished
type DatasetSink interface {
	WriteDataset(info RunInfo, stats Statistics) error
}

//RunInfo describes the run the statistics come from
type RunInfo struct {
	Engine          string
	Side            int
	SeedProbability float64
	Steps           int
	MaxColonyHeight int
	ColonyRule      string
	GrowthThreshold int
	OnlyNewMaxima   bool
	Seed            int64
}

//Engines are the universe constructors by engine name
var Engines = map[string]func(o *Options, stateCh chan Status) (Universe, error){
	"base": func(o *Options, stateCh chan Status) (Universe, error) {
		u, err := NewBaseUniverse(o, stateCh)
		if err != nil {
			return nil, err
		}
		return u, nil
	},
	"simple":        NewSimpleUniverse,
	"multithreaded": NewMultithreadedUniverse,
}

//EngineNames returns the sorted engine names
func EngineNames() (engineNames []string) {
	engineNames = make([]string, 0, len(Engines))
	for k := range Engines {
		engineNames = append(engineNames, k)
	}
	sort.Strings(engineNames)
	return
}
