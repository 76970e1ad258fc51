package universe

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	ErrInvalidOptions  = errors.New("invalid universe options")
	ErrUnknownTemplate = errors.New("unknown template")
)

//Options represents the Universe's configurable options
type Options struct {
	Side            int
	SeedProbability float64
	MaxSteps        int
	MaxColonyHeight int
	ColonyRule      ColonyRule
	GrowthThreshold int  //minimal generation maximum for max points, 0 means MaxColonyHeight-1
	OnlyNewMaxima   bool //record only max points that grew on the last generation
	HistogramBins   int
	Workers         int   //used by the multithreaded engine, 0 means one per CPU
	Seed            int64 //random seed, 0 means time based
	Interval        time.Duration
	MaxSkippedTicks int
	Advanced        map[string]interface{} //advanced options (engine specific)
}

//default options
const (
	DefSimulationInterval = 0
	DefMaxSteps           = 100
	DefSide               = 2000
	DefSeedProbability    = 0.005
	DefMaxColonyHeight    = 5
	DefGrowthThreshold    = 2
	DefMaxSkippedTicks    = 5
	MaxSide               = math.MaxUint16
	MaxColonyHeightLimit  = math.MaxUint8 //heights are exported as one byte per cell
)

var DefaultUniverseOptions = Options{
	Side:            DefSide,
	SeedProbability: DefSeedProbability,
	MaxSteps:        DefMaxSteps,
	MaxColonyHeight: DefMaxColonyHeight,
	ColonyRule:      ColonyRuleThreshold,
	GrowthThreshold: DefGrowthThreshold,
	HistogramBins:   DefHistogramBins,
	Interval:        DefSimulationInterval,
	MaxSkippedTicks: DefMaxSkippedTicks,
}

//Presets are the named parameter sets of the known growth experiments
var Presets = map[string]Options{
	"classic": DefaultUniverseOptions,
	"colony": {
		Side:            1000,
		SeedProbability: 0.01,
		MaxSteps:        200,
		MaxColonyHeight: 8,
		ColonyRule:      ColonyRuleRelative,
		OnlyNewMaxima:   true,
		HistogramBins:   DefHistogramBins,
		MaxSkippedTicks: DefMaxSkippedTicks,
	},
	"towers": {
		Side:            600,
		SeedProbability: 0.02,
		MaxSteps:        400,
		MaxColonyHeight: 16,
		ColonyRule:      ColonyRuleRelative,
		OnlyNewMaxima:   true,
		HistogramBins:   DefHistogramBins,
		MaxSkippedTicks: DefMaxSkippedTicks,
	},
}

//PresetNames returns the sorted preset names
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for k := range Presets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

//Validate checks the options before any simulation work starts
func (o *Options) Validate() error {
	switch {
	case o.Side <= 0 || o.Side > MaxSide:
		return fmt.Errorf("%w: side %d is outside [1, %d]", ErrInvalidOptions, o.Side, MaxSide)
	case math.IsNaN(o.SeedProbability) || o.SeedProbability < 0 || o.SeedProbability > 1:
		return fmt.Errorf("%w: seed probability %v is outside [0, 1]", ErrInvalidOptions, o.SeedProbability)
	case o.MaxSteps <= 0:
		return fmt.Errorf("%w: step count must be positive, got %d", ErrInvalidOptions, o.MaxSteps)
	case o.MaxColonyHeight < 2 || o.MaxColonyHeight > MaxColonyHeightLimit:
		return fmt.Errorf("%w: max colony height %d is outside [2, %d]", ErrInvalidOptions, o.MaxColonyHeight, MaxColonyHeightLimit)
	case o.GrowthThreshold < 0:
		return fmt.Errorf("%w: negative growth threshold %d", ErrInvalidOptions, o.GrowthThreshold)
	case o.HistogramBins < 0:
		return fmt.Errorf("%w: negative histogram bin count %d", ErrInvalidOptions, o.HistogramBins)
	case o.Workers < 0:
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidOptions, o.Workers)
	}
	if _, ok := colonyRuleNames[o.ColonyRule]; !ok {
		return fmt.Errorf("%w: unknown colony rule %v", ErrInvalidOptions, o.ColonyRule)
	}
	return nil
}

//Threshold returns the generation maximum from which max points are recorded
func (o *Options) Threshold() int {
	if o.GrowthThreshold > 0 {
		return o.GrowthThreshold
	}
	return o.MaxColonyHeight - 1
}

//Rules returns the rule engine configured by the options
func (o *Options) Rules() Rules {
	return Rules{MaxColonyHeight: o.MaxColonyHeight, Colony: o.ColonyRule}
}
