package universe

import (
	"runtime"
	"sync"
)

/*
	Universe implementation with multithreaded computation algorithm
	the field is splitted into the row strips each of which is computed by individual goroutine
	every generation runs two fork-join phases over the same strips:
	neighbors of all cells are resolved from the unmodified current area, and only then the cells are ticked
*/

const (
	DefMinRowsPerWorker = 3 //minimum rows for one worker
)

type MultithreadedUniverse struct {
	*BaseUniverse
	workers   int
	tmpBuff   Area
	workAreas []workArea
}

//workArea describe the working area for the worker: the cells [from, to) of the row strip y1..y2
type workArea struct {
	y1      int
	y2      int
	from    int
	to      int
	summary GenerationSummary
}

//newWorkArea creates new work area
func newWorkArea(side int, y1 int, y2 int) workArea {
	return workArea{
		y1:   y1,
		y2:   y2,
		from: y1 * side,
		to:   (y2 + 1) * side,
	}
}

func NewMultithreadedUniverse(o *Options, stateCh chan Status) (Universe, error) {
	bu, err := NewBaseUniverse(o, stateCh)
	if err != nil {
		return nil, err
	}
	mu := MultithreadedUniverse{BaseUniverse: bu}
	//redefine the nextIteration
	mu.BaseUniverse.nextIteration = mu.nextIteration

	mu.workers = mu.options.Workers
	if mu.workers == 0 {
		mu.workers = runtime.NumCPU()
	}
	side := mu.area.Side
	linesPerWorker := side / mu.workers
	if linesPerWorker < DefMinRowsPerWorker {
		linesPerWorker = DefMinRowsPerWorker
	} else if linesPerWorker*mu.workers < side {
		linesPerWorker++
	}
	mu.workAreas = make([]workArea, 0, mu.workers)
	for y1 := 0; y1 < side; y1 += linesPerWorker {
		y2 := y1 + linesPerWorker - 1
		if y2 > side-1 {
			y2 = side - 1
		}
		mu.workAreas = append(mu.workAreas, newWorkArea(side, y1, y2))
	}
	mu.workers = len(mu.workAreas)
	mu.tmpBuff = createArea(side)
	mu.options.Advanced["engine"] = "multithreaded"
	mu.options.Advanced["Workers"] = mu.workers
	mu.options.Advanced["Rows per worker"] = linesPerWorker
	return &mu, nil
}

//nextIteration calculates next state for the universe
//each phase starts the goroutines and waits for all of them before the next one begins
func (mu *MultithreadedUniverse) nextIteration() (prev Area, summary GenerationSummary) {
	prev = mu.area.Area
	next := mu.tmpBuff
	mu.forEachArea(func(wa *workArea) {
		mu.resolveRange(prev, next, wa.from, wa.to)
	})
	mu.forEachArea(func(wa *workArea) {
		wa.summary = mu.tickRange(next, wa.from, wa.to)
	})
	for _, wa := range mu.workAreas {
		summary.merge(wa.summary)
	}
	mu.area.Area, mu.tmpBuff = next, prev
	return
}

//forEachArea runs fn for every work area in its own goroutine and waits for all of them
func (mu *MultithreadedUniverse) forEachArea(fn func(wa *workArea)) {
	var waitGroup sync.WaitGroup
	for i := range mu.workAreas {
		workArea := &mu.workAreas[i]
		waitGroup.Add(1)
		go func() {
			fn(workArea)
			waitGroup.Done()
		}()
	}
	waitGroup.Wait()
}
