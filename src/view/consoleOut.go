package view

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"

	"bacteria/src/universe"
)

const (
	DefProgressEvery  = 10
	histogramBarWidth = 40
)

//ConsoleOut prints the progress of a batch run
type ConsoleOut struct {
	u             universe.Universe
	w             io.Writer
	startTime     time.Time
	progressEvery int
}

func NewConsoleOut() *ConsoleOut {
	return &ConsoleOut{w: os.Stdout, progressEvery: DefProgressEvery}
}

//NewConsoleOutTo prints to w every progressEvery generations
func NewConsoleOutTo(w io.Writer, progressEvery int) *ConsoleOut {
	if progressEvery <= 0 {
		progressEvery = DefProgressEvery
	}
	return &ConsoleOut{w: w, progressEvery: progressEvery}
}

func (c *ConsoleOut) Refresh() {
	st := c.u.Status()
	switch st.RunningMode {
	case universe.RunningStateFinished:
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		stats := c.u.Statistics()
		resultData := map[string]interface{}{
			"Last generation": st.Generation,
			"Total time":      totalTime,
			"Total height":    st.TotalHeight,
			"Max height":      st.MaxHeight,
			"Max points":      len(stats.MaxPoints),
		}
		fmt.Fprintln(c.w, aurora.Green("\nFinished:").Bold())
		c.printHashData(resultData)
		c.printHistogram(stats.Histogram)
	case universe.RunningStateFailed:
		fmt.Fprintf(c.w, "\n%s %v\n", aurora.Red("Failed:").Bold(), st.Err)
	case universe.RunningStateRun, universe.RunningStateManual:
		if st.Generation > 0 && st.Generation%c.progressEvery == 0 {
			fmt.Fprintf(c.w, "  Generation %v: total height %v, max height %v, %v\n",
				aurora.Cyan(st.Generation), st.TotalHeight, st.MaxHeight, st.IterationTime.Round(time.Microsecond))
		}
	}
}

func (c *ConsoleOut) Register(u universe.Universe) {
	c.u = u
	o := c.u.Options()
	fmt.Fprintln(c.w, aurora.Green("Running configuration:").Bold())
	fmt.Fprintf(c.w, "  Dimension: %v x %v\n", o.Side, o.Side)
	fmt.Fprintf(c.w, "  Seed probability: %v\n", o.SeedProbability)
	fmt.Fprintf(c.w, "  Max colony height: %v\n", o.MaxColonyHeight)
	fmt.Fprintf(c.w, "  Growth threshold: %v\n", o.Threshold())
	fmt.Fprintf(c.w, "  Max iterations: %v steps\n", o.MaxSteps)
	fmt.Fprintf(c.w, "  Random seed: %v\n", o.Seed)
	c.printHashData(o.Advanced)
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	fmt.Fprintln(c.w, "\nSimulation started...")
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		fmt.Fprintf(c.w, "  %s: %v\n", propName, d[propName])
	}
}

//printHistogram draws the max height distribution as horizontal bars
func (c *ConsoleOut) printHistogram(bins []universe.Bin) {
	if len(bins) == 0 {
		return
	}
	top := 0
	for _, b := range bins {
		if b.Count > top {
			top = b.Count
		}
	}
	fmt.Fprintln(c.w, aurora.Green("Max height distribution:").Bold())
	for _, b := range bins {
		n := 0
		if top > 0 {
			n = b.Count * histogramBarWidth / top
		}
		fmt.Fprintf(c.w, "  [%6.2f, %6.2f) %4d %s\n", b.Lower, b.Upper, b.Count, aurora.Green(strings.Repeat("█", n)))
	}
}
