package view

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"bacteria/src/universe"
)

const (
	plateView  = "plate"
	statusView = "status"
	configView = "configuration"
	legendView = "legend"
	helpView   = "help"
	headerView = "header"

	sidePanelWidth = 28
	configRows     = 6
	statusRows     = 7
)

type keyBinding struct {
	key      interface{}
	label    string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

//ConsoleUI is the interactive terminal view: the plate, its status and the controls
type ConsoleUI struct {
	u        universe.Universe
	g        *gocui.Gui
	bindings []keyBinding
	fillers  []string
}

var runningStateDescr = map[universe.RunningState]string{
	universe.RunningStateManual:   aurora.Colorize("waiting", aurora.BlueFg).String(),
	universe.RunningStateStep:     "growing",
	universe.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
	universe.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
	universe.RunningStateFailed:   aurora.Colorize("failed", aurora.RedFg).String(),
}

//HeightFillers returns one glyph per height, from the bare ground to the tallest colonies
func HeightFillers() []string {
	return []string{
		"░",
		aurora.Green("█").String(),
		aurora.BrightGreen("█").String(),
		aurora.Yellow("█").String(),
		aurora.BrightYellow("█").String(),
		aurora.Red("█").String(),
		aurora.BrightRed("█").String(),
		aurora.Magenta("█").String(),
	}
}

//filler returns the glyph of height h, heights past the last glyph share it
func (t *ConsoleUI) filler(h uint16) string {
	if int(h) >= len(t.fillers) {
		return t.fillers[len(t.fillers)-1]
	}
	return t.fillers[h]
}

func NewViewTerminal() *ConsoleUI {
	t := &ConsoleUI{fillers: HeightFillers()}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Panicln(err)
	}
	t.g = g
	t.g.Mouse = true
	t.bindings = []keyBinding{
		{key: gocui.KeyCtrlC, label: "^C", descr: "Exit", handler: t.cmdQuit},
		{key: 'n', label: "N", descr: "Next generation", handler: t.cmdStep},
		{key: 'r', label: "R", descr: "Run", handler: t.cmdRun},
		{key: 's', label: "S", descr: "Stop", handler: t.cmdStop},
		{key: 'c', label: "C", descr: "Clear", handler: t.cmdClear},
		{key: 'w', label: "W", descr: "Seed at random", handler: t.cmdSeed},
		{key: gocui.MouseLeft, label: "MOUSE", descr: "Plant or remove a cell", handler: t.cmdToggleCell, viewName: plateView},
	}
	t.g.SetManagerFunc(t.layout)
	for _, kb := range t.bindings {
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(_ *gocui.Gui, v *gocui.View) error { return h(v) }); err != nil {
			log.Panicln(err)
		}
	}
	return t
}

func (t *ConsoleUI) Register(u universe.Universe) {
	t.u = u
}

//Start blocks until the user quits
func (t *ConsoleUI) Start() {
	defer t.g.Close()
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
}

func (t *ConsoleUI) Refresh() {
	t.g.Update(func(g *gocui.Gui) error {
		t.drawPlate(g)
		t.drawText(g, statusView, statusLines(t.u.Status()))
		return nil
	})
}

//drawPlate renders the visible corner of the area into the plate view
func (t *ConsoleUI) drawPlate(g *gocui.Gui) {
	v, err := g.View(plateView)
	if err != nil {
		return
	}
	w, h := v.Size()
	a := t.u.AreaWindow(max(w, h))
	v.Clear()
	_, _ = fmt.Fprint(v, t.plateText(a, t.u.Options().Side, w, h))
}

//plateText draws a, the corner of a plate of side x side, as w x h glyphs
//the last line warns when the plate does not fit
func (t *ConsoleUI) plateText(a universe.Area, side int, w int, h int) string {
	var b bytes.Buffer
	cropped := side > w || side > h
	for row := 0; row < a.Side && row < h; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		if cropped && row == h-1 {
			b.WriteString(aurora.Red("The plate is larger than the viewing area").BgBlack().String())
			break
		}
		for col := 0; col < a.Side && col < w; col++ {
			b.WriteString(t.filler(a.Height(row, col)))
		}
	}
	return b.String()
}

//drawText replaces the content of the named view with lines
func (t *ConsoleUI) drawText(g *gocui.Gui, name string, lines []string) {
	v, err := g.View(name)
	if err != nil {
		return
	}
	v.Clear()
	_, _ = fmt.Fprint(v, strings.Join(lines, "\n"))
}

func prop(name string, format string, values ...interface{}) string {
	return " " + aurora.Green(name).String() + ": " + fmt.Sprintf(format, values...)
}

func statusLines(s universe.Status) []string {
	lines := []string{
		prop("Generation", "%v", s.Generation),
		prop("Total height", "%v", s.TotalHeight),
		prop("Max height", "%v", s.MaxHeight),
		prop("Max points", "%v", s.MaxPoints),
		prop("Step time", "%v", s.IterationTime.Round(time.Microsecond)),
		prop("Mode", "%v", runningStateDescr[s.RunningMode]),
	}
	if s.Err != nil {
		lines = append(lines, prop("Error", "%v", s.Err))
	}
	return lines
}

func configLines(o universe.Options) []string {
	return []string{
		prop("Plate", "%v x %v", o.Side, o.Side),
		prop("Seed prob.", "%v", o.SeedProbability),
		prop("Max height", "%v", o.MaxColonyHeight),
		prop("Colony rule", "%v", o.ColonyRule),
		prop("Interval", "%v", o.Interval),
		prop("Generations", "%v", o.MaxSteps),
	}
}

//legendLines pairs every glyph with the heights it stands for
func (t *ConsoleUI) legendLines(maxHeight int) []string {
	var lines []string
	for h := 0; h < len(t.fillers) && h <= maxHeight; h++ {
		label := fmt.Sprintf("%d", h)
		if h == len(t.fillers)-1 && maxHeight > h {
			label = fmt.Sprintf("%d-%d", h, maxHeight)
		}
		lines = append(lines, " "+t.fillers[h]+" "+label)
	}
	return lines
}

func (t *ConsoleUI) helpLine() string {
	items := make([]string, len(t.bindings))
	for i, kb := range t.bindings {
		items[i] = aurora.Green(kb.label).String() + ": " + kb.descr
	}
	return "KEYBINDINGS: " + strings.Join(items, ", ")
}

//ensureView creates the view on the first layout pass and moves it on the following ones
//fill is called once, when the view is created
func ensureView(g *gocui.Gui, name string, title string, x0, y0, x1, y1 int, fill func(v *gocui.View)) error {
	v, err := g.SetView(name, x0, y0, x1, y1)
	if err == nil {
		return nil
	}
	if err != gocui.ErrUnknownView || v == nil {
		return err
	}
	v.Title = title
	v.Frame = title != ""
	if fill != nil {
		fill(v)
	}
	return nil
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	o := t.u.Options()
	legend := t.legendLines(o.MaxColonyHeight)

	bottom := maxY - 5
	configBottom := 3 + configRows + 1
	statusTop := configBottom + 1
	statusBottom := statusTop + statusRows + 1
	if statusBottom+len(legend)+2 > bottom {
		for _, name := range []string{configView, legendView, statusView, plateView, helpView} {
			_ = g.DeleteView(name)
		}
		return t.header(g, maxY, "Terminal height too small")
	}
	if err := t.header(g, 3, "Bacteria growth simulation"); err != nil {
		return err
	}

	panels := []struct {
		name, title    string
		x0, y0, x1, y1 int
		lines          []string
	}{
		{configView, "Configuration", 0, 3, sidePanelWidth, configBottom, configLines(o)},
		{statusView, "Status", 0, statusTop, sidePanelWidth, statusBottom, statusLines(t.u.Status())},
		{legendView, "Heights", 0, statusBottom + 1, sidePanelWidth, bottom, legend},
	}
	for _, p := range panels {
		lines := p.lines
		if err := ensureView(g, p.name, p.title, p.x0, p.y0, p.x1, p.y1, func(v *gocui.View) {
			_, _ = fmt.Fprint(v, strings.Join(lines, "\n"))
		}); err != nil {
			return err
		}
	}
	if err := ensureView(g, plateView, "Plate", sidePanelWidth+1, 3, maxX-1, bottom, nil); err != nil {
		return err
	}
	t.drawPlate(g)

	return ensureView(g, helpView, "", -1, bottom, maxX, maxY-3, func(v *gocui.View) {
		_, _ = fmt.Fprintln(v, t.helpLine())
	})
}

func (t *ConsoleUI) header(g *gocui.Gui, height int, text string) error {
	maxX, _ := g.Size()
	v, err := g.SetView(headerView, -1, -1, maxX+1, height)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	if v == nil {
		return nil
	}
	if err == gocui.ErrUnknownView {
		v.Frame = false
		v.BgColor = gocui.ColorCyan
		v.FgColor = gocui.ColorBlack
	}
	v.Clear()
	pad := 0
	if maxX > len(text) {
		pad = (maxX - len(text)) / 2
	}
	_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", pad)+text)
	return nil
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	return gocui.ErrQuit
}

func (t *ConsoleUI) cmdStep(_ *gocui.View) error {
	t.u.Step()
	return nil
}

func (t *ConsoleUI) cmdRun(_ *gocui.View) error {
	t.u.Run()
	return nil
}

func (t *ConsoleUI) cmdStop(_ *gocui.View) error {
	t.u.Stop()
	return nil
}

func (t *ConsoleUI) cmdClear(_ *gocui.View) error {
	t.u.Clear()
	return nil
}

func (t *ConsoleUI) cmdSeed(_ *gocui.View) error {
	t.u.SettleWithRandomData()
	return nil
}

//cmdToggleCell plants or removes the cell under the mouse cursor
func (t *ConsoleUI) cmdToggleCell(v *gocui.View) error {
	x, y := v.Cursor()
	t.u.InverseCell(x, y)
	return nil
}
