package universe

import (
	"fmt"
	"strings"
)

//Regime is the local update rule set chosen for a cell on one tick
type Regime int

const (
	//RegimeFrozen leaves the cell unchanged for this tick
	RegimeFrozen Regime = iota
	RegimeSingleCell
	RegimeColony
)

func (r Regime) String() string {
	switch r {
	case RegimeSingleCell:
		return "single-cell"
	case RegimeColony:
		return "colony"
	default:
		return "frozen"
	}
}

//ColonyRule selects how the colony regime grows heights
type ColonyRule int

const (
	//ColonyRuleThreshold grows a cell once its neighbors outweigh it eightfold
	ColonyRuleThreshold ColonyRule = iota
	//ColonyRuleRelative grows a cell once its neighbors reach eight times the height below it
	ColonyRuleRelative
)

var colonyRuleNames = map[ColonyRule]string{
	ColonyRuleThreshold: "threshold",
	ColonyRuleRelative:  "relative",
}

func (r ColonyRule) String() string {
	if n, ok := colonyRuleNames[r]; ok {
		return n
	}
	return fmt.Sprintf("ColonyRule(%d)", int(r))
}

//ParseColonyRule accepts the rule name or its historical letter (a, b)
func ParseColonyRule(s string) (ColonyRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "threshold":
		return ColonyRuleThreshold, nil
	case "b", "relative":
		return ColonyRuleRelative, nil
	}
	return 0, fmt.Errorf("%w: unknown colony rule %q", ErrInvalidOptions, s)
}

//Rules is the per-cell update function of the automaton
type Rules struct {
	MaxColonyHeight int
	Colony          ColonyRule
}

//ClassifyRegime derives the regime from the cell height and its neighbors
//cells between the two regimes (a neighbor or the cell itself at the colony ceiling) are frozen
func ClassifyRegime(h uint16, n *Neighbors, maxColonyHeight int) Regime {
	nMax, height := n.Max(), int(h)
	switch {
	case nMax <= 1 && height <= 1:
		return RegimeSingleCell
	case nMax < maxColonyHeight-1 && height <= maxColonyHeight-1:
		return RegimeColony
	}
	return RegimeFrozen
}

//Next returns the height of the cell on the next generation
func (r Rules) Next(h uint16, n *Neighbors) uint16 {
	switch ClassifyRegime(h, n, r.MaxColonyHeight) {
	case RegimeSingleCell:
		return singleCellTick(h, n)
	case RegimeColony:
		return colonyTick(r.Colony, h, n)
	}
	return h
}

//singleCellTick is the birth/survival rule for isolated cells
func singleCellTick(h uint16, n *Neighbors) uint16 {
	tSum := n.Sum()
	switch {
	case tSum == 3:
		if h == 0 {
			return 1
		}
	case tSum == 4:
		//a saturated alternating ring raises the cell into a colony seed
		if even, odd := n.RingSums(); even == 4 || odd == 4 {
			return h + 1
		}
		if h == 1 {
			return 0
		}
	case tSum < 2 || tSum > 3:
		if h == 1 {
			return 0
		}
	}
	return h
}

//colonyTick escalates heights inside a colony
func colonyTick(rule ColonyRule, h uint16, n *Neighbors) uint16 {
	tSum, height := n.Sum(), int(h)
	switch rule {
	case ColonyRuleRelative:
		if height > 0 && tSum >= 8*(height-1) {
			return h + 1
		}
		if height == 0 && tSum >= 4*n.Max() {
			return 1
		}
	default:
		if tSum > 8*height {
			if height > 0 {
				return h + 1
			}
		} else if tSum == 4*height && height == 0 {
			return 1
		}
	}
	return h
}
