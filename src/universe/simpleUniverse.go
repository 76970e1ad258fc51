package universe

/*
	Simple Universe implementation with two buffers
	Neighbors are resolved into the spare buffer, the spare buffer is ticked and then swapped with the current one
	the displaced area becomes the spare buffer of the next iteration, nothing is allocated per step
*/
type SimpleUniverse struct {
	*BaseUniverse
	tmpBuff Area
}

func NewSimpleUniverse(o *Options, stateCh chan Status) (Universe, error) {
	bu, err := NewBaseUniverse(o, stateCh)
	if err != nil {
		return nil, err
	}
	su := SimpleUniverse{BaseUniverse: bu}
	//redefine the nextIteration
	su.BaseUniverse.nextIteration = su.nextIteration
	su.tmpBuff = createArea(su.area.Side)
	su.options.Advanced["engine"] = "simple"
	return &su, nil
}

func (su *SimpleUniverse) nextIteration() (prev Area, summary GenerationSummary) {
	prev = su.area.Area
	su.resolveRange(prev, su.tmpBuff, 0, len(prev.Cells))
	summary = su.tickRange(su.tmpBuff, 0, len(su.tmpBuff.Cells))
	su.area.Area, su.tmpBuff = su.tmpBuff, prev
	return
}
