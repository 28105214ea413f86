package primitives

import (
	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
)

// SequenceEntry is a cell used by [ComponentSequence] together with the
// ports it is chained through.
type SequenceEntry struct {
	Component *layout.Component
	In, Out   string
}

// ComponentSequence chains cells end to end. Each rune of sequence names
// an entry of symbols; a rune followed by '!' is inserted backwards
// (entered through Out, left through In). The result exposes the free
// input of the first cell as o1 and the free output of the last as o2,
// and Info["length"] sums the lengths of the chained cells.
func ComponentSequence(sequence string, symbols map[rune]SequenceEntry) (*layout.Component, error) {
	type step struct {
		entry   SequenceEntry
		flipped bool
	}
	var steps []step
	runes := []rune(sequence)
	for i := 0; i < len(runes); i++ {
		e, ok := symbols[runes[i]]
		if !ok {
			return nil, errors.Parameter("component_sequence", "sequence", "symbol %q at %d has no component", runes[i], i)
		}
		if e.Component == nil {
			return nil, errors.Parameter("component_sequence", "symbols", "symbol %q has a nil component", runes[i])
		}
		flipped := i+1 < len(runes) && runes[i+1] == '!'
		if flipped {
			i++
		}
		steps = append(steps, step{entry: e, flipped: flipped})
	}
	if len(steps) == 0 {
		return nil, errors.Parameter("component_sequence", "sequence", "is empty")
	}

	keys := make([]any, 0, 4*len(steps))
	for _, s := range steps {
		keys = append(keys, s.entry.Component.Name, s.entry.In, s.entry.Out, s.flipped)
	}
	c := layout.New(layout.CellName("component_sequence", keys...))

	var prev *layout.Reference
	var prevOut string
	var total float64
	for i, s := range steps {
		in, out := s.entry.In, s.entry.Out
		if s.flipped {
			in, out = out, in
		}
		for _, name := range []string{in, out} {
			if _, err := s.entry.Component.LookupPort(name); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "component_sequence: step %d", i)
			}
		}
		ref := c.Add(s.entry.Component)
		if prev == nil {
			c.AddPort(ref.Port(in).Renamed("o1"))
		} else {
			ref.Connect(in, prev.Port(prevOut))
		}
		total += s.entry.Component.Length()
		prev, prevOut = ref, out
	}
	c.AddPort(prev.Port(prevOut).Renamed("o2"))
	c.SetInfo("length", total)
	return c, nil
}
