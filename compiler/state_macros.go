package compiler

import (
	"math"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/version"
)

type (
	StateMacros struct {
		State   rws.State
		Package string
		Name    string
		Version string
	}

	// StepMacros is one step of the loop, in play order.
	StepMacros struct {
		Index    int // position in the pattern, after offset rotation
		Value    int
		Note     int
		Velocity int
		Enabled  bool
	}
)

func NewStateMacros(s rws.State, pkg, name string) *StateMacros {
	if pkg == "" {
		pkg = "main"
	}
	if name == "" {
		name = "pattern"
	}
	return &StateMacros{State: s, Package: pkg, Name: name, Version: version.Title("")}
}

// Loop returns the steps in the order the sequencer plays them.
func (m *StateMacros) Loop() []StepMacros {
	p := m.State.Params
	n := rws.LoopLength(p.Density, p.ManualStepMode)
	ret := make([]StepMacros, n)
	for i := range ret {
		index := rws.ActualStepIndex(i, p.Offset)
		step := m.State.Pattern[index]
		ret[i] = StepMacros{
			Index:    index,
			Value:    step.Value,
			Note:     int(rws.NoteFor(p.Root, step.Value)),
			Velocity: int(rws.Velocity(step.Value)),
			Enabled:  step.Enabled || !p.ManualStepMode,
		}
	}
	return ret
}

func (m *StateMacros) LoopLength() int {
	return rws.LoopLength(m.State.Params.Density, m.State.Params.ManualStepMode)
}

func (m *StateMacros) RateName() string { return rws.RateName(m.State.Params.Rate) }

// StepBeats is the length of one step in beats.
func (m *StateMacros) StepBeats() float64 {
	return rws.RateTable[rws.RateRange.Clamp(m.State.Params.Rate)]
}

func (m *StateMacros) GatePercent() int {
	return int(math.Round(m.State.Params.Gate * 100))
}

func (s StepMacros) NoteName() string { return rws.NoteName(s.Note) }

// Bar is the distance of the step from the lowest value, for drawing the
// contour of the pattern.
func (s StepMacros) Bar() int { return s.Value - rws.MinStepValue }
