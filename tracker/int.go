package tracker

import (
	"math"
	"strconv"

	rws "github.com/davidfrivas/RandomWalkSeq"
)

type (
	// Int is a bounded integer the UI can display and edit: a knob, a
	// numeric up-down or a selector. Values outside the range are clamped.
	Int struct {
		value IntValue
	}

	IntValue interface {
		Value() int
		SetValue(int) bool
		Range() RangeInclusive
	}

	// StringOfer is optionally implemented by an IntValue to give names for
	// the values, e.g. note names for the root.
	StringOfer interface {
		StringOf(value int) string
	}

	RangeInclusive struct {
		Min, Max int
	}
)

func MakeInt(value IntValue) Int {
	return Int{value: value}
}

func (v Int) Add(delta int) (ok bool) {
	return v.Set(v.Value() + delta)
}

func (v Int) Set(value int) (ok bool) {
	if v.value == nil {
		return false
	}
	value = v.Range().Clamp(value)
	if value == v.Value() {
		return false
	}
	return v.value.SetValue(value)
}

func (v Int) Value() int {
	if v.value == nil {
		return 0
	}
	return v.value.Value()
}

func (v Int) Range() RangeInclusive {
	if v.value == nil {
		return RangeInclusive{}
	}
	return v.value.Range()
}

func (v Int) Enabled() bool {
	if v.value == nil {
		return false
	}
	if e, ok := v.value.(Enabler); ok {
		return e.Enabled()
	}
	return true
}

func (v Int) String() string { return v.StringOf(v.Value()) }

func (v Int) StringOf(value int) string {
	if s, ok := v.value.(StringOfer); ok {
		return s.StringOf(value)
	}
	return strconv.Itoa(value)
}

func (r RangeInclusive) Clamp(value int) int {
	return max(min(value, r.Max), r.Min)
}

// Model methods

func (m *Model) Rate() Int        { return MakeInt((*rate)(m)) }
func (m *Model) Density() Int     { return MakeInt((*density)(m)) }
func (m *Model) Offset() Int      { return MakeInt((*offset)(m)) }
func (m *Model) Root() Int        { return MakeInt((*root)(m)) }
func (m *Model) InternalBPM() Int { return MakeInt((*internalBPM)(m)) }
func (m *Model) GatePercent() Int { return MakeInt((*gatePercent)(m)) }
func (m *Model) Algorithm() Int   { return MakeInt((*algorithm)(m)) }
func (m *Model) StepValue(i int) Int {
	return MakeInt(&stepValue{m: m, step: i})
}

func intRangeOf(r rws.IntRange) RangeInclusive { return RangeInclusive{r.Min, r.Max} }

// rate

type rate Model

func (v *rate) Value() int            { return v.player.Rate() }
func (v *rate) Range() RangeInclusive { return intRangeOf(rws.RateRange) }
func (v *rate) StringOf(value int) string {
	return rws.RateName(value)
}
func (v *rate) SetValue(value int) bool {
	defer (*Model)(v).change("Rate", MinorChange)()
	v.player.SetRate(value)
	return true
}

// density

type density Model

func (v *density) Value() int            { return v.player.Density() }
func (v *density) Range() RangeInclusive { return intRangeOf(rws.DensityRange) }
func (v *density) Enabled() bool         { return !v.player.ManualStepMode() }
func (v *density) SetValue(value int) bool {
	defer (*Model)(v).change("Density", MinorChange)()
	v.player.SetDensity(value)
	return true
}

// offset

type offset Model

func (v *offset) Value() int            { return v.player.Offset() }
func (v *offset) Range() RangeInclusive { return intRangeOf(rws.OffsetRange) }
func (v *offset) SetValue(value int) bool {
	defer (*Model)(v).change("Offset", MinorChange)()
	v.player.SetOffset(value)
	return true
}

// root

type root Model

func (v *root) Value() int                { return v.player.Root() }
func (v *root) Range() RangeInclusive     { return intRangeOf(rws.RootRange) }
func (v *root) StringOf(value int) string { return rws.NoteName(value) }
func (v *root) SetValue(value int) bool {
	defer (*Model)(v).change("Root", MinorChange)()
	v.player.SetRoot(value)
	return true
}

// internalBPM

type internalBPM Model

func (v *internalBPM) Value() int { return int(math.Round(v.player.InternalBPM())) }
func (v *internalBPM) Range() RangeInclusive {
	return RangeInclusive{int(rws.BPMRange.Min), int(rws.BPMRange.Max)}
}
func (v *internalBPM) Enabled() bool { return !v.player.SyncToHost() }
func (v *internalBPM) SetValue(value int) bool {
	defer (*Model)(v).change("InternalBPM", MinorChange)()
	v.player.SetInternalBPM(float64(value))
	return true
}

// gatePercent

type gatePercent Model

func (v *gatePercent) Value() int { return int(math.Round(v.player.Gate() * 100)) }
func (v *gatePercent) Range() RangeInclusive {
	return RangeInclusive{int(rws.GateRange.Min * 100), int(rws.GateRange.Max * 100)}
}
func (v *gatePercent) StringOf(value int) string { return strconv.Itoa(value) + "%" }
func (v *gatePercent) SetValue(value int) bool {
	defer (*Model)(v).change("Gate", MinorChange)()
	v.player.SetGate(float64(value) / 100)
	return true
}

// algorithm selects what Randomize generates. It is not part of the state
// document.

type algorithm Model

func (v *algorithm) Value() int { return v.d.Algorithm }
func (v *algorithm) Range() RangeInclusive {
	return RangeInclusive{0, rws.NumAlgorithms - 1}
}
func (v *algorithm) StringOf(value int) string { return rws.Algorithm(value).String() }
func (v *algorithm) SetValue(value int) bool {
	v.d.Algorithm = value
	return true
}

// stepValue

type stepValue struct {
	m    *Model
	step int
}

func (v *stepValue) Value() int { return v.m.player.StepValue(v.step) }
func (v *stepValue) Range() RangeInclusive {
	return RangeInclusive{rws.MinStepValue, rws.MaxStepValue}
}
func (v *stepValue) Enabled() bool { return v.step >= 0 && v.step < rws.NumSteps }
func (v *stepValue) StringOf(value int) string {
	return rws.NoteName(int(rws.NoteFor(v.m.player.Root(), value)))
}
func (v *stepValue) SetValue(value int) bool {
	if !v.Enabled() {
		return false
	}
	defer v.m.change("StepValue"+strconv.Itoa(v.step), MinorChange)()
	v.m.player.SetStepValue(v.step, value)
	return true
}
