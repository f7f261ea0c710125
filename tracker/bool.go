package tracker

import (
	"strconv"

	rws "github.com/davidfrivas/RandomWalkSeq"
)

type (
	Bool struct {
		value BoolValue
	}

	BoolValue interface {
		Value() bool
		SetValue(bool)
	}
)

func MakeBool(value BoolValue) Bool {
	return Bool{value: value}
}

func (v Bool) Toggle() {
	v.Set(!v.Value())
}

func (v Bool) Set(value bool) {
	if v.Enabled() && v.Value() != value {
		v.value.SetValue(value)
	}
}

func (v Bool) Value() bool {
	if v.value == nil {
		return false
	}
	return v.value.Value()
}

func (v Bool) Enabled() bool {
	if v.value == nil {
		return false
	}
	if e, ok := v.value.(Enabler); ok {
		return e.Enabled()
	}
	return true
}

// Model methods

func (m *Model) Playing() Bool        { return MakeBool((*playing)(m)) }
func (m *Model) ManualStepMode() Bool { return MakeBool((*manualStepMode)(m)) }
func (m *Model) SyncToHost() Bool     { return MakeBool((*syncToHost)(m)) }
func (m *Model) StepEnabled(i int) Bool {
	return MakeBool(&stepEnabled{m: m, step: i})
}

// playing

type playing Model

func (v *playing) Value() bool       { return v.player.Playing() }
func (v *playing) SetValue(val bool) { v.player.SetPlaying(val) }

// manualStepMode

type manualStepMode Model

func (v *manualStepMode) Value() bool { return v.player.ManualStepMode() }
func (v *manualStepMode) SetValue(val bool) {
	defer (*Model)(v).change("ManualStepMode", MajorChange)()
	v.player.SetManualStepMode(val)
}

// syncToHost is meaningful only when a host reports a transport; the
// standalone commands report none, so it is disabled there.

type syncToHost Model

func (v *syncToHost) Value() bool       { return v.player.SyncToHost() }
func (v *syncToHost) SetValue(val bool) { v.player.SetSyncToHost(val) }
func (v *syncToHost) Enabled() bool     { return v.hostTransport }

// stepEnabled

type stepEnabled struct {
	m    *Model
	step int
}

func (v *stepEnabled) Value() bool { return v.m.player.StepEnabled(v.step) }
func (v *stepEnabled) Enabled() bool {
	return v.step >= 0 && v.step < rws.NumSteps && v.m.player.ManualStepMode()
}
func (v *stepEnabled) SetValue(val bool) {
	defer v.m.change("StepEnabled"+strconv.Itoa(v.step), MajorChange)()
	v.m.player.SetStepEnabled(v.step, val)
}
