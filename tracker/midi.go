package tracker

import (
	"fmt"
	"strings"
)

type MIDIModel Model

func (m *Model) MIDI() *MIDIModel { return (*MIDIModel)(m) }

type (
	midiState struct {
		context MIDIContext
		outputs []MIDIOutputDevice
		current MIDIOutputDevice
	}

	MIDIContext interface {
		Outputs(yield func(output MIDIOutputDevice) bool)
		Close()
		Support() MIDISupport
	}

	// MIDIOutputDevice is a MIDI output port. Open and Close are called from
	// the model goroutine; Send only from the dispatcher goroutine, which
	// also takes care of closing the device when it is replaced.
	MIDIOutputDevice interface {
		Open() error
		Close() error
		IsOpen() bool
		Send(data []byte) error
		String() string
	}

	MIDISupport int

	// setMIDIOutput is sent to the dispatcher to replace its output. Output
	// is nil when closing the current output without opening a new one.
	setMIDIOutput struct {
		Output MIDIOutputDevice
	}
)

const (
	MIDISupportNotCompiled MIDISupport = iota
	MIDISupportNoDriver
	MIDISupported
)

// Refresh
func (m *MIDIModel) Refresh() Action { return MakeAction((*midiRefresh)(m)) }

type midiRefresh MIDIModel

func (m *midiRefresh) Do() {
	if m.midi.context == nil {
		return
	}
	m.midi.outputs = m.midi.outputs[:0]
	for o := range m.midi.context.Outputs {
		m.midi.outputs = append(m.midi.outputs, o)
	}
}

// Output can be iterated to get string names of all the MIDI output
// devices. 0 means no output.
func (m *MIDIModel) Output() Int { return MakeInt((*midiOutputDevices)(m)) }

type midiOutputDevices MIDIModel

func (m *midiOutputDevices) Value() int {
	if m.midi.current == nil {
		return 0
	}
	for i, d := range m.midi.outputs {
		if d == m.midi.current {
			return i + 1
		}
	}
	return 0
}
func (m *midiOutputDevices) SetValue(val int) bool {
	if val < 0 || val > len(m.midi.outputs) {
		return false
	}
	if val == 0 {
		(*MIDIModel)(m).setOutput(nil)
		return true
	}
	newOutput := m.midi.outputs[val-1]
	if err := newOutput.Open(); err != nil {
		(*Model)(m).Alerts().Add(fmt.Sprintf("Failed to open MIDI output port: %s", err.Error()), Error)
		return false
	}
	(*MIDIModel)(m).setOutput(newOutput)
	(*Model)(m).Alerts().Add(fmt.Sprintf("Opened MIDI output port: %s", newOutput.String()), Info)
	return true
}
func (m *midiOutputDevices) Range() RangeInclusive {
	return RangeInclusive{Min: 0, Max: len(m.midi.outputs)}
}
func (m *midiOutputDevices) StringOf(value int) string {
	if value < 0 || value > len(m.midi.outputs) {
		return ""
	}
	if value == 0 {
		switch m.midi.context.Support() {
		case MIDISupportNotCompiled:
			return "Not compiled"
		case MIDISupportNoDriver:
			return "No driver"
		default:
			return "Closed"
		}
	}
	return m.midi.outputs[value-1].String()
}

// OpenByPrefix opens the first output whose name starts with prefix, or the
// first output at all if takeFirst is set and nothing matches.
func (m *MIDIModel) OpenByPrefix(prefix string, takeFirst bool) bool {
	if prefix == "" && !takeFirst {
		return false
	}
	if len(m.midi.outputs) == 0 {
		m.Refresh().Do()
	}
	target := 0
	for i, o := range m.midi.outputs {
		if prefix != "" && strings.HasPrefix(o.String(), prefix) {
			target = i + 1
			break
		}
	}
	if target == 0 && takeFirst && len(m.midi.outputs) > 0 {
		target = 1
	}
	if output := m.Output(); target > 0 {
		return target == output.Value() || output.Set(target)
	}
	if prefix != "" {
		(*Model)(m).Alerts().Add(fmt.Sprintf("Could not find a MIDI output starting with %q", prefix), Warning)
	} else {
		(*Model)(m).Alerts().Add("Could not find any MIDI output", Warning)
	}
	return false
}

func (m *MIDIModel) setOutput(output MIDIOutputDevice) {
	m.midi.current = output
	m.broker.ToDispatcher <- setMIDIOutput{Output: output}
}

// NullMIDIContext is a mockup MIDIContext if you don't want to create a real
// one.
type NullMIDIContext struct{}

func (m NullMIDIContext) Outputs(yield func(output MIDIOutputDevice) bool) {}
func (m NullMIDIContext) Close()                                           {}
func (m NullMIDIContext) Support() MIDISupport                             { return MIDISupportNotCompiled }
