package tracker

type (
	String struct {
		value StringValue
	}

	StringValue interface {
		Value() string
		SetValue(string) bool
	}
)

func MakeString(value StringValue) String {
	return String{value: value}
}

func (v String) SetValue(value string) bool {
	if v.value == nil || v.value.Value() == value {
		return false
	}
	return v.value.SetValue(value)
}

func (v String) Value() string {
	if v.value == nil {
		return ""
	}
	return v.value.Value()
}

// FilePathString
type filePath Model

func (m *Model) FilePath() String              { return MakeString((*filePath)(m)) }
func (v *filePath) Value() string              { return v.d.FilePath }
func (v *filePath) SetValue(value string) bool { v.d.FilePath = value; return true }

// MIDIOutputName is the name of the open MIDI output, or empty if none is
// open.
type midiOutputName Model

func (m *Model) MIDIOutputName() String { return MakeString((*midiOutputName)(m)) }
func (v *midiOutputName) Value() string {
	if v.midi.current == nil {
		return ""
	}
	return v.midi.current.String()
}
func (v *midiOutputName) SetValue(value string) bool {
	return (*MIDIModel)(v).OpenByPrefix(value, false)
}
