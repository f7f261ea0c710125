package randomwalkseq

const (
	NoteOffStatus = 0x80
	NoteOnStatus  = 0x90
)

// Channel is the MIDI channel the sequencer plays on (channel 1 for
// musicians).
const Channel = 0

// MIDIEvent is a short MIDI message at a frame offset. While processing, the
// Frame is relative to the start of the current block.
type MIDIEvent struct {
	Frame int
	Data  [3]byte
}

func NoteOn(frame int, channel, note, velocity byte) MIDIEvent {
	return MIDIEvent{Frame: frame, Data: [3]byte{NoteOnStatus | channel&0x0f, note & 0x7f, velocity & 0x7f}}
}

func NoteOff(frame int, channel, note byte) MIDIEvent {
	return MIDIEvent{Frame: frame, Data: [3]byte{NoteOffStatus | channel&0x0f, note & 0x7f, 0}}
}

// IsNoteOn is false for a note-on with zero velocity, which means note-off.
func (e MIDIEvent) IsNoteOn() bool {
	return e.Data[0]&0xf0 == NoteOnStatus && e.Data[2] > 0
}

func (e MIDIEvent) IsNoteOff() bool {
	s := e.Data[0] & 0xf0
	return s == NoteOffStatus || (s == NoteOnStatus && e.Data[2] == 0)
}

func (e MIDIEvent) Channel() byte  { return e.Data[0] & 0x0f }
func (e MIDIEvent) Note() byte     { return e.Data[1] }
func (e MIDIEvent) Velocity() byte { return e.Data[2] }

// Len returns the length of the message in bytes, derived from the status
// byte. System messages other than the single byte realtime ones are not
// representable and report 0.
func (e MIDIEvent) Len() int {
	switch s := e.Data[0]; {
	case s < 0x80:
		return 0
	case s < 0xc0, s >= 0xe0 && s < 0xf0:
		return 3
	case s < 0xe0:
		return 2
	case s == 0xf1, s == 0xf3:
		return 2
	case s == 0xf2:
		return 3
	case s >= 0xf6:
		return 1
	default:
		return 0
	}
}

// Bytes returns the message without trailing padding.
func (e *MIDIEvent) Bytes() []byte {
	return e.Data[:e.Len()]
}
