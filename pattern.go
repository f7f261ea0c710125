package randomwalkseq

import "fmt"

// NumSteps is the fixed length of a Pattern.
const NumSteps = 16

const (
	MinStepValue = -12
	MaxStepValue = 12
)

type (
	// Step is one slot of the pattern: a pitch offset in semitones relative
	// to the root note, and an enabled flag that only matters in manual step
	// mode.
	Step struct {
		Value   int
		Enabled bool
	}

	// Pattern is the 16 steps in playback order, before offset rotation.
	Pattern [NumSteps]Step
)

// DefaultPattern returns a flat pattern with every step enabled.
func DefaultPattern() Pattern {
	var p Pattern
	p.EnableAll()
	return p
}

func ClampStepValue(v int) int {
	return max(min(v, MaxStepValue), MinStepValue)
}

// SetValue sets the pitch offset of a step, clamping it to the valid range.
// Out of range indices are ignored.
func (p *Pattern) SetValue(index, value int) bool {
	if index < 0 || index >= NumSteps {
		return false
	}
	p[index].Value = ClampStepValue(value)
	return true
}

// EnableAll reports whether any step was disabled.
func (p *Pattern) EnableAll() (changed bool) {
	for i := range p {
		changed = changed || !p[i].Enabled
		p[i].Enabled = true
	}
	return changed
}

// SetValues replaces the pitch offsets while leaving the enabled flags alone.
func (p *Pattern) SetValues(values [NumSteps]int) {
	for i, v := range values {
		p[i].Value = ClampStepValue(v)
	}
}

func (p *Pattern) Values() (ret [NumSteps]int) {
	for i, s := range p {
		ret[i] = s.Value
	}
	return
}

// Flatten sets every pitch offset to zero, so all steps play the root.
func (p *Pattern) Flatten() {
	for i := range p {
		p[i].Value = 0
	}
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the name of a MIDI note number, with middle C (60) as C4.
func NoteName(note int) string {
	if note < 0 || note > 127 {
		return "?"
	}
	return fmt.Sprintf("%s%d", noteNames[note%12], note/12-1)
}
