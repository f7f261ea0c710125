package smfexport_test

import (
	"bytes"
	"path/filepath"
	"testing"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/smfexport"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type note struct {
	on, off uint32
	key     uint8
	vel     uint8
}

func testState() rws.State {
	s := rws.DefaultState()
	s.Params = rws.DefaultParams() // 1/4 beat steps, 8 step loop, half gate
	for i := range s.Pattern {
		s.Pattern[i].Value = i - 8
	}
	return s
}

func readNotes(t *testing.T, data []byte) (notes []note, bpm float64) {
	t.Helper()
	sm, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("could not read back the file: %v", err)
	}
	if len(sm.Tracks) != 1 {
		t.Fatalf("expected a single track, got %d", len(sm.Tracks))
	}
	var tick uint32
	open := map[uint8]int{}
	for _, ev := range sm.Tracks[0] {
		tick += ev.Delta
		var ch, key, vel uint8
		msg := midi.Message(ev.Message)
		switch {
		case ev.Message.GetMetaTempo(&bpm):
		case msg.GetNoteOn(&ch, &key, &vel):
			if _, ok := open[key]; ok {
				t.Fatalf("note %d started twice without a note-off", key)
			}
			open[key] = len(notes)
			notes = append(notes, note{on: tick, key: key, vel: vel})
		case msg.GetNoteOff(&ch, &key, &vel):
			i, ok := open[key]
			if !ok {
				t.Fatalf("note-off of note %d that is not sounding", key)
			}
			notes[i].off = tick
			delete(open, key)
		}
	}
	if len(open) > 0 {
		t.Errorf("notes left sounding at the end: %v", open)
	}
	return notes, bpm
}

func TestRenderPlaysTheLoop(t *testing.T) {
	var buf bytes.Buffer
	if err := smfexport.Write(&buf, testState(), 2); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	notes, bpm := readNotes(t, buf.Bytes())
	if bpm < 119.99 || bpm > 120.01 {
		t.Errorf("expected tempo 120, got %v", bpm)
	}
	if len(notes) != 16 {
		t.Fatalf("expected 16 notes for two loops of 8 steps, got %d", len(notes))
	}
	const stepTicks = smfexport.TicksPerQuarter / 4
	for i, n := range notes {
		expectedOn := uint32(i * stepTicks)
		if n.on+1 < expectedOn || n.on > expectedOn+1 {
			t.Errorf("note %d starts at tick %d, expected %d", i, n.on, expectedOn)
		}
		length := int(n.off) - int(n.on)
		if length < stepTicks/2-2 || length > stepTicks/2+2 {
			t.Errorf("note %d lasts %d ticks, expected about %d", i, length, stepTicks/2)
		}
		expectedKey := rws.NoteFor(72, i%8-8)
		if n.key != expectedKey {
			t.Errorf("note %d: key %d, expected %d", i, n.key, expectedKey)
		}
		if n.vel != rws.Velocity(i%8-8) {
			t.Errorf("note %d: velocity %d, expected %d", i, n.vel, rws.Velocity(i%8-8))
		}
	}
}

func TestRenderSkipsDisabledStepsInManualMode(t *testing.T) {
	s := testState()
	s.Params.ManualStepMode = true
	for i := range s.Pattern {
		s.Pattern[i].Enabled = i%2 == 0
	}
	var buf bytes.Buffer
	if err := smfexport.Write(&buf, s, 1); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	notes, _ := readNotes(t, buf.Bytes())
	if len(notes) != rws.NumSteps/2 {
		t.Fatalf("expected %d notes, got %d", rws.NumSteps/2, len(notes))
	}
	for i, n := range notes {
		if expected := rws.NoteFor(72, 2*i-8); n.key != expected {
			t.Errorf("note %d: key %d, expected %d", i, n.key, expected)
		}
	}
}

func TestRenderFullGateEndsAtTheLoopEnd(t *testing.T) {
	s := testState()
	s.Params.Gate = 1
	s.Params.Density = 1
	path := filepath.Join(t.TempDir(), "out.mid")
	if err := smfexport.WriteFile(path, s, 3); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	sm, err := smf.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read back the file: %v", err)
	}
	var buf bytes.Buffer
	if _, err := sm.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	notes, _ := readNotes(t, buf.Bytes())
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}
	if last := notes[2]; last.off+1 < 3*smfexport.TicksPerQuarter/4 {
		t.Errorf("the last note should last until the loop end, ends at %d", last.off)
	}
}

func TestRenderRejectsNoLoops(t *testing.T) {
	if _, err := smfexport.Render(testState(), 0); err == nil {
		t.Errorf("expected an error for zero loops")
	}
}
