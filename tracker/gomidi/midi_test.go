package gomidi_test

import (
	"testing"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/tracker/gomidi"
)

func TestMessageMatchesEventBytes(t *testing.T) {
	for _, ev := range []rws.MIDIEvent{
		rws.NoteOn(0, 0, 60, 100),
		rws.NoteOn(12, 9, 36, 1),
		rws.NoteOff(0, 0, 60),
		rws.NoteOff(5, 15, 127),
	} {
		msg := gomidi.Message(ev)
		if string(msg.Bytes()) != string(ev.Bytes()) {
			t.Errorf("%v: got %x, expected %x", msg, msg.Bytes(), ev.Bytes())
		}
	}
}

func TestMessageKeepsNoteOnFields(t *testing.T) {
	var ch, key, vel uint8
	msg := gomidi.Message(rws.NoteOn(0, 3, 64, 90))
	if !msg.GetNoteOn(&ch, &key, &vel) {
		t.Fatalf("expected a note-on, got %v", msg)
	}
	if ch != 3 || key != 64 || vel != 90 {
		t.Errorf("got channel %d key %d velocity %d", ch, key, vel)
	}
}
