package tracker_test

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
)

type recordingOutput struct {
	mu     sync.Mutex
	name   string
	closed bool
	sent   []sentMessage
}

type sentMessage struct {
	at   time.Time
	data []byte
}

func (o *recordingOutput) Open() error  { return nil }
func (o *recordingOutput) IsOpen() bool { return true }
func (o *recordingOutput) String() string {
	return o.name
}
func (o *recordingOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	return nil
}
func (o *recordingOutput) Send(data []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, sentMessage{at: time.Now(), data: append([]byte(nil), data...)})
	return nil
}
func (o *recordingOutput) messages() []sentMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]sentMessage(nil), o.sent...)
}

func startDispatcher(t *testing.T, output tracker.MIDIOutputDevice) *tracker.Broker {
	t.Helper()
	broker := tracker.NewBroker()
	go tracker.NewDispatcher(broker, output).Run()
	return broker
}

func closeDispatcher(t *testing.T, broker *tracker.Broker) {
	t.Helper()
	broker.CloseDispatcher <- struct{}{}
	select {
	case <-broker.FinishedDispatcher:
	case <-time.After(3 * time.Second):
		t.Fatalf("dispatcher did not finish")
	}
}

func TestDispatcherSendsInTimeOrder(t *testing.T) {
	out := &recordingOutput{name: "out"}
	broker := startDispatcher(t, out)
	start := time.Now().Add(20 * time.Millisecond)
	events := []rws.MIDIEvent{
		rws.NoteOn(0, 0, 60, 80),
		rws.NoteOff(441, 0, 60),
		rws.NoteOn(441, 0, 62, 90),
		rws.NoteOff(2205, 0, 62),
	}
	if !broker.SendMIDI(start, 44100, events) {
		t.Fatalf("SendMIDI dropped the block")
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(out.messages()) < len(events) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	got := out.messages()
	if len(got) != len(events) {
		t.Fatalf("expected %d messages, got %d", len(events), len(got))
	}
	for i, ev := range events {
		if string(got[i].data) != string(ev.Bytes()) {
			t.Errorf("message %d: got %x, expected %x", i, got[i].data, ev.Bytes())
		}
		due := start.Add(time.Duration(float64(ev.Frame) / 44100 * float64(time.Second)))
		if got[i].at.Before(due) {
			t.Errorf("message %d sent %v early", i, due.Sub(got[i].at))
		}
	}
	closeDispatcher(t, broker)
	if !out.closed {
		t.Errorf("output not closed when the dispatcher finished")
	}
}

func TestDispatcherTurnsOffNotesOnClose(t *testing.T) {
	out := &recordingOutput{name: "out"}
	broker := startDispatcher(t, out)
	broker.SendMIDI(time.Now(), 44100, []rws.MIDIEvent{rws.NoteOn(0, 0, 64, 100)})
	// the note-off is due far in the future
	broker.SendMIDI(time.Now().Add(time.Hour), 44100, []rws.MIDIEvent{rws.NoteOff(0, 0, 64)})
	closeDispatcher(t, broker)
	got := out.messages()
	if len(got) != 2 {
		t.Fatalf("expected note-on and one note-off, got %d messages", len(got))
	}
	off := rws.NoteOff(0, 0, 64)
	if string(got[1].data) != string(off.Bytes()) {
		t.Errorf("expected a note-off last, got %x", got[1].data)
	}
}

func TestDispatcherSwitchOutputEndsNotes(t *testing.T) {
	a := &recordingOutput{name: "a"}
	b := &recordingOutput{name: "b"}
	broker := startDispatcher(t, a)
	broker.SendMIDI(time.Now(), 44100, []rws.MIDIEvent{rws.NoteOn(0, 0, 67, 100)})
	done := make(chan struct{})
	// a func() is run in the dispatcher goroutine after the block
	broker.ToDispatcher <- func() { close(done) }
	<-done
	player := tracker.NewPlayer(rand.New(rand.NewSource(1)))
	model := tracker.NewModel(broker, player, &singleOutputContext{output: b}, "")
	if !model.MIDI().OpenByPrefix("b", false) {
		t.Fatalf("could not open b")
	}
	closeDispatcher(t, broker)
	if !a.closed {
		t.Errorf("previous output not closed")
	}
	msgs := a.messages()
	off := rws.NoteOff(0, 0, 67)
	if len(msgs) != 2 || string(msgs[1].data) != string(off.Bytes()) {
		t.Errorf("expected the sounding note to be turned off on the old output, got %v", msgs)
	}
}

type singleOutputContext struct{ output tracker.MIDIOutputDevice }

func (c *singleOutputContext) Outputs(yield func(tracker.MIDIOutputDevice) bool) { yield(c.output) }
func (c *singleOutputContext) Close()                                            {}
func (c *singleOutputContext) Support() tracker.MIDISupport                      { return tracker.MIDISupported }

func TestSendMIDIDropsWhenFull(t *testing.T) {
	broker := tracker.NewBroker()
	ev := []rws.MIDIEvent{rws.NoteOn(0, 0, 60, 100)}
	for i := 0; i < cap(broker.ToDispatcher); i++ {
		if !broker.SendMIDI(time.Now(), 44100, ev) {
			t.Fatalf("block %d dropped before the channel was full", i)
		}
	}
	if broker.SendMIDI(time.Now(), 44100, ev) {
		t.Fatalf("SendMIDI blocked or succeeded on a full channel")
	}
	if !broker.SendMIDI(time.Now(), 44100, nil) {
		t.Errorf("an empty block needs no room and should not be reported dropped")
	}
}
