package tracker_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"testing"
	"time"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
)

type modelFuzzState struct {
	model *tracker.Model
	file  []byte
}

type myWriteCloser struct {
	*bytes.Buffer
}

func (mwc *myWriteCloser) Close() error {
	// Noop
	return nil
}

func newTestModel(seed int64) *tracker.Model {
	player := tracker.NewPlayer(rand.New(rand.NewSource(seed)))
	player.Prepare(44100)
	return tracker.NewModel(tracker.NewBroker(), player, tracker.NullMIDIContext{}, "")
}

func (s *modelFuzzState) Iterate(yield func(string, func(p string, t *testing.T)) bool, seed int) {
	// Ints
	s.IterateInt("Rate", s.model.Rate(), yield, seed)
	s.IterateInt("Density", s.model.Density(), yield, seed)
	s.IterateInt("Offset", s.model.Offset(), yield, seed)
	s.IterateInt("Root", s.model.Root(), yield, seed)
	s.IterateInt("InternalBPM", s.model.InternalBPM(), yield, seed)
	s.IterateInt("GatePercent", s.model.GatePercent(), yield, seed)
	s.IterateInt("Algorithm", s.model.Algorithm(), yield, seed)
	s.IterateInt("StepValue", s.model.StepValue(seed%20-2), yield, seed)
	s.IterateInt("MIDIOutput", s.model.MIDI().Output(), yield, seed)
	// Bools
	s.IterateBool("Playing", s.model.Playing(), yield, seed)
	s.IterateBool("ManualStepMode", s.model.ManualStepMode(), yield, seed)
	s.IterateBool("SyncToHost", s.model.SyncToHost(), yield, seed)
	s.IterateBool("StepEnabled", s.model.StepEnabled(seed%20-2), yield, seed)
	// Strings
	s.IterateString("FilePath", s.model.FilePath(), yield, seed)
	// Actions
	s.IterateAction("Randomize", s.model.Randomize(), yield, seed)
	s.IterateAction("TransposeUp", s.model.TransposeUp(), yield, seed)
	s.IterateAction("TransposeDown", s.model.TransposeDown(), yield, seed)
	s.IterateAction("Mono", s.model.Mono(), yield, seed)
	s.IterateAction("StartStop", s.model.StartStop(), yield, seed)
	s.IterateAction("EnableAllSteps", s.model.EnableAllSteps(), yield, seed)
	s.IterateAction("Undo", s.model.History().Undo(), yield, seed)
	s.IterateAction("Redo", s.model.History().Redo(), yield, seed)
	s.IterateAction("Cancel", s.model.Cancel(), yield, seed)
	// File reading
	if s.file != nil {
		yield("ReadState", func(p string, t *testing.T) {
			reader := bytes.NewReader(s.file)
			readCloser := io.NopCloser(reader)
			s.model.ReadState(readCloser)
		})
	}
	// File saving
	yield("WriteState", func(p string, t *testing.T) {
		writer := bytes.NewBuffer(nil)
		writeCloser := &myWriteCloser{writer}
		s.model.WriteState(writeCloser)
		s.file = writer.Bytes()
	})
}

func (s *modelFuzzState) IterateInt(name string, i tracker.Int, yield func(string, func(p string, t *testing.T)) bool, seed int) {
	r := i.Range()
	yield(name+".Set", func(p string, t *testing.T) {
		i.Set(seed%(r.Max-r.Min+10) - 5 + r.Min)
	})
	yield(name+".Value", func(p string, t *testing.T) {
		if v := i.Value(); v < r.Min || v > r.Max {
			r := i.Range()
			t.Errorf("Path: %s %s value out of range [%d,%d]: %d", p, name, r.Min, r.Max, v)
		}
	})
}

func (s *modelFuzzState) IterateAction(name string, a tracker.Action, yield func(string, func(p string, t *testing.T)) bool, seed int) {
	yield(name+".Do", func(p string, t *testing.T) {
		a.Do()
	})
}

func (s *modelFuzzState) IterateBool(name string, b tracker.Bool, yield func(string, func(p string, t *testing.T)) bool, seed int) {
	yield(name+".Set", func(p string, t *testing.T) {
		b.Set(seed%2 == 0)
	})
	yield(name+".Toggle", func(p string, t *testing.T) {
		b.Toggle()
	})
}

func (s *modelFuzzState) IterateString(name string, str tracker.String, yield func(string, func(p string, t *testing.T)) bool, seed int) {
	yield(name+".Set", func(p string, t *testing.T) {
		str.SetValue(fmt.Sprintf("%d", seed))
	})
}

func FuzzModel(f *testing.F) {
	seed := make([]byte, 1)
	for i := range seed {
		seed[i] = byte(i)
	}
	f.Add(seed)
	f.Add([]byte{2, 40, 7, 13, 99, 5, 60, 1, 77})
	f.Fuzz(func(t *testing.T, slice []byte) {
		reader := bytes.NewReader(slice)
		model := newTestModel(1)
		player := model.Player()
		closeChan := make(chan struct{})
		finished := make(chan []rws.MIDIEvent)
		go func() {
			var events, buf []rws.MIDIEvent
		loop:
			for {
				select {
				case <-closeChan:
					break loop
				default:
					buf = player.Process(buf[:0], 512, nil, tracker.NullPlayerProcessContext{})
					events = append(events, buf...)
				}
			}
			finished <- events
		}()
		state := modelFuzzState{model: model}
		count := 0
		state.Iterate(func(n string, f func(p string, t *testing.T)) bool {
			count++
			return true
		}, 0)
		totalPath := ""
		for m, err := binary.ReadVarint(reader); err == nil; m, err = binary.ReadVarint(reader) {
			seed := int(m)
			index := seed % count
			if index < 0 {
				index += count
			}
			state.Iterate(func(n string, f func(p string, t *testing.T)) bool {
				if index == 0 {
					totalPath += n + ". "
					f(totalPath, t)
				}
				index--
				return index > 0
			}, seed)
			s := player.Snapshot()
			if s.ActualStep < 0 || s.ActualStep >= rws.NumSteps {
				t.Errorf("Path: %s actual step out of range: %d", totalPath, s.ActualStep)
			}
			if s.Params != s.Params.Clamped() {
				t.Errorf("Path: %s parameters out of range: %+v", totalPath, s.Params)
			}
		}
		player.Stop()
		time.Sleep(time.Millisecond)
		closeChan <- struct{}{}
		events := <-finished
		sounding := -1
		for _, ev := range events {
			if ev.IsNoteOn() {
				if sounding >= 0 {
					t.Fatalf("Path: %s two notes sounding at once", totalPath)
				}
				sounding = int(ev.Note())
			} else if ev.IsNoteOff() {
				sounding = -1
			}
		}
	})
}

func TestMinorChangesMergeInUndo(t *testing.T) {
	model := newTestModel(1)
	start := model.Player().Document()
	for v := 40; v <= 60; v++ {
		model.InternalBPM().Set(v)
	}
	if got := model.InternalBPM().Value(); got != 60 {
		t.Fatalf("expected bpm 60, got %d", got)
	}
	model.History().Undo().Do()
	if got := model.Player().Document(); got != start {
		t.Fatalf("one undo should revert the whole drag, got %+v", got.Params)
	}
	if model.History().Undo().Enabled() {
		t.Errorf("undo still enabled after reverting the only change")
	}
	model.History().Redo().Do()
	if got := model.InternalBPM().Value(); got != 60 {
		t.Errorf("redo did not restore bpm 60, got %d", got)
	}
}

func TestMajorChangesUndoSeparately(t *testing.T) {
	model := newTestModel(2)
	first := model.Player().Document()
	model.Randomize().Do()
	second := model.Player().Document()
	model.Randomize().Do()
	model.History().Undo().Do()
	if got := model.Player().Document(); got != second {
		t.Fatalf("expected the first randomization after one undo")
	}
	model.History().Undo().Do()
	if got := model.Player().Document(); got != first {
		t.Fatalf("expected the initial pattern after two undos")
	}
}

func TestUnchangedValueAddsNoUndo(t *testing.T) {
	model := newTestModel(3)
	model.Density().Set(model.Density().Value())
	model.Root().Set(500)
	model.History().Undo().Do()
	if model.History().Undo().Enabled() {
		t.Fatalf("setting an unchanged value produced an undo step")
	}
}

func TestStepEnabledOnlyInManualMode(t *testing.T) {
	model := newTestModel(4)
	b := model.StepEnabled(3)
	if b.Enabled() {
		t.Fatalf("step enable flag editable outside manual mode")
	}
	b.Toggle()
	if !b.Value() {
		t.Fatalf("disabled toggle changed the flag")
	}
	model.ManualStepMode().Set(true)
	b.Toggle()
	if b.Value() {
		t.Fatalf("toggle in manual mode did not disable the step")
	}
	if !model.EnableAllSteps().Enabled() {
		t.Fatalf("EnableAllSteps disabled while a step is off")
	}
	model.ManualStepMode().Set(false)
	if !b.Value() {
		t.Errorf("leaving manual mode did not enable the step")
	}
}

func TestDensityDisabledInManualMode(t *testing.T) {
	model := newTestModel(5)
	if !model.Density().Enabled() {
		t.Fatalf("density disabled in density mode")
	}
	model.ManualStepMode().Set(true)
	if model.Density().Enabled() {
		t.Fatalf("density enabled in manual mode")
	}
}

func TestTransposeActionsEnabledWithinRange(t *testing.T) {
	model := newTestModel(6)
	model.Root().Set(115)
	if model.TransposeUp().Enabled() {
		t.Errorf("TransposeUp enabled at root 115")
	}
	model.TransposeDown().Do()
	if got := model.Root().Value(); got != 103 {
		t.Errorf("expected root 103, got %d", got)
	}
	model.Root().Set(20)
	model.TransposeDown().Do()
	if got := model.Root().Value(); got != 20 {
		t.Errorf("TransposeDown took the root out of range: %d", got)
	}
}

func TestIntStrings(t *testing.T) {
	model := newTestModel(7)
	model.Root().Set(60)
	model.Rate().Set(1)
	model.GatePercent().Set(75)
	for _, c := range []struct {
		name string
		i    tracker.Int
		want string
	}{
		{"Root", model.Root(), "C4"},
		{"Rate", model.Rate(), "1/16 beat"},
		{"GatePercent", model.GatePercent(), "75%"},
		{"Algorithm", model.Algorithm(), "random walk"},
	} {
		if got := c.i.String(); got != c.want {
			t.Errorf("%s: expected %q, got %q", c.name, c.want, got)
		}
	}
	if got := model.Player().Gate(); got != 0.75 {
		t.Errorf("expected gate 0.75, got %v", got)
	}
}

func TestSyncToHostNeedsHostTransport(t *testing.T) {
	model := newTestModel(8)
	model.SyncToHost().Set(true)
	if model.Player().SyncToHost() {
		t.Fatalf("host sync enabled without a host")
	}
	model.SetHostTransport(true)
	model.SyncToHost().Set(true)
	if !model.Player().SyncToHost() {
		t.Fatalf("host sync not enabled with a host")
	}
	if model.InternalBPM().Enabled() {
		t.Errorf("internal bpm editable while synced to host")
	}
}

func TestStateFileRoundTrip(t *testing.T) {
	a := newTestModel(9)
	a.Root().Set(50)
	a.Offset().Set(7)
	a.ManualStepMode().Set(true)
	a.StepEnabled(2).Set(false)
	a.StepValue(2).Set(-9)
	buf := &myWriteCloser{bytes.NewBuffer(nil)}
	a.WriteState(buf)
	b := newTestModel(10)
	b.ReadState(io.NopCloser(bytes.NewReader(buf.Bytes())))
	if got, want := b.Player().Document(), a.Player().Document(); got != want {
		t.Fatalf("document mismatch after read:\n got %+v\nwant %+v", got, want)
	}
	b.History().Undo().Do()
	if b.Player().Root() == 50 {
		t.Errorf("reading a file could not be undone")
	}
}

func TestReadingGarbageKeepsState(t *testing.T) {
	model := newTestModel(11)
	before := model.Player().Document()
	model.ReadState(io.NopCloser(bytes.NewReader([]byte("just: some yaml\n"))))
	if model.Player().Document() != before {
		t.Fatalf("a document without the tag changed the state")
	}
	found := false
	for _, a := range model.Alerts().Iterate {
		found = found || a.Priority == tracker.Error
	}
	if !found {
		t.Errorf("expected an error alert")
	}
}

func TestQuitWithUnsavedChanges(t *testing.T) {
	model := newTestModel(12)
	model.RequestQuit().Do()
	if !model.Quitted() {
		t.Fatalf("quit refused with nothing changed")
	}
	model = newTestModel(12)
	model.Mono().Do()
	model.RequestQuit().Do()
	if model.Quitted() || model.Dialog() != tracker.QuitChanges {
		t.Fatalf("expected the QuitChanges dialog, got %v", model.Dialog())
	}
	model.SaveBeforeQuit().Do()
	model.WriteState(&myWriteCloser{bytes.NewBuffer(nil)})
	if !model.Quitted() {
		t.Errorf("saving from the quit dialog did not quit")
	}
}

func TestAlertsFadeOut(t *testing.T) {
	model := newTestModel(13)
	model.Alerts().Add("hello", tracker.Info)
	model.Alerts().AddNamed("x", "first", tracker.Warning)
	model.Alerts().AddNamed("x", "second", tracker.Warning)
	if n := model.Alerts().Len(); n != 2 {
		t.Fatalf("expected 2 alerts, named alerts replacing each other, got %d", n)
	}
	for _, a := range model.Alerts().Iterate {
		if a.Name == "x" && a.Message != "second" {
			t.Errorf("named alert not replaced: %q", a.Message)
		}
	}
	if !model.Alerts().Update(time.Second) {
		t.Fatalf("visible alerts should be animating")
	}
	for i := 0; i < 100 && model.Alerts().Update(100*time.Millisecond); i++ {
	}
	if n := model.Alerts().Len(); n != 0 {
		t.Errorf("expected all alerts gone, got %d", n)
	}
}

type fakeOutput struct {
	name   string
	open   bool
	failed bool
	sent   [][]byte
}

func (o *fakeOutput) Open() error {
	if o.failed {
		return errors.New("busy")
	}
	o.open = true
	return nil
}
func (o *fakeOutput) Close() error   { o.open = false; return nil }
func (o *fakeOutput) IsOpen() bool   { return o.open }
func (o *fakeOutput) String() string { return o.name }
func (o *fakeOutput) Send(data []byte) error {
	o.sent = append(o.sent, bytes.Clone(data))
	return nil
}

type fakeMIDIContext struct{ outputs []*fakeOutput }

func (c *fakeMIDIContext) Outputs(yield func(tracker.MIDIOutputDevice) bool) {
	for _, o := range c.outputs {
		if !yield(o) {
			return
		}
	}
}
func (c *fakeMIDIContext) Close()                       {}
func (c *fakeMIDIContext) Support() tracker.MIDISupport { return tracker.MIDISupported }

func TestMIDIOutputSelection(t *testing.T) {
	ctx := &fakeMIDIContext{outputs: []*fakeOutput{{name: "Midi Through"}, {name: "IAC Bus 1"}, {name: "IAC Bus 2", failed: true}}}
	player := tracker.NewPlayer(rand.New(rand.NewSource(1)))
	model := tracker.NewModel(tracker.NewBroker(), player, ctx, "")
	out := model.MIDI().Output()
	if r := out.Range(); r.Max != 3 {
		t.Fatalf("expected 3 outputs, got range %v", r)
	}
	if got := out.String(); got != "Closed" {
		t.Errorf("expected no output open, got %q", got)
	}
	if !model.MIDI().OpenByPrefix("IAC", false) {
		t.Fatalf("OpenByPrefix failed")
	}
	if out.Value() != 2 || !ctx.outputs[1].open || model.MIDIOutputName().Value() != "IAC Bus 1" {
		t.Fatalf("expected IAC Bus 1 open, got %d", out.Value())
	}
	if out.Set(3) {
		t.Errorf("opening a failing output reported success")
	}
	if out.Value() != 2 {
		t.Errorf("failed open changed the output")
	}
	if model.MIDI().OpenByPrefix("Nope", false) {
		t.Errorf("OpenByPrefix matched a missing output")
	}
	msg, ok := tracker.TimeoutReceive[any](model.Broker().ToDispatcher, time.Second)
	if !ok || msg == nil {
		t.Fatalf("the dispatcher was not told about the new output")
	}
}
