package gomidi

import (
	"errors"
	"fmt"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type (
	RTMIDIContext struct {
		driver             *rtmididrv.Driver
		outputDevices      []*RTMIDIOutput
		devicesInitialized bool
	}

	// RTMIDIOutput is a MIDI output port of the rtmidi driver.
	RTMIDIOutput struct {
		context *RTMIDIContext
		out     drivers.Out
		send    func(msg midi.Message) error
	}
)

// Open the driver.
func NewContext() *RTMIDIContext {
	m := RTMIDIContext{}
	// there's not much we can do if this fails, so just use m.driver = nil to
	// indicate no driver available
	m.driver, _ = rtmididrv.New()
	return &m
}

func (m *RTMIDIContext) Outputs(yield func(tracker.MIDIOutputDevice) bool) {
	if !m.devicesInitialized {
		m.initOutputDevices()
	}
	for _, device := range m.outputDevices {
		if !yield(device) {
			break
		}
	}
}

func (m *RTMIDIContext) initOutputDevices() {
	if m.driver == nil {
		return
	}
	outs, err := m.driver.Outs()
	if err != nil {
		return
	}
	for _, out := range outs {
		m.outputDevices = append(m.outputDevices, &RTMIDIOutput{context: m, out: out})
	}
	m.devicesInitialized = true
}

func (m *RTMIDIContext) Support() tracker.MIDISupport {
	if m.driver == nil {
		return tracker.MIDISupportNoDriver
	}
	return tracker.MIDISupported
}

func (c *RTMIDIContext) Close() {
	if c.driver == nil {
		return
	}
	for _, o := range c.outputDevices {
		if o.IsOpen() {
			o.Close()
		}
	}
	c.driver.Close()
}

func (o *RTMIDIOutput) Open() error {
	if o.context.driver == nil {
		return errors.New("no driver available")
	}
	if o.IsOpen() {
		return nil
	}
	if err := o.out.Open(); err != nil {
		return fmt.Errorf("opening MIDI output failed: %w", err)
	}
	send, err := midi.SendTo(o.out)
	if err != nil {
		o.out.Close()
		return fmt.Errorf("opening MIDI output failed: %w", err)
	}
	o.send = send
	return nil
}

func (o *RTMIDIOutput) Close() error {
	o.send = nil
	return o.out.Close()
}

func (o *RTMIDIOutput) IsOpen() bool { return o.out.IsOpen() }

func (o *RTMIDIOutput) Send(data []byte) error {
	if o.send == nil {
		return errors.New("MIDI output is not open")
	}
	return o.send(midi.Message(data))
}

func (o *RTMIDIOutput) String() string { return o.out.String() }

// Message converts a sequencer event to a gomidi message.
func Message(ev rws.MIDIEvent) midi.Message {
	switch {
	case ev.IsNoteOn():
		return midi.NoteOn(ev.Channel(), ev.Note(), ev.Velocity())
	case ev.IsNoteOff():
		return midi.NoteOff(ev.Channel(), ev.Note())
	}
	return midi.Message(ev.Bytes())
}
