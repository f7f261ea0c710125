package tracker

import (
	"fmt"
	"slices"
	"time"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/debug"
)

type (
	// Dispatcher sends the events of the MIDI blocks produced by the audio
	// goroutine to a MIDI output, each at the wall clock time it is heard.
	// It runs in its own goroutine and owns the output device: only the
	// dispatcher sends to it and closes it.
	Dispatcher struct {
		broker   *Broker
		output   MIDIOutputDevice
		queue    []timedEvent
		sounding [16][128]bool
		failed   bool
	}

	timedEvent struct {
		due   time.Time
		event rws.MIDIEvent
	}
)

func NewDispatcher(broker *Broker, output MIDIOutputDevice) *Dispatcher {
	return &Dispatcher{broker: broker, output: output}
}

// Run dispatches until the CloseDispatcher channel of the broker gets a
// message. The events still queued are sent immediately, any note left
// sounding is turned off and the output is closed.
func (d *Dispatcher) Run() {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	for {
		var due <-chan time.Time
		if len(d.queue) > 0 {
			timer.Reset(max(time.Until(d.queue[0].due), 0))
			due = timer.C
		}
		select {
		case <-d.broker.CloseDispatcher:
			timer.Stop()
			d.drain()
			d.sendDue(time.Time{}, true)
			d.setOutput(nil)
			close(d.broker.FinishedDispatcher)
			return
		case msg := <-d.broker.ToDispatcher:
			d.handle(msg)
		case <-due:
		}
		timer.Stop()
		d.sendDue(time.Now(), false)
	}
}

// drain handles the messages already waiting in the channel.
func (d *Dispatcher) drain() {
	for {
		select {
		case msg := <-d.broker.ToDispatcher:
			d.handle(msg)
		default:
			return
		}
	}
}

func (d *Dispatcher) handle(msg any) {
	switch m := msg.(type) {
	case *MIDIBlock:
		d.enqueue(m)
		d.broker.PutMIDIBlock(m)
	case setMIDIOutput:
		d.setOutput(m.Output)
	case func():
		m()
	}
}

func (d *Dispatcher) enqueue(block *MIDIBlock) {
	if !(block.SampleRate > 0) {
		return
	}
	for _, ev := range block.Events {
		due := block.Time.Add(time.Duration(float64(ev.Frame) / block.SampleRate * float64(time.Second)))
		// insert after the events due at the same time, keeping the order
		i, _ := slices.BinarySearchFunc(d.queue, due, func(e timedEvent, t time.Time) int {
			if e.due.After(t) {
				return 1
			}
			return -1
		})
		d.queue = slices.Insert(d.queue, i, timedEvent{due: due, event: ev})
	}
}

// sendDue sends the events due at now, or all of them if all is set.
func (d *Dispatcher) sendDue(now time.Time, all bool) {
	n := 0
	for n < len(d.queue) && (all || !d.queue[n].due.After(now)) {
		d.send(d.queue[n].event)
		n++
	}
	d.queue = slices.Delete(d.queue, 0, n)
}

func (d *Dispatcher) send(ev rws.MIDIEvent) {
	switch {
	case ev.IsNoteOn():
		d.sounding[ev.Channel()][ev.Note()&0x7f] = true
	case ev.IsNoteOff():
		d.sounding[ev.Channel()][ev.Note()&0x7f] = false
	}
	if d.output == nil {
		return
	}
	if err := d.output.Send(ev.Bytes()); err != nil {
		debug.Log("midi", "send %x to %s failed: %v", ev.Bytes(), d.output, err)
		if !d.failed {
			d.failed = true
			TrySend(d.broker.ToModel, MsgToModel{HasAlert: true, Alert: Alert{
				Name:     "MIDISend",
				Priority: Error,
				Message:  fmt.Sprintf("Sending to MIDI output failed: %v", err),
				Duration: 5 * time.Second,
			}})
		}
		return
	}
	d.failed = false
}

// setOutput turns off the notes sounding on the current output before
// closing it and switching to output.
func (d *Dispatcher) setOutput(output MIDIOutputDevice) {
	if output == d.output {
		return
	}
	d.allNotesOff()
	if d.output != nil {
		if err := d.output.Close(); err != nil {
			debug.Log("midi", "closing %s failed: %v", d.output, err)
		}
	}
	d.output = output
	d.failed = false
}

func (d *Dispatcher) allNotesOff() {
	for ch := range d.sounding {
		for note, on := range d.sounding[ch] {
			if on {
				d.send(rws.NoteOff(0, byte(ch), byte(note)))
			}
		}
	}
}
