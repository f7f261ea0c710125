// Package smfexport renders the sequencer offline into a standard MIDI
// file. The notes come from the same Player the editors and the plugin run,
// so the file matches what is heard, rounded to the tick resolution.
package smfexport

import (
	"fmt"
	"io"
	"math"
	"math/rand"

	rws "github.com/davidfrivas/RandomWalkSeq"
	"github.com/davidfrivas/RandomWalkSeq/tracker"
	"github.com/davidfrivas/RandomWalkSeq/version"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	TicksPerQuarter = 960
	// DefaultLoops is how many times the editors export the loop.
	DefaultLoops = 4
)

const (
	// the sample rate only sets the precision of the offline rendering
	renderSampleRate = 96000
	blockFrames      = 512
)

// Render plays loops times through the loop of the state and returns the
// notes as a single track SMF, with tempo and meter meta events at the
// start. The tempo is the internal tempo of the state.
func Render(s rws.State, loops int) (*smf.SMF, error) {
	if loops < 1 {
		return nil, fmt.Errorf("cannot render %d loops", loops)
	}
	s.Params = s.Params.Clamped()
	player := tracker.NewPlayer(rand.New(rand.NewSource(0)))
	player.Restore(s)
	player.SetSyncToHost(false)
	player.Prepare(renderSampleRate)
	player.Start()

	bpm := s.Params.InternalBPM
	loopLength := rws.LoopLength(s.Params.Density, s.Params.ManualStepMode)
	total := int(math.Ceil(float64(loops*loopLength) * player.StepDuration()))
	samplesPerTick := rws.SamplesPerBeat(bpm, renderSampleRate) / TicksPerQuarter

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(version.Name))
	track.Add(0, smf.MetaMeter(4, 4))
	track.Add(0, smf.MetaTempo(bpm))
	lastTick := uint32(0)
	add := func(frame int, ev rws.MIDIEvent) {
		tick := uint32(math.Round(float64(frame) / samplesPerTick))
		track.Add(tick-lastTick, ev.Bytes())
		lastTick = tick
	}

	events := make([]rws.MIDIEvent, 0, 16)
	for frame := 0; frame < total; frame += blockFrames {
		frames := min(blockFrames, total-frame)
		events = player.Process(events[:0], frames, nil, tracker.NullPlayerProcessContext{})
		for _, ev := range events {
			add(frame+ev.Frame, ev)
		}
	}
	// stopping turns off the last note at the loop end
	player.Stop()
	events = player.Process(events[:0], 1, nil, tracker.NullPlayerProcessContext{})
	for _, ev := range events {
		add(total, ev)
	}
	endTick := uint32(math.Round(float64(total) / samplesPerTick))
	track.Close(endTick - lastTick)

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	if err := sm.Add(track); err != nil {
		return nil, fmt.Errorf("error adding track: %w", err)
	}
	return sm, nil
}

// Write renders the state and writes the SMF to w.
func Write(w io.Writer, s rws.State, loops int) error {
	sm, err := Render(s, loops)
	if err != nil {
		return err
	}
	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

// WriteFile renders the state into the file at path.
func WriteFile(path string, s rws.State, loops int) error {
	sm, err := Render(s, loops)
	if err != nil {
		return err
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}
