package tracker

import (
	"cmp"
	"errors"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	rws "github.com/davidfrivas/RandomWalkSeq"
)

type (
	// Player is the sequencing engine. It is driven by the audio thread
	// through Process, once per block, and turns the advancing sample clock
	// into note-on/note-off events following the pattern. All other methods
	// are safe to call from other goroutines: they take the same lock as
	// Process, so a parameter change never lands in the middle of a block.
	Player struct {
		mu sync.Mutex

		params     rws.Params
		pattern    rws.Pattern
		syncToHost bool

		sampleRate    float64
		bpm           float64 // the tempo the step duration was computed with
		stepDuration  float64 // in samples; 0 means the timing is degenerate
		sampleCounter float64 // samples elapsed within the current step
		currentStep   int     // loop position, before offset rotation
		playing       bool
		entryPending  bool // the first step is entered at the start of the next block
		noteOn        bool
		lastNote      byte

		hostBPM          float64
		hostBPMOK        bool
		hostPlaying      bool
		hostPlayingKnown bool

		genMu     sync.Mutex // guards rnd, which is not safe for concurrent use
		rnd       rws.Rand
		algorithm atomic.Int64

		revision atomic.Uint64
	}

	// PlayerProcessContext is the host transport report given to the player
	// for each block. Either value may be unavailable.
	PlayerProcessContext interface {
		BPM() (bpm float64, ok bool)
		Playing() (playing bool, ok bool)
	}

	// NullPlayerProcessContext reports no host transport information.
	NullPlayerProcessContext struct{}

	// Processor is what a host shim needs from the sequencer.
	Processor interface {
		Prepare(sampleRate float64)
		Process(out []rws.MIDIEvent, frames int, in []rws.MIDIEvent, context PlayerProcessContext) []rws.MIDIEvent
		Release()
		State() ([]byte, error)
		SetState(data []byte) bool
	}

	// PlayerSnapshot is a consistent copy of everything a UI displays.
	PlayerSnapshot struct {
		Params       rws.Params
		Pattern      rws.Pattern
		SyncToHost   bool
		Playing      bool
		CurrentStep  int
		ActualStep   int
		BPM          float64
		StepDuration float64
		NoteOn       bool
		Note         byte
		Revision     uint64
	}
)

var _ Processor = (*Player)(nil)

func (NullPlayerProcessContext) BPM() (bpm float64, ok bool)      { return 0, false }
func (NullPlayerProcessContext) Playing() (playing bool, ok bool) { return false, false }

// NewPlayer returns a stopped player with the default parameters and a
// random walk pattern. It produces no notes until Prepare is called with a
// positive sample rate.
func NewPlayer(rnd rws.Rand) *Player {
	p := &Player{
		params:  rws.DefaultParams(),
		pattern: rws.DefaultPattern(),
		rnd:     rnd,
	}
	p.pattern.SetValues(rws.Generate(rws.RandomWalk, rnd))
	return p
}

// Prepare sets the sample rate and resets the position within the loop.
func (p *Player) Prepare(sampleRate float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sampleRate = sampleRate
	p.sampleCounter = 0
	if p.playing {
		p.currentStep = p.loopLength() - 1
		p.entryPending = true
	} else {
		p.currentStep = 0
	}
	p.updateTiming()
}

// Release stops the player; the next processed block turns off any
// sounding note.
func (p *Player) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sampleRate = 0
	p.setPlaying(false)
	p.updateTiming()
}

// Process advances the sequencer by one block of the given number of frames.
// The input events are passed through, and together with the generated
// events they are appended to out sorted by frame. Process does not allocate
// if out has enough capacity, so the caller should reuse the slice between
// blocks.
func (p *Player) Process(out []rws.MIDIEvent, frames int, in []rws.MIDIEvent, context PlayerProcessContext) []rws.MIDIEvent {
	start := len(out)
	for _, ev := range in {
		ev.Frame = max(min(ev.Frame, frames-1), 0)
		out = append(out, ev)
	}
	if frames <= 0 {
		return out
	}
	if context == nil {
		context = NullPlayerProcessContext{}
	}
	p.mu.Lock()
	p.syncHost(context)
	out = p.sequence(out, frames)
	p.mu.Unlock()
	slices.SortStableFunc(out[start:], func(a, b rws.MIDIEvent) int { return cmp.Compare(a.Frame, b.Frame) })
	return out
}

// syncHost reads the host report. Host play state changes are edge
// triggered: the player follows the host only when the host state differs
// from its previous report, so a manual start or stop sticks until the host
// transport itself moves.
func (p *Player) syncHost(context PlayerProcessContext) {
	p.hostBPM, p.hostBPMOK = context.BPM()
	if p.syncToHost {
		if playing, ok := context.Playing(); ok {
			if !p.hostPlayingKnown || playing != p.hostPlaying {
				p.setPlaying(playing)
			}
			p.hostPlaying, p.hostPlayingKnown = playing, true
		}
	}
	p.updateTiming()
}

func (p *Player) updateTiming() {
	bpm := p.params.InternalBPM
	if p.syncToHost && p.hostBPMOK {
		bpm = p.hostBPM
	}
	if rws.BPMChanged(p.bpm, bpm) {
		p.sampleCounter = 0
	}
	p.bpm = bpm
	p.stepDuration = rws.StepDuration(p.sampleRate, bpm, p.params.Rate)
}

func (p *Player) sequence(out []rws.MIDIEvent, frames int) []rws.MIDIEvent {
	if !p.playing || !(p.stepDuration > 0) {
		if p.noteOn {
			out = append(out, rws.NoteOff(0, rws.Channel, p.lastNote))
			p.noteOn = false
		}
		return out
	}
	gateLength := p.stepDuration * p.params.Gate
	for pos := 0; pos < frames; {
		if p.entryPending {
			p.entryPending = false
			out = p.advance(out, pos)
		} else if p.sampleCounter >= p.stepDuration {
			p.sampleCounter -= p.stepDuration
			if p.sampleCounter >= p.stepDuration {
				// the step got shorter than the time already spent in it
				p.sampleCounter = math.Mod(p.sampleCounter, p.stepDuration)
			}
			out = p.advance(out, pos)
		}
		segment := max(min(frames-pos, int(math.Ceil(p.stepDuration-p.sampleCounter))), 1)
		if p.noteOn && p.sampleCounter+float64(segment) >= gateLength {
			// a note-off falling exactly on the block end belongs to the next block
			if off := pos + max(int(math.Ceil(gateLength-p.sampleCounter)), 0); off < frames {
				out = append(out, rws.NoteOff(off, rws.Channel, p.lastNote))
				p.noteOn = false
			}
		}
		p.sampleCounter += float64(segment)
		pos += segment
	}
	return out
}

// advance moves to the next step at frame pos, ending the previous note.
func (p *Player) advance(out []rws.MIDIEvent, pos int) []rws.MIDIEvent {
	if p.noteOn {
		out = append(out, rws.NoteOff(pos, rws.Channel, p.lastNote))
		p.noteOn = false
	}
	p.currentStep = (p.currentStep + 1) % p.loopLength()
	index := rws.ActualStepIndex(p.currentStep, p.params.Offset)
	step := p.pattern[index]
	if p.params.ManualStepMode && !step.Enabled {
		return out
	}
	note := rws.NoteFor(p.params.Root, step.Value)
	out = append(out, rws.NoteOn(pos, rws.Channel, note, rws.Velocity(step.Value)))
	p.lastNote, p.noteOn = note, true
	return out
}

func (p *Player) loopLength() int {
	return rws.LoopLength(p.params.Density, p.params.ManualStepMode)
}

// setPlaying is a no-op if the player is already in the requested state.
// A note still sounding is ended by the next processed block: at the entry
// step when starting, or at frame 0 when stopping.
func (p *Player) setPlaying(playing bool) bool {
	if p.playing == playing {
		return false
	}
	p.playing = playing
	p.entryPending = playing
	if playing {
		p.sampleCounter = 0
		p.currentStep = p.loopLength() - 1
	}
	p.changed()
	return true
}

func (p *Player) changed() { p.revision.Add(1) }

// clampStep keeps the loop position inside the loop after it got shorter.
func (p *Player) clampStep() {
	if p.currentStep >= p.loopLength() {
		p.currentStep = 0
	}
}

// Transport

func (p *Player) Start() { p.SetPlaying(true) }
func (p *Player) Stop()  { p.SetPlaying(false) }

func (p *Player) SetPlaying(playing bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setPlaying(playing)
}

func (p *Player) StartStop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setPlaying(!p.playing)
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Parameters

func (p *Player) SetRate(rate int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rate = rws.RateRange.Clamp(rate); rate != p.params.Rate {
		p.params.Rate = rate
		p.updateTiming()
		p.changed()
	}
}

func (p *Player) SetDensity(density int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if density = rws.DensityRange.Clamp(density); density != p.params.Density {
		p.params.Density = density
		if p.currentStep >= density {
			p.currentStep = 0
		}
		p.changed()
	}
}

func (p *Player) SetOffset(offset int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if offset = rws.OffsetRange.Clamp(offset); offset != p.params.Offset {
		p.params.Offset = offset
		p.changed()
	}
}

func (p *Player) SetGate(gate float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gate = rws.GateRange.Clamp(gate); gate != p.params.Gate {
		p.params.Gate = gate
		p.changed()
	}
}

func (p *Player) SetRoot(root int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if root = rws.RootRange.Clamp(root); root != p.params.Root {
		p.params.Root = root
		p.changed()
	}
}

func (p *Player) SetInternalBPM(bpm float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if bpm = rws.BPMRange.Clamp(bpm); bpm != p.params.InternalBPM {
		p.params.InternalBPM = bpm
		p.updateTiming()
		p.changed()
	}
}

// SetSyncToHost switches the clock source. While synced, the host tempo
// replaces the internal one and host transport changes start and stop the
// player.
func (p *Player) SetSyncToHost(sync bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sync == p.syncToHost {
		return
	}
	p.syncToHost = sync
	p.hostPlayingKnown = false
	p.updateTiming()
	p.changed()
}

// SetManualStepMode switches between looping the first density steps and
// looping all steps with per-step enable flags. Leaving manual mode enables
// every step again.
func (p *Player) SetManualStepMode(manual bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	changed := !manual && p.pattern.EnableAll()
	if manual != p.params.ManualStepMode {
		p.params.ManualStepMode = manual
		p.clampStep()
		changed = true
	}
	if changed {
		p.changed()
	}
}

func (p *Player) SetStepValue(step, value int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pattern.SetValue(step, value) {
		p.changed()
	}
}

func (p *Player) SetStepEnabled(step int, enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if step >= 0 && step < rws.NumSteps && p.pattern[step].Enabled != enabled {
		p.pattern[step].Enabled = enabled
		p.changed()
	}
}

func (p *Player) ToggleStepEnabled(step int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if step >= 0 && step < rws.NumSteps {
		p.pattern[step].Enabled = !p.pattern[step].Enabled
		p.changed()
	}
}

// TransposeUp raises the root by an octave, unless that would take it
// above the root range.
func (p *Player) TransposeUp() bool { return p.transpose(12) }

func (p *Player) TransposeDown() bool { return p.transpose(-12) }

func (p *Player) transpose(delta int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !rws.RootRange.Contains(p.params.Root + delta) {
		return false
	}
	p.params.Root += delta
	p.changed()
	return true
}

// Mono sets every step to the root note.
func (p *Player) Mono() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pattern.Flatten()
	p.changed()
}

// Randomize replaces the pitches with a newly generated pattern. The
// enabled flags are kept.
func (p *Player) Randomize(alg rws.Algorithm) {
	p.genMu.Lock()
	values := rws.Generate(alg, p.rnd)
	p.genMu.Unlock()
	p.algorithm.Store(int64(alg))
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pattern.SetValues(values)
	p.changed()
}

// Algorithm is the algorithm last used by Randomize.
func (p *Player) Algorithm() rws.Algorithm { return rws.Algorithm(p.algorithm.Load()) }

// Getters

func (p *Player) Params() rws.Params {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

func (p *Player) Rate() int            { return p.Params().Rate }
func (p *Player) Density() int         { return p.Params().Density }
func (p *Player) Offset() int          { return p.Params().Offset }
func (p *Player) Gate() float64        { return p.Params().Gate }
func (p *Player) Root() int            { return p.Params().Root }
func (p *Player) InternalBPM() float64 { return p.Params().InternalBPM }
func (p *Player) ManualStepMode() bool { return p.Params().ManualStepMode }

func (p *Player) SyncToHost() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.syncToHost
}

func (p *Player) Pattern() rws.Pattern {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pattern
}

// StepValue returns 0 for out of range steps.
func (p *Player) StepValue(step int) int {
	if step < 0 || step >= rws.NumSteps {
		return 0
	}
	return p.Pattern()[step].Value
}

func (p *Player) StepEnabled(step int) bool {
	if step < 0 || step >= rws.NumSteps {
		return false
	}
	return p.Pattern()[step].Enabled
}

func (p *Player) CurrentStep() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentStep
}

// ActualStepIndex is the pattern index of the current step, after offset
// rotation.
func (p *Player) ActualStepIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return rws.ActualStepIndex(p.currentStep, p.params.Offset)
}

func (p *Player) StepDuration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stepDuration
}

// Revision increases every time a parameter, the pattern or the play state
// changes. UIs poll it to know when to refresh.
func (p *Player) Revision() uint64 { return p.revision.Load() }

func (p *Player) Snapshot() PlayerSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PlayerSnapshot{
		Params:       p.params,
		Pattern:      p.pattern,
		SyncToHost:   p.syncToHost,
		Playing:      p.playing,
		CurrentStep:  p.currentStep,
		ActualStep:   rws.ActualStepIndex(p.currentStep, p.params.Offset),
		BPM:          p.bpm,
		StepDuration: p.stepDuration,
		NoteOn:       p.noteOn,
		Note:         p.lastNote,
		Revision:     p.revision.Load(),
	}
}

// InLoop tells which pattern indices the loop plays, given the density and
// offset of the snapshot.
func (s PlayerSnapshot) InLoop() (ret [rws.NumSteps]bool) {
	for i := range rws.LoopLength(s.Params.Density, s.Params.ManualStepMode) {
		ret[rws.ActualStepIndex(i, s.Params.Offset)] = true
	}
	return ret
}

// State

func (p *Player) State() ([]byte, error) {
	return rws.MarshalState(p.Document())
}

// Document returns the parameters and the pattern, everything State saves.
func (p *Player) Document() rws.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return rws.State{Params: p.params, Pattern: p.pattern}
}

// Restore replaces the parameters and the pattern. Values are clamped.
func (p *Player) Restore(s rws.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.restore(s)
}

func (p *Player) restore(s rws.State) {
	p.params = s.Params.Clamped()
	for i := range s.Pattern {
		s.Pattern[i].Value = rws.ClampStepValue(s.Pattern[i].Value)
	}
	p.pattern = s.Pattern
	p.clampStep()
	p.updateTiming()
	p.changed()
}

// SetState loads a state document. Data that is not a state document is
// ignored; a damaged document resets the fields it cannot provide to their
// defaults. It returns true if the document was read without problems.
func (p *Player) SetState(data []byte) bool {
	_, err := p.LoadState(data)
	return err == nil
}

// LoadState is SetState with the decoding error exposed for logging. The
// document is decoded before taking the lock, so a large document does not
// hold up Process.
func (p *Player) LoadState(data []byte) (rws.State, error) {
	s, err := rws.UnmarshalState(data, p.Document())
	if errors.Is(err, rws.ErrStateTag) {
		return s, err
	}
	p.Restore(s)
	return s, err
}
